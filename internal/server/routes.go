package server

import (
	"log/slog"
	"net/http"

	"github.com/demusis/analise-conteudo-video/internal/metrics"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Register routes with method-based patterns (Go 1.22+)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /videos", h.UploadVideo)
	mux.HandleFunc("GET /videos/{id}", h.GetVideo)
	mux.HandleFunc("GET /videos/{id}/info", h.GetVideoInfo)
	mux.HandleFunc("GET /videos/{id}/frames", h.ListFrames)
	mux.HandleFunc("GET /videos/{id}/gallery", h.ExportGallery)
	mux.HandleFunc("POST /videos/{id}/gallery", h.ImportGallery)
	mux.HandleFunc("GET /videos/{id}/export/zip", h.ExportZip)
	mux.HandleFunc("GET /videos/{id}/export/csv", h.ExportCSV)

	mux.HandleFunc("POST /frames", h.CaptureFrame)
	mux.HandleFunc("GET /frames/{id}", h.GetFrame)
	mux.HandleFunc("PATCH /frames/{id}", h.UpdateFrame)
	mux.HandleFunc("DELETE /frames/{id}", h.DeleteFrame)
	mux.HandleFunc("PUT /frames/{id}/filters", h.UpdateFilters)
	mux.HandleFunc("PUT /frames/{id}/annotations", h.UpdateAnnotations)
	mux.HandleFunc("PUT /frames/{id}/scale", h.UpdateScale)
	mux.HandleFunc("GET /frames/{id}/image", h.GetFrameImage)
	mux.HandleFunc("GET /frames/{id}/render", h.RenderFrame)

	mux.HandleFunc("POST /render", h.Render)

	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("POST /categories", h.CreateCategory)
	mux.HandleFunc("GET /categories/export", h.ExportCategories)
	mux.HandleFunc("POST /categories/import", h.ImportCategories)
	mux.HandleFunc("POST /categories/reset", h.ResetCategories)
	mux.HandleFunc("PATCH /categories/{id}", h.RenameCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.DeleteCategory)

	// Apply middleware chain
	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		MetricsMiddleware(),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
