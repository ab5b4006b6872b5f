// Package bootstrap provides dependency initialization for the video
// analysis API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demusis/analise-conteudo-video/internal/capture"
	"github.com/demusis/analise-conteudo-video/internal/category"
	"github.com/demusis/analise-conteudo-video/internal/config"
	"github.com/demusis/analise-conteudo-video/internal/export"
	"github.com/demusis/analise-conteudo-video/internal/gallery"
	"github.com/demusis/analise-conteudo-video/internal/storage"
	"github.com/demusis/analise-conteudo-video/internal/video"
	"github.com/demusis/analise-conteudo-video/internal/videodec"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Videos     *video.Store
	Frames     *gallery.Service
	Categories *category.Store
	Exports    *export.Service
	Files      storage.Storage
	Prober     *videodec.Prober

	// pool is non-nil when frames persist to postgres.
	pool *pgxpool.Pool
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "video-annotator")
	}

	// Initialize storage
	files, err := initStorage(cfg, dataDir, logger)
	if err != nil {
		return nil, err
	}

	// Initialize the category taxonomy
	categories, err := category.NewStore(filepath.Join(dataDir, "categories.json"))
	if err != nil {
		return nil, fmt.Errorf("open category store: %w", err)
	}

	// Initialize the frame repository
	deps := &Dependencies{Categories: categories, Files: files}
	var repo gallery.Repository
	if cfg.DatabaseEnabled() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		pgRepo := gallery.NewPostgresRepository(pool)
		if err := pgRepo.InitSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init frame schema: %w", err)
		}
		deps.pool = pool
		repo = pgRepo
		logger.Info("postgres frame repository configured")
	} else {
		repo = gallery.NewMemoryRepository()
		logger.Info("in-memory frame repository configured")
	}

	// Initialize the exact-frame locator over the ffmpeg toolchain
	prober := videodec.NewProber(cfg.FFprobePath)
	decoder := capture.FFmpegDecoder{Dec: videodec.NewDecoder(cfg.FFmpegPath)}
	locator := capture.NewLocator(prober, decoder, logger)

	// Initialize the gallery and export services
	videos := video.NewStore()
	frames := gallery.NewService(repo, videos, categories, locator, files, logger)
	frames.SetCaptureTimeout(cfg.CaptureTimeout)
	exports := export.NewService(frames, videos, categories, files, logger)

	deps.Videos = videos
	deps.Frames = frames
	deps.Exports = exports
	deps.Prober = prober
	return deps, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, dataDir string, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(dataDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 archive storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("data_dir", dataDir),
	)
	return localStore, nil
}
