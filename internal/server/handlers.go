package server

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/demusis/analise-conteudo-video/internal/capture"
	"github.com/demusis/analise-conteudo-video/internal/category"
	"github.com/demusis/analise-conteudo-video/internal/export"
	"github.com/demusis/analise-conteudo-video/internal/gallery"
	"github.com/demusis/analise-conteudo-video/internal/id"
	"github.com/demusis/analise-conteudo-video/internal/imaging"
	"github.com/demusis/analise-conteudo-video/internal/metrics"
	"github.com/demusis/analise-conteudo-video/internal/storage"
	"github.com/demusis/analise-conteudo-video/internal/video"
	"github.com/demusis/analise-conteudo-video/internal/videodec"
)

// Prober reports container metadata for uploaded videos.
type Prober interface {
	Probe(ctx context.Context, path string) (*videodec.Report, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	videos           *video.Store
	frames           *gallery.Service
	categories       *category.Store
	exports          *export.Service
	files            storage.Storage
	prober           Prober
	validator        *validator.Validate
	logger           *slog.Logger
	maxUploadBytes   int64
	defaultFrameRate float64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithUploadLimit caps the accepted video upload size in bytes.
func WithUploadLimit(bytes int64) HandlerOption {
	return func(h *Handlers) {
		if bytes > 0 {
			h.maxUploadBytes = bytes
		}
	}
}

// WithDefaultFrameRate sets the frame rate assumed for containers that do
// not report one.
func WithDefaultFrameRate(fps float64) HandlerOption {
	return func(h *Handlers) {
		if fps > 0 {
			h.defaultFrameRate = fps
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	videos *video.Store,
	frames *gallery.Service,
	categories *category.Store,
	exports *export.Service,
	files storage.Storage,
	prober Prober,
	logger *slog.Logger,
	opts ...HandlerOption,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		videos:           videos,
		frames:           frames,
		categories:       categories,
		exports:          exports,
		files:            files,
		prober:           prober,
		validator:        validator.New(),
		logger:           logger,
		maxUploadBytes:   512 << 20,
		defaultFrameRate: video.DefaultFrameRate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// UploadVideo handles POST /videos requests: it stores the uploaded file,
// probes its streams and installs it as the single active session,
// destroying the previous session's frames and file.
func (h *Handlers) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "video exceeds the upload limit", "UPLOAD_TOO_LARGE")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'video' is required", "MISSING_VIDEO_FILE")
		return
	}
	defer func() { _ = file.Close() }()

	path, err := h.files.SaveVideo(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("video upload failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store video", "UPLOAD_FAILED")
		return
	}

	session := &video.Session{
		ID:         id.New(),
		SourcePath: path,
		Filename:   header.Filename,
		FrameRate:  h.defaultFrameRate,
		UploadedAt: time.Now(),
	}

	report, err := h.prober.Probe(r.Context(), path)
	if err != nil {
		// Undeterminable streams keep the configured defaults; a capture
		// against a truly undecodable file still fails with a clear error.
		h.logger.Warn("uploaded video could not be probed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
	} else {
		vs := report.VideoStream()
		if vs == nil {
			_ = h.files.Remove(r.Context(), []string{path})
			writeError(w, http.StatusUnprocessableEntity, "uploaded file has no video stream", "STREAM_UNAVAILABLE")
			return
		}
		if fps := vs.FrameRate(); fps > 0 {
			session.FrameRate = fps
		}
		session.DurationSeconds = report.DurationSeconds()
		session.Width = vs.Width
		session.Height = vs.Height
	}

	previous := h.videos.Replace(session)
	if previous != nil {
		if err := h.frames.DestroyVideoFrames(r.Context(), previous.ID); err != nil {
			h.logger.Warn("previous gallery cleanup failed",
				slog.String("video_id", previous.ID),
				slog.String("error", err.Error()),
			)
		}
		_ = h.files.Remove(r.Context(), []string{previous.SourcePath})
	}
	metrics.ActiveSessions.Set(1)

	h.logger.Info("video session created",
		slog.String("video_id", session.ID),
		slog.String("filename", session.Filename),
		slog.Float64("frame_rate", session.FrameRate),
		slog.Float64("duration", session.DurationSeconds),
		slog.Bool("replaced", previous != nil),
	)

	writeJSON(w, http.StatusCreated, UploadVideoResponse{
		ID:              session.ID,
		Filename:        session.Filename,
		FrameRate:       session.FrameRate,
		DurationSeconds: session.DurationSeconds,
		Width:           session.Width,
		Height:          session.Height,
		Replaced:        previous != nil,
	})
}

// GetVideo handles GET /videos/{id} requests by serving the stored file.
// ServeFile's range support is what lets clients scrub the timeline.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	session, err := h.videos.Get(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	http.ServeFile(w, r, session.SourcePath)
}

// GetVideoInfo handles GET /videos/{id}/info requests: the stored file's
// SHA-512 digest plus the container and stream metadata from ffprobe.
func (h *Handlers) GetVideoInfo(w http.ResponseWriter, r *http.Request) {
	session, err := h.videos.Get(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	digest, err := fileSHA512(session.SourcePath)
	if err != nil {
		h.logger.Error("media info hashing failed",
			slog.String("video_id", session.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read video file", "MEDIA_INFO_FAILED")
		return
	}

	report, err := h.prober.Probe(r.Context(), session.SourcePath)
	if err != nil {
		h.logger.Error("media info probe failed",
			slog.String("video_id", session.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to probe video file", "MEDIA_INFO_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, MediaInfoResponse{
		SHA512:  digest,
		Format:  report.Format,
		Streams: report.Streams,
	})
}

// CaptureFrame handles POST /frames requests.
func (h *Handlers) CaptureFrame(w http.ResponseWriter, r *http.Request) {
	var req CaptureFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	frame, err := h.frames.CaptureFrame(r.Context(), gallery.CaptureInput{
		VideoID:          req.VideoID,
		TimestampSeconds: req.TimestampSeconds,
		CategoryID:       req.CategoryID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, frame)
}

// ListFrames handles GET /videos/{id}/frames requests.
func (h *Handlers) ListFrames(w http.ResponseWriter, r *http.Request) {
	session, err := h.videos.Get(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	frames, err := h.frames.ListFrames(r.Context(), session.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frames)
}

// GetFrame handles GET /frames/{id} requests.
func (h *Handlers) GetFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := h.frames.GetFrame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// UpdateFrame handles PATCH /frames/{id} requests for note and category.
func (h *Handlers) UpdateFrame(w http.ResponseWriter, r *http.Request) {
	frameID := r.PathValue("id")

	var req UpdateFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if req.Note == nil && req.CategoryID == nil {
		writeError(w, http.StatusBadRequest, "nothing to update", "EMPTY_UPDATE")
		return
	}

	var frame *gallery.Frame
	var err error
	if req.Note != nil {
		if frame, err = h.frames.UpdateNote(r.Context(), frameID, *req.Note); err != nil {
			h.respondError(w, err)
			return
		}
	}
	if req.CategoryID != nil {
		if frame, err = h.frames.ChangeCategory(r.Context(), frameID, *req.CategoryID); err != nil {
			h.respondError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, frame)
}

// UpdateFilters handles PUT /frames/{id}/filters requests. The whole stack
// is validated before anything is stored.
func (h *Handlers) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req UpdateFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}
	for _, f := range req.Filters {
		if err := f.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
	}

	frame, err := h.frames.UpdateFilters(r.Context(), r.PathValue("id"), req.Filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// UpdateAnnotations handles PUT /frames/{id}/annotations requests. A single
// malformed annotation rejects the whole batch.
func (h *Handlers) UpdateAnnotations(w http.ResponseWriter, r *http.Request) {
	var req UpdateAnnotationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}
	for _, a := range req.Annotations {
		if err := a.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
	}

	frame, err := h.frames.UpdateAnnotations(r.Context(), r.PathValue("id"), req.Annotations)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// UpdateScale handles PUT /frames/{id}/scale requests.
func (h *Handlers) UpdateScale(w http.ResponseWriter, r *http.Request) {
	var req UpdateScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	frame, err := h.frames.UpdateScale(r.Context(), r.PathValue("id"), req.Scale)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// DeleteFrame handles DELETE /frames/{id} requests. The record and its
// backing image file go together.
func (h *Handlers) DeleteFrame(w http.ResponseWriter, r *http.Request) {
	if err := h.frames.DeleteFrame(r.Context(), r.PathValue("id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFrameImage handles GET /frames/{id}/image requests, serving the
// stored capture untouched by any edits.
func (h *Handlers) GetFrameImage(w http.ResponseWriter, r *http.Request) {
	frame, err := h.frames.GetFrame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	rc, err := h.files.OpenFrame(r.Context(), frame.FileName)
	if err != nil {
		h.logger.Error("frame image open failed",
			slog.String("frame_id", frame.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to open frame image", "IMAGE_READ_FAILED")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "image/png")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("frame image write aborted",
			slog.String("frame_id", frame.ID),
			slog.String("error", err.Error()),
		)
	}
}

// RenderFrame handles GET /frames/{id}/render requests, composing the
// frame with its persisted filters, annotations and scale.
func (h *Handlers) RenderFrame(w http.ResponseWriter, r *http.Request) {
	data, err := h.frames.RenderFrame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// Render handles POST /render requests: the composition pipeline applied
// to caller-supplied image bytes instead of a stored frame.
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}
	for _, f := range req.Filters {
		if err := f.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
	}
	for _, a := range req.Annotations {
		if err := a.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
	}

	src, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_base64 is not valid base64", "VALIDATION_ERROR")
		return
	}
	scale := req.Scale
	if scale == 0 {
		scale = 1
	}

	start := time.Now()
	data, err := imaging.Compose(src, req.Filters, req.Annotations, scale)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	metrics.RendersTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// ExportGallery handles GET /videos/{id}/gallery requests.
func (h *Handlers) ExportGallery(w http.ResponseWriter, r *http.Request) {
	entries, err := h.frames.ExportGallery(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ImportGallery handles POST /videos/{id}/gallery requests: the current
// gallery is destroyed and each snapshot entry re-extracted from the video.
func (h *Handlers) ImportGallery(w http.ResponseWriter, r *http.Request) {
	var entries []gallery.GalleryEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	for _, entry := range entries {
		for _, f := range entry.Filters {
			if err := f.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
				return
			}
		}
		for _, a := range entry.Annotations {
			if err := a.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
				return
			}
		}
	}

	imported, err := h.frames.ImportGallery(r.Context(), r.PathValue("id"), entries)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GalleryImportResponse{
		Imported: imported,
		Entries:  len(entries),
	})
}

// ListCategories handles GET /categories requests.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.categories.List())
}

// CreateCategory handles POST /categories requests.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	cat, err := h.categories.Create(req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// RenameCategory handles PATCH /categories/{id} requests.
func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	cat, err := h.categories.Rename(r.PathValue("id"), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/{id} requests. Frames in the
// deleted category move to the default category.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID := r.PathValue("id")
	if err := h.categories.Delete(catID); err != nil {
		h.respondError(w, err)
		return
	}

	reassigned, err := h.frames.ReassignToDefault(r.Context(), catID)
	if err != nil {
		h.logger.Error("frame reassignment failed",
			slog.String("category_id", catID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "category deleted but frames were not reassigned", "REASSIGN_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, DeleteCategoryResponse{Reassigned: reassigned})
}

// ResetCategories handles POST /categories/reset requests.
func (h *Handlers) ResetCategories(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Reset(); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.categories.List())
}

// ExportCategories handles GET /categories/export requests. The protected
// default category is not part of the export.
func (h *Handlers) ExportCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.categories.Export())
}

// ImportCategories handles POST /categories/import requests.
func (h *Handlers) ImportCategories(w http.ResponseWriter, r *http.Request) {
	var cats []category.Category
	if err := json.NewDecoder(r.Body).Decode(&cats); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	imported, skipped, err := h.categories.Import(cats)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryImportResponse{
		Imported: imported,
		Skipped:  skipped,
	})
}

// ExportZip handles GET /videos/{id}/export/zip requests. With ?push=s3
// the archive is uploaded to the object store and its URL returned instead
// of the bytes.
func (h *Handlers) ExportZip(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	if r.URL.Query().Get("push") == "s3" {
		url, err := h.exports.PushZip(r.Context(), videoID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ArchiveURLResponse{URL: url})
		return
	}

	archive, err := h.exports.BuildZip(r.Context(), videoID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeArchive(w, archive.FileName, archive.ContentType, archive.Data)
}

// ExportCSV handles GET /videos/{id}/export/csv requests.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	archive, err := h.exports.BuildCSV(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeArchive(w, archive.FileName, archive.ContentType, archive.Data)
}

// respondError maps domain errors onto HTTP statuses and error codes.
// Anything unmapped is logged and reported as an internal error.
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, video.ErrNoSession):
		writeError(w, http.StatusNotFound, "video session not found", "VIDEO_NOT_FOUND")
	case errors.Is(err, gallery.ErrFrameNotFound):
		writeError(w, http.StatusNotFound, "frame not found", "FRAME_NOT_FOUND")
	case errors.Is(err, category.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found", "CATEGORY_NOT_FOUND")
	case errors.Is(err, category.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error(), "DUPLICATE_CATEGORY")
	case errors.Is(err, category.ErrProtected):
		writeError(w, http.StatusForbidden, err.Error(), "CATEGORY_PROTECTED")
	case errors.Is(err, category.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, gallery.ErrInvalidScale),
		errors.Is(err, imaging.ErrInvalidFilter),
		errors.Is(err, imaging.ErrInvalidAnnotation):
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, capture.ErrSeekOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error(), "SEEK_OUT_OF_RANGE")
	case errors.Is(err, capture.ErrStreamUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "STREAM_UNAVAILABLE")
	case errors.Is(err, imaging.ErrDecodeFailure):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "DECODE_FAILURE")
	case errors.Is(err, storage.ErrS3NotConfigured):
		writeError(w, http.StatusBadRequest, err.Error(), "S3_NOT_CONFIGURED")
	default:
		h.logger.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// fileSHA512 returns the hex SHA-512 digest of the file at path.
func fileSHA512(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from the session store, not user input
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	hash := sha512.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hash video file: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// writeArchive sends a built export deliverable as a file download.
func writeArchive(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(data)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
