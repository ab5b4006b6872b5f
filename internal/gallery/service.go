package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/demusis/analise-conteudo-video/internal/category"
	"github.com/demusis/analise-conteudo-video/internal/id"
	"github.com/demusis/analise-conteudo-video/internal/imaging"
	"github.com/demusis/analise-conteudo-video/internal/metrics"
	"github.com/demusis/analise-conteudo-video/internal/storage"
	"github.com/demusis/analise-conteudo-video/internal/video"
)

// DefaultCaptureTimeout bounds a single frame extraction. Seeking and
// decoding are deterministic, so a capture that runs this long is stuck,
// not slow.
const DefaultCaptureTimeout = 30 * time.Second

// ErrInvalidScale is returned when a scale outside {1,2,3} is requested.
var ErrInvalidScale = errors.New("scale must be 1, 2 or 3")

// FrameExtractor locates the exact frame at a timestamp and writes it as a
// PNG. It acts as a port for the capture locator.
type FrameExtractor interface {
	Capture(ctx context.Context, videoPath string, timestampSeconds float64, outPath string) error
}

// CaptureInput is a capture request: which video, which instant, which
// category the new frame is filed under.
type CaptureInput struct {
	VideoID          string
	TimestampSeconds float64
	CategoryID       string
}

// GalleryEntry is one frame in a portable gallery snapshot. Categories are
// referenced by name so a snapshot survives category stores that were
// rebuilt with different IDs. Image bytes are not part of the snapshot;
// import re-extracts each frame from the video.
type GalleryEntry struct {
	TimestampSeconds float64                  `json:"timestamp_seconds"`
	CategoryName     string                   `json:"category_name"`
	Note             string                   `json:"note"`
	Filters          []imaging.FilterSpec     `json:"filters"`
	Annotations      []imaging.AnnotationSpec `json:"annotations"`
	Scale            int                      `json:"scale"`
}

// Service orchestrates the frame gallery: capturing frames through the
// extractor, persisting their records, rendering them through the
// composition pipeline and moving whole galleries in and out as snapshots.
type Service struct {
	repo       Repository
	videos     *video.Store
	categories *category.Store
	extractor  FrameExtractor
	files      storage.Storage
	logger     *slog.Logger
	// captureTimeout bounds a single extraction.
	captureTimeout time.Duration
}

// NewService creates a new gallery Service.
func NewService(
	repo Repository,
	videos *video.Store,
	categories *category.Store,
	extractor FrameExtractor,
	files storage.Storage,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		videos:         videos,
		categories:     categories,
		extractor:      extractor,
		files:          files,
		logger:         logger,
		captureTimeout: DefaultCaptureTimeout,
	}
}

// SetCaptureTimeout configures how long a single frame extraction may run.
func (s *Service) SetCaptureTimeout(d time.Duration) {
	if d > 0 {
		s.captureTimeout = d
	}
}

// CaptureFrame extracts the exact frame at the requested timestamp and
// files it as a new gallery record with the default editing state: the
// standard filter stack with everything disabled, no annotations, scale 1.
// An unknown category ID files the frame under the default category.
func (s *Service) CaptureFrame(ctx context.Context, input CaptureInput) (*Frame, error) {
	session, err := s.videos.Get(input.VideoID)
	if err != nil {
		return nil, err
	}

	cat, err := s.categories.Get(input.CategoryID)
	if err != nil {
		cat = category.Default()
	}

	number, err := s.repo.NextNumber(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("allocate frame number: %w", err)
	}

	fileName := frameFileName(session.Filename, number, input.TimestampSeconds)
	imagePath := s.files.FramePath(fileName)

	if err := s.extract(ctx, session.SourcePath, input.TimestampSeconds, imagePath); err != nil {
		s.logger.Error("frame capture failed",
			slog.String("video_id", session.ID),
			slog.Float64("timestamp", input.TimestampSeconds),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	now := time.Now()
	frame := &Frame{
		ID:               newFrameID(),
		VideoID:          session.ID,
		Number:           number,
		TimestampSeconds: input.TimestampSeconds,
		FileName:         fileName,
		ImagePath:        imagePath,
		CategoryID:       cat.ID,
		Note:             fmt.Sprintf("Frame %d at %.3fs", number, input.TimestampSeconds),
		Filters:          imaging.DefaultFilterStack(),
		Annotations:      []imaging.AnnotationSpec{},
		Scale:            1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Save(ctx, frame); err != nil {
		// Don't leave an orphaned PNG behind.
		_ = s.files.Remove(ctx, []string{imagePath})
		return nil, fmt.Errorf("save frame: %w", err)
	}

	s.logger.Info("frame captured",
		slog.String("frame_id", frame.ID),
		slog.String("video_id", session.ID),
		slog.Int("number", number),
		slog.Float64("timestamp", input.TimestampSeconds),
	)
	return frame, nil
}

// extract runs the frame extractor under the capture timeout and records
// capture metrics.
func (s *Service) extract(ctx context.Context, sourcePath string, ts float64, outPath string) error {
	captureCtx, cancel := context.WithTimeout(ctx, s.captureTimeout)
	defer cancel()

	start := time.Now()
	err := s.extractor.Capture(captureCtx, sourcePath, ts, outPath)
	metrics.CaptureDuration.Observe(time.Since(start).Seconds())
	metrics.CapturesTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return err
}

// GetFrame retrieves a frame by ID.
func (s *Service) GetFrame(ctx context.Context, id string) (*Frame, error) {
	return s.repo.FindByID(ctx, id)
}

// ListFrames returns all frames of a video ordered by capture number.
func (s *Service) ListFrames(ctx context.Context, videoID string) ([]*Frame, error) {
	return s.repo.ListByVideo(ctx, videoID)
}

// UpdateNote replaces a frame's note.
func (s *Service) UpdateNote(ctx context.Context, id, note string) (*Frame, error) {
	return s.update(ctx, id, func(f *Frame) error {
		f.Note = note
		return nil
	})
}

// ChangeCategory moves a frame to another category.
// Returns category.ErrNotFound when the target category does not exist.
func (s *Service) ChangeCategory(ctx context.Context, id, categoryID string) (*Frame, error) {
	cat, err := s.categories.Get(categoryID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(f *Frame) error {
		f.CategoryID = cat.ID
		return nil
	})
}

// UpdateFilters replaces a frame's filter stack.
func (s *Service) UpdateFilters(ctx context.Context, id string, filters []imaging.FilterSpec) (*Frame, error) {
	return s.update(ctx, id, func(f *Frame) error {
		f.Filters = filters
		return nil
	})
}

// UpdateAnnotations replaces a frame's annotation list.
func (s *Service) UpdateAnnotations(ctx context.Context, id string, annotations []imaging.AnnotationSpec) (*Frame, error) {
	return s.update(ctx, id, func(f *Frame) error {
		f.Annotations = annotations
		return nil
	})
}

// UpdateScale replaces a frame's persisted upscale factor.
func (s *Service) UpdateScale(ctx context.Context, id string, scale int) (*Frame, error) {
	if scale < 1 || scale > 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	return s.update(ctx, id, func(f *Frame) error {
		f.Scale = scale
		return nil
	})
}

// update loads a frame, applies fn and saves it back. Concurrent edits to
// the same frame are last-write-wins.
func (s *Service) update(ctx context.Context, id string, fn func(*Frame) error) (*Frame, error) {
	frame, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(frame); err != nil {
		return nil, err
	}
	frame.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, frame); err != nil {
		return nil, fmt.Errorf("save frame: %w", err)
	}
	return frame, nil
}

// DeleteFrame removes a frame record and its backing image file together.
func (s *Service) DeleteFrame(ctx context.Context, id string) error {
	frame, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.Remove(ctx, []string{frame.ImagePath}); err != nil {
		s.logger.Warn("frame file cleanup failed",
			slog.String("frame_id", id),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// DestroyVideoFrames removes every frame of a video together with the
// stored image files. Used when a video session is replaced and when a
// gallery snapshot is imported over the current gallery.
func (s *Service) DestroyVideoFrames(ctx context.Context, videoID string) error {
	removed, err := s.repo.DeleteByVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}

	paths := make([]string, 0, len(removed))
	for _, f := range removed {
		paths = append(paths, f.ImagePath)
	}
	if err := s.files.Remove(ctx, paths); err != nil {
		s.logger.Warn("frame file cleanup failed",
			slog.String("video_id", videoID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("gallery cleared",
		slog.String("video_id", videoID),
		slog.Int("frames", len(removed)),
	)
	return nil
}

// ReassignToDefault moves every frame in the given category to the default
// category. Used when a category is deleted.
func (s *Service) ReassignToDefault(ctx context.Context, fromCategoryID string) (int, error) {
	return s.repo.ReassignCategory(ctx, fromCategoryID, category.DefaultID)
}

// RenderFrame composes a frame's stored image with its persisted filters,
// annotations and scale, returning PNG bytes. A frame without active edits
// renders to its stored bytes unchanged.
func (s *Service) RenderFrame(ctx context.Context, id string) ([]byte, error) {
	frame, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderFrame(ctx, frame)
}

func (s *Service) renderFrame(ctx context.Context, frame *Frame) ([]byte, error) {
	rc, err := s.files.OpenFrame(ctx, frame.FileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	src, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read frame image: %w", err)
	}

	start := time.Now()
	out, err := imaging.Compose(src, frame.Filters, frame.Annotations, frame.Scale)
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	metrics.RendersTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return out, err
}

// ExportGallery returns a portable snapshot of the video's gallery.
func (s *Service) ExportGallery(ctx context.Context, videoID string) ([]GalleryEntry, error) {
	if _, err := s.videos.Get(videoID); err != nil {
		return nil, err
	}
	frames, err := s.repo.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, c := range s.categories.List() {
		names[c.ID] = c.Name
	}

	entries := make([]GalleryEntry, 0, len(frames))
	for _, f := range frames {
		name, ok := names[f.CategoryID]
		if !ok {
			name = category.DefaultName
		}
		entries = append(entries, GalleryEntry{
			TimestampSeconds: f.TimestampSeconds,
			CategoryName:     name,
			Note:             f.Note,
			Filters:          f.Filters,
			Annotations:      f.Annotations,
			Scale:            f.Scale,
		})
	}
	return entries, nil
}

// ImportGallery replaces the video's gallery with the snapshot entries,
// re-extracting each frame from the video. Entries whose timestamp cannot
// be captured are skipped. Returns how many frames were imported.
func (s *Service) ImportGallery(ctx context.Context, videoID string, entries []GalleryEntry) (int, error) {
	session, err := s.videos.Get(videoID)
	if err != nil {
		return 0, err
	}
	if err := s.DestroyVideoFrames(ctx, videoID); err != nil {
		return 0, fmt.Errorf("clear gallery: %w", err)
	}

	byName := make(map[string]category.Category)
	for _, c := range s.categories.List() {
		byName[c.Name] = c
	}

	imported := 0
	for i, entry := range entries {
		cat, ok := byName[entry.CategoryName]
		if !ok {
			cat = category.Default()
		}

		number := imported + 1
		fileName := frameFileName(session.Filename, number, entry.TimestampSeconds)
		imagePath := s.files.FramePath(fileName)

		if err := s.extract(ctx, session.SourcePath, entry.TimestampSeconds, imagePath); err != nil {
			s.logger.Warn("gallery entry skipped, capture failed",
				slog.Int("entry", i),
				slog.Float64("timestamp", entry.TimestampSeconds),
				slog.String("error", err.Error()),
			)
			continue
		}

		now := time.Now()
		frame := &Frame{
			ID:               newFrameID(),
			VideoID:          session.ID,
			Number:           number,
			TimestampSeconds: entry.TimestampSeconds,
			FileName:         fileName,
			ImagePath:        imagePath,
			CategoryID:       cat.ID,
			Note:             entry.Note,
			Filters:          entry.Filters,
			Annotations:      entry.Annotations,
			Scale:            entry.Scale,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if frame.Filters == nil {
			frame.Filters = imaging.DefaultFilterStack()
		}
		if frame.Annotations == nil {
			frame.Annotations = []imaging.AnnotationSpec{}
		}
		if frame.Scale < 1 || frame.Scale > 3 {
			frame.Scale = 1
		}

		if err := s.repo.Save(ctx, frame); err != nil {
			_ = s.files.Remove(ctx, []string{imagePath})
			return imported, fmt.Errorf("save frame: %w", err)
		}
		imported++
	}

	s.logger.Info("gallery imported",
		slog.String("video_id", videoID),
		slog.Int("imported", imported),
		slog.Int("entries", len(entries)),
	)
	return imported, nil
}

func newFrameID() string {
	return id.New()
}

// frameFileName builds the stored image name, e.g. "clip_frame3_ts2_500.png".
func frameFileName(videoName string, number int, ts float64) string {
	base := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	tsToken := strings.ReplaceAll(strconv.FormatFloat(ts, 'f', 3, 64), ".", "_")
	return fmt.Sprintf("%s_frame%d_ts%s.png", storage.SanitizeName(base), number, tsToken)
}
