// Package export builds the gallery deliverables: a ZIP archive of rendered
// frames grouped into category-named folders and a CSV report of the
// gallery's records.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/demusis/analise-conteudo-video/internal/category"
	"github.com/demusis/analise-conteudo-video/internal/gallery"
	"github.com/demusis/analise-conteudo-video/internal/metrics"
	"github.com/demusis/analise-conteudo-video/internal/storage"
	"github.com/demusis/analise-conteudo-video/internal/video"
)

// FrameSource lists a video's frames and renders them with their stored
// edits. Satisfied by the gallery service.
type FrameSource interface {
	ListFrames(ctx context.Context, videoID string) ([]*gallery.Frame, error)
	RenderFrame(ctx context.Context, id string) ([]byte, error)
}

// Archive is a built deliverable ready to be sent as a download.
type Archive struct {
	// FileName is the suggested download name.
	FileName string
	// ContentType is the MIME type for the Content-Type header.
	ContentType string
	// Data is the complete file content.
	Data []byte
}

// Service builds export deliverables for a video's gallery.
type Service struct {
	frames     FrameSource
	videos     *video.Store
	categories *category.Store
	files      storage.Storage
	logger     *slog.Logger
}

// NewService creates a new export Service.
func NewService(
	frames FrameSource,
	videos *video.Store,
	categories *category.Store,
	files storage.Storage,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		frames:     frames,
		videos:     videos,
		categories: categories,
		files:      files,
		logger:     logger,
	}
}

// BuildZip renders every frame of the video and packs the results into a
// ZIP archive with one folder per category. Frames whose image cannot be
// rendered are logged and skipped rather than failing the whole archive.
func (s *Service) BuildZip(ctx context.Context, videoID string) (*Archive, error) {
	session, err := s.videos.Get(videoID)
	if err != nil {
		return nil, err
	}
	frames, err := s.frames.ListFrames(ctx, videoID)
	if err != nil {
		return nil, err
	}
	names := s.categoryNames()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, frame := range frames {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Unedited frames pass through the renderer byte-identical, so the
		// archive holds the original capture unless the frame was edited.
		data, err := s.frames.RenderFrame(ctx, frame.ID)
		if err != nil {
			s.logger.Warn("frame skipped in archive",
				slog.String("frame_id", frame.ID),
				slog.String("file", frame.FileName),
				slog.String("error", err.Error()),
			)
			continue
		}

		name, ok := names[frame.CategoryID]
		if !ok {
			name = category.DefaultName
		}
		header := &zip.FileHeader{
			Name:     path.Join(name, frame.FileName),
			Method:   zip.Deflate,
			Modified: frame.UpdatedAt,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("add %s to archive: %w", frame.FileName, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("add %s to archive: %w", frame.FileName, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	metrics.ArchivesBuiltTotal.WithLabelValues("zip").Inc()
	return &Archive{
		FileName:    "frames_" + exportBaseName(session.Filename) + ".zip",
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

// BuildCSV writes one row per frame: category name, timestamp, stored file
// name and note, ordered by capture number.
func (s *Service) BuildCSV(ctx context.Context, videoID string) (*Archive, error) {
	session, err := s.videos.Get(videoID)
	if err != nil {
		return nil, err
	}
	frames, err := s.frames.ListFrames(ctx, videoID)
	if err != nil {
		return nil, err
	}
	names := s.categoryNames()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"category", "timestamp", "file", "note"})
	for _, frame := range frames {
		name, ok := names[frame.CategoryID]
		if !ok {
			name = category.DefaultName
		}
		_ = w.Write([]string{
			name,
			strconv.FormatFloat(frame.TimestampSeconds, 'f', -1, 64),
			frame.FileName,
			frame.Note,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	metrics.ArchivesBuiltTotal.WithLabelValues("csv").Inc()
	return &Archive{
		FileName:    "report_" + exportBaseName(session.Filename) + ".csv",
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

// PushZip builds the ZIP archive and uploads it to the configured object
// store under exports/. Returns the uploaded object's URL.
func (s *Service) PushZip(ctx context.Context, videoID string) (string, error) {
	archive, err := s.BuildZip(ctx, videoID)
	if err != nil {
		return "", err
	}
	url, err := s.files.UploadArchive(ctx, "exports/"+archive.FileName, bytes.NewReader(archive.Data))
	if err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}
	s.logger.Info("archive uploaded",
		slog.String("video_id", videoID),
		slog.String("url", url),
	)
	return url, nil
}

func (s *Service) categoryNames() map[string]string {
	names := make(map[string]string)
	for _, c := range s.categories.List() {
		names[c.ID] = c.Name
	}
	return names
}

// exportBaseName derives the deliverable name stem from the uploaded
// video's filename.
func exportBaseName(videoFilename string) string {
	base := strings.TrimSuffix(filepath.Base(videoFilename), filepath.Ext(videoFilename))
	return storage.SanitizeName(base)
}
