package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when S3 operations are attempted
// without proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// LocalStorage implements the Storage interface using local disk.
// Uploaded videos live under <dataDir>/videos and captured frame images
// under <dataDir>/frames. It does not support S3 operations unless wrapped
// with S3Storage.
type LocalStorage struct {
	videosDir string
	framesDir string
}

// NewLocalStorage creates a new LocalStorage instance rooted at dataDir.
// If dataDir is empty, a directory under os.TempDir() is used.
// The videos and frames subdirectories are created if they don't exist.
func NewLocalStorage(dataDir string) (*LocalStorage, error) {
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "video-annotator")
	}

	s := &LocalStorage{
		videosDir: filepath.Join(dataDir, "videos"),
		framesDir: filepath.Join(dataDir, "frames"),
	}
	for _, dir := range []string{s.videosDir, s.framesDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	return s, nil
}

// VideosDir returns the directory uploaded videos are stored in.
func (s *LocalStorage) VideosDir() string {
	return s.videosDir
}

// FramesDir returns the directory captured frame images are stored in.
func (s *LocalStorage) FramesDir() string {
	return s.framesDir
}

// SaveVideo stores an uploaded video and returns its file path.
// A random prefix keeps re-uploads of the same file from colliding.
func (s *LocalStorage) SaveVideo(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.CreateTemp(s.videosDir, "*_"+SanitizeName(filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create video file: %w", err)
	}

	fileName := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write video file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close video file: %w", err)
	}

	return fileName, nil
}

// FramePath returns the full path for a frame image file name.
// Only the base name is used, so callers cannot escape the frames directory.
func (s *LocalStorage) FramePath(name string) string {
	return filepath.Join(s.framesDir, filepath.Base(name))
}

// OpenFrame opens a stored frame image for reading.
// The caller is responsible for closing the returned ReadCloser.
func (s *LocalStorage) OpenFrame(ctx context.Context, name string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	f, err := os.Open(s.FramePath(name)) // #nosec G304 - path is confined to the frames directory
	if err != nil {
		return nil, fmt.Errorf("open frame file: %w", err)
	}

	return f, nil
}

// Remove deletes the given files.
// It keeps going when individual files fail to delete,
// returning the first error encountered.
func (s *LocalStorage) Remove(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// UploadArchive is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) UploadArchive(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}

// SanitizeName reduces a filename to characters that are safe in stored
// file names and export archive entries.
func SanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == '-' || r == '_' || r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	return string(out)
}
