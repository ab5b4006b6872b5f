package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates subdirectories", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "data")

		storage, err := NewLocalStorage(dataDir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		for _, dir := range []string{storage.VideosDir(), storage.FramesDir()} {
			info, err := os.Stat(dir)
			if err != nil {
				t.Fatalf("directory not created: %v", err)
			}
			if !info.IsDir() {
				t.Errorf("expected directory at %s, got file", dir)
			}
		}
	})

	t.Run("uses default directory when empty", func(t *testing.T) {
		storage, err := NewLocalStorage("")
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		expected := filepath.Join(os.TempDir(), "video-annotator", "videos")
		if storage.VideosDir() != expected {
			t.Errorf("VideosDir() = %v, want %v", storage.VideosDir(), expected)
		}
	})
}

func TestLocalStorage_SaveVideo(t *testing.T) {
	storage := setupTestStorage(t)

	t.Run("saves data under videos dir", func(t *testing.T) {
		ctx := context.Background()
		data := bytes.NewReader([]byte("video data"))

		path, err := storage.SaveVideo(ctx, "holiday.mp4", data)
		if err != nil {
			t.Fatalf("SaveVideo() error = %v", err)
		}

		if filepath.Dir(path) != storage.VideosDir() {
			t.Errorf("path %s should be inside %s", path, storage.VideosDir())
		}
		if !strings.HasSuffix(path, "_holiday.mp4") {
			t.Errorf("path %s should keep the original name as suffix", path)
		}

		content, err := os.ReadFile(path) // #nosec G304 - test-created path
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "video data" {
			t.Errorf("got %q, want %q", string(content), "video data")
		}
	})

	t.Run("sanitizes hostile names", func(t *testing.T) {
		ctx := context.Background()

		path, err := storage.SaveVideo(ctx, "../../etc/pass wd.mp4", bytes.NewReader([]byte("x")))
		if err != nil {
			t.Fatalf("SaveVideo() error = %v", err)
		}
		if filepath.Dir(path) != storage.VideosDir() {
			t.Errorf("path %s escaped the videos dir", path)
		}
		if strings.Contains(filepath.Base(path), " ") {
			t.Errorf("name %s should not contain spaces", filepath.Base(path))
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := storage.SaveVideo(ctx, "test.mp4", bytes.NewReader([]byte("data")))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_FramePath(t *testing.T) {
	storage := setupTestStorage(t)

	path := storage.FramePath("clip_frame1_ts2_500.png")
	if filepath.Dir(path) != storage.FramesDir() {
		t.Errorf("path %s should be inside %s", path, storage.FramesDir())
	}

	// Traversal attempts are confined to the frames directory.
	hostile := storage.FramePath("../../secrets.png")
	if filepath.Dir(hostile) != storage.FramesDir() {
		t.Errorf("path %s escaped the frames dir", hostile)
	}
}

func TestLocalStorage_OpenFrame(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("opens stored frame", func(t *testing.T) {
		path := storage.FramePath("test.png")
		if err := os.WriteFile(path, []byte("frame data"), 0600); err != nil {
			t.Fatalf("failed to write frame: %v", err)
		}

		reader, err := storage.OpenFrame(ctx, "test.png")
		if err != nil {
			t.Fatalf("OpenFrame() error = %v", err)
		}
		defer func() { _ = reader.Close() }()

		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(content) != "frame data" {
			t.Errorf("got %q, want %q", string(content), "frame data")
		}
	})

	t.Run("returns error for non-existent frame", func(t *testing.T) {
		_, err := storage.OpenFrame(ctx, "missing.png")
		if err == nil {
			t.Error("expected error for non-existent frame")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := storage.OpenFrame(ctx, "test.png")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_Remove(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("removes files", func(t *testing.T) {
		var paths []string
		for i := 0; i < 3; i++ {
			path, err := storage.SaveVideo(ctx, "cleanup.mp4", bytes.NewReader([]byte("data")))
			if err != nil {
				t.Fatalf("SaveVideo() error = %v", err)
			}
			paths = append(paths, path)
		}

		err := storage.Remove(ctx, paths)
		if err != nil {
			t.Fatalf("Remove() error = %v", err)
		}

		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s still exists", p)
			}
		}
	})

	t.Run("ignores non-existent files", func(t *testing.T) {
		err := storage.Remove(ctx, []string{"/non/existent/file"})
		if err != nil {
			t.Errorf("Remove() should ignore non-existent files, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := storage.Remove(ctx, []string{"/some/path"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocalStorage_UploadArchive(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	_, err := storage.UploadArchive(ctx, "key", bytes.NewReader([]byte("data")))
	if err != ErrS3NotConfigured {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"holiday.mp4", "holiday.mp4"},
		{"my video (1).mp4", "my_video__1_.mp4"},
		{"févr vidéo.mov", "f_vr_vid_o.mov"},
		{"", "file"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return storage
}
