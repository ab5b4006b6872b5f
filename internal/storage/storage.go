// Package storage owns the on-disk layout of the service's data directory.
// It defines the Storage interface (port) for hexagonal architecture and
// implementations for local disk and S3-backed archive delivery.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for persisting uploaded videos and captured
// frame images. Implementations keep videos and frames in separate
// directories and optionally support S3 uploads for export archives.
type Storage interface {
	// SaveVideo stores an uploaded video and returns its file path.
	// The name parameter is the upload's original filename and is kept,
	// sanitized, as a suffix of the stored name.
	SaveVideo(ctx context.Context, name string, data io.Reader) (path string, err error)

	// FramePath returns the full path a frame image with the given file
	// name is (or would be) stored at.
	FramePath(name string) string

	// OpenFrame opens a stored frame image for reading.
	// The caller is responsible for closing the returned ReadCloser.
	OpenFrame(ctx context.Context, name string) (io.ReadCloser, error)

	// Remove deletes the given files.
	// It keeps going when individual files fail to delete.
	Remove(ctx context.Context, paths []string) error

	// UploadArchive uploads an export archive to S3 and returns its URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadArchive(ctx context.Context, key string, data io.Reader) (url string, err error)
}
