package gallery

import (
	"context"
	"errors"
)

// ErrFrameNotFound is returned when a frame cannot be found by ID.
var ErrFrameNotFound = errors.New("frame not found")

// Repository defines the interface for frame persistence.
// It acts as a port in the hexagonal architecture pattern.
type Repository interface {
	// Save persists a frame to the storage.
	// If the frame already exists, it should be updated.
	Save(ctx context.Context, frame *Frame) error

	// FindByID retrieves a frame by its unique identifier.
	// Returns ErrFrameNotFound if the frame does not exist.
	FindByID(ctx context.Context, id string) (*Frame, error)

	// ListByVideo returns all frames of a video ordered by capture number.
	ListByVideo(ctx context.Context, videoID string) ([]*Frame, error)

	// NextNumber returns the capture sequence number the next frame of the
	// video should get. Numbers are monotone per video so stored file names
	// never collide, even after deletions.
	NextNumber(ctx context.Context, videoID string) (int, error)

	// Delete removes a frame from storage.
	// Returns ErrFrameNotFound if the frame does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByVideo removes all frames of a video and returns the removed
	// records so the caller can clean up their image files.
	DeleteByVideo(ctx context.Context, videoID string) ([]*Frame, error)

	// ReassignCategory moves every frame in one category to another,
	// across all videos. Returns how many frames were moved.
	ReassignCategory(ctx context.Context, fromCategoryID, toCategoryID string) (int, error)
}
