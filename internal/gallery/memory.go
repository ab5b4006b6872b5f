package gallery

import (
	"context"
	"sort"
	"sync"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// It uses a map with RWMutex for thread-safe access.
// Suitable for single-node deployments; swap for PostgresRepository when
// frames must survive restarts.
type MemoryRepository struct {
	mu     sync.RWMutex
	frames map[string]*Frame
}

// NewMemoryRepository creates a new in-memory frame repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		frames: make(map[string]*Frame),
	}
}

// Save persists a frame to the in-memory storage.
// Creates a clone to avoid external mutations.
func (r *MemoryRepository) Save(_ context.Context, frame *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[frame.ID] = frame.Clone()
	return nil
}

// FindByID retrieves a frame by its ID.
// Returns a clone to prevent external mutations.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	frame, ok := r.frames[id]
	if !ok {
		return nil, ErrFrameNotFound
	}
	return frame.Clone(), nil
}

// ListByVideo returns all frames of a video ordered by capture number.
// Returns clones to prevent external mutations.
func (r *MemoryRepository) ListByVideo(_ context.Context, videoID string) ([]*Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Frame, 0)
	for _, frame := range r.frames {
		if frame.VideoID == videoID {
			result = append(result, frame.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

// NextNumber returns one past the highest capture number the video has seen.
func (r *MemoryRepository) NextNumber(_ context.Context, videoID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	maxNumber := 0
	for _, frame := range r.frames {
		if frame.VideoID == videoID && frame.Number > maxNumber {
			maxNumber = frame.Number
		}
	}
	return maxNumber + 1, nil
}

// Delete removes a frame from storage.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.frames[id]; !ok {
		return ErrFrameNotFound
	}
	delete(r.frames, id)
	return nil
}

// DeleteByVideo removes all frames of a video and returns the removed records.
func (r *MemoryRepository) DeleteByVideo(_ context.Context, videoID string) ([]*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := make([]*Frame, 0)
	for id, frame := range r.frames {
		if frame.VideoID == videoID {
			removed = append(removed, frame)
			delete(r.frames, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Number < removed[j].Number })
	return removed, nil
}

// ReassignCategory moves every frame in one category to another.
func (r *MemoryRepository) ReassignCategory(_ context.Context, fromCategoryID, toCategoryID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for _, frame := range r.frames {
		if frame.CategoryID == fromCategoryID {
			frame.CategoryID = toCategoryID
			moved++
		}
	}
	return moved, nil
}
