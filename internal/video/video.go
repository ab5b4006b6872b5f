// Package video holds the active video session: the uploaded source file
// and the stream facts captures depend on. A single session is active at a
// time; uploading a new video replaces it, and the caller is responsible
// for cleaning up everything the previous session owned.
package video

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when no video session is active or the
// requested session is no longer the active one.
var ErrNoSession = errors.New("video session not found")

// DefaultFrameRate is assumed when the container does not report one.
const DefaultFrameRate = 30.0

// Session represents one uploaded video. It is immutable for its lifetime:
// a new upload creates a new session rather than mutating this one.
type Session struct {
	// ID is the opaque session handle.
	ID string `json:"id"`
	// SourcePath is where the uploaded container lives on disk.
	SourcePath string `json:"-"`
	// Filename is the name the video was uploaded with.
	Filename string `json:"filename"`
	// FrameRate is the stream's frames per second, DefaultFrameRate when
	// the container did not report one.
	FrameRate float64 `json:"frame_rate"`
	// DurationSeconds is the container duration, 0 when unknown.
	DurationSeconds float64 `json:"duration_seconds"`
	// Width and Height are the video stream dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`
	// UploadedAt is when the session was created.
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store keeps the single active session. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs session as the active one and returns the session it
// displaced, or nil if none was active.
func (s *Store) Replace(session *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.current
	s.current = session
	return previous
}

// Current returns a copy of the active session.
// Returns ErrNoSession when nothing has been uploaded yet.
func (s *Store) Current() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoSession
	}
	clone := *s.current
	return &clone, nil
}

// Get returns a copy of the active session if its ID matches.
// Returns ErrNoSession for stale or unknown IDs.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || s.current.ID != id {
		return nil, ErrNoSession
	}
	clone := *s.current
	return &clone, nil
}
