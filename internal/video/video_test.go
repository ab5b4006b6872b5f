package video

import (
	"errors"
	"testing"
	"time"
)

func newSession(id string) *Session {
	return &Session{
		ID:         id,
		SourcePath: "/data/videos/" + id + ".mp4",
		Filename:   "clip.mp4",
		FrameRate:  30,
		UploadedAt: time.Now(),
	}
}

func TestStore_CurrentEmpty(t *testing.T) {
	store := NewStore()

	_, err := store.Current()
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestStore_ReplaceReturnsPrevious(t *testing.T) {
	store := NewStore()

	if prev := store.Replace(newSession("a")); prev != nil {
		t.Errorf("expected no previous session, got %+v", prev)
	}

	prev := store.Replace(newSession("b"))
	if prev == nil || prev.ID != "a" {
		t.Fatalf("expected displaced session a, got %+v", prev)
	}

	current, err := store.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.ID != "b" {
		t.Errorf("expected active session b, got %s", current.ID)
	}
}

func TestStore_GetMatchesActiveID(t *testing.T) {
	store := NewStore()
	store.Replace(newSession("a"))

	got, err := store.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("expected session a, got %s", got.ID)
	}

	if _, err := store.Get("stale"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession for a stale ID, got %v", err)
	}
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Replace(newSession("a"))

	first, err := store.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Filename = "mutated.mp4"

	second, err := store.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Filename != "clip.mp4" {
		t.Error("expected the stored session to be unaffected by caller mutation")
	}
}
