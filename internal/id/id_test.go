package id

import (
	"strings"
	"testing"
)

func TestNewFormat(t *testing.T) {
	got := New()

	if len(got) != 32 {
		t.Errorf("expected 32 hex digits, got %d: %q", len(got), got)
	}
	if strings.Contains(got, "-") {
		t.Errorf("expected no dashes, got %q", got)
	}
	for _, r := range got {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("unexpected character %q in %q", r, got)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got := New()
		if seen[got] {
			t.Fatalf("duplicate ID generated: %s", got)
		}
		seen[got] = true
	}
}
