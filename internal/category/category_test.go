package category

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "categories.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewStore_SeedsDefault(t *testing.T) {
	s := newTestStore(t)

	cats := s.List()
	if len(cats) != 1 {
		t.Fatalf("expected 1 category, got %d", len(cats))
	}
	if cats[0].ID != DefaultID {
		t.Errorf("expected default ID %q, got %q", DefaultID, cats[0].ID)
	}
	if cats[0].Name != DefaultName {
		t.Errorf("expected default name %q, got %q", DefaultName, cats[0].Name)
	}
}

func TestNewStore_ReloadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := s.Create("Violence")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second store over the same file sees the persisted state.
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s2.Get(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Violence" {
		t.Errorf("expected name %q, got %q", "Violence", got.Name)
	}
}

func TestNewStore_CorruptFileReseeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cats := s.List()
	if len(cats) != 1 || cats[0].ID != DefaultID {
		t.Errorf("expected reseeded default store, got %+v", cats)
	}
}

func TestNewStore_RestoresMissingDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	data, _ := json.Marshal([]Category{{ID: "abc", Name: "Custom", Color: "#4f46e5"}})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(DefaultID); err != nil {
		t.Errorf("expected default category to be restored, got %v", err)
	}
	if _, err := s.Get("abc"); err != nil {
		t.Errorf("expected existing category to survive, got %v", err)
	}
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)

	cat, err := s.Create("  Violence  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Name != "Violence" {
		t.Errorf("expected trimmed name %q, got %q", "Violence", cat.Name)
	}
	if cat.ID == "" || cat.ID == DefaultID {
		t.Errorf("expected fresh ID, got %q", cat.ID)
	}
	if cat.Color == "" {
		t.Error("expected a color to be assigned")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create("Violence"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := s.Create("Violence")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestStore_Create_EmptyName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("   ")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestStore_Rename(t *testing.T) {
	s := newTestStore(t)
	cat, _ := s.Create("Old")

	renamed, err := s.Rename(cat.ID, "New")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renamed.Name != "New" {
		t.Errorf("expected name %q, got %q", "New", renamed.Name)
	}

	got, _ := s.Get(cat.ID)
	if got.Name != "New" {
		t.Errorf("expected persisted name %q, got %q", "New", got.Name)
	}
}

func TestStore_Rename_Errors(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("A")
	_, _ = s.Create("B")

	tests := []struct {
		name    string
		id      string
		newName string
		want    error
	}{
		{"default is protected", DefaultID, "Other", ErrProtected},
		{"unknown id", "nope", "Other", ErrNotFound},
		{"duplicate name", a.ID, "B", ErrDuplicateName},
		{"empty name", a.ID, "  ", ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Rename(tt.id, tt.newName)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStore_Rename_KeepOwnName(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create("A")

	// Renaming to its current name is not a duplicate.
	if _, err := s.Rename(a.ID, "A"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	cat, _ := s.Create("Violence")

	if err := s.Delete(cat.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(cat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete_Errors(t *testing.T) {
	s := newTestStore(t)

	if err := s.Delete(DefaultID); !errors.Is(err, ErrProtected) {
		t.Errorf("expected ErrProtected, got %v", err)
	}
	if err := s.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.Create("A")
	_, _ = s.Create("B")

	if err := s.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cats := s.List()
	if len(cats) != 1 || cats[0].ID != DefaultID {
		t.Errorf("expected only the default category, got %+v", cats)
	}
}

func TestStore_Export_ExcludesDefault(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.Create("A")
	_, _ = s.Create("B")

	exported := s.Export()
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported categories, got %d", len(exported))
	}
	for _, c := range exported {
		if c.ID == DefaultID {
			t.Error("default category must not be exported")
		}
	}
}

func TestStore_Import(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.Create("Existing")

	imported, skipped, err := s.Import([]Category{
		{Name: "Existing", Color: "#123456"}, // duplicate, skipped
		{Name: "  "},                         // blank, skipped
		{Name: "Fresh", Color: "#abcdef"},
		{Name: "NoColor"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imported != 2 {
		t.Errorf("expected 2 imported, got %d", imported)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}

	cats := s.List()
	if len(cats) != 4 { // default + Existing + Fresh + NoColor
		t.Errorf("expected 4 categories, got %d", len(cats))
	}
	for _, c := range cats {
		if c.Name == "NoColor" && c.Color == "" {
			t.Error("imported category without color should get one assigned")
		}
		if c.Name == "Fresh" && c.Color != "#abcdef" {
			t.Errorf("expected imported color to be kept, got %q", c.Color)
		}
	}
}

func TestStore_Import_FreshIDs(t *testing.T) {
	s := newTestStore(t)

	imported, _, err := s.Import([]Category{{ID: DefaultID, Name: "Sneaky"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imported != 1 {
		t.Fatalf("expected 1 imported, got %d", imported)
	}
	for _, c := range s.List() {
		if c.Name == "Sneaky" && c.ID == DefaultID {
			t.Error("imported categories must get fresh IDs")
		}
	}
}
