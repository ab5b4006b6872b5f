// Package category manages the taxonomy used to tag captured frames.
// Categories are persisted to a single JSON file so they survive restarts
// and can be inspected or backed up by hand. A protected default category
// always exists and is the fallback target whenever another category is
// removed.
package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/demusis/analise-conteudo-video/internal/id"
)

const (
	// DefaultID is the identifier of the protected default category.
	DefaultID = "default"
	// DefaultName is the display name of the protected default category.
	DefaultName = "Uncategorized"

	defaultColor = "#6b7280"
	createdColor = "#4f46e5"
)

var (
	// ErrNotFound is returned when a category cannot be found by ID.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when a category with the same name already exists.
	ErrDuplicateName = errors.New("category name already exists")
	// ErrProtected is returned when attempting to rename or delete the default category.
	ErrProtected = errors.New("default category cannot be modified")
	// ErrEmptyName is returned when a category name is empty after trimming.
	ErrEmptyName = errors.New("category name cannot be empty")
)

// Category is a user-defined tag for captured frames.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Default returns the protected default category.
func Default() Category {
	return Category{ID: DefaultID, Name: DefaultName, Color: defaultColor}
}

// Store is a JSON-file-backed category collection.
// Mutations write the new list to disk before they become visible, so the
// in-memory view never runs ahead of the file.
type Store struct {
	mu   sync.Mutex
	path string
	cats []Category
}

// NewStore opens the category file at path, creating it with only the
// default category when it is missing or unreadable.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create category directory: %w", err)
	}

	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the backing file. A missing or corrupt file is replaced with
// the default seed rather than treated as fatal, matching how a fresh data
// directory bootstraps itself.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path) // #nosec G304 - path comes from service configuration
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read category file: %w", err)
	}

	cats := []Category{Default()}
	if err == nil {
		var parsed []Category
		if json.Unmarshal(data, &parsed) == nil {
			// The default category is load-bearing: deletes reassign frames
			// to it. Restore it if a hand-edited file lost it.
			if !hasID(parsed, DefaultID) {
				parsed = append([]Category{Default()}, parsed...)
			}
			cats = parsed
		}
	}

	if err := s.save(cats); err != nil {
		return err
	}
	s.cats = cats
	return nil
}

// save writes the given list to the backing file.
func (s *Store) save(cats []Category) error {
	data, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write category file: %w", err)
	}
	return nil
}

// List returns all categories in stored order.
func (s *Store) List() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Category, len(s.cats))
	copy(out, s.cats)
	return out
}

// Get returns the category with the given ID.
func (s *Store) Get(id string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

// Create adds a new category with the given name.
// Returns ErrEmptyName for blank names and ErrDuplicateName when the name
// is already taken.
func (s *Store) Create(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if hasName(s.cats, name, "") {
		return Category{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	cat := Category{ID: newID(), Name: name, Color: createdColor}
	next := append(clone(s.cats), cat)
	if err := s.save(next); err != nil {
		return Category{}, err
	}
	s.cats = next
	return cat, nil
}

// Rename changes the name of an existing category.
// The default category is protected and duplicate names are rejected.
func (s *Store) Rename(id, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}
	if id == DefaultID {
		return Category{}, ErrProtected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.cats, id)
	if idx < 0 {
		return Category{}, ErrNotFound
	}
	if hasName(s.cats, name, id) {
		return Category{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	next := clone(s.cats)
	next[idx].Name = name
	if err := s.save(next); err != nil {
		return Category{}, err
	}
	s.cats = next
	return next[idx], nil
}

// Delete removes a category. The default category is protected.
// Reassigning frames that referenced the deleted category is the caller's
// responsibility.
func (s *Store) Delete(id string) error {
	if id == DefaultID {
		return ErrProtected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.cats, id)
	if idx < 0 {
		return ErrNotFound
	}

	next := make([]Category, 0, len(s.cats)-1)
	for _, c := range s.cats {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

// Reset discards every category except the default.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := []Category{Default()}
	if err := s.save(next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

// Export returns all categories except the default, which every
// installation already has.
func (s *Store) Export() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Category, 0, len(s.cats))
	for _, c := range s.cats {
		if c.ID == DefaultID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Import merges categories from an exported list. Entries with blank or
// already-taken names are skipped. Imported entries get fresh IDs so they
// never collide with existing ones. Returns how many entries were imported
// and how many were skipped.
func (s *Store) Import(cats []Category) (imported, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.cats)
	for _, c := range cats {
		name := strings.TrimSpace(c.Name)
		if name == "" || hasName(next, name, "") {
			skipped++
			continue
		}
		color := c.Color
		if color == "" {
			color = createdColor
		}
		next = append(next, Category{ID: newID(), Name: name, Color: color})
		imported++
	}

	if imported == 0 {
		return 0, skipped, nil
	}
	if err := s.save(next); err != nil {
		return 0, 0, err
	}
	s.cats = next
	return imported, skipped, nil
}

func newID() string {
	return id.New()
}

func clone(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

func indexOf(cats []Category, id string) int {
	for i, c := range cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func hasID(cats []Category, id string) bool {
	return indexOf(cats, id) >= 0
}

// hasName reports whether any category other than excludeID already uses name.
func hasName(cats []Category, name, excludeID string) bool {
	for _, c := range cats {
		if c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}
