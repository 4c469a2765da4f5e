// Package prefs persists the small client-side state that lives outside the
// transaction store: custom category definitions and the dark-mode flag.
// State is read once at startup and written back on every mutation.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mitcash/internal/categories"
)

// State is the persisted preference document.
type State struct {
	CustomCategories []categories.Category `json:"customCategories"`
	DarkMode         bool                  `json:"darkMode"`
}

// Store is a file-backed preference store. All mutations are written through
// immediately with an atomic rename.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
}

// Open loads preferences from path. A missing file yields empty defaults; a
// corrupt file is an error so user data is never silently clobbered.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return s, nil
}

// State returns a snapshot of the current preferences.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.CustomCategories = append([]categories.Category(nil), s.state.CustomCategories...)
	return snap
}

// SetDarkMode stores the dark-mode flag.
func (s *Store) SetDarkMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DarkMode = on
	return s.save()
}

// SetCustomCategories replaces the persisted custom category set.
func (s *Store) SetCustomCategories(customs []categories.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CustomCategories = append([]categories.Category(nil), customs...)
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
