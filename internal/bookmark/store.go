package bookmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Errors
var (
	ErrBadEntry = errors.New("bookmark entry must be [target, path] or [target, path, webURL]")
)

// Entry is one bookmark: the real server it points at, the directory to
// open by default, and an optional web mirror of the same content.
type Entry struct {
	Target      string
	DefaultPath string
	WebURL      string
}

// MarshalJSON writes the array form used by the bookmark file.
func (e Entry) MarshalJSON() ([]byte, error) {
	arr := []string{e.Target, e.DefaultPath}
	if e.WebURL != "" {
		arr = append(arr, e.WebURL)
	}
	return json.Marshal(arr)
}

// UnmarshalJSON reads the array form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) < 2 || len(arr) > 3 {
		return ErrBadEntry
	}
	e.Target = arr[0]
	e.DefaultPath = arr[1]
	if len(arr) == 3 {
		e.WebURL = arr[2]
	}
	return nil
}

// Store holds bookmark aliases, keyed by alias base URL.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
}

// Load reads the bookmark file at path. A missing file yields an empty
// store; Save creates it.
func Load(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse bookmarks %s: %w", path, err)
	}
	return s, nil
}

// Save writes the store back to its file.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create bookmarks dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	return nil
}

// Set stores a bookmark. If the target base is itself a known alias, the
// alias's target is stored instead, keeping the table flat so resolution
// stays a single hop.
func (s *Store) Set(alias string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[e.Target]; ok {
		e.Target = existing.Target
	}
	s.entries[alias] = e
}

// Remove deletes an alias, reporting whether it existed.
func (s *Store) Remove(alias string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[alias]
	delete(s.entries, alias)
	return ok
}

// Get returns the entry for an alias.
func (s *Store) Get(alias string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[alias]
	return e, ok
}

// Names returns all aliases, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for alias := range s.entries {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Aliases returns an alias -> target snapshot for the identity resolver.
func (s *Store) Aliases() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]string, len(s.entries))
	for alias, e := range s.entries {
		m[alias] = e.Target
	}
	return m
}
