package bookmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// History records when each FTP URL was last opened, most recent first.
type History struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	visits map[string]time.Time
}

// LoadHistory reads the history file at path, tolerating a missing file.
func LoadHistory(path string) (*History, error) {
	h := &History{path: path, now: time.Now, visits: make(map[string]time.Time)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	if err := json.Unmarshal(data, &h.visits); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return h, nil
}

// Touch marks url as visited now.
func (h *History) Touch(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits[url] = h.now()
}

// Recent returns all visited URLs, newest first.
func (h *History) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	urls := make([]string, 0, len(h.visits))
	for url := range h.visits {
		urls = append(urls, url)
	}
	sort.Slice(urls, func(i, j int) bool {
		ti, tj := h.visits[urls[i]], h.visits[urls[j]]
		if ti.Equal(tj) {
			return urls[i] < urls[j]
		}
		return ti.After(tj)
	})
	return urls
}

// Clear forgets all visits.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visits = make(map[string]time.Time)
}

// Save writes the history back to its file.
func (h *History) Save() error {
	h.mu.Lock()
	data, err := json.MarshalIndent(h.visits, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
