package ftpx

import "sync"

// DefaultStatCacheSize bounds the stat cache until the pool resizes it.
// Large directory listings thrash a small cache, so the pool grows it
// right after connecting.
const DefaultStatCacheSize = 5000

// statCache is a bounded path -> Entry cache filled by directory listings.
// Eviction is oldest-inserted-first.
type statCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]Entry
	order   []string
}

func newStatCache(limit int) *statCache {
	if limit < 1 {
		limit = DefaultStatCacheSize
	}
	return &statCache{
		limit:   limit,
		entries: make(map[string]Entry),
	}
}

func (c *statCache) get(path string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e, ok
}

func (c *statCache) put(path string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[path]; !ok {
		c.order = append(c.order, path)
	}
	c.entries[path] = e
	c.evictLocked()
}

func (c *statCache) invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// resize changes the cache bound, evicting oldest entries if shrinking.
func (c *statCache) resize(limit int) {
	if limit < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = limit
	c.evictLocked()
}

func (c *statCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *statCache) evictLocked() {
	for len(c.entries) > c.limit && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		// order may hold paths already invalidated; skip those.
		if _, ok := c.entries[victim]; ok {
			delete(c.entries, victim)
		}
	}
}
