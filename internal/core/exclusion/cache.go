package exclusion

import "sync"

// Cache maps normalized folder and document paths to an excluded verdict. A
// cache lives for one aggregation run. Safe for concurrent use.
type Cache struct {
	mu   sync.RWMutex
	data map[string]bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string]bool)}
}

// Get returns the cached verdict for path.
func (c *Cache) Get(path string) (excluded, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	excluded, ok = c.data[path]
	return excluded, ok
}

// Set stores the verdict for path.
func (c *Cache) Set(path string, excluded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[path] = excluded
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
