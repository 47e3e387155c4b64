// Package cache provides a concurrent-safe in-memory key set and store,
// used for the per-run visited-set and for memoising fetched sitemap
// documents. Instances are scoped to a single analysis run; concurrent runs
// must use independent instances.
package cache

import "sync"

// InMemoryCache is a simple, concurrent-safe in-memory key-value store.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewInMemoryCache creates and returns a new InMemoryCache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		items: make(map[string]any),
	}
}

// Get retrieves a value from the cache.
// It returns the value and true if the key exists, otherwise nil and false.
func (c *InMemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, found := c.items[key]
	return item, found
}

// Set adds or updates a value in the cache.
func (c *InMemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Has reports whether a key is present. Used as the visited-set membership
// check during traversal.
func (c *InMemoryCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := c.items[key]
	return found
}

// Mark records a key with no associated value. Marking an already-present
// key returns false, which makes visited-set insertion idempotent.
func (c *InMemoryCache) Mark(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.items[key]; found {
		return false
	}
	c.items[key] = struct{}{}
	return true
}

// Delete removes a value from the cache.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored keys.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
