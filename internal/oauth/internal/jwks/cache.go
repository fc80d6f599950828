package jwks

import (
	"sync"
	"time"
)

type cacheEntry struct {
	key       any
	expiresAt time.Time
}

// Cache holds parsed public keys by kid with a fixed TTL.
// It is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a new JWKS cache with the specified TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the key for keyID, or nil if absent or expired.
func (c *Cache) Get(keyID string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[keyID]
	if !ok || c.now().After(entry.expiresAt) {
		return nil
	}
	return entry.key
}

// Set stores a key in the cache with the configured TTL.
func (c *Cache) Set(keyID string, key any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[keyID] = cacheEntry{key: key, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes all keys from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Cleanup drops expired entries. The client calls it after every refresh.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for keyID, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, keyID)
		}
	}
}

// Size returns the number of entries, including expired ones not yet cleaned up.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
