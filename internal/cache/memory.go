package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the fast layer in front of the file store. It holds
// completion responses for repeated prompts within one run; eviction is
// TTL-based, there is no size bound since a corpus-scale run stays small.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL and
// background cleanup interval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached response for key, if present and unexpired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores a response under key for the given TTL; ttl<=0 falls back
// to the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes one entry.
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len reports the number of live entries.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
