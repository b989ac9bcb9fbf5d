package cache

import "time"

// LayeredCache combines an in-memory layer with the persistent file
// store. Reads check memory first and promote file hits into memory.
type LayeredCache struct {
	memory Cache
	file   Cache
}

// NewLayeredCache creates a layered cache over path
func NewLayeredCache(memoryTTL time.Duration, path string, fileTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		file:   NewFileStore(path, fileTTL),
	}
}

// Get retrieves a value (memory first, then file)
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.file.Get(key); found {
		// Promote to memory
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.file.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.file.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.file.Clear()
}
