package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for response caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from arbitrary identity material.
// Callers concatenate provider, model, prompt and sampling parameters,
// so switching providers simply misses the old entries.
func Key(material string) string {
	hash := sha256.Sum256([]byte(material))
	return "mizan:v1:" + hex.EncodeToString(hash[:])
}
