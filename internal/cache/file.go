package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists the whole cache as one JSON document on disk.
// The file is loaded once at construction and rewritten after every
// Set. A corrupt or missing file is not fatal: the store simply
// starts empty.
type FileStore struct {
	path    string
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]fileEntry
}

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileStore creates a file-backed cache at path.
func NewFileStore(path string, ttl time.Duration) *FileStore {
	s := &FileStore{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]fileEntry),
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var entries map[string]fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt cache file: start empty
		return
	}
	s.entries = entries
}

func (s *FileStore) flush() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Get retrieves a value from the store
func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value and rewrites the backing file
func (s *FileStore) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = fileEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
	return s.flush()
}

// Delete removes a value from the store
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return s.flush()
}

// Clear removes all entries and the backing file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]fileEntry)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Len reports the number of live entries
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
