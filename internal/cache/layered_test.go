package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLayeredSetReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewLayeredCache(time.Minute, path, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, found)
	}
}

func TestLayeredPromotion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	// Seed only the file layer, then read through a fresh layered cache
	// whose memory layer starts cold.
	file := NewFileStore(path, time.Minute)
	if err := file.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	c := NewLayeredCache(time.Minute, path, time.Minute)
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("file-layer hit failed: %q, %v", got, found)
	}

	// The hit must now be served from memory.
	mem, found := c.memory.Get("k")
	if !found || string(mem) != "v" {
		t.Error("file hit was not promoted into memory")
	}
}

func TestLayeredDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewLayeredCache(time.Minute, path, time.Minute)

	_ = c.Set("k", []byte("v"), time.Minute)
	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted entry still readable")
	}
}
