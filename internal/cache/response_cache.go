// Package cache holds the read-side caches: API response results keyed by
// their full query parameter set, and the process-wide translations cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// ResponseCache stores previously computed API results as serialized bytes.
// Entries are only ever invalidated wholesale, by Clear, after a reload.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Clear(ctx context.Context)
}

// Key derives a stable cache key from the full set of query parameters that
// produce a result. Map keys are serialized in sorted order, so equal
// parameter sets always hash identically.
func Key(params map[string]string) string {
	serialized, _ := json.Marshal(params)
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

// maxEntries bounds the in-memory cache; exceeding it resets the cache
// rather than evicting selectively.
const maxEntries = 1000

// MemoryCache is the in-process ResponseCache. Clearing is atomic with
// respect to concurrent inserts: an insert that starts after a clear always
// lands in the fresh map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]byte),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxEntries {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = value
}

func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 {
		c.entries = make(map[string][]byte)
	}
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
