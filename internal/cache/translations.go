package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// TranslationsCache caches phrase translations for the lifetime of the
// process. Its lifecycle is independent of campaign reloads: it is loaded
// lazily once and grows as the translator adds entries, but is never cleared
// by the reload path.
type TranslationsCache struct {
	mu      sync.RWMutex
	entries map[string]string
	loaded  bool
}

func NewTranslationsCache() *TranslationsCache {
	return &TranslationsCache{
		entries: make(map[string]string),
	}
}

// LoadFile populates the cache from the persisted translations file. Loading
// twice is a no-op.
func (c *TranslationsCache) LoadFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read translations file: %w", err)
	}
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse translations file: %w", err)
	}

	c.entries = entries
	c.loaded = true
	return nil
}

func (c *TranslationsCache) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *TranslationsCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *TranslationsCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *TranslationsCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// All returns a copy of the cache content.
func (c *TranslationsCache) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		all[k] = v
	}
	return all
}
