package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/surveypulse/backend/internal/models"
)

// CoordinateCache memoizes geocoded (country, region) pairs. Merge-only: an
// existing entry is never overwritten, so repeated lookups are idempotent.
// Safe for concurrent readers; writes happen only during the single-threaded
// coordinate-loading pass.
type CoordinateCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]models.Coordinate
	added   bool
}

func NewCoordinateCache() *CoordinateCache {
	return &CoordinateCache{
		entries: make(map[string]map[string]models.Coordinate),
	}
}

// LoadFile replaces the cache content with the persisted form.
func (c *CoordinateCache) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read coordinates file: %w", err)
	}

	entries := make(map[string]map[string]models.Coordinate)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse coordinates file: %w", err)
	}

	c.mu.Lock()
	c.entries = entries
	c.added = false
	c.mu.Unlock()

	return nil
}

func (c *CoordinateCache) Lookup(alpha2, region string) (models.Coordinate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	regions, ok := c.entries[alpha2]
	if !ok {
		return models.Coordinate{}, false
	}
	coord, ok := regions[region]
	return coord, ok
}

// Merge adds a coordinate if the (country, region) pair has none yet. First
// write wins; returns whether a new entry was added.
func (c *CoordinateCache) Merge(alpha2, region string, coord models.Coordinate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	regions, ok := c.entries[alpha2]
	if !ok {
		regions = make(map[string]models.Coordinate)
		c.entries[alpha2] = regions
	}
	if _, exists := regions[region]; exists {
		return false
	}

	regions[region] = coord
	c.added = true
	return true
}

// Added reports whether any entry was merged in since the last load or save.
func (c *CoordinateCache) Added() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.added
}

// SaveFile writes the persisted form and resets the added flag.
func (c *CoordinateCache) SaveFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal coordinates: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write coordinates file: %w", err)
	}

	c.added = false
	return nil
}
