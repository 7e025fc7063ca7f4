// Package geo resolves survey locations to coordinates through an external
// geocoding service with a persistent, merge-only memoization cache.
package geo

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/models"
)

// Resolver answers (country, region) coordinate lookups cache-first, hitting
// the external geocoder only on a miss.
type Resolver struct {
	cache    *CoordinateCache
	geocoder Geocoder
	logger   *logrus.Logger
}

func NewResolver(cache *CoordinateCache, geocoder Geocoder, logger *logrus.Logger) *Resolver {
	return &Resolver{
		cache:    cache,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (r *Resolver) Cache() *CoordinateCache {
	return r.cache
}

// Resolve returns the coordinate for a (country, region) pair, consulting
// the cache first. On a miss it queries the geocoder with the
// "CountryName, Region" descriptor and merges the result; an entry that
// already exists is never overwritten.
func (r *Resolver) Resolve(ctx context.Context, alpha2, countryName, region string) (models.Coordinate, error) {
	if coord, ok := r.cache.Lookup(alpha2, region); ok {
		return coord, nil
	}

	coord, err := r.geocoder.Geocode(ctx, countryName+", "+region)
	if err != nil {
		return models.Coordinate{}, err
	}

	r.cache.Merge(alpha2, region, coord)
	r.logger.WithFields(logrus.Fields{
		"alpha2": alpha2,
		"region": region,
	}).Debug("Geocoded new location")

	return coord, nil
}
