// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import (
	"fmt"
	"time"
)

// Default scoring parameters.
const (
	DefaultK           = 40
	DefaultGenreWeight = 0.2
	DefaultN           = 6
)

// Config holds the recommendation engine configuration.
type Config struct {
	// K is the number of neighbors retrieved per seed before intersecting.
	// Default: 40.
	K int `json:"k"`

	// GenreWeight is the weight w of the genre bonus in the combined score.
	// Must be in [0, 1].
	// Default: 0.2.
	GenreWeight float64 `json:"genre_weight"`

	// DefaultN is the result count front ends use when the user gives none.
	// Default: 6.
	DefaultN int `json:"default_n"`

	// Cache configures the response cache.
	Cache CacheConfig `json:"cache"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// TTL is the cache entry time-to-live. The index never changes under a
	// running engine, so this only bounds memory held by cold entries.
	// Default: 1h.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		K:           DefaultK,
		GenreWeight: DefaultGenreWeight,
		DefaultN:    DefaultN,
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 10000,
			TTL:        time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("k must be positive, got %d", c.K)
	}
	if c.GenreWeight < 0 || c.GenreWeight > 1 {
		return fmt.Errorf("genre_weight must be in [0, 1], got %f", c.GenreWeight)
	}
	if c.DefaultN < 1 {
		return fmt.Errorf("default_n must be positive, got %d", c.DefaultN)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
	}
	return nil
}
