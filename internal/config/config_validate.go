// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/moviebridge/internal/embedding/provider"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/validation"
)

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks the configuration: struct tags first, then the
// cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validateTags(c); err != nil {
		return err
	}

	checks := []func() error{
		c.validateData,
		c.validateEmbedding,
		c.validateRecommend,
		c.validateTMDB,
		c.validateServer,
		c.validateLogging,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// validateTags applies the validate struct tags.
func validateTags(c *Config) error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	return nil
}

// validateData requires a catalog source: the JSON catalog or both CSVs.
func (c *Config) validateData() error {
	if c.Data.CatalogJSON == "" && (c.Data.MoviesCSV == "" || c.Data.KeywordsCSV == "") {
		return fmt.Errorf("CATALOG_PATH or both MOVIES_CSV and KEYWORDS_CSV are required")
	}
	return nil
}

// validateEmbedding checks provider specific settings.
func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case provider.Hugot:
		if c.Embedding.ModelDir == "" {
			return fmt.Errorf("EMBEDDING_MODEL_DIR is required when EMBEDDING_PROVIDER=hugot")
		}
	case provider.OpenAI:
		if c.Embedding.APIKey == "" && c.Embedding.BaseURL == "" {
			return fmt.Errorf("EMBEDDING_API_KEY or EMBEDDING_BASE_URL is required when EMBEDDING_PROVIDER=openai")
		}
		if c.Embedding.BaseURL != "" {
			if err := validateEndpointURL(c.Embedding.BaseURL, "EMBEDDING_BASE_URL"); err != nil {
				return err
			}
		}
	case provider.Hash:
		if c.Embedding.Dimensions == 0 {
			return fmt.Errorf("EMBEDDING_DIMENSIONS is required when EMBEDDING_PROVIDER=hash")
		}
	}
	return nil
}

// validateRecommend reuses the orchestrator's own checks.
func (c *Config) validateRecommend() error {
	if err := c.RecommendEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateTMDB is only enforced when posters are enabled.
func (c *Config) validateTMDB() error {
	if !c.PostersEnabled() {
		return nil
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.CacheTTL < c.TMDB.NegativeTTL {
		return fmt.Errorf("TMDB_CACHE_TTL (%v) must not be shorter than TMDB_NEGATIVE_TTL (%v)",
			c.TMDB.CacheTTL, c.TMDB.NegativeTTL)
	}
	return nil
}

// validateServer checks the rate limit when it is enabled.
func (c *Config) validateServer() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateLogging validates the log level configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}
