// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/moviebridge/internal/ingest"
	"github.com/tomtom215/moviebridge/internal/recommend"
	"github.com/tomtom215/moviebridge/internal/vectorindex"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moviebridge/config.yaml",
	"/etc/moviebridge/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			MoviesCSV:   "data/tmdb_5000_movies.csv",
			KeywordsCSV: "data/keywords.csv",
			CatalogJSON: "data/catalog.json",
			MinVotes:    ingest.DefaultMinVotes,
		},
		Embedding: EmbeddingConfig{
			Provider:    "hugot",
			Model:       "sentence-transformers/all-mpnet-base-v2",
			ModelDir:    "models",
			Dimensions:  0, // 0 = provider default
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			BatchSize:   32,
			Concurrency: 4,
			CacheDir:    "data/cache",
		},
		Index: IndexConfig{
			Kind:          vectorindex.KindAuto,
			HNSWThreshold: 0, // 0 = auto stays flat
			M:             16,
			EfSearch:      200,
			Seed:          1,
		},
		Recommend: RecommendConfig{
			K:            recommend.DefaultK,
			GenreWeight:  recommend.DefaultGenreWeight,
			DefaultN:     recommend.DefaultN,
			CacheEnabled: true,
			CacheSize:    10000,
			CacheTTL:     time.Hour,
		},
		TMDB: TMDBConfig{
			Token:           "", // Posters disabled until a token is set
			BaseURL:         "https://api.themoviedb.org",
			PosterSize:      "w500",
			RateLimit:       40,
			Timeout:         10 * time.Second,
			CacheDir:        "data/posters",
			CacheTTL:        7 * 24 * time.Hour,
			NegativeTTL:     time.Hour,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with Koanf v2 from layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: path if non-empty, else the first of CONFIG_PATH and
//     DefaultConfigPaths that exists
//  3. Environment Variables: override any setting
//
// An explicit path that cannot be read is an error; a missing default
// file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// EMBEDDING_PROVIDER -> embedding.provider, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Data
	"movies_csv":               "data.movies_csv",
	"keywords_csv":             "data.keywords_csv",
	"catalog_path":             "data.catalog_json",
	"min_votes":                "data.min_votes",
	"catalog_refresh_interval": "data.refresh_interval",

	// Embedding
	"embedding_provider":      "embedding.provider",
	"embedding_model":         "embedding.model",
	"embedding_model_dir":     "embedding.model_dir",
	"embedding_dimensions":    "embedding.dimensions",
	"embedding_base_url":      "embedding.base_url",
	"embedding_api_key":       "embedding.api_key",
	"openai_api_key":          "embedding.api_key",
	"embedding_timeout":       "embedding.timeout",
	"embedding_max_retries":   "embedding.max_retries",
	"embedding_batch_size":    "embedding.batch_size",
	"embedding_concurrency":   "embedding.concurrency",
	"embedding_cache_dir":     "embedding.cache_dir",
	"embedding_force_rebuild": "embedding.force_rebuild",

	// Index
	"index_kind":           "index.kind",
	"index_hnsw_threshold": "index.hnsw_threshold",
	"index_hnsw_m":         "index.m",
	"index_ef_search":      "index.ef_search",
	"index_seed":           "index.seed",

	// Recommendation
	"recommend_k":             "recommend.k",
	"recommend_genre_weight":  "recommend.genre_weight",
	"recommend_default_n":     "recommend.default_n",
	"recommend_cache_enabled": "recommend.cache_enabled",
	"recommend_cache_size":    "recommend.cache_size",
	"recommend_cache_ttl":     "recommend.cache_ttl",

	// TMDB
	"tmdb_token":            "tmdb.token",
	"tmdb_base_url":         "tmdb.base_url",
	"tmdb_poster_size":      "tmdb.poster_size",
	"tmdb_rate_limit":       "tmdb.rate_limit",
	"tmdb_timeout":          "tmdb.timeout",
	"tmdb_cache_dir":        "tmdb.cache_dir",
	"tmdb_cache_ttl":        "tmdb.cache_ttl",
	"tmdb_negative_ttl":     "tmdb.negative_ttl",
	"tmdb_breaker_failures": "tmdb.breaker_failures",
	"tmdb_breaker_timeout":  "tmdb.breaker_timeout",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never reach the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for reloading with Load and swapping the
// configuration safely.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
