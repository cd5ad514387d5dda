// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/embedding/provider"
	"github.com/tomtom215/moviebridge/internal/ingest"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/recommend"
	"github.com/tomtom215/moviebridge/internal/tmdb"
	"github.com/tomtom215/moviebridge/internal/vectorindex"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Recommend RecommendConfig `koanf:"recommend"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the movie metadata.
type DataConfig struct {
	MoviesCSV   string `koanf:"movies_csv"`
	KeywordsCSV string `koanf:"keywords_csv"`
	CatalogJSON string `koanf:"catalog_json"`
	MinVotes    int    `koanf:"min_votes" validate:"gte=0"`

	// RefreshInterval rebuilds the snapshot periodically while serving.
	// Zero builds once at startup.
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=0"`
}

// EmbeddingConfig selects the embedding provider and controls batching
// and the on-disk matrix cache.
type EmbeddingConfig struct {
	Provider     string        `koanf:"provider" validate:"oneof=hugot openai hash"`
	Model        string        `koanf:"model"`
	ModelDir     string        `koanf:"model_dir"`
	Dimensions   int           `koanf:"dimensions" validate:"gte=0,lte=8192"`
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	BatchSize    int           `koanf:"batch_size" validate:"gte=1,lte=4096"`
	Concurrency  int           `koanf:"concurrency" validate:"gte=1,lte=64"`
	CacheDir     string        `koanf:"cache_dir"`
	ForceRebuild bool          `koanf:"force_rebuild"`
}

// IndexConfig selects the similarity index.
type IndexConfig struct {
	Kind          string `koanf:"kind" validate:"oneof=flat hnsw auto"`
	HNSWThreshold int    `koanf:"hnsw_threshold" validate:"gte=0"`
	M             int    `koanf:"m" validate:"gte=0,lte=256"`
	EfSearch      int    `koanf:"ef_search" validate:"gte=0"`
	Seed          int64  `koanf:"seed"`
}

// RecommendConfig holds scoring and response cache settings.
type RecommendConfig struct {
	K            int           `koanf:"k" validate:"gte=1"`
	GenreWeight  float64       `koanf:"genre_weight" validate:"gte=0,lte=1"`
	DefaultN     int           `koanf:"default_n" validate:"gte=1"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheSize    int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// TMDBConfig configures poster lookups. Posters are disabled when Token is
// empty.
type TMDBConfig struct {
	Token           string        `koanf:"token"`
	BaseURL         string        `koanf:"base_url"`
	PosterSize      string        `koanf:"poster_size"`
	RateLimit       float64       `koanf:"rate_limit" validate:"gte=0"`
	Timeout         time.Duration `koanf:"timeout"`
	CacheDir        string        `koanf:"cache_dir"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	NegativeTTL     time.Duration `koanf:"negative_ttl"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PostersEnabled reports whether a TMDB token is configured.
func (c *Config) PostersEnabled() bool {
	return c.TMDB.Token != ""
}

// IngestOptions returns the catalog loading options.
func (c *Config) IngestOptions() ingest.Options {
	return ingest.Options{
		CatalogPath: c.Data.CatalogJSON,
		MoviesCSV:   c.Data.MoviesCSV,
		KeywordsCSV: c.Data.KeywordsCSV,
		MinVotes:    c.Data.MinVotes,
	}
}

// ProviderConfig returns the embedder selection.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Provider:   c.Embedding.Provider,
		Model:      c.Embedding.Model,
		ModelDir:   c.Embedding.ModelDir,
		Dimensions: c.Embedding.Dimensions,
		BaseURL:    c.Embedding.BaseURL,
		APIKey:     c.Embedding.APIKey,
		Timeout:    c.Embedding.Timeout,
		MaxRetries: c.Embedding.MaxRetries,
	}
}

// BuilderConfig returns the embedding matrix build settings.
func (c *Config) BuilderConfig() embedding.BuilderConfig {
	return embedding.BuilderConfig{
		BatchSize:    c.Embedding.BatchSize,
		Concurrency:  c.Embedding.Concurrency,
		CacheDir:     c.Embedding.CacheDir,
		ForceRebuild: c.Embedding.ForceRebuild,
	}
}

// IndexOptions returns the similarity index settings.
func (c *Config) IndexOptions() vectorindex.Options {
	return vectorindex.Options{
		Kind:          c.Index.Kind,
		HNSWThreshold: c.Index.HNSWThreshold,
		HNSW: vectorindex.HNSWConfig{
			M:        c.Index.M,
			EfSearch: c.Index.EfSearch,
			Seed:     c.Index.Seed,
		},
	}
}

// RecommendEngineConfig returns the orchestrator settings.
func (c *Config) RecommendEngineConfig() *recommend.Config {
	return &recommend.Config{
		K:           c.Recommend.K,
		GenreWeight: c.Recommend.GenreWeight,
		DefaultN:    c.Recommend.DefaultN,
		Cache: recommend.CacheConfig{
			Enabled:    c.Recommend.CacheEnabled,
			MaxEntries: c.Recommend.CacheSize,
			TTL:        c.Recommend.CacheTTL,
		},
	}
}

// TMDBClientConfig returns the poster client settings.
func (c *Config) TMDBClientConfig() tmdb.Config {
	return tmdb.Config{
		Token:             c.TMDB.Token,
		BaseURL:           c.TMDB.BaseURL,
		PosterSize:        c.TMDB.PosterSize,
		RequestsPerSecond: c.TMDB.RateLimit,
		Timeout:           c.TMDB.Timeout,
		CacheTTL:          c.TMDB.CacheTTL,
		NegativeTTL:       c.TMDB.NegativeTTL,
		BreakerFailures:   c.TMDB.BreakerFailures,
		BreakerTimeout:    c.TMDB.BreakerTimeout,
	}
}

// LogConfig returns the logger settings.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// String summarizes the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("provider=%s index=%s k=%d genre_weight=%.2f addr=%s posters=%t",
		c.Embedding.Provider, c.Index.Kind, c.Recommend.K, c.Recommend.GenreWeight,
		c.Server.Addr(), c.PostersEnabled())
}
