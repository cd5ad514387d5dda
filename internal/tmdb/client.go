// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package tmdb resolves movie poster URLs through the TMDB v3 API.
//
// Posters are display-only and never affect ranking. Lookups are rate
// limited, guarded by a circuit breaker and cached in BadgerDB, including
// negative results, so a page of recommendations costs at most one API
// call per movie per cache period.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moviebridge/internal/metrics"
)

const breakerName = "tmdb-api"

var (
	// ErrNoToken is returned by NewClient when no API token is configured.
	ErrNoToken = errors.New("tmdb token is not configured")

	// ErrUnavailable wraps lookups rejected by the open circuit breaker.
	ErrUnavailable = errors.New("tmdb temporarily unavailable")

	errNotFound = errors.New("tmdb resource not found")
)

// Config configures the client.
type Config struct {
	// Token is the v4 read access token sent as a bearer token.
	Token string

	// BaseURL is the API root.
	// Default: https://api.themoviedb.org
	BaseURL string

	// PosterSize is one of the configuration's poster_sizes.
	// Default: w500
	PosterSize string

	// RequestsPerSecond caps outgoing requests.
	// Default: 40
	RequestsPerSecond float64

	// Timeout bounds a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// CacheTTL is how long a found poster URL is kept.
	// Default: 168h
	CacheTTL time.Duration

	// NegativeTTL is how long a "no poster" result is kept.
	// Default: 1h
	NegativeTTL time.Duration

	// BreakerFailures is the consecutive failure count that opens the
	// circuit.
	// Default: 5
	BreakerFailures uint32

	// BreakerTimeout is how long the circuit stays open.
	// Default: 30s
	BreakerTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.themoviedb.org"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PosterSize == "" {
		c.PosterSize = "w500"
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 40
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 7 * 24 * time.Hour
	}
	if c.NegativeTTL <= 0 {
		c.NegativeTTL = time.Hour
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	return c
}

// imageConfig is the part of /3/configuration the client needs.
type imageConfig struct {
	Images struct {
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
	} `json:"images"`
}

type imagesResponse struct {
	Posters []struct {
		FilePath string `json:"file_path"`
	} `json:"posters"`
}

// Client looks up poster URLs. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	store   *PosterStore
	logger  zerolog.Logger

	mu         sync.Mutex
	imageBase  string
	posterSize string
}

// NewClient creates a client. store may be nil to disable caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, store *PosterStore, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	cfg = cfg.withDefaults()
	logger = logger.With().Str("component", "tmdb").Logger()

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond))),
		cb:      cb,
		store:   store,
		logger:  logger,
	}, nil
}

// PosterURL returns the poster URL of the movie. found is false with a nil
// error when TMDB has no poster for it.
func (c *Client) PosterURL(ctx context.Context, movieID int) (url string, found bool, err error) {
	if c.store != nil {
		entry, ok, err := c.store.get(movieID)
		if err != nil {
			c.logger.Warn().Err(err).Int("movie_id", movieID).Msg("poster cache read failed")
		}
		if ok {
			if entry.Found {
				metrics.PosterCacheLookups.WithLabelValues("hit").Inc()
			} else {
				metrics.PosterCacheLookups.WithLabelValues("negative_hit").Inc()
			}
			return entry.URL, entry.Found, nil
		}
		metrics.PosterCacheLookups.WithLabelValues("miss").Inc()
	}

	base, size, err := c.imageSettings(ctx)
	if err != nil {
		return "", false, err
	}

	var images imagesResponse
	body, err := c.get(ctx, "images", fmt.Sprintf("/3/movie/%d/images?language=en", movieID))
	switch {
	case errors.Is(err, errNotFound):
	case err != nil:
		return "", false, err
	default:
		if err := json.Unmarshal(body, &images); err != nil {
			return "", false, fmt.Errorf("decode images of movie %d: %w", movieID, err)
		}
	}

	entry := posterEntry{FetchedAt: time.Now().UTC()}
	ttl := c.cfg.NegativeTTL
	if len(images.Posters) > 0 && images.Posters[0].FilePath != "" {
		entry.URL = base + size + images.Posters[0].FilePath
		entry.Found = true
		ttl = c.cfg.CacheTTL
	}
	if c.store != nil {
		if err := c.store.put(movieID, entry, ttl); err != nil {
			c.logger.Warn().Err(err).Int("movie_id", movieID).Msg("poster cache write failed")
		}
	}
	return entry.URL, entry.Found, nil
}

// imageSettings fetches /3/configuration once. A failed fetch is retried
// on the next call.
func (c *Client) imageSettings(ctx context.Context) (base, size string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.imageBase != "" {
		return c.imageBase, c.posterSize, nil
	}

	body, err := c.get(ctx, "configuration", "/3/configuration")
	if err != nil {
		return "", "", fmt.Errorf("tmdb configuration: %w", err)
	}
	var cfg imageConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return "", "", fmt.Errorf("decode tmdb configuration: %w", err)
	}
	if cfg.Images.SecureBaseURL == "" {
		return "", "", errors.New("tmdb configuration has no secure_base_url")
	}

	size = c.cfg.PosterSize
	if len(cfg.Images.PosterSizes) > 0 && !slices.Contains(cfg.Images.PosterSizes, size) {
		fallback := cfg.Images.PosterSizes[len(cfg.Images.PosterSizes)-1]
		c.logger.Warn().
			Str("requested", size).
			Str("using", fallback).
			Msg("poster size not offered by tmdb")
		size = fallback
	}

	c.imageBase = cfg.Images.SecureBaseURL
	c.posterSize = size
	return c.imageBase, c.posterSize, nil
}

// get performs a rate limited, circuit protected GET and returns the body.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.TMDBRequests.WithLabelValues(endpoint, "rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, errNotFound):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.TMDBRequests.WithLabelValues(endpoint, "not_found").Inc()
		return nil, err
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.TMDBRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.TMDBRequests.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // body fully read below

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
