// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/cache"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/metrics"
	"github.com/tomtom215/moviebridge/internal/movie"
)

// Request outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeInvalid = "invalid"
	outcomeUnknown = "unknown_movie"
	outcomeError   = "error"
)

// cacheKey orders the seeds so (a, b) and (b, a) share an entry. n is
// capped at k, since no intersection is larger than one seed's neighbor set.
type cacheKey struct {
	low, high int
	n         int
}

func newCacheKey(seed1, seed2, n int) cacheKey {
	return cacheKey{low: min(seed1, seed2), high: max(seed1, seed2), n: n}
}

// Engine turns seed pairs into ordered recommendation lists.
// It is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	catalog *movie.Catalog
	scorer  *Scorer

	cache *cache.LRU[cacheKey, *Response]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, catalog *movie.Catalog, scorer *Scorer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil || scorer == nil {
		return nil, errors.New("catalog and scorer are required")
	}

	e := &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		catalog: catalog,
		scorer:  scorer,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[cacheKey, *Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Config returns the engine configuration. Callers must not modify it.
func (e *Engine) Config() *Config { return e.config }

// DefaultN is the result count callers should use when the user gave none.
func (e *Engine) DefaultN() int { return e.config.DefaultN }

// Recommend returns at most req.N bridge movies for the seed pair, best
// first. An N above the candidate count returns every candidate. An empty
// seed-neighbor intersection yields an empty list and a nil error. Unknown
// seeds yield an *UnknownMovieError and an N below one an
// *InvalidRequestError.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(ctx, req)
	logger := e.createRequestLogger(req)

	if err := e.validateRequest(req); err != nil {
		metrics.RecordRecommendation(outcomeInvalid, 0, time.Since(start))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if resp := e.tryGetCachedResponse(req, start, logger); resp != nil {
		metrics.RecordRecommendation(outcomeOK, resp.TotalCandidates, time.Since(start))
		return resp, nil
	}

	candidates, err := e.scorer.Score(req.Seed1, req.Seed2, e.config.K, e.config.GenreWeight)
	if err != nil {
		e.recordFailure(err, start, logger)
		return nil, err
	}

	ranked := rankCandidates(candidates, req.Seed1, req.Seed2, req.N)
	resp := e.buildResponse(req, ranked, len(candidates), start)
	e.cacheResponse(req, resp)

	outcome := outcomeOK
	if len(resp.Items) == 0 {
		outcome = outcomeEmpty
		logger.Debug().Msg("seed neighborhoods do not intersect")
	}
	metrics.RecordRecommendation(outcome, len(candidates), time.Since(start))

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Errors:      e.errorCount.Load(),
	}
	if e.cache != nil {
		s.CacheSize = e.cache.Len()
	}
	return s
}

// prepareRequest picks up or generates the request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) validateRequest(req Request) error {
	if req.N < 1 {
		return &InvalidRequestError{
			Field:  "n",
			Reason: fmt.Sprintf("must be at least 1, got %d", req.N),
		}
	}
	return nil
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("seed1", req.Seed1).
		Int("seed2", req.Seed2).
		Int("n", req.N).
		Logger()
}

// tryGetCachedResponse returns a copy of the cached response for req.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(e.cacheKey(req))
	if !ok {
		e.cacheMisses.Add(1)
		metrics.RecommendCacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	e.cacheHits.Add(1)
	metrics.RecommendCacheLookups.WithLabelValues("hit").Inc()

	resp := &Response{
		Items:           append([]Recommendation(nil), cached.Items...),
		TotalCandidates: cached.TotalCandidates,
		Metadata:        cached.Metadata,
	}
	if resp.Items == nil {
		resp.Items = []Recommendation{}
	}
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.Seed1 = req.Seed1
	resp.Metadata.Seed2 = req.Seed2
	resp.Metadata.N = req.N
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	logger.Debug().Msg("cache hit")
	return resp
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.cache == nil {
		return
	}
	stored := *resp
	stored.Items = append([]Recommendation(nil), resp.Items...)
	e.cache.Add(e.cacheKey(req), &stored)
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheKey(req Request) cacheKey {
	return newCacheKey(req.Seed1, req.Seed2, min(req.N, e.config.K))
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, ranked []Candidate, total int, start time.Time) *Response {
	items := make([]Recommendation, 0, len(ranked))
	for i := range ranked {
		c := &ranked[i]
		m, ok := e.catalog.Get(c.MovieID)
		if !ok {
			continue
		}
		items = append(items, Recommendation{
			MovieID:     c.MovieID,
			Title:       m.Title,
			Overview:    m.Overview,
			VoteAverage: m.VoteAverage,
			Genres:      m.Genres,
			Combined:    c.Combined,
			Semantic:    c.Semantic,
			GenreBonus:  c.GenreBonus,
		})
	}

	return &Response{
		Items:           items,
		TotalCandidates: total,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Seed1:     req.Seed1,
			Seed2:     req.Seed2,
			N:         req.N,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) recordFailure(err error, start time.Time, logger zerolog.Logger) {
	outcome := outcomeError
	switch {
	case errors.Is(err, ErrUnknownMovie):
		outcome = outcomeUnknown
		logger.Debug().Err(err).Msg("unknown seed")
	case errors.Is(err, ErrInvalidRequest):
		outcome = outcomeInvalid
	default:
		e.errorCount.Add(1)
		logger.Error().Err(err).Msg("scoring failed")
	}
	metrics.RecordRecommendation(outcome, 0, time.Since(start))
}

// rankCandidates drops the seeds, orders by combined score descending with
// ties broken by ascending movie id, and keeps the first n.
func rankCandidates(candidates map[int]Candidate, seed1, seed2, n int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for id, c := range candidates {
		if id == seed1 || id == seed2 {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool { return better(&ranked[i], &ranked[j]) })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
