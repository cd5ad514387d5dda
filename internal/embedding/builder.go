// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/moviebridge/internal/metrics"
	"github.com/tomtom215/moviebridge/internal/movie"
)

// BuilderConfig controls batching and caching of a matrix build.
type BuilderConfig struct {
	// BatchSize is the number of texts sent to the embedder per call.
	// Default: 32
	BatchSize int

	// Concurrency is the number of batches embedded in parallel.
	// Default: 4
	Concurrency int

	// CacheDir enables the on-disk matrix cache when non-empty.
	CacheDir string

	// ForceRebuild ignores an existing cache file. The fresh matrix still
	// replaces it.
	ForceRebuild bool
}

func (c BuilderConfig) withDefaults() BuilderConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Result is a built or cache-loaded embedding matrix.
type Result struct {
	Matrix      *Matrix
	Fingerprint Fingerprint
	FromCache   bool
	Duration    time.Duration
}

// Builder produces the embedding matrix of a catalog.
type Builder struct {
	embedder Embedder
	cfg      BuilderConfig
	cache    *Cache
	logger   zerolog.Logger
}

// NewBuilder creates a builder around e.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBuilder(e Embedder, cfg BuilderConfig, logger zerolog.Logger) (*Builder, error) {
	if e == nil {
		return nil, errors.New("embedder is required")
	}
	if e.Dimensions() <= 0 {
		return nil, fmt.Errorf("embedder %s reports invalid dimension %d", e.Name(), e.Dimensions())
	}

	cfg = cfg.withDefaults()
	b := &Builder{
		embedder: e,
		cfg:      cfg,
		logger:   logger.With().Str("component", "embedding").Str("provider", e.Name()).Logger(),
	}
	if cfg.CacheDir != "" {
		b.cache = NewCache(cfg.CacheDir)
	}
	return b, nil
}

// Build returns one unit-normalized row per catalog record, in catalog
// order. It blocks until the whole matrix is ready. Any embedder failure or
// malformed vector aborts the build with an error matching
// ErrEmbeddingFailure; no partial matrix is returned.
func (b *Builder) Build(ctx context.Context, catalog *movie.Catalog) (*Result, error) {
	start := time.Now()
	dim := b.embedder.Dimensions()
	texts := catalog.Texts()
	fp := ComputeFingerprint(b.embedder.Name(), dim, catalog.IDs(), texts)

	logger := b.logger.With().Str("fingerprint", fp.String()).Int("movies", len(texts)).Logger()

	if b.cache != nil && !b.cfg.ForceRebuild {
		m, err := b.cache.Load(fp, dim)
		switch {
		case err == nil && m.Count() == len(texts):
			metrics.EmbeddingCacheLookups.WithLabelValues("hit").Inc()
			logger.Info().Str("path", b.cache.Path(fp)).Msg("loaded embedding matrix from cache")
			return &Result{Matrix: m, Fingerprint: fp, FromCache: true, Duration: time.Since(start)}, nil
		case err == nil, errors.Is(err, ErrCacheCorrupt):
			metrics.EmbeddingCacheLookups.WithLabelValues("corrupt").Inc()
			logger.Warn().Err(err).Msg("discarding unusable embedding cache, rebuilding")
		case errors.Is(err, ErrCacheMiss):
			metrics.EmbeddingCacheLookups.WithLabelValues("miss").Inc()
		default:
			logger.Warn().Err(err).Msg("embedding cache unreadable, rebuilding")
		}
	}

	logger.Info().
		Int("batch_size", b.cfg.BatchSize).
		Int("concurrency", b.cfg.Concurrency).
		Msg("generating embeddings")

	m, err := b.embedAll(ctx, texts, dim)
	if err != nil {
		logger.Error().Err(err).Msg("embedding matrix build failed")
		return nil, err
	}

	if b.cache != nil {
		if err := b.cache.Save(fp, m); err != nil {
			logger.Warn().Err(err).Msg("failed to persist embedding matrix")
		} else {
			logger.Debug().Str("path", b.cache.Path(fp)).Msg("embedding matrix cached")
		}
	}

	elapsed := time.Since(start)
	logger.Info().Dur("duration", elapsed).Msg("embedding matrix built")
	return &Result{Matrix: m, Fingerprint: fp, Duration: elapsed}, nil
}

func (b *Builder) embedAll(ctx context.Context, texts []string, dim int) (*Matrix, error) {
	m := newMatrix(len(texts), dim)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)

	for lo := 0; lo < len(texts); lo += b.cfg.BatchSize {
		hi := min(lo+b.cfg.BatchSize, len(texts))
		g.Go(func() error {
			return b.embedBatch(gctx, m, texts[lo:hi], lo)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// embedBatch fills rows [offset, offset+len(texts)) of m. Batches own
// disjoint row ranges, so they can run concurrently without locking.
func (b *Builder) embedBatch(ctx context.Context, m *Matrix, texts []string, offset int) error {
	start := time.Now()
	vecs, err := b.embedder.Embed(ctx, texts)
	metrics.RecordEmbeddingBatch(b.embedder.Name(), time.Since(start), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return &EmbeddingError{Offset: offset, Reason: "embedder call failed", Err: err}
	}
	if len(vecs) != len(texts) {
		return &EmbeddingError{
			Offset: offset,
			Reason: fmt.Sprintf("embedder returned %d vectors for %d texts", len(vecs), len(texts)),
		}
	}

	for i, v := range vecs {
		row := offset + i
		if len(v) != m.dim {
			return &EmbeddingError{
				Offset: row,
				Reason: fmt.Sprintf("vector has dimension %d, want %d", len(v), m.dim),
			}
		}
		dst := m.data[row*m.dim : (row+1)*m.dim]
		copy(dst, v)
		if !Normalize(dst) {
			return &EmbeddingError{Offset: row, Reason: "vector cannot be normalized", Err: ErrInvalidVector}
		}
	}
	return nil
}
