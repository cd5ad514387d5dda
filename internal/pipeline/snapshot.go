// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package pipeline runs the offline build: catalog, embedding matrix and
// similarity index, in that order. The result is an immutable Snapshot that
// request handlers share without locking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/ingest"
	"github.com/tomtom215/moviebridge/internal/metrics"
	"github.com/tomtom215/moviebridge/internal/movie"
	"github.com/tomtom215/moviebridge/internal/recommend"
	"github.com/tomtom215/moviebridge/internal/vectorindex"
)

// Options configures a snapshot build.
type Options struct {
	Ingest   ingest.Options
	Embedder embedding.Embedder
	Builder  embedding.BuilderConfig
	Index    vectorindex.Options

	// Movies bypasses ingestion when non-nil.
	Movies []movie.Movie
}

// Snapshot is one consistent, immutable build of the recommendation data.
type Snapshot struct {
	Catalog     *movie.Catalog
	Matrix      *embedding.Matrix
	Index       vectorindex.Index
	Fingerprint embedding.Fingerprint
	Provider    string
	FromCache   bool
	BuiltAt     time.Time
}

// Build loads the catalog, embeds it and indexes the embeddings. Any
// failure aborts the build; a partial snapshot is never returned.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(ctx context.Context, opts Options, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()
	snap, err := build(ctx, opts, logger.With().Str("component", "pipeline").Logger(), start)

	movies := 0
	if snap != nil {
		movies = snap.Catalog.Len()
	}
	metrics.RecordSnapshotBuild(movies, time.Since(start), err)
	return snap, err
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func build(ctx context.Context, opts Options, logger zerolog.Logger, start time.Time) (*Snapshot, error) {
	if opts.Embedder == nil {
		return nil, errors.New("embedder is required")
	}

	movies := opts.Movies
	if movies == nil {
		var err error
		if movies, err = ingest.Load(ctx, opts.Ingest, logger); err != nil {
			return nil, fmt.Errorf("load movies: %w", err)
		}
	}
	catalog, err := movie.NewCatalog(movies)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	builder, err := embedding.NewBuilder(opts.Embedder, opts.Builder, logger)
	if err != nil {
		return nil, err
	}
	res, err := builder.Build(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("build embeddings: %w", err)
	}

	indexStart := time.Now()
	idx, err := vectorindex.Build(res.Matrix, catalog.IDs(), opts.Index)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	logger.Info().
		Str("kind", idx.Kind()).
		Int("vectors", idx.Len()).
		Dur("duration", time.Since(indexStart)).
		Msg("similarity index built")

	snap := &Snapshot{
		Catalog:     catalog,
		Matrix:      res.Matrix,
		Index:       idx,
		Fingerprint: res.Fingerprint,
		Provider:    opts.Embedder.Name(),
		FromCache:   res.FromCache,
		BuiltAt:     time.Now().UTC(),
	}
	logger.Info().
		Int("movies", catalog.Len()).
		Str("fingerprint", res.Fingerprint.String()).
		Bool("embeddings_cached", res.FromCache).
		Dur("duration", time.Since(start)).
		Msg("snapshot ready")
	return snap, nil
}

// NewEngine wires a recommendation engine to the snapshot.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *Snapshot) NewEngine(cfg *recommend.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	scorer, err := recommend.NewScorer(s.Catalog, s.Matrix, s.Index)
	if err != nil {
		return nil, err
	}
	return recommend.NewEngine(cfg, s.Catalog, scorer, logger)
}
