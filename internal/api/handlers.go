// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/moviebridge/internal/movie"
	"github.com/tomtom215/moviebridge/internal/recommend"
)

// Recommender answers two-seed requests. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Stats() recommend.Stats
	DefaultN() int
}

// PosterResolver looks up poster URLs. *tmdb.Client implements it.
type PosterResolver interface {
	PosterURL(ctx context.Context, movieID int) (url string, found bool, err error)
}

// serving is one installed snapshot. It is swapped as a whole so a
// request never sees a catalog from one build and an engine from another.
type serving struct {
	catalog     *movie.Catalog
	recommender Recommender
	fingerprint string
	installedAt time.Time
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and snapshot installation (this file)
//   - handlers_health.go: liveness and readiness checks
//   - handlers_movies.go: search, movie detail and poster
//   - handlers_recommend.go: two-seed recommendations
type Handler struct {
	state     atomic.Pointer[serving]
	posters   PosterResolver
	timeout   time.Duration
	startTime time.Time
}

// NewHandler creates a handler. posters may be nil to disable the poster
// endpoint. timeout bounds each recommendation; zero means 10s.
//
// The handler reports not ready until SetSnapshot is called:
//
//	h := api.NewHandler(posterClient, 0)
//	srv := &http.Server{Handler: api.NewRouter(h, api.DefaultChiMiddlewareConfig(), logger)}
//	// ... after the pipeline finishes
//	h.SetSnapshot(snap.Catalog, engine, snap.Fingerprint.String())
func NewHandler(posters PosterResolver, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		posters:   posters,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// SetSnapshot installs the catalog and the recommender built from it.
func (h *Handler) SetSnapshot(catalog *movie.Catalog, recommender Recommender, fingerprint string) {
	h.state.Store(&serving{
		catalog:     catalog,
		recommender: recommender,
		fingerprint: fingerprint,
		installedAt: time.Now().UTC(),
	})
}

// current returns the installed snapshot, or nil.
func (h *Handler) current() *serving {
	return h.state.Load()
}
