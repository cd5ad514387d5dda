// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Default cache GC settings.
const (
	DefaultGCInterval     = 10 * time.Minute
	DefaultGCDiscardRatio = 0.5
)

// GarbageCollector is satisfied by *tmdb.PosterStore.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// CacheGCService periodically runs value log GC on a BadgerDB-backed
// cache. Expired TTL entries only free disk space once GC rewrites the
// files holding them.
type CacheGCService struct {
	store        GarbageCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewCacheGCService creates the service. Zero values select the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheGCService(store GarbageCollector, interval time.Duration, discardRatio float64, logger zerolog.Logger) *CacheGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = DefaultGCDiscardRatio
	}
	return &CacheGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("service", "cache-gc").Logger(),
		name:         "poster-cache-gc",
	}
}

// Serve implements suture.Service. GC errors are logged, never returned;
// a failed pass is retried on the next tick.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("cache gc failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("cache gc complete")
		}
	}
}

// String names the service in supervisor events.
func (s *CacheGCService) String() string {
	return s.name
}
