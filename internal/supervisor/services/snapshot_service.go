// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/pipeline"
)

// SnapshotBuildFunc produces a complete snapshot or an error.
type SnapshotBuildFunc func(ctx context.Context) (*pipeline.Snapshot, error)

// SnapshotPublishFunc makes a snapshot live, typically by wiring an engine
// to it and swapping it into the API handler.
type SnapshotPublishFunc func(snap *pipeline.Snapshot) error

// SnapshotServiceConfig holds configuration for the snapshot service.
type SnapshotServiceConfig struct {
	// RefreshInterval rebuilds the snapshot this often. Zero disables
	// refreshing.
	RefreshInterval time.Duration

	// BuildTimeout bounds one build. Zero means no limit.
	BuildTimeout time.Duration
}

// SnapshotService builds the recommendation snapshot under supervision.
type SnapshotService struct {
	build   SnapshotBuildFunc
	publish SnapshotPublishFunc
	config  SnapshotServiceConfig
	logger  zerolog.Logger
	name    string

	current   atomic.Pointer[pipeline.Snapshot]
	published atomic.Int64
}

// NewSnapshotService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotService(build SnapshotBuildFunc, publish SnapshotPublishFunc, cfg SnapshotServiceConfig, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		build:   build,
		publish: publish,
		config:  cfg,
		logger:  logger.With().Str("service", "snapshot").Logger(),
		name:    "snapshot-service",
	}
}

// Serve implements suture.Service. Until a snapshot has been published,
// a build failure is returned so the supervisor retries with backoff.
// After that, refresh failures are logged and the live snapshot stays.
func (s *SnapshotService) Serve(ctx context.Context) error {
	if s.current.Load() == nil {
		if err := s.rebuild(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("initial snapshot build: %w", err)
		}
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.rebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn().Err(err).Msg("snapshot refresh failed, keeping previous snapshot")
			}
		}
	}
}

func (s *SnapshotService) rebuild(ctx context.Context) error {
	if s.config.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.BuildTimeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := s.build(ctx)
	if err != nil {
		return err
	}
	if err := s.publish(snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	prev := s.current.Swap(snap)
	s.published.Add(1)

	event := s.logger.Info().
		Int("movies", snap.Catalog.Len()).
		Str("fingerprint", snap.Fingerprint.String()).
		Dur("duration", time.Since(start))
	if prev != nil {
		event = event.Bool("changed", prev.Fingerprint != snap.Fingerprint)
	}
	event.Msg("snapshot published")
	return nil
}

// Current returns the live snapshot, or nil before the first publish.
func (s *SnapshotService) Current() *pipeline.Snapshot {
	return s.current.Load()
}

// Published returns how many snapshots have been published.
func (s *SnapshotService) Published() int64 {
	return s.published.Load()
}

// String names the service in supervisor events.
func (s *SnapshotService) String() string {
	return s.name
}
