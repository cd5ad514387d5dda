// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/tmdb"
)

type fakeCollector struct {
	runs  atomic.Int32
	ratio atomic.Value
	err   error
}

func (f *fakeCollector) RunGC(discardRatio float64) error {
	f.runs.Add(1)
	f.ratio.Store(discardRatio)
	return f.err
}

var _ GarbageCollector = (*tmdb.PosterStore)(nil)

func TestNewCacheGCService_Defaults(t *testing.T) {
	svc := NewCacheGCService(&fakeCollector{}, 0, 2, zerolog.Nop())
	if svc.interval != DefaultGCInterval || svc.discardRatio != DefaultGCDiscardRatio {
		t.Errorf("interval = %v, ratio = %v", svc.interval, svc.discardRatio)
	}
	if svc.String() != "poster-cache-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestCacheGCService_Serve(t *testing.T) {
	for _, gcErr := range []error{nil, errors.New("disk full")} {
		store := &fakeCollector{err: gcErr}
		svc := NewCacheGCService(store, 5*time.Millisecond, 0.7, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitUntil(t, func() bool { return store.runs.Load() >= 2 })
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled even when gc fails with %v", err, gcErr)
		}
		if got := store.ratio.Load(); got != 0.7 {
			t.Errorf("discard ratio = %v, want 0.7", got)
		}
	}
}
