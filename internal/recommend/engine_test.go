// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/movie"
	"github.com/tomtom215/moviebridge/internal/vectorindex"
)

func newTestEngine(t *testing.T, cfg *Config, c *movie.Catalog, m *embedding.Matrix, idx vectorindex.Index) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, c, newTestScorer(t, c, m, idx), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func ids(items []Recommendation) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = items[i].MovieID
	}
	return out
}

func TestEngine_BridgeScenario(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	e := newTestEngine(t, nil, c, m, idx)

	resp, err := e.Recommend(context.Background(), Request{Seed1: 1, Seed2: 3, N: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("Recommend() returned %d items, want 1", len(resp.Items))
	}
	got := resp.Items[0]
	if got.MovieID != 2 || got.Title != "M2" {
		t.Errorf("item = %+v, want M2", got)
	}
	if math.Abs(got.Semantic-0.85) > scoreTolerance || got.GenreBonus != 1 || math.Abs(got.Combined-0.88) > scoreTolerance {
		t.Errorf("scores = (%v, %v, %v), want (0.88, 0.85, 1)", got.Combined, got.Semantic, got.GenreBonus)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("RequestID not generated")
	}
}

func TestEngine_EmptyIntersection(t *testing.T) {
	movies := []movie.Movie{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	neighbors := map[int][]vectorindex.Neighbor{
		0: {{MovieID: 1, Similarity: 1}, {MovieID: 3, Similarity: 0.8}},
		1: {{MovieID: 2, Similarity: 1}, {MovieID: 4, Similarity: 0.8}},
	}
	c, m, idx := fixture(t, movies, neighbors)
	e := newTestEngine(t, nil, c, m, idx)

	resp, err := e.Recommend(context.Background(), Request{Seed1: 1, Seed2: 2, N: 6})
	if err != nil {
		t.Fatalf("Recommend() error = %v, want nil", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", resp.Items)
	}
	if resp.TotalCandidates != 0 {
		t.Errorf("TotalCandidates = %d, want 0", resp.TotalCandidates)
	}
}

func TestEngine_FewerCandidatesThanN(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	e := newTestEngine(t, nil, c, m, idx)

	resp, err := e.Recommend(context.Background(), Request{Seed1: 1, Seed2: 3, N: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].MovieID != 2 {
		t.Errorf("items = %v, want [2]", ids(resp.Items))
	}
}

func TestEngine_RequestErrors(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	e := newTestEngine(t, nil, c, m, idx)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"zero n", Request{Seed1: 1, Seed2: 3, N: 0}, ErrInvalidRequest},
		{"n omitted", Request{Seed1: 1, Seed2: 3}, ErrInvalidRequest},
		{"negative n", Request{Seed1: 1, Seed2: 3, N: -1}, ErrInvalidRequest},
		{"unknown seed", Request{Seed1: 1, Seed2: 404, N: 3}, ErrUnknownMovie},
		{"invalid n checked first", Request{Seed1: 404, Seed2: 405, N: -5}, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Recommend() error = %v, want %v", err, tt.wantErr)
			}
			if resp != nil {
				t.Errorf("Recommend() response = %+v, want nil", resp)
			}
		})
	}

	if s := e.Stats(); s.Errors != 0 {
		t.Errorf("caller errors counted as engine errors: %d", s.Errors)
	}
}

func TestEngine_DefaultN(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	cfg := DefaultConfig()
	cfg.DefaultN = 9
	e := newTestEngine(t, cfg, c, m, idx)

	if got := e.DefaultN(); got != 9 {
		t.Errorf("DefaultN() = %d, want 9", got)
	}
}

func TestEngine_NAboveCandidateCount(t *testing.T) {
	c, m, idx := randomFixture(t, 200, 4, 9)
	e := newTestEngine(t, nil, c, m, idx)
	ctx := context.Background()
	a, b := c.At(0).ID, c.At(1).ID

	all, err := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 500})
	if err != nil {
		t.Fatalf("Recommend(n=500) error = %v, want nil", err)
	}
	if len(all.Items) != all.TotalCandidates {
		t.Errorf("n=500 returned %d of %d candidates", len(all.Items), all.TotalCandidates)
	}
	if all.TotalCandidates > DefaultK {
		t.Errorf("TotalCandidates = %d, more than k", all.TotalCandidates)
	}
	if all.Metadata.N != 500 {
		t.Errorf("Metadata.N = %d, want 500", all.Metadata.N)
	}

	// Any n at or above k asks for the same list; the cache shares it but
	// reports the n each caller asked for.
	atK, err := e.Recommend(ctx, Request{Seed1: b, Seed2: a, N: DefaultK})
	if err != nil {
		t.Fatal(err)
	}
	if !atK.Metadata.CacheHit || atK.Metadata.N != DefaultK {
		t.Errorf("n=k: CacheHit = %v, N = %d", atK.Metadata.CacheHit, atK.Metadata.N)
	}
	if len(atK.Items) != len(all.Items) {
		t.Errorf("n=k returned %d items, n=500 returned %d", len(atK.Items), len(all.Items))
	}
}

func TestEngine_RequestIDFromContext(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	e := newTestEngine(t, nil, c, m, idx)

	ctx := logging.ContextWithRequestID(context.Background(), "req-123")
	resp, err := e.Recommend(ctx, Request{Seed1: 1, Seed2: 3, N: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want req-123", resp.Metadata.RequestID)
	}
}

func TestEngine_CancelledContext(t *testing.T) {
	c, m, idx := bridgeFixture(t)
	e := newTestEngine(t, nil, c, m, idx)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recommend(ctx, Request{Seed1: 1, Seed2: 3, N: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Recommend() error = %v, want context.Canceled", err)
	}
}

// TestEngine_Properties checks ordering invariants over many seed pairs of
// a random catalog served by an exact index.
func TestEngine_Properties(t *testing.T) {
	c, m, idx := randomFixture(t, 300, 5, 17)
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	e := newTestEngine(t, cfg, c, m, idx)
	ctx := context.Background()

	all := c.IDs()
	for i := 0; i < 25; i++ {
		a, b := all[(i*7)%len(all)], all[(i*13+5)%len(all)]
		if a == b {
			continue
		}

		ab, err := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 10})
		if err != nil {
			t.Fatalf("Recommend(%d, %d) error = %v", a, b, err)
		}
		ba, err := e.Recommend(ctx, Request{Seed1: b, Seed2: a, N: 10})
		if err != nil {
			t.Fatalf("Recommend(%d, %d) error = %v", b, a, err)
		}
		again, _ := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 10})
		short, _ := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 3})

		if len(ab.Items) > 10 {
			t.Errorf("pair (%d, %d) returned %d items for n=10", a, b, len(ab.Items))
		}
		if !sort.SliceIsSorted(ab.Items, func(x, y int) bool {
			cx := Candidate{MovieID: ab.Items[x].MovieID, Combined: ab.Items[x].Combined}
			cy := Candidate{MovieID: ab.Items[y].MovieID, Combined: ab.Items[y].Combined}
			return better(&cx, &cy)
		}) {
			t.Errorf("pair (%d, %d) results not ordered", a, b)
		}

		if len(ba.Items) != len(ab.Items) || len(again.Items) != len(ab.Items) {
			t.Fatalf("pair (%d, %d) returned %d items forward, %d reversed, %d repeated", a, b, len(ab.Items), len(ba.Items), len(again.Items))
		}
		for j, item := range ab.Items {
			if item.MovieID == a || item.MovieID == b {
				t.Errorf("pair (%d, %d) returned a seed", a, b)
			}
			if item.Combined < 0 || item.Combined > 1 {
				t.Errorf("combined %v outside [0, 1]", item.Combined)
			}
			if ba.Items[j].MovieID != item.MovieID || ba.Items[j].Combined != item.Combined {
				t.Errorf("pair (%d, %d) is not symmetric at rank %d", a, b, j)
			}
			if !sameRecommendation(again.Items[j], item) {
				t.Errorf("pair (%d, %d) is not deterministic at rank %d", a, b, j)
			}
		}
		for j := range short.Items {
			if short.Items[j].MovieID != ab.Items[j].MovieID {
				t.Errorf("n=3 result is not a prefix of n=10 result for pair (%d, %d)", a, b)
			}
		}
	}
}

func sameRecommendation(a, b Recommendation) bool {
	return a.MovieID == b.MovieID && a.Combined == b.Combined &&
		a.Semantic == b.Semantic && a.GenreBonus == b.GenreBonus
}

func TestEngine_Cache(t *testing.T) {
	c, m, idx := randomFixture(t, 150, 4, 23)
	e := newTestEngine(t, nil, c, m, idx)
	ctx := context.Background()
	a, b := c.At(3).ID, c.At(40).ID

	first, err := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 5})
	if err != nil {
		t.Fatal(err)
	}
	if first.Metadata.CacheHit {
		t.Error("first request reported a cache hit")
	}

	swapped, err := e.Recommend(ctx, Request{Seed1: b, Seed2: a, N: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !swapped.Metadata.CacheHit {
		t.Error("swapped seeds missed the cache")
	}
	if swapped.Metadata.Seed1 != b || swapped.Metadata.Seed2 != a {
		t.Errorf("cached metadata seeds = (%d, %d), want (%d, %d)", swapped.Metadata.Seed1, swapped.Metadata.Seed2, b, a)
	}
	for i := range first.Items {
		if !sameRecommendation(first.Items[i], swapped.Items[i]) {
			t.Errorf("cached item %d differs", i)
		}
	}

	// Mutating a returned response must not leak into the cache.
	if len(swapped.Items) > 0 {
		swapped.Items[0].MovieID = -1
		third, _ := e.Recommend(ctx, Request{Seed1: a, Seed2: b, N: 5})
		if third.Items[0].MovieID == -1 {
			t.Error("caller mutation reached the cached response")
		}
	}

	s := e.Stats()
	if s.CacheHits < 1 || s.CacheMisses != 1 || s.CacheSize != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestEngine_ConcurrentRequests(t *testing.T) {
	c, m, idx := randomFixture(t, 200, 6, 31)
	e := newTestEngine(t, nil, c, m, idx)
	ctx := context.Background()

	pairs := [][2]int{{c.At(0).ID, c.At(1).ID}, {c.At(5).ID, c.At(9).ID}, {c.At(50).ID, c.At(150).ID}}
	want := make([]*Response, len(pairs))
	for i, p := range pairs {
		resp, err := e.Recommend(ctx, Request{Seed1: p[0], Seed2: p[1], N: 8})
		if err != nil {
			t.Fatal(err)
		}
		want[i] = resp
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			i := g % len(pairs)
			p := pairs[i]
			resp, err := e.Recommend(ctx, Request{Seed1: p[1], Seed2: p[0], N: 8})
			if err != nil {
				errs <- err.Error()
				return
			}
			if len(resp.Items) != len(want[i].Items) {
				errs <- "length mismatch"
				return
			}
			for j := range resp.Items {
				if !sameRecommendation(resp.Items[j], want[i].Items[j]) {
					errs <- "item mismatch"
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero k", func(c *Config) { c.K = 0 }, true},
		{"weight above one", func(c *Config) { c.GenreWeight = 1.2 }, true},
		{"weight zero", func(c *Config) { c.GenreWeight = 0 }, false},
		{"zero default n", func(c *Config) { c.DefaultN = 0 }, true},
		{"large default n", func(c *Config) { c.DefaultN = 200 }, false},
		{"cache without entries", func(c *Config) { c.Cache.MaxEntries = 0 }, true},
		{"disabled cache ignores size", func(c *Config) { c.Cache.Enabled = false; c.Cache.MaxEntries = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRankCandidates_TieBreak(t *testing.T) {
	candidates := map[int]Candidate{
		9: {MovieID: 9, Combined: 0.5},
		3: {MovieID: 3, Combined: 0.5},
		7: {MovieID: 7, Combined: 0.9},
		1: {MovieID: 1, Combined: 0.99},
		5: {MovieID: 5, Combined: 0.5},
	}
	got := rankCandidates(candidates, 1, 2, 4)
	want := []int{7, 3, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("rankCandidates() returned %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].MovieID != want[i] {
			t.Errorf("rank %d = %d, want %d", i, got[i].MovieID, want[i])
		}
	}
}
