// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEmbeddingBatch(t *testing.T) {
	before := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("test-provider", "failure"))

	RecordEmbeddingBatch("test-provider", 10*time.Millisecond, nil)
	RecordEmbeddingBatch("test-provider", 10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("test-provider", "success")); got < 1 {
		t.Errorf("success batches = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("test-provider", "failure")); got != before+1 {
		t.Errorf("failure batches = %v, want %v", got, before+1)
	}
}

func TestRecordIndexBuild(t *testing.T) {
	RecordIndexBuild("flat", 4321, time.Second)

	if got := testutil.ToFloat64(IndexSize); got != 4321 {
		t.Errorf("IndexSize = %v, want 4321", got)
	}
}

func TestRecordSnapshotBuild(t *testing.T) {
	tests := []struct {
		name       string
		movies     int
		err        error
		result     string
		wantMovies float64
	}{
		{"success", 250, nil, "success", 250},
		{"failure keeps last size", 9, errors.New("embed failed"), "failure", 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SnapshotBuilds.WithLabelValues(tt.result))
			RecordSnapshotBuild(tt.movies, time.Second, tt.err)
			if got := testutil.ToFloat64(SnapshotBuilds.WithLabelValues(tt.result)); got != before+1 {
				t.Errorf("SnapshotBuilds{%s} = %v, want %v", tt.result, got, before+1)
			}
			if got := testutil.ToFloat64(SnapshotMovies); got != tt.wantMovies {
				t.Errorf("SnapshotMovies = %v, want %v", got, tt.wantMovies)
			}
		})
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		outcome string
	}{
		{"ok"},
		{"empty"},
		{"unknown_movie"},
		{"invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			RecordRecommendation(tt.outcome, 3, time.Millisecond)
			after := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			if after != before+1 {
				t.Errorf("RecommendRequests{%s} = %v, want %v", tt.outcome, after, before+1)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	RecordAPIRequest("GET", "/api/v1/recommendations", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))

	if after != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", after, before+1)
	}
}
