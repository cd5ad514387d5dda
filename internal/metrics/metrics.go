// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package metrics holds the Prometheus collectors for MovieBridge. They are
// registered with the default registry and exported on /metrics.
//
// Cardinality is bounded: labels only carry small enumerations such as
// outcome, index kind or HTTP route pattern, never movie identifiers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Embedding Metrics
	EmbeddingBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_embedding_batches_total",
			Help: "Total number of embedding batches sent to the embedder",
		},
		[]string{"provider", "result"}, // result: "success", "failure"
	)

	EmbeddingBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebridge_embedding_batch_duration_seconds",
			Help:    "Duration of a single embedding batch in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_embedding_cache_lookups_total",
			Help: "Embedding matrix cache lookups by result",
		},
		[]string{"result"}, // result: "hit", "miss", "corrupt"
	)

	// Index Metrics
	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebridge_index_build_duration_seconds",
			Help:    "Duration of similarity index construction in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	IndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebridge_index_vectors",
			Help: "Number of vectors in the active similarity index",
		},
	)

	// Snapshot Metrics
	SnapshotBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_snapshot_builds_total",
			Help: "Snapshot builds by result",
		},
		[]string{"result"}, // result: "success", "failure"
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebridge_snapshot_build_duration_seconds",
			Help:    "Duration of full snapshot builds (catalog, embeddings, index) in seconds",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
	)

	SnapshotMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebridge_snapshot_movies",
			Help: "Number of movies in the last successfully built snapshot",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_recommend_requests_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // outcome: "ok", "empty", "unknown_movie", "invalid", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebridge_recommend_duration_seconds",
			Help:    "Latency of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebridge_recommend_candidates",
			Help:    "Number of bridging candidates found per request before truncation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 40},
		},
	)

	RecommendCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_recommend_cache_lookups_total",
			Help: "Recommendation response cache lookups by result",
		},
		[]string{"result"}, // result: "hit", "miss"
	)

	// TMDB Metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_tmdb_requests_total",
			Help: "Total TMDB API requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	PosterCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_poster_cache_lookups_total",
			Help: "Poster URL cache lookups by result",
		},
		[]string{"result"}, // result: "hit", "negative_hit", "miss"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebridge_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebridge_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)
)

// RecordEmbeddingBatch records one embedder call.
func RecordEmbeddingBatch(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EmbeddingBatches.WithLabelValues(provider, result).Inc()
	EmbeddingBatchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordIndexBuild records a finished index build.
func RecordIndexBuild(kind string, size int, duration time.Duration) {
	IndexBuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
	IndexSize.Set(float64(size))
}

// RecordSnapshotBuild records a finished snapshot build. movies is ignored
// for failed builds.
func RecordSnapshotBuild(movies int, duration time.Duration, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuilds.WithLabelValues("failure").Inc()
		return
	}
	SnapshotBuilds.WithLabelValues("success").Inc()
	SnapshotMovies.Set(float64(movies))
}

// RecordRecommendation records a served (or rejected) recommendation request.
func RecordRecommendation(outcome string, candidates int, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if outcome == "ok" || outcome == "empty" {
		RecommendCandidates.Observe(float64(candidates))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
