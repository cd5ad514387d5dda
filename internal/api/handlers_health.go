// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness check requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of the snapshot.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests (Kubernetes-style).
// Returns 200 OK only once a snapshot is installed, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s := h.current()
	if s == nil {
		rw.ServiceUnavailable(ErrCodeNotReady, ErrNotReady.Error())
		return
	}

	stats := s.recommender.Stats()
	rw.Success(map[string]interface{}{
		"ready":           true,
		"movies":          s.catalog.Len(),
		"fingerprint":     s.fingerprint,
		"loaded_at":       s.installedAt,
		"posters_enabled": h.posters != nil,
		"requests":        stats.Requests,
		"cache_hits":      stats.CacheHits,
		"cache_size":      stats.CacheSize,
	})
}
