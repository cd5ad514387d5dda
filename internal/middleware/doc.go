// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

/*
Package middleware provides HTTP middleware for the MovieBridge API.

Key Components:

  - RequestID: request id from X-Request-ID or a new UUID, stored in the
    logging context and echoed in the response header
  - AccessLog: one zerolog line per request with status and duration, and
    a warning for slow requests
  - PrometheusMetrics: request count and latency labeled by chi route
    pattern, so path parameters do not create new series

All middleware has the func(http.Handler) http.Handler shape used by chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger, time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
