// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

/*
Package api serves the MovieBridge HTTP API on a chi router.

# Endpoints

	GET /api/v1/health/live                         process is up
	GET /api/v1/health/ready                        a snapshot is loaded
	GET /api/v1/movies?q=heat&limit=10              title search
	GET /api/v1/movies/{id}                         one movie
	GET /api/v1/movies/{id}/poster                  TMDB poster URL
	GET /api/v1/recommendations?seed1=&seed2=&n=    bridge recommendations
	GET /metrics                                    Prometheus exposition

# Response Format

Every JSON response uses one envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"timestamp": "...", "request_id": "...", "query_time_ms": 3}
	}

Errors set success to false and carry error.code and error.message:

	MOVIE_NOT_FOUND      404  a seed or movie id is not in the catalog
	VALIDATION_ERROR     400  malformed or out of range parameters
	NOT_READY            503  the snapshot is still being built
	POSTERS_DISABLED     503  no TMDB token configured
	SERVICE_UNAVAILABLE  503  TMDB circuit open
	INTERNAL_ERROR       500  anything else

An empty bridge is not an error: the recommendations endpoint answers 200
with an empty list and meta.message "no recommendations found".
*/
package api
