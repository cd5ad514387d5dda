// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// defaultSearchLimit applies when limit is absent.
const defaultSearchLimit = 10

// RecommendationsRequest holds the query parameters of
// GET /api/v1/recommendations. Range checks on N belong to the engine.
//
// Fields:
//   - Seed1, Seed2: TMDB movie ids of the two seeds
//   - N: number of results, nil when the parameter is absent
type RecommendationsRequest struct {
	Seed1 int  `query:"seed1" validate:"required"`
	Seed2 int  `query:"seed2" validate:"required"`
	N     *int `query:"n"`
}

// SearchRequest holds the query parameters of GET /api/v1/movies.
type SearchRequest struct {
	Query string `query:"q" validate:"notblank,max=200"`
	Limit int    `query:"limit" validate:"min=1,max=50"`
}

// paramError is a query parameter that is not an integer.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be an integer, got %q", e.name, e.value)
}

// getIntParam parses an optional integer query parameter.
func getIntParam(r *http.Request, name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

// getOptionalIntParam parses an integer query parameter, returning nil when
// it is absent.
func getOptionalIntParam(r *http.Request, name string) (*int, error) {
	if strings.TrimSpace(r.URL.Query().Get(name)) == "" {
		return nil, nil
	}
	v, err := getIntParam(r, name, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseRecommendationsRequest(r *http.Request) (RecommendationsRequest, error) {
	var req RecommendationsRequest
	var err error
	if req.Seed1, err = getIntParam(r, "seed1", 0); err != nil {
		return req, err
	}
	if req.Seed2, err = getIntParam(r, "seed2", 0); err != nil {
		return req, err
	}
	if req.N, err = getOptionalIntParam(r, "n"); err != nil {
		return req, err
	}
	return req, nil
}

func parseSearchRequest(r *http.Request) (SearchRequest, error) {
	req := SearchRequest{Query: r.URL.Query().Get("q")}
	var err error
	req.Limit, err = getIntParam(r, "limit", defaultSearchLimit)
	return req, err
}
