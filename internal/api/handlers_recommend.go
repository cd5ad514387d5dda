// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/recommend"
	"github.com/tomtom215/moviebridge/internal/validation"
)

// emptyMessage is meta.message for a request with no bridge candidates.
const emptyMessage = "no recommendations found"

// GetRecommendations handles GET /api/v1/recommendations?seed1=&seed2=&n=.
// Returns movies similar to both seeds, best bridge first.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s := h.current()
	if s == nil {
		rw.ServiceUnavailable(ErrCodeNotReady, ErrNotReady.Error())
		return
	}

	params, err := parseRecommendationsRequest(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&params); verr != nil {
		rw.ValidationError(verr)
		return
	}

	n := s.recommender.DefaultN()
	if params.N != nil {
		n = *params.N
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := s.recommender.Recommend(ctx, recommend.Request{
		Seed1:     params.Seed1,
		Seed2:     params.Seed2,
		N:         n,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})

	var unknown *recommend.UnknownMovieError
	var invalid *recommend.InvalidRequestError
	switch {
	case errors.As(err, &unknown):
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeMovieNotFound, "movie not found",
			map[string]interface{}{"movie_id": unknown.MovieID})
		return
	case errors.As(err, &invalid):
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidation, invalid.Error(),
			map[string]interface{}{"field": invalid.Field})
		return
	case err != nil:
		rw.InternalError(err)
		return
	}

	meta := &APIMeta{Count: new(int)}
	*meta.Count = len(resp.Items)
	if len(resp.Items) == 0 {
		meta.Message = emptyMessage
	}
	rw.SuccessWithMeta(resp, meta)
}
