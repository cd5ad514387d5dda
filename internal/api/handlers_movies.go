// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/moviebridge/internal/movie"
	"github.com/tomtom215/moviebridge/internal/tmdb"
	"github.com/tomtom215/moviebridge/internal/validation"
)

// movieSummary is a search hit.
type movieSummary struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	VoteAverage float64  `json:"vote_average"`
}

// posterResponse is the poster endpoint payload.
type posterResponse struct {
	MovieID   int    `json:"movie_id"`
	PosterURL string `json:"poster_url"`
}

// SearchMovies handles GET /api/v1/movies?q=&limit=.
// A title prefix search, falling back to substring matches.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s := h.current()
	if s == nil {
		rw.ServiceUnavailable(ErrCodeNotReady, ErrNotReady.Error())
		return
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	hits := s.catalog.Search(req.Query, req.Limit)
	out := make([]movieSummary, len(hits))
	for i, m := range hits {
		out[i] = movieSummary{ID: m.ID, Title: m.Title, Genres: m.Genres, VoteAverage: m.VoteAverage}
	}
	count := len(out)
	rw.SuccessWithMeta(out, &APIMeta{Count: &count})
}

// GetMovie handles GET /api/v1/movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s := h.current()
	if s == nil {
		rw.ServiceUnavailable(ErrCodeNotReady, ErrNotReady.Error())
		return
	}

	m, ok := h.lookupMovie(rw, r, s.catalog)
	if !ok {
		return
	}
	rw.Success(m)
}

// GetPoster handles GET /api/v1/movies/{id}/poster.
func (h *Handler) GetPoster(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.posters == nil {
		rw.ServiceUnavailable(ErrCodePostersDisabled, ErrPostersDisabled.Error())
		return
	}
	s := h.current()
	if s == nil {
		rw.ServiceUnavailable(ErrCodeNotReady, ErrNotReady.Error())
		return
	}

	m, ok := h.lookupMovie(rw, r, s.catalog)
	if !ok {
		return
	}

	url, found, err := h.posters.PosterURL(r.Context(), m.ID)
	switch {
	case errors.Is(err, tmdb.ErrUnavailable):
		rw.ServiceUnavailable(ErrCodeServiceUnavailable, "poster service temporarily unavailable")
	case err != nil:
		rw.InternalError(err)
	case !found:
		rw.NotFound(ErrCodeNotFound, "no poster for this movie")
	default:
		rw.Success(posterResponse{MovieID: m.ID, PosterURL: url})
	}
}

// lookupMovie resolves the {id} path parameter, writing the error
// response itself when it fails.
func (h *Handler) lookupMovie(rw *ResponseWriter, r *http.Request, catalog *movie.Catalog) (*movie.Movie, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		rw.BadRequest((&paramError{name: "id", value: raw}).Error())
		return nil, false
	}
	m, ok := catalog.Get(id)
	if !ok {
		rw.NotFound(ErrCodeMovieNotFound, "movie not found")
		return nil, false
	}
	return m, true
}
