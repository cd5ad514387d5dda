// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMovie matches any *UnknownMovieError.
	ErrUnknownMovie = errors.New("unknown movie")

	// ErrInvalidRequest matches any *InvalidRequestError.
	ErrInvalidRequest = errors.New("invalid request")
)

// UnknownMovieError reports a seed id that is not in the catalog.
type UnknownMovieError struct {
	MovieID int
}

func (e *UnknownMovieError) Error() string {
	return fmt.Sprintf("unknown movie id %d", e.MovieID)
}

// Is makes errors.Is(err, ErrUnknownMovie) true.
func (e *UnknownMovieError) Is(target error) bool {
	return target == ErrUnknownMovie
}

// InvalidRequestError reports a request parameter outside its accepted range.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidRequest) true.
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}
