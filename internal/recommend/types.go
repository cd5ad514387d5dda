// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import "time"

// Candidate is one scored movie from the seed neighbor intersection.
type Candidate struct {
	MovieID    int     `json:"movie_id"`
	Combined   float64 `json:"combined"`
	Semantic   float64 `json:"semantic"`
	GenreBonus float64 `json:"genre_bonus"`
}

// better reports whether a ranks strictly before b.
func better(a, b *Candidate) bool {
	if a.Combined != b.Combined {
		return a.Combined > b.Combined
	}
	return a.MovieID < b.MovieID
}

// Request asks for bridge recommendations between two seeds.
type Request struct {
	// Seed1 and Seed2 are catalog movie ids. Their order does not matter.
	Seed1 int `json:"seed1"`
	Seed2 int `json:"seed2"`

	// N is the maximum number of results and must be at least 1. Callers
	// with no user-supplied value pass Engine.DefaultN.
	N int `json:"n"`

	// RequestID is generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Recommendation is one ranked result with the movie's display fields.
type Recommendation struct {
	MovieID     int      `json:"movie_id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	VoteAverage float64  `json:"vote_average"`
	Genres      []string `json:"genres"`
	Combined    float64  `json:"score"`
	Semantic    float64  `json:"semantic"`
	GenreBonus  float64  `json:"genre_bonus"`
}

// Response is the ordered result of a recommendation request.
type Response struct {
	// Items is ordered by combined score descending, then movie id
	// ascending. It is never nil.
	Items []Recommendation `json:"items"`

	// TotalCandidates is the size of the neighbor intersection, seeds
	// excluded.
	TotalCandidates int `json:"total_candidates"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	Seed1     int       `json:"seed1"`
	Seed2     int       `json:"seed2"`
	N         int       `json:"n"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	Errors      int64 `json:"errors"`
	CacheSize   int   `json:"cache_size"`
}
