// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package recommend

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/movie"
	"github.com/tomtom215/moviebridge/internal/vectorindex"
)

// Scorer computes hybrid bridge scores for the candidates of a seed pair.
// It holds only immutable state and is safe for concurrent use.
type Scorer struct {
	catalog *movie.Catalog
	matrix  *embedding.Matrix
	index   vectorindex.Index
}

// NewScorer creates a scorer over a catalog, the embedding matrix built
// from it and an index of that matrix.
func NewScorer(catalog *movie.Catalog, matrix *embedding.Matrix, index vectorindex.Index) (*Scorer, error) {
	if catalog == nil || matrix == nil || index == nil {
		return nil, errors.New("catalog, matrix and index are required")
	}
	if catalog.Len() != matrix.Count() {
		return nil, fmt.Errorf("catalog has %d movies but matrix has %d rows", catalog.Len(), matrix.Count())
	}
	if index.Len() != matrix.Count() {
		return nil, fmt.Errorf("index has %d vectors but matrix has %d rows", index.Len(), matrix.Count())
	}
	return &Scorer{catalog: catalog, matrix: matrix, index: index}, nil
}

// Score returns the candidates shared by the top-k neighbors of both seeds,
// keyed by movie id. Neither seed is ever a key. The map is empty, not nil,
// when the neighbor sets do not intersect.
func (s *Scorer) Score(seed1, seed2, k int, genreWeight float64) (map[int]Candidate, error) {
	if k < 1 {
		return nil, &InvalidRequestError{Field: "k", Reason: fmt.Sprintf("must be positive, got %d", k)}
	}
	if genreWeight < 0 || genreWeight > 1 {
		return nil, &InvalidRequestError{Field: "genre_weight", Reason: fmt.Sprintf("must be in [0, 1], got %v", genreWeight)}
	}

	pos1, ok := s.catalog.Position(seed1)
	if !ok {
		return nil, &UnknownMovieError{MovieID: seed1}
	}
	pos2, ok := s.catalog.Position(seed2)
	if !ok {
		return nil, &UnknownMovieError{MovieID: seed2}
	}

	near1, err := s.neighbors(pos1, k)
	if err != nil {
		return nil, err
	}
	near2, err := s.neighbors(pos2, k)
	if err != nil {
		return nil, err
	}

	union := s.catalog.At(pos1).GenreSet()
	for g := range s.catalog.At(pos2).GenreSet() {
		union[g] = struct{}{}
	}

	out := make(map[int]Candidate, min(len(near1), len(near2)))
	for id, sim1 := range near1 {
		sim2, shared := near2[id]
		if !shared || id == seed1 || id == seed2 {
			continue
		}
		cand, ok := s.catalog.Get(id)
		if !ok {
			continue
		}

		semantic := clamp01(min(sim1, sim2))
		bonus := genreBonus(cand, union)
		out[id] = Candidate{
			MovieID:    id,
			Combined:   (1-genreWeight)*semantic + genreWeight*bonus,
			Semantic:   semantic,
			GenreBonus: bonus,
		}
	}
	return out, nil
}

func (s *Scorer) neighbors(pos, k int) (map[int]float64, error) {
	ns, err := s.index.Query(s.matrix.Row(pos), k)
	if err != nil {
		return nil, fmt.Errorf("query neighbors of movie %d: %w", s.catalog.At(pos).ID, err)
	}
	m := make(map[int]float64, len(ns))
	for _, n := range ns {
		m[n.MovieID] = n.Similarity
	}
	return m, nil
}

// genreBonus is the share of the seed genre union that m also carries.
func genreBonus(m *movie.Movie, union map[string]struct{}) float64 {
	if len(union) == 0 {
		return 0
	}
	shared := 0
	for g := range m.GenreSet() {
		if _, ok := union[g]; ok {
			shared++
		}
	}
	return clamp01(float64(shared) / float64(len(union)))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
