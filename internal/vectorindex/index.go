// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package vectorindex provides top-k cosine similarity search over the
// embedding matrix.
//
// Two backends implement Index: FlatIndex scans every vector and is exact;
// HNSWIndex walks a Hierarchical Navigable Small World graph and is
// approximate. Both return the same similarity values for the items they
// return, and order results by similarity descending with ties broken by
// ascending movie id. An index is immutable once built and may be shared
// by any number of concurrent readers without locking.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/metrics"
)

// Index kinds accepted by Build.
const (
	KindFlat = "flat"
	KindHNSW = "hnsw"
	KindAuto = "auto"
)

var (
	// ErrIndexNotBuilt is returned when an index value that did not come
	// from a successful build is queried.
	ErrIndexNotBuilt = errors.New("similarity index not built")

	// ErrDimensionMismatch is returned for vectors or id mappings whose
	// shape does not match the index.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDuplicateID is returned when an id mapping repeats an identifier.
	ErrDuplicateID = errors.New("duplicate movie id in id mapping")
)

// Neighbor is one query result.
type Neighbor struct {
	MovieID    int
	Similarity float64
}

// Index answers top-k nearest neighbor queries by cosine similarity.
type Index interface {
	// Query returns at most k neighbors of vector, most similar first.
	// Returned similarities are in [-1, 1]. The indexed item equal to the
	// query, if any, is returned like any other item.
	Query(vector []float32, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Kind names the backend.
	Kind() string
}

// Options configures Build.
type Options struct {
	// Kind is flat, hnsw or auto.
	// Default: auto
	Kind string

	// HNSWThreshold is the size above which auto selects HNSW. Zero keeps
	// auto on the exact flat index at every size.
	HNSWThreshold int

	HNSW HNSWConfig
}

// Build indexes matrix. ids[i] is the movie id of matrix row i; the
// mapping must be a bijection.
func Build(matrix *embedding.Matrix, ids []int, opts Options) (Index, error) {
	if matrix == nil {
		return nil, errors.New("embedding matrix is required")
	}
	if len(ids) != matrix.Count() {
		return nil, fmt.Errorf("%w: %d ids for %d vectors", ErrDimensionMismatch, len(ids), matrix.Count())
	}

	kind := opts.Kind
	if kind == "" {
		kind = KindAuto
	}
	if kind == KindAuto {
		kind = KindFlat
		if opts.HNSWThreshold > 0 && matrix.Count() > opts.HNSWThreshold {
			kind = KindHNSW
		}
	}

	start := time.Now()
	var (
		idx Index
		err error
	)
	switch kind {
	case KindFlat:
		idx, err = NewFlatIndex(matrix, ids)
	case KindHNSW:
		idx, err = NewHNSWIndex(matrix, ids, opts.HNSW)
	default:
		return nil, fmt.Errorf("unknown index kind %q", opts.Kind)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordIndexBuild(idx.Kind(), idx.Len(), time.Since(start))
	return idx, nil
}

func positionMap(ids []int) (map[int]int, error) {
	pos := make(map[int]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		pos[id] = i
	}
	return pos, nil
}

// prepareQuery checks the dimension and returns a unit-length copy of v
// when v is not already unit length.
func prepareQuery(v []float32, dim int) ([]float32, error) {
	if len(v) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(v), dim)
	}
	norm := embedding.Dot(v, v)
	if math.Abs(norm-1) <= 1e-6 {
		return v, nil
	}
	q := append([]float32(nil), v...)
	if !embedding.Normalize(q) {
		return nil, embedding.ErrInvalidVector
	}
	return q, nil
}

// better reports whether a ranks strictly before b.
func better(a, b Neighbor) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.MovieID < b.MovieID
}

func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool { return better(ns[i], ns[j]) })
}
