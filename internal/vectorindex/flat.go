// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package vectorindex

import (
	"container/heap"

	"github.com/tomtom215/moviebridge/internal/embedding"
)

// FlatIndex is an exact index: every query computes the inner product with
// every row. At a few thousand 768-dimensional vectors this is well under
// a millisecond per query.
type FlatIndex struct {
	matrix *embedding.Matrix
	ids    []int
	pos    map[int]int
}

// NewFlatIndex indexes matrix with ids[i] naming row i. The matrix is
// referenced, not copied.
func NewFlatIndex(matrix *embedding.Matrix, ids []int) (*FlatIndex, error) {
	pos, err := positionMap(ids)
	if err != nil {
		return nil, err
	}
	return &FlatIndex{
		matrix: matrix,
		ids:    append([]int(nil), ids...),
		pos:    pos,
	}, nil
}

// Kind returns "flat".
func (f *FlatIndex) Kind() string { return KindFlat }

// Len returns the number of indexed vectors.
func (f *FlatIndex) Len() int {
	if f.matrix == nil {
		return 0
	}
	return f.matrix.Count()
}

// Query returns the k rows with the highest inner product with vector.
func (f *FlatIndex) Query(vector []float32, k int) ([]Neighbor, error) {
	if f.matrix == nil {
		return nil, ErrIndexNotBuilt
	}
	q, err := prepareQuery(vector, f.matrix.Dim())
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return []Neighbor{}, nil
	}

	k = min(k, f.matrix.Count())
	h := make(worstFirst, 0, k)
	for i := 0; i < f.matrix.Count(); i++ {
		n := Neighbor{MovieID: f.ids[i], Similarity: embedding.Dot(q, f.matrix.Row(i))}
		if len(h) < k {
			heap.Push(&h, n)
			continue
		}
		if better(n, h[0]) {
			h[0] = n
			heap.Fix(&h, 0)
		}
	}

	out := []Neighbor(h)
	sortNeighbors(out)
	return out, nil
}

// worstFirst is a heap whose root is the lowest-ranked neighbor kept so far.
type worstFirst []Neighbor

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Neighbor)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}
