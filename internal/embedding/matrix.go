// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned for vectors that cannot be unit-normalized.
var ErrInvalidVector = errors.New("vector has zero norm or non-finite components")

// Matrix is a dense count x dim float32 matrix stored row-major. Row i is
// the embedding of catalog position i. Every row has unit L2 norm, so the
// inner product of two rows is their cosine similarity.
//
// A Matrix is never mutated after the builder or the cache returns it.
type Matrix struct {
	dim   int
	count int
	data  []float32
}

func newMatrix(count, dim int) *Matrix {
	return &Matrix{dim: dim, count: count, data: make([]float32, count*dim)}
}

// NewMatrixFromRows copies rows into a matrix, normalizing each one.
func NewMatrixFromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: row 0 is empty", ErrInvalidVector)
	}

	m := newMatrix(len(rows), dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
		dst := m.data[i*dim : (i+1)*dim]
		copy(dst, row)
		if !Normalize(dst) {
			return nil, fmt.Errorf("row %d: %w", i, ErrInvalidVector)
		}
	}
	return m, nil
}

// Dim returns the vector length.
func (m *Matrix) Dim() int { return m.dim }

// Count returns the number of rows.
func (m *Matrix) Count() int { return m.count }

// Row returns row i as a view into the matrix. Callers must not modify it.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.dim : (i+1)*m.dim : (i+1)*m.dim]
}

// Normalize scales v to unit length in place. It returns false, leaving v
// untouched, when v is all zeros or holds NaN or Inf values.
func Normalize(v []float32) bool {
	var sum float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		sum += f * f
	}
	if sum == 0 {
		return false
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return true
}

// Dot returns the inner product of a and b accumulated in float64.
// The vectors must have the same length.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
