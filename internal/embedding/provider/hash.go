// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package provider

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// hashBias is the weight of the constant bucket 0. It keeps empty texts
// from producing a zero vector while staying small next to a single token.
const hashBias = 0.1

// HashEmbedder is a bag-of-words feature-hashing embedder. It needs no
// model, is fully deterministic, and texts sharing vocabulary end up close
// in cosine space. Useful for offline runs and smoke tests; quality is far
// below a sentence-transformer.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hashing embedder producing dim-length vectors.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim < 2 {
		dim = 2
	}
	return &HashEmbedder{dim: dim}
}

// Name identifies the embedder for cache fingerprints.
func (h *HashEmbedder) Name() string { return "hash:" + strconv.Itoa(h.dim) }

// Dimensions returns the vector length.
func (h *HashEmbedder) Dimensions() int { return h.dim }

// Embed hashes every lowercased token into one of dim-1 signed buckets.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	buckets := uint64(h.dim - 1)

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float32, h.dim)
		v[0] = hashBias
		for _, tok := range tokenize(text) {
			sum := xxhash.Sum64String(tok)
			idx := 1 + sum%buckets
			if sum>>63 == 1 {
				v[idx]--
			} else {
				v[idx]++
			}
		}
		out[i] = v
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
