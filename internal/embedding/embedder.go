// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package embedding turns the movie catalog into the unit-normalized
// embedding matrix the similarity index is built from.
//
// The text-to-vector model is injected through the Embedder interface, so
// the Builder works the same with a local ONNX model, a remote
// OpenAI-compatible endpoint or a deterministic test double. Built
// matrices are persisted in a flat binary cache keyed by a fingerprint of
// the dataset and the embedder, so unchanged data is never re-embedded.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder converts texts to fixed-length vectors.
type Embedder interface {
	// Name identifies the model. It is part of the cache fingerprint, so
	// two embedders producing different vectors must have different names.
	Name() string

	// Dimensions is the length of every vector returned by Embed.
	Dimensions() int

	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrEmbeddingFailure is matched by every error that aborts a matrix build
// because the embedder failed or produced malformed output.
var ErrEmbeddingFailure = errors.New("embedding failure")

// EmbeddingError describes why a batch starting at Offset could not be
// turned into matrix rows.
type EmbeddingError struct {
	Offset int
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failure at record %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failure at record %d: %s", e.Offset, e.Reason)
}

// Unwrap returns the underlying embedder error, if any.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEmbeddingFailure.
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbeddingFailure }
