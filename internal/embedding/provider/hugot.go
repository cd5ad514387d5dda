// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// hugotBatchMax bounds a single pipeline run to keep peak memory flat.
const hugotBatchMax = 32

// DefaultHugotDimensions is the output width of all-mpnet-base-v2.
const DefaultHugotDimensions = 768

// HugotEmbedder runs a sentence-transformer ONNX export (all-mpnet-base-v2
// by default) in-process through the hugot pure Go backend. The pipeline
// output is mean pooled and L2-normalized.
//
// The model directory is either ModelDir itself or its first subdirectory
// containing tokenizer.json. The session is created on first use and every
// inference call is serialized.
type HugotEmbedder struct {
	modelDir string
	model    string
	dim      int

	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

// NewHugotEmbedder creates an embedder for the model found under modelDir.
// A dim of zero selects DefaultHugotDimensions.
func NewHugotEmbedder(modelDir, model string, dim int) *HugotEmbedder {
	if dim <= 0 {
		dim = DefaultHugotDimensions
	}
	return &HugotEmbedder{modelDir: modelDir, model: model, dim: dim}
}

// Name identifies the model for cache fingerprints.
func (h *HugotEmbedder) Name() string { return "hugot:" + h.model }

// Dimensions returns the configured output dimension.
func (h *HugotEmbedder) Dimensions() int { return h.dim }

// Available reports whether a model directory can be found on disk.
func (h *HugotEmbedder) Available() bool {
	_, err := resolveModelPath(h.modelDir)
	return err == nil
}

// Embed returns one vector per text.
func (h *HugotEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.initialize(); err != nil {
		return nil, err
	}

	out := make([][]float32, 0, len(texts))
	for lo := 0; lo < len(texts); lo += hugotBatchMax {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hi := min(lo+hugotBatchMax, len(texts))
		result, err := h.pipeline.RunPipeline(texts[lo:hi])
		if err != nil {
			return nil, fmt.Errorf("run embedding pipeline: %w", err)
		}
		out = append(out, result.Embeddings...)
	}
	return out, nil
}

// Close releases the hugot session.
func (h *HugotEmbedder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return nil
	}
	err := h.session.Destroy()
	h.session = nil
	h.pipeline = nil
	return err
}

// initialize must be called with mu held.
func (h *HugotEmbedder) initialize() error {
	if h.pipeline != nil {
		return nil
	}

	modelPath, err := resolveModelPath(h.modelDir)
	if err != nil {
		return err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "moviebridge-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	h.session = session
	h.pipeline = pipeline
	return nil
}

// resolveModelPath accepts either a model directory or a parent directory
// holding exactly the model as a subdirectory.
func resolveModelPath(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("embedding model directory is not configured")
	}
	if _, err := os.Stat(filepath.Join(dir, "tokenizer.json")); err == nil {
		return dir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(candidate, "tokenizer.json")); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model with tokenizer.json found in %s", dir)
}
