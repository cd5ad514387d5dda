// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package provider holds the concrete embedding.Embedder implementations.
package provider

import (
	"fmt"
	"time"

	"github.com/tomtom215/moviebridge/internal/embedding"
)

// Provider names accepted by New.
const (
	Hugot  = "hugot"
	OpenAI = "openai"
	Hash   = "hash"
)

// Config selects and configures an embedder.
type Config struct {
	Provider   string
	Model      string
	ModelDir   string
	Dimensions int
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// New builds the embedder named by cfg.Provider.
func New(cfg Config) (embedding.Embedder, error) {
	switch cfg.Provider {
	case Hugot:
		model := cfg.Model
		if model == "" {
			model = "sentence-transformers/all-mpnet-base-v2"
		}
		e := NewHugotEmbedder(cfg.ModelDir, model, cfg.Dimensions)
		if !e.Available() {
			return nil, fmt.Errorf("%w: no hugot model under %q", embedding.ErrEmbeddingFailure, cfg.ModelDir)
		}
		return e, nil
	case OpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}), nil
	case Hash:
		return NewHashEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

var (
	_ embedding.Embedder = (*HugotEmbedder)(nil)
	_ embedding.Embedder = (*OpenAIEmbedder)(nil)
	_ embedding.Embedder = (*HashEmbedder)(nil)
)
