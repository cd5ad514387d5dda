// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package main is the entry point for the MovieBridge CLI.
//
// MovieBridge recommends movies that bridge two seed movies: titles that sit
// close to both seeds in a sentence-embedding space, nudged toward the
// genres the seeds share.
//
// # Commands
//
//	moviebridge ingest                   TMDB CSV dumps to the JSON catalog
//	moviebridge build                    embed the catalog and warm the cache
//	moviebridge recommend 155 27205 -n 6 print bridge recommendations
//	moviebridge serve                    run the HTTP API
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (EMBEDDING_PROVIDER, TMDB_TOKEN, HTTP_PORT, ...)
//   - Config file (--config, CONFIG_PATH, or ./config.yaml)
//   - Built-in defaults
//
// See internal/config for the full list of variables.
//
// # Signal Handling
//
// build, recommend and serve stop on SIGINT and SIGTERM. serve drains
// in-flight requests for SHUTDOWN_TIMEOUT before exiting.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviebridge/internal/config"
	"github.com/tomtom215/moviebridge/internal/embedding"
	"github.com/tomtom215/moviebridge/internal/embedding/provider"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/pipeline"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "moviebridge",
		Short:         "Two-seed movie recommendation engine",
		Long:          `MovieBridge finds movies that sit between two seed movies, ranked by how close they are to both.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: CONFIG_PATH or ./config.yaml)")

	cmd.AddCommand(ingestCmd(&configPath))
	cmd.AddCommand(buildCmd(&configPath))
	cmd.AddCommand(recommendCmd(&configPath))
	cmd.AddCommand(serveCmd(&configPath))

	return cmd
}

// loadConfig loads configuration and initializes the global logger from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LogConfig())
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// newEmbedder builds the configured embedder. The returned func releases
// it and is safe to defer.
func newEmbedder(cfg *config.Config) (embedding.Embedder, func(), error) {
	e, err := provider.New(cfg.ProviderConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}
	release := func() {
		if c, ok := e.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing embedder")
			}
		}
	}
	return e, release, nil
}

// buildSnapshot runs the full offline pipeline from config.
func buildSnapshot(ctx context.Context, cfg *config.Config, e embedding.Embedder) (*pipeline.Snapshot, error) {
	return pipeline.Build(ctx, pipeline.Options{
		Ingest:   cfg.IngestOptions(),
		Embedder: e,
		Builder:  cfg.BuilderConfig(),
		Index:    cfg.IndexOptions(),
	}, logging.Logger())
}
