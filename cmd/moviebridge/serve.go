// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviebridge/internal/api"
	"github.com/tomtom215/moviebridge/internal/config"
	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/pipeline"
	"github.com/tomtom215/moviebridge/internal/supervisor"
	"github.com/tomtom215/moviebridge/internal/supervisor/services"
	"github.com/tomtom215/moviebridge/internal/tmdb"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server under a supervisor tree.

The listener comes up immediately; /api/v1/health/ready answers 503 until
the first snapshot is built. Set CATALOG_REFRESH_INTERVAL to rebuild the
snapshot periodically, and TMDB_TOKEN to enable the poster endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runServe(ctx, cfg)
		},
	}
}

//nolint:gocyclo // sequential setup steps
func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()
	logging.Info().Str("config", cfg.String()).Msg("Starting MovieBridge with supervisor tree")

	embedder, release, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer release()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// The poster endpoint answers POSTERS_DISABLED unless a token is set.
	var posters api.PosterResolver
	if cfg.PostersEnabled() {
		store, err := tmdb.OpenPosterStore(cfg.TMDB.CacheDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing poster cache")
			}
		}()

		client, err := tmdb.NewClient(cfg.TMDBClientConfig(), store, logger)
		if err != nil {
			return err
		}
		posters = client
		tree.AddDataService(services.NewCacheGCService(store, 0, 0, logger))
		logging.Info().Str("cache_dir", cfg.TMDB.CacheDir).Msg("TMDB poster lookups enabled")
	} else {
		logging.Info().Msg("TMDB poster lookups disabled (TMDB_TOKEN not set)")
	}

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(posters, cfg.Server.WriteTimeout)

	build := func(ctx context.Context) (*pipeline.Snapshot, error) {
		return buildSnapshot(ctx, cfg, embedder)
	}
	publish := func(snap *pipeline.Snapshot) error {
		engine, err := snap.NewEngine(cfg.RecommendEngineConfig(), logger)
		if err != nil {
			return err
		}
		handler.SetSnapshot(snap.Catalog, engine, snap.Fingerprint.String())
		return nil
	}
	tree.AddDataService(services.NewSnapshotService(build, publish, services.SnapshotServiceConfig{
		RefreshInterval: cfg.Data.RefreshInterval,
	}, logger))

	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mw.RateLimitRequests = cfg.Server.RateLimitReqs
	mw.RateLimitWindow = cfg.Server.RateLimitWindow
	mw.RateLimitDisabled = cfg.Server.RateLimitDisabled

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mw, logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("MovieBridge stopped gracefully")
	return nil
}
