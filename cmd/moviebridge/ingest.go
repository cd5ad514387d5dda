// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviebridge/internal/ingest"
	"github.com/tomtom215/moviebridge/internal/logging"
)

func ingestCmd(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Normalize the TMDB CSV dumps into the JSON catalog",
		Long: `Read MOVIES_CSV and KEYWORDS_CSV, keep movies with at least MIN_VOTES votes,
and write the normalized catalog to CATALOG_PATH (or --out).

Later commands load the catalog instead of re-reading the CSV files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Data.CatalogJSON
			}
			if out == "" {
				return fmt.Errorf("no output path: set --out or CATALOG_PATH")
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			movies, err := ingest.LoadCSV(ctx, cfg.IngestOptions(), logging.Logger())
			if err != nil {
				return err
			}
			if err := ingest.SaveJSON(out, movies); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d movies to %s\n", len(movies), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Catalog output path (default: CATALOG_PATH)")

	return cmd
}
