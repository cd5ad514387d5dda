// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Embed the catalog and build the similarity index",
		Long: `Load the catalog, embed every movie and build the similarity index.

The embedding matrix is cached under EMBEDDING_CACHE_DIR keyed by a
fingerprint of the model and catalog, so serve and recommend start fast
afterwards. --force ignores an existing cache entry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if force {
				cfg.Embedding.ForceRebuild = true
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			embedder, release, err := newEmbedder(cfg)
			if err != nil {
				return err
			}
			defer release()

			snap, err := buildSnapshot(ctx, cfg, embedder)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "movies:      %d\n", snap.Catalog.Len())
			fmt.Fprintf(w, "provider:    %s\n", snap.Provider)
			fmt.Fprintf(w, "dimensions:  %d\n", snap.Matrix.Dim())
			fmt.Fprintf(w, "index:       %s\n", snap.Index.Kind())
			fmt.Fprintf(w, "fingerprint: %s\n", snap.Fingerprint)
			fmt.Fprintf(w, "from cache:  %t\n", snap.FromCache)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-embed even when a cached matrix exists")

	return cmd
}
