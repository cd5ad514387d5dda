// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviebridge/internal/logging"
	"github.com/tomtom215/moviebridge/internal/recommend"
)

func recommendCmd(configPath *string) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "recommend <seed1> <seed2>",
		Short: "Print movies that bridge two seed movies",
		Example: `  moviebridge recommend 155 27205
  moviebridge recommend 155 27205 -n 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds := make([]int, 2)
			for i, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("seed %q is not a movie id", arg)
				}
				seeds[i] = id
			}
			if cmd.Flags().Changed("n") && n < 1 {
				return &recommend.InvalidRequestError{Field: "n", Reason: fmt.Sprintf("must be at least 1, got %d", n)}
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("n") {
				n = cfg.Recommend.DefaultN
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
			engine, err := snap.NewEngine(cfg.RecommendEngineConfig(), logging.Logger())
			if err != nil {
				return err
			}

			resp, err := engine.Recommend(ctx, recommend.Request{Seed1: seeds[0], Seed2: seeds[1], N: n})
			if err != nil {
				return err
			}

			s1, _ := snap.Catalog.Get(seeds[0])
			s2, _ := snap.Catalog.Get(seeds[1])
			fmt.Fprintf(cmd.OutOrStdout(), "Bridging %q and %q\n\n", s1.Title, s2.Title)
			return printRecommendations(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", recommend.DefaultN, "Number of recommendations (default from recommend.default_n)")

	return cmd
}

// printRecommendations writes resp as an aligned table.
func printRecommendations(w io.Writer, resp *recommend.Response) error {
	if len(resp.Items) == 0 {
		_, err := fmt.Fprintln(w, "no recommendations found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTITLE\tSCORE\tSEMANTIC\tGENRE\tGENRES")
	for i, item := range resp.Items {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.3f\t%.3f\t%.3f\t%s\n",
			i+1, item.MovieID, item.Title, item.Combined, item.Semantic, item.GenreBonus,
			strings.Join(item.Genres, ", "))
	}
	return tw.Flush()
}
