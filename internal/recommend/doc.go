// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package recommend finds "bridge" movies between two seed movies.
//
// # Scoring
//
// The Scorer asks the similarity index for the top-k neighbors of each seed
// and keeps only the movies present in both neighbor sets. A candidate's
// semantic score is the smaller of its two seed similarities, so a movie
// close to one seed and far from the other cannot rank highly. A genre
// bonus, the fraction of the seeds' combined genres the candidate shares,
// is blended in:
//
//	combined = (1 - w) * semantic + w * genre_bonus
//
// with w = 0.2 and k = 40 by default. Semantic and genre bonus are both in
// [0, 1], so combined is too.
//
// # Orchestration
//
// The Engine validates the request, delegates to the Scorer, excludes both
// seeds, orders by combined score descending with ties broken by ascending
// movie id, and truncates to n. Results are cached per unordered seed pair
// and n; swapping the seeds returns the same list.
//
// # Concurrency
//
// The catalog, embedding matrix and index are immutable after construction.
// Engine and Scorer are safe for concurrent use; the only shared mutable
// state is the response cache and atomic counters.
//
// # Usage
//
//	scorer, err := recommend.NewScorer(catalog, matrix, index)
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), catalog, scorer, logger)
//	resp, err := engine.Recommend(ctx, recommend.Request{Seed1: 27205, Seed2: 157336, N: 6})
package recommend
