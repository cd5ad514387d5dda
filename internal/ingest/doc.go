// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package ingest turns the TMDB metadata dumps into normalized movie records.
//
// # Sources
//
// Two CSV files are read through an in-memory DuckDB connection:
//
//   - movies.csv: id, title, overview, genres, vote_count, vote_average,
//     popularity
//   - keywords.csv: id, keywords
//
// Every column is read as text and numeric columns are coerced with
// TRY_CAST, so malformed rows are dropped instead of failing the load. Only
// movies with at least MinVotes votes are kept. The first row wins for a
// repeated id, and the result keeps the file order.
//
// The genres and keywords columns hold list literals of the form
//
//	[{'id': 28, 'name': 'Action'}, {'id': 12, 'name': 'Adventure'}]
//
// from which only the names are kept. A value that is not a list literal
// yields no names.
//
// # Catalog file
//
// The normalized records can be saved as a JSON catalog so later runs skip
// the CSV step. Load prefers the catalog file when it exists.
package ingest
