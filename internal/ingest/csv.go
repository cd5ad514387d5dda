// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	// DuckDB driver - reads the CSV dumps with read_csv
	_ "github.com/duckdb/duckdb-go/v2"
)

// DefaultMinVotes is the vote count below which movies are discarded.
const DefaultMinVotes = 1000

// Stats summarizes one CSV load.
type Stats struct {
	// RowsRead is the number of data rows in the movies file.
	RowsRead int64

	// Kept is the number of movies returned.
	Kept int

	// Duration is the wall time of the load.
	Duration time.Duration
}

// Reader reads the CSV dumps through an in-memory DuckDB connection.
type Reader struct {
	db *sql.DB
}

// NewReader opens an in-memory DuckDB connection.
func NewReader() (*Reader, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close closes the DuckDB connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// moviesQuery joins the two dumps. %[1]s and %[2]s are the quoted paths of
// the movies and keywords files.
const moviesQuery = `
	WITH raw AS (
		SELECT
			row_number() OVER () AS ord,
			TRY_CAST(id AS BIGINT) AS id,
			title,
			overview,
			genres,
			TRY_CAST(vote_count AS DOUBLE) AS vote_count,
			TRY_CAST(vote_average AS DOUBLE) AS vote_average,
			TRY_CAST(popularity AS DOUBLE) AS popularity
		FROM read_csv(%[1]s, header = true, all_varchar = true, ignore_errors = true)
	),
	movies AS (
		SELECT * FROM raw
		WHERE id IS NOT NULL AND vote_count >= ?
		QUALIFY row_number() OVER (PARTITION BY id ORDER BY ord) = 1
	),
	kw AS (
		SELECT id, keywords FROM (
			SELECT
				row_number() OVER () AS ord,
				TRY_CAST(id AS BIGINT) AS id,
				keywords
			FROM read_csv(%[2]s, header = true, all_varchar = true, ignore_errors = true)
		)
		WHERE id IS NOT NULL
		QUALIFY row_number() OVER (PARTITION BY id ORDER BY ord) = 1
	)
	SELECT
		m.id,
		COALESCE(m.title, ''),
		COALESCE(m.overview, ''),
		COALESCE(m.genres, '[]'),
		COALESCE(kw.keywords, '[]'),
		m.vote_count,
		COALESCE(m.vote_average, 0),
		COALESCE(m.popularity, 0)
	FROM movies m
	LEFT JOIN kw ON kw.id = m.id
	ORDER BY m.ord
`

// ReadMovies loads, filters and normalizes the movies in moviesPath,
// attaching the keywords from keywordsPath.
func (r *Reader) ReadMovies(ctx context.Context, moviesPath, keywordsPath string, minVotes int) ([]Record, *Stats, error) {
	start := time.Now()
	for _, p := range []string{moviesPath, keywordsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, nil, fmt.Errorf("csv source: %w", err)
		}
	}

	stats := &Stats{}
	countQuery := fmt.Sprintf("SELECT count(*) FROM read_csv(%s, header = true, all_varchar = true, ignore_errors = true)", quoteLiteral(moviesPath))
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&stats.RowsRead); err != nil {
		return nil, nil, fmt.Errorf("count movies: %w", err)
	}

	query := fmt.Sprintf(moviesQuery, quoteLiteral(moviesPath), quoteLiteral(keywordsPath))
	rows, err := r.db.QueryContext(ctx, query, float64(minVotes))
	if err != nil {
		return nil, nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Overview,
			&rec.GenresLiteral,
			&rec.KeywordsLiteral,
			&rec.VoteCount,
			&rec.VoteAverage,
			&rec.Popularity,
		); err != nil {
			return nil, nil, fmt.Errorf("scan movie row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate movie rows: %w", err)
	}

	stats.Kept = len(records)
	stats.Duration = time.Since(start)
	return records, stats, nil
}

// quoteLiteral renders s as a SQL string literal. Table function arguments
// cannot be bound as parameters.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ErrNoMovies is returned when no movie survives filtering.
var ErrNoMovies = errors.New("no movies left after filtering")
