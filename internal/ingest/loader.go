// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/renameio"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/movie"
)

// catalogVersion is bumped when the catalog file layout changes.
const catalogVersion = 1

// Record is one movie row as read from the CSV dumps, before the genre and
// keyword literals are parsed.
type Record struct {
	ID              int64
	Title           string
	Overview        string
	GenresLiteral   string
	KeywordsLiteral string
	VoteCount       float64
	VoteAverage     float64
	Popularity      float64
}

// Movie normalizes the record.
func (r *Record) Movie() movie.Movie {
	return movie.Movie{
		ID:          int(r.ID),
		Title:       strings.TrimSpace(r.Title),
		Overview:    strings.TrimSpace(r.Overview),
		Genres:      ParseNames(r.GenresLiteral),
		Keywords:    ParseNames(r.KeywordsLiteral),
		VoteCount:   r.VoteCount,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
	}
}

// Options selects the movie sources.
type Options struct {
	// CatalogPath is the JSON catalog. It is used instead of the CSV files
	// when it exists.
	CatalogPath string

	// MoviesCSV and KeywordsCSV are the TMDB metadata dumps.
	MoviesCSV   string
	KeywordsCSV string

	// MinVotes filters out rarely voted movies.
	// Default: 1000
	MinVotes int
}

// Load returns the normalized movies, from the catalog file when present
// and from the CSV dumps otherwise.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(ctx context.Context, opts Options, logger zerolog.Logger) ([]movie.Movie, error) {
	if opts.CatalogPath != "" {
		movies, err := LoadJSON(opts.CatalogPath)
		switch {
		case err == nil:
			logger.Info().
				Str("path", opts.CatalogPath).
				Int("movies", len(movies)).
				Msg("loaded movie catalog")
			return movies, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	return LoadCSV(ctx, opts, logger)
}

// LoadCSV reads and normalizes the CSV dumps.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func LoadCSV(ctx context.Context, opts Options, logger zerolog.Logger) ([]movie.Movie, error) {
	if opts.MoviesCSV == "" || opts.KeywordsCSV == "" {
		return nil, errors.New("movies and keywords csv paths are required")
	}
	minVotes := opts.MinVotes
	if minVotes <= 0 {
		minVotes = DefaultMinVotes
	}

	reader, err := NewReader()
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck // in-memory connection

	records, stats, err := reader.ReadMovies(ctx, opts.MoviesCSV, opts.KeywordsCSV, minVotes)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w (min votes %d)", ErrNoMovies, minVotes)
	}

	movies := make([]movie.Movie, len(records))
	for i := range records {
		movies[i] = records[i].Movie()
	}

	logger.Info().
		Str("movies_csv", opts.MoviesCSV).
		Int64("rows_read", stats.RowsRead).
		Int("kept", stats.Kept).
		Int("min_votes", minVotes).
		Dur("duration", stats.Duration).
		Msg("ingested movie csv")
	return movies, nil
}

type catalogFile struct {
	Version     int           `json:"version"`
	GeneratedAt time.Time     `json:"generated_at"`
	Movies      []movie.Movie `json:"movies"`
}

// LoadJSON reads a catalog written by SaveJSON. A missing file returns an
// error matching fs.ErrNotExist.
func LoadJSON(path string) ([]movie.Movie, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if f.Version != catalogVersion {
		return nil, fmt.Errorf("catalog %s has version %d, want %d", path, f.Version, catalogVersion)
	}
	if len(f.Movies) == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrNoMovies)
	}
	return f.Movies, nil
}

// SaveJSON atomically writes movies as a catalog file.
func SaveJSON(path string, movies []movie.Movie) error {
	data, err := json.MarshalIndent(catalogFile{
		Version:     catalogVersion,
		GeneratedAt: time.Now().UTC(),
		Movies:      movies,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}
