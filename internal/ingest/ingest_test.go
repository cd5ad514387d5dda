// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebridge/internal/movie"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		want    []string
	}{
		{"two genres", `[{'id': 28, 'name': 'Action'}, {'id': 12, 'name': 'Adventure'}]`, []string{"Action", "Adventure"}},
		{"double quoted name", `[{'id': 1, 'name': "Schindler's List"}]`, []string{"Schindler's List"}},
		{"escaped quote", `[{'id': 1, 'name': 'rock \'n\' roll'}]`, []string{"rock 'n' roll"}},
		{"json style", `[{"id": 1, "name": "Drama"}]`, []string{"Drama"}},
		{"surrounding space", `  [{'id': 1, 'name': ' Crime '}]  `, []string{"Crime"}},
		{"empty list", `[]`, nil},
		{"empty string", ``, nil},
		{"not a list", `{'id': 1, 'name': 'Action'}`, nil},
		{"truncated", `[{'id': 1, 'name': 'Act`, nil},
		{"nan", `nan`, nil},
		{"blank name skipped", `[{'id': 1, 'name': ''}, {'id': 2, 'name': 'War'}]`, []string{"War"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseNames(tt.literal); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseNames(%q) = %q, want %q", tt.literal, got, tt.want)
			}
		})
	}
}

const moviesCSV = `id,title,overview,genres,vote_count,vote_average,popularity
862,Toy Story,"Led by Woody, Andy's toys live happily.","[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]",5415,7.7,21.9
1997-08-20,Broken Row,bad id,[],5000,5,1
8844,Jumanji,Siblings find a board game.,"[{'id': 12, 'name': 'Adventure'}]",2413,6.9,17.0
15602,Grumpier Old Men,Low votes.,"[{'id': 10749, 'name': 'Romance'}]",92,6.5,11.7
862,Toy Story Duplicate,dup,[],9999,1,1
949,Heat,,"[{'id': 28, 'name': 'Action'}]",1886,7.7,17.9
`

const keywordsCSV = `id,keywords
862,"[{'id': 931, 'name': 'jealousy'}, {'id': 4290, 'name': 'toy'}]"
8844,"[{'id': 10090, 'name': 'board game'}]"
8844,"[{'id': 1, 'name': 'second row'}]"
`

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	keywordsPath := filepath.Join(dir, "keywords.csv")
	if err := os.WriteFile(moviesPath, []byte(moviesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keywordsPath, []byte(keywordsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return moviesPath, keywordsPath
}

func TestLoadCSV(t *testing.T) {
	moviesPath, keywordsPath := writeFixtures(t)

	movies, err := LoadCSV(context.Background(), Options{
		MoviesCSV:   moviesPath,
		KeywordsCSV: keywordsPath,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	want := []movie.Movie{
		{
			ID: 862, Title: "Toy Story", Overview: "Led by Woody, Andy's toys live happily.",
			Genres: []string{"Animation", "Comedy"}, Keywords: []string{"jealousy", "toy"},
			VoteCount: 5415, VoteAverage: 7.7, Popularity: 21.9,
		},
		{
			ID: 8844, Title: "Jumanji", Overview: "Siblings find a board game.",
			Genres: []string{"Adventure"}, Keywords: []string{"board game"},
			VoteCount: 2413, VoteAverage: 6.9, Popularity: 17.0,
		},
		{
			ID: 949, Title: "Heat", Genres: []string{"Action"},
			VoteCount: 1886, VoteAverage: 7.7, Popularity: 17.9,
		},
	}
	if !reflect.DeepEqual(movies, want) {
		t.Errorf("LoadCSV() =\n%+v\nwant\n%+v", movies, want)
	}
}

func TestReader_Stats(t *testing.T) {
	moviesPath, keywordsPath := writeFixtures(t)
	r, err := NewReader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close() //nolint:errcheck // test cleanup

	records, stats, err := r.ReadMovies(context.Background(), moviesPath, keywordsPath, 50)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RowsRead != 6 {
		t.Errorf("RowsRead = %d, want 6", stats.RowsRead)
	}
	if stats.Kept != 4 || len(records) != 4 {
		t.Errorf("Kept = %d (%d records), want 4 with a lower vote threshold", stats.Kept, len(records))
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	moviesPath, keywordsPath := writeFixtures(t)
	ctx := context.Background()

	if _, err := LoadCSV(ctx, Options{MoviesCSV: moviesPath}, zerolog.Nop()); err == nil {
		t.Error("LoadCSV() without keywords path returned nil error")
	}
	if _, err := LoadCSV(ctx, Options{MoviesCSV: moviesPath + ".missing", KeywordsCSV: keywordsPath}, zerolog.Nop()); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want fs.ErrNotExist", err)
	}
	_, err := LoadCSV(ctx, Options{MoviesCSV: moviesPath, KeywordsCSV: keywordsPath, MinVotes: 1_000_000}, zerolog.Nop())
	if !errors.Is(err, ErrNoMovies) {
		t.Errorf("high threshold error = %v, want ErrNoMovies", err)
	}
}

func TestCatalogJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	movies := []movie.Movie{
		{ID: 1, Title: "A", Overview: "first", Genres: []string{"Drama"}, VoteCount: 1200, VoteAverage: 7},
		{ID: 2, Title: "B", Genres: []string{"Comedy", "Romance"}, Keywords: []string{"paris"}, VoteCount: 3000},
	}

	if err := SaveJSON(path, movies); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if !reflect.DeepEqual(got, movies) {
		t.Errorf("LoadJSON() = %+v, want %+v", got, movies)
	}

	if _, err := LoadJSON(path + ".missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing catalog error = %v, want fs.ErrNotExist", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"version": 99, "movies": [{"id": 1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJSON(bad); err == nil {
		t.Error("LoadJSON() accepted an unknown version")
	}
}

func TestLoad_PrefersCatalog(t *testing.T) {
	catalogPath := filepath.Join(t.TempDir(), "catalog.json")
	if err := SaveJSON(catalogPath, []movie.Movie{{ID: 7, Title: "Cached"}}); err != nil {
		t.Fatal(err)
	}

	movies, err := Load(context.Background(), Options{
		CatalogPath: catalogPath,
		MoviesCSV:   "does-not-exist.csv",
		KeywordsCSV: "does-not-exist.csv",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Cached" {
		t.Errorf("Load() = %+v, want the catalog contents", movies)
	}

	moviesPath, keywordsPath := writeFixtures(t)
	movies, err = Load(context.Background(), Options{
		CatalogPath: filepath.Join(t.TempDir(), "absent.json"),
		MoviesCSV:   moviesPath,
		KeywordsCSV: keywordsPath,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() CSV fallback error = %v", err)
	}
	if len(movies) != 3 {
		t.Errorf("Load() CSV fallback returned %d movies, want 3", len(movies))
	}
}
