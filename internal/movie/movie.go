// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

// Package movie defines the normalized movie record and the immutable,
// ordered catalog the embedding and recommendation layers work against.
package movie

import "strings"

// Movie is one normalized catalog record. Records are immutable once the
// catalog has been built.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Genres      []string `json:"genres"`
	Keywords    []string `json:"keywords,omitempty"`
	VoteCount   float64  `json:"vote_count"`
	VoteAverage float64  `json:"vote_average"`
	Popularity  float64  `json:"popularity,omitempty"`
}

// EmbeddingText is the text fed to the embedding model: the overview
// followed by the genre names and the keyword names, space separated.
func (m *Movie) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(m.Overview))
	b.WriteByte(' ')
	b.WriteString(strings.Join(m.Genres, " "))
	b.WriteByte(' ')
	b.WriteString(strings.Join(m.Keywords, " "))
	return b.String()
}

// NormalizeGenre folds a genre label for set comparisons.
func NormalizeGenre(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}

// GenreSet returns the normalized, de-duplicated genre labels of m.
func (m *Movie) GenreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Genres))
	for _, g := range m.Genres {
		if n := NormalizeGenre(g); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
