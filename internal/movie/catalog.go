// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package movie

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/moviebridge/internal/cache"
)

var (
	// ErrDuplicateMovie is returned when two records share an identifier.
	ErrDuplicateMovie = errors.New("duplicate movie id")

	// ErrEmptyCatalog is returned when a catalog is built from no records.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// Catalog is the ordered, immutable movie collection. Position i of the
// catalog is position i of the embedding matrix built from it.
type Catalog struct {
	movies   []Movie
	position map[int]int
	titles   *cache.Trie[int]
}

// NewCatalog copies records into a new catalog, preserving their order.
func NewCatalog(records []Movie) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		movies:   make([]Movie, len(records)),
		position: make(map[int]int, len(records)),
		titles:   cache.NewTrie[int](),
	}
	for i := range records {
		m := records[i]
		if _, dup := c.position[m.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateMovie, m.ID)
		}
		m.Genres = append([]string(nil), m.Genres...)
		m.Keywords = append([]string(nil), m.Keywords...)
		c.movies[i] = m
		c.position[m.ID] = i
		c.titles.Insert(m.Title, i)
	}
	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// At returns the movie at position i. It panics if i is out of range.
func (c *Catalog) At(i int) *Movie { return &c.movies[i] }

// Position returns the catalog position of id.
func (c *Catalog) Position(id int) (int, bool) {
	i, ok := c.position[id]
	return i, ok
}

// Get returns the movie with the given id.
func (c *Catalog) Get(id int) (*Movie, bool) {
	i, ok := c.position[id]
	if !ok {
		return nil, false
	}
	return &c.movies[i], true
}

// IDs returns the movie identifiers in catalog order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.movies))
	for i := range c.movies {
		ids[i] = c.movies[i].ID
	}
	return ids
}

// Texts returns the embedding text of every movie in catalog order.
func (c *Catalog) Texts() []string {
	texts := make([]string, len(c.movies))
	for i := range c.movies {
		texts[i] = c.movies[i].EmbeddingText()
	}
	return texts
}

// Search finds movies by title. Prefix matches come first, shortest title
// first; if fewer than limit are found, case-insensitive substring matches
// fill the rest in catalog order.
func (c *Catalog) Search(query string, limit int) []*Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	results := make([]*Movie, 0, limit)
	seen := make(map[int]struct{}, limit)
	for _, e := range c.titles.PrefixSearch(q, limit) {
		seen[e.Data] = struct{}{}
		results = append(results, &c.movies[e.Data])
	}

	for i := range c.movies {
		if len(results) >= limit {
			break
		}
		if _, ok := seen[i]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(c.movies[i].Title), q) {
			results = append(results, &c.movies[i])
		}
	}
	return results
}
