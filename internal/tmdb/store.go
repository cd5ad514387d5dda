// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package tmdb

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefix for poster entries in BadgerDB.
const posterKeyPrefix = "poster:"

// posterEntry is one cached lookup. Found is false for movies TMDB has no
// poster for, so they are not asked for again until the entry expires.
type posterEntry struct {
	URL       string    `json:"url,omitempty"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PosterStore persists poster lookups in BadgerDB with per-entry TTLs.
type PosterStore struct {
	db *badger.DB
}

// OpenPosterStore opens (or creates) the store at path. An empty path
// keeps the store in memory.
func OpenPosterStore(path string) (*PosterStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for poster cache: %w", err)
	}
	return &PosterStore{db: db}, nil
}

// Close closes the underlying database.
func (s *PosterStore) Close() error {
	return s.db.Close()
}

func posterKey(movieID int) []byte {
	return []byte(posterKeyPrefix + strconv.Itoa(movieID))
}

// get returns the cached entry for movieID. ok is false when nothing is
// cached or the entry has expired.
func (s *PosterStore) get(movieID int) (entry posterEntry, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(posterKey(movieID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get poster entry: %w", err)
		}
		ok = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return posterEntry{}, false, err
	}
	return entry, ok, nil
}

// put stores entry for ttl.
func (s *PosterStore) put(movieID int, entry posterEntry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal poster entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(posterKey(movieID), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// RunGC reclaims value log space left by expired entries. It rewrites
// files until badger reports nothing left to collect.
func (s *PosterStore) RunGC(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected),
			errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("poster cache gc: %w", err)
		}
	}
}
