// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package cache

import (
	"sort"
	"strings"
	"sync"
)

type trieNode[T any] struct {
	children map[rune]*trieNode[T]
	entries  []TrieEntry[T]
}

// TrieEntry is one stored key with its payload. Several entries may share
// a key (two movies can have the same title).
type TrieEntry[T any] struct {
	Key  string
	Data T
}

// Trie is a case-insensitive prefix tree. Lookups are O(m) in the prefix
// length plus the size of the matching subtree.
type Trie[T any] struct {
	mu   sync.RWMutex
	root *trieNode[T]
	size int
}

// NewTrie creates an empty trie.
func NewTrie[T any]() *Trie[T] {
	return &Trie[T]{root: newTrieNode[T]()}
}

func newTrieNode[T any]() *trieNode[T] {
	return &trieNode[T]{children: make(map[rune]*trieNode[T])}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Insert stores data under key. Empty keys are ignored.
func (t *Trie[T]) Insert(key string, data T) {
	norm := normalizeKey(key)
	if norm == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, ch := range norm {
		next := node.children[ch]
		if next == nil {
			next = newTrieNode[T]()
			node.children[ch] = next
		}
		node = next
	}
	node.entries = append(node.entries, TrieEntry[T]{Key: key, Data: data})
	t.size++
}

// Lookup returns the entries stored under exactly key.
func (t *Trie[T]) Lookup(key string) []TrieEntry[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(normalizeKey(key))
	if node == nil {
		return nil
	}
	return append([]TrieEntry[T](nil), node.entries...)
}

// PrefixSearch returns up to limit entries whose key starts with prefix,
// shortest keys first, then alphabetically. limit <= 0 means no limit.
func (t *Trie[T]) PrefixSearch(prefix string, limit int) []TrieEntry[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	norm := normalizeKey(prefix)
	if norm == "" {
		return nil
	}
	node := t.find(norm)
	if node == nil {
		return nil
	}

	var results []TrieEntry[T]
	collect(node, &results)

	sort.SliceStable(results, func(i, j int) bool {
		ki, kj := strings.ToLower(results[i].Key), strings.ToLower(results[j].Key)
		if len(ki) != len(kj) {
			return len(ki) < len(kj)
		}
		return ki < kj
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Size returns the number of stored entries.
func (t *Trie[T]) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

func (t *Trie[T]) find(norm string) *trieNode[T] {
	node := t.root
	for _, ch := range norm {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}
	return node
}

func collect[T any](node *trieNode[T], results *[]TrieEntry[T]) {
	*results = append(*results, node.entries...)
	for _, child := range node.children {
		collect(child, results)
	}
}
