// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package vectorindex

import (
	"bufio"
	"container/heap"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/coder/hnsw"

	"github.com/tomtom215/moviebridge/internal/embedding"
)

// hnswEncodingVersion is the coder/hnsw export format this package reads.
const hnswEncodingVersion = 1

// HNSWConfig holds the graph parameters.
type HNSWConfig struct {
	// M is the number of links coder/hnsw keeps per node while building.
	// After the build every base-layer node is relinked to its 2*M best
	// neighbors. Default: 16.
	M int

	// EfSearch is the beam width of a query and of the relinking pass. A
	// query widens it to 2*k when k is larger. Default: 200.
	EfSearch int

	// Ml is the level generation factor. Default: 0.25.
	Ml float64

	// Seed fixes level generation. coder/hnsw still visits nodes in map
	// order while linking, so two builds of the same matrix can produce
	// different graphs; a single index always answers the same query the
	// same way. Default: 1.
	Seed int64
}

func (c HNSWConfig) withDefaults() HNSWConfig {
	if c.M <= 0 {
		c.M = 16
	}
	if c.EfSearch <= 0 {
		c.EfSearch = 200
	}
	if c.Ml <= 0 {
		c.Ml = 0.25
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}

// HNSWIndex is an approximate index. github.com/coder/hnsw builds the
// layered graph; queries run a best-first beam search over its links from a
// fixed entry node. Similarities are computed exactly, so HNSWIndex and
// FlatIndex agree on every score they both return and differ only in
// recall.
type HNSWIndex struct {
	matrix    *embedding.Matrix
	ids       []int
	efSearch  int
	maxDegree int

	// base[p] lists the base-layer links of row p. upper[l] holds layer
	// l+1, keyed by row.
	base  [][]int
	upper []map[int][]int
	entry int
}

// NewHNSWIndex inserts every row of matrix into a new graph.
func NewHNSWIndex(matrix *embedding.Matrix, ids []int, cfg HNSWConfig) (*HNSWIndex, error) {
	if _, err := positionMap(ids); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	idx := &HNSWIndex{
		matrix:    matrix,
		ids:       append([]int(nil), ids...),
		efSearch:  cfg.EfSearch,
		maxDegree: 2 * cfg.M,
	}
	if len(ids) == 0 {
		return idx, nil
	}

	// Graph keys are row positions so links map straight onto the matrix.
	g := hnsw.NewGraph[int]()
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = cfg.Ml
	g.Distance = hnsw.CosineDistance
	//nolint:gosec // level generation does not need a cryptographic source
	g.Rng = rand.New(rand.NewSource(cfg.Seed))

	nodes := make([]hnsw.Node[int], len(ids))
	for i := range ids {
		nodes[i] = hnsw.MakeNode(i, hnsw.Vector(matrix.Row(i)))
	}
	g.Add(nodes...)

	if err := idx.loadGraph(g); err != nil {
		return nil, fmt.Errorf("read hnsw graph: %w", err)
	}
	idx.relink()
	return idx, nil
}

// Kind returns "hnsw".
func (h *HNSWIndex) Kind() string { return KindHNSW }

// Len returns the number of indexed vectors.
func (h *HNSWIndex) Len() int { return len(h.ids) }

// Query returns up to k approximate nearest neighbors of vector.
func (h *HNSWIndex) Query(vector []float32, k int) ([]Neighbor, error) {
	if h.matrix == nil {
		return nil, ErrIndexNotBuilt
	}
	q, err := prepareQuery(vector, h.matrix.Dim())
	if err != nil {
		return nil, err
	}
	if k < 1 || len(h.ids) == 0 {
		return []Neighbor{}, nil
	}
	k = min(k, len(h.ids))

	ef := max(h.efSearch, 2*k)
	if ef >= len(h.ids) {
		return h.scan(q, k), nil
	}

	found := h.search(q, ef, newVisitSet(len(h.ids)))
	if len(found) < k {
		// Only a disconnected graph gets here.
		return h.scan(q, k), nil
	}
	out := make([]Neighbor, len(found))
	for i := range found {
		out[i] = found[i].Neighbor
	}
	sortNeighbors(out)
	return out[:k], nil
}

// scan answers a query exactly. It serves beams that would cover the whole
// index anyway.
func (h *HNSWIndex) scan(q []float32, k int) []Neighbor {
	out := make([]Neighbor, len(h.ids))
	for p := range h.ids {
		out[p] = h.score(q, p).Neighbor
	}
	sortNeighbors(out)
	return out[:k]
}

// search descends the upper layers greedily, then beam searches the base
// layer with width ef.
func (h *HNSWIndex) search(q []float32, ef int, visited *visitSet) []hit {
	ep := h.score(q, h.entry)
	for l := len(h.upper) - 1; l >= 0; l-- {
		for moved := true; moved; {
			moved = false
			for _, p := range h.upper[l][ep.pos] {
				if c := h.score(q, p); better(c.Neighbor, ep.Neighbor) {
					ep, moved = c, true
				}
			}
		}
	}
	return h.beam(q, ep, ef, visited)
}

func (h *HNSWIndex) beam(q []float32, ep hit, ef int, visited *visitSet) []hit {
	visited.add(ep.pos)
	candidates := &hitHeap{items: []hit{ep}}
	results := &hitHeap{items: []hit{ep}, worstOnTop: true}

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(hit)
		if results.Len() >= ef && better(results.items[0].Neighbor, c.Neighbor) {
			break
		}
		for _, p := range h.base[c.pos] {
			if !visited.add(p) {
				continue
			}
			n := h.score(q, p)
			if results.Len() < ef || better(n.Neighbor, results.items[0].Neighbor) {
				heap.Push(candidates, n)
				heap.Push(results, n)
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}
	return results.items
}

// relink fills each base-layer link list up to maxDegree with the nearest
// rows a beam search finds for the row itself. The links coder/hnsw chose
// are kept; they carry the long-range edges between clusters, but they are
// not always the nearest rows.
func (h *HNSWIndex) relink() {
	visited := newVisitSet(len(h.ids))
	for p := range h.base {
		visited.reset()
		found := h.search(h.matrix.Row(p), h.efSearch, visited)
		sort.Slice(found, func(i, j int) bool { return better(found[i].Neighbor, found[j].Neighbor) })

		linked := make(map[int]bool, h.maxDegree)
		links := make([]int, 0, h.maxDegree)
		for _, n := range h.base[p] {
			if n != p && !linked[n] {
				linked[n] = true
				links = append(links, n)
			}
		}
		for _, c := range found {
			if len(links) >= h.maxDegree {
				break
			}
			if c.pos != p && !linked[c.pos] {
				linked[c.pos] = true
				links = append(links, c.pos)
			}
		}
		h.base[p] = links
	}
}

func (h *HNSWIndex) score(q []float32, p int) hit {
	return hit{pos: p, Neighbor: Neighbor{MovieID: h.ids[p], Similarity: embedding.Dot(q, h.matrix.Row(p))}}
}

// loadGraph copies the links out of g through its Export stream. The
// entry node is the lowest row on the top layer.
func (h *HNSWIndex) loadGraph(g *hnsw.Graph[int]) error {
	pr, pw := io.Pipe()
	go func() { pw.CloseWithError(g.Export(pw)) }()
	defer pr.Close()

	layers, err := readGraphLayers(bufio.NewReader(pr), len(h.ids))
	if err != nil {
		return err
	}

	h.base = make([][]int, len(h.ids))
	for p, links := range layers[0] {
		h.base[p] = links
	}
	h.upper = layers[1:]

	h.entry = math.MaxInt
	for p := range layers[len(layers)-1] {
		h.entry = min(h.entry, p)
	}
	return nil
}

// readGraphLayers decodes the layer section of a coder/hnsw export. Node
// vectors are skipped; the matrix already holds them.
func readGraphLayers(r *bufio.Reader, count int) ([]map[int][]int, error) {
	version, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if version != hnswEncodingVersion {
		return nil, fmt.Errorf("unsupported encoding version %d", version)
	}
	// M, Ml, EfSearch, distance name.
	if _, err := readVarint(r); err != nil {
		return nil, err
	}
	var ml float64
	if err := binary.Read(r, binary.LittleEndian, &ml); err != nil {
		return nil, err
	}
	if _, err := readVarint(r); err != nil {
		return nil, err
	}
	nameLen, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Discard(nameLen); err != nil {
		return nil, err
	}

	nLayers, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	if nLayers < 1 {
		return nil, errors.New("graph has no layers")
	}

	layers := make([]map[int][]int, nLayers)
	for l := range layers {
		nNodes, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		layer := make(map[int][]int, nNodes)
		for j := 0; j < nNodes; j++ {
			key, err := readRow(r, count)
			if err != nil {
				return nil, fmt.Errorf("layer %d node %d: %w", l, j, err)
			}
			dim, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			if _, err := r.Discard(4 * dim); err != nil {
				return nil, err
			}
			nLinks, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			links := make([]int, nLinks)
			for i := range links {
				if links[i], err = readRow(r, count); err != nil {
					return nil, fmt.Errorf("layer %d node %d link %d: %w", l, key, i, err)
				}
			}
			sort.Ints(links)
			layer[key] = links
		}
		layers[l] = layer
	}

	if len(layers[0]) != count {
		return nil, fmt.Errorf("base layer has %d nodes, want %d", len(layers[0]), count)
	}
	return layers, nil
}

func readVarint(r io.ByteReader) (int, error) {
	v, err := binary.ReadVarint(r)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return int(v), nil
}

func readRow(r io.ByteReader, count int) (int, error) {
	p, err := readVarint(r)
	if err != nil {
		return 0, err
	}
	if p >= count {
		return 0, fmt.Errorf("row %d out of range", p)
	}
	return p, nil
}

// hit is a scored row.
type hit struct {
	pos int
	Neighbor
}

// hitHeap keeps the best hit on top, or the worst when worstOnTop is set.
type hitHeap struct {
	items      []hit
	worstOnTop bool
}

func (h *hitHeap) Len() int { return len(h.items) }
func (h *hitHeap) Less(i, j int) bool {
	if h.worstOnTop {
		return better(h.items[j].Neighbor, h.items[i].Neighbor)
	}
	return better(h.items[i].Neighbor, h.items[j].Neighbor)
}
func (h *hitHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *hitHeap) Push(x any)    { h.items = append(h.items, x.(hit)) }
func (h *hitHeap) Pop() any {
	n := len(h.items) - 1
	x := h.items[n]
	h.items = h.items[:n]
	return x
}

// visitSet marks rows seen by one search. reset is O(1).
type visitSet struct {
	marks []uint32
	epoch uint32
}

func newVisitSet(n int) *visitSet {
	return &visitSet{marks: make([]uint32, n), epoch: 1}
}

// add marks p and reports whether it was unmarked.
func (v *visitSet) add(p int) bool {
	if v.marks[p] == v.epoch {
		return false
	}
	v.marks[p] = v.epoch
	return true
}

func (v *visitSet) reset() {
	v.epoch++
	if v.epoch == 0 {
		clear(v.marks)
		v.epoch = 1
	}
}
