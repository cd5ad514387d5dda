// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package vectorindex

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/tomtom215/moviebridge/internal/embedding"
)

func randomMatrix(t *testing.T, n, dim int, seed int64) (*embedding.Matrix, []int) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float32, n)
	ids := make([]int, n)
	for i := range rows {
		rows[i] = make([]float32, dim)
		for j := range rows[i] {
			rows[i][j] = float32(rng.NormFloat64())
		}
		ids[i] = 10 * (i + 1)
	}
	m, err := embedding.NewMatrixFromRows(rows)
	if err != nil {
		t.Fatalf("NewMatrixFromRows() error = %v", err)
	}
	return m, ids
}

func bruteForce(m *embedding.Matrix, ids []int, q []float32, k int) []Neighbor {
	all := make([]Neighbor, m.Count())
	for i := range all {
		all[i] = Neighbor{MovieID: ids[i], Similarity: embedding.Dot(q, m.Row(i))}
	}
	sortNeighbors(all)
	if k < len(all) {
		all = all[:k]
	}
	return all
}

func TestFlatIndex_MatchesBruteForce(t *testing.T) {
	m, ids := randomMatrix(t, 300, 16, 7)
	idx, err := NewFlatIndex(m, ids)
	if err != nil {
		t.Fatal(err)
	}

	for _, row := range []int{0, 17, 299} {
		q := m.Row(row)
		got, err := idx.Query(q, 40)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		want := bruteForce(m, ids, q, 40)
		if len(got) != len(want) {
			t.Fatalf("Query() returned %d neighbors, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("row %d result %d = %+v, want %+v", row, i, got[i], want[i])
			}
		}
		if got[0].MovieID != ids[row] || math.Abs(got[0].Similarity-1) > 1e-5 {
			t.Errorf("self match = %+v, want id %d with similarity 1", got[0], ids[row])
		}
	}
}

func TestFlatIndex_EdgeCases(t *testing.T) {
	m, ids := randomMatrix(t, 5, 4, 3)
	idx, err := NewFlatIndex(m, ids)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("k larger than index", func(t *testing.T) {
		got, err := idx.Query(m.Row(0), 40)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 5 {
			t.Errorf("len = %d, want 5", len(got))
		}
	})

	t.Run("k zero", func(t *testing.T) {
		got, err := idx.Query(m.Row(0), 0)
		if err != nil || len(got) != 0 {
			t.Errorf("Query(k=0) = %v, %v", got, err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		if _, err := idx.Query([]float32{1, 0}, 3); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("unnormalized query", func(t *testing.T) {
		scaled := make([]float32, 4)
		for i, v := range m.Row(2) {
			scaled[i] = 3 * v
		}
		got, err := idx.Query(scaled, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].MovieID != ids[2] || math.Abs(got[0].Similarity-1) > 1e-5 {
			t.Errorf("top = %+v, want id %d at 1.0", got[0], ids[2])
		}
	})

	t.Run("zero query", func(t *testing.T) {
		if _, err := idx.Query(make([]float32, 4), 3); !errors.Is(err, embedding.ErrInvalidVector) {
			t.Errorf("error = %v, want ErrInvalidVector", err)
		}
	})
}

func TestFlatIndex_TieBreakByID(t *testing.T) {
	m, err := embedding.NewMatrixFromRows([][]float32{{1, 0}, {1, 0}, {1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := NewFlatIndex(m, []int{30, 10, 20, 5})
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.Query([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].MovieID != 10 || got[1].MovieID != 20 {
		t.Errorf("tied results = %+v, want ids 10 then 20", got)
	}
}

func TestNotBuilt(t *testing.T) {
	var flat FlatIndex
	if _, err := flat.Query([]float32{1}, 1); !errors.Is(err, ErrIndexNotBuilt) {
		t.Errorf("FlatIndex zero value error = %v, want ErrIndexNotBuilt", err)
	}
	var h HNSWIndex
	if _, err := h.Query([]float32{1}, 1); !errors.Is(err, ErrIndexNotBuilt) {
		t.Errorf("HNSWIndex zero value error = %v, want ErrIndexNotBuilt", err)
	}
	if flat.Len() != 0 || h.Len() != 0 {
		t.Error("zero value index reports a non-zero length")
	}
}

func TestBuild(t *testing.T) {
	m, ids := randomMatrix(t, 50, 8, 11)

	tests := []struct {
		name     string
		opts     Options
		wantKind string
		wantErr  error
	}{
		{"default is auto flat", Options{}, KindFlat, nil},
		{"auto above threshold", Options{Kind: KindAuto, HNSWThreshold: 10}, KindHNSW, nil},
		{"explicit hnsw", Options{Kind: KindHNSW}, KindHNSW, nil},
		{"explicit flat", Options{Kind: KindFlat}, KindFlat, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Build(m, ids, tt.opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if idx.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", idx.Kind(), tt.wantKind)
			}
			if idx.Len() != 50 {
				t.Errorf("Len() = %d, want 50", idx.Len())
			}
		})
	}

	if _, err := Build(m, ids[:10], Options{}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short id mapping error = %v, want ErrDimensionMismatch", err)
	}
	dup := append([]int(nil), ids...)
	dup[3] = dup[4]
	if _, err := Build(m, dup, Options{}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id error = %v, want ErrDuplicateID", err)
	}
	if _, err := Build(m, ids, Options{Kind: "faiss"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func clusteredMatrix(t *testing.T, n, dim, clusters int, seed int64) (*embedding.Matrix, []int) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = make([]float64, dim)
		for j := range centers[c] {
			centers[c][j] = rng.NormFloat64()
		}
	}
	rows := make([][]float32, n)
	ids := make([]int, n)
	for i := range rows {
		center := centers[rng.Intn(clusters)]
		rows[i] = make([]float32, dim)
		for j := range rows[i] {
			rows[i][j] = float32(center[j] + 0.8*rng.NormFloat64())
		}
		ids[i] = 7 * (i + 1)
	}
	m, err := embedding.NewMatrixFromRows(rows)
	if err != nil {
		t.Fatalf("NewMatrixFromRows() error = %v", err)
	}
	return m, ids
}

func TestHNSWIndex_RecallAndScores(t *testing.T) {
	const k = 40

	tests := []struct {
		name      string
		matrix    func(t *testing.T) (*embedding.Matrix, []int)
		step      int
		minRecall float64
	}{
		{"random 600x24", func(t *testing.T) (*embedding.Matrix, []int) { return randomMatrix(t, 600, 24, 99) }, 37, 0.9},
		{"random 2000x128", func(t *testing.T) (*embedding.Matrix, []int) { return randomMatrix(t, 2000, 128, 7) }, 97, 0.9},
		{"clustered 3000x32", func(t *testing.T) (*embedding.Matrix, []int) { return clusteredMatrix(t, 3000, 32, 25, 3) }, 131, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ids := tt.matrix(t)
			flat, err := NewFlatIndex(m, ids)
			if err != nil {
				t.Fatal(err)
			}
			approx, err := NewHNSWIndex(m, ids, HNSWConfig{})
			if err != nil {
				t.Fatal(err)
			}

			var hits, total int
			for row := 0; row < m.Count(); row += tt.step {
				exact, _ := flat.Query(m.Row(row), k)
				got, err := approx.Query(m.Row(row), k)
				if err != nil {
					t.Fatalf("Query() error = %v", err)
				}
				if len(got) != k {
					t.Fatalf("row %d: len = %d, want %d", row, len(got), k)
				}
				if !sort.SliceIsSorted(got, func(i, j int) bool { return better(got[i], got[j]) }) {
					t.Errorf("row %d results are not ordered", row)
				}

				exactScore := make(map[int]float64, k)
				for _, n := range exact {
					exactScore[n.MovieID] = n.Similarity
				}
				for _, n := range got {
					if s, ok := exactScore[n.MovieID]; ok {
						hits++
						if s != n.Similarity {
							t.Errorf("id %d scored %v by hnsw, %v by flat", n.MovieID, n.Similarity, s)
						}
					}
				}
				total += len(exact)
			}

			if recall := float64(hits) / float64(total); recall < tt.minRecall {
				t.Errorf("recall@%d = %.3f, want >= %.2f", k, recall, tt.minRecall)
			}
		})
	}
}

func TestHNSWIndex_GraphShape(t *testing.T) {
	m, ids := randomMatrix(t, 300, 16, 21)
	idx, err := NewHNSWIndex(m, ids, HNSWConfig{M: 8})
	if err != nil {
		t.Fatal(err)
	}

	if len(idx.base) != 300 {
		t.Fatalf("base layer has %d nodes, want 300", len(idx.base))
	}
	for p, links := range idx.base {
		if len(links) == 0 || len(links) > 16 {
			t.Errorf("row %d has %d links, want 1..16", p, len(links))
		}
		for _, n := range links {
			if n == p {
				t.Errorf("row %d links to itself", p)
			}
		}
	}
	if len(idx.upper) > 0 {
		if _, ok := idx.upper[len(idx.upper)-1][idx.entry]; !ok {
			t.Errorf("entry row %d is not on the top layer", idx.entry)
		}
	}
}

func TestReadGraphLayers_Errors(t *testing.T) {
	varints := func(vs ...int64) []byte {
		var out []byte
		for _, v := range vs {
			out = binary.AppendVarint(out, v)
		}
		return out
	}
	header := func(version int64) []byte {
		b := varints(version, 16)
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(0.25))
		b = append(b, varints(200, 6)...)
		return append(b, "cosine"...)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"unknown version", header(2)},
		{"no layers", append(header(1), varints(0)...)},
		{"truncated layer", append(header(1), varints(1, 2)...)},
		// one layer, one node keyed 5 with an empty vector and no links
		{"row out of range", append(header(1), varints(1, 1, 5, 0, 0)...)},
		// one layer holding row 0 only
		{"missing rows", append(header(1), varints(1, 1, 0, 0, 0)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readGraphLayers(bufio.NewReader(bytes.NewReader(tt.input)), 2); err == nil {
				t.Error("readGraphLayers() error = nil")
			}
		})
	}

	ok := append(header(1), varints(1, 2, 0, 0, 1, 1, 1, 0, 1, 0)...)
	layers, err := readGraphLayers(bufio.NewReader(bytes.NewReader(ok)), 2)
	if err != nil {
		t.Fatalf("readGraphLayers() error = %v", err)
	}
	if len(layers) != 1 || len(layers[0][0]) != 1 || layers[0][1][0] != 0 {
		t.Errorf("layers = %v", layers)
	}
}

func TestHNSWIndex_SmallAndWideQueries(t *testing.T) {
	m, ids := randomMatrix(t, 8, 4, 5)
	idx, err := NewHNSWIndex(m, ids, HNSWConfig{EfSearch: 4})
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.Query(m.Row(1), 40)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8 {
		t.Errorf("len = %d, want all 8 items", len(got))
	}
	want := bruteForce(m, ids, m.Row(1), 40)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wide query result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIndex_ConcurrentQueries(t *testing.T) {
	m, ids := randomMatrix(t, 200, 16, 21)
	for _, kind := range []string{KindFlat, KindHNSW} {
		idx, err := Build(m, ids, Options{Kind: kind})
		if err != nil {
			t.Fatal(err)
		}
		reference, _ := idx.Query(m.Row(3), 10)

		var wg sync.WaitGroup
		errs := make(chan string, 16)
		for g := 0; g < 16; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := idx.Query(m.Row(3), 10)
				if err != nil || len(got) != len(reference) {
					errs <- "query failed"
					return
				}
				for i := range got {
					if got[i] != reference[i] {
						errs <- "non-deterministic result"
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for e := range errs {
			t.Errorf("%s index: %s", kind, e)
		}
	}
}
