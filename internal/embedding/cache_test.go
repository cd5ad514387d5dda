// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package embedding

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sampleMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrixFromRows([][]float32{
		{0.1, 0.2, 0.3},
		{-1, 0, 1e-7},
		{3, 4, 0},
	})
	if err != nil {
		t.Fatalf("NewMatrixFromRows() error = %v", err)
	}
	return m
}

func TestCache_RoundTripIsBitExact(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "nested", "cache"))
	m := sampleMatrix(t)
	fp := Fingerprint(0xfeedface)

	if err := c.Save(fp, m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := c.Load(fp, m.Dim())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertBitIdentical(t, m, loaded)

	// Re-saving a loaded matrix must reproduce the same file.
	before, _ := os.ReadFile(c.Path(fp))
	if err := c.Save(fp, loaded); err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(c.Path(fp))
	if !bytes.Equal(before, after) {
		t.Error("re-saved cache file differs from the original")
	}

	entries, err := os.ReadDir(filepath.Dir(c.Path(fp)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache directory holds %d files, want 1 (temporary files left behind?)", len(entries))
	}
}

func TestCache_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)
	m := sampleMatrix(t)
	fp := Fingerprint(42)
	if err := c.Save(fp, m); err != nil {
		t.Fatal(err)
	}
	good, err := os.ReadFile(c.Path(fp))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		corrupt func([]byte) []byte
		dim     int
		want    error
	}{
		{"truncated", func(b []byte) []byte { return b[:len(b)-3] }, 3, ErrCacheCorrupt},
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }, 3, ErrCacheCorrupt},
		{"flipped payload bit", func(b []byte) []byte { b[cacheHeaderSize+1] ^= 1; return b }, 3, ErrCacheCorrupt},
		{"dimension mismatch", func(b []byte) []byte { return b }, 768, ErrCacheCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.corrupt(append([]byte(nil), good...))
			if err := os.WriteFile(c.Path(fp), raw, 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := c.Load(fp, tt.dim); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := c.Load(Fingerprint(7), 3); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Load(unknown) error = %v, want ErrCacheMiss", err)
	}
}

func TestCache_FingerprintMismatchIsCorrupt(t *testing.T) {
	c := NewCache(t.TempDir())
	m := sampleMatrix(t)
	if err := c.Save(Fingerprint(1), m); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(c.Path(Fingerprint(1)), c.Path(Fingerprint(2))); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(Fingerprint(2), 3); !errors.Is(err, ErrCacheCorrupt) {
		t.Errorf("Load() error = %v, want ErrCacheCorrupt", err)
	}
}

func TestComputeFingerprint(t *testing.T) {
	base := ComputeFingerprint("model", 768, []int{1, 2}, []string{"a", "b"})

	tests := []struct {
		name  string
		fp    Fingerprint
		equal bool
	}{
		{"identical input", ComputeFingerprint("model", 768, []int{1, 2}, []string{"a", "b"}), true},
		{"other model", ComputeFingerprint("other", 768, []int{1, 2}, []string{"a", "b"}), false},
		{"other dim", ComputeFingerprint("model", 384, []int{1, 2}, []string{"a", "b"}), false},
		{"changed text", ComputeFingerprint("model", 768, []int{1, 2}, []string{"a", "c"}), false},
		{"reordered", ComputeFingerprint("model", 768, []int{2, 1}, []string{"b", "a"}), false},
		{"shifted boundary", ComputeFingerprint("model", 768, []int{1, 2}, []string{"ab", ""}), false},
		{"extra record", ComputeFingerprint("model", 768, []int{1, 2, 3}, []string{"a", "b", ""}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fp == base; got != tt.equal {
				t.Errorf("fingerprint %s == %s is %v, want %v", tt.fp, base, got, tt.equal)
			}
		})
	}

	if len(base.String()) != 16 {
		t.Errorf("String() = %q, want 16 hex digits", base.String())
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	if !Normalize(v) {
		t.Fatal("Normalize() = false for a valid vector")
	}
	if math.Abs(float64(v[0])-0.6) > 1e-7 || math.Abs(float64(v[1])-0.8) > 1e-7 {
		t.Errorf("Normalize() = %v, want [0.6 0.8]", v)
	}

	zero := []float32{0, 0}
	if Normalize(zero) {
		t.Error("Normalize(zero) = true, want false")
	}
	inf := []float32{float32(math.Inf(1)), 0}
	if Normalize(inf) {
		t.Error("Normalize(inf) = true, want false")
	}
}

func TestNewMatrixFromRows(t *testing.T) {
	if _, err := NewMatrixFromRows([][]float32{{1, 0}, {1}}); err == nil {
		t.Error("ragged rows accepted")
	}
	if _, err := NewMatrixFromRows([][]float32{{0, 0}}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("zero row error = %v, want ErrInvalidVector", err)
	}

	m := sampleMatrix(t)
	row := m.Row(2)
	if math.Abs(float64(row[0])-0.6) > 1e-7 {
		t.Errorf("Row(2)[0] = %v, want 0.6", row[0])
	}
	if cap(row) != m.Dim() {
		t.Errorf("Row capacity = %d, want %d", cap(row), m.Dim())
	}
}
