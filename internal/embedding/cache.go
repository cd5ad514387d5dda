// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/google/renameio"
)

// Cache file layout, all integers little-endian:
//
//	magic       [4]byte  "MBEM"
//	version     uint16
//	dim         uint32
//	count       uint32
//	fingerprint uint64
//	payload     count*dim float32 (IEEE-754 bits)
//	checksum    uint64   xxhash64 of payload
const (
	cacheMagic      = "MBEM"
	cacheVersion    = uint16(1)
	cacheHeaderSize = 4 + 2 + 4 + 4 + 8
	cacheTrailer    = 8
)

var (
	// ErrCacheMiss is returned when no cache file exists for a fingerprint.
	ErrCacheMiss = errors.New("embedding cache miss")

	// ErrCacheCorrupt is returned when a cache file exists but cannot be trusted.
	ErrCacheCorrupt = errors.New("embedding cache corrupt")
)

// Cache persists embedding matrices in a directory, one file per fingerprint.
// Writes go to a temporary file that is renamed into place, so readers never
// observe a partially written matrix.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir. The directory is created lazily.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the file a matrix with fingerprint fp is stored in.
func (c *Cache) Path(fp Fingerprint) string {
	return filepath.Join(c.dir, "embeddings-"+fp.String()+".bin")
}

// Load reads the matrix stored for fp. The stored dimension must equal dim.
func (c *Cache) Load(fp Fingerprint, dim int) (*Matrix, error) {
	raw, err := os.ReadFile(c.Path(fp))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}
	return decodeMatrix(raw, fp, dim)
}

// Save writes m under fp, atomically replacing any previous file.
func (c *Cache) Save(fp Fingerprint, m *Matrix) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create embedding cache directory: %w", err)
	}

	pending, err := renameio.TempFile(c.dir, c.Path(fp))
	if err != nil {
		return fmt.Errorf("create temporary cache file: %w", err)
	}
	//nolint:errcheck // Cleanup is a no-op after a successful replace
	defer pending.Cleanup()

	w := bufio.NewWriterSize(pending, 1<<20)
	if err := encodeMatrix(w, fp, m); err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush embedding cache: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace embedding cache: %w", err)
	}
	return nil
}

func encodeMatrix(w *bufio.Writer, fp Fingerprint, m *Matrix) error {
	header := make([]byte, cacheHeaderSize)
	copy(header[0:4], cacheMagic)
	binary.LittleEndian.PutUint16(header[4:6], cacheVersion)
	binary.LittleEndian.PutUint32(header[6:10], uint32(m.dim))
	binary.LittleEndian.PutUint32(header[10:14], uint32(m.count))
	binary.LittleEndian.PutUint64(header[14:22], uint64(fp))
	if _, err := w.Write(header); err != nil {
		return err
	}

	sum := xxhash.New()
	var buf [4]byte
	for _, v := range m.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
		_, _ = sum.Write(buf[:])
	}

	var trailer [cacheTrailer]byte
	binary.LittleEndian.PutUint64(trailer[:], sum.Sum64())
	_, err := w.Write(trailer[:])
	return err
}

func decodeMatrix(raw []byte, fp Fingerprint, dim int) (*Matrix, error) {
	if len(raw) < cacheHeaderSize+cacheTrailer {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrCacheCorrupt, len(raw))
	}
	if string(raw[0:4]) != cacheMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCacheCorrupt)
	}
	if v := binary.LittleEndian.Uint16(raw[4:6]); v != cacheVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCacheCorrupt, v)
	}

	storedDim := int(binary.LittleEndian.Uint32(raw[6:10]))
	count := int(binary.LittleEndian.Uint32(raw[10:14]))
	storedFP := Fingerprint(binary.LittleEndian.Uint64(raw[14:22]))

	if storedFP != fp {
		return nil, fmt.Errorf("%w: fingerprint %s, want %s", ErrCacheCorrupt, storedFP, fp)
	}
	if storedDim != dim {
		return nil, fmt.Errorf("%w: dimension %d, want %d", ErrCacheCorrupt, storedDim, dim)
	}

	payloadLen := count * storedDim * 4
	if len(raw) != cacheHeaderSize+payloadLen+cacheTrailer {
		return nil, fmt.Errorf("%w: size %d does not match %dx%d matrix", ErrCacheCorrupt, len(raw), count, storedDim)
	}

	payload := raw[cacheHeaderSize : cacheHeaderSize+payloadLen]
	want := binary.LittleEndian.Uint64(raw[cacheHeaderSize+payloadLen:])
	if got := xxhash.Sum64(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCacheCorrupt)
	}

	m := newMatrix(count, storedDim)
	for i := range m.data {
		m.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return m, nil
}
