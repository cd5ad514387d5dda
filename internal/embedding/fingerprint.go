// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package embedding

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a dataset version together with the embedder that
// produced its matrix. Any change to a record's id, its text, the record
// order, the model name or the dimension yields a different fingerprint.
type Fingerprint uint64

// String returns the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// ComputeFingerprint hashes the embedder identity and the ordered records.
// Every variable-length field is length-prefixed so that adjacent fields
// cannot run into each other.
func ComputeFingerprint(model string, dim int, ids []int, texts []string) Fingerprint {
	d := xxhash.New()
	var buf [8]byte

	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeUint(uint64(len(s)))
		_, _ = d.WriteString(s)
	}

	writeString(model)
	writeUint(uint64(dim))
	writeUint(uint64(len(ids)))
	for i, id := range ids {
		writeUint(uint64(int64(id)))
		if i < len(texts) {
			writeString(texts[i])
		}
	}
	return Fingerprint(d.Sum64())
}
