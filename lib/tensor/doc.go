// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tensor implements a named-tensor binary container: a single
// file holding any number of dense float64 tensors addressed by stable
// string names. The decision engine persists its learned state through
// this package; tensors are matched by name on load, never by
// positional order, so snapshots survive parameter reordering.
//
// File layout (version 1):
//
//	[0:8)    magic: "OVRTUR" + version byte + reserved zero byte
//	[8:12)   uint32 little-endian: byte length of the CBOR index
//	[12:N)   index: CBOR (Core Deterministic Encoding), entries
//	         sorted by tensor name
//	[N:EOF)  payload: per-tensor compressed blobs in index order
//
// Each index entry records the tensor's shape, compression tag,
// compressed and raw byte sizes, and a keyed BLAKE3 digest of the raw
// (uncompressed) bytes. Digests are computed before compression so
// they remain stable if the compression policy changes. The writer
// probes zstd and byte-grouped LZ4 per tensor and keeps whichever is
// smaller, storing raw bytes when neither helps.
//
// Identical input always produces identical container bytes: names are
// sorted, the index uses deterministic CBOR, and both compressors are
// deterministic for a given input.
package tensor
