// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tensor

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest of a tensor's raw (uncompressed)
// bytes.
type Digest [32]byte

// tensorDomainKey is the 32-byte key for BLAKE3 keyed hashing. Keyed
// mode separates these digests from any other BLAKE3 use of the same
// bytes. The key value is the ASCII encoding of the domain name,
// zero-padded to 32 bytes: readable in hex dumps without sacrificing
// any cryptographic property (keyed mode treats the key as an opaque
// 32-byte value).
var tensorDomainKey = [32]byte{
	'o', 'v', 'e', 'r', 't', 'u', 'r', 'e', '.', 't', 'e', 'n', 's', 'o', 'r',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// hashRaw computes the tensor-domain BLAKE3 keyed digest of raw tensor
// bytes. Digests are always computed on uncompressed bytes so they
// stay stable across compression policy changes.
func hashRaw(data []byte) Digest {
	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees; the error path is unreachable.
	hasher, err := blake3.NewKeyed(tensorDomainKey[:])
	if err != nil {
		panic("tensor: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the hex-encoded digest, the canonical format for
// logs and CLI output.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
