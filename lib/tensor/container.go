// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tensor

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Container format constants.
const (
	// containerVersion is the format version byte embedded in the
	// magic. Version 1 is the initial format.
	containerVersion = 1

	// containerHeaderSize is the fixed header: 8-byte magic + 4-byte
	// index length.
	containerHeaderSize = 12

	// maxIndexSize bounds the CBOR index. A snapshot holds a handful
	// of tensors; an index beyond this is corrupt or hostile.
	maxIndexSize = 1 << 20
)

// containerMagic is the 8-byte container file signature.
var containerMagic = [8]byte{'O', 'V', 'R', 'T', 'U', 'R', containerVersion, 0}

// encMode is the CBOR encoder for the container index, configured
// with Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Same logical
// index always produces identical bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder for the container index. Unknown fields
// are ignored for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("tensor: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("tensor: CBOR decoder initialization failed: " + err.Error())
	}
}

// IndexEntry describes a single tensor within a container.
type IndexEntry struct {
	// Name is the tensor's stable identifier. Load matches tensors
	// by name, never by position.
	Name string `cbor:"name"`

	// Shape holds the tensor's dimensions, row-major.
	Shape []int `cbor:"shape"`

	// Compression is the algorithm used for this tensor's payload.
	Compression CompressionTag `cbor:"compression"`

	// CompressedSize is the byte length of the payload blob stored
	// in the container.
	CompressedSize uint64 `cbor:"compressed_size"`

	// RawSize is the byte length before compression: exactly 8 bytes
	// per element.
	RawSize uint64 `cbor:"raw_size"`

	// Digest is the tensor-domain BLAKE3 keyed digest of the raw
	// (uncompressed) bytes.
	Digest Digest `cbor:"digest"`
}

// Index is the parsed container index. Entries are sorted by name and
// payload blobs follow in entry order.
type Index struct {
	Tensors []IndexEntry `cbor:"tensors"`
}

// PayloadSize returns the total compressed payload size in bytes.
func (ix *Index) PayloadSize() int64 {
	var total int64
	for _, entry := range ix.Tensors {
		total += int64(entry.CompressedSize)
	}
	return total
}

// Write writes the named tensors to w as a container. Tensor names
// must be non-empty and every tensor must validate; the write is
// rejected otherwise. Output is deterministic for identical input.
func Write(w io.Writer, tensors map[string]Tensor) error {
	if len(tensors) == 0 {
		return fmt.Errorf("cannot write empty tensor container")
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if name == "" {
			return fmt.Errorf("tensor name is empty")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]IndexEntry, 0, len(names))
	blobs := make([][]byte, 0, len(names))
	for _, name := range names {
		t := tensors[name]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}

		raw := rawBytes(t.Data)
		compressed, tag, err := CompressAuto(raw)
		if err != nil {
			return fmt.Errorf("compressing tensor %q: %w", name, err)
		}

		entries = append(entries, IndexEntry{
			Name:           name,
			Shape:          t.Shape,
			Compression:    tag,
			CompressedSize: uint64(len(compressed)),
			RawSize:        uint64(len(raw)),
			Digest:         hashRaw(raw),
		})
		blobs = append(blobs, compressed)
	}

	indexBytes, err := encMode.Marshal(Index{Tensors: entries})
	if err != nil {
		return fmt.Errorf("encoding container index: %w", err)
	}
	if len(indexBytes) > maxIndexSize {
		return fmt.Errorf("container index is %d bytes, limit %d", len(indexBytes), maxIndexSize)
	}

	if _, err := w.Write(containerMagic[:]); err != nil {
		return fmt.Errorf("writing container magic: %w", err)
	}

	var lengthBytes [4]byte
	binary.LittleEndian.PutUint32(lengthBytes[:], uint32(len(indexBytes)))
	if _, err := w.Write(lengthBytes[:]); err != nil {
		return fmt.Errorf("writing index length: %w", err)
	}

	if _, err := w.Write(indexBytes); err != nil {
		return fmt.Errorf("writing container index: %w", err)
	}

	for i, blob := range blobs {
		if _, err := w.Write(blob); err != nil {
			return fmt.Errorf("writing tensor %q payload: %w", entries[i].Name, err)
		}
	}

	return nil
}

// ReadIndex reads and validates the container header and index from
// r. After this call, the reader is positioned at the start of the
// payload; tensor blobs follow in index entry order.
func ReadIndex(r io.Reader) (*Index, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("reading container magic: %w", err)
	}
	if magic != containerMagic {
		if [6]byte(magic[:6]) == [6]byte(containerMagic[:6]) {
			return nil, fmt.Errorf("tensor container version %d is not supported (this code supports version %d)",
				magic[6], containerVersion)
		}
		return nil, fmt.Errorf("not a tensor container (invalid magic bytes)")
	}

	var lengthBytes [4]byte
	if _, err := io.ReadFull(r, lengthBytes[:]); err != nil {
		return nil, fmt.Errorf("reading index length: %w", err)
	}
	indexLength := binary.LittleEndian.Uint32(lengthBytes[:])
	if indexLength == 0 {
		return nil, fmt.Errorf("container index is empty")
	}
	if indexLength > maxIndexSize {
		return nil, fmt.Errorf("container index is %d bytes, limit %d", indexLength, maxIndexSize)
	}

	indexBytes := make([]byte, indexLength)
	if _, err := io.ReadFull(r, indexBytes); err != nil {
		return nil, fmt.Errorf("reading container index (%d bytes): %w", indexLength, err)
	}

	var index Index
	if err := decMode.Unmarshal(indexBytes, &index); err != nil {
		return nil, fmt.Errorf("decoding container index: %w", err)
	}
	if len(index.Tensors) == 0 {
		return nil, fmt.Errorf("container has no tensors")
	}

	for i, entry := range index.Tensors {
		if entry.Name == "" {
			return nil, fmt.Errorf("index entry %d has an empty tensor name", i)
		}
		if i > 0 {
			previous := index.Tensors[i-1].Name
			if entry.Name == previous {
				return nil, fmt.Errorf("duplicate tensor name %q in index", entry.Name)
			}
			if entry.Name < previous {
				return nil, fmt.Errorf("index entries not sorted by name: %q after %q", entry.Name, previous)
			}
		}

		elements, err := checkedNumElements(entry.Shape)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", entry.Name, err)
		}
		if entry.RawSize != uint64(elements)*8 {
			return nil, fmt.Errorf("tensor %q raw size %d does not match shape %v (%d elements)",
				entry.Name, entry.RawSize, entry.Shape, elements)
		}

		switch entry.Compression {
		case CompressionNone:
			if entry.CompressedSize != entry.RawSize {
				return nil, fmt.Errorf("tensor %q is uncompressed but payload size %d differs from raw size %d",
					entry.Name, entry.CompressedSize, entry.RawSize)
			}
		case CompressionZstd, CompressionBG8LZ4:
			if entry.CompressedSize == 0 || entry.CompressedSize >= entry.RawSize {
				return nil, fmt.Errorf("tensor %q has implausible compressed size %d for raw size %d",
					entry.Name, entry.CompressedSize, entry.RawSize)
			}
		default:
			return nil, fmt.Errorf("tensor %q has unsupported compression tag %d", entry.Name, entry.Compression)
		}
	}

	return &index, nil
}

// Read reads an entire container from r: header, index, and every
// tensor payload in order, decompressing and verifying each tensor's
// digest. Returns the tensors keyed by name.
func Read(r io.Reader) (map[string]Tensor, error) {
	index, err := ReadIndex(r)
	if err != nil {
		return nil, err
	}

	tensors := make(map[string]Tensor, len(index.Tensors))
	for _, entry := range index.Tensors {
		compressed := make([]byte, entry.CompressedSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("reading tensor %q payload (%d bytes): %w",
				entry.Name, entry.CompressedSize, err)
		}

		raw, err := Decompress(compressed, entry.Compression, int(entry.RawSize))
		if err != nil {
			return nil, fmt.Errorf("decompressing tensor %q: %w", entry.Name, err)
		}

		if actual := hashRaw(raw); actual != entry.Digest {
			return nil, fmt.Errorf("tensor %q digest mismatch: expected %s, got %s",
				entry.Name, entry.Digest, actual)
		}

		values, err := fromRawBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding tensor %q: %w", entry.Name, err)
		}
		tensors[entry.Name] = Tensor{Shape: entry.Shape, Data: values}
	}

	return tensors, nil
}

// WriteFile writes the named tensors to path as a container, via a
// temp file and atomic rename. An existing file at path is fully
// replaced; a failed write never leaves a partial container behind.
func WriteFile(path string, tensors map[string]Tensor) error {
	directory := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(directory, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp container file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := Write(tmpFile, tensors); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp container file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming container to %s: %w", path, err)
	}

	success = true
	return nil
}

// ReadFile reads an entire container from the file at path.
func ReadFile(path string) (map[string]Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tensor container: %w", err)
	}
	defer file.Close()
	return Read(file)
}
