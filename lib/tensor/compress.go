// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tensor

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm used for a
// tensor's payload blob. Tags are stored in container index entries;
// changing these values breaks container format compatibility.
type CompressionTag uint8

const (
	// CompressionNone indicates raw little-endian float64 bytes.
	// Used when neither codec produces output smaller than the
	// input (tiny tensors, high-entropy data).
	CompressionNone CompressionTag = 0

	// CompressionZstd indicates zstd at the default level. Tends to
	// win on long, structured payloads such as stacked history
	// matrices with repeated feature patterns.
	CompressionZstd CompressionTag = 1

	// CompressionBG8LZ4 indicates ByteGrouping8 + LZ4: the payload's
	// 8-byte words are transposed so that byte position k of every
	// float64 is grouped into plane k, then LZ4 block compression is
	// applied. Adjacent weights tend to share sign and exponent
	// bytes, so the high-order planes compress well.
	CompressionBG8LZ4 CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionBG8LZ4:
		return "bg8_lz4"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompression parses a compression tag from its string
// representation.
func ParseCompression(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "bg8_lz4":
		return CompressionBG8LZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// Compress compresses data using the specified algorithm. For
// CompressionNone, returns the input unchanged (no copy). Returns an
// incompressibility error (see IsIncompressible) when the compressed
// output would not be smaller than the input.
func Compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		return compressZstd(data)

	case CompressionBG8LZ4:
		return compressBG8LZ4(data)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress decompresses data that was compressed with the specified
// algorithm. The rawSize must match the original byte length exactly;
// a mismatch returns an error.
func Decompress(compressed []byte, tag CompressionTag, rawSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != rawSize {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d",
				len(compressed), rawSize)
		}
		return compressed, nil

	case CompressionZstd:
		return decompressZstd(compressed, rawSize)

	case CompressionBG8LZ4:
		return decompressBG8LZ4(compressed, rawSize)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// CompressAuto compresses data with both codecs and keeps the smaller
// result. Returns the original data with CompressionNone when neither
// codec shrinks it.
func CompressAuto(data []byte) ([]byte, CompressionTag, error) {
	best := data
	tag := CompressionNone

	zstdOut, err := compressZstd(data)
	switch {
	case err == nil:
		best = zstdOut
		tag = CompressionZstd
	case !IsIncompressible(err):
		return nil, 0, err
	}

	bg8Out, err := compressBG8LZ4(data)
	switch {
	case err == nil:
		if len(bg8Out) < len(best) {
			best = bg8Out
			tag = CompressionBG8LZ4
		}
	case !IsIncompressible(err):
		return nil, 0, err
	}

	return best, tag, nil
}

// Zstd: shared encoder and decoder, reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("tensor: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("tensor: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, rawSize int) ([]byte, error) {
	destination := make([]byte, 0, rawSize)
	result, err := zstdDecoder.DecodeAll(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != rawSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), rawSize)
	}
	return result, nil
}

// ByteGrouping8 + LZ4: transpose float64 data by byte position before
// LZ4 block compression.

func compressBG8LZ4(data []byte) ([]byte, error) {
	transposed := bg8Transpose(data)

	bound := lz4.CompressBlockBound(len(transposed))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(transposed, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible. Also reject output that is not actually
	// smaller than the input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}

	return destination[:written], nil
}

func decompressBG8LZ4(compressed []byte, rawSize int) ([]byte, error) {
	destination := make([]byte, rawSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != rawSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, rawSize)
	}
	return bg8Untranspose(destination), nil
}

// bg8Transpose rearranges data so that all byte-position-0 values come
// first, then all byte-position-1 values, etc., in groups of 8. If the
// input length is not a multiple of 8, trailing bytes are appended
// as-is after the transposed groups.
func bg8Transpose(data []byte) []byte {
	length := len(data)
	groupCount := length / 8
	remainder := length % 8

	output := make([]byte, length)

	for i := 0; i < groupCount; i++ {
		for k := 0; k < 8; k++ {
			output[groupCount*k+i] = data[i*8+k]
		}
	}

	for i := 0; i < remainder; i++ {
		output[groupCount*8+i] = data[groupCount*8+i]
	}

	return output
}

// bg8Untranspose reverses the bg8Transpose operation.
func bg8Untranspose(data []byte) []byte {
	length := len(data)
	groupCount := length / 8
	remainder := length % 8

	output := make([]byte, length)

	for i := 0; i < groupCount; i++ {
		for k := 0; k < 8; k++ {
			output[i*8+k] = data[groupCount*k+i]
		}
	}

	for i := 0; i < remainder; i++ {
		output[groupCount*8+i] = data[groupCount*8+i]
	}

	return output
}

// errIncompressible is returned by compression functions when the
// compressed output is not smaller than the input. The caller should
// fall back to CompressionNone.
var errIncompressible = fmt.Errorf("data is incompressible")

// IsIncompressible returns true if the error indicates that data
// could not be compressed smaller than its original size.
func IsIncompressible(err error) bool {
	return err == errIncompressible
}
