// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tensor is a dense float64 tensor. Data is row-major: the last shape
// dimension varies fastest.
type Tensor struct {
	// Shape holds the size of each dimension. Every entry must be
	// positive; scalars are represented as shape [1].
	Shape []int

	// Data holds the elements in row-major order. Its length must
	// equal the product of Shape.
	Data []float64
}

// Vector returns a rank-1 tensor wrapping values. The slice is not
// copied; the caller must not mutate it while the tensor is in use.
func Vector(values []float64) Tensor {
	return Tensor{Shape: []int{len(values)}, Data: values}
}

// Matrix returns a rank-2 tensor of the given dimensions wrapping
// values in row-major order. The slice is not copied.
func Matrix(rows, cols int, values []float64) Tensor {
	return Tensor{Shape: []int{rows, cols}, Data: values}
}

// NumElements returns the product of the tensor's shape dimensions.
// Call Validate first on untrusted shapes; NumElements assumes the
// product does not overflow.
func (t Tensor) NumElements() int {
	n := 1
	for _, dim := range t.Shape {
		n *= dim
	}
	return n
}

// Validate checks that the shape is well-formed (at least one
// dimension, every dimension positive, element count within bounds)
// and that the data length matches the shape's element count.
func (t Tensor) Validate() error {
	n, err := checkedNumElements(t.Shape)
	if err != nil {
		return err
	}
	if len(t.Data) != n {
		return fmt.Errorf("tensor data has %d elements, shape %v requires %d", len(t.Data), t.Shape, n)
	}
	return nil
}

// maxElements bounds the element count of a single tensor. The limit
// exists to reject absurd shapes in corrupt or hostile index entries
// before any allocation is sized from them.
const maxElements = 1 << 32

// checkedNumElements computes the product of shape dimensions with
// overflow and bounds checking.
func checkedNumElements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("tensor shape is empty")
	}
	n := 1
	for _, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("tensor shape %v has non-positive dimension %d", shape, dim)
		}
		if n > maxElements/dim {
			return 0, fmt.Errorf("tensor shape %v exceeds %d elements", shape, maxElements)
		}
		n *= dim
	}
	return n, nil
}

// rawBytes encodes the tensor's elements as little-endian float64
// bytes, the container's raw payload encoding.
func rawBytes(values []float64) []byte {
	result := make([]byte, len(values)*8)
	for i, value := range values {
		binary.LittleEndian.PutUint64(result[i*8:], math.Float64bits(value))
	}
	return result
}

// fromRawBytes decodes little-endian float64 bytes produced by
// rawBytes. The length must be a multiple of 8.
func fromRawBytes(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("raw tensor data is %d bytes, not a multiple of 8", len(data))
	}
	values := make([]float64, len(data)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return values, nil
}
