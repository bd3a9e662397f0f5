// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import "fmt"

// DimensionError reports an input whose dimensions do not match the
// agent's configuration: a context of the wrong width, a Select call
// with no arms, or a snapshot tensor of the wrong shape. The call is
// fatal as issued; retrying without fixing the input cannot succeed.
type DimensionError struct {
	// Op is the operation that rejected the input.
	Op string

	// What names the mismatched quantity ("context width",
	// "arm count", `tensor "u" length`).
	What string

	// Want and Got render the expected and actual dimensions.
	Want string
	Got  string
}

func (err *DimensionError) Error() string {
	return fmt.Sprintf("neuralucb: %s: %s is %s, want %s", err.Op, err.What, err.Got, err.Want)
}

// dimensionError builds a DimensionError, rendering the dimensions
// with fmt.Sprint so call sites can pass widths or whole shapes.
func dimensionError(op, what string, got, want any) *DimensionError {
	return &DimensionError{Op: op, What: what, Got: fmt.Sprint(got), Want: fmt.Sprint(want)}
}

// MissingTensorError reports a snapshot container that lacks a tensor
// the agent requires. The directory does not hold a valid snapshot.
type MissingTensorError struct {
	// Name is the absent tensor's container key.
	Name string
}

func (err *MissingTensorError) Error() string {
	return fmt.Sprintf("neuralucb: snapshot is missing required tensor %q", err.Name)
}

// NumericError reports a non-finite value (NaN or infinity) at the
// API boundary. Inputs are validated; internal arithmetic is not.
type NumericError struct {
	// Op is the operation that rejected the value.
	Op string

	// What names the offending input ("reward", "context[3]").
	What string

	// Value is the rejected value.
	Value float64
}

func (err *NumericError) Error() string {
	return fmt.Sprintf("neuralucb: %s: %s is %v, must be finite", err.Op, err.What, err.Value)
}
