// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/bureau-foundation/overture/lib/tensor"
)

// parameter is one named learnable tensor together with its gradient
// accumulator and Adam moment estimates, all identically shaped.
type parameter struct {
	name  string
	shape []int // persisted shape, rank 1 or 2
	value *mat.Dense
	grad  *mat.Dense
	adamM *mat.Dense // first-moment estimate
	adamV *mat.Dense // second-moment estimate
}

// elements returns the parameter's scalar count.
func (p *parameter) elements() int {
	rows, cols := p.value.Dims()
	return rows * cols
}

// paramStore owns every learnable tensor. Registration order defines
// the flattened parameter layout used by the gradient and confidence
// vectors, row-major within each tensor, and is part of the
// persistence contract.
type paramStore struct {
	params []*parameter
	byName map[string]*parameter
	total  int
	step   int // Adam timestep, shared across parameters
}

func newParamStore() *paramStore {
	return &paramStore{byName: make(map[string]*parameter)}
}

// register allocates a zeroed parameter and appends it to the
// flattening order. A rank-1 shape [n] is backed by an n-by-1 matrix,
// so its row-major data is the vector itself.
func (s *paramStore) register(name string, shape ...int) *parameter {
	rows, cols := shape[0], 1
	if len(shape) == 2 {
		cols = shape[1]
	}
	p := &parameter{
		name:  name,
		shape: shape,
		value: mat.NewDense(rows, cols, nil),
		grad:  mat.NewDense(rows, cols, nil),
		adamM: mat.NewDense(rows, cols, nil),
		adamV: mat.NewDense(rows, cols, nil),
	}
	s.params = append(s.params, p)
	s.byName[name] = p
	s.total += rows * cols
	return p
}

// totalParams returns the flattened parameter vector length.
func (s *paramStore) totalParams() int {
	return s.total
}

// flattenGrads writes every parameter's gradient into dst in
// registration order. dst must have length totalParams().
func (s *paramStore) flattenGrads(dst []float64) {
	offset := 0
	for _, p := range s.params {
		offset += copy(dst[offset:], p.grad.RawMatrix().Data)
	}
}

// zeroGrads clears every gradient accumulator.
func (s *paramStore) zeroGrads() {
	for _, p := range s.params {
		p.grad.Zero()
	}
}

// Adam moment decay rates and divide-by-zero guard. Fixed: training
// exposes no optimizer knobs.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// adamStep applies one bias-corrected Adam update to every parameter
// from its accumulated gradient, then zeroes the gradients. The
// timestep is shared across parameters and advances once per call.
func (s *paramStore) adamStep(learningRate float64) {
	s.step++
	correction1 := 1 - math.Pow(adamBeta1, float64(s.step))
	correction2 := 1 - math.Pow(adamBeta2, float64(s.step))

	for _, p := range s.params {
		value := p.value.RawMatrix().Data
		grad := p.grad.RawMatrix().Data
		m := p.adamM.RawMatrix().Data
		v := p.adamV.RawMatrix().Data
		for j, g := range grad {
			m[j] = adamBeta1*m[j] + (1-adamBeta1)*g
			v[j] = adamBeta2*v[j] + (1-adamBeta2)*g*g
			mHat := m[j] / correction1
			vHat := v[j] / correction2
			value[j] -= learningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
			grad[j] = 0
		}
	}
}

// tensors returns a deep copy of every parameter value keyed by name,
// in the persisted shapes.
func (s *paramStore) tensors() map[string]tensor.Tensor {
	out := make(map[string]tensor.Tensor, len(s.params))
	for _, p := range s.params {
		data := make([]float64, p.elements())
		copy(data, p.value.RawMatrix().Data)
		out[p.name] = tensor.Tensor{Shape: slices.Clone(p.shape), Data: data}
	}
	return out
}

// setValues overwrites every parameter from the named tensors,
// matching by name and checking shapes. Names the store does not know
// are ignored; a parameter with no tensor is an error.
func (s *paramStore) setValues(tensors map[string]tensor.Tensor) error {
	for _, p := range s.params {
		t, ok := tensors[p.name]
		if !ok {
			return &MissingTensorError{Name: p.name}
		}
		if !slices.Equal(t.Shape, p.shape) {
			return dimensionError("load", "tensor "+p.name+" shape", t.Shape, p.shape)
		}
		copy(p.value.RawMatrix().Data, t.Data)
	}
	return nil
}
