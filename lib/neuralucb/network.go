// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Parameter names are the persistence contract: Save keys tensors by
// these names and Load matches by name, never by position.
const (
	paramW1Weight = "w1.weight"
	paramW1Bias   = "w1.bias"
	paramW2Weight = "w2.weight"
	paramW2Bias   = "w2.bias"
)

// network is the two-layer scorer f(x) = w2 * relu(W1*x + b1) + b2.
// It holds references to its parameters in the store plus scratch
// buffers so the forward and backward passes allocate nothing.
type network struct {
	dim    int
	hidden int

	w1 *parameter // [hidden, dim]
	b1 *parameter // [hidden]
	w2 *parameter // [1, hidden]
	b2 *parameter // [1]

	// Scratch written by forward and consumed by backward:
	// pre-activations, post-ReLU activations, and the gradient
	// flowing back into the hidden layer.
	preact *mat.VecDense
	act    *mat.VecDense
	delta  *mat.VecDense
}

// newNetwork registers the network's parameters in the store and
// allocates scratch. All values start at zero; call initWeights
// before first use.
func newNetwork(store *paramStore, dim, hidden int) *network {
	return &network{
		dim:    dim,
		hidden: hidden,
		w1:     store.register(paramW1Weight, hidden, dim),
		b1:     store.register(paramW1Bias, hidden),
		w2:     store.register(paramW2Weight, 1, hidden),
		b2:     store.register(paramW2Bias, 1),
		preact: mat.NewVecDense(hidden, nil),
		act:    mat.NewVecDense(hidden, nil),
		delta:  mat.NewVecDense(hidden, nil),
	}
}

// initWeights draws He-scaled normal weights (standard deviation
// sqrt(2/fanIn)) for both layers and leaves the biases at zero.
func (n *network) initWeights(rng *rand.Rand) {
	scale := math.Sqrt(2 / float64(n.dim))
	data := n.w1.value.RawMatrix().Data
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}

	scale = math.Sqrt(2 / float64(n.hidden))
	data = n.w2.value.RawMatrix().Data
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
}

// forward computes f(x), retaining the layer activations for a
// following backward call with the same x.
func (n *network) forward(x []float64) float64 {
	n.preact.MulVec(n.w1.value, mat.NewVecDense(n.dim, x))

	bias := n.b1.value.RawMatrix().Data
	pre := n.preact.RawVector().Data
	act := n.act.RawVector().Data
	for i := range pre {
		pre[i] += bias[i]
		if pre[i] > 0 {
			act[i] = pre[i]
		} else {
			act[i] = 0
		}
	}

	return mat.Dot(n.w2.value.RowView(0), n.act) + n.b2.value.At(0, 0)
}

// backward accumulates the gradient of scale*f(x) into the store's
// gradient buffers, for the x of the preceding forward call. scale is
// 1 for a raw value gradient and dL/df for a loss gradient.
func (n *network) backward(x []float64, scale float64) {
	pre := n.preact.RawVector().Data
	act := n.act.RawVector().Data

	// Output layer: df/dw2 = act, df/db2 = 1.
	w2Grad := n.w2.grad.RawMatrix().Data
	for i, a := range act {
		w2Grad[i] += scale * a
	}
	n.b2.grad.RawMatrix().Data[0] += scale

	// Through the ReLU: units with non-positive pre-activation pass
	// no gradient.
	w2 := n.w2.value.RawMatrix().Data
	delta := n.delta.RawVector().Data
	for i := range delta {
		if pre[i] > 0 {
			delta[i] = scale * w2[i]
		} else {
			delta[i] = 0
		}
	}

	// Hidden layer: dW1 = delta * x^T, db1 = delta.
	n.w1.grad.RankOne(n.w1.grad, 1, n.delta, mat.NewVecDense(n.dim, x))
	b1Grad := n.b1.grad.RawMatrix().Data
	for i, d := range delta {
		b1Grad[i] += d
	}
}
