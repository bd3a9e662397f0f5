// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// confidence maintains U, the diagonal approximation of the
// accumulated outer product of per-example gradients. One entry per
// learnable scalar, seeded at lambda. Entries only ever grow (by
// squared gradient contributions), so every entry is non-decreasing
// for the agent's lifetime and the exploration bonus along a given
// direction shrinks as that direction is exercised.
type confidence struct {
	u      []float64
	lambda float64
	nu     float64
}

func newConfidence(total int, lambda, nu float64) *confidence {
	u := make([]float64, total)
	for i := range u {
		u[i] = lambda
	}
	return &confidence{u: u, lambda: lambda, nu: nu}
}

// bonus returns the exploration bonus for a flattened gradient:
// sqrt(sum_j lambda*nu*g[j]^2 / U[j]).
func (c *confidence) bonus(g []float64) float64 {
	var sum float64
	for j, gj := range g {
		sum += c.lambda * c.nu * gj * gj / c.u[j]
	}
	return math.Sqrt(sum)
}

// update adds the elementwise square of the chosen arm's gradient.
func (c *confidence) update(g []float64) {
	for j, gj := range g {
		c.u[j] += gj * gj
	}
}

// sum returns the total confidence mass, a cheap fingerprint of
// accumulated exploration used by diagnostics and round-trip checks.
func (c *confidence) sum() float64 {
	return floats.Sum(c.u)
}
