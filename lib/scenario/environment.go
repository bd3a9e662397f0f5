// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// RewardModel names how the environment turns an arm's hidden weight
// vector and a context into a clean reward.
type RewardModel string

const (
	// RewardLinear scores an arm as the dot product of its hidden
	// weights with the context.
	RewardLinear RewardModel = "linear"

	// RewardThreshold scores 1 when the dot product is positive,
	// 0 otherwise. A hard decision boundary the network has to bend
	// around.
	RewardThreshold RewardModel = "threshold"
)

// Environment is a synthetic bandit problem: every arm hides a
// unit-norm weight vector the agent never sees, and rewards derive
// from the hidden weights through the configured model. The
// environment itself is stateless across rounds; all randomness comes
// through the *rand.Rand the caller passes in.
type Environment struct {
	model   RewardModel
	noise   float64
	weights [][]float64
}

// NewEnvironment draws one hidden unit-norm weight vector per arm
// from rng.
func NewEnvironment(s *Scenario, rng *rand.Rand) *Environment {
	weights := make([][]float64, s.Arms)
	for i := range weights {
		w := make([]float64, s.Dim)
		for j := range w {
			w[j] = rng.NormFloat64()
		}
		floats.Scale(1/floats.Norm(w, 2), w)
		weights[i] = w
	}
	return &Environment{
		model:   s.RewardModel,
		noise:   s.NoiseStdDev,
		weights: weights,
	}
}

// Arms returns the number of arms the environment was built with.
func (e *Environment) Arms() int {
	return len(e.weights)
}

// Contexts draws a fresh slate: one context per arm with entries
// uniform in [-1, 1).
func (e *Environment) Contexts(rng *rand.Rand) [][]float64 {
	contexts := make([][]float64, len(e.weights))
	for i := range contexts {
		context := make([]float64, len(e.weights[i]))
		for j := range context {
			context[j] = rng.Float64()*2 - 1
		}
		contexts[i] = context
	}
	return contexts
}

// Clean returns the noiseless reward for pulling arm with context.
func (e *Environment) Clean(arm int, context []float64) float64 {
	value := floats.Dot(e.weights[arm], context)
	if e.model == RewardThreshold {
		if value > 0 {
			return 1
		}
		return 0
	}
	return value
}

// Reward returns the observed reward: the clean reward plus Gaussian
// noise drawn from rng.
func (e *Environment) Reward(rng *rand.Rand, arm int, context []float64) float64 {
	return e.Clean(arm, context) + rng.NormFloat64()*e.noise
}

// Best returns the oracle arm for a slate and its clean reward.
func (e *Environment) Best(contexts [][]float64) (int, float64) {
	best := 0
	bestValue := e.Clean(0, contexts[0])
	for i := 1; i < len(contexts); i++ {
		if value := e.Clean(i, contexts[i]); value > bestValue {
			best = i
			bestValue = value
		}
	}
	return best, bestValue
}
