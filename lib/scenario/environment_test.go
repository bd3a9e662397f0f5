// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestEnvironmentLinearReward(t *testing.T) {
	env := &Environment{
		model: RewardLinear,
		weights: [][]float64{
			{1, 0, 0},
			{0, 0.5, -0.5},
		},
	}

	context := []float64{0.2, 0.4, 0.8}
	if got := env.Clean(0, context); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("Clean(0) = %v, want 0.2", got)
	}
	if got := env.Clean(1, context); math.Abs(got-(-0.2)) > 1e-12 {
		t.Errorf("Clean(1) = %v, want -0.2", got)
	}
}

func TestEnvironmentThresholdReward(t *testing.T) {
	env := &Environment{
		model:   RewardThreshold,
		weights: [][]float64{{1, 0}},
	}

	if got := env.Clean(0, []float64{0.3, 9}); got != 1 {
		t.Errorf("Clean above boundary = %v, want 1", got)
	}
	if got := env.Clean(0, []float64{-0.3, 9}); got != 0 {
		t.Errorf("Clean below boundary = %v, want 0", got)
	}
	if got := env.Clean(0, []float64{0, 9}); got != 0 {
		t.Errorf("Clean on boundary = %v, want 0", got)
	}
}

func TestEnvironmentBest(t *testing.T) {
	env := &Environment{
		model: RewardLinear,
		weights: [][]float64{
			{1, 0},
			{0, 1},
			{-1, 0},
		},
	}
	contexts := [][]float64{
		{0.1, 0},
		{0, 0.9},
		{-0.5, 0},
	}

	arm, value := env.Best(contexts)
	if arm != 1 {
		t.Errorf("Best arm = %d, want 1", arm)
	}
	if math.Abs(value-0.9) > 1e-12 {
		t.Errorf("Best value = %v, want 0.9", value)
	}
}

func TestEnvironmentBestTieTakesFirst(t *testing.T) {
	env := &Environment{
		model:   RewardLinear,
		weights: [][]float64{{1}, {1}},
	}
	contexts := [][]float64{{0.4}, {0.4}}

	if arm, _ := env.Best(contexts); arm != 0 {
		t.Errorf("Best arm on a tie = %d, want 0", arm)
	}
}

func TestEnvironmentRewardNoise(t *testing.T) {
	env := &Environment{
		model:   RewardLinear,
		noise:   0,
		weights: [][]float64{{1, 1}},
	}
	rng := rand.New(rand.NewSource(1))
	context := []float64{0.25, 0.5}

	// Zero noise: observed equals clean exactly.
	if got, want := env.Reward(rng, 0, context), env.Clean(0, context); got != want {
		t.Errorf("noiseless Reward = %v, want %v", got, want)
	}

	// With noise the long-run mean stays near the clean reward.
	env.noise = 0.1
	var sum float64
	const draws = 2000
	for range draws {
		sum += env.Reward(rng, 0, context)
	}
	mean := sum / draws
	if math.Abs(mean-env.Clean(0, context)) > 0.02 {
		t.Errorf("mean observed reward = %v, want near %v", mean, env.Clean(0, context))
	}
}

func TestNewEnvironment(t *testing.T) {
	scenario := Default()
	rng := rand.New(rand.NewSource(11))
	env := NewEnvironment(scenario, rng)

	if env.Arms() != scenario.Arms {
		t.Fatalf("Arms = %d, want %d", env.Arms(), scenario.Arms)
	}
	for i, w := range env.weights {
		if len(w) != scenario.Dim {
			t.Fatalf("weights[%d] has width %d, want %d", i, len(w), scenario.Dim)
		}
		if norm := floats.Norm(w, 2); math.Abs(norm-1) > 1e-9 {
			t.Errorf("weights[%d] norm = %v, want 1", i, norm)
		}
	}
}

func TestEnvironmentContexts(t *testing.T) {
	scenario := Default()
	rng := rand.New(rand.NewSource(17))
	env := NewEnvironment(scenario, rng)

	contexts := env.Contexts(rng)
	if len(contexts) != scenario.Arms {
		t.Fatalf("slate has %d contexts, want %d", len(contexts), scenario.Arms)
	}
	for i, context := range contexts {
		if len(context) != scenario.Dim {
			t.Fatalf("contexts[%d] has width %d, want %d", i, len(context), scenario.Dim)
		}
		for j, v := range context {
			if v < -1 || v >= 1 {
				t.Errorf("contexts[%d][%d] = %v, want in [-1, 1)", i, j, v)
			}
		}
	}

	// Consecutive slates differ.
	next := env.Contexts(rng)
	if floats.Equal(contexts[0], next[0]) {
		t.Error("consecutive slates returned identical contexts")
	}
}
