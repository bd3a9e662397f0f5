// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSelectSingleArm(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(2))

	selection, err := agent.Select([][]float64{randomContext(rng, 8)})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if selection.Arm != 0 {
		t.Errorf("Arm = %d, want 0", selection.Arm)
	}
}

func TestSelectNoArms(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = agent.Select(nil)
	var dim *DimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("Select(nil) error = %v, want DimensionError", err)
	}
}

func TestSelectTieBreaksLowestIndex(t *testing.T) {
	// Identical contexts produce identical scores; the first arm
	// must win regardless of how many candidates follow.
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	context := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

	selection, err := agent.Select([][]float64{context, context, context, context})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if selection.Arm != 0 {
		t.Errorf("Arm = %d on an all-tie slate, want 0", selection.Arm)
	}
}

func TestSelectValidationLeavesAgentUntouched(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(4))
	before := agent.ConfidenceSum()

	// Second arm is too narrow.
	_, err = agent.Select([][]float64{randomContext(rng, 8), {1, 2}})
	var dim *DimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("Select error = %v, want DimensionError", err)
	}

	// Third arm carries a NaN.
	bad := randomContext(rng, 8)
	bad[5] = math.NaN()
	_, err = agent.Select([][]float64{randomContext(rng, 8), randomContext(rng, 8), bad})
	var numeric *NumericError
	if !errors.As(err, &numeric) {
		t.Fatalf("Select error = %v, want NumericError", err)
	}

	if got := agent.ConfidenceSum(); got != before {
		t.Errorf("failed Select changed confidence: %v -> %v", before, got)
	}
}

func TestSelectConfidenceGrowsBySquaredGradNorm(t *testing.T) {
	// The confidence vector absorbs exactly the elementwise square
	// of the chosen arm's gradient, so the sum must grow by the
	// squared norm Select reports.
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(6))

	for round := range 5 {
		contexts := [][]float64{
			randomContext(rng, 8),
			randomContext(rng, 8),
			randomContext(rng, 8),
		}
		before := agent.ConfidenceSum()
		selection, err := agent.Select(contexts)
		if err != nil {
			t.Fatalf("Select round %d: %v", round, err)
		}
		grew := agent.ConfidenceSum() - before
		want := selection.GradNorm * selection.GradNorm
		if math.Abs(grew-want) > 1e-9 {
			t.Errorf("round %d: confidence grew %v, want GradNorm^2 = %v", round, grew, want)
		}
	}
}

func TestSelectConfidenceMonotone(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(9))

	previous := make([]float64, len(agent.conf.u))
	copy(previous, agent.conf.u)
	for round := range 10 {
		_, err := agent.Select([][]float64{randomContext(rng, 8), randomContext(rng, 8)})
		if err != nil {
			t.Fatalf("Select round %d: %v", round, err)
		}
		for j, v := range agent.conf.u {
			if v < previous[j] {
				t.Fatalf("round %d: u[%d] decreased %v -> %v", round, j, previous[j], v)
			}
		}
		copy(previous, agent.conf.u)
	}
}

func TestSelectExplorationFadesWithRepetition(t *testing.T) {
	// Re-scoring the same slate grows the confidence entries along
	// its gradients, so the average exploration bonus must decline
	// across repeated identical Selects.
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(12))
	contexts := [][]float64{randomContext(rng, 8), randomContext(rng, 8)}

	first, err := agent.Select(contexts)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	var last Selection
	for range 20 {
		last, err = agent.Select(contexts)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
	}

	if !(last.AvgExploration < first.AvgExploration) {
		t.Errorf("exploration did not fade: first %v, last %v",
			first.AvgExploration, last.AvgExploration)
	}
}

func TestSelectDoesNotTrain(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(13))
	probe := randomContext(rng, 8)

	before, err := agent.Predict(probe)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for range 5 {
		if _, err := agent.Select([][]float64{probe, randomContext(rng, 8)}); err != nil {
			t.Fatalf("Select: %v", err)
		}
	}
	after, err := agent.Predict(probe)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if before != after {
		t.Errorf("Select moved the value estimate: %v -> %v", before, after)
	}
	if agent.HistoryLen() != 0 {
		t.Errorf("Select appended to history: len %d", agent.HistoryLen())
	}
}
