// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"math"
	"slices"
	"testing"

	"github.com/bureau-foundation/overture/lib/neuralucb"
)

func testScenario() *Scenario {
	scenario := Default()
	scenario.Rounds = 400
	scenario.Arms = 4
	scenario.Seed = 7
	return scenario
}

func TestRunnerBeatsUniformBaseline(t *testing.T) {
	runner, err := NewRunner(testScenario(), nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.BeatsBaseline() {
		t.Errorf("agent regret %v did not beat baseline regret %v",
			result.AgentRegret, result.BaselineRegret)
	}
	if result.AgentRegret < 0 {
		t.Errorf("agent regret = %v, want >= 0", result.AgentRegret)
	}
	if result.AgentReward <= result.BaselineReward {
		t.Errorf("agent clean reward %v did not beat baseline %v",
			result.AgentReward, result.BaselineReward)
	}

	var plays int
	for _, count := range result.ArmCounts {
		plays += count
	}
	if plays != result.Rounds {
		t.Errorf("histogram sums to %d, want %d", plays, result.Rounds)
	}
	if runner.Agent().HistoryLen() != result.Rounds {
		t.Errorf("agent history = %d, want one entry per round", runner.Agent().HistoryLen())
	}
}

func TestRunnerTwoArms(t *testing.T) {
	scenario := testScenario()
	scenario.Arms = 2

	runner, err := NewRunner(scenario, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.BeatsBaseline() {
		t.Errorf("two-arm agent regret %v did not beat baseline regret %v",
			result.AgentRegret, result.BaselineRegret)
	}
	if len(result.ArmCounts) != 2 {
		t.Fatalf("ArmCounts has %d entries, want 2", len(result.ArmCounts))
	}
	if result.ArmCounts[0] == 0 || result.ArmCounts[1] == 0 {
		t.Errorf("arm counts %v, want both arms explored", result.ArmCounts)
	}
}

func TestRunnerThresholdModel(t *testing.T) {
	scenario := testScenario()
	scenario.RewardModel = RewardThreshold
	scenario.Rounds = 200

	runner, err := NewRunner(scenario, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Threshold rewards are 0 or 1, so per-round regret is too and
	// the totals stay within the round count.
	for _, regret := range []float64{result.AgentRegret, result.BaselineRegret} {
		if regret < 0 || regret > float64(result.Rounds) || math.IsNaN(regret) {
			t.Errorf("regret = %v, want within [0, %d]", regret, result.Rounds)
		}
	}
}

func TestRunnerDeterministic(t *testing.T) {
	run := func() *Result {
		runner, err := NewRunner(testScenario(), nil)
		if err != nil {
			t.Fatalf("NewRunner: %v", err)
		}
		result, err := runner.Run()
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	first, second := run(), run()
	if first.AgentRegret != second.AgentRegret ||
		first.BaselineRegret != second.BaselineRegret {
		t.Errorf("identically seeded runs diverge: %v/%v vs %v/%v",
			first.AgentRegret, first.BaselineRegret,
			second.AgentRegret, second.BaselineRegret)
	}
	if !slices.Equal(first.ArmCounts, second.ArmCounts) {
		t.Errorf("histograms diverge: %v vs %v", first.ArmCounts, second.ArmCounts)
	}
}

func TestRunnerRejectsInvalidScenario(t *testing.T) {
	scenario := Default()
	scenario.Arms = 0
	if _, err := NewRunner(scenario, nil); err == nil {
		t.Error("NewRunner accepted an invalid scenario")
	}
}

func TestRunnerAgentIsUsable(t *testing.T) {
	scenario := testScenario()
	scenario.Rounds = 50
	runner, err := NewRunner(scenario, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The trained agent persists and restores like any other.
	dir := t.TempDir()
	if err := runner.Agent().Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := neuralucb.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.HistoryLen() != scenario.Rounds {
		t.Errorf("loaded history = %d, want %d", loaded.HistoryLen(), scenario.Rounds)
	}
}
