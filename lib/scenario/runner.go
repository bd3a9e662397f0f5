// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/bureau-foundation/overture/lib/neuralucb"
)

// Runner plays a scenario: a fresh agent against a fresh environment,
// with a uniform-random baseline scored on the same slates.
type Runner struct {
	scenario *Scenario
	agent    *neuralucb.Agent
	env      *Environment
	rng      *rand.Rand
	logger   *slog.Logger
}

// Result is the outcome of one scenario run. Regret and reward totals
// are computed from clean (noiseless) rewards so the two policies are
// compared on the ground truth, not on noise draws.
type Result struct {
	// Rounds is the number of rounds played.
	Rounds int

	// AgentRegret and BaselineRegret accumulate, per round, the gap
	// between the oracle arm's clean reward and the chosen arm's.
	AgentRegret    float64
	BaselineRegret float64

	// AgentReward and BaselineReward are the clean reward totals.
	AgentReward    float64
	BaselineReward float64

	// ArmCounts histograms the agent's choices by arm index.
	ArmCounts []int
}

// BeatsBaseline reports whether the agent accumulated strictly less
// regret than the uniform-random baseline.
func (r *Result) BeatsBaseline() bool {
	return r.AgentRegret < r.BaselineRegret
}

// NewRunner validates the scenario and builds the environment and a
// fresh agent, everything seeded from the scenario. A nil logger is
// replaced with a no-op logger.
func NewRunner(s *Scenario, logger *slog.Logger) (*Runner, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: invalid scenario: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	//nolint:gosec // Seeded PRNG for reproducible evaluation, not security.
	rng := rand.New(rand.NewSource(s.Seed))
	env := NewEnvironment(s, rng)

	agent, err := neuralucb.New(neuralucb.Config{
		Dim:        s.Dim,
		HiddenSize: s.HiddenSize,
		Lambda:     s.Lambda,
		Nu:         s.Nu,
		Seed:       s.Seed,
	})
	if err != nil {
		return nil, err
	}

	return &Runner{
		scenario: s,
		agent:    agent,
		env:      env,
		rng:      rng,
		logger:   logger,
	}, nil
}

// Agent returns the runner's agent, trained by however many rounds
// have been played. Callers persist it after Run via Save.
func (r *Runner) Agent() *neuralucb.Agent {
	return r.agent
}

// Run plays the configured number of rounds. Each round draws one
// slate, lets the agent select and the baseline pick uniformly at
// random, trains the agent on the noisy reward of its chosen arm, and
// books clean-reward regret for both policies against the oracle.
func (r *Runner) Run() (*Result, error) {
	result := &Result{
		Rounds:    r.scenario.Rounds,
		ArmCounts: make([]int, r.scenario.Arms),
	}

	for round := range r.scenario.Rounds {
		contexts := r.env.Contexts(r.rng)
		baselineArm := r.rng.Intn(r.scenario.Arms)

		selection, err := r.agent.Select(contexts)
		if err != nil {
			return nil, fmt.Errorf("scenario: select on round %d: %w", round, err)
		}

		_, bestClean := r.env.Best(contexts)
		agentClean := r.env.Clean(selection.Arm, contexts[selection.Arm])
		baselineClean := r.env.Clean(baselineArm, contexts[baselineArm])

		observed := r.env.Reward(r.rng, selection.Arm, contexts[selection.Arm])
		if _, err := r.agent.TrainBatch(contexts[selection.Arm], observed); err != nil {
			return nil, fmt.Errorf("scenario: train on round %d: %w", round, err)
		}

		result.AgentRegret += bestClean - agentClean
		result.BaselineRegret += bestClean - baselineClean
		result.AgentReward += agentClean
		result.BaselineReward += baselineClean
		result.ArmCounts[selection.Arm]++

		if (round+1)%100 == 0 {
			r.logger.Debug("scenario progress",
				"round", round+1,
				"agent_regret", result.AgentRegret,
				"baseline_regret", result.BaselineRegret,
			)
		}
	}

	r.logger.Info("scenario run complete",
		"rounds", result.Rounds,
		"reward_model", string(r.scenario.RewardModel),
		"agent_regret", result.AgentRegret,
		"baseline_regret", result.BaselineRegret,
		"beats_baseline", result.BeatsBaseline(),
	)
	return result, nil
}
