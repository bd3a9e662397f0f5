// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Agent is a contextual-bandit decision engine. It exclusively owns
// all mutable state (network weights, confidence vector, experience
// log) and is not internally synchronized: callers that share an
// Agent across goroutines must serialize access externally.
type Agent struct {
	config Config
	rng    *rand.Rand

	store *paramStore
	net   *network
	conf  *confidence
	log   *experienceLog
}

// New constructs a fresh agent: He-initialized weights, every
// confidence entry at Lambda, an empty experience log.
func New(config Config) (*Agent, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("neuralucb: invalid config: %w", err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Seeded PRNG for reproducible training, not security.
	rng := rand.New(rand.NewSource(seed))

	store := newParamStore()
	net := newNetwork(store, config.Dim, config.HiddenSize)
	net.initWeights(rng)

	return &Agent{
		config: config,
		rng:    rng,
		store:  store,
		net:    net,
		conf:   newConfidence(store.totalParams(), config.Lambda, config.Nu),
		log:    newExperienceLog(config.MaxHistory),
	}, nil
}

// Predict returns the network's value estimate for one context. It is
// read-only: no confidence update, no training.
func (a *Agent) Predict(context []float64) (float64, error) {
	if err := a.validContext("predict", context); err != nil {
		return 0, err
	}
	return a.net.forward(context), nil
}

// HistoryLen returns the number of (context, reward) pairs the
// experience log currently retains.
func (a *Agent) HistoryLen() int {
	return a.log.size()
}

// ConfidenceSum returns the sum of the confidence vector. Fresh
// agents start at Lambda*TotalParams; the sum grows with every Select
// and is a cheap fingerprint for diagnostics and round-trip checks.
func (a *Agent) ConfidenceSum() float64 {
	return a.conf.sum()
}

// validContext checks the width and finiteness of a context vector.
func (a *Agent) validContext(op string, context []float64) error {
	if len(context) != a.config.Dim {
		return dimensionError(op, "context width", len(context), a.config.Dim)
	}
	for i, v := range context {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &NumericError{Op: op, What: fmt.Sprintf("context[%d]", i), Value: v}
		}
	}
	return nil
}

// validReward checks that a reward is finite. Any finite value is
// accepted.
func validReward(op string, reward float64) error {
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return &NumericError{Op: op, What: "reward", Value: reward}
	}
	return nil
}
