// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"errors"
	"fmt"
	"math"
)

// Config holds an agent's hyperparameters and runtime options. The
// hyperparameters (Dim, HiddenSize, Lambda, Nu) are immutable after
// construction and are persisted by Save. The runtime options (Seed,
// MaxHistory) shape a single process run and are not persisted.
type Config struct {
	// Dim is the width of every context feature vector.
	Dim int

	// HiddenSize is the width of the network's hidden layer.
	HiddenSize int

	// Lambda is the ridge regularization coefficient. It seeds every
	// confidence entry and scales the exploration bonus. Must be a
	// positive finite number.
	Lambda float64

	// Nu scales the exploration bonus. Larger values explore more.
	// Must be a positive finite number.
	Nu float64

	// Seed seeds the agent's random source (weight initialization,
	// training shuffles, batch sampling). Zero selects a time-derived
	// seed.
	Seed int64

	// MaxHistory caps the experience log; at the cap the oldest entry
	// is evicted on every append. Zero means unbounded, the default.
	MaxHistory int
}

// Validate checks the configuration, reporting every problem found.
func (c Config) Validate() error {
	var errs []error
	if c.Dim <= 0 {
		errs = append(errs, fmt.Errorf("dim must be positive, got %d", c.Dim))
	}
	if c.HiddenSize <= 0 {
		errs = append(errs, fmt.Errorf("hidden_size must be positive, got %d", c.HiddenSize))
	}
	if !positiveFinite(c.Lambda) {
		errs = append(errs, fmt.Errorf("lambda must be a positive finite number, got %v", c.Lambda))
	}
	if !positiveFinite(c.Nu) {
		errs = append(errs, fmt.Errorf("nu must be a positive finite number, got %v", c.Nu))
	}
	if c.MaxHistory < 0 {
		errs = append(errs, fmt.Errorf("max_history must be >= 0, got %d", c.MaxHistory))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TotalParams returns the total learnable scalar count of the network
// this configuration describes: the length of the flattened gradient
// and confidence vectors.
func (c Config) TotalParams() int {
	return c.HiddenSize*c.Dim + 2*c.HiddenSize + 1
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
