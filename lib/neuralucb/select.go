// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Selection is the outcome of one Select call: the chosen arm plus
// telemetry about the decision. The diagnostics do not feed back into
// the algorithm.
type Selection struct {
	// Arm indexes the chosen row of the contexts passed to Select.
	Arm int

	// GradNorm is the L2 norm of the chosen arm's flattened gradient.
	GradNorm float64

	// AvgExploration is the mean exploration bonus across all arms.
	AvgExploration float64

	// AvgScore is the mean total score (value + bonus) across arms.
	AvgScore float64
}

// Select scores every candidate arm as value estimate plus exploration
// bonus and returns the best one. Ties break toward the lowest index.
// As a side effect, the chosen arm's squared gradients are added to
// the confidence vector; Select never modifies the network weights.
//
// Every context row must be exactly Dim wide and finite. Validation
// happens up front: a failed call leaves the agent untouched.
func (a *Agent) Select(contexts [][]float64) (Selection, error) {
	if len(contexts) == 0 {
		return Selection{}, dimensionError("select", "arm count", 0, "at least 1")
	}
	for i, context := range contexts {
		if err := a.validContext(fmt.Sprintf("select: arm %d", i), context); err != nil {
			return Selection{}, err
		}
	}

	total := a.store.totalParams()
	grad := make([]float64, total)
	chosenGrad := make([]float64, total)

	best := 0
	bestScore := 0.0
	var bonusSum, scoreSum float64

	for i, context := range contexts {
		value := a.net.forward(context)
		a.net.backward(context, 1)
		a.store.flattenGrads(grad)
		a.store.zeroGrads()

		bonus := a.conf.bonus(grad)
		score := value + bonus
		bonusSum += bonus
		scoreSum += score

		if i == 0 || score > bestScore {
			best = i
			bestScore = score
			copy(chosenGrad, grad)
		}
	}

	a.conf.update(chosenGrad)

	arms := float64(len(contexts))
	return Selection{
		Arm:            best,
		GradNorm:       floats.Norm(chosenGrad, 2),
		AvgExploration: bonusSum / arms,
		AvgScore:       scoreSum / arms,
	}, nil
}
