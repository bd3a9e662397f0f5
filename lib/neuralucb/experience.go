// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import "slices"

// experienceLog is the agent's training history: an ordered sequence
// of observed (context, reward) pairs. Append-only and unbounded by
// default; a positive cap turns it into a sliding window that evicts
// the oldest entry, preserving order among the rest.
type experienceLog struct {
	contexts [][]float64
	rewards  []float64
	max      int // 0 = unbounded
}

func newExperienceLog(max int) *experienceLog {
	return &experienceLog{max: max}
}

// add appends a pair, copying the context so later mutation of the
// caller's slice cannot corrupt history.
func (l *experienceLog) add(context []float64, reward float64) {
	stored := slices.Clone(context)
	if l.max > 0 && len(l.rewards) == l.max {
		copy(l.contexts, l.contexts[1:])
		copy(l.rewards, l.rewards[1:])
		l.contexts[l.max-1] = stored
		l.rewards[l.max-1] = reward
		return
	}
	l.contexts = append(l.contexts, stored)
	l.rewards = append(l.rewards, reward)
}

// size returns the number of retained pairs.
func (l *experienceLog) size() int {
	return len(l.rewards)
}
