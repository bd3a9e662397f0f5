// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package neuralucb implements an online contextual-bandit decision
// engine: a two-layer ReLU value network scored per candidate arm,
// plus an upper-confidence-bound exploration bonus derived from
// accumulated squared gradients (NeuralUCB with the diagonal
// approximation of the confidence matrix).
//
// The agent exposes four operations:
//
//   - Select scores one context vector per candidate arm as predicted
//     value plus exploration bonus and picks the best arm, ties
//     breaking toward the lowest index. The chosen arm's squared
//     gradients widen the confidence denominator, so uncertainty
//     shrinks along directions the agent has already explored.
//
//   - Train appends an observed (context, reward) pair and fits the
//     network to the full experience log with shuffled single-example
//     Adam sweeps until the sweep loss converges. A hard per-call
//     update cap is the termination guarantee; the convergence exit
//     is an optimization.
//
//   - TrainBatch appends the pair and performs a fixed number of
//     mini-batch Adam steps. Bounded work regardless of log size,
//     intended for high-frequency online updates.
//
//   - Save and Load persist hyperparameters as JSON and all learned
//     state (network weights, confidence vector, experience history)
//     in a named-tensor container (lib/tensor). Tensors are matched
//     by name on load, never by position.
//
// Gradients are analytic: the network shape is small and fixed, so a
// closed form replaces autodiff machinery and keeps the per-arm
// gradient computation in Select cheap.
//
// An Agent exclusively owns its mutable state and performs no internal
// locking. Callers that share one agent across goroutines must
// serialize access externally, holding the lock across a Select/Train
// round-trip when the confidence update and the weight update must be
// observed together.
package neuralucb
