// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scenario provides synthetic contextual-bandit environments
// for evaluating an agent end to end: a configurable reward model
// with hidden per-arm weights, and a runner that plays full
// select/train rounds against it while scoring a uniform-random
// baseline on the same context stream.
//
// The headline property a scenario run checks is regret improvement:
// with a fixed seed, a learning agent's cumulative regret must come
// in below the random baseline's. The simulate subcommand and the
// regression tests both gate on it.
package scenario
