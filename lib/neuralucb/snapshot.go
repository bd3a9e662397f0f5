// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package neuralucb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/overture/lib/tensor"
)

// Snapshot file names within a snapshot directory.
const (
	// ConfigFileName holds the hyperparameters as JSON.
	ConfigFileName = "config.json"

	// ModelFileName holds every tensor: the network parameters, the
	// confidence vector, and optionally the experience history.
	ModelFileName = "model.tensors"
)

// Container keys beyond the network parameters.
const (
	tensorU              = "u"
	tensorContextHistory = "context_history"
	tensorRewardHistory  = "reward_history"
)

// snapshotConfig is the config.json wire form. TotalParam is stored
// redundantly and cross-checked on load to catch metadata edits that
// would silently misalign the confidence vector.
type snapshotConfig struct {
	Dim        int     `json:"dim"`
	HiddenSize int     `json:"hidden_size"`
	Lambda     float64 `json:"lambda"`
	Nu         float64 `json:"nu"`
	TotalParam int     `json:"total_param"`
}

// Save writes the agent's full learned state to dir: config.json with
// the hyperparameters, and model.tensors with the network parameters,
// the confidence vector keyed "u", and, when the log is non-empty,
// the experience history keyed "context_history" and "reward_history".
// Both files are written via a temp file and rename; existing snapshot
// content is fully replaced, never merged.
func (a *Agent) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	if err := a.writeConfig(filepath.Join(dir, ConfigFileName)); err != nil {
		return err
	}

	tensors := a.store.tensors()
	tensors[tensorU] = tensor.Vector(a.conf.u)

	if n := a.log.size(); n > 0 {
		flat := make([]float64, 0, n*a.config.Dim)
		for _, context := range a.log.contexts {
			flat = append(flat, context...)
		}
		tensors[tensorContextHistory] = tensor.Matrix(n, a.config.Dim, flat)
		tensors[tensorRewardHistory] = tensor.Vector(a.log.rewards)
	}

	if err := tensor.WriteFile(filepath.Join(dir, ModelFileName), tensors); err != nil {
		return fmt.Errorf("writing model container: %w", err)
	}
	return nil
}

func (a *Agent) writeConfig(path string) error {
	data, err := json.MarshalIndent(snapshotConfig{
		Dim:        a.config.Dim,
		HiddenSize: a.config.HiddenSize,
		Lambda:     a.config.Lambda,
		Nu:         a.config.Nu,
		TotalParam: a.store.totalParams(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot config: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"
	if err := os.WriteFile(temporaryPath, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot config: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming snapshot config: %w", err)
	}
	return nil
}

// Load restores an agent from a directory written by Save. The
// network parameters and the "u" confidence vector are required; the
// experience history is optional, and an absent history loads as an
// empty log. The restored agent carries a time-seeded random source,
// an unbounded history cap, and a cold optimizer: training continues
// from the saved weights, but the exact update sequence after a
// reload is not part of the round-trip contract.
func Load(dir string) (*Agent, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot config: %w", err)
	}
	var sc snapshotConfig
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing snapshot config %s: %w", configPath, err)
	}

	agent, err := New(Config{
		Dim:        sc.Dim,
		HiddenSize: sc.HiddenSize,
		Lambda:     sc.Lambda,
		Nu:         sc.Nu,
	})
	if err != nil {
		return nil, err
	}
	if sc.TotalParam != agent.store.totalParams() {
		return nil, dimensionError("load", "total_param", sc.TotalParam, agent.store.totalParams())
	}

	tensors, err := tensor.ReadFile(filepath.Join(dir, ModelFileName))
	if err != nil {
		return nil, fmt.Errorf("reading model container: %w", err)
	}

	if err := agent.store.setValues(tensors); err != nil {
		return nil, err
	}

	u, ok := tensors[tensorU]
	if !ok {
		return nil, &MissingTensorError{Name: tensorU}
	}
	if len(u.Data) != agent.store.totalParams() {
		return nil, dimensionError("load", "tensor u length", len(u.Data), agent.store.totalParams())
	}
	copy(agent.conf.u, u.Data)

	if err := agent.restoreHistory(tensors); err != nil {
		return nil, err
	}
	return agent, nil
}

// restoreHistory rebuilds the experience log from the optional
// history tensors. Either both are present and mutually consistent,
// or neither is.
func (a *Agent) restoreHistory(tensors map[string]tensor.Tensor) error {
	contexts, haveContexts := tensors[tensorContextHistory]
	rewards, haveRewards := tensors[tensorRewardHistory]
	if !haveContexts && !haveRewards {
		return nil
	}
	if haveContexts != haveRewards {
		return fmt.Errorf("neuralucb: snapshot must hold both %q and %q, or neither",
			tensorContextHistory, tensorRewardHistory)
	}

	if len(contexts.Shape) != 2 || contexts.Shape[1] != a.config.Dim {
		return dimensionError("load", "context_history shape",
			contexts.Shape, fmt.Sprintf("[n %d]", a.config.Dim))
	}
	n := contexts.Shape[0]
	if len(rewards.Shape) != 1 || rewards.Shape[0] != n {
		return dimensionError("load", "reward_history shape",
			rewards.Shape, fmt.Sprintf("[%d]", n))
	}

	for i := range n {
		a.log.add(contexts.Data[i*a.config.Dim:(i+1)*a.config.Dim], rewards.Data[i])
	}
	return nil
}
