// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/overture/cmd/overture/cli"
	"github.com/bureau-foundation/overture/lib/neuralucb"
)

// savedSnapshot trains a small agent for one call and saves it, so the
// snapshot carries history tensors alongside the parameters.
func savedSnapshot(t *testing.T) string {
	t.Helper()

	agent, err := neuralucb.New(neuralucb.Config{
		Dim: 4, HiddenSize: 8, Lambda: 0.1, Nu: 0.2, Seed: 3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := agent.Train([]float64{0.4, -0.2, 0.8, 0.1}, 0.6); err != nil {
		t.Fatalf("Train: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "model")
	if err := agent.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return dir
}

func TestInspectSnapshot(t *testing.T) {
	dir := savedSnapshot(t)

	var buf bytes.Buffer
	if err := inspectSnapshot(&buf, dir, false); err != nil {
		t.Fatalf("inspectSnapshot: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"dim",
		"hidden_size",
		"total_param",
		"49", // 8*4 + 2*8 + 1
		"TENSOR",
		"w1.weight",
		"w2.bias",
		"\nu ", // confidence diagonal row
		"context_history",
		"reward_history",
		"7 tensors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n\nFull output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "verify:") {
		t.Errorf("output has a verify line without --verify:\n%s", out)
	}
}

func TestInspectSnapshotVerify(t *testing.T) {
	dir := savedSnapshot(t)

	var buf bytes.Buffer
	if err := inspectSnapshot(&buf, dir, true); err != nil {
		t.Fatalf("inspectSnapshot --verify: %v", err)
	}
	if !strings.Contains(buf.String(), "verify: 7 payload digests match") {
		t.Errorf("output missing verify line:\n%s", buf.String())
	}
}

func TestInspectSnapshotMissingDir(t *testing.T) {
	var buf bytes.Buffer
	err := inspectSnapshot(&buf, filepath.Join(t.TempDir(), "nope"), false)
	if err == nil {
		t.Fatal("inspectSnapshot on a missing directory returned nil")
	}
}

func TestInspectSnapshotCorruptContainer(t *testing.T) {
	dir := savedSnapshot(t)
	modelPath := filepath.Join(dir, neuralucb.ModelFileName)
	if err := os.WriteFile(modelPath, []byte("not a container"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var buf bytes.Buffer
	err := inspectSnapshot(&buf, dir, false)
	if err == nil {
		t.Fatal("inspectSnapshot on a corrupt container returned nil")
	}
	if !strings.Contains(err.Error(), neuralucb.ModelFileName) {
		t.Errorf("error = %q, should name %s", err, neuralucb.ModelFileName)
	}
}

func TestInspectSnapshotBadConfig(t *testing.T) {
	dir := savedSnapshot(t)
	configPath := filepath.Join(dir, neuralucb.ConfigFileName)
	if err := os.WriteFile(configPath, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var buf bytes.Buffer
	err := inspectSnapshot(&buf, dir, false)
	if err == nil {
		t.Fatal("inspectSnapshot on a bad config returned nil")
	}
	if !strings.Contains(err.Error(), neuralucb.ConfigFileName) {
		t.Errorf("error = %q, should name %s", err, neuralucb.ConfigFileName)
	}
}

func TestInspectCommandExitCode(t *testing.T) {
	dir := savedSnapshot(t)
	modelPath := filepath.Join(dir, neuralucb.ModelFileName)
	if err := os.WriteFile(modelPath, []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := InspectCommand().Execute([]string{dir})
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Execute() = %v, want *cli.ExitError", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("exit code = %d, want 2", exitErr.Code)
	}
}

func TestInspectCommandRequiresDirectory(t *testing.T) {
	err := InspectCommand().Execute(nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing directory")
	}
	if !strings.Contains(err.Error(), "snapshot directory is required") {
		t.Errorf("error = %q, want missing-directory message", err)
	}
}

func TestInspectCommandVerifyFlag(t *testing.T) {
	dir := savedSnapshot(t)
	if err := InspectCommand().Execute([]string{dir, "--verify"}); err != nil {
		t.Fatalf("Execute(--verify) on a good snapshot: %v", err)
	}
}

func TestFormatShape(t *testing.T) {
	if got := formatShape([]int{16, 8}); got != "16x8" {
		t.Errorf("formatShape([16 8]) = %q, want %q", got, "16x8")
	}
	if got := formatShape([]int{161}); got != "161" {
		t.Errorf("formatShape([161]) = %q, want %q", got, "161")
	}
}
