// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"
)

func TestRootVersionSubcommand(t *testing.T) {
	if err := Root().Execute([]string{"version"}); err != nil {
		t.Fatalf("Execute(version): %v", err)
	}
}

func TestRootVersionFlag(t *testing.T) {
	if err := Root().Execute([]string{"--version"}); err != nil {
		t.Fatalf("Execute(--version): %v", err)
	}
}

func TestRootNoArgs(t *testing.T) {
	err := Root().Execute(nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err)
	}
}

func TestRootUnknownSubcommandSuggestion(t *testing.T) {
	err := Root().Execute([]string{"simulte"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"simulate\"") {
		t.Errorf("error = %q, want suggestion for 'simulate'", err)
	}
}

func TestRootDispatchesToInspect(t *testing.T) {
	err := Root().Execute([]string{"inspect"})
	if err == nil {
		t.Fatal("Execute(inspect) = nil, want missing-directory error")
	}
	if !strings.Contains(err.Error(), "snapshot directory is required") {
		t.Errorf("error = %q, want inspect's missing-directory message", err)
	}
}
