// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/overture/cmd/overture/cli"
	"github.com/bureau-foundation/overture/lib/neuralucb"
	"github.com/bureau-foundation/overture/lib/tensor"
)

// InspectCommand returns the "inspect" command: describe a saved agent
// snapshot without loading it into memory, or fully verify it with
// --verify.
func InspectCommand() *cli.Command {
	var verify bool

	return &cli.Command{
		Name:    "inspect",
		Summary: "Describe a saved agent snapshot",
		Description: `Describe a saved agent snapshot directory.

Prints the hyperparameters from config.json and the tensor index from
model.tensors: per tensor, its name, shape, compression, raw and
stored byte sizes, and a digest prefix. The index read is cheap; no
payload is decompressed.

With --verify, every payload is re-read and checked against its
BLAKE3 digest, and the agent is loaded end to end to validate the
snapshot's internal consistency. Any failure prints the reason and
exits with status 2.`,
		Usage: "overture inspect <dir> [flags]",
		Examples: []cli.Example{
			{
				Description: "List the tensors in a snapshot",
				Command:     "overture inspect ./model",
			},
			{
				Description: "Check digests and loadability",
				Command:     "overture inspect ./model --verify",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&verify, "verify", false, "re-read every payload and check digests")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("snapshot directory is required\n\nUsage: overture inspect <dir> [flags]")
			}
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument: %s", args[1])
			}
			if err := inspectSnapshot(os.Stdout, args[0], verify); err != nil {
				fmt.Fprintf(os.Stderr, "invalid snapshot: %v\n", err)
				return &cli.ExitError{Code: 2}
			}
			return nil
		},
	}
}

// snapshotHyper mirrors the hyperparameter fields of a snapshot's
// config.json.
type snapshotHyper struct {
	Dim        int     `json:"dim"`
	HiddenSize int     `json:"hidden_size"`
	Lambda     float64 `json:"lambda"`
	Nu         float64 `json:"nu"`
	TotalParam int     `json:"total_param"`
}

func inspectSnapshot(w io.Writer, dir string, verify bool) error {
	configData, err := os.ReadFile(filepath.Join(dir, neuralucb.ConfigFileName))
	if err != nil {
		return err
	}
	var hyper snapshotHyper
	if err := json.Unmarshal(configData, &hyper); err != nil {
		return fmt.Errorf("parse %s: %w", neuralucb.ConfigFileName, err)
	}

	fmt.Fprintf(w, "snapshot %s\n", dir)
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  dim\t%d\n", hyper.Dim)
	fmt.Fprintf(tw, "  hidden_size\t%d\n", hyper.HiddenSize)
	fmt.Fprintf(tw, "  lambda\t%g\n", hyper.Lambda)
	fmt.Fprintf(tw, "  nu\t%g\n", hyper.Nu)
	fmt.Fprintf(tw, "  total_param\t%d\n", hyper.TotalParam)
	tw.Flush()

	modelPath := filepath.Join(dir, neuralucb.ModelFileName)
	file, err := os.Open(modelPath)
	if err != nil {
		return err
	}
	index, err := tensor.ReadIndex(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", neuralucb.ModelFileName, err)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "TENSOR\tSHAPE\tCOMPRESSION\tRAW\tSTORED\tDIGEST\n")
	for _, entry := range index.Tensors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			entry.Name, formatShape(entry.Shape), entry.Compression,
			entry.RawSize, entry.CompressedSize, entry.Digest.String()[:12])
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d tensors, %d payload bytes\n", len(index.Tensors), index.PayloadSize())

	if verify {
		if _, err := tensor.ReadFile(modelPath); err != nil {
			return fmt.Errorf("verify payloads: %w", err)
		}
		if _, err := neuralucb.Load(dir); err != nil {
			return fmt.Errorf("verify agent state: %w", err)
		}
		fmt.Fprintf(w, "verify: %d payload digests match, agent state loads cleanly\n", len(index.Tensors))
	}
	return nil
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "x")
}
