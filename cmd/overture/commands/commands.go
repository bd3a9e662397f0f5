// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the overture CLI command tree: simulate,
// inspect, and version, wired into the cli framework's dispatch.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/overture/cmd/overture/cli"
	"github.com/bureau-foundation/overture/lib/version"
)

// Root builds and returns the complete overture CLI command tree.
func Root() *cli.Command {
	var showVersion bool

	root := &cli.Command{
		Name: "overture",
		Description: `Overture: online contextual bandit decision engine.

Train a NeuralUCB agent on streaming context/reward observations,
evaluate it against synthetic scenarios, and inspect saved snapshots.`,
		Subcommands: []*cli.Command{
			SimulateCommand(),
			InspectCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("overture %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run the default linear scenario",
				Command:     "overture simulate",
			},
			{
				Description: "Run a larger scenario and keep the trained agent",
				Command:     "overture simulate --rounds 2000 --arms 8 --save ./model",
			},
			{
				Description: "Describe a saved snapshot",
				Command:     "overture inspect ./model",
			},
			{
				Description: "Verify snapshot payload digests",
				Command:     "overture inspect ./model --verify",
			},
		},
	}
	root.Flags = func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("overture", pflag.ContinueOnError)
		flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
		return flagSet
	}
	root.Run = func(args []string) error {
		if showVersion {
			fmt.Printf("overture %s\n", version.Full())
			return nil
		}
		root.PrintHelp(os.Stderr)
		return fmt.Errorf("subcommand required")
	}
	return root
}
