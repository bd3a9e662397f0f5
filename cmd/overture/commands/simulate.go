// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/overture/cmd/overture/cli"
	"github.com/bureau-foundation/overture/lib/scenario"
)

// SimulateCommand returns the "simulate" command: run the agent against
// a synthetic scenario and report regret against a uniform baseline.
func SimulateCommand() *cli.Command {
	cfg := scenario.Default()
	var (
		configPath string
		saveDir    string
		flagSet    *pflag.FlagSet
	)

	return &cli.Command{
		Name:    "simulate",
		Summary: "Run the agent against a synthetic scenario",
		Description: `Run the NeuralUCB agent against a synthetic bandit scenario.

Each round the environment draws one context per arm, the agent picks
an arm by UCB score, and the observed noisy reward trains the agent in
place. A uniform-random baseline is scored on the same slates. Regret
is measured against the oracle arm using clean rewards.

The command exits 1 when the agent fails to accumulate strictly less
regret than the baseline, so CI can gate on it.`,
		Usage: "overture simulate [flags]",
		Examples: []cli.Example{
			{
				Description: "Run the default 500-round linear scenario",
				Command:     "overture simulate",
			},
			{
				Description: "Harder scenario: more arms, threshold rewards",
				Command:     "overture simulate --rounds 2000 --arms 8 --reward-model threshold",
			},
			{
				Description: "Load a scenario file, overriding its seed",
				Command:     "overture simulate --config scenario.yaml --seed 7",
			},
			{
				Description: "Keep the trained agent for later inspection",
				Command:     "overture simulate --save ./model",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("simulate", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "YAML scenario file (explicit flags override its values)")
			flagSet.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "number of decision rounds")
			flagSet.IntVar(&cfg.Arms, "arms", cfg.Arms, "arms per decision slate")
			flagSet.IntVar(&cfg.Dim, "dim", cfg.Dim, "context vector width")
			flagSet.IntVar(&cfg.HiddenSize, "hidden-size", cfg.HiddenSize, "hidden units in the value network")
			flagSet.Float64Var(&cfg.Lambda, "lambda", cfg.Lambda, "ridge prior seeding the confidence diagonal")
			flagSet.Float64Var(&cfg.Nu, "nu", cfg.Nu, "exploration strength")
			flagSet.StringVar((*string)(&cfg.RewardModel), "reward-model", string(cfg.RewardModel), "reward model: linear or threshold")
			flagSet.Float64Var(&cfg.NoiseStdDev, "noise", cfg.NoiseStdDev, "standard deviation of gaussian reward noise")
			flagSet.Int64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG seed (0 derives one from the clock)")
			flagSet.StringVar(&saveDir, "save", "", "directory for the trained agent snapshot")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if configPath != "" {
				fileCfg, err := scenario.LoadFile(configPath)
				if err != nil {
					return err
				}
				applyFileDefaults(cfg, fileCfg, flagSet)
			}

			logger := cli.NewCommandLogger().With("command", "simulate")
			runner, err := scenario.NewRunner(cfg, logger)
			if err != nil {
				return err
			}
			result, err := runner.Run()
			if err != nil {
				return err
			}

			printResult(os.Stdout, cfg, result)

			if saveDir != "" {
				if err := runner.Agent().Save(saveDir); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				fmt.Printf("\nsnapshot saved to %s\n", saveDir)
			}

			if !result.BeatsBaseline() {
				fmt.Fprintln(os.Stderr, "agent did not beat the uniform baseline")
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// applyFileDefaults fills cfg from the loaded scenario file for every
// knob the user did not set explicitly on the command line.
func applyFileDefaults(cfg, file *scenario.Scenario, flagSet *pflag.FlagSet) {
	if !flagSet.Changed("rounds") {
		cfg.Rounds = file.Rounds
	}
	if !flagSet.Changed("arms") {
		cfg.Arms = file.Arms
	}
	if !flagSet.Changed("dim") {
		cfg.Dim = file.Dim
	}
	if !flagSet.Changed("hidden-size") {
		cfg.HiddenSize = file.HiddenSize
	}
	if !flagSet.Changed("lambda") {
		cfg.Lambda = file.Lambda
	}
	if !flagSet.Changed("nu") {
		cfg.Nu = file.Nu
	}
	if !flagSet.Changed("reward-model") {
		cfg.RewardModel = file.RewardModel
	}
	if !flagSet.Changed("noise") {
		cfg.NoiseStdDev = file.NoiseStdDev
	}
	if !flagSet.Changed("seed") {
		cfg.Seed = file.Seed
	}
}

// printResult writes the scenario header, the per-policy regret table,
// and the chosen-arm histogram.
func printResult(w io.Writer, cfg *scenario.Scenario, result *scenario.Result) {
	rounds := float64(result.Rounds)

	fmt.Fprintf(w, "scenario: %s rewards, %d rounds, %d arms, dim %d, noise %.3g, seed %d\n\n",
		cfg.RewardModel, cfg.Rounds, cfg.Arms, cfg.Dim, cfg.NoiseStdDev, cfg.Seed)

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "POLICY\tREGRET\tREGRET/ROUND\tMEAN REWARD\n")
	fmt.Fprintf(tw, "agent\t%.4f\t%.4f\t%.4f\n",
		result.AgentRegret, result.AgentRegret/rounds, result.AgentReward/rounds)
	fmt.Fprintf(tw, "uniform\t%.4f\t%.4f\t%.4f\n",
		result.BaselineRegret, result.BaselineRegret/rounds, result.BaselineReward/rounds)
	tw.Flush()

	fmt.Fprintf(w, "\narm pulls:")
	for arm, count := range result.ArmCounts {
		fmt.Fprintf(w, " %d:%d", arm, count)
	}
	fmt.Fprintln(w)
}
