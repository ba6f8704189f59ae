package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rulehunt/internal/app"
	"rulehunt/internal/core"
)

var (
	flagStrategy   string
	flagKind       string
	flagReducer    string
	flagWorkers    int
	flagBatch      int
	flagCandidates int
	flagRounds     int
	flagPopulation int
	flagStagnation int
	flagMutation   float64
	flagMinScore   float64
	flagResume     string
)

// searchCmd evaluates rule candidates in bulk and persists qualifying
// results to the store.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search rule space for emergent behavior",
	Long: `Search generates rule candidates with the selected strategy, scores
each by simulating from the configured seed grid, and stores results that
clear the score threshold. SIGINT stops gracefully: the in-flight batch
finishes, a checkpoint is written, and the run can be continued later with
--resume and the printed run id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSearchConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		summary, err := app.RunSearch(ctx, cfg, logger)
		if err != nil {
			return err
		}

		state := "finished"
		if summary.Cancelled {
			state = "cancelled (resumable)"
		}
		fmt.Printf("Run %s %s: %d generations, %d evaluated, %d stored\n",
			summary.RunID, state, summary.Generations, summary.Evaluated, summary.Stored)
		if summary.Evaluated > 0 {
			fmt.Printf("Best rule %#x score %.4f\n", summary.BestRule, summary.BestScore)
		}
		return nil
	},
}

func loadSearchConfig(cmd *cobra.Command) (core.RunConfig, error) {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = core.Strategy(flagStrategy)
	}
	if flags.Changed("kind") {
		cfg.Kind = flagKind
	}
	if flags.Changed("reducer") {
		cfg.Reducer = flagReducer
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if flags.Changed("batch") {
		cfg.BatchSize = flagBatch
	}
	if flags.Changed("candidates") {
		cfg.Candidates = flagCandidates
	}
	if flags.Changed("rounds") {
		cfg.Rounds = flagRounds
	}
	if flags.Changed("population") {
		cfg.Population = flagPopulation
	}
	if flags.Changed("stagnation") {
		cfg.Stagnation = flagStagnation
	}
	if flags.Changed("mutation-rate") {
		cfg.MutationRate = flagMutation
	}
	if flags.Changed("min-score") {
		cfg.MinScore = flagMinScore
	}
	if flags.Changed("resume") {
		cfg.ResumeRunID = flagResume
	}
	return cfg, cfg.Validate()
}

func init() {
	fs := searchCmd.Flags()
	fs.StringVar(&flagStrategy, "strategy", string(core.StrategyRandom), "candidate strategy: enumerate, random, guided")
	fs.StringVar(&flagKind, "kind", "totalistic", "rule family: totalistic, elementary")
	fs.StringVar(&flagReducer, "reducer", "complexity", "trajectory reducer: complexity, variance")
	fs.IntVar(&flagWorkers, "workers", 0, "parallel evaluation workers (default: all CPUs)")
	fs.IntVar(&flagBatch, "batch", 64, "candidates dispatched per generation")
	fs.IntVar(&flagCandidates, "candidates", 4096, "candidate budget for enumerate/random")
	fs.IntVar(&flagRounds, "rounds", 40, "offspring rounds for guided search")
	fs.IntVar(&flagPopulation, "population", 32, "population size for guided search")
	fs.IntVar(&flagStagnation, "stagnation", 8, "rounds without improvement before stopping (0 disables)")
	fs.Float64Var(&flagMutation, "mutation-rate", 0.08, "per-bit mutation probability")
	fs.Float64Var(&flagMinScore, "min-score", 0, "minimum score a result needs to be stored")
	fs.StringVar(&flagResume, "resume", "", "run id of a checkpointed run to continue")
}
