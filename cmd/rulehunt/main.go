package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rulehunt/internal/core"
)

var (
	// Global flags.
	verbose    bool
	configPath string

	// Run configuration overrides.
	flagWidth       int
	flagHeight      int
	flagBoundary    string
	flagGenerations int
	flagSeed        int64
	flagDensity     float64
	flagPattern     string
	flagStore       string

	// Logger shared by all commands.
	logger *zap.Logger
)

// rootCmd runs the interactive single-automaton mode by default.
var rootCmd = &cobra.Command{
	Use:   "rulehunt",
	Short: "rulehunt - cellular automaton rule search",
	Long: `rulehunt simulates cellular automata and searches rule space for
emergent behavior.

Without a subcommand it runs one automaton interactively (build with the
'ebiten' tag for the graphical viewer; headless builds stream text frames).
Use 'rulehunt search' to evaluate rule candidates in bulk and persist the
interesting ones.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}
		return runInteractive(cmd.Context(), cfg)
	},
	SilenceUsage: true,
}

// loadRunConfig assembles the run configuration: defaults, then the YAML
// file if given, then explicit flag overrides.
func loadRunConfig(cmd *cobra.Command) (core.RunConfig, error) {
	cfg := core.DefaultConfig()
	if configPath != "" {
		loaded, err := core.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = flagWidth
	}
	if flags.Changed("height") {
		cfg.Height = flagHeight
	}
	if flags.Changed("boundary") {
		cfg.Boundary = core.Boundary(flagBoundary)
	}
	if flags.Changed("generations") {
		cfg.Generations = flagGenerations
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("density") {
		cfg.Density = flagDensity
	}
	if flags.Changed("pattern") {
		cfg.Pattern = flagPattern
	}
	if flags.Changed("store") {
		cfg.StorePath = flagStore
	}
	return cfg, cfg.Validate()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&configPath, "config", "", "path to a YAML run configuration")
	pf.IntVar(&flagWidth, "width", 64, "grid width")
	pf.IntVar(&flagHeight, "height", 64, "grid height")
	pf.StringVar(&flagBoundary, "boundary", string(core.BoundaryWrap), "boundary policy: wrap, fixed, truncate")
	pf.IntVar(&flagGenerations, "generations", 200, "generation budget per evaluation")
	pf.Int64Var(&flagSeed, "seed", 1337, "randomness seed for reproducible runs")
	pf.Float64Var(&flagDensity, "density", 0.35, "random seed-grid fill density")
	pf.StringVar(&flagPattern, "pattern", "", "named seed pattern instead of random fill")
	pf.StringVar(&flagStore, "store", "results.db3", "result store path")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(resultsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
