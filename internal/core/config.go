package core

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks rejected run configurations. Invalid values are never
// silently clamped.
var ErrConfig = errors.New("invalid run configuration")

// Strategy names a candidate-generation strategy for search mode.
type Strategy string

const (
	// StrategyEnumerate walks the declared encoding space in a fixed order.
	StrategyEnumerate Strategy = "enumerate"
	// StrategyRandom draws independent uniform encodings from the seed's
	// derived stream.
	StrategyRandom Strategy = "random"
	// StrategyGuided evolves a population of high scorers by mutation and
	// recombination.
	StrategyGuided Strategy = "guided"
)

// Valid reports whether the strategy names a supported implementation.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyEnumerate, StrategyRandom, StrategyGuided:
		return true
	}
	return false
}

// RunConfig carries the immutable parameters for one run. Every worker reads
// the same value; nothing mutates it after Validate passes.
type RunConfig struct {
	// Simulation.
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	Boundary    Boundary `yaml:"boundary"`
	Generations int      `yaml:"generations"`
	Seed        int64    `yaml:"seed"`
	Density     float64  `yaml:"density"`
	Pattern     string   `yaml:"pattern,omitempty"`

	// Interactive mode.
	Rule uint64 `yaml:"rule,omitempty"`
	TPS  int    `yaml:"tps"`

	// Search mode.
	Strategy     Strategy `yaml:"strategy"`
	Kind         string   `yaml:"kind"`
	Workers      int      `yaml:"workers"`
	BatchSize    int      `yaml:"batch_size"`
	Candidates   int      `yaml:"candidates"`
	Rounds       int      `yaml:"rounds"`
	Population   int      `yaml:"population"`
	Stagnation   int      `yaml:"stagnation"`
	MutationRate float64  `yaml:"mutation_rate"`
	Reducer      string   `yaml:"reducer"`
	StorePath    string   `yaml:"store"`
	MinScore     float64  `yaml:"min_score"`
	// ResumeRunID continues a checkpointed run under its original id instead
	// of starting a fresh one.
	ResumeRunID string `yaml:"resume_run,omitempty"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() RunConfig {
	return RunConfig{
		Width:        64,
		Height:       64,
		Boundary:     BoundaryWrap,
		Generations:  200,
		Seed:         1337,
		Density:      0.35,
		TPS:          30,
		Strategy:     StrategyRandom,
		Kind:         KindTotalistic.String(),
		Workers:      runtime.NumCPU(),
		BatchSize:    64,
		Candidates:   4096,
		Rounds:       40,
		Population:   32,
		Stagnation:   8,
		MutationRate: 0.08,
		Reducer:      "complexity",
		StorePath:    "results.db3",
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (RunConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the run could not execute faithfully.
func (c RunConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrConfig, c.Width, c.Height)
	}
	if !c.Boundary.Valid() {
		return fmt.Errorf("%w: unknown boundary policy %q", ErrConfig, c.Boundary)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("%w: generation budget must be positive, got %d", ErrConfig, c.Generations)
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("%w: fill density must be in [0,1], got %g", ErrConfig, c.Density)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("%w: ticks per second must be positive, got %d", ErrConfig, c.TPS)
	}
	if !c.Strategy.Valid() {
		return fmt.Errorf("%w: unknown search strategy %q", ErrConfig, c.Strategy)
	}
	if _, err := ParseRuleKind(c.Kind); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: worker count must be positive, got %d", ErrConfig, c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrConfig, c.BatchSize)
	}
	if c.Strategy == StrategyRandom && c.Candidates <= 0 {
		return fmt.Errorf("%w: random search needs a positive candidate budget", ErrConfig)
	}
	if c.Strategy == StrategyGuided {
		if c.Population < 2 {
			return fmt.Errorf("%w: guided search needs a population of at least 2, got %d", ErrConfig, c.Population)
		}
		if c.Rounds <= 0 {
			return fmt.Errorf("%w: guided search needs a positive round budget, got %d", ErrConfig, c.Rounds)
		}
		if c.MutationRate <= 0 || c.MutationRate > 1 {
			return fmt.Errorf("%w: mutation rate must be in (0,1], got %g", ErrConfig, c.MutationRate)
		}
	}
	// Guided candidate streams depend on reported scores, which are not
	// replayable from checkpoints.
	if c.ResumeRunID != "" && c.Strategy == StrategyGuided {
		return fmt.Errorf("%w: guided search runs cannot resume from a checkpoint", ErrConfig)
	}
	return nil
}

// RuleKindValue resolves the configured rule kind. Validate must have passed.
func (c RunConfig) RuleKindValue() RuleKind {
	kind, _ := ParseRuleKind(c.Kind)
	return kind
}

// SeedGrid builds the evaluation seed grid for the given rule kind. 1D rule
// families run on a height-1 window regardless of the configured height.
func (c RunConfig) SeedGrid(kind RuleKind) (*Grid, error) {
	h := c.Height
	if kind == KindElementary {
		h = 1
	}
	if c.Pattern != "" {
		return PatternGrid(c.Pattern, c.Width, h, c.Boundary)
	}
	return RandomGrid(c.Width, h, c.Boundary, c.Density, c.Seed)
}
