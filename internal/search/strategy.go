// Package search generates rule candidates and drives their parallel
// evaluation. Strategies decide what to try next; the engine decides how
// fast it gets tried. Neither side crosses into the other's job.
package search

import (
	"fmt"

	"rulehunt/internal/core"
	"rulehunt/internal/fitness"
)

// Result pairs a candidate with its evaluation outcome.
type Result struct {
	Rule    core.Rule
	Fitness fitness.Result
}

// Strategy produces batches of rule candidates and absorbs scored results.
// NextBatch and Report are always called from a single goroutine, strictly
// alternating: all results of one batch are reported before the next batch
// is generated, which keeps guided evolution reproducible under a fixed
// seed regardless of worker count.
type Strategy interface {
	Name() string
	// NextBatch returns up to n decodable candidates. An empty batch means
	// the strategy is exhausted.
	NextBatch(n int) []core.Rule
	// Report feeds scored results back, in the order NextBatch issued them.
	Report(results []Result)
	// Done reports whether the strategy has reached a terminal state.
	Done() bool
}

// Resumable is implemented by strategies whose candidate stream does not
// depend on reported scores. Skip advances the stream exactly as one
// NextBatch(n) call would, without materializing the candidates, so a
// resumed run continues where its checkpoint left off.
type Resumable interface {
	Skip(n int)
}

// New builds the strategy selected by the configuration. The RNG streams are
// derived from the run seed, so identical configurations generate identical
// candidate sequences.
func New(cfg core.RunConfig) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind := cfg.RuleKindValue()
	rng := core.NewRNG(cfg.Seed)

	switch cfg.Strategy {
	case core.StrategyEnumerate:
		return NewEnumerative(kind, uint64(cfg.Candidates)), nil
	case core.StrategyRandom:
		return NewRandom(kind, rng.Derive(candidateStream), cfg.Candidates), nil
	case core.StrategyGuided:
		return NewGuided(GuidedConfig{
			Kind:         kind,
			RNG:          rng.Derive(candidateStream),
			Population:   cfg.Population,
			Rounds:       cfg.Rounds,
			Stagnation:   cfg.Stagnation,
			MutationRate: cfg.MutationRate,
		}), nil
	}
	return nil, fmt.Errorf("unknown search strategy %q", cfg.Strategy)
}

// Stream labels for RNG derivation. Candidate generation never shares a
// stream with grid seeding.
const (
	candidateStream = 0x9e3779b97f4a7c15
)
