package search

import (
	"math/bits"
	"sort"

	"rulehunt/internal/core"
)

// GuidedConfig parameterizes the population-based strategy.
type GuidedConfig struct {
	Kind core.RuleKind
	RNG  *core.RNG
	// Population is the number of rules kept between rounds.
	Population int
	// Rounds bounds the number of offspring generations.
	Rounds int
	// Stagnation ends the search after this many rounds without a new best
	// score (0 disables the cut-off).
	Stagnation int
	// MutationRate is the per-bit flip probability applied to offspring.
	MutationRate float64
}

type member struct {
	rule  core.Rule
	score float64
}

// Guided evolves a working population of high-scoring rules. Offspring are
// produced by bit-flip mutation and uniform crossover of tournament-selected
// parents; each round's results replace the worst population members. Ties
// on score rank the lower canonical encoding first, so evolution is
// deterministic for a fixed seed and worker count.
type Guided struct {
	cfg        GuidedConfig
	population []member

	round        int
	sinceImprove int
	best         float64
	seeded       bool
	finished     bool
}

var _ Strategy = (*Guided)(nil)

// NewGuided builds the guided strategy.
func NewGuided(cfg GuidedConfig) *Guided {
	return &Guided{cfg: cfg}
}

// Name identifies the strategy.
func (g *Guided) Name() string { return "guided" }

// NextBatch returns random rules until the initial population is filled,
// then offspring of the current population.
func (g *Guided) NextBatch(n int) []core.Rule {
	if g.finished {
		return nil
	}
	if !g.seeded {
		missing := g.cfg.Population - len(g.population)
		if n > missing {
			n = missing
		}
		batch := make([]core.Rule, 0, n)
		for len(batch) < n {
			rule, err := core.RandomRule(g.cfg.Kind, g.cfg.RNG)
			if err != nil {
				break
			}
			batch = append(batch, rule)
		}
		return batch
	}

	batch := make([]core.Rule, 0, n)
	for len(batch) < n {
		batch = append(batch, g.offspring())
	}
	return batch
}

// Report merges a scored batch into the population and advances the round.
func (g *Guided) Report(results []Result) {
	for _, r := range results {
		g.population = append(g.population, member{rule: r.Rule, score: r.Fitness.Score})
	}
	sortMembers(g.population)

	if !g.seeded {
		if len(g.population) >= g.cfg.Population {
			g.seeded = true
			g.best = g.population[0].score
		}
		return
	}

	if len(g.population) > g.cfg.Population {
		g.population = g.population[:g.cfg.Population]
	}
	g.round++

	if top := g.population[0].score; top > g.best {
		g.best = top
		g.sinceImprove = 0
	} else {
		g.sinceImprove++
	}

	if g.round >= g.cfg.Rounds {
		g.finished = true
	}
	if g.cfg.Stagnation > 0 && g.sinceImprove >= g.cfg.Stagnation {
		g.finished = true
	}
}

// Done reports whether the round budget or stagnation cut-off was hit.
func (g *Guided) Done() bool { return g.finished }

// Best returns the current best member, if the population is seeded.
func (g *Guided) Best() (core.Rule, float64, bool) {
	if len(g.population) == 0 {
		return core.Rule{}, 0, false
	}
	return g.population[0].rule, g.population[0].score, true
}

// offspring produces one candidate by crossover and/or mutation of
// tournament-selected parents. The result always decodes: operators touch
// only payload bits.
func (g *Guided) offspring() core.Rule {
	a := g.tournament()
	enc := a.Encode()
	if g.cfg.RNG.Bool() {
		b := g.tournament()
		enc = g.crossover(enc, b.Encode())
	}
	enc = g.mutate(enc)
	rule, err := core.DecodeRule(enc)
	if err != nil {
		// Operators preserve the kind tag and payload width, so this is
		// unreachable; fall back to the parent rather than propagate.
		return a
	}
	return rule
}

// tournament picks the better of two uniformly drawn members, preferring
// the lower encoding on a score tie.
func (g *Guided) tournament() core.Rule {
	a := g.population[g.cfg.RNG.IntN(len(g.population))]
	b := g.population[g.cfg.RNG.IntN(len(g.population))]
	if b.score > a.score {
		return b.rule
	}
	if b.score == a.score && b.rule.Encode() < a.rule.Encode() {
		return b.rule
	}
	return a.rule
}

func (g *Guided) payloadMask() uint64 {
	return uint64(1)<<g.cfg.Kind.PayloadBits() - 1
}

// crossover mixes two parent payloads with a uniform random mask.
func (g *Guided) crossover(a, b uint64) uint64 {
	mask := g.cfg.RNG.Uint64() & g.payloadMask()
	return (a & mask) | (b &^ mask)
}

// mutate flips payload bits independently at the configured rate, with at
// least one flip so offspring never equal their parent.
func (g *Guided) mutate(enc uint64) uint64 {
	width := g.cfg.Kind.PayloadBits()
	var flips uint64
	for i := 0; i < width; i++ {
		if g.cfg.RNG.Float64() < g.cfg.MutationRate {
			flips |= uint64(1) << i
		}
	}
	if bits.OnesCount64(flips) == 0 {
		flips = uint64(1) << g.cfg.RNG.IntN(width)
	}
	return enc ^ flips
}

func sortMembers(ms []member) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].score != ms[j].score {
			return ms[i].score > ms[j].score
		}
		return ms[i].rule.Encode() < ms[j].rule.Encode()
	})
}
