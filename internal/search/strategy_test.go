package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulehunt/internal/core"
	"rulehunt/internal/fitness"
)

func TestEnumerativeOrderAndBudget(t *testing.T) {
	e := NewEnumerative(core.KindElementary, 10)

	batch := e.NextBatch(4)
	require.Len(t, batch, 4)
	for i, r := range batch {
		assert.Equal(t, uint64(core.KindElementary)<<56|uint64(i), r.Encode())
	}

	batch = e.NextBatch(100)
	assert.Len(t, batch, 6, "budget bounds the walk")
	assert.True(t, e.Done())
	assert.Empty(t, e.NextBatch(4))
}

func TestEnumerativeFullSpace(t *testing.T) {
	e := NewEnumerative(core.KindElementary, 0)

	total := 0
	for !e.Done() {
		total += len(e.NextBatch(64))
	}
	assert.Equal(t, 256, total)
}

func TestRandomStrategyDeterminism(t *testing.T) {
	draw := func() []core.Rule {
		rng := core.NewRNG(21).Derive(candidateStream)
		s := NewRandom(core.KindTotalistic, rng, 32)
		var all []core.Rule
		for !s.Done() {
			all = append(all, s.NextBatch(10)...)
		}
		return all
	}

	first := draw()
	second := draw()
	require.Len(t, first, 32)
	assert.Equal(t, first, second, "same seed must draw the same candidates")
}

func TestEnumerativeSkip(t *testing.T) {
	e := NewEnumerative(core.KindElementary, 10)
	e.Skip(4)

	batch := e.NextBatch(100)
	require.Len(t, batch, 6)
	assert.Equal(t, uint64(core.KindElementary)<<56|4, batch[0].Encode())

	e.Skip(5)
	assert.True(t, e.Done(), "skipping past the budget exhausts the walk")
}

func TestRandomSkipAlignsWithNextBatch(t *testing.T) {
	a := NewRandom(core.KindTotalistic, core.NewRNG(9).Derive(candidateStream), 30)
	b := NewRandom(core.KindTotalistic, core.NewRNG(9).Derive(candidateStream), 30)

	a.NextBatch(10)
	b.Skip(10)

	assert.Equal(t, a.NextBatch(20), b.NextBatch(20), "skipped draws must match dispatched draws")
	assert.Equal(t, a.Done(), b.Done())
}

func TestNewResolvesStrategies(t *testing.T) {
	for _, strat := range []core.Strategy{core.StrategyEnumerate, core.StrategyRandom, core.StrategyGuided} {
		cfg := core.DefaultConfig()
		cfg.Strategy = strat
		s, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, string(strat), s.Name())
	}

	cfg := core.DefaultConfig()
	cfg.Strategy = "exhaustive"
	_, err := New(cfg)
	assert.Error(t, err)
}

func scoreBatch(batch []core.Rule, score func(core.Rule) float64) []Result {
	results := make([]Result, len(batch))
	for i, r := range batch {
		results[i] = Result{Rule: r, Fitness: fitness.Result{Score: score(r)}}
	}
	return results
}

func TestGuidedSeedsThenBreeds(t *testing.T) {
	g := NewGuided(GuidedConfig{
		Kind:         core.KindElementary,
		RNG:          core.NewRNG(5).Derive(candidateStream),
		Population:   8,
		Rounds:       3,
		MutationRate: 0.1,
	})

	// The seeding phase draws exactly the missing population.
	batch := g.NextBatch(64)
	require.Len(t, batch, 8)
	g.Report(scoreBatch(batch, func(core.Rule) float64 { return 0.5 }))

	for round := 0; round < 3; round++ {
		require.False(t, g.Done())
		batch = g.NextBatch(4)
		require.Len(t, batch, 4)
		for _, r := range batch {
			_, err := core.DecodeRule(r.Encode())
			require.NoError(t, err, "offspring must stay decodable")
		}
		g.Report(scoreBatch(batch, func(core.Rule) float64 { return 0.1 }))
	}
	assert.True(t, g.Done(), "round budget exhausts the strategy")

	assert.Len(t, g.population, 8, "population stays truncated to its size")
}

func TestGuidedStagnationCutoff(t *testing.T) {
	g := NewGuided(GuidedConfig{
		Kind:         core.KindElementary,
		RNG:          core.NewRNG(5).Derive(candidateStream),
		Population:   4,
		Rounds:       100,
		Stagnation:   2,
		MutationRate: 0.1,
	})

	g.Report(scoreBatch(g.NextBatch(4), func(core.Rule) float64 { return 0.9 }))

	rounds := 0
	for !g.Done() {
		g.Report(scoreBatch(g.NextBatch(4), func(core.Rule) float64 { return 0.1 }))
		rounds++
	}
	assert.Equal(t, 2, rounds, "two rounds without improvement end the search")
}

func TestSortMembersTieBreaksOnEncoding(t *testing.T) {
	low := core.NewElementary(30)
	high := core.NewElementary(110)
	ms := []member{
		{rule: high, score: 0.5},
		{rule: low, score: 0.5},
		{rule: core.NewElementary(1), score: 0.9},
	}
	sortMembers(ms)

	assert.Equal(t, 0.9, ms[0].score)
	assert.Equal(t, low, ms[1].rule, "equal scores rank the lower encoding first")
	assert.Equal(t, high, ms[2].rule)
}

func TestMutateAlwaysChangesPayload(t *testing.T) {
	g := NewGuided(GuidedConfig{
		Kind:         core.KindTotalistic,
		RNG:          core.NewRNG(11).Derive(candidateStream),
		Population:   4,
		Rounds:       1,
		MutationRate: 0.01,
	})
	enc := core.Life().Encode()
	for i := 0; i < 200; i++ {
		mutated := g.mutate(enc)
		assert.NotEqual(t, enc, mutated)
		_, err := core.DecodeRule(mutated)
		require.NoError(t, err)
	}
}
