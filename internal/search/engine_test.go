package search

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"rulehunt/internal/core"
	"rulehunt/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func engineConfig() core.RunConfig {
	cfg := core.DefaultConfig()
	cfg.Width = 8
	cfg.Height = 8
	cfg.Generations = 16
	cfg.Workers = 4
	cfg.BatchSize = 16
	cfg.Kind = "elementary"
	cfg.Strategy = core.StrategyRandom
	cfg.Candidates = 48
	return cfg
}

func newTestEngine(t *testing.T, cfg core.RunConfig, st store.Store) *Engine {
	t.Helper()
	strat, err := New(cfg)
	require.NoError(t, err)
	engine, err := NewEngine(cfg, strat, st, nil)
	require.NoError(t, err)
	return engine
}

func TestEngineRunEvaluatesAndStores(t *testing.T) {
	cfg := engineConfig()
	st := store.NewMemoryStore()
	engine := newTestEngine(t, cfg, st)

	sum, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, sum.Cancelled)
	assert.Equal(t, 48, sum.Evaluated)
	assert.Equal(t, 3, sum.Generations)
	assert.Greater(t, sum.BestScore, 0.0)

	// Duplicate draws collapse to one row each.
	assert.LessOrEqual(t, st.Len(), 48)
	assert.GreaterOrEqual(t, sum.Stored, st.Len())

	gen, ok, err := st.LastCheckpoint(context.Background(), sum.RunID)
	require.NoError(t, err)
	require.True(t, ok, "a finished run leaves a checkpoint")
	assert.Equal(t, sum.Generations, gen)
}

func TestEngineRunIsDeterministic(t *testing.T) {
	cfg := engineConfig()

	run := func() Summary {
		engine := newTestEngine(t, cfg, store.NewMemoryStore())
		sum, err := engine.Run(context.Background())
		require.NoError(t, err)
		return sum
	}

	first := run()
	second := run()
	assert.Equal(t, first.BestRule, second.BestRule)
	assert.Equal(t, first.BestScore, second.BestScore)
	assert.Equal(t, first.Evaluated, second.Evaluated)
	assert.Equal(t, first.Stored, second.Stored)
}

func TestEngineCancellationIsNotAnError(t *testing.T) {
	cfg := engineConfig()
	engine := newTestEngine(t, cfg, store.NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := engine.Run(ctx)
	require.NoError(t, err, "cancellation must not surface as an error")
	assert.True(t, sum.Cancelled)
	assert.Zero(t, sum.Evaluated)
}

// cancelOnBatch cancels the run context while its first batch is in flight,
// the shape a SIGINT arriving mid-generation takes.
type cancelOnBatch struct {
	Strategy
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelOnBatch) NextBatch(n int) []core.Rule {
	batch := c.Strategy.NextBatch(n)
	c.once.Do(c.cancel)
	return batch
}

func TestEngineDrainsBatchOnCancellation(t *testing.T) {
	cfg := engineConfig()
	st, err := store.Open(filepath.Join(t.TempDir(), "results.db3"), nil)
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strat, err := New(cfg)
	require.NoError(t, err)
	engine, err := NewEngine(cfg, &cancelOnBatch{Strategy: strat, cancel: cancel}, st, nil)
	require.NoError(t, err)

	sum, err := engine.Run(ctx)
	require.NoError(t, err, "cancellation mid-batch must not surface as an error")
	assert.True(t, sum.Cancelled)
	assert.Equal(t, cfg.BatchSize, sum.Evaluated, "the in-flight batch drains before stopping")
	assert.Equal(t, 1, sum.Generations)

	rows, err := st.Query(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.NotEmpty(t, rows, "the drained batch's results must be stored")

	gen, ok, err := st.LastCheckpoint(context.Background(), sum.RunID)
	require.NoError(t, err)
	require.True(t, ok, "a cancelled run must leave a checkpoint")
	assert.Equal(t, 1, gen)
}

func TestEngineResumeContinuesCandidateStream(t *testing.T) {
	cfg := engineConfig()
	cfg.Strategy = core.StrategyEnumerate
	cfg.Candidates = 20
	cfg.BatchSize = 8
	st := store.NewMemoryStore()
	ctx := context.Background()

	// A previous run under this id incorporated one generation.
	require.NoError(t, st.Checkpoint(ctx, "run-1", "enumerate", cfg.Seed, 1))

	cfg.ResumeRunID = "run-1"
	engine := newTestEngine(t, cfg, st)
	sum, err := engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, 12, sum.Evaluated, "the checkpointed generation is skipped")
	assert.Equal(t, 3, sum.Generations)

	// Nothing from the skipped prefix of the walk is stored.
	rows, err := st.Query(ctx, store.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	base := uint64(core.KindElementary) << 56
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Rule, base|8)
	}
}

func TestEngineResumeOfFinishedRunIsNoOp(t *testing.T) {
	cfg := engineConfig()
	st := store.NewMemoryStore()
	first := newTestEngine(t, cfg, st)
	sum1, err := first.Run(context.Background())
	require.NoError(t, err)

	cfg.ResumeRunID = sum1.RunID
	second := newTestEngine(t, cfg, st)
	sum2, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum2.Evaluated)
	assert.Equal(t, sum1.Generations, sum2.Generations)
}

func TestEngineResumeRequiresCheckpoint(t *testing.T) {
	cfg := engineConfig()
	cfg.ResumeRunID = "never-ran"
	engine := newTestEngine(t, cfg, store.NewMemoryStore())
	_, err := engine.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestEngineMinScoreFiltersStorage(t *testing.T) {
	cfg := engineConfig()
	cfg.MinScore = 2.0 // above the reducer's score range
	st := store.NewMemoryStore()
	engine := newTestEngine(t, cfg, st)

	sum, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 48, sum.Evaluated)
	assert.Zero(t, sum.Stored)
	assert.Zero(t, st.Len())
}

func TestEngineGuidedRunTerminates(t *testing.T) {
	cfg := engineConfig()
	cfg.Strategy = core.StrategyGuided
	cfg.Population = 8
	cfg.Rounds = 4
	cfg.Stagnation = 0
	cfg.BatchSize = 8
	st := store.NewMemoryStore()
	engine := newTestEngine(t, cfg, st)

	sum, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sum.Cancelled)
	// One seeding generation plus four offspring rounds.
	assert.Equal(t, 5, sum.Generations)
}
