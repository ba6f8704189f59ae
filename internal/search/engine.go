package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rulehunt/internal/core"
	"rulehunt/internal/fitness"
	"rulehunt/internal/store"
)

// ErrNonDeterministic signals that re-evaluating a candidate produced a
// different score. That is an internal invariant violation — a purity bug in
// stepping or reduction — so the run aborts rather than recovering.
var ErrNonDeterministic = errors.New("non-deterministic evaluation detected")

// determinismCheckInterval controls how often the engine re-evaluates a
// sampled candidate as a purity check.
const determinismCheckInterval = 16

// Summary reports what a search run accomplished.
type Summary struct {
	RunID       string
	Strategy    string
	Generations int
	Evaluated   int
	Stored      int
	BestRule    uint64
	BestScore   float64
	Cancelled   bool
}

// Engine drives a strategy: it dispatches candidate batches to a worker
// pool, persists qualifying results, feeds scores back to the strategy, and
// checkpoints progress after every incorporated generation. Candidates share
// nothing mutable, so evaluation needs no locking; the store is the single
// serialized resource.
type Engine struct {
	cfg        core.RunConfig
	strat      Strategy
	store      store.Store
	log        *zap.Logger
	newReducer fitness.ReducerFactory

	runID string
	seed  *core.Grid
	cache map[uint64]fitness.Result
}

// NewEngine wires a validated configuration to a strategy and a store.
func NewEngine(cfg core.RunConfig, strat Strategy, st store.Store, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	newReducer, err := fitness.NewReducer(cfg.Reducer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	seed, err := cfg.SeedGrid(cfg.RuleKindValue())
	if err != nil {
		return nil, err
	}
	runID := cfg.ResumeRunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Engine{
		cfg:        cfg,
		strat:      strat,
		store:      st,
		log:        log,
		newReducer: newReducer,
		runID:      runID,
		seed:       seed,
		cache:      make(map[uint64]fitness.Result),
	}, nil
}

// RunID returns the identity under which the run checkpoints.
func (e *Engine) RunID() string { return e.runID }

// Run executes the search until the strategy terminates or ctx is
// cancelled. Cancellation is not an error: the in-flight batch completes,
// its results are incorporated and checkpointed, and the summary marks the
// run resumable.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: e.runID, Strategy: e.strat.Name()}
	start := time.Now()

	e.log.Info("search run starting",
		zap.String("run_id", e.runID),
		zap.String("strategy", sum.Strategy),
		zap.String("kind", e.cfg.Kind),
		zap.Int64("seed", e.cfg.Seed),
		zap.Int("workers", e.cfg.Workers),
	)

	// ctx is only the stop signal between generations. A generation in
	// flight when it fires must still be persisted, reported, and
	// checkpointed, so all store writes run on the uncancellable context.
	drainCtx := context.WithoutCancel(ctx)

	if err := e.fastForward(drainCtx, &sum); err != nil {
		return sum, err
	}

	for !e.strat.Done() {
		select {
		case <-ctx.Done():
			sum.Cancelled = true
			e.log.Info("search run cancelled",
				zap.String("run_id", e.runID),
				zap.Int("generations", sum.Generations),
			)
			return sum, nil
		default:
		}

		batch := e.strat.NextBatch(e.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}

		results, err := e.evaluateBatch(drainCtx, batch)
		if err != nil {
			return sum, err
		}

		if sum.Generations%determinismCheckInterval == 0 {
			if err := e.verifyDeterminism(batch[0], results[0].Fitness); err != nil {
				e.log.Error("aborting run", zap.Error(err))
				return sum, err
			}
		}

		stored, err := e.persist(drainCtx, results)
		if err != nil {
			return sum, err
		}
		sum.Stored += stored

		// All of this generation's results reach the strategy before the
		// next batch is generated.
		e.strat.Report(results)
		sum.Generations++
		sum.Evaluated += len(results)
		for _, r := range results {
			if r.Fitness.Score > sum.BestScore {
				sum.BestScore = r.Fitness.Score
				sum.BestRule = r.Rule.Encode()
			}
		}

		if err := e.store.Checkpoint(drainCtx, e.runID, sum.Strategy, e.cfg.Seed, sum.Generations); err != nil {
			return sum, err
		}

		e.log.Debug("generation incorporated",
			zap.Int("generation", sum.Generations),
			zap.Int("batch", len(results)),
			zap.Float64("best", sum.BestScore),
		)
	}

	e.log.Info("search run finished",
		zap.String("run_id", e.runID),
		zap.Int("evaluated", sum.Evaluated),
		zap.Int("stored", sum.Stored),
		zap.Float64("best", sum.BestScore),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

// fastForward skips the generations a previous run under the same id already
// incorporated, so a resumed run continues the candidate stream instead of
// restarting it.
func (e *Engine) fastForward(ctx context.Context, sum *Summary) error {
	if e.cfg.ResumeRunID == "" {
		return nil
	}
	last, ok, err := e.store.LastCheckpoint(ctx, e.runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no checkpoint recorded for run %s", core.ErrConfig, e.runID)
	}
	r, resumable := e.strat.(Resumable)
	if !resumable {
		return fmt.Errorf("%w: strategy %q cannot resume from a checkpoint", core.ErrConfig, e.strat.Name())
	}
	for g := 0; g < last && !e.strat.Done(); g++ {
		r.Skip(e.cfg.BatchSize)
	}
	sum.Generations = last
	e.log.Info("resuming search run",
		zap.String("run_id", e.runID),
		zap.Int("generations", last),
	)
	return nil
}

// evaluateBatch scores a batch on the worker pool. Encodings already scored
// in this run are served from the memo cache, so duplicate candidates from
// guided search cost nothing.
func (e *Engine) evaluateBatch(ctx context.Context, batch []core.Rule) ([]Result, error) {
	type job struct {
		rule core.Rule
		enc  uint64
	}
	var jobs []job
	pending := make(map[uint64]struct{})
	for _, r := range batch {
		enc := r.Encode()
		if _, ok := e.cache[enc]; ok {
			continue
		}
		if _, ok := pending[enc]; ok {
			continue
		}
		pending[enc] = struct{}{}
		jobs = append(jobs, job{rule: r, enc: enc})
	}

	out := make([]fitness.Result, len(jobs))
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(e.cfg.Workers)
	for i, j := range jobs {
		eg.Go(func() error {
			res, err := fitness.Evaluate(j.rule, e.seed, e.cfg.Generations, e.newReducer)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate batch: %w", err)
	}

	for i, j := range jobs {
		e.cache[j.enc] = out[i]
	}
	results := make([]Result, len(batch))
	for i, r := range batch {
		results[i] = Result{Rule: r, Fitness: e.cache[r.Encode()]}
	}
	return results, nil
}

// persist writes qualifying results. Store failures are fatal for the run;
// the transactional put guarantees no partial rows survive them.
func (e *Engine) persist(ctx context.Context, results []Result) (int, error) {
	stored := 0
	written := make(map[uint64]struct{})
	for _, r := range results {
		if r.Fitness.Score < e.cfg.MinScore {
			continue
		}
		enc := r.Rule.Encode()
		if _, ok := written[enc]; ok {
			continue
		}
		written[enc] = struct{}{}
		if _, err := e.store.Put(ctx, store.SearchResult{
			Rule:        enc,
			Seed:        e.cfg.Seed,
			Generations: e.cfg.Generations,
			Score:       r.Fitness.Score,
			Outcome:     string(r.Fitness.Outcome),
		}); err != nil {
			return stored, fmt.Errorf("persist result: %w", err)
		}
		stored++
	}
	return stored, nil
}

// verifyDeterminism re-evaluates a sampled candidate and demands a
// byte-identical result.
func (e *Engine) verifyDeterminism(rule core.Rule, got fitness.Result) error {
	again, err := fitness.Evaluate(rule, e.seed, e.cfg.Generations, e.newReducer)
	if err != nil {
		return err
	}
	if again != got {
		return fmt.Errorf("%w: rule %s scored %v then %v", ErrNonDeterministic, rule, got.Score, again.Score)
	}
	return nil
}
