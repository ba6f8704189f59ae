package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rulehunt/internal/core"
	"rulehunt/internal/search"
	"rulehunt/internal/store"
)

// RunInteractive steps a single automaton at the configured tick rate and
// streams grid snapshots. Each snapshot is an independent copy, so the
// consumer may hold or mutate it freely. The channel closes when ctx is
// cancelled; the first value is the seed state.
func RunInteractive(ctx context.Context, cfg core.RunConfig) (<-chan *core.Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	auto, err := NewAutomaton(cfg)
	if err != nil {
		return nil, err
	}

	grids := make(chan *core.Grid)
	go func() {
		defer close(grids)

		ticker := time.NewTicker(time.Second / time.Duration(cfg.TPS))
		defer ticker.Stop()

		select {
		case grids <- auto.Grid().Clone():
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := auto.Step(); err != nil {
					return
				}
				select {
				case grids <- auto.Grid().Clone():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return grids, nil
}

// RunSearch evaluates rule candidates in bulk and persists qualifying
// results. Cancellation drains the in-flight batch, checkpoints, and
// returns a resumable summary without error.
func RunSearch(ctx context.Context, cfg core.RunConfig, log *zap.Logger) (search.Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return search.Summary{}, err
	}

	strat, err := search.New(cfg)
	if err != nil {
		return search.Summary{}, err
	}

	st, err := store.Open(cfg.StorePath, log)
	if err != nil {
		return search.Summary{}, err
	}
	defer st.Close()

	engine, err := search.NewEngine(cfg, strat, st, log)
	if err != nil {
		return search.Summary{}, err
	}
	return engine.Run(ctx)
}
