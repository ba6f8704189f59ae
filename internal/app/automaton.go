// Package app exposes the two run-mode entry points: an interactive loop
// that streams grid snapshots to an external renderer, and a bulk search
// run over a rule family. The core knows nothing about pixels or windows.
package app

import (
	"fmt"

	"rulehunt/internal/core"
	"rulehunt/internal/sim"
)

// Automaton is a grid evolving under a single rule. It owns a pair of
// buffers and swaps them per step, so advancing allocates nothing.
type Automaton struct {
	rule core.Rule
	cur  *core.Grid
	nxt  *core.Grid
	gen  int
}

// NewAutomaton builds an automaton from the configured rule and seed grid.
// A zero rule encoding selects Conway's Life.
func NewAutomaton(cfg core.RunConfig) (*Automaton, error) {
	rule := core.Life()
	if cfg.Rule != 0 {
		decoded, err := core.DecodeRule(cfg.Rule)
		if err != nil {
			return nil, err
		}
		rule = decoded
	}
	seed, err := cfg.SeedGrid(rule.Kind())
	if err != nil {
		return nil, err
	}
	nxt, err := core.NewGrid(seed.W(), seed.H(), seed.Boundary())
	if err != nil {
		return nil, err
	}
	return &Automaton{rule: rule, cur: seed, nxt: nxt}, nil
}

// Rule returns the automaton's rule.
func (a *Automaton) Rule() core.Rule { return a.rule }

// Grid returns the current grid. Callers that retain it across steps must
// copy it; the buffer is reused.
func (a *Automaton) Grid() *core.Grid { return a.cur }

// Generation returns the number of steps taken since the seed state.
func (a *Automaton) Generation() int { return a.gen }

// Step advances the automaton by one generation.
func (a *Automaton) Step() error {
	if err := sim.StepInto(a.nxt, a.cur, a.rule); err != nil {
		return fmt.Errorf("advance automaton: %w", err)
	}
	a.cur, a.nxt = a.nxt, a.cur
	a.gen++
	return nil
}

// Reset rebuilds the seed state with the provided seed.
func (a *Automaton) Reset(cfg core.RunConfig, seed int64) error {
	cfg.Seed = seed
	fresh, err := cfg.SeedGrid(a.rule.Kind())
	if err != nil {
		return err
	}
	a.cur = fresh
	a.gen = 0
	return nil
}
