// Package fitness runs bounded simulations and reduces trajectories to
// scores. Evaluation depends only on (rule, seed grid, generations): the
// same inputs always produce byte-identical trajectories and scores.
package fitness

import (
	"fmt"

	"rulehunt/internal/core"
	"rulehunt/internal/sim"
)

// Outcome classifies how a trajectory ended within its generation budget.
type Outcome string

const (
	// OutcomeDied means the grid reached the all-quiescent fixed point.
	OutcomeDied Outcome = "died"
	// OutcomeExploded means the grid saturated into the all-live fixed point.
	OutcomeExploded Outcome = "exploded"
	// OutcomeFixed means a non-trivial fixed point was reached.
	OutcomeFixed Outcome = "fixed"
	// OutcomeCyclic means the trajectory entered a cycle of period >= 2.
	OutcomeCyclic Outcome = "cyclic"
	// OutcomeOpen means no terminal condition occurred within the budget.
	OutcomeOpen Outcome = "open"
)

// Result is the structured outcome of one evaluation.
type Result struct {
	Score   float64
	Outcome Outcome
	// Period is the detected cycle length (1 for fixed points, 0 if none).
	Period int
	// StepsRun counts the step calls actually executed; fixed points
	// short-circuit the remainder of the budget.
	StepsRun int
}

// Evaluate runs generations successive steps from seed and reduces the
// trajectory with a fresh reducer from newReducer. The seed grid is never
// mutated. A fixed point ends stepping early; the remaining budget is
// attributed by replaying the terminal state into the reducer, so the score
// is identical to a naive full-budget run.
func Evaluate(rule core.Rule, seed *core.Grid, generations int, newReducer ReducerFactory) (Result, error) {
	if generations <= 0 {
		return Result{}, fmt.Errorf("generation budget must be positive, got %d", generations)
	}
	if newReducer == nil {
		newReducer = NewComplexityReducer
	}

	cur := seed.Clone()
	next, err := core.NewGrid(seed.W(), seed.H(), seed.Boundary())
	if err != nil {
		return Result{}, err
	}

	reducer := newReducer()
	reducer.Observe(cur)

	// Hashes of every state seen so far, for cycle detection. Keyed by the
	// deterministic grid digest; values are the generation of first sight.
	seen := map[uint64]int{cur.Hash(): 0}

	res := Result{Outcome: OutcomeOpen}
	cells := seed.W() * seed.H()

	for gen := 1; gen <= generations; gen++ {
		if err := sim.StepInto(next, cur, rule); err != nil {
			return Result{}, err
		}
		cur, next = next, cur
		res.StepsRun = gen

		if cur.Equal(next) {
			// Fixed point: every remaining generation repeats this state.
			res.Period = 1
			switch pop := cur.Population(); {
			case pop == 0:
				res.Outcome = OutcomeDied
			case pop == cells:
				res.Outcome = OutcomeExploded
			default:
				res.Outcome = OutcomeFixed
			}
			for g := gen; g <= generations; g++ {
				reducer.Observe(cur)
			}
			res.Score = reducer.Score()
			return res, nil
		}

		reducer.Observe(cur)

		h := cur.Hash()
		if first, ok := seen[h]; ok {
			if res.Period == 0 {
				res.Period = gen - first
				res.Outcome = OutcomeCyclic
			}
			// Keep stepping through the cycle: the reducer still needs the
			// remaining generations, and cycle steps are cheap.
			continue
		}
		seen[h] = gen
	}

	res.Score = reducer.Score()
	return res, nil
}
