package search

import "rulehunt/internal/core"

// Random draws independent uniform encodings from a derived RNG stream
// until a configured candidate budget is spent.
type Random struct {
	kind      core.RuleKind
	rng       *core.RNG
	remaining int
}

var (
	_ Strategy  = (*Random)(nil)
	_ Resumable = (*Random)(nil)
)

// NewRandom samples the kind's encoding space uniformly.
func NewRandom(kind core.RuleKind, rng *core.RNG, candidates int) *Random {
	return &Random{kind: kind, rng: rng, remaining: candidates}
}

// Name identifies the strategy.
func (r *Random) Name() string { return "random" }

// NextBatch draws up to n fresh candidates.
func (r *Random) NextBatch(n int) []core.Rule {
	if n > r.remaining {
		n = r.remaining
	}
	batch := make([]core.Rule, 0, n)
	for len(batch) < n {
		rule, err := core.RandomRule(r.kind, r.rng)
		if err != nil {
			break
		}
		batch = append(batch, rule)
		r.remaining--
	}
	return batch
}

// Skip consumes the next n candidates without returning them. The RNG draws
// match NextBatch exactly, so the stream stays aligned with the run being
// resumed.
func (r *Random) Skip(n int) {
	if n > r.remaining {
		n = r.remaining
	}
	for i := 0; i < n; i++ {
		if _, err := core.RandomRule(r.kind, r.rng); err != nil {
			return
		}
		r.remaining--
	}
}

// Report is a no-op: sampling is independent of scores.
func (r *Random) Report([]Result) {}

// Done reports whether the candidate budget is spent.
func (r *Random) Done() bool { return r.remaining <= 0 }
