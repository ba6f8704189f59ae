package search

import "rulehunt/internal/core"

// Enumerative walks a rule family's encoding space in ascending order.
// Candidate order is fixed, so runs are trivially reproducible and
// resumable.
type Enumerative struct {
	kind  core.RuleKind
	next  uint64
	limit uint64
}

var (
	_ Strategy  = (*Enumerative)(nil)
	_ Resumable = (*Enumerative)(nil)
)

// NewEnumerative enumerates the kind's encodings from zero. A non-zero
// budget bounds the walk; zero means the full declared space.
func NewEnumerative(kind core.RuleKind, budget uint64) *Enumerative {
	limit := kind.EncodingSpace()
	if budget > 0 && budget < limit {
		limit = budget
	}
	return &Enumerative{kind: kind, limit: limit}
}

// Name identifies the strategy.
func (e *Enumerative) Name() string { return "enumerate" }

// NextBatch returns the next n encodings in order.
func (e *Enumerative) NextBatch(n int) []core.Rule {
	batch := make([]core.Rule, 0, n)
	base := uint64(e.kind) << 56
	for len(batch) < n && e.next < e.limit {
		rule, err := core.DecodeRule(base | e.next)
		e.next++
		if err != nil {
			// Payloads below EncodingSpace always decode; guard anyway.
			continue
		}
		batch = append(batch, rule)
	}
	return batch
}

// Skip advances past the next n encodings without materializing them.
func (e *Enumerative) Skip(n int) {
	e.next += uint64(n)
	if e.next > e.limit {
		e.next = e.limit
	}
}

// Report is a no-op: enumeration ignores scores.
func (e *Enumerative) Report([]Result) {}

// Done reports whether the space is exhausted.
func (e *Enumerative) Done() bool { return e.next >= e.limit }
