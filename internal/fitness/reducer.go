package fitness

import (
	"fmt"
	"math"
	"sort"

	"rulehunt/internal/core"
)

// Reducer folds a trajectory into a scalar score. A fresh reducer is created
// per evaluation, so implementations need no locking.
type Reducer interface {
	// Observe records one generation of the trajectory.
	Observe(g *core.Grid)
	// Score reduces the observations to a scalar once the full generation
	// budget has been attributed.
	Score() float64
}

// ReducerFactory constructs a reducer for a single evaluation.
type ReducerFactory func() Reducer

var reducers = map[string]ReducerFactory{}

// RegisterReducer adds a reducer factory under the provided name.
func RegisterReducer(name string, f ReducerFactory) {
	if name == "" || f == nil {
		return
	}
	reducers[name] = f
}

// NewReducer resolves a registered reducer factory by name.
func NewReducer(name string) (ReducerFactory, error) {
	f, ok := reducers[name]
	if !ok {
		return nil, fmt.Errorf("unknown fitness reducer %q", name)
	}
	return f, nil
}

// ReducerNames lists the registered reducers in sorted order.
func ReducerNames() []string {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// densityBuckets is the resolution of the live-density histogram the
// complexity reducer builds over a trajectory.
const densityBuckets = 16

// complexityReducer scores trajectories by the entropy-based complexity of
// their live-density distribution: with normalized Shannon entropy H,
// emergence E = H, self-organization S = 1 - H, complexity C = 4*E*S.
// C peaks for trajectories balanced between order and noise and is zero for
// rules that die, freeze, or saturate.
type complexityReducer struct {
	counts [densityBuckets]int
	total  int
}

// NewComplexityReducer returns the default trajectory reducer.
func NewComplexityReducer() Reducer {
	return &complexityReducer{}
}

func (c *complexityReducer) Observe(g *core.Grid) {
	density := float64(g.Population()) / float64(g.W()*g.H())
	bucket := int(density * densityBuckets)
	if bucket >= densityBuckets {
		bucket = densityBuckets - 1
	}
	c.counts[bucket]++
	c.total++
}

func (c *complexityReducer) Score() float64 {
	if c.total == 0 {
		return 0
	}
	entropy := 0.0
	for _, n := range c.counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(c.total)
		entropy -= p * math.Log2(p)
	}
	h := entropy / math.Log2(densityBuckets)
	return 4 * h * (1 - h)
}

// varianceReducer scores trajectories by the normalized variance of the live
// population across generations.
type varianceReducer struct {
	populations []float64
	cells       float64
}

// NewVarianceReducer returns a population-variance reducer.
func NewVarianceReducer() Reducer {
	return &varianceReducer{}
}

func (v *varianceReducer) Observe(g *core.Grid) {
	if v.cells == 0 {
		v.cells = float64(g.W() * g.H())
	}
	v.populations = append(v.populations, float64(g.Population()))
}

func (v *varianceReducer) Score() float64 {
	n := float64(len(v.populations))
	if n < 2 || v.cells == 0 {
		return 0
	}
	var sum float64
	for _, p := range v.populations {
		sum += p
	}
	mean := sum / n
	var sq float64
	for _, p := range v.populations {
		d := p - mean
		sq += d * d
	}
	// Standard deviation as a fraction of the cell count keeps scores in a
	// comparable range across grid sizes.
	return math.Sqrt(sq/n) / v.cells
}

func init() {
	RegisterReducer("complexity", NewComplexityReducer)
	RegisterReducer("variance", NewVarianceReducer)
}
