// Package sim applies rules to grids. Stepping is the hottest loop in the
// system: the transition lookup is a shift and mask, and interior cells of a
// 2D grid skip boundary handling entirely.
package sim

import (
	"fmt"

	"rulehunt/internal/core"
)

// Step produces the successor of g under r. The input grid is never
// mutated, so the same seed grid can back many evaluations concurrently.
func Step(g *core.Grid, r core.Rule) (*core.Grid, error) {
	next, err := core.NewGrid(g.W(), g.H(), g.Boundary())
	if err != nil {
		return nil, err
	}
	if err := StepInto(next, g, r); err != nil {
		return nil, err
	}
	return next, nil
}

// StepInto writes the successor of src under r into dst. Both grids must
// share dimensions and boundary policy; evaluators own a pair of scratch
// grids and swap them between generations to avoid per-step allocation.
func StepInto(dst, src *core.Grid, r core.Rule) error {
	if dst.W() != src.W() || dst.H() != src.H() {
		return fmt.Errorf("step: grid size mismatch %dx%d vs %dx%d", dst.W(), dst.H(), src.W(), src.H())
	}
	switch r.Kind() {
	case core.KindTotalistic:
		stepTotalistic(dst, src, r)
	case core.KindElementary:
		stepElementary(dst, src, r)
	default:
		return fmt.Errorf("step: %w", core.ErrBadEncoding)
	}
	return nil
}

// stepTotalistic advances a binary outer-totalistic rule on the Moore
// neighborhood.
func stepTotalistic(dst, src *core.Grid, r core.Rule) {
	w, h := src.W(), src.H()
	in := src.Cells()
	out := dst.Cells()

	if src.Boundary() == core.BoundaryWrap {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				count := uint32(0)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx := (x + dx + w) % w
						ny := (y + dy + h) % h
						if in[ny*w+nx] != 0 {
							count++
						}
					}
				}
				idx := y*w + x
				out[idx] = r.Transition(in[idx], count)
			}
		}
		return
	}

	// Fixed and truncated boundaries read quiescent cells outside the
	// window; interior cells take the unchecked fast path.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			count := uint32(0)
			if x > 0 && x < w-1 && y > 0 && y < h-1 {
				row := y*w + x
				for _, off := range [8]int{-w - 1, -w, -w + 1, -1, 1, w - 1, w, w + 1} {
					if in[row+off] != 0 {
						count++
					}
				}
			} else {
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						if src.Neighbor(x, y, dx, dy) != 0 {
							count++
						}
					}
				}
			}
			idx := y*w + x
			out[idx] = r.Transition(in[idx], count)
		}
	}
}

// stepElementary advances a Wolfram elementary rule. Each row of the grid is
// treated as an independent one-dimensional lattice; 1D runs use height 1.
func stepElementary(dst, src *core.Grid, r core.Rule) {
	w, h := src.W(), src.H()
	in := src.Cells()
	out := dst.Cells()

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var left, right uint8
			if src.Boundary() == core.BoundaryWrap {
				left = in[row+(x-1+w)%w]
				right = in[row+(x+1)%w]
			} else {
				if x > 0 {
					left = in[row+x-1]
				}
				if x < w-1 {
					right = in[row+x+1]
				}
			}
			summary := uint32(left)<<2 | uint32(in[row+x])<<1 | uint32(right)
			out[row+x] = r.Transition(in[row+x], summary)
		}
	}
}
