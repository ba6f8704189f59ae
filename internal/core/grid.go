package core

import (
	"fmt"
	"hash/fnv"
)

// Boundary selects how neighbor reads behave at the lattice edge.
type Boundary string

const (
	// BoundaryWrap folds neighbor coordinates modulo the grid dimensions.
	BoundaryWrap Boundary = "wrap"
	// BoundaryFixed treats positions outside the grid as the quiescent state.
	BoundaryFixed Boundary = "fixed"
	// BoundaryTruncate tracks a finite window of a conceptually unbounded
	// lattice. Cells outside the window read as quiescent and activity that
	// leaves the window is dropped, so edge behavior is lossy.
	BoundaryTruncate Boundary = "truncate"
)

// Valid reports whether the boundary names a supported policy.
func (b Boundary) Valid() bool {
	switch b {
	case BoundaryWrap, BoundaryFixed, BoundaryTruncate:
		return true
	}
	return false
}

// Grid stores cell states for a 2D lattice in row-major order. 1D automata
// use a height of one. A step never mutates its input grid; the stepper
// always produces a fresh grid or writes into a caller-owned scratch grid.
type Grid struct {
	w, h     int
	boundary Boundary
	cells    []uint8
}

// NewGrid allocates a quiescent grid with the given dimensions.
func NewGrid(w, h int, boundary Boundary) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	if !boundary.Valid() {
		return nil, fmt.Errorf("unknown boundary policy %q", boundary)
	}
	return &Grid{w: w, h: h, boundary: boundary, cells: make([]uint8, w*h)}, nil
}

// RandomGrid fills a new grid with live cells at the given density using a
// deterministic stream derived from seed.
func RandomGrid(w, h int, boundary Boundary, density float64, seed int64) (*Grid, error) {
	if density < 0 || density > 1 {
		return nil, fmt.Errorf("fill density must be in [0,1], got %g", density)
	}
	g, err := NewGrid(w, h, boundary)
	if err != nil {
		return nil, err
	}
	rng := NewRNG(seed)
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i] = 1
		}
	}
	return g, nil
}

// W returns the grid width.
func (g *Grid) W() int { return g.w }

// H returns the grid height.
func (g *Grid) H() int { return g.h }

// Boundary returns the grid's boundary policy.
func (g *Grid) Boundary() Boundary { return g.boundary }

// Cells exposes the backing slice so hot loops can read values directly.
func (g *Grid) Cells() []uint8 { return g.cells }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.w + x }

// At reads the cell at (x, y). Coordinates must be inside the grid.
func (g *Grid) At(x, y int) uint8 { return g.cells[y*g.w+x] }

// Set writes the cell at (x, y). Coordinates must be inside the grid.
func (g *Grid) Set(x, y int, v uint8) { g.cells[y*g.w+x] = v }

// Neighbor reads the cell at (x+dx, y+dy) under the grid's boundary policy.
func (g *Grid) Neighbor(x, y, dx, dy int) uint8 {
	nx, ny := x+dx, y+dy
	if nx >= 0 && nx < g.w && ny >= 0 && ny < g.h {
		return g.cells[ny*g.w+nx]
	}
	if g.boundary == BoundaryWrap {
		nx = (nx%g.w + g.w) % g.w
		ny = (ny%g.h + g.h) % g.h
		return g.cells[ny*g.w+nx]
	}
	// Fixed and truncated windows both read the quiescent state outside.
	return 0
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]uint8, len(g.cells))
	copy(cells, g.cells)
	return &Grid{w: g.w, h: g.h, boundary: g.boundary, cells: cells}
}

// Equal reports whether two grids have identical dimensions and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i, c := range g.cells {
		if c != o.cells[i] {
			return false
		}
	}
	return true
}

// Hash returns a deterministic FNV-1a digest of the grid contents. The digest
// is stable across processes so cycle detection stays reproducible.
func (g *Grid) Hash() uint64 {
	h := fnv.New64a()
	var dims [8]byte
	dims[0] = byte(g.w)
	dims[1] = byte(g.w >> 8)
	dims[2] = byte(g.w >> 16)
	dims[3] = byte(g.w >> 24)
	dims[4] = byte(g.h)
	dims[5] = byte(g.h >> 8)
	dims[6] = byte(g.h >> 16)
	dims[7] = byte(g.h >> 24)
	h.Write(dims[:])
	h.Write(g.cells)
	return h.Sum64()
}

// Population counts the non-quiescent cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Clear resets every cell to the quiescent state.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}
