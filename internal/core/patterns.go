package core

import (
	"fmt"
	"sort"
)

// PatternFunc stamps a named seed pattern onto a quiescent grid.
type PatternFunc func(g *Grid)

var patterns = map[string]PatternFunc{}

// RegisterPattern adds a seed pattern under the provided name.
func RegisterPattern(name string, f PatternFunc) {
	if name == "" || f == nil {
		return
	}
	patterns[name] = f
}

// PatternNames lists the registered seed patterns in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PatternGrid builds a grid seeded with the named pattern, centered.
func PatternGrid(name string, w, h int, boundary Boundary) (*Grid, error) {
	f, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown seed pattern %q", name)
	}
	g, err := NewGrid(w, h, boundary)
	if err != nil {
		return nil, err
	}
	f(g)
	return g, nil
}

func stamp(g *Grid, cx, cy int, offsets [][2]int) {
	for _, o := range offsets {
		x, y := cx+o[0], cy+o[1]
		if x >= 0 && x < g.w && y >= 0 && y < g.h {
			g.Set(x, y, 1)
		}
	}
}

func init() {
	RegisterPattern("point", func(g *Grid) {
		g.Set(g.w/2, g.h/2, 1)
	})
	RegisterPattern("blinker", func(g *Grid) {
		stamp(g, g.w/2, g.h/2, [][2]int{{0, -1}, {0, 0}, {0, 1}})
	})
	RegisterPattern("glider", func(g *Grid) {
		stamp(g, g.w/2, g.h/2, [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}})
	})
	RegisterPattern("r-pentomino", func(g *Grid) {
		stamp(g, g.w/2, g.h/2, [][2]int{{1, 0}, {2, 0}, {0, 1}, {1, 1}, {1, 2}})
	})
}
