package core

import "testing"

func TestNewGridRejectsBadInput(t *testing.T) {
	if _, err := NewGrid(0, 5, BoundaryWrap); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := NewGrid(5, -1, BoundaryWrap); err == nil {
		t.Fatal("expected error for negative height")
	}
	if _, err := NewGrid(5, 5, Boundary("torus")); err == nil {
		t.Fatal("expected error for unknown boundary")
	}
}

func TestNeighborWrap(t *testing.T) {
	g, err := NewGrid(3, 3, BoundaryWrap)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(2, 2, 1)

	// Reading up-left from the origin folds to the opposite corner.
	if got := g.Neighbor(0, 0, -1, -1); got != 1 {
		t.Fatalf("wrap neighbor (0,0)+(-1,-1) = %d, expected 1", got)
	}
	if got := g.Neighbor(2, 2, 1, 1); got != g.At(0, 0) {
		t.Fatalf("wrap neighbor (2,2)+(1,1) = %d, expected %d", got, g.At(0, 0))
	}
}

func TestNeighborFixedReadsQuiescentOutside(t *testing.T) {
	for _, b := range []Boundary{BoundaryFixed, BoundaryTruncate} {
		g, err := NewGrid(3, 3, b)
		if err != nil {
			t.Fatal(err)
		}
		g.Set(2, 2, 1)
		if got := g.Neighbor(0, 0, -1, -1); got != 0 {
			t.Fatalf("%s neighbor outside grid = %d, expected 0", b, got)
		}
		if got := g.Neighbor(2, 2, 0, -1); got != 0 {
			t.Fatalf("%s in-bounds neighbor = %d, expected 0", b, got)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := NewGrid(4, 4, BoundaryWrap)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(1, 1, 1)

	c := g.Clone()
	if !g.Equal(c) {
		t.Fatal("clone differs from original")
	}
	c.Set(2, 2, 1)
	if g.At(2, 2) != 0 {
		t.Fatal("mutating the clone leaked into the original")
	}
}

func TestHashTracksContents(t *testing.T) {
	a, _ := NewGrid(4, 4, BoundaryWrap)
	b, _ := NewGrid(4, 4, BoundaryWrap)
	if a.Hash() != b.Hash() {
		t.Fatal("identical grids hash differently")
	}
	b.Set(0, 0, 1)
	if a.Hash() == b.Hash() {
		t.Fatal("differing grids hash identically")
	}

	// Same cell count, different shape.
	c, _ := NewGrid(2, 8, BoundaryWrap)
	if a.Hash() == c.Hash() {
		t.Fatal("4x4 and 2x8 quiescent grids hash identically")
	}
}

func TestRandomGridDeterminism(t *testing.T) {
	a, err := RandomGrid(16, 16, BoundaryWrap, 0.5, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomGrid(16, 16, BoundaryWrap, 0.5, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Fatal("same seed produced different grids")
	}

	c, _ := RandomGrid(16, 16, BoundaryWrap, 0.5, 43)
	if a.Equal(c) {
		t.Fatal("different seeds produced identical grids")
	}
}

func TestRandomGridRejectsBadDensity(t *testing.T) {
	if _, err := RandomGrid(4, 4, BoundaryWrap, -0.1, 1); err == nil {
		t.Fatal("expected error for negative density")
	}
	if _, err := RandomGrid(4, 4, BoundaryWrap, 1.1, 1); err == nil {
		t.Fatal("expected error for density above 1")
	}
}

func TestPopulationAndClear(t *testing.T) {
	g, _ := NewGrid(3, 3, BoundaryFixed)
	g.Set(0, 0, 1)
	g.Set(1, 2, 1)
	if got := g.Population(); got != 2 {
		t.Fatalf("population = %d, expected 2", got)
	}
	g.Clear()
	if got := g.Population(); got != 0 {
		t.Fatalf("population after clear = %d, expected 0", got)
	}
}
