package sim

import (
	"testing"

	"rulehunt/internal/core"
)

func blinkerGrid(t *testing.T, boundary core.Boundary) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(5, 5, boundary)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(2, 1, 1)
	g.Set(2, 2, 1)
	g.Set(2, 3, 1)
	return g
}

func TestBlinkerOscillation(t *testing.T) {
	g := blinkerGrid(t, core.BoundaryFixed)
	life := core.Life()

	next, err := Step(g, life)
	if err != nil {
		t.Fatal(err)
	}

	expects := map[[2]int]bool{
		{1, 2}: true,
		{2, 2}: true,
		{3, 2}: true,
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			alive := next.At(x, y) == 1
			_, shouldBeAlive := expects[[2]int{x, y}]
			if shouldBeAlive != alive {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", x, y, alive, shouldBeAlive)
			}
		}
	}

	again, err := Step(next, life)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Equal(g) {
		t.Fatal("blinker did not return to its initial phase after two steps")
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	g := blinkerGrid(t, core.BoundaryWrap)
	before := g.Clone()

	if _, err := Step(g, core.Life()); err != nil {
		t.Fatal(err)
	}
	if !g.Equal(before) {
		t.Fatal("Step mutated its input grid")
	}
}

func TestStepIntoRejectsSizeMismatch(t *testing.T) {
	src, _ := core.NewGrid(4, 4, core.BoundaryWrap)
	dst, _ := core.NewGrid(5, 4, core.BoundaryWrap)
	if err := StepInto(dst, src, core.Life()); err == nil {
		t.Fatal("expected error for mismatched grid sizes")
	}
}

func TestWrapAndFixedBoundariesDiverge(t *testing.T) {
	// A horizontal blinker touching the edge: under wrap its neighborhood
	// folds around, under fixed it reads quiescent cells outside.
	life := core.Life()

	mk := func(b core.Boundary) *core.Grid {
		g, err := core.NewGrid(5, 5, b)
		if err != nil {
			t.Fatal(err)
		}
		g.Set(0, 2, 1)
		g.Set(1, 2, 1)
		g.Set(4, 2, 1)
		return g
	}

	wrapped, err := Step(mk(core.BoundaryWrap), life)
	if err != nil {
		t.Fatal(err)
	}
	fixed, err := Step(mk(core.BoundaryFixed), life)
	if err != nil {
		t.Fatal(err)
	}
	if wrapped.Equal(fixed) {
		t.Fatal("wrap and fixed boundaries produced identical successors for an edge pattern")
	}
}

func TestElementaryRule110Row(t *testing.T) {
	g, err := core.NewGrid(8, 1, core.BoundaryFixed)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(6, 0, 1)

	next, err := Step(g, core.NewElementary(110))
	if err != nil {
		t.Fatal(err)
	}

	// Rule 110 grows a single cell one step to the left.
	expected := []uint8{0, 0, 0, 0, 0, 1, 1, 0}
	for x, want := range expected {
		if got := next.At(x, 0); got != want {
			t.Fatalf("cell %d = %d, expected %d", x, got, want)
		}
	}
}

func TestElementaryWrapBoundary(t *testing.T) {
	// Rule 2 (only pattern 001 maps to 1) shifts a lone cell left; with wrap
	// the cell at x=0 reappears at the right edge.
	g, err := core.NewGrid(4, 1, core.BoundaryWrap)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(0, 0, 1)

	next, err := Step(g, core.NewElementary(2))
	if err != nil {
		t.Fatal(err)
	}
	if next.At(3, 0) != 1 || next.Population() != 1 {
		t.Fatalf("expected the cell to wrap to x=3, got cells %v", next.Cells())
	}
}

func TestElementaryRowsAreIndependent(t *testing.T) {
	// On a 2D grid an elementary rule treats each row as its own lattice.
	g, err := core.NewGrid(5, 2, core.BoundaryFixed)
	if err != nil {
		t.Fatal(err)
	}
	g.Set(2, 0, 1)

	next, err := Step(g, core.NewElementary(110))
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 5; x++ {
		if next.At(x, 1) != 0 {
			t.Fatalf("activity in row 0 leaked into row 1 at x=%d", x)
		}
	}
}

func TestStepUnknownKind(t *testing.T) {
	g, _ := core.NewGrid(3, 3, core.BoundaryWrap)
	if _, err := Step(g, core.Rule{}); err == nil {
		t.Fatal("expected error for zero-value rule")
	}
}
