package engine

import (
	"bytes"
	"testing"

	"github.com/fractalio/juliatsacore/cliargs"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/revcg"
)

func mustEngine(t *testing.T, tokens []string) *Engine[fixedpoint.Num] {
	t.Helper()
	cfg, err := cliargs.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var logBuf bytes.Buffer
	e, err := New(cfg, fixedpoint.FromFloat64, t.TempDir()+"/out", &logBuf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Compute(cfg.RevcgB, revcg.SmallArenaBudgetBytes); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return e
}

// Scenario 1: the classical Basilica. Nonzero BLACK count; center BLACK,
// (0,512)-equivalent WHITE. The checkpoint count is not checked here.
func TestScenario1Basilica(t *testing.T) {
	e := mustEngine(t, []string{"FUNC=Z2C", "C=-1,0", "LEN=10", "RANGE=2", "CMD=CALC"})
	if e.Stats.Black == 0 {
		t.Fatalf("expected nonzero BLACK count for the Basilica")
	}
	n := e.Grid.N
	if c := e.Grid.Get(n/2, n/2); c != grid.Black {
		t.Fatalf("center = %v, want BLACK", c)
	}
	if c := e.Grid.Get(0, n/2); c != grid.White {
		t.Fatalf("left-edge midpoint = %v, want WHITE", c)
	}
}

// Scenario 2: the unit disk (c=0). Center BLACK; far right edge WHITE; the
// BLACK mask is symmetric under (x,y) -> (n-1-x,y) up to a one-pixel
// boundary.
func TestScenario2UnitDiskSymmetry(t *testing.T) {
	e := mustEngine(t, []string{"FUNC=Z2C", "C=0,0", "LEN=10", "RANGE=2", "CMD=CALC"})
	n := e.Grid.N
	if c := e.Grid.Get(n/2, n/2); c != grid.Black {
		t.Fatalf("center = %v, want BLACK", c)
	}
	if c := e.Grid.Get(n-1, n/2); c != grid.White {
		t.Fatalf("right edge = %v, want WHITE", c)
	}
	mismatches := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := e.Grid.Get(x, y) == grid.Black
			b := e.Grid.Get(n-1-x, y) == grid.Black
			if a != b {
				mismatches++
			}
		}
	}
	// "Up to one-pixel boundary": allow a small fraction of the perimeter
	// to disagree without failing the symmetry check.
	if budget := n * 2; mismatches > budget {
		t.Fatalf("mismatched BLACK cells under x-mirror = %d, want <= %d", mismatches, budget)
	}
}

// Scenario 3: gray fraction < 5%, BLACK fraction > 20% for c=-0.75+0.1i.
func TestScenario3GrayAndBlackFractions(t *testing.T) {
	e := mustEngine(t, []string{"FUNC=Z2C", "C=-0.75,0.1", "LEN=10", "RANGE=2", "CMD=CALC"})
	total := float64(e.Grid.N) * float64(e.Grid.N)
	grayFrac := float64(e.Stats.Gray+e.Stats.GrayPotW) / total
	blackFrac := float64(e.Stats.Black) / total
	if grayFrac >= 0.05 {
		t.Fatalf("gray fraction = %v, want < 0.05", grayFrac)
	}
	if blackFrac <= 0.20 {
		t.Fatalf("black fraction = %v, want > 0.20", blackFrac)
	}
}

// Scenario 4: z^3 unit-disk Julia set has three-fold symmetry in the BLACK
// mask (rotation by 120 degrees about the origin).
func TestScenario4ThreeFoldSymmetry(t *testing.T) {
	e := mustEngine(t, []string{"FUNC=Z3AZC", "C=0,0", "A=0,0", "LEN=9", "RANGE=2", "CMD=CALC"})
	n := e.Grid.N
	cx, cy := float64(n)/2, float64(n)/2
	mismatches, total := 0, 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if e.Grid.Get(x, y) != grid.Black {
				continue
			}
			total++
			dx, dy := float64(x)-cx, float64(y)-cy
			rx := dx*cosThird - dy*sinThird
			ry := dx*sinThird + dy*cosThird
			rxi, ryi := int(cx+rx), int(cy+ry)
			if rxi < 0 || ryi < 0 || rxi >= n || ryi >= n {
				continue
			}
			if e.Grid.Get(rxi, ryi) != grid.Black {
				mismatches++
			}
		}
	}
	if total == 0 {
		t.Fatalf("expected a nonempty BLACK region")
	}
	if budget := total / 20; mismatches > budget { // allow 5% slop for pixel rounding at the rotation
		t.Fatalf("rotation mismatches = %d/%d, want <= %d", mismatches, total, budget)
	}
}

// 120 degree rotation constants for scenario 4.
var cosThird = -0.5
var sinThird = 0.8660254037844387

// Scenario 5: CMD=PERIOD on scenario 1's configuration finds exactly one
// cycle, length 2, with consecutively assigned immediate-basin palette
// indices.
func TestScenario5PeriodOnBasilica(t *testing.T) {
	e := mustEngine(t, []string{"FUNC=Z2C", "C=-1,0", "LEN=10", "RANGE=2", "CMD=PERIOD"})
	a, _, err := e.Periodicity(false)
	if err != nil {
		t.Fatalf("Periodicity: %v", err)
	}
	if len(a.Cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(a.Cycles))
	}
	if a.Cycles[0].Length != 2 {
		t.Fatalf("cycle length = %d, want 2", a.Cycles[0].Length)
	}
	// The immediate-basin components of the one cycle found must be
	// distinct indices into a.Components; bitmap.assignPaletteSlots (tested
	// directly in bitmap/heatmap_test.go) assigns these consecutive slots
	// in this discovery order.
	seen := make(map[int]bool, len(a.Cycles[0].ImmediateComponents))
	for _, comp := range a.Cycles[0].ImmediateComponents {
		if comp < 0 || comp >= len(a.Components) {
			t.Fatalf("immediate-basin component %d out of range [0,%d)", comp, len(a.Components))
		}
		if seen[comp] {
			t.Fatalf("immediate-basin component %d repeated", comp)
		}
		seen[comp] = true
	}
}
