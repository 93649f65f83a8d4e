package propagate

import (
	"testing"

	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/revcg"
	"github.com/fractalio/juliatsacore/screen"
)

func newEngine(t *testing.T, n int, f poly.Func[fixedpoint.Num]) *Engine[fixedpoint.Num] {
	t.Helper()
	m, err := screen.NewMapper(n, fixedpoint.FromFloat64(-2), fixedpoint.FromFloat64(2), fixedpoint.FromFloat64)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	b := revcg.ChooseB(n, 4)
	g, err := revcg.Build(f, m, b, revcg.DefaultArenaBudgetBytes)
	if err != nil {
		t.Fatalf("revcg.Build: %v", err)
	}
	gr := grid.New(n)
	for y := 0; y < n; y++ {
		gr.SetBand(y, 0, n-1)
	}
	return &Engine[fixedpoint.Num]{Grid: gr, Graph: g, Mapper: m, Func: f}
}

func TestRunLeavesNoPlainGray(t *testing.T) {
	n := 32
	f := poly.Func[fixedpoint.Num]{
		Kind: poly.Z2C,
		C: poly.ParamBox[fixedpoint.Num]{
			Re0: fixedpoint.FromFloat64(-0.1), Re1: fixedpoint.FromFloat64(-0.1),
			Im0: fixedpoint.FromFloat64(0), Im1: fixedpoint.FromFloat64(0),
		},
	}
	e := newEngine(t, n, f)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Every plain GRAY cell must have been reclassified BLACK by the end
	// of Run; GRAY-POTENTIALLY-WHITE cells may legitimately remain (they
	// are a final, displayable classification, not an intermediate one).
	white, black, gray, _ := e.Grid.CountColors()
	if gray != 0 {
		t.Fatalf("Run left gray=%d, want 0", gray)
	}
	if white == 0 && black == 0 {
		t.Fatalf("expected some classified cells")
	}
}

func TestRunClassifiesFarCornerWhite(t *testing.T) {
	n := 32
	f := poly.Func[fixedpoint.Num]{
		Kind: poly.Z2C,
		C: poly.ParamBox[fixedpoint.Num]{
			Re0: fixedpoint.FromFloat64(-0.1), Re1: fixedpoint.FromFloat64(-0.1),
		},
	}
	e := newEngine(t, n, f)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The far corner (near plane point (2,2)) escapes to infinity
	// immediately under z^2-0.1 and must end up WHITE.
	if c := e.Grid.Get(n-1, n-1); c != grid.White {
		t.Fatalf("corner cell = %v, want WHITE", c)
	}
}

func TestRunHasCenterInteriorForAttractingC(t *testing.T) {
	n := 64
	f := poly.Func[fixedpoint.Num]{
		Kind: poly.Z2C,
		C: poly.ParamBox[fixedpoint.Num]{
			Re0: fixedpoint.FromFloat64(0), Re1: fixedpoint.FromFloat64(0),
		},
	}
	e := newEngine(t, n, f)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// c=0: the filled Julia set is the closed unit disk; the grid center
	// (plane origin) must end up BLACK.
	if c := e.Grid.Get(n/2, n/2); c != grid.Black {
		t.Fatalf("center cell = %v, want BLACK", c)
	}
}
