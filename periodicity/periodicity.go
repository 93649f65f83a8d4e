// Package periodicity implements the Fatou-component analyzer of
// spec.md §4.7: it walks the interior (BLACK) region of a classified
// grid, follows each component's forward orbit under f, and records
// which components form periodic cycles (immediate basins) versus which
// merely flow into one (attraction basins).
package periodicity

import (
	"fmt"

	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/screen"
)

// Hard caps matching spec.md §4.7's "MAX_CYCLES, MAX_FATOU_COMPONENTS"
// abort condition.
const (
	MaxCycles           = 1 << 16
	MaxFatouComponents  = 1 << 20
)

// cellState is the one-byte-per-cell working copy: GRAY and
// GRAY-POTENTIALLY-WHITE collapse to stateGray (spec.md §4.7), since
// neither can ever be part of a seed component.
type cellState byte

const (
	stateWhite cellState = iota
	stateGray
	stateUnvisitedBlack
	stateActive // current flood-fill frontier, never persists between seeds
	stateClassified
)

// componentKind distinguishes a Fatou component's final role once a cycle
// closes beneath it.
type componentKind int

const (
	KindUnknown componentKind = iota
	KindImmediateBasin
	KindAttractionBasin
)

// Rect is an axis-aligned pixel-index bounding box (inclusive corners).
type Rect struct{ X0, Y0, X1, Y1 int }

// Component is one connected BLACK (interior) region discovered by flood
// fill, together with its eventual classification.
type Component struct {
	Bounds Rect
	Kind   componentKind
	Cycle  int // index into Analyzer.Cycles, or -1 if Kind == KindUnknown
}

// Cycle records one closed periodic orbit of Fatou components.
type Cycle struct {
	Length             int
	ImmediateComponents []int // indices into Analyzer.Components, in orbit order
}

// Analyzer walks a classified grid's interior looking for Fatou
// components and the cycles they close into.
type Analyzer[N fixedpoint.Number[N]] struct {
	Grid   *grid.Grid
	Mapper screen.Mapper[N]
	Func   poly.Func[N]

	state      []cellState
	compOf     []int32 // per-cell component index, -1 if not yet assigned
	n          int
	Components []Component
	Cycles     []Cycle
}

// New builds an Analyzer over g's current classification. g is not
// modified; the analyzer keeps its own one-byte-per-cell working copy.
func New[N fixedpoint.Number[N]](g *grid.Grid, m screen.Mapper[N], f poly.Func[N]) *Analyzer[N] {
	n := g.N
	state := make([]cellState, n*n)
	compOf := make([]int32, n*n)
	for i := range compOf {
		compOf[i] = -1
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			idx := y*n + x
			switch g.Get(x, y) {
			case grid.Black:
				state[idx] = stateUnvisitedBlack
			case grid.White:
				state[idx] = stateWhite
			default: // Gray, GrayPotW collapse together
				state[idx] = stateGray
			}
		}
	}
	return &Analyzer[N]{Grid: g, Mapper: m, Func: f, state: state, compOf: compOf, n: n}
}

// ComponentAt returns the component index owning cell (x,y), or ok=false
// if that cell was never part of a BLACK region (WHITE or GRAY).
func (a *Analyzer[N]) ComponentAt(x, y int) (compIdx int, ok bool) {
	c := a.compOf[y*a.n+x]
	if c < 0 {
		return 0, false
	}
	return int(c), true
}

// Run scans every cell for an unvisited BLACK seed, flood-fills its
// component, follows its forward orbit, and classifies every component
// the orbit touches before it closes into a cycle.
func (a *Analyzer[N]) Run() error {
	for y := 0; y < a.n; y++ {
		for x := 0; x < a.n; x++ {
			idx := y*a.n + x
			if a.state[idx] != stateUnvisitedBlack {
				continue
			}
			if err := a.walk(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// walk performs the flood-fill-then-follow-forward procedure of
// spec.md §4.7 starting from seed pixel (x0,y0).
func (a *Analyzer[N]) walk(x0, y0 int) error {
	var orbit []int // component indices visited this walk, in order
	seenAt := map[int]int{} // component index -> position in orbit

	x, y := x0, y0
	for {
		if len(a.Components) >= MaxFatouComponents {
			return fmt.Errorf("%w: more than %d Fatou components", errs.ErrCapacityCap, MaxFatouComponents)
		}
		compIdx := a.floodFill(x, y)
		if pos, ok := seenAt[compIdx]; ok {
			return a.closeCycle(orbit, pos)
		}
		seenAt[compIdx] = len(orbit)
		orbit = append(orbit, compIdx)

		if a.Components[compIdx].Kind != KindUnknown {
			// Walked into an already-classified component: the whole
			// current orbit (everything before it) joins that
			// component's cycle as an attraction basin.
			return a.joinExistingCycle(orbit, a.Components[compIdx].Cycle)
		}

		nx, ny, ok, err := a.followForward(compIdx)
		if err != nil {
			return err
		}
		if !ok {
			// Forward image left BLACK territory entirely (should not
			// happen for a true interior seed under a sound bbox, but a
			// defensively-terminated orbit is better than an infinite
			// loop from a rounding artifact at the component boundary).
			return nil
		}
		x, y = nx, ny
	}
}

// floodFill expands the connected BLACK region containing (x,y) via
// 4-neighbour BFS, recording its bounding rectangle, and returns its new
// component index (or its existing index if some of the region was
// already claimed by a previous, still-open walk — which cannot happen
// in this analyzer's call pattern but is checked defensively).
func (a *Analyzer[N]) floodFill(x, y int) int {
	idx0 := y*a.n + x
	if a.compOf[idx0] >= 0 {
		return int(a.compOf[idx0])
	}
	compIdx := len(a.Components)
	bounds := Rect{X0: x, Y0: y, X1: x, Y1: y}

	queue := []int{idx0}
	a.state[idx0] = stateActive
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx, cy := cur%a.n, cur/a.n
		a.compOf[cur] = int32(compIdx)
		if cx < bounds.X0 {
			bounds.X0 = cx
		}
		if cx > bounds.X1 {
			bounds.X1 = cx
		}
		if cy < bounds.Y0 {
			bounds.Y0 = cy
		}
		if cy > bounds.Y1 {
			bounds.Y1 = cy
		}
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= a.n || ny >= a.n {
				continue
			}
			nIdx := ny*a.n + nx
			if a.state[nIdx] == stateUnvisitedBlack {
				a.state[nIdx] = stateActive
				queue = append(queue, nIdx)
			}
		}
	}
	// stateActive -> stateClassified: the frontier marker never persists
	// past the flood fill that produced it.
	for cy := bounds.Y0; cy <= bounds.Y1; cy++ {
		for cx := bounds.X0; cx <= bounds.X1; cx++ {
			i := cy*a.n + cx
			if a.state[i] == stateActive {
				a.state[i] = stateClassified
			}
		}
	}
	a.Components = append(a.Components, Component{Bounds: bounds, Kind: KindUnknown, Cycle: -1})
	return compIdx
}

// followForward picks one representative pixel of component compIdx,
// computes fA, and returns the screen coordinate of fA's lower-left
// corner — the next pixel in the forward orbit — per spec.md §4.7 step 2.
func (a *Analyzer[N]) followForward(compIdx int) (x, y int, ok bool, err error) {
	b := a.Components[compIdx].Bounds
	px, py := (b.X0+b.X1)/2, (b.Y0+b.Y1)/2
	cellRect, err := a.Mapper.CellRect(px, py)
	if err != nil {
		return 0, 0, false, fmt.Errorf("periodicity: cell rect: %w", err)
	}
	fA, err := a.Func.BBox(cellRect)
	if err != nil {
		return 0, 0, false, fmt.Errorf("periodicity: bbox: %w", err)
	}
	fx, err := a.Mapper.FloorToCell(fA.X0)
	if err != nil {
		return 0, 0, false, err
	}
	fy, err := a.Mapper.FloorToCell(fA.Y0)
	if err != nil {
		return 0, 0, false, err
	}
	if fx < 0 || fy < 0 || fx >= int64(a.n) || fy >= int64(a.n) {
		return 0, 0, false, nil
	}
	return int(fx), int(fy), true, nil
}

// closeCycle is reached when the orbit returns to a component it has
// already visited this walk, at orbit position firstCyclic: the prefix
// before it is an attraction basin, and the cyclic suffix becomes a new
// cycle of immediate basins.
func (a *Analyzer[N]) closeCycle(orbit []int, firstCyclic int) error {
	if len(a.Cycles) >= MaxCycles {
		return fmt.Errorf("%w: more than %d cycles", errs.ErrCapacityCap, MaxCycles)
	}
	cycleComps := append([]int(nil), orbit[firstCyclic:]...)
	cycleIdx := len(a.Cycles)
	for _, c := range cycleComps {
		a.Components[c].Kind = KindImmediateBasin
		a.Components[c].Cycle = cycleIdx
	}
	for _, c := range orbit[:firstCyclic] {
		a.Components[c].Kind = KindAttractionBasin
		a.Components[c].Cycle = cycleIdx
	}
	a.Cycles = append(a.Cycles, Cycle{Length: len(cycleComps), ImmediateComponents: cycleComps})
	return nil
}

// joinExistingCycle is reached when the orbit walks into a component
// already classified by an earlier walk: everything in the current
// orbit becomes part of that component's cycle, as an attraction basin
// (the walked-into component itself keeps its existing classification).
func (a *Analyzer[N]) joinExistingCycle(orbit []int, cycleIdx int) error {
	for _, c := range orbit[:len(orbit)-1] {
		if a.Components[c].Kind != KindUnknown {
			continue
		}
		a.Components[c].Kind = KindAttractionBasin
		a.Components[c].Cycle = cycleIdx
	}
	return nil
}
