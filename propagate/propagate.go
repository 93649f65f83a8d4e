// Package propagate implements the two monotone fixed-point passes that
// classify every cell: the definite pass (spec.md §4.5), which can only
// conclude WHITE or BLACK, and the potentially-white pass (§4.6), which
// only ever promotes GRAY to GRAY-POTENTIALLY-WHITE. Both passes drive off
// the same reverse-cell-graph worklist (package revcg).
package propagate

import (
	"fmt"

	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/interval"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/revcg"
	"github.com/fractalio/juliatsacore/screen"
)

// Engine drives propagation over a grid and reverse cell graph for one
// polynomial. It is held by the top-level engine for the duration of
// classification only; the reverse graph's arena is released once Run
// returns.
type Engine[N fixedpoint.Number[N]] struct {
	Grid   *grid.Grid
	Graph  *revcg.Graph
	Mapper screen.Mapper[N]
	Func   poly.Func[N]

	// BBoxEvaluations counts every call to Func.BBox made during
	// propagation; the top-level engine uses it to drive checkpointing.
	BBoxEvaluations int64

	// Checkpoint, if set, is called after every full sweep with the
	// running BBoxEvaluations count (spec.md §5's counter + wall-clock
	// checkpoint gate; sweep granularity is the finest point Run can
	// pause at without restructuring the tile scan into a resumable
	// cursor). A nil Checkpoint disables checkpointing.
	Checkpoint func(bboxEvaluations int64) error
}

// Run drives the definite pass to a fixed point, then the
// potentially-white pass to a fixed point, then reclassifies every cell
// still uniformly GRAY (never touched by potw) as BLACK. It reports
// whether at least one BLACK cell exists afterward (the interior-present
// flag).
func (e *Engine[N]) Run() (interiorPresent bool, err error) {
	e.Graph.ResetToVisitAllTrue()
	for {
		changed, err := e.sweep(definitePass)
		if err != nil {
			return false, fmt.Errorf("propagate: definite pass: %w", err)
		}
		if err := e.checkpoint(); err != nil {
			return false, fmt.Errorf("propagate: checkpoint: %w", err)
		}
		if !changed {
			break
		}
	}

	e.Graph.ResetToVisitAllTrue()
	for {
		changed, err := e.sweep(potwPass)
		if err != nil {
			return false, fmt.Errorf("propagate: potw pass: %w", err)
		}
		if err := e.checkpoint(); err != nil {
			return false, fmt.Errorf("propagate: checkpoint: %w", err)
		}
		if !changed {
			break
		}
	}

	interiorPresent = e.reclassifyGrayAsBlack()
	return interiorPresent, nil
}

func (e *Engine[N]) checkpoint() error {
	if e.Checkpoint == nil {
		return nil
	}
	return e.Checkpoint(e.BBoxEvaluations)
}

type passKind int

const (
	definitePass passKind = iota
	potwPass
)

// sweep performs one full outer-loop iteration: every tile currently
// flagged tovisit is processed once, in index order (ordering within a
// sweep does not affect the result — spec.md §4.5 — only the number of
// outer iterations does).
func (e *Engine[N]) sweep(kind passKind) (changed bool, err error) {
	m := e.Graph.M
	b := e.Graph.B
	for t := 0; t < m*m; t++ {
		if !e.Graph.ToVisit(t) {
			continue
		}
		e.Graph.ClearToVisit(t)
		tx, ty := t%m, t/m
		tileChanged, err := e.processTile(kind, tx, ty, b)
		if err != nil {
			return false, err
		}
		if tileChanged {
			changed = true
			e.Graph.MarkParents(t)
		}
	}
	return changed, nil
}

// processTile scans every row and word of tile (tx,ty) and applies the
// pass's per-cell decision rule to every currently GRAY cell.
func (e *Engine[N]) processTile(kind passKind, tx, ty, b int) (changed bool, err error) {
	tileSize := 1 << uint(b)
	y0 := ty * tileSize
	y1 := y0 + tileSize - 1
	wordsPerTile := tileSize / grid.CellsPerWord
	if wordsPerTile == 0 {
		wordsPerTile = 1
	}
	m0 := tx * tileSize / grid.CellsPerWord
	m1 := m0 + wordsPerTile - 1

	for y := y0; y <= y1 && y < e.Grid.N; y++ {
		g0, g1 := e.Grid.Band(y)
		if g0 > g1 {
			continue // empty band
		}
		rowM0 := g0 / grid.CellsPerWord
		rowM1 := g1 / grid.CellsPerWord
		lo := m0
		if rowM0 > lo {
			lo = rowM0
		}
		hi := m1
		if rowM1 < hi {
			hi = rowM1
		}
		if lo > hi {
			continue // tile's column range is entirely outside this row's band
		}
		for wm := lo; wm <= hi; wm++ {
			w := e.Grid.GetWord(wm, y)
			if w == grid.WhiteWord || w == grid.BlackWord {
				continue
			}
			for i := 0; i < grid.CellsPerWord; i++ {
				x := wm*grid.CellsPerWord + i
				if e.Grid.Get(x, y) != grid.Gray {
					continue
				}
				newColor, ok, err := e.decide(kind, x, y)
				if err != nil {
					return false, err
				}
				if ok {
					e.Grid.Set(x, y, newColor)
					changed = true
				}
			}
		}
	}
	return changed, nil
}

// decide computes fA for cell (x,y) and applies the pass's decision rule,
// returning the new color and whether a change should be applied.
func (e *Engine[N]) decide(kind passKind, x, y int) (grid.Color, bool, error) {
	cellRect, err := e.Mapper.CellRect(x, y)
	if err != nil {
		return 0, false, fmt.Errorf("cell rect: %w", err)
	}
	fA, err := e.Func.BBox(cellRect)
	e.BBoxEvaluations++
	if err != nil {
		return 0, false, fmt.Errorf("bbox: %w", err)
	}

	if fA.OutsideSquare(e.Mapper.R0, e.Mapper.R1) {
		return grid.White, true, nil
	}

	x0, y0, x1, y1, overflow, err := e.coveredCellRange(fA)
	if err != nil {
		return 0, false, err
	}

	switch kind {
	case definitePass:
		hitsWhite := overflow
		hitsBlack := false
		for cy := y0; cy <= y1 && !(hitsWhite && hitsBlack); cy++ {
			for cx := x0; cx <= x1; cx++ {
				switch e.Grid.Get(cx, cy) {
				case grid.White:
					hitsWhite = true
				case grid.Black:
					hitsBlack = true
				}
				if hitsWhite && hitsBlack {
					break
				}
			}
		}
		switch {
		case hitsWhite && !hitsBlack:
			return grid.White, true, nil
		case hitsBlack && !hitsWhite:
			return grid.Black, true, nil
		default:
			return 0, false, nil
		}

	default: // potwPass
		hitsWhite := overflow
		hitsNonWhite := false
		hitsGrayPotW := false
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				switch e.Grid.Get(cx, cy) {
				case grid.White:
					hitsWhite = true
				case grid.GrayPotW:
					hitsGrayPotW = true
					hitsNonWhite = true
				case grid.Black, grid.Gray:
					hitsNonWhite = true
				}
			}
		}
		if hitsGrayPotW || (hitsWhite && hitsNonWhite) {
			return grid.GrayPotW, true, nil
		}
		return 0, false, nil
	}
}

// coveredCellRange floors fA's corners into cell indices and clamps them
// to the grid, reporting whether any corner fell outside [0,N-1] — the
// "fA overflows the gray enclosure" case that counts toward hits_white.
func (e *Engine[N]) coveredCellRange(fA interval.Rect[N]) (x0, y0, x1, y1 int, overflow bool, err error) {
	fx0, err := e.Mapper.FloorToCell(fA.X0)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	fx1, err := e.Mapper.FloorToCell(fA.X1)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	fy0, err := e.Mapper.FloorToCell(fA.Y0)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	fy1, err := e.Mapper.FloorToCell(fA.Y1)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	n := int64(e.Grid.N)
	if fx0 < 0 || fy0 < 0 || fx1 > n-1 || fy1 > n-1 {
		overflow = true
	}
	x0 = clamp(fx0, 0, n-1)
	x1 = clamp(fx1, 0, n-1)
	y0 = clamp(fy0, 0, n-1)
	y1 = clamp(fy1, 0, n-1)
	return x0, y0, x1, y1, overflow, nil
}

func clamp(v, lo, hi int64) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return int(v)
}

// reclassifyGrayAsBlack turns every cell still plain GRAY (i.e. never
// promoted to GRAY-POTENTIALLY-WHITE) into BLACK, per spec.md §4.6: "after
// both passes, any cell still uniformly GRAY (not potw) is reclassified as
// interior." It reports whether at least one BLACK cell resulted.
func (e *Engine[N]) reclassifyGrayAsBlack() bool {
	found := false
	for y := 0; y < e.Grid.N; y++ {
		g0, g1 := e.Grid.Band(y)
		if g0 > g1 {
			continue
		}
		for x := g0; x <= g1; x++ {
			switch e.Grid.Get(x, y) {
			case grid.Gray:
				e.Grid.Set(x, y, grid.Black)
				found = true
			case grid.Black:
				found = true
			}
		}
	}
	return found
}
