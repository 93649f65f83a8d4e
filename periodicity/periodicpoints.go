package periodicity

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// FindPeriodicPoints runs the optional periodic-point region search for
// cycle cycleIdx: it locates a candidate periodic seed pixel near the
// center of the cycle's smallest immediate-basin component, then expands
// a flood fill over the cycle's whole attraction basin (every component
// whose forward orbit closes into cycleIdx, not just the seed's own
// component) marking pixels whose forward bbox overlaps the seed's, and
// returns the axis-aligned rectangles covering the resulting region in
// pixel (cell index) coordinates; they are not converted to plane
// coordinates.
func (a *Analyzer[N]) FindPeriodicPoints(cycleIdx int) ([]Rect, error) {
	cyc := a.Cycles[cycleIdx]
	if cyc.Length == 0 {
		return nil, nil
	}
	smallest := cyc.ImmediateComponents[0]
	for _, c := range cyc.ImmediateComponents[1:] {
		if area(a.Components[c].Bounds) < area(a.Components[smallest].Bounds) {
			smallest = c
		}
	}

	seedX, seedY, found, err := a.scanForPeriodicSeed(smallest, cyc.Length)
	if err != nil {
		return nil, fmt.Errorf("periodicity: periodic point scan: %w", err)
	}
	if !found {
		return nil, nil
	}

	region := a.floodFillPossiblePeriodic(seedX, seedY, cycleIdx)
	return mergeRects(region), nil
}

func area(r Rect) int { return (r.X1 - r.X0 + 1) * (r.Y1 - r.Y0 + 1) }

// scanForPeriodicSeed implements the alternating +-delta probe: starting
// at the component's center (cx,cy), it tries increasing offsets delta,
// probing (cx+delta,cy+delta) then (cx-delta,cy-delta), and accepts the
// first candidate for which followsBackNear holds. The scan is bounded by
// compIdx's own extent (the farthest its bounding box reaches from its
// center), never by a fixed radius; only pixels on that diagonal through
// the center are probed, not every pixel of the component.
func (a *Analyzer[N]) scanForPeriodicSeed(compIdx, cycleLen int) (x, y int, ok bool, err error) {
	b := a.Components[compIdx].Bounds
	cx, cy := (b.X0+b.X1)/2, (b.Y0+b.Y1)/2
	maxDelta := maxInt(maxInt(cx-b.X0, b.X1-cx), maxInt(cy-b.Y0, b.Y1-cy))

	for delta := 0; delta <= maxDelta; delta++ {
		for _, sign := range []int{1, -1} {
			if delta == 0 && sign == -1 {
				continue // (0,0) offset already tried once
			}
			px, py := cx+sign*delta, cy+sign*delta
			if px < b.X0 || px > b.X1 || py < b.Y0 || py > b.Y1 {
				continue
			}
			hit, err := a.followsBackNear(px, py, cycleLen)
			if err != nil {
				return 0, 0, false, err
			}
			if hit {
				return px, py, true, nil
			}
		}
	}
	return 0, 0, false, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// followsBackNear follows f for cycleLen-1 iterations starting at pixel
// (x,y), each step moving to the pixel holding the lower-left corner of the
// current pixel's bbox, and reports whether the bbox of the pixel reached
// overlaps (x,y)'s 3x3 neighbourhood.
func (a *Analyzer[N]) followsBackNear(x, y, cycleLen int) (bool, error) {
	cx, cy := x, y
	for i := 0; i < cycleLen-1; i++ {
		cellRect, err := a.Mapper.CellRect(cx, cy)
		if err != nil {
			return false, err
		}
		fA, err := a.Func.BBox(cellRect)
		if err != nil {
			return false, err
		}
		fx, err := a.Mapper.FloorToCell(fA.X0)
		if err != nil {
			return false, err
		}
		fy, err := a.Mapper.FloorToCell(fA.Y0)
		if err != nil {
			return false, err
		}
		if fx < 0 || fy < 0 || fx >= int64(a.n) || fy >= int64(a.n) {
			return false, nil
		}
		cx, cy = int(fx), int(fy)
	}
	cellRect, err := a.Mapper.CellRect(cx, cy)
	if err != nil {
		return false, err
	}
	fA, err := a.Func.BBox(cellRect)
	if err != nil {
		return false, err
	}
	var e [4]int64
	for i, v := range []N{fA.X0, fA.X1, fA.Y0, fA.Y1} {
		if e[i], err = a.Mapper.FloorToCell(v); err != nil {
			return false, err
		}
	}
	return e[0] <= int64(x+1) && e[1] >= int64(x-1) && e[2] <= int64(y+1) && e[3] >= int64(y-1), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// floodFillPossiblePeriodic expands from the seed pixel over cycleIdx's
// whole attraction basin (every component, immediate or attracted, whose
// Cycle is cycleIdx), marking every 4-connected pixel whose own forward
// bbox overlaps the seed pixel's forward bbox — the adjacency relation
// spec.md §4.7 specifies for this search — and returns the pixel
// coordinates found.
func (a *Analyzer[N]) floodFillPossiblePeriodic(seedX, seedY, cycleIdx int) []Rect {
	seedRect, err := a.Mapper.CellRect(seedX, seedY)
	if err != nil {
		return nil
	}
	seedFA, err := a.Func.BBox(seedRect)
	if err != nil {
		return nil
	}

	visited := map[[2]int]bool{}
	queue := [][2]int{{seedX, seedY}}
	visited[[2]int{seedX, seedY}] = true
	var hits []Rect
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		px, py := p[0], p[1]
		cellRect, err := a.Mapper.CellRect(px, py)
		if err != nil {
			continue
		}
		fA, err := a.Func.BBox(cellRect)
		if err != nil {
			continue
		}
		if fA.Disjoint(seedFA) {
			continue
		}
		hits = append(hits, Rect{X0: px, Y0: py, X1: px, Y1: py})
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := px+d[0], py+d[1]
			if nx < 0 || ny < 0 || nx >= a.n || ny >= a.n {
				continue
			}
			comp, ok := a.ComponentAt(nx, ny)
			if !ok || a.Components[comp].Cycle != cycleIdx {
				continue
			}
			key := [2]int{nx, ny}
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, key)
		}
	}
	return hits
}

// mergeRects collapses a set of unit pixel rectangles into axis-aligned
// runs, merging neighbouring or overlapping rectangles row by row; this
// trades the original's general rectangle-merge for a simpler row-run
// coalescing pass that is sufficient since floodFillPossiblePeriodic only
// ever emits 1x1 rectangles.
func mergeRects(unit []Rect) []Rect {
	if len(unit) == 0 {
		return nil
	}
	byRow := map[int][]int{}
	for _, r := range unit {
		byRow[r.Y0] = append(byRow[r.Y0], r.X0)
	}
	rows := maps.Keys(byRow)
	sortInts(rows)

	var merged []Rect
	for _, y := range rows {
		xs := byRow[y]
		sortInts(xs)
		runStart := xs[0]
		prev := xs[0]
		for _, x := range xs[1:] {
			if x == prev+1 {
				prev = x
				continue
			}
			merged = append(merged, Rect{X0: runStart, Y0: y, X1: prev, Y1: y})
			runStart, prev = x, x
		}
		merged = append(merged, Rect{X0: runStart, Y0: y, X1: prev, Y1: y})
	}
	return merged
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}
