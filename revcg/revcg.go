// Package revcg builds and holds the reverse cell graph: for every coarse
// tile T, the set of tiles T' whose image under f can land in T
// (spec.md §4.4). It is the worklist index propagation drives off of.
package revcg

import (
	"fmt"

	"github.com/fractalio/juliatsacore/arena"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/screen"
)

// maxCoarseTilesPerSide caps M = N/B so an M*M index never exceeds the
// range a 32-bit tile index can address comfortably (spec.md §6: REVCG is
// "adjusted upward so N/2^b <= 2^15").
const maxCoarseTilesPerSide = 1 << 15

// Graph is the flat reverse cell graph over M x M coarse tiles.
type Graph struct {
	B int // coarse tile bits: tile side = 2^B cells
	M int // tiles per side, N/2^B

	parStart []int32 // per tile, offset into the arena's backing slice
	parLen   []int32 // per tile, parent count
	parMem   []int32 // flat arena-backed storage, tile indices ty*M+tx
	arena    *arena.Bump

	toVisit []bool
}

// ChooseB picks the smallest b >= minBits such that N/2^b <= 2^15,
// matching the REVCG clamp rule in spec.md §6.
func ChooseB(n, minBits int) int {
	b := minBits
	for n>>uint(b) > maxCoarseTilesPerSide {
		b++
	}
	return b
}

// DefaultArenaBudgetBytes and SmallArenaBudgetBytes are the per-arena byte
// caps spec.md §5 fixes at <=1GB (or <=512MB under the small-budget build).
// Build takes the budget as its arenaBudgetBytes argument.
const DefaultArenaBudgetBytes = 1 << 30
const SmallArenaBudgetBytes = 1 << 29

// Build constructs the reverse cell graph for function f over an N x N
// grid mapped by m, with coarse tiles of side 2^b, via the two-pass
// procedure of spec.md §4.4: first count each tile's parent set size (so
// it can be allocated exactly once in the arena), then fill it in.
func Build[N fixedpoint.Number[N]](f poly.Func[N], m screen.Mapper[N], b int, arenaBudgetBytes int) (*Graph, error) {
	tilesPerSide := m.N >> uint(b)
	if tilesPerSide == 0 || tilesPerSide<<uint(b) != m.N {
		return nil, fmt.Errorf("revcg: tile bits b=%d does not evenly divide N=%d", b, m.N)
	}
	mm := tilesPerSide * tilesPerSide

	counts := make([]int32, mm)

	// Pass 1: count.
	for ty := 0; ty < tilesPerSide; ty++ {
		for tx := 0; tx < tilesPerSide; tx++ {
			covered, err := coveredTiles(f, m, tx, ty, b, tilesPerSide)
			if err != nil {
				return nil, err
			}
			for _, t := range covered {
				counts[t]++
			}
		}
	}

	ar := arena.NewBump(arenaBudgetBytes)
	parStart := make([]int32, mm)
	parLen := make([]int32, mm)
	starts := make([]int32, mm)
	var offset int32
	for t := 0; t < mm; t++ {
		starts[t] = offset
		parStart[t] = offset
		offset += counts[t]
	}
	parMem, err := ar.Alloc(int(offset))
	if err != nil {
		return nil, fmt.Errorf("revcg: %w", err)
	}
	cursor := make([]int32, mm)
	copy(cursor, starts)

	// Pass 2: fill.
	for ty := 0; ty < tilesPerSide; ty++ {
		for tx := 0; tx < tilesPerSide; tx++ {
			self := int32(ty*tilesPerSide + tx)
			covered, err := coveredTiles(f, m, tx, ty, b, tilesPerSide)
			if err != nil {
				return nil, err
			}
			for _, t := range covered {
				parMem[cursor[t]] = self
				cursor[t]++
				parLen[t]++
			}
		}
	}

	toVisit := make([]bool, mm)
	for i := range toVisit {
		toVisit[i] = true
	}

	return &Graph{
		B: b, M: tilesPerSide,
		parStart: parStart, parLen: parLen, parMem: parMem,
		arena: ar, toVisit: toVisit,
	}, nil
}

// coveredTiles returns the coarse tile indices (ty*M+tx) that bbox(f(tile))
// can land in, or nil if the image lies entirely in the special exterior.
func coveredTiles[N fixedpoint.Number[N]](f poly.Func[N], m screen.Mapper[N], tx, ty, b, tilesPerSide int) ([]int32, error) {
	tileRect, err := m.TileRect(tx, ty, b)
	if err != nil {
		return nil, fmt.Errorf("revcg: tile rect: %w", err)
	}
	fA, err := f.BBox(tileRect)
	if err != nil {
		return nil, fmt.Errorf("revcg: bbox: %w", err)
	}
	if fA.OutsideSquare(m.R0, m.R1) {
		return nil, nil
	}
	x0, err := m.FloorToCell(fA.X0)
	if err != nil {
		return nil, err
	}
	x1, err := m.FloorToCell(fA.X1)
	if err != nil {
		return nil, err
	}
	y0, err := m.FloorToCell(fA.Y0)
	if err != nil {
		return nil, err
	}
	y1, err := m.FloorToCell(fA.Y1)
	if err != nil {
		return nil, err
	}
	txLo := clampTile(int(x0)>>uint(b), tilesPerSide)
	txHi := clampTile(int(x1)>>uint(b), tilesPerSide)
	tyLo := clampTile(int(y0)>>uint(b), tilesPerSide)
	tyHi := clampTile(int(y1)>>uint(b), tilesPerSide)

	out := make([]int32, 0, (txHi-txLo+1)*(tyHi-tyLo+1))
	for cy := tyLo; cy <= tyHi; cy++ {
		for cx := txLo; cx <= txHi; cx++ {
			out = append(out, int32(cy*tilesPerSide+cx))
		}
	}
	return out, nil
}

func clampTile(t, tilesPerSide int) int {
	if t < 0 {
		return 0
	}
	if t >= tilesPerSide {
		return tilesPerSide - 1
	}
	return t
}

// Parents returns the parent tile indices of tile t (ty*M+tx).
func (g *Graph) Parents(t int) []int32 {
	start := g.parStart[t]
	n := g.parLen[t]
	return g.parMem[start : start+n]
}

// ToVisit reports whether tile t is flagged for the next propagation
// sweep.
func (g *Graph) ToVisit(t int) bool { return g.toVisit[t] }

// ClearToVisit clears tile t's flag; propagation calls this on entry to a
// tile it is about to process.
func (g *Graph) ClearToVisit(t int) { g.toVisit[t] = false }

// MarkParents sets the tovisit flag for every parent of tile t; propagation
// calls this whenever any cell in t changed.
func (g *Graph) MarkParents(t int) {
	for _, p := range g.Parents(t) {
		g.toVisit[p] = true
	}
}

// ResetToVisitAllTrue re-arms every tile for a fresh pass (definite and
// potw each start from an all-true worklist).
func (g *Graph) ResetToVisitAllTrue() {
	for i := range g.toVisit {
		g.toVisit[i] = true
	}
}

// LoadToVisit installs a worklist loaded from a saved sidecar file,
// replacing the current flags wholesale. Callers must ensure v has length
// M*M; rawstate enforces this at the file boundary already.
func (g *Graph) LoadToVisit(v []bool) {
	copy(g.toVisit, v)
}

// SnapshotToVisit copies out the current worklist, e.g. for checkpointing.
func (g *Graph) SnapshotToVisit() []bool {
	out := make([]bool, len(g.toVisit))
	copy(out, g.toVisit)
	return out
}

// ReleaseArena drops the parent-list arena. Parents must not be called
// after this; propagation is expected to be finished.
func (g *Graph) ReleaseArena() {
	g.arena.Reset()
	g.parMem = nil
}
