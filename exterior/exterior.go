// Package exterior implements the pre-pass that runs before the reverse
// cell graph is built: find_special_exterior_hitting_squares in
// original_source/main.cpp. It works over 16-cell-aligned blocks (one grid
// word wide, 16 rows tall) so it can mark whole words WHITE directly
// without ever touching the reverse graph, then narrows every row's
// gray-enclosing band to the blocks that remain GRAY. This shrinks both
// the grid's storage footprint and the work revcg.Build has to do, without
// analyzing any individual pixel.
package exterior

import (
	"fmt"

	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/screen"
)

// blockBits is log2(16), the block granularity find_special_exterior
// operates at (one grid.Word per row).
const blockBits = 4
const blockSize = 1 << blockBits

// FindSpecialExterior paints every 16x16 block whose image under f lies
// entirely outside the working square [R0,R1]x[R0,R1] WHITE, and narrows
// each row's band to the span of blocks that remain GRAY. g must be
// freshly constructed (grid.New) with every row at its initial full-width
// band; calling this on a grid propagation has already touched will
// corrupt the gray-enclosure invariant.
func FindSpecialExterior[N fixedpoint.Number[N]](g *grid.Grid, f poly.Func[N], m screen.Mapper[N]) error {
	n := g.N
	if n%blockSize != 0 {
		return fmt.Errorf("exterior: N=%d is not a multiple of the %d-cell block size", n, blockSize)
	}

	for y0 := 0; y0 < n; y0 += blockSize {
		rowGray0, rowGray1 := n, -1 // empty band until a GRAY block widens it

		for x0 := 0; x0 < n; x0 += blockSize {
			blockRect, err := m.TileRect(x0>>blockBits, y0>>blockBits, blockBits)
			if err != nil {
				return fmt.Errorf("exterior: block rect: %w", err)
			}
			fA, err := f.BBox(blockRect)
			if err != nil {
				return fmt.Errorf("exterior: bbox: %w", err)
			}

			wordIdx := x0 / grid.CellsPerWord
			if fA.OutsideSquare(m.R0, m.R1) {
				for y := y0; y < y0+blockSize; y++ {
					g.SetWord(wordIdx, y, grid.WhiteWord)
				}
				continue
			}

			if x0 < rowGray0 {
				rowGray0 = x0
			}
			if x0+blockSize-1 > rowGray1 {
				rowGray1 = x0 + blockSize - 1
			}
		}

		for y := y0; y < y0+blockSize; y++ {
			if rowGray0 > rowGray1 {
				g.SetBand(y, 0, -1)
				continue
			}
			narrowBand(g, y, rowGray0, rowGray1)
		}
	}
	return nil
}

// narrowBand re-establishes row y's band to [g0,g1], preserving the GRAY/
// WHITE classification SetWord already painted into the wider band (a
// fresh SetBand would reset every word back to GRAY, erasing the pass's
// work), by reading the old word contents before reallocating.
func narrowBand(g *grid.Grid, y, g0, g1 int) {
	oldMem0, oldMem1 := g0/grid.CellsPerWord, g1/grid.CellsPerWord
	saved := make([]grid.Word, oldMem1-oldMem0+1)
	for m := oldMem0; m <= oldMem1; m++ {
		saved[m-oldMem0] = g.GetWord(m, y)
	}
	g.SetBand(y, g0, g1)
	for m := oldMem0; m <= oldMem1; m++ {
		g.SetWord(m, y, saved[m-oldMem0])
	}
}
