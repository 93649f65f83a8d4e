package bitmap

import (
	"fmt"

	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/grid"
)

// GreyscalePalette is the fixed 3-entry final-image palette spec.md §6
// fixes: WHITE=255, BLACK=0, GRAY=127. Index order matches idxOf below.
var GreyscalePalette = Palette{
	{R: 0, G: 0, B: 0},       // idxBlack
	{R: 255, G: 255, B: 255}, // idxWhite
	{R: 127, G: 127, B: 127}, // idxGray
}

const (
	idxBlack byte = 0
	idxWhite byte = 1
	idxGray  byte = 2
)

// idxOf maps a cell's color to its GreyscalePalette index. GRAY-POTW cells
// render GRAY; they are a legitimate final classification, not an error.
func idxOf(c grid.Color) byte {
	switch c {
	case grid.Black:
		return idxBlack
	case grid.White:
		return idxWhite
	default: // grid.Gray, grid.GrayPotW
		return idxGray
	}
}

// maxTileSide is the largest power-of-two tile width whose 4-bit payload
// fits under maxPayloadBytes.
func maxTileSide() int {
	side := 1
	for PayloadSize(side*2, side*2, 4) <= maxPayloadBytes {
		side *= 2
	}
	return side
}

// SaveTiled writes the final classification as one or more 4-bit indexed
// BMP tiles named "<stem>_Y<row>x<col>.bmp" (spec.md §6's
// "<stem>_YNNxMM.bmp", tile widths the largest power of two keeping each
// file under the 2 GiB limit). A grid small enough for a single tile
// produces exactly one file, "<stem>_Y0x0.bmp".
func SaveTiled(stem string, g *grid.Grid) error {
	n := g.N
	side := maxTileSide()
	if side > n {
		side = n
	}
	tilesPerSide := n / side
	if tilesPerSide*side != n {
		tilesPerSide++ // final row/col of tiles is partial
	}
	for ty := 0; ty < tilesPerSide; ty++ {
		for tx := 0; tx < tilesPerSide; tx++ {
			x0, y0 := tx*side, ty*side
			w, h := side, side
			if x0+w > n {
				w = n - x0
			}
			if y0+h > n {
				h = n - y0
			}
			path := fmt.Sprintf("%s_Y%dx%d.bmp", stem, ty, tx)
			pixelAt := func(px, py int) byte {
				return idxOf(g.Get(x0+px, y0+py))
			}
			if err := EncodeFile(path, w, h, 4, GreyscalePalette, pixelAt); err != nil {
				return errs.Wrap(err, "SaveTiled")
			}
		}
	}
	return nil
}

// maxDownsampleWidth is the widest an 8-bit downsampled image may be
// (spec.md §6: "k chosen so the output is <= 65536 wide").
const maxDownsampleWidth = 1 << 16

// downsampleFactor returns the smallest power-of-two k such that n/k <=
// maxDownsampleWidth.
func downsampleFactor(n int) int {
	k := 1
	for n/k > maxDownsampleWidth {
		k *= 2
	}
	return k
}

// SaveDownsampled writes the trustworthy-downsampled 8-bit image for grids
// too large to tile at full resolution (N > 65536): a k x k block is
// uniformly BLACK or WHITE only if every cell in it shares that color and
// none is GRAY-POTW; otherwise the block renders GRAY (spec.md §6, §9
// glossary "Trustworthy downsample"). File is "<stem>_2_<k>-fold.bmp".
func SaveDownsampled(stem string, g *grid.Grid) error {
	n := g.N
	k := downsampleFactor(n)
	width := n / k
	path := fmt.Sprintf("%s_2_%d-fold.bmp", stem, k)
	pixelAt := func(bx, by int) byte {
		return idxOf(downsampleBlock(g, bx*k, by*k, k))
	}
	if err := EncodeFile(path, width, width, 8, GreyscalePalette, pixelAt); err != nil {
		return errs.Wrap(err, "SaveDownsampled")
	}
	return nil
}

// downsampleBlock applies the trustworthy-downsample rule to the k x k
// block of cells with top-left corner (x0,y0).
func downsampleBlock(g *grid.Grid, x0, y0, k int) grid.Color {
	first := g.Get(x0, y0)
	if first == grid.GrayPotW {
		return grid.Gray
	}
	for y := y0; y < y0+k; y++ {
		for x := x0; x < x0+k; x++ {
			c := g.Get(x, y)
			if c == grid.GrayPotW || c != first {
				return grid.Gray
			}
		}
	}
	return first
}
