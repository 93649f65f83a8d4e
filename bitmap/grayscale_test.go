package bitmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fractalio/juliatsacore/grid"
)

func TestSaveTiledSingleFileForSmallGrid(t *testing.T) {
	n := 16
	g := grid.New(n)
	g.SetBand(0, 0, n-1)
	for x := 0; x < n; x++ {
		g.Set(x, 0, grid.Black)
	}
	dir := t.TempDir()
	stem := filepath.Join(dir, "out")
	if err := SaveTiled(stem, g); err != nil {
		t.Fatalf("SaveTiled: %v", err)
	}
	if _, err := os.Stat(stem + "_Y0x0.bmp"); err != nil {
		t.Fatalf("expected single tile file: %v", err)
	}
}

func TestDownsampleFactorKeepsWidthUnderLimit(t *testing.T) {
	if k := downsampleFactor(1 << 17); k != 2 {
		t.Fatalf("downsampleFactor(2^17) = %d, want 2", k)
	}
	if k := downsampleFactor(1 << 16); k != 1 {
		t.Fatalf("downsampleFactor(2^16) = %d, want 1", k)
	}
}

func TestDownsampleBlockUniformColorSurvives(t *testing.T) {
	n := 4
	g := grid.New(n)
	g.SetBand(0, 0, n-1)
	g.SetBand(1, 0, n-1)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			g.Set(x, y, grid.Black)
		}
	}
	if c := downsampleBlock(g, 0, 0, 2); c != grid.Black {
		t.Fatalf("uniform block = %v, want BLACK", c)
	}
}

func TestDownsampleBlockMixedColorIsGray(t *testing.T) {
	n := 4
	g := grid.New(n)
	g.SetBand(0, 0, n-1)
	g.SetBand(1, 0, n-1)
	g.Set(0, 0, grid.Black)
	g.Set(1, 0, grid.White)
	if c := downsampleBlock(g, 0, 0, 2); c != grid.Gray {
		t.Fatalf("mixed block = %v, want GRAY", c)
	}
}

func TestDownsampleBlockGrayPotWAlwaysGray(t *testing.T) {
	n := 2
	g := grid.New(n)
	g.SetBand(0, 0, n-1)
	g.Set(0, 0, grid.GrayPotW)
	g.Set(1, 0, grid.GrayPotW)
	if c := downsampleBlock(g, 0, 0, 2); c != grid.Gray {
		t.Fatalf("GRAY_POTW block = %v, want GRAY", c)
	}
}

func TestIdxOfMapsColors(t *testing.T) {
	cases := map[grid.Color]byte{
		grid.Black:    idxBlack,
		grid.White:    idxWhite,
		grid.Gray:     idxGray,
		grid.GrayPotW: idxGray,
	}
	for c, want := range cases {
		if got := idxOf(c); got != want {
			t.Fatalf("idxOf(%v) = %d, want %d", c, got, want)
		}
	}
}
