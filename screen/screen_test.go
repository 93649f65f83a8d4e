package screen

import (
	"testing"

	"github.com/fractalio/juliatsacore/fixedpoint"
)

func TestCellRectCoversWholeRange(t *testing.T) {
	n := 256
	r0 := fixedpoint.FromFloat64(-2)
	r1 := fixedpoint.FromFloat64(2)
	m, err := NewMapper(n, r0, r1, fixedpoint.FromFloat64)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	first, err := m.CellRect(0, 0)
	if err != nil {
		t.Fatalf("CellRect(0,0): %v", err)
	}
	if first.X0.ToFloat64() != -2 || first.Y0.ToFloat64() != -2 {
		t.Fatalf("CellRect(0,0) lower corner = (%v,%v), want (-2,-2)", first.X0.ToFloat64(), first.Y0.ToFloat64())
	}
	last, err := m.CellRect(n-1, n-1)
	if err != nil {
		t.Fatalf("CellRect(n-1,n-1): %v", err)
	}
	if last.X1.ToFloat64() != 2 || last.Y1.ToFloat64() != 2 {
		t.Fatalf("CellRect(n-1,n-1) upper corner = (%v,%v), want (2,2)", last.X1.ToFloat64(), last.Y1.ToFloat64())
	}
}

func TestTileRectCoversWholeTile(t *testing.T) {
	n := 256
	m, err := NewMapper(n, fixedpoint.FromFloat64(-1), fixedpoint.FromFloat64(1), fixedpoint.FromFloat64)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	b := 4 // tile side = 16 cells
	tile, err := m.TileRect(0, 0, b)
	if err != nil {
		t.Fatalf("TileRect: %v", err)
	}
	cellLast, err := m.CellRect(15, 15)
	if err != nil {
		t.Fatalf("CellRect: %v", err)
	}
	if tile.X1.ToFloat64() != cellLast.X1.ToFloat64() {
		t.Fatalf("TileRect upper x = %v, want %v", tile.X1.ToFloat64(), cellLast.X1.ToFloat64())
	}
}

func TestFloorToCellRoundTrips(t *testing.T) {
	n := 1024
	m, err := NewMapper(n, fixedpoint.FromFloat64(-4), fixedpoint.FromFloat64(4), fixedpoint.FromFloat64)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	for _, i := range []int{0, 1, 500, 1023} {
		rect, err := m.CellRect(i, 0)
		if err != nil {
			t.Fatalf("CellRect(%d,0): %v", i, err)
		}
		got, err := m.FloorToCell(rect.X0)
		if err != nil {
			t.Fatalf("FloorToCell: %v", err)
		}
		if got != int64(i) {
			t.Fatalf("FloorToCell(CellRect(%d).X0) = %d, want %d", i, got, i)
		}
	}
}
