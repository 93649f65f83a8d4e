package rawstate

import (
	"path/filepath"
	"testing"

	"github.com/fractalio/juliatsacore/grid"
)

func sampleGrid(n int) *grid.Grid {
	g := grid.New(n)
	for y := 0; y < n; y++ {
		g.SetBand(y, 0, n-1)
		for x := 0; x < n; x++ {
			switch (x + y) % 3 {
			case 0:
				g.Set(x, y, grid.White)
			case 1:
				g.Set(x, y, grid.Black)
			default:
				g.Set(x, y, grid.GrayPotW)
			}
		}
	}
	return g
}

func TestSaveLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.raw")
	n := 32
	g := sampleGrid(n)
	if err := Save(path, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path, n)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if got, want := loaded.Get(x, y), g.Get(x, y); got != want {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestLoadBlowsUpHalfWidthFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "half.raw")
	small := sampleGrid(16)
	if err := Save(path, small); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path, 32)
	if err != nil {
		t.Fatalf("Load at 2x: %v", err)
	}
	if loaded.N != 32 {
		t.Fatalf("loaded.N = %d, want 32", loaded.N)
	}
	// GRAY_POTW cells must have been demoted to GRAY by the blow-up.
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if small.Get(x, y) != grid.GrayPotW {
				continue
			}
			if c := loaded.Get(x*2, y*2); c != grid.Gray {
				t.Fatalf("blown-up cell (%d,%d) = %v, want GRAY", x*2, y*2, c)
			}
		}
	}
}

func TestLoadRejectsMismatchedWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.raw")
	g := sampleGrid(16)
	if err := Save(path, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path, 128); err == nil {
		t.Fatalf("expected Load to reject a width matching neither N nor N/2")
	}
}

func TestToVisitRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.def.tovisit")
	v := []bool{true, false, true, true, false}
	if err := SaveToVisit(path, v); err != nil {
		t.Fatalf("SaveToVisit: %v", err)
	}
	got, err := LoadToVisit(path, len(v))
	if err != nil {
		t.Fatalf("LoadToVisit: %v", err)
	}
	for i := range v {
		if got[i] != v[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], v[i])
		}
	}
}

func TestToVisitMismatchedLengthFallsBackToAllTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.potw.tovisit")
	if err := SaveToVisit(path, []bool{true, false, true}); err != nil {
		t.Fatalf("SaveToVisit: %v", err)
	}
	got, err := LoadToVisit(path, 10)
	if err != nil {
		t.Fatalf("LoadToVisit: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i, b := range got {
		if !b {
			t.Fatalf("index %d = false, want all-true fallback", i)
		}
	}
}

func TestToVisitMissingFileFallsBackToAllTrue(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadToVisit(filepath.Join(dir, "nope.tovisit"), 7)
	if err != nil {
		t.Fatalf("LoadToVisit: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
}
