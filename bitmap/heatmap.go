package bitmap

import (
	"fmt"
	"math/rand/v2"

	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/periodicity"
)

// maxHeatmapColors is the 8-bit indexed image's color budget; components
// beyond this share colors by wrapping, which only degrades the cosmetic
// distinguishability spec.md describes, never the underlying data.
const maxHeatmapColors = 256

// shuffledHeatPalette builds a seeded, shuffled palette of n (capped to
// maxHeatmapColors-1) distinguishable colors plus a trailing WHITE entry for
// unclassified cells (spec.md §6: "a shuffled heat-map with a deterministic
// ordering and a seed-dependent rotation to keep multi-run outputs visually
// distinguishable"). A seeded PRNG is the stdlib's job here: the shuffle is
// purely cosmetic and has no bearing on the computation's correctness.
func shuffledHeatPalette(n int, seed uint64) (Palette, byte) {
	if n > maxHeatmapColors-1 {
		n = maxHeatmapColors - 1
	}
	if n < 1 {
		n = 1
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	pal := make(Palette, n+1)
	for slot, compIdx := range order {
		pal[slot] = colorWheel(compIdx, n)
	}
	whiteIdx := byte(n)
	pal[whiteIdx] = RGB{R: 255, G: 255, B: 255}
	return pal, whiteIdx
}

// colorWheel picks a saturated color for slot i of n by stepping evenly
// around the hue wheel; i and n are both small (bounded by
// maxHeatmapColors), so this need not be fast.
func colorWheel(i, n int) RGB {
	hue := float64(i) / float64(n) * 360.0
	r, g, b := hsvToRGB(hue, 0.85, 0.95)
	return RGB{R: r, G: g, B: b}
}

func hsvToRGB(h, s, v float64) (r, g, b byte) {
	c := v * s
	hp := h / 60.0
	x := c * (1 - absf(modf(hp, 2)-1))
	var r1, g1, b1 float64
	switch {
	case hp < 1:
		r1, g1, b1 = c, x, 0
	case hp < 2:
		r1, g1, b1 = x, c, 0
	case hp < 3:
		r1, g1, b1 = 0, c, x
	case hp < 4:
		r1, g1, b1 = 0, x, c
	case hp < 5:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	m := v - c
	return toByte(r1 + m), toByte(g1 + m), toByte(b1 + m)
}

func toByte(v float64) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(v * 255)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func modf(v, m float64) float64 {
	for v >= m {
		v -= m
	}
	for v < 0 {
		v += m
	}
	return v
}

// SavePeriod writes "<stem>_period.bmp": every BLACK cell colored by its
// Fatou component's assigned heat-map index, immediate-basin components
// assigned consecutive palette slots in cycle-discovery order (matching
// scenario 5's "immediate-basin palette indices assigned consecutively"),
// attraction-basin components following after. Non-BLACK cells render
// WHITE.
func SavePeriod[N fixedpoint.Number[N]](path string, g *grid.Grid, a *periodicity.Analyzer[N], seed uint64) error {
	order := assignPaletteSlots(a)
	pal, whiteIdx := shuffledHeatPalette(len(order), seed)
	pixelAt := func(x, y int) byte {
		compIdx, ok := a.ComponentAt(x, y)
		if !ok {
			return whiteIdx
		}
		slot, ok := order[compIdx]
		if !ok {
			return whiteIdx
		}
		return byte(slot)
	}
	n := g.N
	if err := EncodeFile(path, n, n, 8, pal, pixelAt); err != nil {
		return errs.Wrap(err, "SavePeriod")
	}
	return nil
}

// assignPaletteSlots walks Analyzer.Cycles in discovery order, giving each
// cycle's immediate-basin components consecutive slots before moving to
// attraction basins, then appends any attraction basins in component
// discovery order.
func assignPaletteSlots[N fixedpoint.Number[N]](a *periodicity.Analyzer[N]) map[int]int {
	order := map[int]int{}
	next := 0
	for _, cyc := range a.Cycles {
		for _, comp := range cyc.ImmediateComponents {
			order[comp] = next
			next++
		}
	}
	for compIdx := range a.Components {
		if _, done := order[compIdx]; done {
			continue
		}
		order[compIdx] = next
		next++
	}
	return order
}

// SavePeriodicPoints writes "<stem>_periodic_points.bmp": the periodic-point
// regions FindPeriodicPoints located for every cycle, one color per cycle,
// over a WHITE background.
func SavePeriodicPoints(path string, n int, regionsByCycle [][]periodicity.Rect, seed uint64) error {
	pal, whiteIdx := shuffledHeatPalette(len(regionsByCycle), seed)
	marks := make([]byte, n*n)
	for i := range marks {
		marks[i] = whiteIdx
	}
	for cycleIdx, rects := range regionsByCycle {
		slot := byte(cycleIdx)
		if int(slot) >= len(pal)-1 {
			slot = slot % byte(len(pal)-1)
		}
		for _, r := range rects {
			for y := r.Y0; y <= r.Y1; y++ {
				for x := r.X0; x <= r.X1; x++ {
					if x < 0 || y < 0 || x >= n || y >= n {
						continue
					}
					marks[y*n+x] = slot
				}
			}
		}
	}
	pixelAt := func(x, y int) byte { return marks[y*n+x] }
	if err := EncodeFile(path, n, n, 8, pal, pixelAt); err != nil {
		return errs.Wrap(err, fmt.Sprintf("SavePeriodicPoints(%s)", path))
	}
	return nil
}
