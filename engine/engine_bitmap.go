package engine

import (
	"github.com/fractalio/juliatsacore/bitmap"
	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/periodicity"
)

// tiledWidthLimit is the largest grid width bitmap.SaveTiled handles at
// full resolution (spec.md §6: "_YNNxMM.bmp ... for N <= 65536"); wider
// grids fall back to the trustworthy downsample.
const tiledWidthLimit = 1 << 16

// SaveBitmap writes the final classification image: tiled 4-bit BMPs for
// N <= 65536, or the trustworthy-downsampled 8-bit BMP above that (spec.md
// §6, "Output files").
func (e *Engine[N]) SaveBitmap() error {
	var err error
	if e.Grid.N <= tiledWidthLimit {
		err = bitmap.SaveTiled(e.stem, e.Grid)
	} else {
		err = bitmap.SaveDownsampled(e.stem, e.Grid)
	}
	if err != nil {
		return errs.Wrap(err, "engine.SaveBitmap")
	}
	return nil
}

// SavePeriodicityBitmaps writes "<stem>_period.bmp" and, when regions is
// non-nil, "<stem>_periodic_points.bmp" (spec.md §6), using the run's UUID
// to seed the heat-map palette shuffle.
func (e *Engine[N]) SavePeriodicityBitmaps(a *periodicity.Analyzer[N], regions [][]periodicity.Rect) error {
	seed := e.RunSeed()
	if err := bitmap.SavePeriod(e.stem+"_period.bmp", e.Grid, a, seed); err != nil {
		return errs.Wrap(err, "engine.SavePeriodicityBitmaps: period")
	}
	if regions != nil {
		if err := bitmap.SavePeriodicPoints(e.stem+"_periodic_points.bmp", e.Grid.N, regions, seed); err != nil {
			return errs.Wrap(err, "engine.SavePeriodicityBitmaps: periodic points")
		}
	}
	return nil
}
