// Package engine encapsulates one run's grid, reverse graph, arenas, and
// cycles behind an object instead of the process-wide globals
// original_source/main.cpp uses (Design Notes §9, "Global mutable state").
// An Engine is created fresh per run and exposes Compute, Periodicity,
// SaveRaw, and SaveBitmap as methods; nothing about it is meant to outlive
// the run that created it.
package engine

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/fractalio/juliatsacore/cliargs"
	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/exterior"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/grid"
	"github.com/fractalio/juliatsacore/periodicity"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/propagate"
	"github.com/fractalio/juliatsacore/rawstate"
	"github.com/fractalio/juliatsacore/revcg"
	"github.com/fractalio/juliatsacore/screen"
)

// Stats collects the run-scoped counters Compute records after propagation:
// the bbox evaluation count (spec.md §9, "the original tracks ctrbbxfa") and
// the final color tally.
type Stats struct {
	BBoxEvaluations int64
	White           int64
	Black           int64
	Gray            int64
	GrayPotW        int64
	InteriorPresent bool
}

// Engine owns every per-run resource: the grid, the reverse cell graph and
// its arena, the polynomial, and the plane<->cell mapping. N selects the
// number-type backend (fixedpoint.Num for a verified run, fixedpoint.Double
// for tests/sanity only, per SPEC_FULL.md §3).
type Engine[N fixedpoint.Number[N]] struct {
	RunID uuid.UUID

	Func   poly.Func[N]
	Mapper screen.Mapper[N]
	Grid   *grid.Grid
	Graph  *revcg.Graph

	Stats Stats

	stem string
	log  *runLogger
}

// New builds an Engine from a parsed configuration. fromFloat constructs a
// backend N value from a float64 (fixedpoint.FromFloat64 or
// fixedpoint.DoubleFromFloat64); stem names the output file family (§6);
// logWriter receives the run's diagnostic log (callers typically pass the
// append-mode juliatsacoredyn.log.txt file opened via OpenLogFile).
func New[N fixedpoint.Number[N]](cfg cliargs.Config, fromFloat func(float64) N, stem string, logWriter io.Writer) (*Engine[N], error) {
	runID := uuid.New()

	n := 1 << uint(cfg.LenK)
	r0 := fromFloat(-cfg.RangeR1)
	r1 := fromFloat(cfg.RangeR1)
	m, err := screen.NewMapper(n, r0, r1, fromFloat)
	if err != nil {
		return nil, errs.Wrap(err, "engine.New: mapper")
	}

	f := poly.Func[N]{
		Kind: cfg.Func,
		ARe:  fromFloat(cfg.ARe),
		AIm:  fromFloat(cfg.AIm),
		C: poly.ParamBox[N]{
			Re0: fromFloat(cfg.CRe0), Re1: fromFloat(cfg.CRe1),
			Im0: fromFloat(cfg.CIm0), Im1: fromFloat(cfg.CIm1),
		},
	}

	g := grid.New(n)

	return &Engine[N]{
		RunID:  runID,
		Func:   f,
		Mapper: m,
		Grid:   g,
		stem:   stem,
		log:    newRunLogger(logWriter, runID),
	}, nil
}

// LoadRaw replaces the engine's grid with the one saved at path, blowing
// up a half-width save per rawstate.Load's N/2 acceptance rule — the input
// side of spec.md §6's refinement workflow (scenario 6).
func (e *Engine[N]) LoadRaw(path string) error {
	g, err := rawstate.Load(path, e.Grid.N)
	if err != nil {
		return errs.Wrap(err, "engine.LoadRaw")
	}
	e.Grid = g
	return nil
}

// Compute runs the full classification pipeline: special-exterior
// pre-pass, reverse-graph construction, the two propagation passes to
// fixed point, and the final gray reclassification (spec.md §1's data
// flow). The reverse graph's arena is released as soon as propagation
// returns, before any periodicity work, per §5's "Memory" paragraph.
func (e *Engine[N]) Compute(revcgB int, arenaBudgetBytes int) error {
	if err := exterior.FindSpecialExterior(e.Grid, e.Func, e.Mapper); err != nil {
		return errs.Wrap(err, "engine.Compute: special exterior")
	}

	graph, err := revcg.Build(e.Func, e.Mapper, revcgB, arenaBudgetBytes)
	if err != nil {
		return errs.Wrap(err, "engine.Compute: build reverse graph")
	}
	e.Graph = graph

	checkpointer := NewCheckpointer(func(bboxEvaluations int64) error {
		e.log.logCheckpoint(bboxEvaluations)
		if err := e.SaveRaw(e.stem + "_temp.raw"); err != nil {
			return err
		}
		return e.SaveToVisit(e.stem + "_temp.def.tovisit")
	})

	pe := &propagate.Engine[N]{
		Grid:   e.Grid,
		Graph:  e.Graph,
		Mapper: e.Mapper,
		Func:   e.Func,
		Checkpoint: func(bboxEvaluations int64) error {
			return checkpointer.Trip(bboxEvaluations)
		},
	}
	interiorPresent, err := pe.Run()
	e.Stats.BBoxEvaluations = pe.BBoxEvaluations
	if err != nil {
		e.log.logError("engine.Compute", err)
		return errs.Wrap(err, "engine.Compute: propagate")
	}
	e.Stats.InteriorPresent = interiorPresent

	e.Graph.ReleaseArena()

	white, black, gray, grayPotW := e.Grid.CountColors()
	e.Stats.White, e.Stats.Black, e.Stats.Gray, e.Stats.GrayPotW = white, black, gray, grayPotW
	e.log.logClassification(white, black, gray, grayPotW)

	return nil
}

// Periodicity runs the Fatou-component analyzer over the current
// classification and, if findPeriodicPoints is set, the optional
// periodic-point region search for every cycle discovered.
func (e *Engine[N]) Periodicity(findPeriodicPoints bool) (*periodicity.Analyzer[N], [][]periodicity.Rect, error) {
	a := periodicity.New(e.Grid, e.Mapper, e.Func)
	if err := a.Run(); err != nil {
		e.log.logError("engine.Periodicity", err)
		return nil, nil, errs.Wrap(err, "engine.Periodicity")
	}
	e.log.Printf("periodicity: %d components, %d cycles", len(a.Components), len(a.Cycles))

	var regions [][]periodicity.Rect
	if findPeriodicPoints {
		regions = make([][]periodicity.Rect, len(a.Cycles))
		for i := range a.Cycles {
			rects, err := a.FindPeriodicPoints(i)
			if err != nil {
				return nil, nil, errs.Wrap(err, "engine.Periodicity: periodic points")
			}
			regions[i] = rects
		}
	}
	return a, regions, nil
}

// SaveRaw persists the current grid to path (spec.md §6 "<stem>.raw").
func (e *Engine[N]) SaveRaw(path string) error {
	if err := rawstate.Save(path, e.Grid); err != nil {
		return errs.Wrap(err, "engine.SaveRaw")
	}
	return nil
}

// SaveToVisit persists the reverse graph's current worklist to path, the
// checkpoint sidecar spec.md §6 names alongside "_temp.raw".
func (e *Engine[N]) SaveToVisit(path string) error {
	if e.Graph == nil {
		return errs.Wrap(fmt.Errorf("no reverse graph built yet"), "engine.SaveToVisit")
	}
	if err := rawstate.SaveToVisit(path, e.Graph.SnapshotToVisit()); err != nil {
		return errs.Wrap(err, "engine.SaveToVisit")
	}
	return nil
}

// RunSeed derives a deterministic but run-distinguishing seed for the
// heat-map palette shuffle from the run's UUID (spec.md §6: "a
// seed-dependent rotation to keep multi-run outputs visually
// distinguishable").
func (e *Engine[N]) RunSeed() uint64 {
	b, _ := e.RunID.MarshalBinary()
	return binary.LittleEndian.Uint64(b[:8])
}
