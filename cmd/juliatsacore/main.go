// Command juliatsacore computes a trustworthy classification image for a
// filled Julia set and writes its bitmap, raw-state, and log outputs.
package main

import (
	"fmt"
	"os"

	"github.com/fractalio/juliatsacore/cliargs"
	"github.com/fractalio/juliatsacore/engine"
	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/feasibility"
	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/poly"
	"github.com/fractalio/juliatsacore/rawstate"
	"github.com/fractalio/juliatsacore/revcg"
)

// degreeOf mirrors poly's unexported degree table just enough to feed
// feasibility.Check; main is the only caller that needs it as a plain int
// rather than a poly.Func method.
func degreeOf(k poly.FuncKind) int {
	switch k {
	case poly.Z2C, poly.Z2AZC:
		return 2
	case poly.Z3AZC:
		return 3
	case poly.Z4AZC:
		return 4
	case poly.Z5AZC:
		return 5
	case poly.Z6AZC:
		return 6
	default:
		return 2
	}
}

// Every error run returns maps to exit 99; spec.md §6 draws no further
// distinction among fatal causes at the process boundary.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(99)
	}
}

func run(args []string) error {
	cfg, err := cliargs.Parse(args)
	if err != nil {
		return err
	}
	stem := buildStem(cfg)

	logFile, err := engine.OpenLogFile("")
	if err != nil {
		return errs.Wrap(err, "main: open log")
	}
	defer logFile.Close()

	if cfg.Cmd == cliargs.CmdConvert {
		outPath := stem + ".raw"
		fmt.Printf("converting legacy raw family %q -> %s\n", stem+"_in", outPath)
		n := 1 << uint(cfg.LenK)
		if err := rawstate.ConvertLegacy(stem+"_in", n, outPath); err != nil {
			return errs.Wrap(err, "main: convert legacy")
		}
		return nil
	}

	if ok, warn := feasibility.Check(feasibility.FixedPoint128, degreeOf(cfg.Func), cfg.RangeR1, cfg.LenK); !ok {
		fmt.Printf("warning: %s\n", warn)
	}

	e, err := engine.New(cfg, fixedpoint.FromFloat64, stem, logFile)
	if err != nil {
		return errs.Wrap(err, "main: new engine")
	}

	if _, statErr := os.Stat(stem + "_in.raw"); statErr == nil {
		fmt.Printf("loading prior state from %s\n", stem+"_in.raw")
		if err := e.LoadRaw(stem + "_in.raw"); err != nil {
			return errs.Wrap(err, "main: load raw")
		}
	}

	fmt.Printf("computing %s at N=%d\n", cfg.Func, 1<<uint(cfg.LenK))
	if err := e.Compute(cfg.RevcgB, revcg.DefaultArenaBudgetBytes); err != nil {
		return errs.Wrap(err, "main: compute")
	}

	if err := e.SaveRaw(stem + ".raw"); err != nil {
		return errs.Wrap(err, "main: save raw")
	}
	if err := e.SaveBitmap(); err != nil {
		return errs.Wrap(err, "main: save bitmap")
	}

	if cfg.Cmd == cliargs.CmdPeriod {
		fmt.Println("running periodicity analysis")
		a, regions, err := e.Periodicity(cfg.PeriodicPoints)
		if err != nil {
			return errs.Wrap(err, "main: periodicity")
		}
		if err := e.SavePeriodicityBitmaps(a, regions); err != nil {
			return errs.Wrap(err, "main: save periodicity bitmaps")
		}
	}

	fmt.Println("done")
	return nil
}
