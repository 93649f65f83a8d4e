package main

import (
	"fmt"

	"github.com/fractalio/juliatsacore/cliargs"
	"github.com/fractalio/juliatsacore/poly"
)

// buildStem derives the output file family name from the run's
// parameters, following the auto-generated naming the original tool uses
// (LEN, FUNC, C, and A folded into a single token string) rather than
// requiring a separate name on every invocation.
func buildStem(cfg cliargs.Config) string {
	kind := ""
	switch cfg.Func {
	case poly.Z2C:
		return fmt.Sprintf("L%02d_z2c_c%s", cfg.LenK, cPointOrBox(cfg))
	case poly.Z2AZC:
		kind = "z2azc"
	case poly.Z3AZC:
		kind = "z3azc"
	case poly.Z4AZC:
		kind = "z4azc"
	case poly.Z5AZC:
		kind = "z5azc"
	case poly.Z6AZC:
		kind = "z6azc"
	}
	return fmt.Sprintf("L%02d_%s_c%s_a%s", cfg.LenK, kind, cPointOrBox(cfg), aPoint(cfg))
}

func cPointOrBox(cfg cliargs.Config) string {
	if cfg.CRe0 == cfg.CRe1 && cfg.CIm0 == cfg.CIm1 {
		return fmt.Sprintf("%+.6f%+.6fi", cfg.CRe0, cfg.CIm0)
	}
	return fmt.Sprintf("%+.6f_%+.6f_%+.6f_%+.6fi", cfg.CRe0, cfg.CRe1, cfg.CIm0, cfg.CIm1)
}

func aPoint(cfg cliargs.Config) string {
	return fmt.Sprintf("%+.6f%+.6fi", cfg.ARe, cfg.AIm)
}
