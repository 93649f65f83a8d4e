package cliargs

import (
	"testing"

	"github.com/fractalio/juliatsacore/poly"
)

func TestParseMinimalCalc(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "C=-0.75,0.1", "LEN=10", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Func != poly.Z2C {
		t.Fatalf("Func = %v, want Z2C", cfg.Func)
	}
	if cfg.Cmd != CmdCalc {
		t.Fatalf("Cmd = %v, want CmdCalc", cfg.Cmd)
	}
	if cfg.LenK != 10 {
		t.Fatalf("LenK = %d, want 10", cfg.LenK)
	}
	if cfg.RangeR1 != 2 {
		t.Fatalf("RangeR1 = %v, want 2", cfg.RangeR1)
	}
}

func TestParseCaseInsensitiveAndOrderIndependent(t *testing.T) {
	cfg, err := Parse([]string{"range=4", "len=12", "cmd=calc", "func=z3azc", "c=0,0"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Func != poly.Z3AZC {
		t.Fatalf("Func = %v, want Z3AZC", cfg.Func)
	}
}

func TestParsePeriodWithPP(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=PERIOD,PP", "LEN=10", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Cmd != CmdPeriod || !cfg.PeriodicPoints {
		t.Fatalf("Cmd=%v PeriodicPoints=%v, want CmdPeriod/true", cfg.Cmd, cfg.PeriodicPoints)
	}
}

func TestParseCBoxForm(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "C=-0.1,0.1,-0.2,0.2", "LEN=10", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CRe0 != quantize(-0.1) || cfg.CRe1 != quantize(0.1) || cfg.CIm0 != quantize(-0.2) || cfg.CIm1 != quantize(0.2) {
		t.Fatalf("C box = (%v,%v,%v,%v)", cfg.CRe0, cfg.CRe1, cfg.CIm0, cfg.CIm1)
	}
}

func TestLenClampedToRange(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "LEN=2", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LenK != 8 {
		t.Fatalf("LenK = %d, want clamped to 8", cfg.LenK)
	}

	cfg2, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "LEN=99", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg2.LenK != 31 {
		t.Fatalf("LenK = %d, want clamped to 31", cfg2.LenK)
	}
}

func TestRevcgAdjustedUpwardForLargeLen(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "LEN=31", "RANGE=2", "REVCG=4"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LenK-cfg.RevcgB > 15 {
		t.Fatalf("LenK-RevcgB = %d, want <= 15", cfg.LenK-cfg.RevcgB)
	}
}

func TestRangeRoundsUpToPowerOfTwo(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2C", "CMD=CALC", "LEN=10", "RANGE=3"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.RangeR1 != 4 {
		t.Fatalf("RangeR1 = %v, want 4", cfg.RangeR1)
	}
}

func TestQuantizesCAndA(t *testing.T) {
	cfg, err := Parse([]string{"FUNC=Z2AZC", "CMD=CALC", "C=0.1,0.2", "A=0.30000001,0", "LEN=10", "RANGE=2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	quantum := 1.0 / float64(int64(1)<<25)
	if diff := cfg.ARe - 0.3; diff > quantum || diff < -quantum {
		t.Fatalf("ARe = %v, not within one quantum of 0.3", cfg.ARe)
	}
}

func TestMissingRequiredTokenErrors(t *testing.T) {
	if _, err := Parse([]string{"CMD=CALC", "LEN=10", "RANGE=2"}); err == nil {
		t.Fatalf("expected error for missing FUNC")
	}
}

func TestUnknownFuncErrors(t *testing.T) {
	if _, err := Parse([]string{"FUNC=Z9", "CMD=CALC", "LEN=10", "RANGE=2"}); err == nil {
		t.Fatalf("expected error for unknown FUNC")
	}
}
