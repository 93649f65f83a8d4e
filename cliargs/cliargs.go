// Package cliargs parses the command's KEY=VALUE token grammar
// (spec.md §6): order-independent, case-insensitive, no flags framework
// needed since every token stands alone.
package cliargs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fractalio/juliatsacore/errs"
	"github.com/fractalio/juliatsacore/poly"
)

// Cmd selects the run's top-level action.
type Cmd int

const (
	CmdCalc Cmd = iota
	CmdPeriod
	CmdConvert
)

// quantumBits is the 2^-25 quantization spec.md §6 fixes for C and A
// components.
const quantumBits = 25

// Config is the fully parsed, clamped, and quantized configuration for a
// run.
type Config struct {
	Func FuncKind
	Cmd  Cmd

	PeriodicPoints bool // CMD=PERIOD,PP

	CRe0, CRe1 float64 // point: CRe0==CRe1
	CIm0, CIm1 float64
	ARe, AIm   float64

	LenK   int // N = 2^LenK
	RevcgB int // coarse tile bits

	RangeR1 float64 // R1; R0 = -R1
}

// FuncKind is an alias of poly.FuncKind; parseFuncKind maps FUNC values onto
// poly's constants.
type FuncKind = poly.FuncKind

// Parse parses tokens (as given on the command line, one KEY=VALUE pair
// each) into a Config, applying every clamp and quantization rule
// spec.md §6 specifies.
func Parse(tokens []string) (Config, error) {
	raw := map[string]string{}
	for _, tok := range tokens {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return Config{}, fmt.Errorf("%w: token %q missing '='", errs.ErrConfigOutOfRange, tok)
		}
		key := strings.ToUpper(strings.TrimSpace(tok[:eq]))
		val := strings.TrimSpace(tok[eq+1:])
		raw[key] = val
	}

	cfg := Config{LenK: -1, RevcgB: -1}

	if v, ok := raw["FUNC"]; ok {
		k, err := parseFuncKind(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Func = k
	} else {
		return Config{}, fmt.Errorf("%w: FUNC is required", errs.ErrConfigOutOfRange)
	}

	if v, ok := raw["CMD"]; ok {
		cmd, pp, err := parseCmd(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Cmd = cmd
		cfg.PeriodicPoints = pp
	} else {
		return Config{}, fmt.Errorf("%w: CMD is required", errs.ErrConfigOutOfRange)
	}

	if v, ok := raw["C"]; ok {
		re0, re1, im0, im1, err := parseComplexOrBox(v)
		if err != nil {
			return Config{}, fmt.Errorf("C: %w", err)
		}
		cfg.CRe0, cfg.CRe1 = quantize(re0), quantize(re1)
		cfg.CIm0, cfg.CIm1 = quantize(im0), quantize(im1)
	}

	if v, ok := raw["A"]; ok {
		re, im, err := parseComplex(v)
		if err != nil {
			return Config{}, fmt.Errorf("A: %w", err)
		}
		cfg.ARe, cfg.AIm = quantize(re), quantize(im)
	}

	if v, ok := raw["LEN"]; ok {
		k, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: LEN=%q not an integer", errs.ErrConfigOutOfRange, v)
		}
		cfg.LenK = clampInt(k, 8, 31)
	} else {
		return Config{}, fmt.Errorf("%w: LEN is required", errs.ErrConfigOutOfRange)
	}

	if v, ok := raw["REVCG"]; ok {
		b, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: REVCG=%q not an integer", errs.ErrConfigOutOfRange, v)
		}
		if b < 4 {
			b = 4
		}
		for cfg.LenK-b > 15 {
			b++
		}
		cfg.RevcgB = b
	} else {
		b := 4
		for cfg.LenK-b > 15 {
			b++
		}
		cfg.RevcgB = b
	}

	if v, ok := raw["RANGE"]; ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: RANGE=%q not a number", errs.ErrConfigOutOfRange, v)
		}
		cfg.RangeR1 = nextPowerOfTwo(r)
	} else {
		return Config{}, fmt.Errorf("%w: RANGE is required", errs.ErrConfigOutOfRange)
	}

	return cfg, nil
}

func parseFuncKind(v string) (poly.FuncKind, error) {
	switch strings.ToUpper(v) {
	case "Z2C":
		return poly.Z2C, nil
	case "Z2AZC":
		return poly.Z2AZC, nil
	case "Z3AZC":
		return poly.Z3AZC, nil
	case "Z4AZC":
		return poly.Z4AZC, nil
	case "Z5AZC":
		return poly.Z5AZC, nil
	case "Z6AZC":
		return poly.Z6AZC, nil
	default:
		return 0, fmt.Errorf("%w: FUNC=%q not one of Z2C, Z2AZC, Z3AZC, Z4AZC, Z5AZC, Z6AZC", errs.ErrConfigOutOfRange, v)
	}
}

func parseCmd(v string) (Cmd, bool, error) {
	parts := strings.Split(v, ",")
	switch strings.ToUpper(strings.TrimSpace(parts[0])) {
	case "CALC":
		return CmdCalc, false, nil
	case "PERIOD":
		pp := len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "PP")
		return CmdPeriod, pp, nil
	case "CONVERT":
		return CmdConvert, false, nil
	default:
		return 0, false, fmt.Errorf("%w: CMD=%q not one of CALC, PERIOD[,PP], CONVERT", errs.ErrConfigOutOfRange, v)
	}
}

// parseComplexOrBox accepts "re,im" (a point) or "re0,re1,im0,im1" (a box).
func parseComplexOrBox(v string) (re0, re1, im0, im1 float64, err error) {
	parts := strings.Split(v, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("%w: %q not a number", errs.ErrConfigOutOfRange, p)
		}
	}
	switch len(vals) {
	case 2:
		return vals[0], vals[0], vals[1], vals[1], nil
	case 4:
		return vals[0], vals[1], vals[2], vals[3], nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("%w: C=%q must have 2 (point) or 4 (box) components", errs.ErrConfigOutOfRange, v)
	}
}

func parseComplex(v string) (re, im float64, err error) {
	re0, re1, im0, im1, err := parseComplexOrBox(v)
	if err != nil {
		return 0, 0, err
	}
	if re0 != re1 || im0 != im1 {
		return 0, 0, fmt.Errorf("%w: A=%q must be a point, not an interval", errs.ErrConfigOutOfRange, v)
	}
	return re0, im0, nil
}

// quantize rounds v to the nearest multiple of 2^-25.
func quantize(v float64) float64 {
	scale := math.Exp2(quantumBits)
	return math.Round(v*scale) / scale
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nextPowerOfTwo rounds |r| up to the next power of two (or itself, if
// already one); a negative RANGE uses its magnitude and RANGE=0 yields 1.
func nextPowerOfTwo(r float64) float64 {
	r = math.Abs(r)
	if r <= 0 {
		return 1
	}
	p := math.Exp2(math.Ceil(math.Log2(r)))
	return p
}
