// Package feasibility implements a lightweight precision pre-check
// (spec.md §4.2 "Correctness precondition"): before a run starts, warn if
// the chosen number type is unlikely to carry enough precision for the
// polynomial degree, grid range, and refinement level requested. This is
// deliberately a heuristic, not the exhaustive tabulated predicate the
// original ships — the 128-bit fixed-point backend has a fixed budget
// (32-bit integer part, 96 fractional bits) and the check only estimates
// whether that budget is likely to be exhausted, so the run can proceed
// with a warning rather than block on an approximation.
package feasibility

import "math"

// Backend identifies which Number implementation a run selected.
type Backend int

const (
	FixedPoint128 Backend = iota
	DoublePrecision
)

// integerBits and fractionalBits describe the 128-bit sign-magnitude
// backend's budget (fixedpoint.Num: one 32-bit integer limb, three 32-bit
// fractional limbs).
const (
	integerBits    = 32
	fractionalBits = 96
)

// Check estimates whether backend can carry the precision a run at
// polynomial degree, grid half-range rangeR (so the square spans
// [-rangeR, rangeR]), and refinement level logN (grid is 2^logN on a
// side) is likely to need. It never blocks the run: ok is purely
// advisory, and the caller should still log warn and proceed.
func Check(backend Backend, degree int, rangeR float64, logN int) (ok bool, warn string) {
	if backend == DoublePrecision {
		return true, "double precision carries no correctness guarantee at any scale; results are a sanity check only"
	}

	// Each iteration of z -> f(z) can grow the magnitude by a factor of
	// roughly rangeR^(degree-1); over the degree-many partial products
	// contributing to the interval bbox, the needed integer-part bits is
	// about degree * log2(max(rangeR, 1)).
	neededIntegerBits := float64(degree) * math.Log2(math.Max(rangeR, 1))
	if neededIntegerBits > integerBits {
		return false, "polynomial degree and range may overflow the 32-bit integer part during bbox evaluation"
	}

	// The cell width is 2*rangeR / 2^logN; resolving a cell's position
	// unambiguously through `degree` multiplications needs roughly
	// degree * logN extra fractional bits beyond the cell width itself.
	cellWidthBits := math.Log2(2*math.Max(rangeR, 1)) + float64(logN)
	neededFractionalBits := cellWidthBits + float64(degree)*float64(logN)
	if neededFractionalBits > fractionalBits {
		return false, "refinement level and polynomial degree may exhaust fractional precision before the gray band converges"
	}

	return true, ""
}
