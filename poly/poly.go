// Package poly implements the interval-arithmetic bounding-box function for
// each supported polynomial iteration z <- f(z), f in
// {z^2+c, z^2+Az+c, z^3+Az+c, ..., z^6+Az+c}. The polynomial choice is a
// tagged variant (Func), and BBox is a method on it, per Design Notes §9
// ("Polymorphism over polynomial") — there is deliberately no package-level
// table of function pointers.
package poly

import (
	"fmt"

	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/interval"
)

// FuncKind selects the polynomial degree and shape.
type FuncKind int

const (
	Z2C FuncKind = iota
	Z2AZC
	Z3AZC
	Z4AZC
	Z5AZC
	Z6AZC
)

func (k FuncKind) String() string {
	switch k {
	case Z2C:
		return "Z2C"
	case Z2AZC:
		return "Z2AZC"
	case Z3AZC:
		return "Z3AZC"
	case Z4AZC:
		return "Z4AZC"
	case Z5AZC:
		return "Z5AZC"
	case Z6AZC:
		return "Z6AZC"
	default:
		return "UNKNOWN"
	}
}

// ParamBox is the (possibly interval) complex parameter c = [Re0,Re1] +
// i[Im0,Im1]; a point value has Re0==Re1 and Im0==Im1.
type ParamBox[N fixedpoint.Number[N]] struct {
	Re0, Re1, Im0, Im1 N
}

// Func is the tagged variant over which BBox is implemented. A is always a
// point parameter (the CLI grammar never accepts an interval for A); C may
// be a genuine box.
type Func[N fixedpoint.Number[N]] struct {
	Kind     FuncKind
	ARe, AIm N
	C        ParamBox[N]
}

func degreeOf(k FuncKind) int {
	switch k {
	case Z2C, Z2AZC:
		return 2
	case Z3AZC:
		return 3
	case Z4AZC:
		return 4
	case Z5AZC:
		return 5
	case Z6AZC:
		return 6
	default:
		return 0
	}
}

// binom is Pascal's-triangle binomial coefficient; degrees here never
// exceed 6 so a direct table is clearer than a generating loop.
var binomTable = [7][7]int{
	{1},
	{1, 1},
	{1, 2, 1},
	{1, 3, 3, 1},
	{1, 4, 6, 4, 1},
	{1, 5, 10, 10, 5, 1},
	{1, 6, 15, 20, 15, 6, 1},
}

func binom(n, k int) int { return binomTable[n][k] }

// BBox returns an enclosing rectangle of f(A) under real interval
// arithmetic, for A a rectangle in the complex plane. It generalizes the
// degree-2/3 monomial-interval expansions of the original implementation
// to arbitrary degree <= 6: every power x^p / y^p is tracked as its own
// min/max interval (computed from the rectangle's corners only, never from
// an already-combined sub-expression), and every monomial of the binomial
// expansion of (x+iy)^n is evaluated as the interval product of its x-power
// and y-power intervals before being scaled by its (always-integer)
// binomial coefficient and summed in — this is what avoids the
// dependency-blowup the naive fully-expanded polynomial would suffer at
// higher degree.
func (f Func[N]) BBox(a interval.Rect[N]) (interval.Rect[N], error) {
	n := degreeOf(f.Kind)
	if n == 0 {
		return interval.Rect[N]{}, fmt.Errorf("poly: unknown function kind %v", f.Kind)
	}

	xPowLo, xPowHi, err := powers(a.X0, a.X1, n)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: x powers: %w", err)
	}
	yPowLo, yPowHi, err := powers(a.Y0, a.Y1, n)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: y powers: %w", err)
	}

	var reLo, reHi, imLo, imHi N
	reSet, imSet := false, false

	accumRe := func(lo, hi N) {
		if !reSet {
			reLo, reHi, reSet = lo, hi, true
			return
		}
		reLo, err = reLo.Add(lo)
		reHi, err = reHi.Add(hi)
	}
	accumIm := func(lo, hi N) {
		if !imSet {
			imLo, imHi, imSet = lo, hi, true
			return
		}
		imLo, err = imLo.Add(lo)
		imHi, err = imHi.Add(hi)
	}

	// z^n = sum_{k=0}^n C(n,k) x^(n-k) (iy)^k
	for k := 0; k <= n; k++ {
		xp := n - k
		yp := k
		var termLo, termHi N
		switch {
		case xp == 0 && yp == 0:
			continue // n >= 2 always, never reached
		case xp == 0:
			termLo, termHi = yPowLo[yp], yPowHi[yp]
		case yp == 0:
			termLo, termHi = xPowLo[xp], xPowHi[xp]
		default:
			termLo, termHi, err = intervalMul(xPowLo[xp], xPowHi[xp], yPowLo[yp], yPowHi[yp])
			if err != nil {
				return interval.Rect[N]{}, fmt.Errorf("poly: monomial x^%d y^%d: %w", xp, yp, err)
			}
		}

		coeff, real := signedCoeff(n, k)
		sLo, sHi, serr := scaleInterval(termLo, termHi, coeff)
		if serr != nil {
			return interval.Rect[N]{}, fmt.Errorf("poly: scale monomial k=%d: %w", k, serr)
		}
		if real {
			accumRe(sLo, sHi)
		} else {
			accumIm(sLo, sHi)
		}
		if err != nil {
			return interval.Rect[N]{}, fmt.Errorf("poly: accumulate monomial k=%d: %w", k, err)
		}
	}

	// Linear term A*z = (ARe + i*AIm)(x + i*y)
	//   = (ARe*x - AIm*y) + i*(ARe*y + AIm*x)
	axLo, axHi, err := scalarIntervalMul(a.X0, a.X1, f.ARe)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: A*x: %w", err)
	}
	ayLo, ayHi, err := scalarIntervalMul(a.Y0, a.Y1, f.AIm)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: A_im*y: %w", err)
	}
	negAyLo, negAyHi := ayHi.Neg(), ayLo.Neg()
	reLo, err = reLo.Add(axLo)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	reLo, err = reLo.Add(negAyLo)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	reHi, err = reHi.Add(axHi)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	reHi, err = reHi.Add(negAyHi)
	if err != nil {
		return interval.Rect[N]{}, err
	}

	bxLo, bxHi, err := scalarIntervalMul(a.Y0, a.Y1, f.ARe)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: A*y: %w", err)
	}
	byLo, byHi, err := scalarIntervalMul(a.X0, a.X1, f.AIm)
	if err != nil {
		return interval.Rect[N]{}, fmt.Errorf("poly: A_im*x: %w", err)
	}
	imLo, err = imLo.Add(bxLo)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	imLo, err = imLo.Add(byLo)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	imHi, err = imHi.Add(bxHi)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	imHi, err = imHi.Add(byHi)
	if err != nil {
		return interval.Rect[N]{}, err
	}

	// + c (possibly an interval parameter box)
	reLo, err = reLo.Add(f.C.Re0)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	reHi, err = reHi.Add(f.C.Re1)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	imLo, err = imLo.Add(f.C.Im0)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	imHi, err = imHi.Add(f.C.Im1)
	if err != nil {
		return interval.Rect[N]{}, err
	}

	return interval.Rect[N]{X0: reLo, X1: reHi, Y0: imLo, Y1: imHi}, nil
}

// signedCoeff returns the integer coefficient (including the +-1/+-i parity
// of i^k folded in) for the k-th term of (x+iy)^n, and whether that term
// contributes to the real part (k even) or the imaginary part (k odd).
func signedCoeff(n, k int) (coeff int, real bool) {
	c := binom(n, k)
	switch k % 4 {
	case 0:
		return c, true
	case 1:
		return c, false
	case 2:
		return -c, true
	default: // 3
		return -c, false
	}
}

// powers computes, for p = 1..n, the min/max interval of v^p for v ranging
// over [lo,hi], evaluated from the two corner values; for an even p on an
// interval with lo < 0 < hi the lower bound is 0, since v^p reaches its
// minimum inside the interval.
func powers[N fixedpoint.Number[N]](lo, hi N, n int) (lows, highs []N, err error) {
	lows = make([]N, n+1)
	highs = make([]N, n+1)
	loAcc, hiAcc := lo, hi
	for p := 1; p <= n; p++ {
		if p > 1 {
			loAcc, err = loAcc.Mul(lo)
			if err != nil {
				return nil, nil, err
			}
			hiAcc, err = hiAcc.Mul(hi)
			if err != nil {
				return nil, nil, err
			}
		}
		lows[p] = interval.Min2(loAcc, hiAcc)
		highs[p] = interval.Max2(loAcc, hiAcc)
		if p%2 == 0 && lo.Sign() < 0 && hi.Sign() > 0 {
			var zero N
			lows[p] = zero
		}
	}
	return lows, highs, nil
}

// intervalMul returns the min/max of the product of two independent
// intervals [aLo,aHi] and [bLo,bHi], i.e. the standard interval-arithmetic
// product over all four corner combinations.
func intervalMul[N fixedpoint.Number[N]](aLo, aHi, bLo, bHi N) (lo, hi N, err error) {
	p1, err := aLo.Mul(bLo)
	if err != nil {
		return lo, hi, err
	}
	p2, err := aLo.Mul(bHi)
	if err != nil {
		return lo, hi, err
	}
	p3, err := aHi.Mul(bLo)
	if err != nil {
		return lo, hi, err
	}
	p4, err := aHi.Mul(bHi)
	if err != nil {
		return lo, hi, err
	}
	return interval.Min4(p1, p2, p3, p4), interval.Max4(p1, p2, p3, p4), nil
}

// scaleInterval multiplies [lo,hi] by a (possibly negative) small integer
// coefficient, swapping bounds when the coefficient is negative.
func scaleInterval[N fixedpoint.Number[N]](lo, hi N, coeff int) (N, N, error) {
	if coeff >= 0 {
		l, err := lo.MulUint(uint32(coeff))
		if err != nil {
			return l, l, err
		}
		h, err := hi.MulUint(uint32(coeff))
		if err != nil {
			return l, h, err
		}
		return l, h, nil
	}
	l, err := hi.MulUint(uint32(-coeff))
	if err != nil {
		return l, l, err
	}
	h, err := lo.MulUint(uint32(-coeff))
	if err != nil {
		return l, h, err
	}
	return l.Neg(), h.Neg(), nil
}

// scalarIntervalMul multiplies [lo,hi] by a point-valued scalar of unknown
// sign, taking the min/max of the two endpoint products.
func scalarIntervalMul[N fixedpoint.Number[N]](lo, hi, scalar N) (N, N, error) {
	p0, err := scalar.Mul(lo)
	if err != nil {
		return p0, p0, err
	}
	p1, err := scalar.Mul(hi)
	if err != nil {
		return p0, p1, err
	}
	return interval.Min2(p0, p1), interval.Max2(p0, p1), nil
}
