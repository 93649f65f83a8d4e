// Package fixedpoint implements the 128-bit sign-magnitude fixed-point
// number used as the reference arithmetic backend for the bounding-box
// computations: a sign trit plus four unsigned 32-bit limbs representing
//
//	±(a + b·2⁻³² + c·2⁻⁶⁴ + d·2⁻⁹⁶)
//
// Every operation either returns the exact result or fails (via error, never
// panic). Multiply/square sum the cross-terms of order ≤ 2⁻¹²⁸ separately and
// fold their carry into the d limb; they fail if any nonzero bits of that sum
// remain below 2⁻⁹⁶, or if an integer part would exceed 2³²-1. Zero is always
// canonical: sign == 0 iff every limb is 0.
package fixedpoint

import (
	"errors"
	"fmt"
)

// maxLimb is 2^32-1, the ceiling for both a single limb and the integer part.
const maxLimb = 1<<32 - 1

// ErrPrecisionExhausted is returned by Mul/Square when the R^-4..R^-6
// cross-terms leave nonzero bits below 2⁻⁹⁶ after their carry is folded into
// the d limb — the exact product does not fit the 128-bit representation.
var ErrPrecisionExhausted = errors.New("fixedpoint: precision exhausted")

// ErrOverflow is returned when an operation's integer part would exceed
// 2³²-1, or a multiply's high cross-terms do not fit back into the limb
// they are folded into.
var ErrOverflow = errors.New("fixedpoint: integer part overflow")

// Number is the arithmetic trait bounding-box code is generic over, so the
// polynomial formulas in package poly do not depend on a concrete backend.
// Num (this package) is the reference implementation; Double (float64) is a
// second implementation without Num's exactness guarantees.
type Number[T any] interface {
	Add(T) (T, error)
	Sub(T) (T, error)
	Mul(T) (T, error)
	Square() (T, error)
	MulUint(n uint32) (T, error)
	Neg() T
	ShiftLeft(k uint) (T, error)
	Cmp(T) int
	Sign() int
	FloorInt64() int64
	ToFloat64() float64
}

// Num is the 128-bit sign-magnitude fixed-point value.
type Num struct {
	sign int8 // -1, 0, +1; 0 iff a==b==c==d==0
	a, b, c, d uint32
}

var _ Number[Num] = Num{}

// Zero is the canonical zero value (the Num zero value already satisfies
// this, Zero exists for readability at call sites).
var Zero = Num{}

// FromInt64 builds an exact Num from a signed 64-bit integer.
func FromInt64(v int64) Num {
	if v == 0 {
		return Zero
	}
	sign := int8(1)
	uv := uint64(v)
	if v < 0 {
		sign = -1
		uv = uint64(-v)
	}
	if uv > maxLimb {
		panic("fixedpoint: FromInt64 magnitude exceeds representable integer part")
	}
	return Num{sign: sign, a: uint32(uv)}
}

// FromFloat64 splits v into an integer limb and three 32-bit fractional
// limbs by repeated scaling and flooring, canonicalizing zero.
func FromFloat64(v float64) Num {
	if v == 0 {
		return Zero
	}
	sign := int8(1)
	if v < 0 {
		sign = -1
		v = -v
	}
	ipart := float64(int64(v))
	frac := v - ipart
	if ipart > maxLimb {
		panic("fixedpoint: FromFloat64 integer part exceeds 2^32-1")
	}
	a := uint32(ipart)
	frac *= 4294967296.0 // 2^32
	b := uint32(frac)
	frac = (frac - float64(b)) * 4294967296.0
	c := uint32(frac)
	frac = (frac - float64(c)) * 4294967296.0
	d := uint32(frac)
	n := Num{sign: sign, a: a, b: b, c: c, d: d}
	n.canonicalize()
	return n
}

func (n *Num) canonicalize() {
	if n.a == 0 && n.b == 0 && n.c == 0 && n.d == 0 {
		n.sign = 0
	}
}

// Sign returns -1, 0 or +1.
func (n Num) Sign() int { return int(n.sign) }

// ToFloat64 converts back to a double, applying the stored sign.
func (n Num) ToFloat64() float64 {
	if n.sign == 0 {
		return 0
	}
	v := float64(n.a) +
		float64(n.b)/4294967296.0 +
		float64(n.c)/18446744073709551616.0 +
		float64(n.d)/79228162514264337593543950336.0
	if n.sign < 0 {
		v = -v
	}
	return v
}

// FloorInt64 returns the floor of the represented value as a signed 64-bit
// integer: the integer limb for sign >= 0, and -(a+1) for sign < 0 when any
// fractional limb is nonzero, else -a.
func (n Num) FloorInt64() int64 {
	if n.sign >= 0 {
		return int64(n.a)
	}
	if n.b != 0 || n.c != 0 || n.d != 0 {
		return -int64(n.a) - 1
	}
	return -int64(n.a)
}

// Neg flips the sign; zero stays zero.
func (n Num) Neg() Num {
	if n.sign == 0 {
		return n
	}
	n.sign = -n.sign
	return n
}

// Cmp orders Num lexicographically by sign then magnitude limbs.
func (n Num) Cmp(o Num) int {
	if n.sign != o.sign {
		if n.sign < o.sign {
			return -1
		}
		return 1
	}
	c := cmpMag(n, o)
	if n.sign < 0 {
		return -c
	}
	return c
}

func cmpMag(x, y Num) int {
	switch {
	case x.a != y.a:
		return cmpU32(x.a, y.a)
	case x.b != y.b:
		return cmpU32(x.b, y.b)
	case x.c != y.c:
		return cmpU32(x.c, y.c)
	default:
		return cmpU32(x.d, y.d)
	}
}

func cmpU32(a, b uint32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// addMag adds two nonnegative magnitudes, failing if the integer part would
// exceed 2^32-1.
func addMag(x, y Num) (Num, error) {
	sumD := uint64(x.d) + uint64(y.d)
	rd := uint32(sumD)
	carry := sumD >> 32

	sumC := uint64(x.c) + uint64(y.c) + carry
	rc := uint32(sumC)
	carry = sumC >> 32

	sumB := uint64(x.b) + uint64(y.b) + carry
	rb := uint32(sumB)
	carry = sumB >> 32

	sumA := uint64(x.a) + uint64(y.a) + carry
	if sumA > maxLimb {
		return Num{}, fmt.Errorf("%w: add integer part", ErrOverflow)
	}
	return Num{a: uint32(sumA), b: rb, c: rc, d: rd}, nil
}

// subMag computes |x|-|y| assuming |x| >= |y|.
func subMag(x, y Num) Num {
	bd := int64(x.d) - int64(y.d)
	borrow := int64(0)
	if bd < 0 {
		bd += 1 << 32
		borrow = 1
	}
	rd := uint32(bd)

	bc := int64(x.c) - int64(y.c) - borrow
	borrow = 0
	if bc < 0 {
		bc += 1 << 32
		borrow = 1
	}
	rc := uint32(bc)

	bb := int64(x.b) - int64(y.b) - borrow
	borrow = 0
	if bb < 0 {
		bb += 1 << 32
		borrow = 1
	}
	rb := uint32(bb)

	ba := int64(x.a) - int64(y.a) - borrow
	return Num{a: uint32(ba), b: rb, c: rc, d: rd}
}

// Add is exact on representable results; fails if the integer part would
// exceed 2³²-1.
func (n Num) Add(o Num) (Num, error) {
	if n.sign == 0 {
		return o, nil
	}
	if o.sign == 0 {
		return n, nil
	}
	if n.sign == o.sign {
		r, err := addMag(n, o)
		if err != nil {
			return Num{}, err
		}
		r.sign = n.sign
		r.canonicalize()
		return r, nil
	}
	c := cmpMag(n, o)
	if c == 0 {
		return Zero, nil
	}
	if c > 0 {
		r := subMag(n, o)
		r.sign = n.sign
		r.canonicalize()
		return r, nil
	}
	r := subMag(o, n)
	r.sign = o.sign
	r.canonicalize()
	return r, nil
}

// Sub is Add(n, -o).
func (n Num) Sub(o Num) (Num, error) {
	return n.Add(o.Neg())
}

// MulUint multiplies by a small nonnegative integer as a single carry-
// propagating pass (equivalent to repeated addition), failing on integer
// part overflow.
func (n Num) MulUint(m uint32) (Num, error) {
	if m == 0 || n.sign == 0 {
		return Zero, nil
	}
	w := uint64(n.d) * uint64(m)
	rd := uint32(w)
	carry := w >> 32

	w = uint64(n.c)*uint64(m) + carry
	rc := uint32(w)
	carry = w >> 32

	w = uint64(n.b)*uint64(m) + carry
	rb := uint32(w)
	carry = w >> 32

	w = uint64(n.a)*uint64(m) + carry
	if w > maxLimb {
		return Num{}, fmt.Errorf("%w: mul-by-uint integer part", ErrOverflow)
	}
	return Num{sign: n.sign, a: uint32(w), b: rb, c: rc, d: rd}, nil
}

// MulInt multiplies by a signed integer, flipping the sign when negative.
func MulInt(n Num, m int32) (Num, error) {
	if m < 0 {
		r, err := n.MulUint(uint32(-m))
		if err != nil {
			return Num{}, err
		}
		return r.Neg(), nil
	}
	return n.MulUint(uint32(m))
}

// ShiftLeft multiplies by 2^k; only valid when the top limb does not
// overflow, which callers must ensure by choice of k.
func (n Num) ShiftLeft(k uint) (Num, error) {
	if n.sign == 0 || k == 0 {
		return n, nil
	}
	if k >= 32 {
		return Num{}, fmt.Errorf("%w: shift amount too large for single-limb carry", ErrOverflow)
	}
	carryMask := uint32(maxLimb) << (32 - k)

	dCarry := (n.d & carryMask) >> (32 - k)
	rd := n.d << k

	cCarry := (n.c & carryMask) >> (32 - k)
	rc := (n.c << k) | dCarry

	bCarry := (n.b & carryMask) >> (32 - k)
	rb := (n.b << k) | cCarry

	ra64 := (uint64(n.a) << k) | uint64(bCarry)
	if ra64 > maxLimb {
		return Num{}, fmt.Errorf("%w: shift left", ErrOverflow)
	}
	return Num{sign: n.sign, a: uint32(ra64), b: rb, c: rc, d: rd}, nil
}

// mag is a bare 4-limb unsigned magnitude used internally while assembling
// cross-terms in Mul/Square, mirroring the original's habit of reusing a
// scratch FPA with vorz pinned to +1.
type mag struct{ a, b, c, d uint32 }

func addMagRaw(x, y mag) (mag, bool) {
	sumD := uint64(x.d) + uint64(y.d)
	rd := uint32(sumD)
	carry := sumD >> 32

	sumC := uint64(x.c) + uint64(y.c) + carry
	rc := uint32(sumC)
	carry = sumC >> 32

	sumB := uint64(x.b) + uint64(y.b) + carry
	rb := uint32(sumB)
	carry = sumB >> 32

	sumA := uint64(x.a) + uint64(y.a) + carry
	if sumA > maxLimb {
		return mag{}, false
	}
	return mag{uint32(sumA), rb, rc, rd}, true
}

// Mul computes the exact product of two magnitudes: the terms of order
// <= 2^-128 are summed and only their carry into the d limb is kept, so it
// fails if that R^-4..R^-6 sum has any nonzero bits below 2^-96, or if the
// final integer part overflows.
func (n Num) Mul(o Num) (Num, error) {
	if n.sign == 0 || o.sign == 0 {
		return Zero, nil
	}
	a, b, c, d := n.a, n.b, n.c, n.d
	e, f, g, h := o.a, o.b, o.c, o.d

	// R^-4 .. R^-6: must collapse to at most a single carry into R^-3 (the
	// d limb); if it doesn't, precision is exhausted.
	var testerg mag
	var w mag
	var ok bool

	if d != 0 && h != 0 {
		tmp := uint64(d) * uint64(h)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-6 term", ErrPrecisionExhausted)
		}
	}
	w = mag{}
	if c != 0 && h != 0 {
		tmp := uint64(c) * uint64(h)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-5 term", ErrPrecisionExhausted)
		}
	}
	if d != 0 && g != 0 {
		tmp := uint64(d) * uint64(g)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-5 term", ErrPrecisionExhausted)
		}
	}
	w = mag{}
	if b != 0 && h != 0 {
		tmp := uint64(b) * uint64(h)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-4 term", ErrPrecisionExhausted)
		}
	}
	if c != 0 && g != 0 {
		tmp := uint64(c) * uint64(g)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-4 term", ErrPrecisionExhausted)
		}
	}
	if d != 0 && f != 0 {
		tmp := uint64(d) * uint64(f)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-4 term", ErrPrecisionExhausted)
		}
	}
	if testerg.b != 0 || testerg.c != 0 || testerg.d != 0 {
		return Num{}, fmt.Errorf("%w: mul R^-4..R^-6 terms did not collapse", ErrPrecisionExhausted)
	}

	erg := mag{d: testerg.a} // carry into the d limb

	// R^-3
	if d != 0 && e != 0 {
		tmp := uint64(d) * uint64(e)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-3 term", ErrOverflow)
		}
	}
	if a != 0 && h != 0 {
		tmp := uint64(a) * uint64(h)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-3 term", ErrOverflow)
		}
	}
	if b != 0 && g != 0 {
		tmp := uint64(b) * uint64(g)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-3 term", ErrOverflow)
		}
	}
	if c != 0 && f != 0 {
		tmp := uint64(c) * uint64(f)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-3 term", ErrOverflow)
		}
	}

	// R^-2
	if a != 0 && g != 0 {
		tmp := uint64(a) * uint64(g)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-2 term", ErrOverflow)
		}
	}
	if b != 0 && f != 0 {
		tmp := uint64(b) * uint64(f)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-2 term", ErrOverflow)
		}
	}
	if c != 0 && e != 0 {
		tmp := uint64(c) * uint64(e)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-2 term", ErrOverflow)
		}
	}

	// R^-1
	if a != 0 && f != 0 {
		tmp := uint64(a) * uint64(f)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-1 term", ErrOverflow)
		}
	}
	if b != 0 && e != 0 {
		tmp := uint64(b) * uint64(e)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul R^-1 term", ErrOverflow)
		}
	}

	// integer part
	if a != 0 && e != 0 {
		tmp := uint64(a) * uint64(e)
		if tmp>>32 != 0 {
			return Num{}, fmt.Errorf("%w: mul integer part", ErrOverflow)
		}
		w = mag{a: uint32(tmp)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: mul integer part", ErrOverflow)
		}
	}

	result := Num{a: erg.a, b: erg.b, c: erg.c, d: erg.d}
	if result.a == 0 && result.b == 0 && result.c == 0 && result.d == 0 {
		result.sign = 0
	} else if n.sign == o.sign {
		result.sign = 1
	} else {
		result.sign = -1
	}
	return result, nil
}

// Square is the doubling-optimized specialization of Mul(n, n): it halves
// the number of 64-bit cross products by folding each symmetric pair (e.g.
// a*b and b*a) into a single doubled term.
func (n Num) Square() (Num, error) {
	if n.sign == 0 {
		return Zero, nil
	}
	a, b, c, d := n.a, n.b, n.c, n.d

	var testerg mag
	var w mag
	var ok bool

	if d != 0 {
		tmp := uint64(d) * uint64(d)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-6 term", ErrPrecisionExhausted)
		}
	}
	w = mag{}
	if c != 0 && d != 0 {
		tmp := uint64(c) * uint64(d)
		lo, hi := uint32(tmp), uint32(tmp>>32)
		w = mag{c: lo, b: hi}
		if sh, err := shiftMagLeft1(w); err == nil {
			w = sh
		} else {
			return Num{}, fmt.Errorf("%w: square R^-5 doubling", ErrPrecisionExhausted)
		}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-5 term", ErrPrecisionExhausted)
		}
	}
	w = mag{}
	if b != 0 && d != 0 {
		tmp := uint64(b) * uint64(d)
		lo, hi := uint32(tmp), uint32(tmp>>32)
		w = mag{b: lo, a: hi}
		if sh, err := shiftMagLeft1(w); err == nil {
			w = sh
		} else {
			return Num{}, fmt.Errorf("%w: square R^-4 doubling", ErrPrecisionExhausted)
		}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-4 term", ErrPrecisionExhausted)
		}
	}
	if c != 0 {
		tmp := uint64(c) * uint64(c)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if testerg, ok = addMagRaw(testerg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-4 term", ErrPrecisionExhausted)
		}
	}
	if testerg.b != 0 || testerg.c != 0 || testerg.d != 0 {
		return Num{}, fmt.Errorf("%w: square R^-4..R^-6 terms did not collapse", ErrPrecisionExhausted)
	}

	erg := mag{d: testerg.a}

	if d != 0 && a != 0 {
		tmp := 2 * uint64(d) * uint64(a)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-3 term", ErrOverflow)
		}
	}
	if b != 0 && c != 0 {
		tmp := 2 * uint64(b) * uint64(c)
		w = mag{d: uint32(tmp), c: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-3 term", ErrOverflow)
		}
	}

	if a != 0 && c != 0 {
		tmp := 2 * uint64(a) * uint64(c)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-2 term", ErrOverflow)
		}
	}
	if b != 0 {
		tmp := uint64(b) * uint64(b)
		w = mag{c: uint32(tmp), b: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-2 term", ErrOverflow)
		}
	}

	if a != 0 && b != 0 {
		tmp := 2 * uint64(a) * uint64(b)
		w = mag{b: uint32(tmp), a: uint32(tmp >> 32)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square R^-1 term", ErrOverflow)
		}
	}

	if a != 0 {
		tmp := uint64(a) * uint64(a)
		if tmp>>32 != 0 {
			return Num{}, fmt.Errorf("%w: square integer part", ErrOverflow)
		}
		w = mag{a: uint32(tmp)}
		if erg, ok = addMagRaw(erg, w); !ok {
			return Num{}, fmt.Errorf("%w: square integer part", ErrOverflow)
		}
	}

	result := Num{a: erg.a, b: erg.b, c: erg.c, d: erg.d}
	if result.a == 0 && result.b == 0 && result.c == 0 && result.d == 0 {
		result.sign = 0
	} else {
		result.sign = 1
	}
	return result, nil
}

// shiftMagLeft1 doubles a bare (sign-less, already-positioned) magnitude by
// one bit, propagating the carry chain; used for the 2x terms in Square.
func shiftMagLeft1(m mag) (mag, error) {
	dCarry := m.d >> 31
	rd := m.d << 1
	cCarry := m.c >> 31
	rc := (m.c << 1) | dCarry
	bCarry := m.b >> 31
	rb := (m.b << 1) | cCarry
	ra64 := (uint64(m.a) << 1) | uint64(bCarry)
	if ra64 > maxLimb {
		return mag{}, ErrOverflow
	}
	return mag{uint32(ra64), rb, rc, rd}, nil
}

// String renders the value for diagnostics.
func (n Num) String() string {
	sign := ""
	if n.sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%08x%08x%08x", sign, n.a, n.b, n.c, n.d)
}
