// Package interval provides the rectangle type and min/max utilities the
// bounding-box formulas (package poly) are built from: plane rectangles,
// containment/disjointness against the working region and the special
// exterior, and the generic 2/4-way min and max helpers spec.md's Open
// Questions ask to be implemented in their non-redundant form (Max2/Min2,
// not a duplicated-argument Max4/Min4 call).
package interval

import (
	"golang.org/x/exp/constraints"

	"github.com/fractalio/juliatsacore/fixedpoint"
)

// Rect is an axis-aligned rectangle [X0,X1] x [Y0,Y1] in plane coordinates,
// generic over the arithmetic backend so bounding-box code never hardcodes
// fixedpoint.Num.
type Rect[N fixedpoint.Number[N]] struct {
	X0, X1, Y0, Y1 N
}

// Min2 and Max2 are the non-redundant forms of the C original's four-
// argument minimum/maximum macros (spec.md §9, Open Questions): most call
// sites there pass the same two values twice, which collapses to a plain
// pairwise min/max.
func Min2[N fixedpoint.Number[N]](a, b N) N {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func Max2[N fixedpoint.Number[N]](a, b N) N {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min4 and Max4 are kept only where the C original's four arguments are
// genuinely distinct (cross terms like x0*y0, x0*y1, x1*y0, x1*y1).
func Min4[N fixedpoint.Number[N]](a, b, c, d N) N {
	return Min2(Min2(a, b), Min2(c, d))
}

func Max4[N fixedpoint.Number[N]](a, b, c, d N) N {
	return Max2(Max2(a, b), Max2(c, d))
}

// MinOrdered/MaxOrdered are plain-value analogues used for integer
// screen-coordinate math (pixel indices, tile indices) where the
// fixedpoint.Number trait does not apply.
func MinOrdered[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func MaxOrdered[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Disjoint reports whether two rectangles share no point.
func (r Rect[N]) Disjoint(o Rect[N]) bool {
	if r.X1.Cmp(o.X0) < 0 || o.X1.Cmp(r.X0) < 0 {
		return true
	}
	if r.Y1.Cmp(o.Y0) < 0 || o.Y1.Cmp(r.Y0) < 0 {
		return true
	}
	return false
}

// Contains reports whether o lies entirely within r.
func (r Rect[N]) Contains(o Rect[N]) bool {
	return r.X0.Cmp(o.X0) <= 0 && r.X1.Cmp(o.X1) >= 0 &&
		r.Y0.Cmp(o.Y0) <= 0 && r.Y1.Cmp(o.Y1) >= 0
}

// InSquare reports whether r lies entirely inside the working square
// [lo,hi] x [lo,hi] — i.e. is not known to touch the special exterior.
func (r Rect[N]) InSquare(lo, hi N) bool {
	return lo.Cmp(r.X0) <= 0 && r.X1.Cmp(hi) <= 0 &&
		lo.Cmp(r.Y0) <= 0 && r.Y1.Cmp(hi) <= 0
}

// OutsideSquare reports whether r lies entirely in the special exterior,
// i.e. is disjoint from the working square [lo,hi] x [lo,hi].
func (r Rect[N]) OutsideSquare(lo, hi N) bool {
	sq := Rect[N]{X0: lo, X1: hi, Y0: lo, Y1: hi}
	return r.Disjoint(sq)
}
