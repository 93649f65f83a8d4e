// Package screen holds the affine map between plane coordinates and grid
// cell indices (spec.md §3: "xPlane = i*s + R0 where s = (R1-R0)/N; s is
// also a power of two, so multiplication by 1/s is an integer bit-shift").
// Every component that needs to go from a pixel index to a plane rectangle,
// or from a plane point back to a pixel index, does it through a Mapper
// instead of recomputing the affine map inline.
package screen

import (
	"fmt"

	"github.com/fractalio/juliatsacore/fixedpoint"
	"github.com/fractalio/juliatsacore/interval"
)

// Mapper carries the grid size and plane range needed to convert between
// screen (cell index) and plane coordinates. R1 is always rounded up to a
// power of two and R0 = -R1 by construction (cliargs' RANGE clamp), so
// S = (R1-R0)/N is an exact power of two for every legal configuration;
// NewMapper relies on float64 exactly representing that power of two
// (always within float64's range for the LEN/RANGE bounds spec.md §6
// allows) to build S without a general-purpose division routine, which
// the fixed-point number type deliberately does not provide.
type Mapper[N fixedpoint.Number[N]] struct {
	N      int
	R0, R1 N
	S      N
}

// NewMapper builds a Mapper for an N x N grid spanning [r0,r1] x [r0,r1].
// fromFloat constructs a backend value from a float64; callers pass
// fixedpoint.FromFloat64 (or fixedpoint.DoubleFromFloat64 for the Double
// backend) since the Number trait itself carries no constructor.
func NewMapper[N fixedpoint.Number[N]](n int, r0, r1 N, fromFloat func(float64) N) (Mapper[N], error) {
	if n <= 0 || n&(n-1) != 0 {
		return Mapper[N]{}, fmt.Errorf("screen: N=%d must be a positive power of two", n)
	}
	span := r1.ToFloat64() - r0.ToFloat64()
	if span <= 0 {
		return Mapper[N]{}, fmt.Errorf("screen: empty or inverted range [%v,%v]", r0.ToFloat64(), r1.ToFloat64())
	}
	sFloat := span / float64(n)
	return Mapper[N]{N: n, R0: r0, R1: r1, S: fromFloat(sFloat)}, nil
}

// CellRect returns the plane rectangle covered by cell (i,j).
func (m Mapper[N]) CellRect(i, j int) (interval.Rect[N], error) {
	x0, err := offsetCells(m.R0, m.S, i)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	x1, err := offsetCells(m.R0, m.S, i+1)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	y0, err := offsetCells(m.R0, m.S, j)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	y1, err := offsetCells(m.R0, m.S, j+1)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	return interval.Rect[N]{X0: x0, X1: x1, Y0: y0, Y1: y1}, nil
}

// TileRect returns the plane rectangle covered by coarse tile (tx,ty) of
// side B = 2^b cells.
func (m Mapper[N]) TileRect(tx, ty, b int) (interval.Rect[N], error) {
	bSize := 1 << uint(b)
	lo, err := m.CellRect(tx*bSize, ty*bSize)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	hi, err := m.CellRect((tx+1)*bSize-1, (ty+1)*bSize-1)
	if err != nil {
		return interval.Rect[N]{}, err
	}
	return interval.Rect[N]{X0: lo.X0, X1: hi.X1, Y0: lo.Y0, Y1: hi.Y1}, nil
}

// FloorToCell floors a plane coordinate into a cell index: floor((x-R0)/s).
// Computed via the float64 projection of both operands, which is exact to
// better than one part in 2^52 — comfortably inside a single cell width
// for every grid size spec.md's LEN clamp allows (N <= 2^31).
func (m Mapper[N]) FloorToCell(x N) (int64, error) {
	d, err := x.Sub(m.R0)
	if err != nil {
		return 0, fmt.Errorf("screen: floor-to-cell: %w", err)
	}
	sFloat := m.S.ToFloat64()
	if sFloat == 0 {
		return 0, fmt.Errorf("screen: zero cell size")
	}
	f := d.ToFloat64() / sFloat
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i, nil
}

// offsetCells returns r0 + s*count for possibly-negative count, via
// binary multiply-by-doubling so it costs O(log count) adds instead of a
// MulUint-by-large-constant that the fixed-point type does not expose for
// signed multipliers.
func offsetCells[N fixedpoint.Number[N]](r0, s N, count int) (N, error) {
	if count == 0 {
		return r0, nil
	}
	neg := count < 0
	if neg {
		count = -count
	}
	var acc N
	accSet := false
	base := s
	for count > 0 {
		if count&1 == 1 {
			if !accSet {
				acc, accSet = base, true
			} else {
				var err error
				acc, err = acc.Add(base)
				if err != nil {
					return acc, err
				}
			}
		}
		count >>= 1
		if count > 0 {
			var err error
			base, err = base.Add(base)
			if err != nil {
				return base, err
			}
		}
	}
	if neg {
		acc = acc.Neg()
	}
	return r0.Add(acc)
}
