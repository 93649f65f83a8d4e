package fixedpoint

// Double is a float64-backed implementation of Number. A plain double
// carries none of the 128-bit backend's rigor guarantees; cliargs has no
// option that selects it, so a CLI run always computes with Num.
type Double float64

var _ Number[Double] = Double(0)

func (d Double) Add(o Double) (Double, error)    { return d + o, nil }
func (d Double) Sub(o Double) (Double, error)    { return d - o, nil }
func (d Double) Mul(o Double) (Double, error)    { return d * o, nil }
func (d Double) Square() (Double, error)         { return d * d, nil }
func (d Double) MulUint(n uint32) (Double, error) { return d * Double(n), nil }
func (d Double) Neg() Double                      { return -d }
func (d Double) ShiftLeft(k uint) (Double, error) {
	scale := Double(1)
	for i := uint(0); i < k; i++ {
		scale *= 2
	}
	return d * scale, nil
}
func (d Double) Cmp(o Double) int {
	switch {
	case d < o:
		return -1
	case d > o:
		return 1
	default:
		return 0
	}
}
func (d Double) Sign() int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
func (d Double) FloorInt64() int64 {
	f := float64(d)
	i := int64(f)
	if f < float64(i) {
		i--
	}
	return i
}
func (d Double) ToFloat64() float64 { return float64(d) }

// DoubleFromFloat64 constructs a Double, mirroring FromFloat64's signature
// for the 128-bit backend so callers generic over Number can take a
// constructor function rather than a concrete type.
func DoubleFromFloat64(v float64) Double { return Double(v) }
