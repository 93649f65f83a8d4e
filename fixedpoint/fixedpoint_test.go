package fixedpoint

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestZeroIsCanonical(t *testing.T) {
	if Zero.Sign() != 0 {
		t.Fatalf("Zero.Sign() = %d, want 0", Zero.Sign())
	}
	n := FromFloat64(3.5)
	neg := n.Neg()
	sum, err := n.Add(neg)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Sign() != 0 {
		t.Fatalf("a + (-a) sign = %d, want 0 (canonical zero), got %s", sum.Sign(), sum)
	}
	if sum != (Num{}) {
		t.Fatalf("a + (-a) = %+v, want the zero value", sum)
	}
}

func TestMulByZero(t *testing.T) {
	n := FromFloat64(123.456)
	p, err := n.Mul(Zero)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if p.Sign() != 0 {
		t.Fatalf("a*0 = %s, want 0", p)
	}
	p2, err := Zero.Mul(n)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if p2.Sign() != 0 {
		t.Fatalf("0*a = %s, want 0", p2)
	}
}

func TestShiftLeftMatchesMultiplyByPowerOfTwo(t *testing.T) {
	n := FromFloat64(1.25)
	for k := uint(0); k < 8; k++ {
		shifted, err := n.ShiftLeft(k)
		if err != nil {
			t.Fatalf("ShiftLeft(%d): %v", k, err)
		}
		mult, err := n.MulUint(1 << k)
		if err != nil {
			t.Fatalf("MulUint(%d): %v", k, err)
		}
		if shifted.Cmp(mult) != 0 {
			t.Fatalf("shift left %d = %s, want %s", k, shifted, mult)
		}
	}
}

func TestFloorBounds(t *testing.T) {
	cases := []float64{0, 1, -1, 1.5, -1.5, 3.999999, -3.999999, 100.0001}
	for _, c := range cases {
		n := FromFloat64(c)
		f := n.FloorInt64()
		if float64(f) > c {
			t.Fatalf("floor(%v) = %d, want <= %v", c, f, c)
		}
		if float64(f)+1 <= c {
			t.Fatalf("floor(%v) = %d, want > %v - 1", c, f, c)
		}
	}
}

func TestRoundTripFloat64(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		v := (rng.Float64() - 0.5) * 200
		n := FromFloat64(v)
		back := n.ToFloat64()
		if math.Abs(back-v) > 1e-7 {
			t.Fatalf("round trip %v -> %v, diff too large", v, back)
		}
	}
}

func TestAddCommutesWithFloat(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 9))
	for i := 0; i < 500; i++ {
		x := (rng.Float64() - 0.5) * 100
		y := (rng.Float64() - 0.5) * 100
		nx, ny := FromFloat64(x), FromFloat64(y)
		sum, err := nx.Add(ny)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		want := x + y
		if math.Abs(sum.ToFloat64()-want) > 1e-6 {
			t.Fatalf("%v + %v = %v, want ~%v", x, y, sum.ToFloat64(), want)
		}
	}
}

func TestMulAgreesWithFloat(t *testing.T) {
	// Operands carry at most 20 fractional bits, so every product is exactly
	// representable; Mul fails rather than drop nonzero bits below 2^-96.
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		x := math.Round((rng.Float64()-0.5)*4*(1<<20)) / (1 << 20)
		y := math.Round((rng.Float64()-0.5)*4*(1<<20)) / (1 << 20)
		nx, ny := FromFloat64(x), FromFloat64(y)
		p, err := nx.Mul(ny)
		if err != nil {
			t.Fatalf("Mul(%v,%v): %v", x, y, err)
		}
		want := x * y
		if math.Abs(p.ToFloat64()-want) > 1e-6 {
			t.Fatalf("%v * %v = %v, want ~%v", x, y, p.ToFloat64(), want)
		}
	}
}

func TestSquareAgreesWithMul(t *testing.T) {
	// As in TestMulAgreesWithFloat, operands are exactly squarable.
	rng := rand.New(rand.NewPCG(11, 13))
	for i := 0; i < 500; i++ {
		x := math.Round((rng.Float64()-0.5)*4*(1<<20)) / (1 << 20)
		nx := FromFloat64(x)
		sq, err := nx.Square()
		if err != nil {
			t.Fatalf("Square(%v): %v", x, err)
		}
		mul, err := nx.Mul(nx)
		if err != nil {
			t.Fatalf("Mul(%v,%v): %v", x, x, err)
		}
		if sq.Cmp(mul) != 0 {
			t.Fatalf("Square(%v)=%s != Mul(x,x)=%s", x, sq, mul)
		}
	}
}

func TestAddOverflowFails(t *testing.T) {
	big := FromFloat64(float64(maxLimb))
	one := FromFloat64(1)
	if _, err := big.Add(one); err == nil {
		t.Fatalf("expected overflow error adding 1 to max representable integer part")
	}
}

func TestCmpOrdersSignThenMagnitude(t *testing.T) {
	neg := FromFloat64(-5)
	pos := FromFloat64(1)
	if neg.Cmp(pos) >= 0 {
		t.Fatalf("negative should compare less than positive")
	}
	a := FromFloat64(1)
	b := FromFloat64(2)
	if a.Cmp(b) >= 0 {
		t.Fatalf("1 should compare less than 2")
	}
}
