package feasibility

import "testing"

func TestDoublePrecisionAlwaysWarnsButNeverBlocks(t *testing.T) {
	ok, warn := Check(DoublePrecision, 6, 2, 20)
	if !ok || warn == "" {
		t.Fatalf("Check(Double) = %v, %q; want ok=true with a nonempty warning", ok, warn)
	}
}

func TestSmallConfigurationIsFeasible(t *testing.T) {
	ok, warn := Check(FixedPoint128, 2, 2, 10)
	if !ok {
		t.Fatalf("Check(degree=2,R=2,logN=10) = false, %q; want feasible", warn)
	}
}

func TestExtremeConfigurationWarns(t *testing.T) {
	ok, _ := Check(FixedPoint128, 6, 1<<20, 31)
	if ok {
		t.Fatalf("Check(degree=6,R=2^20,logN=31) = true, want infeasible warning")
	}
}
