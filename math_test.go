package nbody

import (
	"math"
	"testing"
)

func TestNorm3(t *testing.T) {
	if n := norm3([3]float64{3, 4, 0}); math.Abs(n-5) > 1e-12 {
		t.Fatalf("norm3({3,4,0}) = %f, want 5", n)
	}
}

func TestUnit3ZeroVector(t *testing.T) {
	u := unit3([3]float64{0, 0, 0})
	if u != [3]float64{0, 0, 0} {
		t.Fatalf("unit3(0) = %v, want zero vector", u)
	}
}

func TestCross3RightHanded(t *testing.T) {
	x := [3]float64{1, 0, 0}
	y := [3]float64{0, 1, 0}
	z := cross3(x, y)
	if z != [3]float64{0, 0, 1} {
		t.Fatalf("x cross y = %v, want {0,0,1}", z)
	}
}

func TestSignZero(t *testing.T) {
	if sign(0) != 1 {
		t.Fatalf("sign(0) = %f, want 1", sign(0))
	}
	if sign(-5) != -1 {
		t.Fatalf("sign(-5) = %f, want -1", sign(-5))
	}
}

func TestDeg2radRad2degRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 270, 359} {
		rad := Deg2rad(deg)
		back := Rad2deg(rad)
		if math.Abs(back-deg) > 1e-9 {
			t.Fatalf("round trip %f deg -> %f rad -> %f deg", deg, rad, back)
		}
	}
}

func TestVectorsEqual(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 3.0000000001}
	if !vectorsEqual(a, b, 1e-6) {
		t.Fatalf("expected vectors to compare equal within tolerance")
	}
	if vectorsEqual(a, b, 1e-15) {
		t.Fatalf("expected vectors to differ at tight tolerance")
	}
}
