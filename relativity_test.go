package nbody

import (
	"math"
	"testing"
)

func TestRelativisticAccelerationIsSmallCorrection(t *testing.T) {
	r := [3]float64{1, 0, 0}
	v := [3]float64{0, 0.0172, 0}
	a := relativisticAcceleration(r, v)
	newtonian := G / (norm3(r) * norm3(r))
	mag := norm3(a)
	if mag <= 0 || mag > 1e-6*newtonian {
		t.Fatalf("relativistic correction %g should be a tiny fraction of the Newtonian term %g", mag, newtonian)
	}
}

func TestRelativisticJacobianFiniteDifference(t *testing.T) {
	r := [3]float64{1.1, 0.2, -0.05}
	v := [3]float64{-0.002, 0.016, 0.0005}
	dr, _ := relativisticJacobian(r, v)

	const eps = 1e-6
	for m := 0; m < 3; m++ {
		rp, rm := r, r
		rp[m] += eps
		rm[m] -= eps
		ap := relativisticAcceleration(rp, v)
		am := relativisticAcceleration(rm, v)
		for n := 0; n < 3; n++ {
			fd := (ap[n] - am[n]) / (2 * eps)
			if math.Abs(fd-dr[n][m]) > 1e-3*math.Max(1, math.Abs(fd)) {
				t.Fatalf("d(a[%d])/d(r[%d]) analytic=%g finite-diff=%g", n, m, dr[n][m], fd)
			}
		}
	}
}
