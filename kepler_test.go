package nbody

import (
	"math"
	"testing"
)

func circularState(sma float64) StateVector {
	v := math.Sqrt(G / sma)
	return StateVector{R: [3]float64{sma, 0, 0}, V: [3]float64{0, v, 0}}
}

func TestKeplerStepCircularQuarterOrbit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	k := KeplerElements{Sma: 1.0, Mu: G}
	period := k.Period()

	s0 := circularState(1.0)
	s1, err := KeplerStep(cfg, period/4, s0)
	if err != nil {
		t.Fatalf("KeplerStep failed: %v", err)
	}
	// A quarter orbit from (a,0,0) with prograde velocity lands near (0,a,0).
	if math.Abs(s1.R[0]) > 1e-6 || math.Abs(s1.R[1]-1.0) > 1e-6 {
		t.Fatalf("quarter-orbit position = %v, want ~{0,1,0}", s1.R)
	}
}

func TestKeplerStepConservesEnergy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	s0 := StateVector{R: [3]float64{1.2, 0.3, 0}, V: [3]float64{-0.002, 0.015, 0.001}}
	e0 := dot3(s0.V, s0.V)/2 - G/norm3(s0.R)

	s1, err := KeplerStep(cfg, 137.0, s0)
	if err != nil {
		t.Fatalf("KeplerStep failed: %v", err)
	}
	e1 := dot3(s1.V, s1.V)/2 - G/norm3(s1.R)
	if math.Abs(e1-e0) > 1e-10*math.Abs(e0) {
		t.Fatalf("specific energy drifted: %g -> %g", e0, e1)
	}
}

func TestKeplerStepHyperbolic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	// v^2/2 - mu/r > 0 at r=1 AU with mu=G gives a hyperbolic branch.
	s0 := StateVector{R: [3]float64{1, 0, 0}, V: [3]float64{0, 0.1, 0}}
	s1, err := KeplerStep(cfg, 10, s0)
	if err != nil {
		t.Fatalf("KeplerStep (hyperbolic) failed: %v", err)
	}
	if !isFinite(s1.R[0]) || !isFinite(s1.R[1]) {
		t.Fatalf("hyperbolic propagation produced non-finite result: %v", s1)
	}
	if norm3(s1.R) <= norm3(s0.R) {
		t.Fatalf("hyperbolic orbit should be receding after 10 days: r0=%g r1=%g", norm3(s0.R), norm3(s1.R))
	}
}

func TestKeplerStepZeroCentralMuIsDomainError(t *testing.T) {
	cfg := Config{CentralBody: BodyID(99)}
	_, err := KeplerStep(cfg, 1.0, circularState(1.0))
	if err == nil {
		t.Fatalf("expected a DomainError for an undefined central body")
	}
	var nerr *Error
	if !asError(err, &nerr) || nerr.Kind != DomainError {
		t.Fatalf("expected DomainError, got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
