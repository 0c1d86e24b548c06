package nbody

import (
	"math"
	"testing"
)

func TestGaussRadau15FullJPLRejectsJacobians(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}

	_, _, err := GaussRadau15FullJPL(cfg, 0, 1, batch, 12, ClassSecondOrderPositional, eph, GR15Options{Jacobians: []Jacobian{IdentityJacobian()}})
	if err == nil {
		t.Fatalf("expected a DomainError: GR15 does not yet propagate Jacobians")
	}
	var nerr *Error
	if !asError(err, &nerr) || nerr.Kind != DomainError {
		t.Fatalf("expected DomainError, got %v", err)
	}
}

func TestGaussRadau15FullJPLFixedStepStaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}

	out, elog, err := GaussRadau15FullJPL(cfg, 0, 2.0, batch, -1, ClassSecondOrderPositional, eph, GR15Options{Step: 0.5})
	if err != nil {
		t.Fatalf("GaussRadau15FullJPL failed: %v", err)
	}
	if elog == nil {
		t.Fatalf("expected an encounter log to be allocated")
	}
	r := norm3(out.States[0].R)
	if !isFinite(r) || math.Abs(r-1.0) > 0.5 {
		t.Fatalf("propagated radius %g strayed too far from the starting circular orbit", r)
	}
}

func TestGaussRadau15FullJPLMatchesKeplerForCircularOrbit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}

	out, elog, err := GaussRadau15FullJPL(cfg, 0, 10.5, batch, 12, ClassSecondOrderPositional, eph, GR15Options{Step: 1.0})
	if err != nil {
		t.Fatalf("GaussRadau15FullJPL failed: %v", err)
	}
	if elog == nil {
		t.Fatalf("expected an encounter log to be allocated when none was supplied")
	}

	want, err := KeplerStep(cfg, 10.5, batch.States[0])
	if err != nil {
		t.Fatalf("KeplerStep reference failed: %v", err)
	}
	if math.Abs(out.States[0].R[0]-want.R[0]) > 1e-9 {
		t.Fatalf("GR15 result %v diverges from Kepler reference %v", out.States[0].R, want.R)
	}
}

func TestGr15TableSizes(t *testing.T) {
	if len(gr15R) != 28 {
		t.Fatalf("gr15R has %d entries, want 28", len(gr15R))
	}
	if len(gr15C) != 21 || len(gr15D) != 21 {
		t.Fatalf("gr15C/gr15D have %d/%d entries, want 21/21", len(gr15C), len(gr15D))
	}
}

func TestGr15WFirstOrderVsSecondOrder(t *testing.T) {
	if gr15W(2, ClassFirstOrder) != 0.5 {
		t.Fatalf("gr15W(2, first-order) = %g, want 0.5", gr15W(2, ClassFirstOrder))
	}
	if gr15W(2, ClassSecondOrder) != 1.0/6.0 {
		t.Fatalf("gr15W(2, second-order) = %g, want 1/6", gr15W(2, ClassSecondOrder))
	}
}
