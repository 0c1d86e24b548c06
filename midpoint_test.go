package nbody

import (
	"math"
	"testing"
)

func TestMidpointStepApproximatesKeplerCircular(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}
	in := ForceInput{}

	states, _, err := MidpointStep(cfg, eph, batch, nil, 0, 1.0, 64, in, nil)
	if err != nil {
		t.Fatalf("MidpointStep failed: %v", err)
	}

	want, err := KeplerStep(cfg, 1.0, batch.States[0])
	if err != nil {
		t.Fatalf("KeplerStep reference failed: %v", err)
	}
	if math.Abs(states[0].R[0]-want.R[0]) > 1e-5 || math.Abs(states[0].R[1]-want.R[1]) > 1e-5 {
		t.Fatalf("midpoint result %v diverges from Kepler reference %v", states[0].R, want.R)
	}
}

func TestMidpointStepRecordsSunEncounter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}

	elog := NewEncounterLog(1)
	if _, _, err := MidpointStep(cfg, eph, batch, nil, 0, 1.0, 5, ForceInput{}, elog); err != nil {
		t.Fatalf("MidpointStep failed: %v", err)
	}
	// Each of the n+1 force evaluations re-observes the Sun record; the
	// log itself only keeps the merged result, so this just checks a
	// record exists rather than counting calls.
	rec := elog.Get(0, Sun)
	if rec.Category == CategoryNone {
		t.Fatalf("expected a Sun encounter after a midpoint step")
	}
}

func TestMidpointStepPropagatesJacobianIdentityAtZeroStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	eph := NewStaticEphemeris()
	batch := ParticleBatch{States: []StateVector{circularState(1.0)}}
	jac0 := []Jacobian{IdentityJacobian()}

	_, jacs, err := MidpointStep(cfg, eph, batch, jac0, 0, 1e-6, 4, ForceInput{}, nil)
	if err != nil {
		t.Fatalf("MidpointStep failed: %v", err)
	}
	d := jacs[0].Dense()
	for i := 0; i < 6; i++ {
		if math.Abs(d.At(i, i)-1) > 1e-3 {
			t.Fatalf("jacobian diagonal at a tiny step should stay near 1, got %v", d.At(i, i))
		}
	}
}
