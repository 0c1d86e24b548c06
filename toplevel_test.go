package nbody

import "testing"

func TestRunTopLevelSlicesWholeStepsAndRemainder(t *testing.T) {
	var stepped []float64
	var finished bool
	step := func(t, h float64) error {
		stepped = append(stepped, h)
		return nil
	}
	finish := func(t, h float64, nsub int) error {
		finished = true
		return nil
	}
	if err := runTopLevel(DefaultConfig(), 0, 3.5, 1.0, step, finish); err != nil {
		t.Fatalf("runTopLevel failed: %v", err)
	}
	if len(stepped) != 4 {
		t.Fatalf("expected 3 whole steps plus one remainder step, got %d", len(stepped))
	}
	if finished {
		t.Fatalf("a 0.5-day remainder is above 10*eps and should get a full step, not the finisher")
	}
}

func TestRunTopLevelExactMultipleSkipsFinisher(t *testing.T) {
	var finished bool
	step := func(t, h float64) error { return nil }
	finish := func(t, h float64, nsub int) error { finished = true; return nil }
	if err := runTopLevel(DefaultConfig(), 0, 4.0, 1.0, step, finish); err != nil {
		t.Fatalf("runTopLevel failed: %v", err)
	}
	if finished {
		t.Fatalf("an exact multiple of h should never invoke the finisher")
	}
}

func TestRunTopLevelRejectsZeroStep(t *testing.T) {
	step := func(t, h float64) error { return nil }
	finish := func(t, h float64, nsub int) error { return nil }
	if err := runTopLevel(DefaultConfig(), 0, 1, 0, step, finish); err == nil {
		t.Fatalf("expected a DomainError for a zero step size")
	}
}

func TestKeplerStepBatchPropagatesEveryParticle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relativity = false
	batch := ParticleBatch{States: []StateVector{circularState(1.0), circularState(2.0)}}
	out, err := KeplerStepBatch(cfg, 10, batch)
	if err != nil {
		t.Fatalf("KeplerStepBatch failed: %v", err)
	}
	if len(out.States) != 2 {
		t.Fatalf("expected 2 propagated states, got %d", len(out.States))
	}
}
