package nbody

import "testing"

func TestEncounterLogFreshSentinel(t *testing.T) {
	log := NewEncounterLog(1)
	rec := log.Get(0, Earth)
	if rec.Category != CategoryNone {
		t.Fatalf("fresh record category = %v, want CategoryNone", rec.Category)
	}
}

func TestEncounterLogApproachKeepsSmallestDistance(t *testing.T) {
	log := NewEncounterLog(1)
	log.Observe(0, Earth, EncounterRecord{MJD: 10, Category: CategoryApproach, Distance: 0.05})
	log.Observe(0, Earth, EncounterRecord{MJD: 11, Category: CategoryApproach, Distance: 0.2})
	rec := log.Get(0, Earth)
	if rec.Distance != 0.05 {
		t.Fatalf("merged distance = %g, want 0.05 (the smaller of the two)", rec.Distance)
	}
}

func TestEncounterLogImpactBeatsApproach(t *testing.T) {
	log := NewEncounterLog(1)
	log.Observe(0, Earth, EncounterRecord{MJD: 10, Category: CategoryApproach, Distance: 0.01})
	log.Observe(0, Earth, EncounterRecord{MJD: 12, Category: CategoryImpact, Distance: 0.0001})
	rec := log.Get(0, Earth)
	if rec.Category != CategoryImpact {
		t.Fatalf("merged category = %v, want CategoryImpact", rec.Category)
	}
}

func TestEncounterLogEarliestImpactWins(t *testing.T) {
	log := NewEncounterLog(1)
	log.Observe(0, Earth, EncounterRecord{MJD: 12, Category: CategoryImpact, Distance: 0.0002})
	log.Observe(0, Earth, EncounterRecord{MJD: 10, Category: CategoryImpact, Distance: 0.0005})
	rec := log.Get(0, Earth)
	if rec.MJD != 10 {
		t.Fatalf("merged impact MJD = %g, want 10 (the earliest)", rec.MJD)
	}
}

func TestEncounterLogOuterImpactStandsAgainstNestedApproach(t *testing.T) {
	log := NewEncounterLog(1)
	log.Observe(0, Earth, EncounterRecord{MJD: 5, Category: CategoryImpact, Distance: 0.0003})
	log.Observe(0, Earth, EncounterRecord{MJD: 5.1, Category: CategoryApproach, Distance: 0.0001})
	rec := log.Get(0, Earth)
	if rec.Category != CategoryImpact || rec.MJD != 5 {
		t.Fatalf("outer impact should stand, got category=%v mjd=%g", rec.Category, rec.MJD)
	}
}
