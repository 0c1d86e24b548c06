package nbody

import "math"

// EncounterCategory classifies one EncounterLog record (§3).
type EncounterCategory int

const (
	// CategoryNone is the sentinel "no observation yet" state.
	CategoryNone EncounterCategory = 3
	// CategoryImpact means the recorded distance was below the body's collision radius.
	CategoryImpact EncounterCategory = 1
	// CategoryApproach means a non-impacting close approach.
	CategoryApproach EncounterCategory = 2
)

// EncounterRecord is one (particle, body) cell of an EncounterLog.
type EncounterRecord struct {
	MJD      float64
	Category EncounterCategory
	Distance float64
	Substep  float64
}

func freshRecord() EncounterRecord {
	return EncounterRecord{Category: CategoryNone, Distance: math.Inf(1)}
}

// EncounterLog is the (particle, body) table of §3, keyed by a
// zero-based particle index and catalogue BodyID (1..11, 11=Sun).
// Additional perturbers are not indexed here; §4.1 only requires
// per-planet and per-Sun records.
type EncounterLog struct {
	nParticles int
	records    map[int]map[BodyID]EncounterRecord
}

// NewEncounterLog allocates an EncounterLog for nParticles particles,
// all cells initialised to the category-3/distance-+inf sentinel.
func NewEncounterLog(nParticles int) *EncounterLog {
	return &EncounterLog{
		nParticles: nParticles,
		records:    make(map[int]map[BodyID]EncounterRecord, nParticles),
	}
}

// Get returns the current record for (particle, body), or the sentinel
// if none has been recorded yet.
func (l *EncounterLog) Get(particle int, body BodyID) EncounterRecord {
	if row, ok := l.records[particle]; ok {
		if rec, ok := row[body]; ok {
			return rec
		}
	}
	return freshRecord()
}

// Observe merges a new observation into (particle, body) per the §3
// merge rule: a category-1 record with earlier time always wins over
// any record with equal or later time; among category->=2 records the
// smaller distance wins; a category-1 record from a nested (finer
// substep) call promotes any non-impact held at the outer level for
// the same pair.
func (l *EncounterLog) Observe(particle int, body BodyID, candidate EncounterRecord) {
	row, ok := l.records[particle]
	if !ok {
		row = make(map[BodyID]EncounterRecord)
		l.records[particle] = row
	}
	current, ok := row[body]
	if !ok {
		current = freshRecord()
	}
	row[body] = mergeEncounter(current, candidate)
}

func mergeEncounter(current, candidate EncounterRecord) EncounterRecord {
	if candidate.Category == CategoryImpact {
		if current.Category != CategoryImpact || candidate.MJD < current.MJD {
			return candidate
		}
		return current
	}
	if current.Category == CategoryImpact {
		// An outer-level impact stands unless a nested impact beat it above.
		return current
	}
	// Both are category-2 (or the sentinel, which carries +inf distance
	// and therefore never wins against a real observation).
	if candidate.Distance < current.Distance {
		return candidate
	}
	return current
}

// Rows exposes the full table for callers that flatten it into the
// [particle][body][field] layout of §6 (encounters output parameter).
func (l *EncounterLog) Rows() map[int]map[BodyID]EncounterRecord {
	return l.records
}
