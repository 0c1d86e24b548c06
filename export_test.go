package nbody

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpEncountersCSV(t *testing.T) {
	log := NewEncounterLog(1)
	log.Observe(0, Earth, EncounterRecord{MJD: 100, Category: CategoryApproach, Distance: 0.01, Substep: 0.5})

	var buf bytes.Buffer
	if err := DumpEncountersCSV(&buf, log); err != nil {
		t.Fatalf("DumpEncountersCSV failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "particle,body,category,mjd,distance_au,substep_day") {
		t.Fatalf("missing header row: %q", out)
	}
	if !strings.Contains(out, "Earth") {
		t.Fatalf("missing Earth row: %q", out)
	}
}

func TestDumpTrajectoryCSVLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := DumpTrajectoryCSV(&buf, []float64{0, 1}, []StateVector{{}})
	if err == nil {
		t.Fatalf("expected a DomainError for mismatched epochs/states lengths")
	}
}

func TestDumpTrajectoryCSVWritesAllRows(t *testing.T) {
	var buf bytes.Buffer
	states := []StateVector{
		{R: [3]float64{1, 0, 0}, V: [3]float64{0, 0.01, 0}},
		{R: [3]float64{1.01, 0.01, 0}, V: [3]float64{-0.0001, 0.0099, 0}},
	}
	if err := DumpTrajectoryCSV(&buf, []float64{0, 1}, states); err != nil {
		t.Fatalf("DumpTrajectoryCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("expected 3 lines (header + 2 rows), got %d: %q", len(lines), buf.String())
	}
}
