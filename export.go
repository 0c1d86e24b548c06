package nbody

import (
	"encoding/csv"
	"fmt"
	"io"
)

// DumpEncountersCSV writes one row per (particle, body) cell of log's
// table, sorted by particle index then BodyID, to w. This is diagnostic
// tooling only: no entry point in this package calls it, and no file
// format it produces is part of the propagation contract (§6).
func DumpEncountersCSV(w io.Writer, log *EncounterLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"particle", "body", "category", "mjd", "distance_au", "substep_day"}); err != nil {
		return wrapError(AllocationFailure, "export", "writing encounter header failed", err)
	}

	rows := log.Rows()
	particles := make([]int, 0, len(rows))
	for p := range rows {
		particles = append(particles, p)
	}
	sortInts(particles)

	for _, p := range particles {
		row := rows[p]
		bodies := make([]BodyID, 0, len(row))
		for b := range row {
			bodies = append(bodies, b)
		}
		sortBodyIDs(bodies)
		for _, b := range bodies {
			rec := row[b]
			record := []string{
				fmt.Sprintf("%d", p),
				b.String(),
				fmt.Sprintf("%d", rec.Category),
				fmt.Sprintf("%.9f", rec.MJD),
				fmt.Sprintf("%.12e", rec.Distance),
				fmt.Sprintf("%.12e", rec.Substep),
			}
			if err := cw.Write(record); err != nil {
				return wrapError(AllocationFailure, "export", "writing encounter row failed", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// DumpTrajectoryCSV writes a header and then one row per state to w,
// pairing states[i] with epochs[i]. len(epochs) must equal len(states);
// otherwise a DomainError is returned and nothing is written.
func DumpTrajectoryCSV(w io.Writer, epochs []float64, states []StateVector) error {
	if len(epochs) != len(states) {
		return newError(DomainError, "export", "epochs and states must have the same length")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mjd", "x_au", "y_au", "z_au", "vx_au_day", "vy_au_day", "vz_au_day"}); err != nil {
		return wrapError(AllocationFailure, "export", "writing trajectory header failed", err)
	}
	for i, s := range states {
		record := []string{
			fmt.Sprintf("%.9f", epochs[i]),
			fmt.Sprintf("%.12e", s.R[0]),
			fmt.Sprintf("%.12e", s.R[1]),
			fmt.Sprintf("%.12e", s.R[2]),
			fmt.Sprintf("%.12e", s.V[0]),
			fmt.Sprintf("%.12e", s.V[1]),
			fmt.Sprintf("%.12e", s.V[2]),
		}
		if err := cw.Write(record); err != nil {
			return wrapError(AllocationFailure, "export", "writing trajectory row failed", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// sortInts and sortBodyIDs are small insertion sorts: the row/column
// counts here are bounded by particle and catalogue-body counts, never
// large enough to justify pulling in sort.Slice's reflection overhead.
func sortInts(v []int) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}

func sortBodyIDs(v []BodyID) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}
