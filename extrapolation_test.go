package nbody

import (
	"math"
	"testing"
)

// sampleWithError synthesizes what a midpoint row "would have produced"
// for a smooth function whose error expansion is even in h: y(h) = y0 +
// c2*h^2 + c4*h^4, the shape Richardson/Neville extrapolation targets.
func sampleWithError(y0, c2, c4, h float64) []float64 {
	return []float64{y0 + c2*h*h + c4*h*h*h*h}
}

func TestExtrapolationTablePolynomialConverges(t *testing.T) {
	table := NewExtrapolationTable(1, 1, Polynomial)
	y0, c2, c4 := 3.0, 0.5, 0.2
	hs := []float64{0.1, 0.05, 0.025, 0.0125, 0.00625}
	var converged bool
	for row, h := range hs {
		sample := sampleWithError(y0, c2, c4, h)
		cv := table.AddRow(row+1, h*h, [][]float64{sample})
		if cv[0] {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("table never converged over %d rows", len(hs))
	}
	got := table.Estimate(0)[0]
	if math.Abs(got-y0) > 1e-6 {
		t.Fatalf("extrapolated estimate = %g, want ~%g", got, y0)
	}
}

func TestExtrapolationTableRationalConverges(t *testing.T) {
	table := NewExtrapolationTable(1, 1, Rational)
	y0, c2, c4 := -1.5, 0.3, 0.1
	hs := []float64{0.1, 0.05, 0.025, 0.0125, 0.00625, 0.003125}
	var converged bool
	for row, h := range hs {
		sample := sampleWithError(y0, c2, c4, h)
		cv := table.AddRow(row+1, h*h, [][]float64{sample})
		if cv[0] {
			converged = true
			break
		}
	}
	if !converged {
		t.Fatalf("rational table never converged over %d rows", len(hs))
	}
	got := table.Estimate(0)[0]
	if math.Abs(got-y0) > 1e-4 {
		t.Fatalf("extrapolated estimate = %g, want ~%g", got, y0)
	}
}

func TestExtrapolationTableSkipsConvergedParticles(t *testing.T) {
	table := NewExtrapolationTable(2, 1, Polynomial)
	// Particle 0 is constant, so its first extrapolation update (row 2) is
	// zero and it converges there; particle 1 needs more rows. Row 2 must
	// still be reported after rows 3 and 4, since converged particles are
	// skipped.
	hs := []float64{0.1, 0.05, 0.025, 0.0125}
	for row, h := range hs {
		rows := [][]float64{{5.0}, sampleWithError(2.0, 1.0, 0.4, h)}
		table.AddRow(row+1, h*h, rows)
	}
	ok0, row0 := table.Converged(0)
	if !ok0 || row0 != 2 {
		t.Fatalf("particle 0 should converge on row 2, got converged=%v row=%d", ok0, row0)
	}
}

func TestStateJacobianSliceRoundTrip(t *testing.T) {
	s := StateVector{R: [3]float64{1, 2, 3}, V: [3]float64{4, 5, 6}}
	back := sliceToState(stateToSlice(s))
	if back != s {
		t.Fatalf("state slice round trip: got %v, want %v", back, s)
	}

	j := IdentityJacobian()
	j.Vr[0][1] = 0.25
	back2 := sliceToJacobian(jacobianToSlice(j))
	if back2.Vr[0][1] != 0.25 || back2.Rr[1][1] != 1 {
		t.Fatalf("jacobian slice round trip lost data: %+v", back2)
	}
}
