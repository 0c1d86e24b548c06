package nbody

import "math"

// ExtrapVariant selects the Neville-style recurrence used to fill a
// diagonal of the extrapolation table (§4.3). Polynomial is the default
// per §9's Open Questions (the rational variant exists in the source but
// is commented out at every call site).
type ExtrapVariant int

const (
	Polynomial ExtrapVariant = iota
	Rational
)

// particleExtrap is one particle's column of the extrapolation table: the
// squared step sizes seen so far, the Neville/rational "d" table kept in
// the Numerical-Recipes pzextr/rzextr layout (one slice per depth,
// indexed by component), and the most recently extrapolated estimate.
// Shared between state extrapolation (ncomp=6) and Jacobian extrapolation
// (ncomp=36, via Jacobian.Dense row-major flattening), per §4.3's "shared
// one implementation" requirement.
type particleExtrap struct {
	variant      ExtrapVariant
	ncomp        int
	h2           []float64
	d            [][]float64
	estimate     []float64
	converged    bool
	convergedRow int
}

func newParticleExtrap(ncomp int, variant ExtrapVariant) *particleExtrap {
	return &particleExtrap{ncomp: ncomp, variant: variant}
}

// addRow feeds the midpoint result w0 for the row with squared step h2
// (row index `row`, 1-based, matching §4.3's column index z) into the
// table. A particle that already converged is a no-op, per §4.3's
// "a particle that has converged is skipped on subsequent columns".
func (p *particleExtrap) addRow(row int, h2 float64, w0 []float64, tol float64) {
	if p.converged {
		return
	}
	p.h2 = append(p.h2, h2)
	iest := len(p.h2)

	yy := make([]float64, p.ncomp)
	copy(yy, w0)
	dy := make([]float64, p.ncomp)
	copy(dy, w0)

	switch {
	case iest == 1:
		d0 := make([]float64, p.ncomp)
		copy(d0, w0)
		p.d = append(p.d, d0)
	case p.variant == Rational:
		p.rationalStep(iest, h2, w0, yy, dy)
	default:
		p.polynomialStep(iest, h2, w0, yy, dy)
	}

	p.estimate = yy
	if maxAbsSlice(dy) < tol {
		p.converged = true
		p.convergedRow = row
	}
}

// polynomialStep is the Neville/pzextr recurrence of §4.3:
//
//	d(i,j) = (c - d(i,j-1)) * (h_z/(h_i-h_z))
//	c      = (c - d(i,j-1)) * (h_i/(h_i-h_z))
//
// applied bottom-to-top over the existing rows i=z-1..1, with
// c=w0[z], d(z-1,1)=w0[z-1] as the seed.
func (p *particleExtrap) polynomialStep(iest int, hz float64, w0, yy, dy []float64) {
	c := make([]float64, p.ncomp)
	copy(c, w0)
	for k1 := 1; k1 < iest; k1++ {
		hi := p.h2[iest-1-k1]
		delta := 1.0 / (hi - hz)
		f1 := hz * delta
		f2 := hi * delta
		for j := 0; j < p.ncomp; j++ {
			q := p.d[k1-1][j]
			p.d[k1-1][j] = dy[j]
			deltaC := c[j] - q
			dy[j] = f1 * deltaC
			c[j] = f2 * deltaC
			yy[j] += dy[j]
		}
	}
	newDepth := make([]float64, p.ncomp)
	copy(newDepth, dy)
	p.d = append(p.d, newDepth)
}

// rationalStep is the Bulirsch-Stoer rational recurrence of §4.3:
//
//	t1 = (h_i/h_z)*d(i,j-1); t2 = t1-c
//	d(i,j) = c*(c-d(i,j-1))/t2, c = t1*(c-d(i,j-1))/t2     if t2 != 0
//	d(i,j) = 0, c = 0                                       otherwise
//
// in the standard reference's (Numerical Recipes rzextr) layout: a zero
// denominator is "no update this entry" (§7's numerical-stability policy),
// realised here by setting both the entry and c to zero.
func (p *particleExtrap) rationalStep(iest int, hz float64, w0, yy, dy []float64) {
	fx := make([]float64, iest-1)
	for k := 1; k <= iest-1; k++ {
		fx[k-1] = p.h2[iest-k-1] / hz
	}
	p.d = append(p.d, make([]float64, p.ncomp))
	for j := 0; j < p.ncomp; j++ {
		v := p.d[0][j]
		c := w0[j]
		yyj := w0[j]
		p.d[0][j] = yyj
		var ddy float64
		for k := 2; k <= iest; k++ {
			b1 := fx[k-2] * v
			b := b1 - c
			ddy = c - v
			if b != 0 {
				b = ddy / b
				ddy = c * b
				c = b1 * b
			} else {
				ddy = 0 // zero denominator: no update this entry (§7)
				c = 0
			}
			if k != iest {
				v = p.d[k-1][j]
			}
			p.d[k-1][j] = ddy
			yyj += ddy
		}
		dy[j] = ddy
		yy[j] = yyj
	}
}

func maxAbsSlice(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// ExtrapolationTable drives nParticles independent particleExtrap columns
// through the same sequence of rows (§3, ExtrapolationTable; §4.3).
type ExtrapolationTable struct {
	variant  ExtrapVariant
	ncomp    int
	columns  []*particleExtrap
	tol      float64
}

// NewExtrapolationTable allocates a table for nParticles particles, each
// carrying ncomp real components per row (6 for state, 36 for a
// row-major-flattened Jacobian).
func NewExtrapolationTable(nParticles, ncomp int, variant ExtrapVariant) *ExtrapolationTable {
	t := &ExtrapolationTable{variant: variant, ncomp: ncomp, tol: bsExtrapolTol}
	t.columns = make([]*particleExtrap, nParticles)
	for i := range t.columns {
		t.columns[i] = newParticleExtrap(ncomp, variant)
	}
	return t
}

// AddRow feeds row `row`'s midpoint result (h2, one ncomp-length vector
// per particle) into every not-yet-converged particle's column, and
// reports, per particle, whether it has converged on this or an earlier row.
func (t *ExtrapolationTable) AddRow(row int, h2 float64, rows [][]float64) []bool {
	converged := make([]bool, len(t.columns))
	for i, col := range t.columns {
		col.addRow(row, h2, rows[i], t.tol)
		converged[i] = col.converged
	}
	return converged
}

// AllConverged reports whether every particle's column has converged.
func (t *ExtrapolationTable) AllConverged() bool {
	for _, col := range t.columns {
		if !col.converged {
			return false
		}
	}
	return true
}

// Converged reports whether particle i's column has converged, and at
// which row it did so.
func (t *ExtrapolationTable) Converged(i int) (bool, int) {
	return t.columns[i].converged, t.columns[i].convergedRow
}

// Estimate returns particle i's current best extrapolated value: the
// value at the row it converged at, or the last row added if it never
// converged (§4.4: "the engine does not error out").
func (t *ExtrapolationTable) Estimate(i int) []float64 {
	return t.columns[i].estimate
}

// extrapolateStates runs one BS row (already computed by the midpoint
// stepper) through the table for state vectors, converting to/from the
// [R,V] representation at the boundary.
func extrapolateStates(t *ExtrapolationTable, row int, h2 float64, states []StateVector) []bool {
	rows := make([][]float64, len(states))
	for i, s := range states {
		rows[i] = stateToSlice(s)
	}
	return t.AddRow(row, h2, rows)
}

func stateExtrapolate(t *ExtrapolationTable, i int) StateVector {
	return sliceToState(t.Estimate(i))
}

func stateToSlice(s StateVector) []float64 {
	return []float64{s.R[0], s.R[1], s.R[2], s.V[0], s.V[1], s.V[2]}
}

func sliceToState(v []float64) StateVector {
	return StateVector{R: [3]float64{v[0], v[1], v[2]}, V: [3]float64{v[3], v[4], v[5]}}
}

// extrapolateJacobians is extrapolateStates' Jacobian-table counterpart, via
// row-major flattening (state.go's Jacobian.Dense).
func extrapolateJacobians(t *ExtrapolationTable, row int, h2 float64, jacs []Jacobian) []bool {
	rows := make([][]float64, len(jacs))
	for i, j := range jacs {
		rows[i] = jacobianToSlice(j)
	}
	return t.AddRow(row, h2, rows)
}

func jacobianExtrapolate(t *ExtrapolationTable, i int) Jacobian {
	return sliceToJacobian(t.Estimate(i))
}

func jacobianToSlice(j Jacobian) []float64 {
	d := j.Dense()
	out := make([]float64, 36)
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			out[r*6+c] = d.At(r, c)
		}
	}
	return out
}

func sliceToJacobian(v []float64) Jacobian {
	d := matDense6(v)
	return JacobianFromDense(d)
}
