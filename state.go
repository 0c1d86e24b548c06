package nbody

import "gonum.org/v1/gonum/mat"

// StateVector is a six-component Cartesian state, position and velocity
// in AU and AU/day, in a heliocentric (by default) equatorial frame (§3).
type StateVector struct {
	R [3]float64
	V [3]float64
}

// Jacobian is the 6x6 partial derivative of a state now with respect to
// the state at t0 (§3). Stored as four 3x3 blocks so the force model's
// explicit ∂a/∂r, ∂a/∂v contributions can be applied block-wise without
// a general dense-matrix dependency.
type Jacobian struct {
	Rr, Rv, Vr, Vv [3][3]float64
}

// IdentityJacobian returns ∂state/∂state at t0=t, i.e. the identity.
func IdentityJacobian() Jacobian {
	var j Jacobian
	for i := 0; i < 3; i++ {
		j.Rr[i][i] = 1
		j.Vv[i][i] = 1
	}
	return j
}

// ParticleBatch is an ordered sequence of particles (§3). The first
// N-len(Mass) entries are massless test particles; the trailing
// len(Mass) entries are additional massive perturbers propagated
// alongside and affecting only the massless particles.
type ParticleBatch struct {
	States []StateVector
	// Mass holds G*m for the trailing additional massive perturbers, in
	// the same AU^3/day^2 units as planetary μ. len(Mass) <= len(States).
	Mass []float64
}

// NumMassless returns the count of leading massless particles.
func (b ParticleBatch) NumMassless() int {
	return len(b.States) - len(b.Mass)
}

// additionalIndex reports whether particle index i is one of the
// trailing additional massive perturbers, and if so its index into Mass.
func (b ParticleBatch) additionalIndex(i int) (int, bool) {
	n := b.NumMassless()
	if i < n {
		return 0, false
	}
	return i - n, true
}

// matDense6 wraps a 36-element row-major slice as a 6x6 gonum matrix.
func matDense6(v []float64) *mat.Dense {
	return mat.NewDense(6, 6, v)
}

// Dense row-major-flattens a Jacobian into a 6x6 gonum matrix, the
// convention the Bulirsch-Stoer driver uses to carry the state-transition
// matrix through its extrapolation table (GR15 carries no Jacobians),
// grounded on the teacher's estimate.go OrbitEstimate.GetState/SetState
// Φ-flattening (the REDESIGN FLAGS section singles this active ordering
// out over the commented-out alternatives in the source).
func (j Jacobian) Dense() *mat.Dense {
	d := mat.NewDense(6, 6, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			d.Set(r, c, j.Rr[r][c])
			d.Set(r, c+3, j.Rv[r][c])
			d.Set(r+3, c, j.Vr[r][c])
			d.Set(r+3, c+3, j.Vv[r][c])
		}
	}
	return d
}

// JacobianFromDense is the inverse of Dense.
func JacobianFromDense(d *mat.Dense) Jacobian {
	var j Jacobian
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			j.Rr[r][c] = d.At(r, c)
			j.Rv[r][c] = d.At(r, c+3)
			j.Vr[r][c] = d.At(r+3, c)
			j.Vv[r][c] = d.At(r+3, c+3)
		}
	}
	return j
}

// Mul composes two Jacobians block-wise as 6x6 matrix multiplication
// (this . other), via their Dense flattening. Used by the midpoint
// stepper to apply d(f)/d(state) to the carried state-transition matrix.
func (j Jacobian) Mul(other Jacobian) Jacobian {
	var out mat.Dense
	out.Mul(j.Dense(), other.Dense())
	return JacobianFromDense(&out)
}

// Add returns the block-wise sum of two Jacobians.
func (j Jacobian) Add(other Jacobian) Jacobian {
	var out Jacobian
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Rr[r][c] = j.Rr[r][c] + other.Rr[r][c]
			out.Rv[r][c] = j.Rv[r][c] + other.Rv[r][c]
			out.Vr[r][c] = j.Vr[r][c] + other.Vr[r][c]
			out.Vv[r][c] = j.Vv[r][c] + other.Vv[r][c]
		}
	}
	return out
}

// Scale returns the block-wise scaling of a Jacobian by s.
func (j Jacobian) Scale(s float64) Jacobian {
	var out Jacobian
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Rr[r][c] = s * j.Rr[r][c]
			out.Rv[r][c] = s * j.Rv[r][c]
			out.Vr[r][c] = s * j.Vr[r][c]
			out.Vv[r][c] = s * j.Vv[r][c]
		}
	}
	return out
}
