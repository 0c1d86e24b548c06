package nbody

import "math"

// gr15R and gr15C/gr15D are Everhart's precomputed auxiliary tables
// (§4.5): gr15R holds the pairwise node-spacing reciprocals that convert
// raw acceleration samples into the g-coefficients (28 entries, one per
// (node, earlier-node) pair); gr15C/gr15D convert g-coefficient deltas
// into b-coefficient updates and b-predictions across steps (21 entries
// each, indices 1..21 as in the reference). Built once from gr15Nodes
// rather than hand-transcribed, since both are pure functions of the
// eight Gauss-Radau spacings.
var (
	gr15R       [28]float64
	gr15C       [21]float64
	gr15D       [21]float64
	gr15RowOff  [8]int // flat offset into gr15R for node n's row (length n)
)

func init() {
	h := gr15Nodes
	idx := 0
	for j := 1; j < 8; j++ {
		gr15RowOff[j] = idx
		for k := 0; k < j; k++ {
			gr15R[idx] = 1.0 / (h[j] - h[k])
			idx++
		}
	}

	gr15C[0] = -h[1]
	gr15D[0] = h[1]
	l := 0
	for j := 2; j < 7; j++ {
		l++
		gr15C[l] = -h[j] * gr15C[l-j+1]
		gr15D[l] = h[1] * gr15D[l-j+1]
		for k := 1; k < j-1; k++ {
			l++
			gr15C[l] = gr15C[l-j] - h[j]*gr15C[l-j+1]
			gr15D[l] = gr15D[l-j] + h[k+1]*gr15D[l-j+1]
		}
		l++
		gr15C[l] = gr15C[l-j] - h[j]
		gr15D[l] = gr15D[l-j] + h[j]
	}
}

// gr15W and gr15U are the series weights of §4.5 step 4/5: w_m = 1/m for
// a first-order system (class=1) or 1/(m*(m+1)) for a second-order system
// (class=±2); u_m = 1/(m+1) for the velocity update.
func gr15W(m int, class Class) float64 {
	if class == ClassFirstOrder {
		return 1.0 / float64(m)
	}
	return 1.0 / float64(m*(m+1))
}

func gr15U(m int) float64 { return 1.0 / float64(m+1) }

// gr15Coeffs holds the seven b-coefficients (and their matching
// predictor "e" values) for one particle's ncomp-component quantity,
// across one GR15 sequence (§4.5).
type gr15Coeffs struct {
	b [7][]float64 // b[m-1], m=1..7, each length ncomp
	e [7][]float64
}

func newGR15Coeffs(ncomp int) gr15Coeffs {
	var c gr15Coeffs
	for i := range c.b {
		c.b[i] = make([]float64, ncomp)
		c.e[i] = make([]float64, ncomp)
	}
	return c
}

// predict evaluates the §4.5 step-2 series at s=h_k (0<s<=1), returning
// the displacement to add to the left-endpoint position (and, for a
// second-order class, velocity), relative to the a0 baseline acceleration
// of the current sequence:
//
//	r(s) = r0 + s*(t*v0 + t^2*s*(0.5*a0 + s*(w1*b1 + s*(w2*b2 + ... + s*w7*b7))))
//	v(s) = v0 + s*(t*a0 + t*s*(u1*b1 + s*(u2*b2 + ... + s*u7*b7)))
//
// so dr = 0.5*(s*t)^2*a0 + (s*t)^2*s*S(s) and dv = s*t*a0 + s^2*t*U(s), with
// S/U the w/u-weighted b-series Horner-evaluated from the m=7 term inward.
func (c gr15Coeffs) predictDelta(s, t float64, class Class, withVelocity bool, a0 []float64) (dr, dv []float64) {
	ncomp := len(c.b[0])
	dr = make([]float64, ncomp)
	if withVelocity {
		dv = make([]float64, ncomp)
	}
	for k := 0; k < ncomp; k++ {
		sSeries := gr15W(7, class) * c.b[6][k]
		for m := 6; m >= 1; m-- {
			sSeries = gr15W(m, class)*c.b[m-1][k] + s*sSeries
		}
		dr[k] = 0.5*s*s*t*t*a0[k] + s*s*s*t*t*sSeries

		if withVelocity {
			uSeries := gr15U(7) * c.b[6][k]
			for m := 6; m >= 1; m-- {
				uSeries = gr15U(m)*c.b[m-1][k] + s*uSeries
			}
			dv[k] = s*t*a0[k] + s*s*t*uSeries
		}
	}
	return dr, dv
}

// updateB applies one predictor iteration's g-coefficient deltas
// (g minus the previous iteration's g, per node) to the b-coefficients via
// gr15C (§4.5 step 2's "precomputed c-table").
func updateB(b [7][]float64, g [7][]float64) {
	ncomp := len(b[0])
	for k := 0; k < ncomp; k++ {
		tmp := g[0][k]
		b[0][k] += tmp
		idx := 0
		for n := 1; n < 7; n++ {
			tmp = g[n][k]
			for m := 0; m <= n-1; m++ {
				b[m][k] += gr15C[idx] * tmp
				idx++
			}
			b[n][k] += tmp
		}
	}
}

// gr15UpdateG folds a freshly evaluated acceleration sample at node n
// (1-based, 1..7) into the g-coefficient table via gr15R's pairwise
// reciprocals (§4.5 step 2's "precomputed r-table r_n").
func gr15UpdateG(n int, aMinusA0 []float64, g [7][]float64) {
	ncomp := len(aMinusA0)
	off := gr15RowOff[n]
	out := make([]float64, ncomp)
	copy(out, aMinusA0)
	for k := 0; k < ncomp; k++ {
		v := out[k]
		for m := 0; m < n; m++ {
			v *= gr15R[off+m]
			if m < n-1 {
				v -= g[m][k]
			}
		}
		out[k] = v
	}
	copy(g[n-1], out)
}

// GaussRadau15FullJPL propagates particles from t0 to t1 with the GR15
// implicit single-sequence integrator (§4.5, §6). ll controls adaptive
// step-size control (ss=10^(-ll)) or, when negative, forces opts.Step with
// no adaptivity. Jacobians are not yet available for GR15 (§9's Open
// Question): a non-nil opts.Jacobians is a DomainError, matching the
// source's behaviour.
func GaussRadau15FullJPL(cfg Config, t0, t1 float64, particles ParticleBatch, ll float64, class Class, eph EphemerisPort, opts GR15Options) (ParticleBatch, *EncounterLog, error) {
	if opts.Jacobians != nil {
		return ParticleBatch{}, nil, newError(DomainError, "gaussradau", "GR15 Jacobians are not yet available")
	}
	if len(particles.States) == 0 {
		return ParticleBatch{}, nil, newError(DomainError, "gaussradau", "empty particle batch")
	}

	elog := opts.Encounters
	if elog == nil {
		elog = NewEncounterLog(len(particles.States))
	}
	in := opts.forceInput()

	if ll == 0 {
		ll = cfg.DefaultTolerance
	}
	withVelocity := class != ClassSecondOrderPositional
	ss := 0.0
	fixedStep := ll < 0
	if !fixedStep {
		ss = math.Pow(10, -ll)
	}

	h := opts.Step
	if h == 0 {
		h = cfg.DefaultStep
	}
	if h == 0 {
		h = 1.0
	}
	if (t1-t0)*h < 0 {
		h = -h
	}
	direction := sign(t1 - t0)

	batch := particles
	nb := len(batch.States)
	ncomp := 3

	coeffs := make([]gr15Coeffs, nb)
	for i := range coeffs {
		coeffs[i] = newGR15Coeffs(ncomp)
	}

	t := t0
	step := h
	firstSequence := true
	last := false

	for !last {
		remaining := t1 - t
		if direction*(remaining-step) < 0 {
			step = remaining
			last = true
		}

		newStates, newCoeffs, actualStep, shrinkCount, err := gr15OneSequence(cfg, eph, batch, coeffs, t, step, class, withVelocity, in, elog, ss, fixedStep, firstSequence)
		if err != nil {
			return ParticleBatch{}, nil, err
		}
		if shrinkCount > 10 {
			return ParticleBatch{}, nil, newError(SolverNonConvergence, "gaussradau", "more than 10 step shrinks on the first sequence")
		}

		batch = ParticleBatch{States: newStates, Mass: particles.Mass}
		coeffs = newCoeffs
		t += actualStep
		step = nextGR15Step(coeffs, actualStep, direction, ss, fixedStep, h, class)
		firstSequence = false
	}

	return batch, elog, nil
}

// gr15OneSequence runs one GR15 step of nominal size step starting at t,
// including the predictor-corrector node loop and, on the first sequence,
// the step-shrink control of §4.5 step 3.
func gr15OneSequence(cfg Config, eph EphemerisPort, batch ParticleBatch, coeffs []gr15Coeffs, t, step float64, class Class, withVelocity bool, in ForceInput, elog *EncounterLog, ss float64, fixedStep, firstSequence bool) ([]StateVector, []gr15Coeffs, float64, int, error) {
	nb := len(batch.States)
	niter := 2
	if firstSequence {
		niter = 6
	}

	shrinks := 0
	for {
		a0, err := evalAccel(cfg, eph, batch, t, in, elog)
		if err != nil {
			return nil, nil, 0, 0, err
		}

		g := make([][7][]float64, nb)
		for i := range g {
			for m := range g[i] {
				g[i][m] = make([]float64, 3)
			}
		}
		gOld := make([][7][]float64, nb)
		for i := range gOld {
			for m := range gOld[i] {
				gOld[i][m] = make([]float64, 3)
			}
		}

		for iter := 0; iter < niter; iter++ {
			for n := 1; n <= 7; n++ {
				s := gr15Nodes[n]
				predicted := make([]StateVector, nb)
				for i := 0; i < nb; i++ {
					dr, dv := coeffs[i].predictDelta(s, step, class, withVelocity, a0[i][:])
					base := batch.States[i]
					r := add3(base.R, add3(scale3(s*step, base.V), [3]float64{dr[0], dr[1], dr[2]}))
					v := base.V
					if withVelocity {
						v = add3(base.V, [3]float64{dv[0], dv[1], dv[2]})
					}
					predicted[i] = StateVector{R: r, V: v}
				}
				aNode, err := evalAccel(cfg, eph, ParticleBatch{States: predicted, Mass: batch.Mass}, t+s*step, in, elog)
				if err != nil {
					return nil, nil, 0, 0, err
				}
				for i := 0; i < nb; i++ {
					delta := sub3(aNode[i], a0[i])
					gr15UpdateG(n, delta[:], g[i])
				}
			}
			for i := 0; i < nb; i++ {
				deltaG := [7][]float64{}
				for m := 0; m < 7; m++ {
					d := make([]float64, 3)
					for k := 0; k < 3; k++ {
						d[k] = g[i][m][k] - gOld[i][m][k]
					}
					deltaG[m] = d
				}
				updateB(coeffs[i].b, deltaG)
				for m := 0; m < 7; m++ {
					copy(gOld[i][m], g[i][m])
				}
			}
		}

		if fixedStep {
			return advanceGR15(cfg, eph, batch, coeffs, t, step, class, withVelocity, a0, in, elog), coeffs, step, shrinks, nil
		}

		hv := 0.0
		for i := 0; i < nb; i++ {
			for k := 0; k < 3; k++ {
				v := math.Abs(coeffs[i].b[6][k]) * gr15W(7, class) / math.Pow(math.Abs(step), 7)
				if v > hv {
					hv = v
				}
			}
		}
		if hv == 0 {
			return advanceGR15(cfg, eph, batch, coeffs, t, step, class, withVelocity, a0, in, elog), coeffs, step, shrinks, nil
		}
		tp := sign(step) * math.Pow(ss/hv, 1.0/9.0)
		if firstSequence && math.Abs(tp) <= math.Abs(step) {
			shrinks++
			if shrinks > 10 {
				return nil, nil, 0, shrinks, newError(SolverNonConvergence, "gaussradau", "more than 10 step shrinks on the first sequence")
			}
			logWarn(cfg.logger(), "subsys", "gaussradau", "status", "shrinking", "attempt", shrinks, "t", t, "step", step, "proposed", tp)
			step = 0.8 * tp
			continue
		}
		return advanceGR15(cfg, eph, batch, coeffs, t, step, class, withVelocity, a0, in, elog), coeffs, step, shrinks, nil
	}
}

// advanceGR15 applies §4.5 step 4's eighth-order update.
func advanceGR15(cfg Config, eph EphemerisPort, batch ParticleBatch, coeffs []gr15Coeffs, t, step float64, class Class, withVelocity bool, a0 [][3]float64, in ForceInput, elog *EncounterLog) []StateVector {
	nb := len(batch.States)
	out := make([]StateVector, nb)
	for i := 0; i < nb; i++ {
		s := batch.States[i]
		sumW := [3]float64{}
		sumU := [3]float64{}
		for m := 1; m <= 7; m++ {
			sumW = add3(sumW, scale3(gr15W(m, class), toVec3(coeffs[i].b[m-1])))
			sumU = add3(sumU, scale3(gr15U(m), toVec3(coeffs[i].b[m-1])))
		}
		r := add3(s.R, add3(scale3(step, s.V), scale3(step*step, add3(scale3(0.5, a0[i]), sumW))))
		v := s.V
		if class != ClassFirstOrder {
			v = add3(s.V, scale3(step, add3(a0[i], sumU)))
		}
		out[i] = StateVector{R: r, V: v}
	}
	return out
}

func toVec3(v []float64) [3]float64 { return [3]float64{v[0], v[1], v[2]} }

// evalAccel is a thin ForceModel wrapper returning just the acceleration
// half of the derivative, the quantity GR15's predictor-corrector loop
// operates on.
func evalAccel(cfg Config, eph EphemerisPort, batch ParticleBatch, t float64, in ForceInput, elog *EncounterLog) ([][3]float64, error) {
	fin := in
	fin.Epoch = t
	derivs, _, err := ForceModel(cfg, eph, batch, fin, elog)
	if err != nil {
		return nil, err
	}
	out := make([][3]float64, len(derivs))
	for i, d := range derivs {
		out[i] = d.V
	}
	return out, nil
}

// nextGR15Step chooses the following sequence's nominal step size via the
// q-series b-coefficient prediction and the 1.4x growth cap of §4.5 step 6.
// hv is the same max|b7|*w(7)/|t|^7 quantity step 3 uses to drive a shrink,
// evaluated here at the step that just completed.
func nextGR15Step(coeffs []gr15Coeffs, lastStep, direction, ss float64, fixedStep bool, fallback float64, class Class) float64 {
	if fixedStep {
		return fallback
	}
	hv := 0.0
	for i := range coeffs {
		for k := 0; k < 3; k++ {
			v := math.Abs(coeffs[i].b[6][k]) * gr15W(7, class) / math.Pow(math.Abs(lastStep), 7)
			if v > hv {
				hv = v
			}
		}
	}
	if hv == 0 {
		return direction * math.Min(math.Abs(lastStep)*1.4, math.Abs(fallback)*1.4)
	}
	tp := direction * math.Pow(ss/hv, 1.0/9.0)
	if math.Abs(tp) > 1.4*math.Abs(lastStep) {
		tp = direction * 1.4 * math.Abs(lastStep)
	}
	predictGR15Coeffs(coeffs, lastStep, tp)
	return tp
}

// predictGR15Coeffs carries the b-coefficients forward to the next
// sequence via the q-series of §4.5 step 5: q=t_next/t, with a correction
// equal to (b_current - e_previous).
func predictGR15Coeffs(coeffs []gr15Coeffs, tCurrent, tNext float64) {
	q := tNext / tCurrent
	for i := range coeffs {
		c := &coeffs[i]
		for k := 0; k < 3; k++ {
			corr := make([]float64, 7)
			for m := 0; m < 7; m++ {
				corr[m] = c.b[m][k] - c.e[m][k]
			}
			qp := q
			for m := 0; m < 7; m++ {
				c.b[m][k] += float64(m+1) * qp * corr[m]
				qp *= q
			}
			for m := 0; m < 7; m++ {
				c.e[m][k] = c.b[m][k]
			}
		}
	}
}
