package nbody

// MidpointStep advances batch by h using n equal substeps of the modified
// midpoint formula (§4.2):
//
//	q0 = state_in
//	q1 = q0 + dt*f(q0,t)
//	q_{k+1} = q_{k-1} + 2*dt*f(q_k, t+(k-1)*dt)   for k=2..n
//	state_out = 1/2*(q_n + q_{n-1} + dt*f(q_n, t+h))
//
// jac0, when non-nil, carries the state-transition matrix going into the
// step; the same recurrence is applied to it with the right-hand side
// replaced by d(f)/d(state) . P (§4.2). The force model is evaluated
// exactly n+1 times, at the shared substep schedule common to every
// particle in the batch, and elog accumulates one observation per
// evaluation.
func MidpointStep(cfg Config, eph EphemerisPort, batch ParticleBatch, jac0 []Jacobian, t, h float64, n int, in ForceInput, elog *EncounterLog) ([]StateVector, []Jacobian, error) {
	dt := h / float64(n)
	nb := len(batch.States)
	withJac := jac0 != nil

	qPrev := cloneStates(batch.States)
	var pPrev []Jacobian
	if withJac {
		pPrev = clonePartials(jac0)
	}

	fin := in
	fin.Epoch = t
	fin.SubstepSize = dt
	fin.WithPartials = withJac
	f0, j0, err := ForceModel(cfg, eph, ParticleBatch{States: qPrev, Mass: batch.Mass}, fin, elog)
	if err != nil {
		return nil, nil, err
	}

	qCur := make([]StateVector, nb)
	for i := range qCur {
		qCur[i] = axpyState(qPrev[i], dt, f0[i])
	}
	var pCur []Jacobian
	if withJac {
		pCur = make([]Jacobian, nb)
		for i := range pCur {
			pCur[i] = pPrev[i].Add(j0[i].Mul(pPrev[i]).Scale(dt))
		}
	}

	for k := 2; k <= n; k++ {
		fin.Epoch = t + float64(k-1)*dt
		fk, jk, err := ForceModel(cfg, eph, ParticleBatch{States: qCur, Mass: batch.Mass}, fin, elog)
		if err != nil {
			return nil, nil, err
		}
		qNext := make([]StateVector, nb)
		for i := range qNext {
			qNext[i] = axpyState(qPrev[i], 2*dt, fk[i])
		}
		var pNext []Jacobian
		if withJac {
			pNext = make([]Jacobian, nb)
			for i := range pNext {
				pNext[i] = pPrev[i].Add(jk[i].Mul(pCur[i]).Scale(2 * dt))
			}
		}
		qPrev, qCur = qCur, qNext
		if withJac {
			pPrev, pCur = pCur, pNext
		}
	}

	fin.Epoch = t + h
	fn, jn, err := ForceModel(cfg, eph, ParticleBatch{States: qCur, Mass: batch.Mass}, fin, elog)
	if err != nil {
		return nil, nil, err
	}

	outStates := make([]StateVector, nb)
	for i := range outStates {
		half := axpyState(addStates(qCur[i], qPrev[i]), dt, fn[i])
		outStates[i] = scaleState(0.5, half)
	}
	var outJacs []Jacobian
	if withJac {
		outJacs = make([]Jacobian, nb)
		for i := range outJacs {
			sum := pCur[i].Add(pPrev[i]).Add(jn[i].Mul(pCur[i]).Scale(dt))
			outJacs[i] = sum.Scale(0.5)
		}
	}
	return outStates, outJacs, nil
}

func cloneStates(s []StateVector) []StateVector {
	out := make([]StateVector, len(s))
	copy(out, s)
	return out
}

func clonePartials(j []Jacobian) []Jacobian {
	out := make([]Jacobian, len(j))
	copy(out, j)
	return out
}

func axpyState(base StateVector, a float64, deriv StateVector) StateVector {
	return StateVector{
		R: add3(base.R, scale3(a, deriv.R)),
		V: add3(base.V, scale3(a, deriv.V)),
	}
}

func addStates(a, b StateVector) StateVector {
	return StateVector{R: add3(a.R, b.R), V: add3(a.V, b.V)}
}

func scaleState(s float64, a StateVector) StateVector {
	return StateVector{R: scale3(s, a.R), V: scale3(s, a.V)}
}
