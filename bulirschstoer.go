package nbody

// BSStepResult is one coarse Bulirsch-Stoer step's per-particle output
// (§4.4): the extrapolated state (and Jacobian, when carried), plus which
// particles never converged by the last row of the doubling sequence.
type BSStepResult struct {
	States      []StateVector
	Jacs        []Jacobian
	Unconverged []bool
}

// bsVariant is the extrapolation flavour the BS driver feeds; the default
// is Polynomial per §9's Open Questions.
var bsVariant = Polynomial

// BSStep runs one Bulirsch-Stoer coarse step of size h over batch,
// driving the modified-midpoint stepper across the doubling sequence of
// §3 and feeding each row into per-component extrapolation tables until
// every particle converges (§4.4). A particle that never converges by the
// last row of subStepSequence is read from that row and flagged
// unconverged without an error (per §4.4, a downstream caller decides what
// to do with an unconverged particle); only when no particle in a
// non-empty batch converged does the driver also return a
// SolverNonConvergence error alongside the result.
func BSStep(cfg Config, eph EphemerisPort, batch ParticleBatch, jac0 []Jacobian, t, h float64, in ForceInput, elog *EncounterLog) (BSStepResult, error) {
	nb := len(batch.States)
	withJac := jac0 != nil

	stateTable := NewExtrapolationTable(nb, 6, bsVariant)
	var jacTable *ExtrapolationTable
	if withJac {
		jacTable = NewExtrapolationTable(nb, 36, bsVariant)
	}

	var lastStates []StateVector
	var lastJacs []Jacobian

	for row, nsub := range subStepSequence {
		states, jacs, err := MidpointStep(cfg, eph, batch, jac0, t, h, nsub, in, elog)
		if err != nil {
			return BSStepResult{}, err
		}
		lastStates, lastJacs = states, jacs

		dt := h / float64(nsub)
		extrapolateStates(stateTable, row+1, dt*dt, states)
		stateDone := stateTable.AllConverged()
		jacDone := true
		if withJac {
			extrapolateJacobians(jacTable, row+1, dt*dt, jacs)
			jacDone = jacTable.AllConverged()
		}
		if stateDone && jacDone {
			break
		}
	}

	out := BSStepResult{
		States:      make([]StateVector, nb),
		Unconverged: make([]bool, nb),
	}
	if withJac {
		out.Jacs = make([]Jacobian, nb)
	}
	for i := 0; i < nb; i++ {
		converged, _ := stateTable.Converged(i)
		jacConverged := true
		if withJac {
			jacConverged, _ = jacTable.Converged(i)
		}
		out.Unconverged[i] = !converged || (withJac && !jacConverged)
		out.States[i] = stateExtrapolate(stateTable, i)
		if withJac {
			out.Jacs[i] = jacobianExtrapolate(jacTable, i)
		}
	}
	for i, u := range out.Unconverged {
		if u {
			logWarn(cfg.logger(), "subsys", "bulirschstoer", "particle", i, "status", "unconverged", "t", t, "h", h)
		}
	}
	if allTrue(out.Unconverged) && nb > 0 {
		return out, newError(SolverNonConvergence, "bulirschstoer", "no particle converged at the last row")
	}
	// lastStates/lastJacs intentionally unused beyond the loop: the
	// extrapolated estimate, not the raw last-row midpoint result, is the
	// driver's output per §4.4.
	_ = lastStates
	_ = lastJacs
	return out, nil
}

func allTrue(v []bool) bool {
	for _, b := range v {
		if !b {
			return false
		}
	}
	return true
}
