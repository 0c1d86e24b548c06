package nbody

import "math"

// ForceInput bundles the inputs to ForceModel that stay constant across
// the substeps of a single midpoint call (§4.1). PerturberMask is indexed
// by BodyID, 1..10 (Moon); index 0 is unused and the Sun has no slot, since it is
// always the central-body term and Moon/planet selection is the only
// masked choice the source exposes.
type ForceInput struct {
	Epoch         float64
	SubstepSize   float64
	PerturberMask [11]bool
	MinorBodies   bool
	NumAsteroids  int
	Asteroids     AsteroidPort
	RadialAccel   *float64
	WithPartials  bool
}

// ForceModel evaluates the time derivative (and, on demand, the 6x6
// Jacobian) of every body in batch at t, against the perturbers selected
// by in, and records per-body encounter observations into elog (§4.1).
//
// The returned derivative slice is StateVector-shaped: component R holds
// the velocity contribution (dr/dt = v) and component V holds the
// acceleration a_i.
func ForceModel(cfg Config, eph EphemerisPort, batch ParticleBatch, in ForceInput, elog *EncounterLog) ([]StateVector, []Jacobian, error) {
	if in.RadialAccel != nil && !isFinite(*in.RadialAccel) {
		return nil, nil, newError(DomainError, "forcemodel", "radial_acceleration is not finite")
	}
	if in.Asteroids == nil {
		in.MinorBodies = false
	}

	muCentral := eph.PlanetaryMU(cfg.CentralBody)
	if cfg.Relativity && cfg.CentralBody != Sun {
		return nil, nil, newError(DomainError, "forcemodel", "relativity requested with a non-Sun central body")
	}

	planets, err := eph.Ephemeris(in.Epoch, false)
	if err != nil {
		return nil, nil, wrapError(EphemerisFailure, "forcemodel", "ephemeris lookup failed", err)
	}

	var asteroidPos [][3]float64
	var asteroidMu []float64
	if in.MinorBodies && in.NumAsteroids > 0 {
		asteroidMu, err = in.Asteroids.MinorBodyMasses(in.NumAsteroids)
		if err != nil {
			return nil, nil, wrapError(EphemerisFailure, "forcemodel", "minor-body masses failed", err)
		}
		asteroidPos, err = in.Asteroids.MinorBodyEphemeris(in.Epoch, in.NumAsteroids)
		if err != nil {
			return nil, nil, wrapError(EphemerisFailure, "forcemodel", "minor-body ephemeris failed", err)
		}
		for i := range asteroidMu {
			asteroidMu[i] *= G
		}
	}

	n := len(batch.States)
	derivs := make([]StateVector, n)
	var jacs []Jacobian
	if in.WithPartials {
		jacs = make([]Jacobian, n)
	}

	for i := 0; i < n; i++ {
		s := batch.States[i]
		massless := i < batch.NumMassless()

		a := scale3(-muCentral/cube(norm3(s.R)), s.R)
		var jac Jacobian
		if in.WithPartials {
			jac.Rv = identity3()
			jac.Vr = centralJacobianBlock(muCentral, s.R)
		}

		for pb := 1; pb <= 10; pb++ {
			bid := BodyID(pb)
			if !in.PerturberMask[pb] {
				continue
			}
			pstate := planets[pb-1]
			mu := G * eph.PlanetaryMass(bid)
			delta := sub3(pstate.R, s.R)
			dist := norm3(delta)
			a = add3(a, perturberTerm(mu, delta, pstate.R))
			if in.WithPartials {
				jac.Vr = addBlock(jac.Vr, tidalBlock(mu, delta))
			}
			recordPlanetEncounter(elog, i, bid, in.Epoch, dist, eph.PlanetaryRadius(bid), in.SubstepSize)
		}
		recordSunEncounter(elog, i, in.Epoch, norm3(s.R), in.SubstepSize)

		for k := range asteroidPos {
			delta := sub3(asteroidPos[k], s.R)
			a = add3(a, perturberTerm(asteroidMu[k], delta, asteroidPos[k]))
			if in.WithPartials {
				jac.Vr = addBlock(jac.Vr, tidalBlock(asteroidMu[k], delta))
			}
		}

		if massless {
			for k := 0; k < n; k++ {
				if k == i {
					continue
				}
				addIdx, isAdd := batch.additionalIndex(k)
				if !isAdd {
					continue
				}
				mu := batch.Mass[addIdx]
				other := batch.States[k]
				delta := sub3(other.R, s.R)
				a = add3(a, perturberTerm(mu, delta, other.R))
				if in.WithPartials {
					jac.Vr = addBlock(jac.Vr, tidalBlock(mu, delta))
				}
			}
		}

		if cfg.Relativity && cfg.CentralBody == Sun {
			a = add3(a, relativisticAcceleration(s.R, s.V))
			if in.WithPartials {
				dr, dv := relativisticJacobian(s.R, s.V)
				jac.Vr = addBlock(jac.Vr, dr)
				jac.Vv = addBlock(jac.Vv, dv)
			}
		}

		if in.RadialAccel != nil && massless {
			a = add3(a, scale3(*in.RadialAccel, unit3(s.R)))
			// The radial term's Jacobian contribution is omitted: it is a
			// caller-supplied scalar acceleration along the instantaneous
			// radial direction, not a function of state the way gravity is,
			// so its partials vanish to the order this model tracks.
		}

		derivs[i] = StateVector{R: s.V, V: a}
		if !isFiniteVec(a) {
			logError(cfg.logger(), "subsys", "forcemodel", "particle", i, "epoch", in.Epoch, "status", "non-finite acceleration")
			return nil, nil, newError(DomainError, "forcemodel", "non-finite acceleration")
		}
		if in.WithPartials {
			jacs[i] = jac
		}
	}

	return derivs, jacs, nil
}

// perturberTerm is the common Newtonian perturbation shape of §4.1:
// G*m * ((r_j - r_i)/|r_j - r_i|^3 - r_j/|r_j|^3).
func perturberTerm(mu float64, delta, rj [3]float64) [3]float64 {
	rjNorm := norm3(rj)
	term := sub3(scale3(1/cube(norm3(delta)), delta), scale3(1/cube(rjNorm), rj))
	return scale3(mu, term)
}

// tidalBlock is the symmetric tidal-matrix contribution
// mu * (3*ΔΔ'/|Δ|^5 - I/|Δ|^3) of a single perturber to ∂a/∂r (§4.1).
func tidalBlock(mu float64, delta [3]float64) [3][3]float64 {
	d := norm3(delta)
	d3, d5 := cube(d), cube(d)*d*d
	var block [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var kronecker float64
			if r == c {
				kronecker = 1
			}
			block[r][c] = mu * (3*delta[r]*delta[c]/d5 - kronecker/d3)
		}
	}
	return block
}

// centralJacobianBlock is the central-body tidal contribution
// mu_c*(3*r r'/|r|^5 - I/|r|^3), the same shape as tidalBlock but against
// -r_i instead of a perturber displacement (the sign cancels: the central
// term in the acceleration is -mu_c*r/|r|^3, and its Jacobian is the
// negative-gradient of that, which is +tidalBlock(mu_c, r)).
func centralJacobianBlock(muCentral float64, r [3]float64) [3][3]float64 {
	return tidalBlock(muCentral, r)
}

func addBlock(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = a[r][c] + b[r][c]
		}
	}
	return out
}

func identity3() [3][3]float64 {
	var m [3][3]float64
	m[0][0], m[1][1], m[2][2] = 1, 1, 1
	return m
}

func cube(x float64) float64 { return x * x * x }

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func isFiniteVec(v [3]float64) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}

// recordPlanetEncounter writes the (particle, body) distance observation
// for a masked-in planetary perturber, categorising it as an impact
// (category 1) when the distance is below the body's collision radius,
// else a non-impacting approach (category 2), per §4.1.
func recordPlanetEncounter(elog *EncounterLog, particle int, body BodyID, mjd, dist, radius, substep float64) {
	if elog == nil {
		return
	}
	cat := CategoryApproach
	if dist < radius {
		cat = CategoryImpact
	}
	elog.Observe(particle, body, EncounterRecord{MJD: mjd, Category: cat, Distance: dist, Substep: substep})
}

// recordSunEncounter always writes the Sun (body 11) record regardless of
// mask, per §4.1: "A record for the Sun is emitted at index 11 regardless
// of mask." Sun sits at the frame origin in the heliocentric convention,
// so the distance is simply |r_i|.
func recordSunEncounter(elog *EncounterLog, particle int, mjd, dist, substep float64) {
	if elog == nil {
		return
	}
	cat := CategoryApproach
	if dist < PlanetaryRadius(Sun) {
		cat = CategoryImpact
	}
	elog.Observe(particle, Sun, EncounterRecord{MJD: mjd, Category: cat, Distance: dist, Substep: substep})
}
