package nbody

import "math"

// Class selects the Gauss-Radau ODE order (§6, GLOSSARY): 1 = first-order
// y'=f(y,t); 2 = second-order y''=f(y',y,t); -2 = second-order y''=f(y,t)
// (no velocity feedback into the force, e.g. pure gravity).
type Class int

const (
	ClassFirstOrder           Class = 1
	ClassSecondOrder          Class = 2
	ClassSecondOrderPositional Class = -2
)

// BSOptions carries the pointer-or-absent inputs of §6's
// bulirsch_full_jpl as explicit, zero-valued-means-absent fields.
type BSOptions struct {
	Jacobians    []Jacobian // nil means "do not propagate partials"
	Step         float64    // 0 means "use the package default"
	Encounters   *EncounterLog
	RadialAccel  *float64
	PerturberMask [11]bool
	MinorBodies  bool
	NumAsteroids int
	Asteroids    AsteroidPort
}

// GR15Options is the GR15 analogue of BSOptions.
type GR15Options struct {
	Jacobians     []Jacobian
	Step          float64
	Encounters    *EncounterLog
	RadialAccel   *float64
	PerturberMask [11]bool
	MinorBodies   bool
	NumAsteroids  int
	Asteroids     AsteroidPort
}

func (o BSOptions) forceInput() ForceInput {
	return ForceInput{
		PerturberMask: o.PerturberMask,
		MinorBodies:   o.MinorBodies,
		NumAsteroids:  o.NumAsteroids,
		Asteroids:     o.Asteroids,
		RadialAccel:   o.RadialAccel,
	}
}

func (o GR15Options) forceInput() ForceInput {
	return ForceInput{
		PerturberMask: o.PerturberMask,
		MinorBodies:   o.MinorBodies,
		NumAsteroids:  o.NumAsteroids,
		Asteroids:     o.Asteroids,
		RadialAccel:   o.RadialAccel,
	}
}

// DefaultPerturberMask enables every planet and the Moon (indices 1..10),
// for callers that want full N-body perturbations rather than the
// zero-valued "central body only" BSOptions/GR15Options default.
func DefaultPerturberMask() [11]bool {
	var m [11]bool
	for i := 1; i <= 10; i++ {
		m[i] = true
	}
	return m
}

// BulirschFullJPL propagates particles from t0 to t1 with the
// Bulirsch-Stoer driver, slicing the interval into whole steps of size
// opts.Step and a trailing remainder (§4.7, §6's bulirsch_full_jpl).
func BulirschFullJPL(cfg Config, t0, t1 float64, particles ParticleBatch, eph EphemerisPort, opts BSOptions) (ParticleBatch, *EncounterLog, error) {
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

	elog := opts.Encounters
	if elog == nil {
		elog = NewEncounterLog(len(particles.States))
	}
	in := opts.forceInput()

	batch := particles
	jac := opts.Jacobians

	stepFn := func(t, step float64) error {
		res, err := BSStep(cfg, eph, batch, jac, t, step, in, elog)
		if err != nil {
			return err
		}
		batch = ParticleBatch{States: res.States, Mass: particles.Mass}
		if jac != nil {
			jac = res.Jacs
		}
		return nil
	}

	if err := runTopLevel(cfg, t0, t1, h, stepFn, func(t, step float64, nsub int) error {
		states, jacs, err := MidpointStep(cfg, eph, batch, jac, t, step, nsub, in, elog)
		if err != nil {
			return err
		}
		batch = ParticleBatch{States: states, Mass: particles.Mass}
		if jac != nil {
			jac = jacs
		}
		return nil
	}); err != nil {
		return ParticleBatch{}, nil, err
	}

	return batch, elog, nil
}

// runTopLevel implements §4.7's interval slicing for BulirschFullJPL:
// `total` whole steps of size h, then either one more whole-integrator
// step over the remainder (if |rem| > 10*eps) or, for a non-zero
// remainder at or below 10*eps, a single ten-substep modified-midpoint
// finisher. A remainder of exactly zero runs neither.
func runTopLevel(cfg Config, t0, t1, h float64, step func(t, stepSize float64) error, finish func(t, stepSize float64, nsub int) error) error {
	if h == 0 {
		return newError(DomainError, "toplevel", "step size must be non-zero")
	}
	total := int(math.Floor(math.Abs(t1-t0) / math.Abs(h)))
	rem := (t1 - t0) - float64(total)*h
	if math.Abs(rem) > math.Abs(h) {
		return newError(DomainError, "toplevel", "remainder magnitude exceeds the step size")
	}

	t := t0
	for i := 0; i < total; i++ {
		if err := step(t, h); err != nil {
			return err
		}
		t += h
	}

	if math.Abs(rem) > rstepTol {
		if err := step(t, rem); err != nil {
			return err
		}
	} else if math.Abs(rem) > 0 {
		if err := finish(t, rem, 10); err != nil {
			return err
		}
	}
	return nil
}

// KeplerStepBatch is a convenience wrapper applying KeplerStep to every
// particle in a batch, for callers that want a pure two-body propagation
// without BS/GR15.
func KeplerStepBatch(cfg Config, dt float64, batch ParticleBatch) (ParticleBatch, error) {
	out := ParticleBatch{States: make([]StateVector, len(batch.States)), Mass: batch.Mass}
	for i, s := range batch.States {
		ns, err := KeplerStep(cfg, dt, s)
		if err != nil {
			return ParticleBatch{}, err
		}
		out.States[i] = ns
	}
	return out, nil
}
