package nbody

// PlanetaryState is the position/velocity of one catalogue body relative
// to the central body, in AU and AU/day.
type PlanetaryState struct {
	R [3]float64
	V [3]float64
}

// EphemerisPort is the external collaborator the force model queries for
// planetary perturber positions (§2, §6). Implementations are free to be
// backed by a binary JPL kernel (see the jplfile package), an analytic
// theory, or, for tests, a fixed table — the force model only needs the
// interface below.
type EphemerisPort interface {
	// Ephemeris returns the state of the 10 catalogue perturbers (Mercury
	// through Moon, BodyID 1..10) at epoch t (MJD), relative to the
	// central body. withVelocity controls whether V is populated;
	// callers that only need positions (e.g. class=-2 GR15 steps) can
	// ask implementations to skip the more expensive velocity term.
	Ephemeris(t float64, withVelocity bool) ([10]PlanetaryState, error)

	// PlanetaryMU returns μ=G·M for catalogue body b, 1..11 (Sun included).
	PlanetaryMU(b BodyID) float64
	// PlanetaryRadius returns the mean physical radius of body b, in AU.
	PlanetaryRadius(b BodyID) float64
	// PlanetaryMass returns the mass of body b as a fraction of the solar mass.
	PlanetaryMass(b BodyID) float64
}

// AsteroidPort is the external collaborator supplying minor-body
// perturbers (§6, minor_body_ephemeris/minor_body_masses). A nil AsteroidPort
// is equivalent to zero minor-body perturbers.
type AsteroidPort interface {
	// MinorBodyEphemeris returns the heliocentric positions of the first n
	// minor-body perturbers at epoch t.
	MinorBodyEphemeris(t float64, n int) ([][3]float64, error)
	// MinorBodyMasses returns the masses, in solar masses, of the first n
	// minor-body perturbers; ForceModel multiplies them by G.
	MinorBodyMasses(n int) ([]float64, error)
}

// staticElement is one catalogue body's osculating element set at the
// reference epoch t=0 (MJD), used by StaticEphemeris.
type staticElement struct {
	body BodyID
	el   KeplerElements
	// r0, v0 cache the state at t=0 so repeated queries at the same t
	// don't re-derive it from the elements.
	r0, v0 [3]float64
}

// StaticEphemeris is a dependency-free EphemerisPort, built entirely on
// this package's own KeplerElements.RV and KeplerStep, for use in tests
// and examples that cannot ship a multi-megabyte binary kernel. It is not
// a substitute for a real ephemeris: its mean elements carry no secular
// rates, so positions drift from the true planetary positions by years'
// end; it exists purely so the rest of the engine can be exercised without
// an external file. jplfile.Ephemeris is the production-grade counterpart.
type StaticEphemeris struct {
	bodies [11]staticElement // indexed 0..9 by BodyID-1 (index 10 unused); Moon approximated as Earth's heliocentric orbit
	cfg    Config
}

// approxElementsJ2000 are low-precision mean orbital elements at epoch
// J2000 (MJD 51544.5), in the form (a AU, e, i deg, L deg, varpi deg,
// Omega deg) as tabulated for approximate planetary positions; converted
// here into KeplerElements (radians, mean anomaly) for RV().
func approxElementsJ2000() [10]KeplerElements {
	type raw struct {
		a, e, iDeg, lDeg, varpiDeg, omegaDeg float64
	}
	table := [10]raw{
		{0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593},
		{0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255},
		{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0},
		{1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891},
		{5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909},
		{9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448},
		{19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503},
		{30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574},
		{39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684},
		{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0}, // Moon: see StaticEphemeris doc
	}

	var out [10]KeplerElements
	for i, t := range table {
		argp := Deg2rad(t.varpiDeg - t.omegaDeg)
		m := Deg2rad(t.lDeg - t.varpiDeg)
		out[i] = KeplerElements{
			Sma:         t.a,
			Ecc:         t.e,
			Inc:         Deg2rad(t.iDeg),
			RAAN:        Deg2rad(t.omegaDeg),
			ArgPeri:     argp,
			MeanAnomaly: m,
			Mu:          G, // heliocentric
		}
	}
	return out
}

// NewStaticEphemeris builds the dependency-free test ephemeris described
// on StaticEphemeris.
func NewStaticEphemeris() *StaticEphemeris {
	se := &StaticEphemeris{cfg: Config{CentralBody: Sun, Relativity: false}}
	elems := approxElementsJ2000()
	for i := 0; i < 10; i++ {
		b := BodyID(i + 1)
		r0, v0 := elems[i].RV()
		se.bodies[i] = staticElement{body: b, el: elems[i], r0: r0, v0: v0}
	}
	return se
}

// Ephemeris implements EphemerisPort by propagating each body's tabulated
// state, taken as its state at t=0, forward by t days with this package's
// own universal Kepler solver.
func (se *StaticEphemeris) Ephemeris(t float64, withVelocity bool) ([10]PlanetaryState, error) {
	var out [10]PlanetaryState
	for i := 0; i < 10; i++ {
		be := se.bodies[i]
		s0 := StateVector{R: be.r0, V: be.v0}
		s1, err := KeplerStep(se.cfg, t, s0)
		if err != nil {
			return out, wrapError(EphemerisFailure, "staticephemeris", be.body.String(), err)
		}
		out[i] = PlanetaryState{R: s1.R}
		if withVelocity {
			out[i].V = s1.V
		}
	}
	return out, nil
}

func (se *StaticEphemeris) PlanetaryMU(b BodyID) float64     { return PlanetaryMU(b) }
func (se *StaticEphemeris) PlanetaryRadius(b BodyID) float64 { return PlanetaryRadius(b) }
func (se *StaticEphemeris) PlanetaryMass(b BodyID) float64   { return PlanetaryMass(b) }
