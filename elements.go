package nbody

import "math"

// KeplerElements holds a classical osculating element set. Sma is in AU,
// the angles in radians. Grounded on the teacher's orbit.go Orbit type,
// trimmed to the fields an RV conversion actually needs and re-expressed
// over [3]float64 instead of mat64.Dense.
type KeplerElements struct {
	Sma          float64 // semi-major axis, AU (negative for hyperbolic orbits)
	Ecc          float64
	Inc          float64 // inclination, rad
	RAAN         float64 // longitude of ascending node, rad
	ArgPeri      float64 // argument of periapsis, rad
	MeanAnomaly  float64 // rad, at the element epoch
	Mu           float64 // gravitational parameter of the focus, AU^3/day^2
}

// SemiParameter returns p = a(1-e^2), the semi-latus rectum.
func (k KeplerElements) SemiParameter() float64 {
	return k.Sma * (1 - k.Ecc*k.Ecc)
}

// Period returns the orbital period in days, meaningful only when Ecc < 1.
func (k KeplerElements) Period() float64 {
	return 2 * math.Pi * math.Sqrt(k.Sma*k.Sma*k.Sma/k.Mu)
}

// eccentricAnomaly solves Kepler's equation M = E - e*sin(E) for E by
// Newton iteration, mirroring the teacher's orbit.go anomaly solver.
func eccentricAnomaly(m, e float64) float64 {
	E := m
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 50; i++ {
		f := E - e*math.Sin(E) - m
		fp := 1 - e*math.Cos(E)
		dE := f / fp
		E -= dE
		if math.Abs(dE) < 1e-13 {
			break
		}
	}
	return E
}

// RV converts the element set to a Cartesian state in the parent frame,
// via the perifocal (PQW) frame and the 3-1-3 rotation R3(-RAAN)*R1(-Inc)*R3(-ArgPeri),
// grounded on the teacher's src/dynamics/rotation.go PQW2ECI.
func (k KeplerElements) RV() (r, v [3]float64) {
	E := eccentricAnomaly(k.MeanAnomaly, k.Ecc)
	cosE, sinE := math.Cos(E), math.Sin(E)

	// Position and velocity in the perifocal frame (P along periapsis, Q at +90 deg).
	rp := [3]float64{k.Sma * (cosE - k.Ecc), k.Sma * math.Sqrt(1-k.Ecc*k.Ecc) * sinE, 0}
	n := math.Sqrt(k.Mu / (k.Sma * k.Sma * k.Sma))
	vp := [3]float64{
		-k.Sma * n * sinE / (1 - k.Ecc*cosE),
		k.Sma * n * math.Sqrt(1-k.Ecc*k.Ecc) * cosE / (1 - k.Ecc*cosE),
		0,
	}

	r = pqw2eci(k.Inc, k.ArgPeri, k.RAAN, rp)
	v = pqw2eci(k.Inc, k.ArgPeri, k.RAAN, vp)
	return r, v
}

// pqw2eci rotates a perifocal-frame vector into the parent equatorial
// frame by R3(-RAAN) * R1(-inc) * R3(-argp), applied directly to the
// vector components rather than through an intermediate matrix type.
func pqw2eci(inc, argp, raan float64, vPQW [3]float64) [3]float64 {
	ci, si := math.Cos(inc), math.Sin(inc)
	co, so := math.Cos(argp), math.Sin(argp)
	cn, sn := math.Cos(raan), math.Sin(raan)

	r11 := cn*co - sn*so*ci
	r12 := -cn*so - sn*co*ci
	r21 := sn*co + cn*so*ci
	r22 := -sn*so + cn*co*ci
	r31 := so * si
	r32 := co * si

	return [3]float64{
		r11*vPQW[0] + r12*vPQW[1],
		r21*vPQW[0] + r22*vPQW[1],
		r31*vPQW[0] + r32*vPQW[1],
	}
}

// NewElementsFromRV derives an osculating element set from a Cartesian
// state, the inverse of RV, mirroring the teacher's NewOrbitFromRV. Used
// by the element round-trip tests.
func NewElementsFromRV(r, v [3]float64, mu float64) KeplerElements {
	rMag := norm3(r)
	vMag := norm3(v)

	h := cross3(r, v)
	hMag := norm3(h)

	nVec := [3]float64{-h[1], h[0], 0}
	nMag := norm3(nVec)

	energy := vMag*vMag/2 - mu/rMag
	sma := -mu / (2 * energy)

	eVec := sub3(scale3(1/mu, cross3(v, h)), unit3(r))
	ecc := norm3(eVec)

	inc := math.Acos(clamp(h[2]/hMag, -1, 1))

	var raan float64
	if nMag > 1e-12 {
		raan = math.Acos(clamp(nVec[0]/nMag, -1, 1))
		if nVec[1] < 0 {
			raan = 2*math.Pi - raan
		}
	}

	var argp float64
	if nMag > 1e-12 && ecc > 1e-12 {
		argp = math.Acos(clamp(dot3(nVec, eVec)/(nMag*ecc), -1, 1))
		if eVec[2] < 0 {
			argp = 2*math.Pi - argp
		}
	}

	var nu float64
	if ecc > 1e-12 {
		nu = math.Acos(clamp(dot3(eVec, r)/(ecc*rMag), -1, 1))
		if dot3(r, v) < 0 {
			nu = 2*math.Pi - nu
		}
	}

	E := 2 * math.Atan2(math.Sqrt(1-ecc)*math.Sin(nu/2), math.Sqrt(1+ecc)*math.Cos(nu/2))
	m := E - ecc*math.Sin(E)
	if m < 0 {
		m += 2 * math.Pi
	}

	return KeplerElements{Sma: sma, Ecc: ecc, Inc: inc, RAAN: raan, ArgPeri: argp, MeanAnomaly: m, Mu: mu}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
