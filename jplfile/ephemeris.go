// Package jplfile adapts github.com/mshafiee/jpleph's binary JPL DE
// ephemeris reader to the nbody.EphemerisPort contract, so a driver can be
// pointed at a real kernel (de405.bin, de430.bin, ...) instead of the
// dependency-free nbody.StaticEphemeris used in tests.
package jplfile

import (
	"github.com/mshafiee/jpleph"

	"github.com/stellarmech/nbody"
)

// mjdToJDOffset converts a Modified Julian Date to the Julian Ephemeris
// Date CalculatePV expects; 2400000.5 is the fixed JD-at-MJD-epoch offset.
const mjdToJDOffset = 2400000.5

// jplTarget maps a catalogue nbody.BodyID (1..10) to jpleph's Planet enum.
// Index 0 is unused.
var jplTarget = [11]jpleph.Planet{
	0,
	jpleph.Mercury, jpleph.Venus, jpleph.Earth, jpleph.Mars, jpleph.Jupiter,
	jpleph.Saturn, jpleph.Uranus, jpleph.Neptune, jpleph.Pluto, jpleph.Moon,
}

// Ephemeris wraps an open jpleph.Ephemeris as an nbody.EphemerisPort,
// always relative to the Sun, matching the heliocentric convention §3
// fixes throughout this package.
type Ephemeris struct {
	raw *jpleph.Ephemeris
}

// Open reads the binary kernel at path and returns a ready-to-use
// Ephemeris. The caller owns the returned value's lifetime and must call
// Close when done.
func Open(path string) (*Ephemeris, error) {
	raw, err := jpleph.NewEphemeris(path, true)
	if err != nil {
		return nil, err
	}
	return &Ephemeris{raw: raw}, nil
}

// Close releases the underlying kernel file.
func (e *Ephemeris) Close() error {
	return e.raw.Close()
}

// Ephemeris implements nbody.EphemerisPort.Ephemeris by calling
// CalculatePV once per catalogue body, Sun-centred.
func (e *Ephemeris) Ephemeris(t float64, withVelocity bool) ([10]nbody.PlanetaryState, error) {
	var out [10]nbody.PlanetaryState
	et := t + mjdToJDOffset
	for i := 1; i <= 10; i++ {
		pos, vel, err := e.raw.CalculatePV(et, jplTarget[i], jpleph.CenterSun, withVelocity)
		if err != nil {
			return out, err
		}
		out[i-1] = nbody.PlanetaryState{
			R: [3]float64{pos.X, pos.Y, pos.Z},
		}
		if withVelocity {
			out[i-1].V = [3]float64{vel.DX, vel.DY, vel.DZ}
		}
	}
	return out, nil
}

// PlanetaryMU, PlanetaryRadius, and PlanetaryMass defer to the package's
// fixed catalogue rather than the kernel's own GM constants: the kernel's
// loaded constants vary by DE release and naming convention, while the
// catalogue is a single internally consistent set calibrated against
// GaussK (see bodies.go).
func (e *Ephemeris) PlanetaryMU(b nbody.BodyID) float64     { return nbody.PlanetaryMU(b) }
func (e *Ephemeris) PlanetaryRadius(b nbody.BodyID) float64 { return nbody.PlanetaryRadius(b) }
func (e *Ephemeris) PlanetaryMass(b nbody.BodyID) float64   { return nbody.PlanetaryMass(b) }
