package nbody

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const deg2rad = math.Pi / 180

// norm3 returns the Euclidean norm of a 3-vector.
func norm3(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// sub3 returns a - b.
func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// add3 returns a + b.
func add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// scale3 returns s*a.
func scale3(s float64, a [3]float64) [3]float64 {
	return [3]float64{s * a[0], s * a[1], s * a[2]}
}

// dot3 performs the inner product of two 3-vectors.
func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// cross3 performs the cross product a x b.
func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// unit3 returns the unit vector of a, or the zero vector if a is (numerically) zero.
func unit3(a [3]float64) [3]float64 {
	n := norm3(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return [3]float64{0, 0, 0}
	}
	return scale3(1/n, a)
}

// sign returns the sign of v, with any v within 1e-12 of zero (0 included)
// mapped to 1 so that 0/|0| never propagates a NaN through a branch decision.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// Deg2rad converts degrees to radians, enforcing a positive result.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, enforcing a positive result.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// vectorsEqual reports whether two float64 slices are element-wise equal
// within absolute tolerance tol. Test helper, mirrors the teacher's
// math_test.go helper of the same name.
func vectorsEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalar.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
