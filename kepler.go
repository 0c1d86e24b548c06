package nbody

import "math"

// keplerBranch selects which Stumpff/G-function family solves the
// universal Kepler equation, chosen from the sign of beta (§4.6).
type keplerBranch int

const (
	branchElliptic keplerBranch = iota
	branchParabolic
	branchHyperbolic
)

const (
	newtonTolElliptic   = 1e-8
	newtonTolHyperbolic = 1e-8
	newtonMaxIter       = 10
	laguerreTol         = 1e-9
	laguerreMaxIter     = 20
	hyperbolicOverflowNewton   = 200
	hyperbolicOverflowLaguerre = 50
	// maxKeplerSplitDepth is the recursive step-splitting bound used when
	// cfg.MaxKeplerSplitDepth is unset (the Config zero value).
	maxKeplerSplitDepth = 30
)

// gFuncs holds one evaluation of the universal-variable Stumpff/G
// functions (§4.6).
type gFuncs struct {
	G0, G1, G2, G3 float64
}

// stumpff evaluates G0..G3 at universal anomaly x for the given branch,
// beta and b=sqrt(|beta|) (§4.6). G0 = dG1/dx = 1-beta*G2 is carried
// alongside G1..G3 since the Laguerre and Newton derivatives need it.
func stumpff(branch keplerBranch, beta, b, x float64) gFuncs {
	switch branch {
	case branchParabolic:
		g := gFuncs{G0: 1, G1: x, G2: x * x / 2, G3: x * x * x / 6}
		return g
	case branchHyperbolic:
		bb := -beta // |beta|
		half := b * x / 2
		sh, ch := math.Sinh(half), math.Cosh(half)
		g1 := 2 * sh * ch / b
		g2 := 2 * sh * sh / bb
		g3 := (x - g1) / bb
		return gFuncs{G0: 1 - beta*g2, G1: g1, G2: g2, G3: g3}
	default: // elliptic
		half := b * x / 2
		s, c := math.Sin(half), math.Cos(half)
		g1 := 2 * s * c / b
		g2 := 2 * s * s / beta
		g3 := (x - g1) / beta
		return gFuncs{G0: 1 - beta*g2, G1: g1, G2: g2, G3: g3}
	}
}

// keplerResidual evaluates f(x)=r0*x+eta*G2+zeta*G3-dt and its first two
// derivatives, used by the Newton and Laguerre iterates (§4.6).
func keplerResidual(r0, eta, zeta, dt float64, g gFuncs, x float64) (f, fp, fpp float64) {
	f = r0*x + eta*g.G2 + zeta*g.G3 - dt
	fp = r0 + eta*g.G1 + zeta*g.G2
	fpp = eta*g.G0 + zeta*g.G1
	return
}

// cubic1 returns one real root of a*x^3+b*x^2+c*x+d=0 (§4.6's seeding
// cubic and the parabolic branch's exact solve). When the discriminant
// indicates three real roots, the smallest positive one is returned, per
// §9's Open Question resolution of the source's unfinished
// three-real-roots handling; if none of the three is positive, the
// largest is returned.
func cubic1(a, b, c, d float64) float64 {
	if a == 0 {
		// degenerates to a quadratic (zeta==0 seeding path is handled by
		// the caller directly; this guards against a literally-zero a).
		if b == 0 {
			if c == 0 {
				return 0
			}
			return -d / c
		}
		disc := c*c - 4*b*d
		if disc < 0 {
			disc = 0
		}
		sq := math.Sqrt(disc)
		return (-c + sq) / (2 * b)
	}

	bb, cc, dd := b/a, c/a, d/a
	p := cc - bb*bb/3
	q := 2*bb*bb*bb/27 - bb*cc/3 + dd
	shift := bb / 3

	disc := q*q/4 + p*p*p/27
	if disc > 0 || p == 0 {
		sq := math.Sqrt(disc)
		u := math.Cbrt(-q/2 + sq)
		v := math.Cbrt(-q/2 - sq)
		return u + v - shift
	}

	// Three real roots: trigonometric (Viète) form, smallest positive root wins.
	r := math.Sqrt(-p * p * p / 27)
	phi := math.Acos(clamp(-q/(2*r), -1, 1))
	best := math.Inf(1)
	found := false
	for k := 0; k < 3; k++ {
		root := 2*math.Sqrt(-p/3)*math.Cos((phi+2*math.Pi*float64(k))/3) - shift
		if root > 0 && root < best {
			best, found = root, true
		}
	}
	if !found {
		// No positive root: return the largest (k=0) real root.
		return 2*math.Sqrt(-p/3)*math.Cos(phi/3) - shift
	}
	return best
}

// seedUniversalAnomaly computes x0 per branch (§4.6 step 1).
func seedUniversalAnomaly(branch keplerBranch, r0, eta, zeta, dt float64) float64 {
	switch branch {
	case branchHyperbolic:
		if zeta != 0 {
			return cubic1(zeta, 3*eta, 6*r0, -6*dt)
		}
		if eta != 0 {
			// 3*eta*x^2 + 6*r0*x - 6*dt = 0
			disc := r0*r0 + 2*eta*dt
			if disc < 0 {
				disc = 0
			}
			return (-r0 + math.Sqrt(disc)) / eta
		}
		return dt / r0
	case branchParabolic:
		return cubic1(zeta, 3*eta, 6*r0, -6*dt)
	default: // elliptic
		x0 := dt / r0
		g := cubic1(zeta, 3*eta, 6*r0, -6*dt)
		fx := zeta*g*g*g + 3*eta*g*g + 6*r0*g - 6*dt
		fpx := 3*zeta*g*g + 6*eta*g + 6*r0
		if fpx != 0 {
			x0 = g - fx/fpx
		} else {
			x0 = g
		}
		return x0
	}
}

// keplerFailure is the internal signal that every iterate family failed
// for this branch; it drives the recursive step-splitting wrapper.
type keplerFailure struct{ reason string }

func (k *keplerFailure) Error() string { return k.reason }

// solveUniversalAnomaly runs Newton, then Laguerre, then bisection in
// sequence (§4.6 step 2) and returns the converged x and its G-functions.
func solveUniversalAnomaly(branch keplerBranch, beta, zeta, eta, r0, b, dt float64) (float64, gFuncs, error) {
	if branch == branchParabolic {
		x := cubic1(zeta, 3*eta, 6*r0, -6*dt)
		return x, stumpff(branch, beta, b, x), nil
	}

	x0 := seedUniversalAnomaly(branch, r0, eta, zeta, dt)

	if branch == branchHyperbolic {
		if math.Abs(b*x0/2) > hyperbolicOverflowNewton {
			return 0, gFuncs{}, newError(DomainError, "kepler", "hyperbolic argument overflow in Newton seed")
		}
	}

	x, g, ok := newtonIterate(branch, beta, zeta, eta, r0, b, dt, x0)
	if ok {
		return x, g, nil
	}
	x, g, ok = laguerreIterate(branch, beta, zeta, eta, r0, b, dt, x0)
	if ok {
		return x, g, nil
	}
	x, g, ok = bisectionIterate(branch, beta, zeta, eta, r0, b, dt, x0)
	if ok {
		return x, g, nil
	}
	return 0, gFuncs{}, &keplerFailure{reason: "Newton, Laguerre and bisection all failed to converge"}
}

func newtonIterate(branch keplerBranch, beta, zeta, eta, r0, b, dt, x0 float64) (float64, gFuncs, bool) {
	x := x0
	for i := 0; i < newtonMaxIter; i++ {
		if branch == branchHyperbolic && math.Abs(b*x/2) > hyperbolicOverflowNewton {
			return 0, gFuncs{}, false
		}
		g := stumpff(branch, beta, b, x)
		f, fp, _ := keplerResidual(r0, eta, zeta, dt, g, x)
		if fp == 0 {
			return 0, gFuncs{}, false
		}
		dx := f / fp
		x -= dx
		rel := math.Abs(dx)
		if x != 0 {
			rel = math.Abs(dx / x)
		}
		if rel < newtonTolElliptic {
			return x, stumpff(branch, beta, b, x), true
		}
	}
	return 0, gFuncs{}, false
}

func laguerreIterate(branch keplerBranch, beta, zeta, eta, r0, b, dt, x0 float64) (float64, gFuncs, bool) {
	x := x0
	for i := 0; i < laguerreMaxIter; i++ {
		if branch == branchHyperbolic && math.Abs(b*x/2) > hyperbolicOverflowLaguerre {
			return 0, gFuncs{}, false
		}
		g := stumpff(branch, beta, b, x)
		f, fp, fpp := keplerResidual(r0, eta, zeta, dt, g, x)
		inner := 16*fp*fp - 20*f*fpp
		if inner < 0 {
			inner = 0
		}
		denom := fp + sign(fp)*math.Sqrt(inner)
		if denom == 0 {
			return 0, gFuncs{}, false
		}
		dx := -5 * f / denom
		x += dx
		rel := math.Abs(dx)
		if x != 0 {
			rel = math.Abs(dx / x)
		}
		if rel < laguerreTol {
			return x, stumpff(branch, beta, b, x), true
		}
	}
	return 0, gFuncs{}, false
}

func bisectionIterate(branch keplerBranch, beta, zeta, eta, r0, b, dt, x0 float64) (float64, gFuncs, bool) {
	var lo, hi float64
	switch branch {
	case branchElliptic:
		lo, hi = 0, 2*math.Pi/b
	default: // hyperbolic (parabolic never reaches here)
		lo, hi = 0.5*x0, 10*x0
		if lo > hi {
			lo, hi = hi, lo
		}
	}

	f := func(x float64) float64 {
		g := stumpff(branch, beta, b, x)
		v, _, _ := keplerResidual(r0, eta, zeta, dt, g, x)
		return v
	}
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, stumpff(branch, beta, b, lo), true
	}
	if fhi == 0 {
		return hi, stumpff(branch, beta, b, hi), true
	}
	if sign(flo) == sign(fhi) {
		return 0, gFuncs{}, false
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		fm := f(mid)
		if fm == 0 || (hi-lo) < 1e-13*math.Max(1, math.Abs(mid)) {
			return mid, stumpff(branch, beta, b, mid), true
		}
		if sign(fm) == sign(flo) {
			lo, flo = mid, fm
		} else {
			hi, fhi = mid, fm
		}
	}
	return 0.5 * (lo + hi), stumpff(branch, beta, b, 0.5*(lo+hi)), true
}

// keplerFlow maps (r,v) forward by the converged universal anomaly x via
// the f/g/fdot/gdot Lagrange coefficients of §4.6.
func keplerFlow(mu, r0 float64, g gFuncs, x float64, branch keplerBranch, beta, b, eta, zeta float64, s StateVector) StateVector {
	r := r0 + eta*g.G1 + zeta*g.G2
	fhat := -mu * g.G2 / r0
	ghat := eta*g.G2 + r0*g.G1
	ghatdot := -mu * g.G2 / r

	var fhatdot float64
	switch branch {
	case branchParabolic:
		bsa := mu * x / (r * r0)
		fhatdot = -bsa
	default:
		a := mu / math.Abs(beta)
		var bsa float64
		half := b * x / 2
		if branch == branchElliptic {
			bsa = (a / r) * (b / r0) * 2 * math.Sin(half) * math.Cos(half)
		} else {
			bsa = (a / r) * (b / r0) * 2 * math.Sinh(half) * math.Cosh(half)
		}
		fhatdot = -bsa
	}

	newR := add3(scale3(1+fhat, s.R), scale3(ghat, s.V))
	newV := add3(scale3(fhatdot, s.R), scale3(1+ghatdot, s.V))
	return StateVector{R: newR, V: newV}
}

// KeplerStep advances s by dt under the pure two-body problem about
// cfg.CentralBody (§4.6, §6's kepler_step entry point), recursively
// splitting into four equal sub-steps on iterate failure up to depth 30
// (§4.6's recursive step-splitting wrapper; depth exceedance is a
// terminal SolverNonConvergence error per §7).
func KeplerStep(cfg Config, dt float64, s StateVector) (StateVector, error) {
	return keplerStepDepth(cfg, dt, s, 0)
}

func keplerStepDepth(cfg Config, dt float64, s StateVector, depth int) (StateVector, error) {
	mu := PlanetaryMU(cfg.CentralBody)
	if mu <= 0 {
		return StateVector{}, newError(DomainError, "kepler", "central body has no gravitational parameter")
	}

	r0 := norm3(s.R)
	v2 := dot3(s.V, s.V)
	eta := dot3(s.R, s.V)
	beta := 2*mu/r0 - v2
	zeta := mu - beta*r0

	var branch keplerBranch
	var b float64
	switch {
	case beta > 0:
		branch = branchElliptic
		b = math.Sqrt(beta)
	case beta < 0:
		branch = branchHyperbolic
		b = math.Sqrt(-beta)
	default:
		branch = branchParabolic
	}

	x, g, err := solveUniversalAnomaly(branch, beta, zeta, eta, r0, b, dt)
	if err == nil {
		return keplerFlow(mu, r0, g, x, branch, beta, b, eta, zeta, s), nil
	}

	limit := cfg.MaxKeplerSplitDepth
	if limit <= 0 {
		limit = maxKeplerSplitDepth
	}
	if depth >= limit {
		return StateVector{}, wrapError(SolverNonConvergence, "kepler", "recursive step-splitting exceeded maximum depth", err)
	}
	logDebug(cfg.logger(), "subsys", "kepler", "status", "splitting", "depth", depth, "dt", dt)

	sub := dt / 4
	cur := s
	for i := 0; i < 4; i++ {
		next, serr := keplerStepDepth(cfg, sub, cur, depth+1)
		if serr != nil {
			return StateVector{}, serr
		}
		cur = next
	}
	return cur, nil
}
