package core

import "math"

// Ray represents a ray with an origin and direction, plus the precomputed
// fields the acceleration structures need on every traversal step. Preparing
// these once per ray (instead of per node, per primitive) is the same
// amortization the teacher's renderer relies on for its per-sample ray churn.
type Ray struct {
	Origin    Vec3
	Direction Vec3

	TMin float64
	TMax float64

	// InvDirection holds 1/Direction component-wise, with Direction's
	// components first nudged away from zero (see nudgeEpsilon): an exact
	// zero component would produce +/-Inf here, and an AABB face lying
	// exactly on the ray's origin plane would then turn the slab test's
	// (Min-Origin)*InvDirection into 0*Inf, a NaN that silently corrupts
	// every downstream tMin/tMax narrowing and stack-ordering compare.
	InvDirection Vec3

	// Shadow marks the ray as a visibility query. The trees read it only to
	// count the ray in their ShadowRayCount statistic; it does not change
	// which query runs.
	Shadow bool
}

// NewRay builds a prepared ray over [0, +Inf).
func NewRay(origin, direction Vec3) Ray {
	return prepare(origin, direction, 0, math.Inf(1), false)
}

// NewRayTo builds a ray from origin towards target, normalized.
func NewRayTo(origin, target Vec3) Ray {
	return NewRay(origin, target.Subtract(origin).Normalize())
}

// NewBoundedRay builds a ray restricted to the closed interval [tMin, tMax].
func NewBoundedRay(origin, direction Vec3, tMin, tMax float64) Ray {
	return prepare(origin, direction, tMin, tMax, false)
}

// NewShadowRay builds a bounded visibility-query ray.
func NewShadowRay(origin, direction Vec3, tMin, tMax float64) Ray {
	return prepare(origin, direction, tMin, tMax, true)
}

// nudgeEpsilon is the minimum magnitude a direction component may have
// before InvDirection is computed from it; a component smaller than this is
// pushed out to +/-nudgeEpsilon, sign preserved.
const nudgeEpsilon = 1e-5

func prepare(origin, direction Vec3, tMin, tMax float64, shadow bool) Ray {
	if math.IsNaN(direction.X) || math.IsNaN(direction.Y) || math.IsNaN(direction.Z) ||
		math.IsNaN(origin.X) || math.IsNaN(origin.Y) || math.IsNaN(origin.Z) {
		panic("core: ray with NaN component")
	}
	nx, ny, nz := nudge(direction.X), nudge(direction.Y), nudge(direction.Z)
	return Ray{
		Origin:       origin,
		Direction:    direction,
		TMin:         tMin,
		TMax:         tMax,
		InvDirection: Vec3{1 / nx, 1 / ny, 1 / nz},
		Shadow:       shadow,
	}
}

// nudge pushes c away from zero to +/-nudgeEpsilon if it is too close,
// preserving sign (a zero-valued c is treated as positive).
func nudge(c float64) float64 {
	if math.Abs(c) >= nudgeEpsilon {
		return c
	}
	if math.Signbit(c) {
		return -nudgeEpsilon
	}
	return nudgeEpsilon
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// MajorAxis returns the axis (0, 1 or 2) along which the ray direction has
// its largest magnitude component. The watertight triangle test shears the
// other two axes relative to this one.
func (r Ray) MajorAxis() int {
	return r.Direction.Abs().MaxAxis()
}
