package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		min.Z = math.Min(min.Z, point.Z)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
		max.Z = math.Max(max.Z, point.Z)
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB using the slab method.
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	ray.TMin, ray.TMax = tMin, tMax
	_, hit := aabb.HitInterval(ray)
	return hit
}

// HitInterval tests if a ray intersects this AABB and returns the entry
// distance along the ray. When the ray origin is inside the box, tEnter is
// the ray's tMin (the box is "entered" immediately).
func (aabb AABB) HitInterval(ray Ray) (tEnter float64, hit bool) {
	tMin, tMax := ray.TMin, ray.TMax

	lo := (aabb.Min.Subtract(ray.Origin)).MultiplyVec(ray.InvDirection)
	hi := (aabb.Max.Subtract(ray.Origin)).MultiplyVec(ray.InvDirection)

	for axis := 0; axis < 3; axis++ {
		t1, t2 := lo.Component(axis), hi.Component(axis)
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	min := Vec3{
		X: math.Min(aabb.Min.X, other.Min.X),
		Y: math.Min(aabb.Min.Y, other.Min.Y),
		Z: math.Min(aabb.Min.Z, other.Min.Z),
	}
	max := Vec3{
		X: math.Max(aabb.Max.X, other.Max.X),
		Y: math.Max(aabb.Max.Y, other.Max.Y),
		Z: math.Max(aabb.Max.Z, other.Max.Z),
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// MaxExtentAxis is an alias of LongestAxis: the axis the SAH binner spreads
// its bins across.
func (aabb AABB) MaxExtentAxis() int {
	return aabb.LongestAxis()
}

// Delta returns the extent of the box along the given axis.
func (aabb AABB) Delta(axis int) float64 {
	return aabb.Max.Component(axis) - aabb.Min.Component(axis)
}

// HalfSurfaceArea returns half the total surface area (sum of the three
// face areas rather than twice that). The SAH cost ratio only ever compares
// half-areas against each other, so the factor of two cancels; carrying it
// through anyway (as SurfaceArea does) just wastes a multiply on every bin.
func (aabb AABB) HalfSurfaceArea() float64 {
	size := aabb.Size()
	return size.X*size.Y + size.Y*size.Z + size.Z*size.X
}

// UnionPoint returns an AABB that bounds this AABB and a single point.
func (aabb AABB) UnionPoint(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(aabb.Min.X, p.X), math.Min(aabb.Min.Y, p.Y), math.Min(aabb.Min.Z, p.Z)},
		Max: Vec3{math.Max(aabb.Max.X, p.X), math.Max(aabb.Max.Y, p.Y), math.Max(aabb.Max.Z, p.Z)},
	}
}

// EmptyAABB returns an AABB with inverted bounds, a suitable identity element
// for repeated Union/UnionPoint calls.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
