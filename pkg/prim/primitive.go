// Package prim implements the geometric primitives the acceleration
// structures operate on: a closed, tagged-variant set (Triangle, Line,
// Quad, Disc, Sphere) rather than an open interface hierarchy, so the wide
// BVH's leaf packer can classify primitives by concrete type and SIMD-pack
// triangles and lines.
package prim

import (
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Kind tags which concrete primitive a Primitive value holds.
type Kind uint8

const (
	KindTriangle Kind = iota
	KindLine
	KindQuad
	KindDisc
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindTriangle:
		return "triangle"
	case KindLine:
		return "line"
	case KindQuad:
		return "quad"
	case KindDisc:
		return "disc"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Hit records everything a successful intersection reports back: the
// parametric distance, the world-space point and shading normal, and
// (optionally) texture coordinates. The acceleration structures never read
// Point/Normal/UV themselves — they exist purely for the caller the hit is
// returned to, matching spec's C1 contract of an opaque hit_inout.
type Hit struct {
	T        float64
	Point    core.Vec3
	Normal   core.Vec3
	UV       core.Vec2
	Material material.ID

	// FrontFace reports whether the ray approached the primitive's
	// outward-facing side.
	FrontFace bool
}

// SetFaceNormal orients Normal so it opposes the incoming ray direction
// and records which side of the surface the ray approached from.
func (h *Hit) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Primitive is the contract every geometric primitive in this module
// implements: nearest-hit intersection against a ray, a conservative
// primitive/AABB overlap test, a tight bounding box, and a surface area
// (not used by the SAH build, which works from BuildPrimitive's bounding
// boxes).
type Primitive interface {
	// Intersect tests the primitive against ray; reports whether a hit
	// within the ray's [TMin, TMax] interval was found, and if so fills hit.
	Intersect(ray core.Ray, hit *Hit) bool

	// IntersectBounds reports whether the primitive can possibly overlap
	// box. Every primitive answers it by testing its own bounding box
	// against box, so it may report overlap where the shape itself does
	// not reach box, but never the reverse. The trees do not call it.
	IntersectBounds(box core.AABB) bool

	// Bounds returns the primitive's axis-aligned bounding box.
	Bounds() core.AABB

	// SurfaceArea returns the primitive's own surface area in world units.
	SurfaceArea() float64

	// ShapeKind reports which concrete type implements Primitive.
	ShapeKind() Kind

	// MaterialID returns the opaque material identifier the bounded
	// multi-hit query filters on.
	MaterialID() material.ID
}
