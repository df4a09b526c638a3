package prim

import (
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Triangle is a flat, three-vertex primitive. Intersection uses the
// watertight algorithm of Woop, Benthin & Wald (2013): translate the
// vertices into the ray's frame, permute axes so the ray's dominant
// direction component becomes the new z, shear the other two axes to
// align the ray with +z, then test edge functions in that sheared space.
// Unlike a Moller-Trumbore test, this construction has no ray direction
// for which a triangle edge can leak a ray through by cancellation, which
// is the failure mode watertight traversal guarantees against.
type Triangle struct {
	V0, V1, V2    core.Vec3
	UV0, UV1, UV2 core.Vec2
	hasUVs        bool
	MatID         material.ID

	// MeshRef and FaceIndex identify the originating mesh and face for a
	// triangle that is part of a larger mesh, so a caller can map a hit
	// back to shared per-vertex mesh data (e.g. smooth-shading normals)
	// without this package needing to know about meshes at all.
	MeshRef   *Mesh
	FaceIndex int

	normal core.Vec3
	bbox   core.AABB
}

// Mesh is an opaque back-reference a Triangle can carry; this package
// never reads its fields, it only stores and returns the pointer.
type Mesh struct {
	Name string
}

// NewTriangle builds a triangle with a normal computed from vertex winding
// (V1-V0) x (V2-V0).
func NewTriangle(v0, v1, v2 core.Vec3, matID material.ID) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, MatID: matID}
	t.normal = v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)
	return t
}

// NewTriangleWithUVs builds a triangle carrying per-vertex texture coordinates.
func NewTriangleWithUVs(v0, v1, v2 core.Vec3, uv0, uv1, uv2 core.Vec2, matID material.ID) *Triangle {
	t := NewTriangle(v0, v1, v2, matID)
	t.UV0, t.UV1, t.UV2 = uv0, uv1, uv2
	t.hasUVs = true
	return t
}

func (t *Triangle) Bounds() core.AABB { return t.bbox }

// HasUV reports whether the triangle carries explicit per-vertex texture
// coordinates, as opposed to falling back to barycentric UV.
func (t *Triangle) HasUV() bool { return t.hasUVs }

// Normal returns the triangle's precomputed face normal.
func (t *Triangle) Normal() core.Vec3 { return t.normal }

func (t *Triangle) SurfaceArea() float64 {
	return 0.5 * t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length()
}

func (t *Triangle) ShapeKind() Kind          { return KindTriangle }
func (t *Triangle) MaterialID() material.ID  { return t.MatID }
func (t *Triangle) IntersectBounds(b core.AABB) bool {
	return boxesOverlap(t.bbox, b)
}

func boxesOverlap(a, b core.AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Intersect implements the watertight ray/triangle test.
func (t *Triangle) Intersect(ray core.Ray, hit *Hit) bool {
	kz := ray.MajorAxis()
	kx := kz + 1
	if kx == 3 {
		kx = 0
	}
	ky := kx + 1
	if ky == 3 {
		ky = 0
	}

	dz := ray.Direction.Component(kz)
	if dz < 0 {
		kx, ky = ky, kx
	}

	sx := ray.Direction.Component(kx) / dz
	sy := ray.Direction.Component(ky) / dz
	sz := 1.0 / dz

	a := t.V0.Subtract(ray.Origin)
	b := t.V1.Subtract(ray.Origin)
	c := t.V2.Subtract(ray.Origin)

	ax := a.Component(kx) - sx*a.Component(kz)
	ay := a.Component(ky) - sy*a.Component(kz)
	bx := b.Component(kx) - sx*b.Component(kz)
	by := b.Component(ky) - sy*b.Component(kz)
	cx := c.Component(kx) - sx*c.Component(kz)
	cy := c.Component(ky) - sy*c.Component(kz)

	u := cx*by - cy*bx
	v := ax*cy - ay*cx
	w := bx*ay - by*ax

	if (u < 0 || v < 0 || w < 0) && (u > 0 || v > 0 || w > 0) {
		return false
	}
	det := u + v + w
	if det == 0 {
		return false
	}

	az := sz * a.Component(kz)
	bz := sz * b.Component(kz)
	cz := sz * c.Component(kz)
	tScaled := u*az + v*bz + w*cz

	if det < 0 {
		if tScaled >= 0 || tScaled < ray.TMax*det {
			return false
		}
	} else {
		if tScaled <= 0 || tScaled > ray.TMax*det {
			return false
		}
	}

	rcpDet := 1.0 / det
	tHit := tScaled * rcpDet
	if tHit < ray.TMin {
		return false
	}

	b0, b1, b2 := u*rcpDet, v*rcpDet, w*rcpDet

	hit.T = tHit
	hit.Point = ray.At(tHit)
	hit.Material = t.MatID
	if t.hasUVs {
		hit.UV = core.Vec2{
			X: b0*t.UV0.X + b1*t.UV1.X + b2*t.UV2.X,
			Y: b0*t.UV0.Y + b1*t.UV1.Y + b2*t.UV2.Y,
		}
	} else {
		hit.UV = core.Vec2{X: b1, Y: b2}
	}
	hit.SetFaceNormal(ray, t.normal)
	return true
}
