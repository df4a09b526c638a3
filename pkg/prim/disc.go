package prim

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Disc is a flat circular primitive defined by a center, normal and radius.
type Disc struct {
	Center core.Vec3
	Normal core.Vec3
	Radius float64
	MatID  material.ID

	right, up core.Vec3 // orthonormal in-plane frame, for UV and bounds
	bbox      core.AABB
}

// NewDisc builds a disc, deriving an arbitrary orthonormal in-plane frame
// from Normal (seeded with the world Y axis when |Normal.X| > 0.1 and the
// world X axis otherwise, same tie-break the teacher's Disc uses).
func NewDisc(center, normal core.Vec3, radius float64, matID material.ID) *Disc {
	n := normal.Normalize()
	var reference core.Vec3
	if math.Abs(n.X) > 0.1 {
		reference = core.NewVec3(0, 1, 0)
	} else {
		reference = core.NewVec3(1, 0, 0)
	}
	right := reference.Cross(n).Normalize()
	up := n.Cross(right)

	d := &Disc{Center: center, Normal: n, Radius: radius, MatID: matID, right: right, up: up}
	d.bbox = computeDiscBounds(center, right, up, radius)
	return d
}

func computeDiscBounds(center, right, up core.Vec3, radius float64) core.AABB {
	r := right.Multiply(radius)
	u := up.Multiply(radius)
	return core.NewAABBFromPoints(
		center.Add(r).Add(u), center.Add(r).Subtract(u),
		center.Subtract(r).Add(u), center.Subtract(r).Subtract(u),
	)
}

func (d *Disc) Bounds() core.AABB        { return d.bbox }
func (d *Disc) SurfaceArea() float64     { return math.Pi * d.Radius * d.Radius }
func (d *Disc) ShapeKind() Kind          { return KindDisc }
func (d *Disc) MaterialID() material.ID  { return d.MatID }
func (d *Disc) IntersectBounds(b core.AABB) bool {
	return boxesOverlap(d.bbox, b)
}

// Intersect tests the ray against the disc's plane, then checks the
// intersection point lies within Radius of Center.
func (d *Disc) Intersect(ray core.Ray, hit *Hit) bool {
	const epsilon = 1e-6
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < epsilon {
		return false
	}

	t := d.Center.Subtract(ray.Origin).Dot(d.Normal) / denom
	if t < ray.TMin || t > ray.TMax {
		return false
	}

	p := ray.At(t)
	offset := p.Subtract(d.Center)
	if offset.Dot(offset) > d.Radius*d.Radius {
		return false
	}

	hit.T = t
	hit.Point = p
	hit.Material = d.MatID
	hit.UV = core.Vec2{X: offset.Dot(d.right)/d.Radius*0.5 + 0.5, Y: offset.Dot(d.up)/d.Radius*0.5 + 0.5}
	hit.SetFaceNormal(ray, d.Normal)
	return true
}
