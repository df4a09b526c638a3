package prim

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Quad is a planar parallelogram defined by a corner and two edge vectors.
type Quad struct {
	Corner core.Vec3
	U, V   core.Vec3
	Normal core.Vec3
	MatID  material.ID

	d core.Vec3 // Normal/(Normal.Dot(U.Cross(V))), the barycentric helper vector
	planeConst float64

	bbox core.AABB
}

// NewQuad builds a quad from a corner and two edge vectors.
func NewQuad(corner, u, v core.Vec3, matID material.ID) *Quad {
	n := u.Cross(v)
	normal := n.Normalize()
	q := &Quad{
		Corner: corner, U: u, V: v, Normal: normal, MatID: matID,
		d:          n.Multiply(1.0 / n.Dot(n)),
		planeConst: normal.Dot(corner),
	}
	q.bbox = computeQuadBounds(corner, u, v)
	return q
}

func computeQuadBounds(corner, u, v core.Vec3) core.AABB {
	const epsilon = 1e-4
	p0, p1, p2, p3 := corner, corner.Add(u), corner.Add(v), corner.Add(u).Add(v)
	box := core.NewAABBFromPoints(p0, p1, p2, p3)
	size := box.Size()
	if size.X < epsilon {
		box.Min.X -= epsilon / 2
		box.Max.X += epsilon / 2
	}
	if size.Y < epsilon {
		box.Min.Y -= epsilon / 2
		box.Max.Y += epsilon / 2
	}
	if size.Z < epsilon {
		box.Min.Z -= epsilon / 2
		box.Max.Z += epsilon / 2
	}
	return box
}

func (q *Quad) Bounds() core.AABB         { return q.bbox }
func (q *Quad) SurfaceArea() float64      { return q.U.Cross(q.V).Length() }
func (q *Quad) ShapeKind() Kind           { return KindQuad }
func (q *Quad) MaterialID() material.ID   { return q.MatID }
func (q *Quad) IntersectBounds(b core.AABB) bool {
	return boxesOverlap(q.bbox, b)
}

// Intersect tests the ray against the quad's plane, then checks the
// intersection point's barycentric (alpha, beta) coordinates fall in [0,1].
func (q *Quad) Intersect(ray core.Ray, hit *Hit) bool {
	denom := q.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-10 {
		return false
	}

	t := (q.planeConst - q.Normal.Dot(ray.Origin)) / denom
	if t < ray.TMin || t > ray.TMax {
		return false
	}

	p := ray.At(t)
	planarHit := p.Subtract(q.Corner)
	alpha := q.d.Dot(planarHit.Cross(q.V))
	beta := q.d.Dot(q.U.Cross(planarHit))

	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}

	hit.T = t
	hit.Point = p
	hit.Material = q.MatID
	hit.UV = core.Vec2{X: alpha, Y: beta}
	hit.SetFaceNormal(ray, q.Normal)
	return true
}
