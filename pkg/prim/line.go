package prim

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Line is a tapered-radius cylindrical segment between two endpoints: a
// cone frustum whose radius varies linearly from R0 (at P0) to R1 (at P1).
// It generalizes the teacher's constant-radius Cylinder (see the adapted
// quadratic-solve technique below, grounded on the same local-frame
// projection that Cylinder.Hit uses) the way a hair/curve primitive in a
// production renderer varies thickness along its length.
type Line struct {
	P0, P1 core.Vec3
	R0, R1 float64
	MatID  material.ID

	axis   core.Vec3 // normalized P1-P0
	length float64
	slope  float64 // dr/ds = (R1-R0)/length
	bbox   core.AABB
}

// NewLine builds a tapered line segment. R0 and R1 must be >= 0.
func NewLine(p0, p1 core.Vec3, r0, r1 float64, matID material.ID) *Line {
	delta := p1.Subtract(p0)
	length := delta.Length()
	axis := delta.Normalize()
	l := &Line{
		P0: p0, P1: p1, R0: r0, R1: r1, MatID: matID,
		axis: axis, length: length,
	}
	if length > 0 {
		l.slope = (r1 - r0) / length
	}
	l.bbox = computeLineBounds(p0, p1, r0, r1)
	return l
}

func computeLineBounds(p0, p1 core.Vec3, r0, r1 float64) core.AABB {
	maxR := math.Max(r0, r1)
	pad := core.NewVec3(maxR, maxR, maxR)
	box := core.NewAABBFromPoints(p0, p1)
	return core.AABB{Min: box.Min.Subtract(pad), Max: box.Max.Add(pad)}
}

func (l *Line) Bounds() core.AABB { return l.bbox }

func (l *Line) SurfaceArea() float64 {
	// Lateral surface area of a conical frustum.
	slant := math.Hypot(l.length, l.R1-l.R0)
	return math.Pi * (l.R0 + l.R1) * slant
}

func (l *Line) ShapeKind() Kind         { return KindLine }
func (l *Line) MaterialID() material.ID { return l.MatID }
func (l *Line) IntersectBounds(b core.AABB) bool {
	return boxesOverlap(l.bbox, b)
}

// Intersect solves the frustum's implicit quadratic a*t^2 + 2*b*t + c = 0 in
// the line's local frame: project the ray onto the axis to get the radius
// at each point along it, then equate the ray's perpendicular distance from
// the axis to that radius.
func (l *Line) Intersect(ray core.Ray, hit *Hit) bool {
	if l.length == 0 {
		return false
	}

	o := ray.Origin.Subtract(l.P0)
	oAxial := o.Dot(l.axis)
	dAxial := ray.Direction.Dot(l.axis)

	oPerp := o.Subtract(l.axis.Multiply(oAxial))
	dPerp := ray.Direction.Subtract(l.axis.Multiply(dAxial))

	c0 := l.R0 + l.slope*oAxial
	c1 := l.slope * dAxial

	a := dPerp.Dot(dPerp) - c1*c1
	b := oPerp.Dot(dPerp) - c0*c1
	c := oPerp.Dot(oPerp) - c0*c0

	var t0, t1 float64
	var ok bool
	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return false
		}
		t0 = -c / (2 * b)
		t1 = t0
		ok = true
	} else {
		disc := b*b - a*c
		if disc < 0 {
			return false
		}
		sq := math.Sqrt(disc)
		t0 = (-b - sq) / a
		t1 = (-b + sq) / a
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		ok = true
	}
	if !ok {
		return false
	}

	for _, t := range [2]float64{t0, t1} {
		if t < ray.TMin || t > ray.TMax {
			continue
		}
		s := oAxial + dAxial*t
		if s < 0 || s > l.length {
			continue
		}
		radius := l.R0 + l.slope*s
		if radius < 0 {
			continue
		}

		hit.T = t
		hit.Point = ray.At(t)
		hit.Material = l.MatID
		perp := oPerp.Add(dPerp.Multiply(t))
		outward := l.normalAt(perp, radius)
		hit.SetFaceNormal(ray, outward)
		hit.UV = core.Vec2{X: s / l.length, Y: 0}
		return true
	}
	return false
}

// normalAt computes the cone's outward normal at the point whose
// axis-perpendicular offset is perp and whose frustum radius there is
// radius. At the zero-radius tip perp collapses to the origin and the
// radial component is undefined (0/0); the normal there degenerates to
// the axis direction, oriented away from the frustum's thick end.
func (l *Line) normalAt(perp core.Vec3, radius float64) core.Vec3 {
	if perp.LengthSquared() < 1e-16 {
		if l.R1 >= l.R0 {
			return l.axis.Negate()
		}
		return l.axis
	}
	n := perp.Subtract(l.axis.Multiply(radius * l.slope))
	return n.Normalize()
}
