package prim

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
)

// Sphere is the canonical quadratic-intersection primitive.
type Sphere struct {
	Center core.Vec3
	Radius float64
	MatID  material.ID

	bbox core.AABB
}

// NewSphere builds a sphere.
func NewSphere(center core.Vec3, radius float64, matID material.ID) *Sphere {
	pad := core.NewVec3(radius, radius, radius)
	return &Sphere{
		Center: center, Radius: radius, MatID: matID,
		bbox: core.AABB{Min: center.Subtract(pad), Max: center.Add(pad)},
	}
}

func (s *Sphere) Bounds() core.AABB        { return s.bbox }
func (s *Sphere) SurfaceArea() float64     { return 4 * math.Pi * s.Radius * s.Radius }
func (s *Sphere) ShapeKind() Kind          { return KindSphere }
func (s *Sphere) MaterialID() material.ID  { return s.MatID }
func (s *Sphere) IntersectBounds(b core.AABB) bool {
	return boxesOverlap(s.bbox, b)
}

// Intersect solves the standard ray/sphere quadratic, preferring the
// nearer root and falling back to the farther one if the nearer lies
// outside the ray's valid interval.
func (s *Sphere) Intersect(ray core.Ray, hit *Hit) bool {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if root < ray.TMin || root > ray.TMax {
		root = (-halfB + sqrtD) / a
		if root < ray.TMin || root > ray.TMax {
			return false
		}
	}

	hit.T = root
	hit.Point = ray.At(root)
	hit.Material = s.MatID
	outwardNormal := hit.Point.Subtract(s.Center).Multiply(1 / s.Radius)
	hit.UV = sphereUV(outwardNormal)
	hit.SetFaceNormal(ray, outwardNormal)
	return true
}

func sphereUV(n core.Vec3) core.Vec2 {
	theta := math.Acos(-n.Y)
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}
