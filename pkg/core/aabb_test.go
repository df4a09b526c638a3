package core

import (
	"math"
	"testing"
)

func TestAABB_HitInterval(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1))

	tEnter, hit := box.HitInterval(ray)
	if !hit {
		t.Fatal("expected ray through box center to hit")
	}
	if math.Abs(tEnter-4) > 1e-9 {
		t.Errorf("expected tEnter=4, got %f", tEnter)
	}
}

func TestAABB_HitInterval_OriginInside(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, -1))

	tEnter, hit := box.HitInterval(ray)
	if !hit {
		t.Fatal("expected hit when ray origin is inside the box")
	}
	if tEnter != 0 {
		t.Errorf("expected tEnter=0 for an interior origin, got %f", tEnter)
	}
}

func TestAABB_HitInterval_Miss(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(5, 5, 5), NewVec3(0, 0, -1))

	if _, hit := box.HitInterval(ray); hit {
		t.Error("expected miss for a ray that passes beside the box")
	}
}

func TestAABB_HitInterval_AxisParallel(t *testing.T) {
	// Direction with a zero X component: InvDirection.X is the large finite
	// 1/nudgeEpsilon, which must not spuriously reject a ray whose origin
	// is within the X slab.
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(0, 5, 0), NewVec3(0, -1, 0))

	if _, hit := box.HitInterval(ray); !hit {
		t.Error("expected hit for axis-parallel ray within the slab")
	}

	rayOutside := NewRay(NewVec3(5, 5, 0), NewVec3(0, -1, 0))
	if _, hit := box.HitInterval(rayOutside); hit {
		t.Error("expected miss for axis-parallel ray outside the slab")
	}
}

func TestAABB_HalfSurfaceArea(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(2, 3, 4))
	// Full surface area is 2*(2*3 + 3*4 + 4*2) = 2*26 = 52; half is 26.
	if got := box.HalfSurfaceArea(); math.Abs(got-26) > 1e-9 {
		t.Errorf("expected half surface area 26, got %f", got)
	}
}

func TestAABB_MaxExtentAxisAndDelta(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 5, 2))
	if axis := box.MaxExtentAxis(); axis != 1 {
		t.Errorf("expected longest axis 1 (Y), got %d", axis)
	}
	if d := box.Delta(1); math.Abs(d-5) > 1e-9 {
		t.Errorf("expected delta(Y)=5, got %f", d)
	}
}

func TestAABB_UnionPointAndEmpty(t *testing.T) {
	box := EmptyAABB()
	box = box.UnionPoint(NewVec3(1, 2, 3))
	box = box.UnionPoint(NewVec3(-1, 5, 0))
	if box.Min != (Vec3{-1, 2, 0}) {
		t.Errorf("unexpected min after unioning points: %+v", box.Min)
	}
	if box.Max != (Vec3{1, 5, 3}) {
		t.Errorf("unexpected max after unioning points: %+v", box.Max)
	}
}
