package prim

import (
	"math"
	"testing"

	"github.com/wavefront-render/spatialtracer/pkg/core"
)

func TestSphere_HitNearestRoot(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1, 2)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	var hit Hit
	if !sphere.Intersect(ray, &hit) {
		t.Fatal("expected hit on sphere")
	}
	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("expected nearest root t=4, got %f", hit.T)
	}
	if !hit.FrontFace {
		t.Error("expected front-face hit from outside")
	}
}

func TestSphere_OriginInsideUsesFarRoot(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1, 0)
	ray := core.NewBoundedRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 0, math.Inf(1))
	var hit Hit
	if !sphere.Intersect(ray, &hit) {
		t.Fatal("expected hit exiting sphere from inside")
	}
	if math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("expected exit at t=1, got %f", hit.T)
	}
}

func TestSphere_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1, 0)
	ray := core.NewRay(core.NewVec3(5, 5, 5), core.NewVec3(1, 0, 0))
	var hit Hit
	if sphere.Intersect(ray, &hit) {
		t.Error("expected miss")
	}
}

func TestSphere_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 2, 0)
	box := sphere.Bounds()
	if box.Min.X != -1 || box.Max.X != 3 {
		t.Errorf("unexpected bounds %+v", box)
	}
}
