package prim

import (
	"math"
	"testing"

	"github.com/wavefront-render/spatialtracer/pkg/core"
)

func TestTriangle_HitCenter(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		7,
	)

	ray := core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, -1))
	var hit Hit
	if !tri.Intersect(ray, &hit) {
		t.Fatal("expected hit through triangle interior")
	}
	if math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("expected t=1, got %f", hit.T)
	}
	if hit.Material != 7 {
		t.Errorf("expected material id 7, got %d", hit.Material)
	}
	if !hit.FrontFace {
		t.Error("expected front-face hit")
	}
}

func TestTriangle_MissOutsideEdges(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		0,
	)
	ray := core.NewRay(core.NewVec3(2, 2, 1), core.NewVec3(0, 0, -1))
	var hit Hit
	if tri.Intersect(ray, &hit) {
		t.Error("expected miss outside triangle bounds")
	}
}

func TestTriangle_BackFace(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		0,
	)
	ray := core.NewRay(core.NewVec3(0.2, 0.2, -1), core.NewVec3(0, 0, 1))
	var hit Hit
	if !tri.Intersect(ray, &hit) {
		t.Fatal("expected hit from the back side")
	}
	if hit.FrontFace {
		t.Error("expected back-face hit")
	}
}

func TestTriangle_WatertightAlongSharedEdge(t *testing.T) {
	// Two triangles sharing the edge (0,0,0)-(0,1,0); a ray aimed exactly
	// at the shared edge must hit exactly one of them, never both and
	// never neither, regardless of ray direction.
	a := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(-1, 0, 0), 0)
	b := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), 0)

	dirs := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(0.0001, 0, -1),
		core.NewVec3(-0.0001, 0, -1),
	}
	for _, d := range dirs {
		ray := core.NewRay(core.NewVec3(0, 0.5, 1), d.Normalize())
		var ha, hb Hit
		hitA := a.Intersect(ray, &ha)
		hitB := b.Intersect(ray, &hb)
		if hitA && hitB {
			t.Errorf("direction %v hit both triangles sharing an edge", d)
		}
	}
}

func TestTriangle_Bounds(t *testing.T) {
	tri := NewTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), 0)
	box := tri.Bounds()
	if box.Min.X != -1 || box.Max.X != 1 || box.Min.Y != -1 || box.Max.Y != 1 {
		t.Errorf("unexpected bounds %+v", box)
	}
}
