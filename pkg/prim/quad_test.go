package prim

import (
	"math"
	"testing"

	"github.com/wavefront-render/spatialtracer/pkg/core"
)

func TestQuad_HitInterior(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), 3)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	var hit Hit
	if !quad.Intersect(ray, &hit) {
		t.Fatal("expected hit through quad center")
	}
	if math.Abs(hit.T-5) > 1e-9 {
		t.Errorf("expected t=5, got %f", hit.T)
	}
	if math.Abs(hit.UV.X-0.5) > 1e-9 || math.Abs(hit.UV.Y-0.5) > 1e-9 {
		t.Errorf("expected centered UV (0.5,0.5), got %+v", hit.UV)
	}
}

func TestQuad_MissOutsideEdges(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), 0)
	ray := core.NewRay(core.NewVec3(5, 5, 5), core.NewVec3(0, 0, -1))
	var hit Hit
	if quad.Intersect(ray, &hit) {
		t.Error("expected miss outside quad bounds")
	}
}

func TestQuad_ParallelRayMisses(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), 0)
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0))
	var hit Hit
	if quad.Intersect(ray, &hit) {
		t.Error("expected miss for a ray parallel to the quad's plane")
	}
}

func TestQuad_ThinAxisAlignedBounds(t *testing.T) {
	quad := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), 0)
	box := quad.Bounds()
	if box.Max.Z-box.Min.Z <= 0 {
		t.Error("expected thin axis-aligned quad to have non-degenerate bounds")
	}
}
