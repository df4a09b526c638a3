package accel

import (
	"math"
	"testing"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// gridOfTriangles builds n unit-ish triangles laid out on the z=0 plane,
// spaced apart on x, each one a right triangle with its own material id so
// a packing test can recover which lane produced a given hit.
func gridOfTriangles(n int, spacing float64) []prim.Primitive {
	out := make([]prim.Primitive, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i) * spacing
		id := material.ID(i + 1)
		out = append(out, prim.NewTriangle(
			core.NewVec3(x, -0.4, 0), core.NewVec3(x+0.4, -0.4, 0), core.NewVec3(x, 0.4, 0),
			id,
		))
	}
	return out
}

// gridOfLines builds n tapered line segments along z, spaced apart on x.
// Each segment's radius is constant (0.2) so a ray crossing it
// perpendicular to its axis always clips its side at a known offset.
func gridOfLines(n int, spacing float64) []prim.Primitive {
	out := make([]prim.Primitive, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i) * spacing
		id := material.ID(100 + i)
		out = append(out, prim.NewLine(
			core.NewVec3(x, 0, -1), core.NewVec3(x, 0, 1), 0.2, 0.2, id,
		))
	}
	return out
}

func TestBuildWide_TriangleGridMatchesBruteForce(t *testing.T) {
	prims := gridOfTriangles(9, 1.0)
	opts := DefaultOptions()
	opts.Variant = Oct
	opts.MaxPrimsPerLeaf = 2
	tree := BuildWide(prims, 8, opts)

	for i := 0; i < 9; i++ {
		x := float64(i) * 1.0
		ray := core.NewRay(core.NewVec3(x+0.1, -0.1, 5), core.NewVec3(0, 0, -1))
		want, wantFound := bruteForceNearest(prims, ray)
		got, gotFound := tree.QueryNearest(ray)
		if wantFound != gotFound {
			t.Fatalf("triangle %d: brute force found=%v, tree found=%v", i, wantFound, gotFound)
		}
		if wantFound && math.Abs(want.T-got.T) > 1e-4 {
			t.Errorf("triangle %d: expected T=%f, got %f", i, want.T, got.T)
		}
		if wantFound && want.Material != got.Material {
			t.Errorf("triangle %d: expected material %v, got %v", i, want.Material, got.Material)
		}
	}

	missRay := core.NewRay(core.NewVec3(1000, 1000, 5), core.NewVec3(0, 0, -1))
	if _, hit := tree.QueryNearest(missRay); hit {
		t.Error("expected no hit far from the triangle grid")
	}
}

func TestBuildWide_LineGridMatchesBruteForce(t *testing.T) {
	prims := gridOfLines(9, 1.0)
	opts := DefaultOptions()
	opts.Variant = Quad
	opts.MaxPrimsPerLeaf = 2
	tree := BuildWide(prims, 4, opts)

	// Each ray travels along y at a fixed x matching exactly one line's
	// position, crossing that cylinder perpendicular to its axis (which
	// runs along z) without ever coming near any other line in the grid.
	for i := 0; i < 9; i++ {
		x := float64(i) * 1.0
		ray := core.NewRay(core.NewVec3(x, -5, 0), core.NewVec3(0, 1, 0))
		want, wantFound := bruteForceNearest(prims, ray)
		got, gotFound := tree.QueryNearest(ray)
		if !wantFound {
			t.Fatalf("line %d: expected brute force to find a hit", i)
		}
		if wantFound != gotFound {
			t.Fatalf("line %d: brute force found=%v, tree found=%v", i, wantFound, gotFound)
		}
		if math.Abs(want.T-got.T) > 1e-4 {
			t.Errorf("line %d: expected T=%f, got %f", i, want.T, got.T)
		}
	}
}

// TestBuildWide_MixedKindsRouteCorrectly exercises a leaf containing
// triangles, a line and a sphere together: triangles and the line must be
// found via their SIMD packs, the sphere via the scalar overflow list, and
// all three must still be reachable by a ray through their shared region.
func TestBuildWide_MixedKindsRouteCorrectly(t *testing.T) {
	var prims []prim.Primitive
	prims = append(prims, prim.NewTriangle(
		core.NewVec3(-2, -0.4, 0), core.NewVec3(-1.6, -0.4, 0), core.NewVec3(-2, 0.4, 0),
		material.ID(1),
	))
	prims = append(prims, prim.NewLine(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 0.2, 0.2, material.ID(2)))
	prims = append(prims, prim.NewSphere(core.NewVec3(2, 0, 0), 0.3, material.ID(3)))

	opts := DefaultOptions()
	opts.MaxPrimsPerLeaf = 8 // keep everything in one leaf
	tree := BuildWide(prims, 4, opts)

	cases := []struct {
		origin    core.Vec3
		direction core.Vec3
		want      material.ID
	}{
		{core.NewVec3(-1.9, -0.1, 5), core.NewVec3(0, 0, -1), material.ID(1)},
		// Along y so the ray crosses the line's axis (which runs along z)
		// instead of running parallel to it.
		{core.NewVec3(0, -5, 0), core.NewVec3(0, 1, 0), material.ID(2)},
		{core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1), material.ID(3)},
	}
	for _, c := range cases {
		ray := core.NewRay(c.origin, c.direction)
		hit, found := tree.QueryNearest(ray)
		if !found {
			t.Fatalf("expected a hit from origin %+v", c.origin)
		}
		if hit.Material != c.want {
			t.Errorf("origin %+v: expected material %v, got %v", c.origin, c.want, hit.Material)
		}
	}
}

// TestBuildWide_TrianglePackValidMaskExcludesPadding confirms a partially
// filled triangle pack reports hits only on lanes that were actually
// populated: spec 4.6.1's packing invariant (testable property 7).
func TestBuildWide_TrianglePackValidMaskExcludesPadding(t *testing.T) {
	tri := prim.NewTriangle(core.NewVec3(-0.4, -0.4, 0), core.NewVec3(0.4, -0.4, 0), core.NewVec3(0, 0.4, 0), material.ID(7))
	pack := newTrianglePack(8) // width 8, only lane 0 populated
	pack.set(0, tri)

	if pack.valid != 1 {
		t.Fatalf("expected only lane 0 valid, got mask %08b", pack.valid)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	frame := newRayFrame(ray)
	hit, found := intersectTrianglePack(pack, frame, ray)
	if !found {
		t.Fatal("expected the populated lane to report a hit")
	}
	if hit.Material != material.ID(7) {
		t.Errorf("expected material 7 from the only populated lane, got %v", hit.Material)
	}

	// Every other lane is unset in valid, so a ray that would only hit the
	// padding geometry's default (zero) vertices must still miss: a
	// degenerate all-zero triangle has det==0 and is rejected regardless,
	// but the valid mask is what guarantees it is never even considered.
	for i := 1; i < 8; i++ {
		if pack.valid&(1<<uint(i)) != 0 {
			t.Errorf("lane %d unexpectedly marked valid", i)
		}
	}
}

func TestBuildWide_OctQueryKNearestAcrossTrianglePack(t *testing.T) {
	var prims []prim.Primitive
	for i := 0; i < 6; i++ {
		z := float64(i) * 2
		prims = append(prims, prim.NewTriangle(
			core.NewVec3(-0.4, -0.4, z), core.NewVec3(0.4, -0.4, z), core.NewVec3(0, 0.4, z),
			material.ID(1),
		))
	}
	opts := DefaultOptions()
	opts.Variant = Oct
	tree := BuildWide(prims, 8, opts)

	ray := core.NewRay(core.NewVec3(0, -0.1, -10), core.NewVec3(0, 0, 1))
	hits := tree.QueryKNearest(ray, 3, material.AcceptAll)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].T < hits[i-1].T {
			t.Errorf("expected hits ordered nearest first, got %v", hits)
		}
	}
}
