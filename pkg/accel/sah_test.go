package accel

import (
	"math"
	"testing"

	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

func unitBoxAt(x float64) *prim.Sphere {
	return prim.NewSphere(core.NewVec3(x, 0, 0), 0.1, material.None)
}

func TestPickBestSplit_SeparatesTwoClusters(t *testing.T) {
	var prims []prim.Primitive
	for i := 0; i < 4; i++ {
		prims = append(prims, unitBoxAt(float64(i)*0.01))
	}
	for i := 0; i < 4; i++ {
		prims = append(prims, unitBoxAt(10+float64(i)*0.01))
	}

	buf := BuildPrimitives(prims)
	bounds := boundsOf(buf, 0, len(buf))

	split := pickBestSplit(buf, 0, len(buf), bounds, sahBinCount)
	if !split.valid() {
		t.Fatal("expected a valid split for two well-separated clusters")
	}
	if split.pos <= 0.04 || split.pos >= 10 {
		t.Errorf("expected split plane between the two clusters, got %f", split.pos)
	}

	mid := partition(buf, 0, len(buf), split.axis, split.pos)
	if mid != 4 {
		t.Errorf("expected partition to separate the 4+4 clusters cleanly, got mid=%d", mid)
	}
}

func TestPickBestSplit_DegenerateCentroidsIsInvalid(t *testing.T) {
	var prims []prim.Primitive
	for i := 0; i < 4; i++ {
		prims = append(prims, unitBoxAt(0))
	}
	buf := BuildPrimitives(prims)
	bounds := boundsOf(buf, 0, len(buf))

	split := pickBestSplit(buf, 0, len(buf), bounds, sahBinCount)
	if split.valid() {
		t.Error("expected an invalid split when every centroid coincides")
	}
}

func TestPickBestSplit_HonorsBinCountParameter(t *testing.T) {
	var prims []prim.Primitive
	for i := 0; i < 8; i++ {
		prims = append(prims, unitBoxAt(float64(i)))
	}
	buf := BuildPrimitives(prims)
	bounds := boundsOf(buf, 0, len(buf))

	split4 := pickBestSplit(buf, 0, len(buf), bounds, 4)
	split32 := pickBestSplit(buf, 0, len(buf), bounds, 32)
	if !split4.valid() || !split32.valid() {
		t.Fatal("expected both bin counts to find a valid split")
	}
}

func TestSahCost_PrefersBalancedTightSplit(t *testing.T) {
	nodeBox := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(10, 1, 1))
	tightLeft := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	tightRight := core.NewAABB(core.NewVec3(9, 0, 0), core.NewVec3(10, 1, 1))
	looseLeft := core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(8, 1, 1))
	looseRight := core.NewAABB(core.NewVec3(2, 0, 0), core.NewVec3(10, 1, 1))

	tight := sahCost(4, 4, tightLeft, tightRight, nodeBox)
	loose := sahCost(4, 4, looseLeft, looseRight, nodeBox)
	if tight >= loose {
		t.Errorf("expected tighter child bounds to cost less: tight=%f loose=%f", tight, loose)
	}
}

func TestPartition_SplitsAroundPosition(t *testing.T) {
	var prims []prim.Primitive
	for i := 0; i < 6; i++ {
		prims = append(prims, unitBoxAt(float64(i)))
	}
	buf := BuildPrimitives(prims)
	mid := partition(buf, 0, len(buf), 0, 3)
	for i := 0; i < mid; i++ {
		if buf[i].Centroid.X >= 3 {
			t.Errorf("left partition contains a centroid >= split pos: %f", buf[i].Centroid.X)
		}
	}
	for i := mid; i < len(buf); i++ {
		if buf[i].Centroid.X < 3 {
			t.Errorf("right partition contains a centroid < split pos: %f", buf[i].Centroid.X)
		}
	}
}

func TestBestSplit_ValidIsFalseForInfiniteCost(t *testing.T) {
	s := bestSplit{cost: math.Inf(1)}
	if s.valid() {
		t.Error("expected invalid for +Inf cost")
	}
	s.cost = 3.5
	if !s.valid() {
		t.Error("expected valid for finite cost")
	}
}
