package accel

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/core"
)

// sahBinCount is the default number of bins the split evaluator
// distributes primitive centroids across along the chosen axis, matching
// bvh_utils.h's BVH_SPLIT_COUNT.
const sahBinCount = 16

// sahCost evaluates the SAH cost of splitting a node of bounds box into a
// left child of lCount primitives with bounds lBox and a right child of
// rCount primitives with bounds rBox.
func sahCost(lCount, rCount int, lBox, rBox, box core.AABB) float64 {
	return (float64(lCount)*lBox.HalfSurfaceArea() + float64(rCount)*rBox.HalfSurfaceArea()) / box.HalfSurfaceArea()
}

// bestSplit is the result of evaluating every candidate split along the
// node's widest centroid axis.
type bestSplit struct {
	axis      int
	pos       float64
	cost      float64
	primCount int
}

// valid reports whether pickBestSplit found a usable split (false when all
// centroids coincide along every axis, so binning has nothing to separate).
func (s bestSplit) valid() bool {
	return !math.IsInf(s.cost, 1)
}

// pickBestSplit bins buf[start:end]'s centroids into bins buckets along the
// longest axis of their centroid bounding box, then sweeps the resulting
// per-bin counts and boxes left-to-right against a right-to-left suffix
// accumulation to find the minimum-cost split plane. This is the binned SAH
// evaluator of bvh_utils.h's pickBestSplit, unchanged in algorithm: same
// suffix/prefix sweep, same degenerate (zero centroid extent) bailout
// returning +Inf cost. bins is parameterized (default sahBinCount) so
// Options.SAHBins can trade build time for split quality.
func pickBestSplit(buf []BuildPrimitive, start, end int, nodeBounds core.AABB, bins int) bestSplit {
	inner := centroidBoundsOf(buf, start, end)
	primCount := end - start
	axis := inner.MaxExtentAxis()

	result := bestSplit{axis: axis, cost: math.Inf(1), primCount: primCount}

	splitStart := inner.Min.Component(axis)
	splitDelta := inner.Delta(axis) / float64(bins)
	if splitDelta == 0 {
		return result
	}
	invSplitDelta := 1.0 / splitDelta

	bin := make([]int, bins)
	bbox := make([]core.AABB, bins)
	for i := range bbox {
		bbox[i] = core.EmptyAABB()
	}

	for i := start; i < end; i++ {
		index := int((buf[i].Centroid.Component(axis) - splitStart) * invSplitDelta)
		if index >= bins {
			index = bins - 1
		}
		if index < 0 {
			index = 0
		}
		bin[index]++
		bbox[index] = bbox[index].Union(buf[i].Bounds)
	}

	rbox := make([]core.AABB, bins-1)
	rbox[bins-2] = bbox[bins-1]
	for i := bins - 3; i >= 0; i-- {
		rbox[i] = rbox[i+1].Union(bbox[i+1])
	}

	left := bin[0]
	lbox := bbox[0]
	pos := splitStart + splitDelta
	for i := 0; i < bins-1; i++ {
		cost := sahCost(left, primCount-left, lbox, rbox[i], nodeBounds)
		if cost < result.cost {
			result.cost = cost
			result.pos = pos
		}
		left += bin[i+1]
		lbox = lbox.Union(bbox[i+1])
		pos += splitDelta
	}

	return result
}

// partition reorders buf[start:end] in place so every build primitive whose
// centroid lies before splitPos along axis comes first, and returns the
// boundary index. Ties (centroid exactly at splitPos) fall to the right,
// matching the half-open bin assignment pickBestSplit uses.
func partition(buf []BuildPrimitive, start, end, axis int, splitPos float64) int {
	i, j := start, end-1
	for i <= j {
		for i <= j && buf[i].Centroid.Component(axis) < splitPos {
			i++
		}
		for i <= j && buf[j].Centroid.Component(axis) >= splitPos {
			j--
		}
		if i < j {
			buf[i], buf[j] = buf[j], buf[i]
			i++
			j--
		}
	}
	return i
}
