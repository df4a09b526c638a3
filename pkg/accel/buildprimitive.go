// Package accel implements the spatial acceleration core: the binned SAH
// split evaluator, the binary BVH, the wide (4- and 8-way) BVH, and the
// traversal engine that fronts both. None of it knows how to shade a hit or
// sample a light; it only answers nearest-hit, any-hit and bounded
// multi-hit queries against an immutable primitive set.
package accel

import (
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// BuildPrimitive is the build-time record the SAH binner and both tree
// builders operate on: a primitive's bounding box and centroid, plus the
// index of the primitive it refers to in the original input slice. Builders
// never touch prim.Primitive directly during partitioning — only this
// compact, cache-friendly record — mirroring SORT's Bvh_Primitive
// (bvh_utils.h), which separates "what the build algorithm needs" from the
// primitive payload itself.
type BuildPrimitive struct {
	Bounds   core.AABB
	Centroid core.Vec3
	Index    int
}

// BuildPrimitives constructs the build-time buffer for a primitive slice.
func BuildPrimitives(primitives []prim.Primitive) []BuildPrimitive {
	out := make([]BuildPrimitive, len(primitives))
	for i, p := range primitives {
		box := p.Bounds()
		out[i] = BuildPrimitive{
			Bounds:   box,
			Centroid: box.Center(),
			Index:    i,
		}
	}
	return out
}

// boundsOf returns the union of every build primitive's bounding box in the
// range [start, end) of buf.
func boundsOf(buf []BuildPrimitive, start, end int) core.AABB {
	box := core.EmptyAABB()
	for i := start; i < end; i++ {
		box = box.Union(buf[i].Bounds)
	}
	return box
}

// centroidBoundsOf returns the union of every build primitive's centroid
// point in the range [start, end) of buf — the box the SAH binner spreads
// its bins across, distinct from the primitives' own spatial bounds.
func centroidBoundsOf(buf []BuildPrimitive, start, end int) core.AABB {
	box := core.EmptyAABB()
	for i := start; i < end; i++ {
		box = box.UnionPoint(buf[i].Centroid)
	}
	return box
}
