package accel

import (
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// Tree is the traversal engine's unified surface (C7): one interface
// spanning the binary BVH and both wide-BVH widths, so a caller can switch
// Options.Variant without touching call sites. This mirrors SORT's
// Accelerator base class (accelerator.h), which Bvh, Qbvh and Obvh all
// implement identically.
type Tree interface {
	// QueryNearest returns the closest primitive hit within ray's
	// [TMin, TMax] interval, if any.
	QueryNearest(ray core.Ray) (prim.Hit, bool)

	// QueryAny reports whether ray hits anything at all. The default build
	// returns as soon as one qualifying hit is found; built with
	// -tags transparentshadow it runs the full nearest-hit walk instead.
	QueryAny(ray core.Ray) bool

	// QueryKNearest returns up to k hits satisfying predicate, ordered
	// nearest first.
	QueryKNearest(ray core.Ray, k int, predicate material.Predicate) []prim.Hit

	// Bounds returns the tree's overall bounding box.
	Bounds() core.AABB

	// Stats returns the tree's read-only traversal counters.
	Stats() *core.Stats
}

// Build constructs a Tree over primitives according to opts.Variant.
func Build(primitives []prim.Primitive, opts Options) Tree {
	switch opts.Variant {
	case Quad:
		return BuildWide(primitives, 4, opts)
	case Oct:
		return BuildWide(primitives, 8, opts)
	default:
		return BuildBinary(primitives, opts)
	}
}
