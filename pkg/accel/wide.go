package accel

import (
	"math"

	"github.com/wavefront-render/spatialtracer/pkg/accel/simdlane"
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// wideNode is one node of a 4- or 8-wide BVH: six lane-parallel arrays
// holding each live child's bounding box (one float32 lane per child),
// a validity bitmask for slots below the node's arity, and per-slot child
// references. A child reference is either another wideNode (internal) or
// a wideLeaf holding the child's SIMD-packed primitives, exactly as
// qbvh.h's Qbvh_Node holds a children array where each entry is itself
// tagged leaf or not.
type wideNode struct {
	minX, minY, minZ simdlane.Lanes[float32]
	maxX, maxY, maxZ simdlane.Lanes[float32]

	childIndex  []int32 // node index (internal) or unused (leaf)
	childIsLeaf []bool
	leaf        []*wideLeaf

	valid uint8 // bitmask of populated lanes, lowest `arity` bits meaningful
}

// WideTree is a 4-wide (QBVH) or 8-wide (OBVH) SIMD-lane BVH, built by
// collapsing a binary SAH split tree up to log2(arity) levels at a time
// (fast_bvh.hpp's Fbvh::splitNode queue-based collapse).
type WideTree struct {
	arity int
	nodes []wideNode
	opts  Options
	stats core.Stats
}

// BuildWide constructs a wide BVH of the given arity (4 or 8) over primitives.
func BuildWide(primitives []prim.Primitive, arity int, opts Options) *WideTree {
	t := &WideTree{arity: arity, opts: opts}
	if len(primitives) == 0 {
		return t
	}

	buf := BuildPrimitives(primitives)
	t.nodes = make([]wideNode, 0, len(primitives))

	t.build(buf, 0, len(buf), primitives, 1)

	t.stats.NodeCount.Store(int64(len(t.nodes)))
	for i := range t.nodes {
		n := &t.nodes[i]
		for c := 0; c < t.arity; c++ {
			if n.valid&(1<<uint(c)) == 0 {
				continue
			}
			if n.childIsLeaf[c] {
				t.stats.LeafCount.Add(1)
				t.stats.PrimitiveCount.Add(int64(n.leaf[c].primitiveCount()))
			}
		}
	}
	t.stats.Log(opts.Logger)
	return t
}

// childRange is one not-yet-finalized partition in the collapse worklist.
type childRange struct {
	start, end int
}

// build constructs one wide node covering buf[start:end] and returns its
// index in t.nodes, recursing into children whose range is still larger
// than a single leaf. A leaf range is packed immediately via buildLeaf
// rather than appended to a flat primitive array.
func (t *WideTree) build(buf []BuildPrimitive, start, end int, src []prim.Primitive, depth int) (nodeIdx int32, isLeaf bool, leaf *wideLeaf) {
	if depth > int(t.stats.MaxDepth.Load()) {
		t.stats.MaxDepth.Store(int64(depth))
	}

	count := end - start
	bounds := boundsOf(buf, start, end)

	// The root (depth 1) is always an interior node, even when every
	// primitive fits in one leaf: traversal starts from t.nodes[0].
	if depth > 1 && (count <= t.opts.MaxPrimsPerLeaf || depth >= t.opts.MaxDepth) {
		return 0, true, t.buildLeaf(buf, start, end, src)
	}

	children := t.collapse(buf, start, end, bounds)

	node := wideNode{
		minX: simdlane.NewLanes[float32](t.arity), minY: simdlane.NewLanes[float32](t.arity), minZ: simdlane.NewLanes[float32](t.arity),
		maxX: simdlane.NewLanes[float32](t.arity), maxY: simdlane.NewLanes[float32](t.arity), maxZ: simdlane.NewLanes[float32](t.arity),
		childIndex:  make([]int32, t.arity),
		childIsLeaf: make([]bool, t.arity),
		leaf:        make([]*wideLeaf, t.arity),
	}
	posInf, negInf := float32(math.Inf(1)), float32(math.Inf(-1))
	node.minX.Fill(posInf)
	node.minY.Fill(posInf)
	node.minZ.Fill(posInf)
	node.maxX.Fill(negInf)
	node.maxY.Fill(negInf)
	node.maxZ.Fill(negInf)

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node) // reserve slot so children's node indices are stable

	for i, r := range children {
		childBounds := boundsOf(buf, r.start, r.end)
		ci, isChildLeaf, childLeaf := t.build(buf, r.start, r.end, src, depth+1)

		n := &t.nodes[idx]
		n.valid |= 1 << uint(i)
		n.minX.Set(i, float32(childBounds.Min.X))
		n.minY.Set(i, float32(childBounds.Min.Y))
		n.minZ.Set(i, float32(childBounds.Min.Z))
		n.maxX.Set(i, float32(childBounds.Max.X))
		n.maxY.Set(i, float32(childBounds.Max.Y))
		n.maxZ.Set(i, float32(childBounds.Max.Z))
		n.childIsLeaf[i] = isChildLeaf
		if isChildLeaf {
			n.leaf[i] = childLeaf
		} else {
			n.childIndex[i] = ci
		}
	}

	return idx, false, nil
}

// collapse repeatedly SAH-splits the front range of the (first-in,
// first-out) worklist until there are exactly t.arity partitions (or no range can be
// split further), mirroring Fbvh::splitNode's queue-based collapse: keep
// splitting up to log2(arity) levels so one wide node replaces several
// binary levels at once.
func (t *WideTree) collapse(buf []BuildPrimitive, start, end int, bounds core.AABB) []childRange {
	toSplit := []childRange{{start, end}}
	done := make([]childRange, 0, t.arity)

	for len(toSplit) > 0 && len(toSplit)+len(done) < t.arity {
		r := toSplit[0]
		toSplit = toSplit[1:]

		count := r.end - r.start
		if count <= t.opts.MaxPrimsPerLeaf {
			done = append(done, r)
			continue
		}

		rangeBounds := boundsOf(buf, r.start, r.end)
		split := pickBestSplit(buf, r.start, r.end, rangeBounds, t.opts.bins())
		if !split.valid() {
			done = append(done, r)
			continue
		}
		mid := partition(buf, r.start, r.end, split.axis, split.pos)
		if mid == r.start || mid == r.end {
			done = append(done, r)
			continue
		}

		toSplit = append(toSplit, childRange{r.start, mid}, childRange{mid, r.end})
	}

	return append(toSplit, done...)
}

// Bounds returns the tree's root bounding box.
func (t *WideTree) Bounds() core.AABB {
	if len(t.nodes) == 0 {
		return core.EmptyAABB()
	}
	root := &t.nodes[0]
	return core.AABB{
		Min: core.Vec3{X: float64(minOfLanes(root.minX)), Y: float64(minOfLanes(root.minY)), Z: float64(minOfLanes(root.minZ))},
		Max: core.Vec3{X: float64(maxOfLanes(root.maxX)), Y: float64(maxOfLanes(root.maxY)), Z: float64(maxOfLanes(root.maxZ))},
	}
}

func minOfLanes(l simdlane.Lanes[float32]) float32 {
	m := l.Get(0)
	for i := 1; i < l.Len(); i++ {
		if v := l.Get(i); v < m {
			m = v
		}
	}
	return m
}

func maxOfLanes(l simdlane.Lanes[float32]) float32 {
	m := l.Get(0)
	for i := 1; i < l.Len(); i++ {
		if v := l.Get(i); v > m {
			m = v
		}
	}
	return m
}

// Stats returns the tree's read-only traversal counters.
func (t *WideTree) Stats() *core.Stats { return &t.stats }

// simdRay is the wide traversal's per-query broadcast: the ray's origin,
// reciprocal direction and t interval, converted once to the float32 lanes
// every node's slab test runs in (spec 4.6.3's "precompute a SimdRay"),
// instead of re-deriving them from the core.Ray struct at every node visit.
// Origin and InvDirection (already nudged away from zero by core.Ray's own
// prepare step) never change during a query; only TMax narrows as nearer
// hits are found, so callers refresh it from the live ray each slabTest call.
type simdRay struct {
	ox, oy, oz float32
	ix, iy, iz float32
	tMin       float32
}

func prepareSimdRay(ray core.Ray) simdRay {
	return simdRay{
		ox: float32(ray.Origin.X), oy: float32(ray.Origin.Y), oz: float32(ray.Origin.Z),
		ix: float32(ray.InvDirection.X), iy: float32(ray.InvDirection.Y), iz: float32(ray.InvDirection.Z),
		tMin: float32(ray.TMin),
	}
}

// slabTest evaluates the SIMD slab test for every lane of a node at once
// against the broadcast sr and the query's current search bound tMax,
// returning a hit bitmask and each lane's entry distance. The actual
// arithmetic is the portable per-lane loop simdlane.Lanes documents as its
// scalar-emulation fallback; it reads lanes through Get/Len and does not
// use simdlane's Min/Max helpers.
func slabTest(n *wideNode, sr simdRay, tMax float32) (mask uint8, tEnter [8]float32) {
	for i := 0; i < n.minX.Len(); i++ {
		if n.valid&(1<<uint(i)) == 0 {
			continue
		}
		t1x, t2x := (n.minX.Get(i)-sr.ox)*sr.ix, (n.maxX.Get(i)-sr.ox)*sr.ix
		if t1x > t2x {
			t1x, t2x = t2x, t1x
		}
		t1y, t2y := (n.minY.Get(i)-sr.oy)*sr.iy, (n.maxY.Get(i)-sr.oy)*sr.iy
		if t1y > t2y {
			t1y, t2y = t2y, t1y
		}
		t1z, t2z := (n.minZ.Get(i)-sr.oz)*sr.iz, (n.maxZ.Get(i)-sr.oz)*sr.iz
		if t1z > t2z {
			t1z, t2z = t2z, t1z
		}

		lo := sr.tMin
		if t1x > lo {
			lo = t1x
		}
		if t1y > lo {
			lo = t1y
		}
		if t1z > lo {
			lo = t1z
		}
		hi := tMax
		if t2x < hi {
			hi = t2x
		}
		if t2y < hi {
			hi = t2y
		}
		if t2z < hi {
			hi = t2z
		}

		if lo <= hi {
			mask |= 1 << uint(i)
			tEnter[i] = lo
		}
	}
	return mask, tEnter
}

type wideStackEntry struct {
	node int32
	tMin float32
}

const maxWideStackDepth = 16 * 8 // max_depth * N, sized once and reused per query per spec's fixed traversal stack

// QueryNearest finds the closest primitive the ray hits.
func (t *WideTree) QueryNearest(ray core.Ray) (prim.Hit, bool) {
	t.stats.RecordRay(ray.Shadow)
	if len(t.nodes) == 0 {
		return prim.Hit{}, false
	}

	sr := prepareSimdRay(ray)
	frame := newRayFrame(ray)

	var stack [maxWideStackDepth]wideStackEntry
	sp := 0
	stack[sp] = wideStackEntry{0, 0}
	sp++

	var best prim.Hit
	found := false

	for sp > 0 {
		sp--
		entry := stack[sp]
		if float64(entry.tMin) > ray.TMax {
			continue
		}
		node := &t.nodes[entry.node]
		mask, tEnter := slabTest(node, sr, float32(ray.TMax))

		// Push candidates in strictly descending tEnter order so the
		// nearest pops first; a selection sort over at most 8 lanes is
		// cheaper than a general sort here.
		var order []int
		for i := 0; i < t.arity; i++ {
			if mask&(1<<uint(i)) != 0 {
				order = append(order, i)
			}
		}
		for len(order) > 0 {
			furthest, furthestPos := -1, -1
			for pos, ci := range order {
				if furthest == -1 || tEnter[ci] > tEnter[furthest] {
					furthest, furthestPos = ci, pos
				}
			}
			order = append(order[:furthestPos], order[furthestPos+1:]...)

			if node.childIsLeaf[furthest] {
				leaf := node.leaf[furthest]
				t.stats.RecordIntersectionTest(int64(leaf.primitiveCount()))
				if h, ok := testLeafNearest(leaf, ray, frame); ok {
					ray.TMax = h.T
					best = h
					found = true
				}
			} else {
				stack[sp] = wideStackEntry{node.childIndex[furthest], tEnter[furthest]}
				sp++
			}
		}
	}

	return best, found
}

// queryAnyShortCircuit is the default any-hit walk: returns as soon as any
// primitive is found. See queryany_transparentshadow.go for why this
// is split out of QueryAny.
func (t *WideTree) queryAnyShortCircuit(ray core.Ray) bool {
	if len(t.nodes) == 0 {
		return false
	}

	sr := prepareSimdRay(ray)
	frame := newRayFrame(ray)

	var stack [maxWideStackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &t.nodes[stack[sp]]
		mask, _ := slabTest(node, sr, float32(ray.TMax))

		for i := 0; i < t.arity; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			if node.childIsLeaf[i] {
				leaf := node.leaf[i]
				t.stats.RecordIntersectionTest(int64(leaf.primitiveCount()))
				if testLeafAny(leaf, ray, frame) {
					return true
				}
			} else {
				stack[sp] = node.childIndex[i]
				sp++
			}
		}
	}
	return false
}

// QueryKNearest collects up to k hits satisfying predicate, nearest first.
func (t *WideTree) QueryKNearest(ray core.Ray, k int, predicate material.Predicate) []prim.Hit {
	t.stats.RecordRay(ray.Shadow)
	set := newMultiHitSet(k)
	if len(t.nodes) == 0 {
		return set.sorted()
	}

	sr := prepareSimdRay(ray)
	frame := newRayFrame(ray)

	var stack [maxWideStackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &t.nodes[stack[sp]]
		mask, _ := slabTest(node, sr, float32(set.boundingTMax(ray.TMax)))

		for i := 0; i < t.arity; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			if node.childIsLeaf[i] {
				leaf := node.leaf[i]
				t.stats.RecordIntersectionTest(int64(leaf.primitiveCount()))
				collectLeafHits(leaf, ray, frame, predicate, set)
			} else {
				stack[sp] = node.childIndex[i]
				sp++
			}
		}
	}

	return set.sorted()
}
