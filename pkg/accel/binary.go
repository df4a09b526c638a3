package accel

import (
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// binaryNode is a compact, array-backed BVH node: interior nodes store the
// index of their second child (the first child is always the following
// array slot) and a split axis for traversal ordering; leaf nodes store an
// offset and count into the builder's reordered primitive array. This
// layout replaces the teacher's pointer-linked BVHNode (pkg/core/bvh.go in
// the retrieved snapshot) with the flat array PBRT-style renderers use,
// which is what lets traversal below run as an iterative loop over a fixed
// stack instead of recursion.
type binaryNode struct {
	bounds      core.AABB
	offset      int32 // primOffset for a leaf, secondChildOffset for an interior node
	primCount   uint16
	splitAxis   uint8
}

func (n *binaryNode) isLeaf() bool { return n.primCount > 0 }

// BinaryTree is a two-child BVH built with the binned SAH evaluator (C5).
type BinaryTree struct {
	nodes      []binaryNode
	primitives []prim.Primitive // reordered so each leaf's primitives are contiguous
	opts       Options
	stats      core.Stats
}

// BuildBinary constructs a binary BVH over primitives.
func BuildBinary(primitives []prim.Primitive, opts Options) *BinaryTree {
	t := &BinaryTree{opts: opts}
	if len(primitives) == 0 {
		return t
	}

	buf := BuildPrimitives(primitives)
	t.primitives = make([]prim.Primitive, 0, len(primitives))
	t.nodes = make([]binaryNode, 0, 2*len(primitives))

	t.build(buf, 0, len(buf), primitives, 0)

	t.stats.NodeCount.Store(int64(len(t.nodes)))
	for i := range t.nodes {
		if t.nodes[i].isLeaf() {
			t.stats.LeafCount.Add(1)
			t.stats.PrimitiveCount.Add(int64(t.nodes[i].primCount))
		}
	}
	t.stats.Log(opts.Logger)
	return t
}

// build constructs the subtree over buf[start:end], appends it to t.nodes
// and t.primitives, and returns the index of the node it created.
func (t *BinaryTree) build(buf []BuildPrimitive, start, end int, src []prim.Primitive, depth int) int {
	if depth > int(t.stats.MaxDepth.Load()) {
		t.stats.MaxDepth.Store(int64(depth))
	}

	bounds := boundsOf(buf, start, end)
	count := end - start

	makeLeaf := func() int {
		offset := int32(len(t.primitives))
		for i := start; i < end; i++ {
			t.primitives = append(t.primitives, src[buf[i].Index])
		}
		idx := len(t.nodes)
		t.nodes = append(t.nodes, binaryNode{bounds: bounds, offset: offset, primCount: uint16(count)})
		return idx
	}

	if count <= t.opts.MaxPrimsPerLeaf || depth >= t.opts.MaxDepth {
		return makeLeaf()
	}

	split := pickBestSplit(buf, start, end, bounds, t.opts.bins())
	if !split.valid() || float64(count) <= split.cost {
		return makeLeaf()
	}

	mid := partition(buf, start, end, split.axis, split.pos)
	if mid == start || mid == end {
		return makeLeaf()
	}

	idx := len(t.nodes)
	t.nodes = append(t.nodes, binaryNode{bounds: bounds, splitAxis: uint8(split.axis)})

	t.build(buf, start, mid, src, depth+1)
	secondChild := t.build(buf, mid, end, src, depth+1)

	t.nodes[idx].offset = int32(secondChild)
	return idx
}

// Bounds returns the tree's root bounding box, or a degenerate empty box
// (spec's EmptyScene condition) if no primitives were built.
func (t *BinaryTree) Bounds() core.AABB {
	if len(t.nodes) == 0 {
		return core.EmptyAABB()
	}
	return t.nodes[0].bounds
}

// Stats returns the tree's read-only traversal counters.
func (t *BinaryTree) Stats() *core.Stats { return &t.stats }

// stackDepth sizes a traversal stack to max_depth*2 (spec 5): a binary tree
// pushes exactly two entries per interior level, so a stack this deep can
// never overflow regardless of how deep the build actually went.
func (t *BinaryTree) stackDepth() int {
	d := t.opts.MaxDepth * 2
	if d < 2 {
		d = 2
	}
	return d
}

// QueryNearest finds the closest primitive the ray hits, narrowing
// ray.TMax as candidates are found so later subtrees outside the current
// best distance are skipped without being visited.
func (t *BinaryTree) QueryNearest(ray core.Ray) (prim.Hit, bool) {
	t.stats.RecordRay(ray.Shadow)
	if len(t.nodes) == 0 {
		return prim.Hit{}, false
	}

	stack := make([]int32, t.stackDepth())
	sp := 0
	stack[sp] = 0
	sp++

	var best prim.Hit
	found := false

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &t.nodes[nodeIdx]

		if _, hit := node.bounds.HitInterval(ray); !hit {
			continue
		}

		if node.isLeaf() {
			t.stats.RecordIntersectionTest(int64(node.primCount))
			for i := int32(0); i < int32(node.primCount); i++ {
				p := t.primitives[node.offset+i]
				var h prim.Hit
				if p.Intersect(ray, &h) {
					ray.TMax = h.T
					best = h
					found = true
				}
			}
			continue
		}

		first, second := nodeIdx+1, node.offset
		// Push the farther child first so the nearer one, pushed last, is
		// popped and visited first (push-farther-then-nearer).
		if ray.Direction.Component(int(node.splitAxis)) < 0 {
			first, second = second, first
		}
		stack[sp] = second
		sp++
		stack[sp] = first
		sp++
	}

	return best, found
}

// queryAnyShortCircuit is the default any-hit walk: it returns as soon as
// any primitive is found, without regard to which one is nearest. Split
// into its own function (rather than inlined in QueryAny) so the
// transparentshadow build variant in queryany_transparentshadow.go
// can sit beside it without duplicating the traversal loop.
func (t *BinaryTree) queryAnyShortCircuit(ray core.Ray) bool {
	if len(t.nodes) == 0 {
		return false
	}

	stack := make([]int32, t.stackDepth())
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &t.nodes[nodeIdx]

		if _, hit := node.bounds.HitInterval(ray); !hit {
			continue
		}

		if node.isLeaf() {
			t.stats.RecordIntersectionTest(int64(node.primCount))
			for i := int32(0); i < int32(node.primCount); i++ {
				p := t.primitives[node.offset+i]
				var h prim.Hit
				if p.Intersect(ray, &h) {
					return true
				}
			}
			continue
		}

		stack[sp] = nodeIdx + 1
		sp++
		stack[sp] = node.offset
		sp++
	}
	return false
}

// QueryKNearest collects up to k hits satisfying predicate, ordered nearest
// first. When more than k candidates qualify, the farthest already-kept hit
// is evicted in favor of a closer one (spec's bounded multi-hit, grounded on
// SORT's BSSRDFIntersections::ResolveMaxDepth farthest-replace rule).
func (t *BinaryTree) QueryKNearest(ray core.Ray, k int, predicate material.Predicate) []prim.Hit {
	t.stats.RecordRay(ray.Shadow)
	set := newMultiHitSet(k)
	if len(t.nodes) == 0 {
		return set.sorted()
	}

	stack := make([]int32, t.stackDepth())
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &t.nodes[nodeIdx]

		if _, hit := node.bounds.HitInterval(ray); !hit {
			continue
		}

		if node.isLeaf() {
			t.stats.RecordIntersectionTest(int64(node.primCount))
			for i := int32(0); i < int32(node.primCount); i++ {
				p := t.primitives[node.offset+i]
				if !predicate(p.MaterialID()) {
					continue
				}
				var h prim.Hit
				localRay := ray
				localRay.TMax = set.boundingTMax(ray.TMax)
				if p.Intersect(localRay, &h) {
					set.insert(h)
				}
			}
			continue
		}

		stack[sp] = nodeIdx + 1
		sp++
		stack[sp] = node.offset
		sp++
	}

	return set.sorted()
}
