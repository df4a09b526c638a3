package accel

import (
	"math"
	"math/bits"

	"github.com/wavefront-render/spatialtracer/pkg/accel/simdlane"
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/material"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// trianglePack holds up to t.arity triangles' vertex positions as
// lane-parallel float32 arrays (qbvh.h's Triangle4/Triangle8), plus a
// per-lane validity mask: a partially filled pack (the tail of a leaf
// whose triangle count isn't a multiple of the lane width) leaves its
// unused lanes unset in valid, so they can never report a hit regardless
// of what garbage or zero geometry sits in their lanes.
type trianglePack struct {
	v0x, v0y, v0z simdlane.Lanes[float32]
	v1x, v1y, v1z simdlane.Lanes[float32]
	v2x, v2y, v2z simdlane.Lanes[float32]
	normalX, normalY, normalZ simdlane.Lanes[float32]

	matID []material.ID
	hasUV []bool
	uv0, uv1, uv2 []core.Vec2

	valid uint8
}

func newTrianglePack(width int) *trianglePack {
	return &trianglePack{
		v0x: simdlane.NewLanes[float32](width), v0y: simdlane.NewLanes[float32](width), v0z: simdlane.NewLanes[float32](width),
		v1x: simdlane.NewLanes[float32](width), v1y: simdlane.NewLanes[float32](width), v1z: simdlane.NewLanes[float32](width),
		v2x: simdlane.NewLanes[float32](width), v2y: simdlane.NewLanes[float32](width), v2z: simdlane.NewLanes[float32](width),
		normalX: simdlane.NewLanes[float32](width), normalY: simdlane.NewLanes[float32](width), normalZ: simdlane.NewLanes[float32](width),
		matID: make([]material.ID, width),
		hasUV: make([]bool, width),
		uv0:   make([]core.Vec2, width),
		uv1:   make([]core.Vec2, width),
		uv2:   make([]core.Vec2, width),
	}
}

func (p *trianglePack) set(i int, t *prim.Triangle) {
	p.v0x.Set(i, float32(t.V0.X))
	p.v0y.Set(i, float32(t.V0.Y))
	p.v0z.Set(i, float32(t.V0.Z))
	p.v1x.Set(i, float32(t.V1.X))
	p.v1y.Set(i, float32(t.V1.Y))
	p.v1z.Set(i, float32(t.V1.Z))
	p.v2x.Set(i, float32(t.V2.X))
	p.v2y.Set(i, float32(t.V2.Y))
	p.v2z.Set(i, float32(t.V2.Z))
	n := t.Normal()
	p.normalX.Set(i, float32(n.X))
	p.normalY.Set(i, float32(n.Y))
	p.normalZ.Set(i, float32(n.Z))
	p.matID[i] = t.MaterialID()
	p.hasUV[i] = t.HasUV()
	p.uv0[i], p.uv1[i], p.uv2[i] = t.UV0, t.UV1, t.UV2
	p.valid |= 1 << uint(i)
}

// packTriangles freezes triangles into lane-width packs: each full pack of
// width triangles becomes one trianglePack, and a final partial pack (if
// any) freezes with its remaining lanes left invalid, per spec 4.6.2.
func packTriangles(triangles []*prim.Triangle, width int) []*trianglePack {
	if len(triangles) == 0 {
		return nil
	}
	packs := make([]*trianglePack, 0, (len(triangles)+width-1)/width)
	for start := 0; start < len(triangles); start += width {
		end := start + width
		if end > len(triangles) {
			end = len(triangles)
		}
		pack := newTrianglePack(width)
		for i := start; i < end; i++ {
			pack.set(i-start, triangles[i])
		}
		packs = append(packs, pack)
	}
	return packs
}

// rayFrame is the watertight triangle test's per-ray setup: the axis
// permutation and shear constants of Woop, Benthin & Wald (2013),
// computed once per query and shared across every triangle pack the
// traversal visits instead of being recomputed per primitive — the
// packed-leaf analogue of spec 4.6.3's "precompute a SimdRay... broadcast
// ... once" for the part of the leaf test that doesn't vary per lane.
type rayFrame struct {
	kx, ky, kz int
	sx, sy, sz float32
	ox, oy, oz float32
}

func newRayFrame(ray core.Ray) rayFrame {
	kz := ray.MajorAxis()
	kx := kz + 1
	if kx == 3 {
		kx = 0
	}
	ky := kx + 1
	if ky == 3 {
		ky = 0
	}
	dz := ray.Direction.Component(kz)
	if dz < 0 {
		kx, ky = ky, kx
	}
	return rayFrame{
		kx: kx, ky: ky, kz: kz,
		sx: float32(ray.Direction.Component(kx) / dz),
		sy: float32(ray.Direction.Component(ky) / dz),
		sz: float32(1.0 / dz),
		ox: float32(ray.Origin.X), oy: float32(ray.Origin.Y), oz: float32(ray.Origin.Z),
	}
}

// project translates world-space vertex (vx,vy,vz) into the ray's sheared
// frame: subtract the ray origin, then permute/shear exactly as
// Triangle.Intersect does per vertex.
func (f rayFrame) project(vx, vy, vz float32) (px, py, pz float32) {
	d := [3]float32{vx - f.ox, vy - f.oy, vz - f.oz}
	px = d[f.kx] - f.sx*d[f.kz]
	py = d[f.ky] - f.sy*d[f.kz]
	pz = f.sz * d[f.kz]
	return
}

// intersectTriangleLane runs the watertight edge-function test for a
// single lane of pack, bounded by ray's current [TMin, TMax]. It is the
// lane-granular core both intersectTrianglePack (nearest-hit) and
// collectTriangleHits (bounded multi-hit) build on.
func intersectTriangleLane(pack *trianglePack, i int, frame rayFrame, ray core.Ray) (prim.Hit, bool) {
	var hit prim.Hit

	ax, ay, az := frame.project(pack.v0x.Get(i), pack.v0y.Get(i), pack.v0z.Get(i))
	bx, by, bz := frame.project(pack.v1x.Get(i), pack.v1y.Get(i), pack.v1z.Get(i))
	cx, cy, cz := frame.project(pack.v2x.Get(i), pack.v2y.Get(i), pack.v2z.Get(i))

	u := cx*by - cy*bx
	v := ax*cy - ay*cx
	w := bx*ay - by*ax
	if (u < 0 || v < 0 || w < 0) && (u > 0 || v > 0 || w > 0) {
		return hit, false
	}
	det := u + v + w
	if det == 0 {
		return hit, false // degenerate triangle, spec 4.6.5
	}

	tMaxF := float32(ray.TMax)
	tScaled := u*az + v*bz + w*cz
	if det < 0 {
		if tScaled >= 0 || tScaled < tMaxF*det {
			return hit, false
		}
	} else {
		if tScaled <= 0 || tScaled > tMaxF*det {
			return hit, false
		}
	}

	rcpDet := 1 / det
	tHit := tScaled * rcpDet
	if tHit < float32(ray.TMin) {
		return hit, false
	}

	b0, b1, b2 := u*rcpDet, v*rcpDet, w*rcpDet
	hit.T = float64(tHit)
	hit.Point = ray.At(hit.T)
	hit.Material = pack.matID[i]
	if pack.hasUV[i] {
		hit.UV = core.Vec2{
			X: float64(b0)*pack.uv0[i].X + float64(b1)*pack.uv1[i].X + float64(b2)*pack.uv2[i].X,
			Y: float64(b0)*pack.uv0[i].Y + float64(b1)*pack.uv1[i].Y + float64(b2)*pack.uv2[i].Y,
		}
	} else {
		hit.UV = core.Vec2{X: float64(b1), Y: float64(b2)}
	}
	normal := core.Vec3{X: float64(pack.normalX.Get(i)), Y: float64(pack.normalY.Get(i)), Z: float64(pack.normalZ.Get(i))}
	hit.SetFaceNormal(ray, normal)
	return hit, true
}

// intersectTrianglePack tests every valid lane of pack against ray
// (spec 4.6.3's "run the watertight triangle test across N lanes
// simultaneously"), keeping only the nearest hit.
func intersectTrianglePack(pack *trianglePack, frame rayFrame, ray core.Ray) (prim.Hit, bool) {
	var best prim.Hit
	found := false
	for i := 0; i < pack.v0x.Len(); i++ {
		if pack.valid&(1<<uint(i)) == 0 {
			continue
		}
		if h, ok := intersectTriangleLane(pack, i, frame, ray); ok {
			ray.TMax = h.T
			best = h
			found = true
		}
	}
	return best, found
}

// collectTriangleHits tests every valid, predicate-matching lane of pack
// and inserts qualifying hits into set, narrowing the per-lane search
// bound to the set's current farthest-kept distance as it fills.
func collectTriangleHits(pack *trianglePack, frame rayFrame, ray core.Ray, predicate material.Predicate, set *multiHitSet) {
	for i := 0; i < pack.v0x.Len(); i++ {
		if pack.valid&(1<<uint(i)) == 0 {
			continue
		}
		if !predicate(pack.matID[i]) {
			continue
		}
		bounded := ray
		bounded.TMax = set.boundingTMax(ray.TMax)
		if h, ok := intersectTriangleLane(pack, i, frame, bounded); ok {
			set.insert(h)
		}
	}
}

// linePack holds up to t.arity tapered-radius line segments as
// lane-parallel float32 arrays: origin, normalized axis, length and the
// R0/slope pair the per-lane quadratic solve needs to recover the radius
// at any point along the segment (see prim.Line.Intersect, which this
// generalizes to a packed lane loop).
type linePack struct {
	p0x, p0y, p0z    simdlane.Lanes[float32]
	axisX, axisY, axisZ simdlane.Lanes[float32]
	length, r0, slope simdlane.Lanes[float32]

	matID []material.ID
	valid uint8
}

func newLinePack(width int) *linePack {
	return &linePack{
		p0x: simdlane.NewLanes[float32](width), p0y: simdlane.NewLanes[float32](width), p0z: simdlane.NewLanes[float32](width),
		axisX: simdlane.NewLanes[float32](width), axisY: simdlane.NewLanes[float32](width), axisZ: simdlane.NewLanes[float32](width),
		length: simdlane.NewLanes[float32](width), r0: simdlane.NewLanes[float32](width), slope: simdlane.NewLanes[float32](width),
		matID: make([]material.ID, width),
	}
}

func (p *linePack) set(i int, l *prim.Line) {
	delta := l.P1.Subtract(l.P0)
	length := delta.Length()
	var axis core.Vec3
	var slope float64
	if length > 0 {
		axis = delta.Normalize()
		slope = (l.R1 - l.R0) / length
	}
	p.p0x.Set(i, float32(l.P0.X))
	p.p0y.Set(i, float32(l.P0.Y))
	p.p0z.Set(i, float32(l.P0.Z))
	p.axisX.Set(i, float32(axis.X))
	p.axisY.Set(i, float32(axis.Y))
	p.axisZ.Set(i, float32(axis.Z))
	p.length.Set(i, float32(length))
	p.r0.Set(i, float32(l.R0))
	p.slope.Set(i, float32(slope))
	p.matID[i] = l.MaterialID()
	p.valid |= 1 << uint(i)
}

// packLines freezes lines into lane-width packs, mirroring packTriangles.
func packLines(lines []*prim.Line, width int) []*linePack {
	if len(lines) == 0 {
		return nil
	}
	packs := make([]*linePack, 0, (len(lines)+width-1)/width)
	for start := 0; start < len(lines); start += width {
		end := start + width
		if end > len(lines) {
			end = len(lines)
		}
		pack := newLinePack(width)
		for i := start; i < end; i++ {
			pack.set(i-start, lines[i])
		}
		packs = append(packs, pack)
	}
	return packs
}

// lineNormalAt computes the cone's outward normal, mirroring
// prim.Line.normalAt; duplicated here rather than exported because it
// needs no access to Line's own fields once axis/slope are unpacked.
func lineNormalAt(axis core.Vec3, slope float64, perp core.Vec3, radius float64, r1GEr0 bool) core.Vec3 {
	if perp.LengthSquared() < 1e-16 {
		if r1GEr0 {
			return axis.Negate()
		}
		return axis
	}
	n := perp.Subtract(axis.Multiply(radius * slope))
	return n.Normalize()
}

// intersectLineLane runs the tapered-frustum quadratic solve for a single
// lane of pack, bounded by ray's current [TMin, TMax].
func intersectLineLane(pack *linePack, i int, ray core.Ray) (prim.Hit, bool) {
	var hit prim.Hit

	length := float64(pack.length.Get(i))
	if length == 0 {
		return hit, false
	}
	axis := core.Vec3{X: float64(pack.axisX.Get(i)), Y: float64(pack.axisY.Get(i)), Z: float64(pack.axisZ.Get(i))}
	p0 := core.Vec3{X: float64(pack.p0x.Get(i)), Y: float64(pack.p0y.Get(i)), Z: float64(pack.p0z.Get(i))}
	r0 := float64(pack.r0.Get(i))
	slope := float64(pack.slope.Get(i))

	o := ray.Origin.Subtract(p0)
	oAxial := o.Dot(axis)
	dAxial := ray.Direction.Dot(axis)
	oPerp := o.Subtract(axis.Multiply(oAxial))
	dPerp := ray.Direction.Subtract(axis.Multiply(dAxial))

	c0 := r0 + slope*oAxial
	c1 := slope * dAxial

	a := dPerp.Dot(dPerp) - c1*c1
	b := oPerp.Dot(dPerp) - c0*c1
	c := oPerp.Dot(oPerp) - c0*c0

	var t0, t1 float64
	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return hit, false
		}
		t0 = -c / (2 * b)
		t1 = t0
	} else {
		disc := b*b - a*c
		if disc < 0 {
			return hit, false
		}
		sq := math.Sqrt(disc)
		t0 = (-b - sq) / a
		t1 = (-b + sq) / a
		if t0 > t1 {
			t0, t1 = t1, t0
		}
	}

	for _, t := range [2]float64{t0, t1} {
		if t < ray.TMin || t > ray.TMax {
			continue
		}
		s := oAxial + dAxial*t
		if s < 0 || s > length {
			continue
		}
		radius := r0 + slope*s
		if radius < 0 {
			continue
		}

		hit.T = t
		hit.Point = ray.At(t)
		hit.Material = pack.matID[i]
		perp := oPerp.Add(dPerp.Multiply(t))
		outward := lineNormalAt(axis, slope, perp, radius, slope >= 0)
		hit.SetFaceNormal(ray, outward)
		hit.UV = core.Vec2{X: s / length, Y: 0}
		return hit, true
	}
	return hit, false
}

// intersectLinePack tests every valid lane of pack, keeping only the
// nearest hit under ray.TMax.
func intersectLinePack(pack *linePack, ray core.Ray) (prim.Hit, bool) {
	var best prim.Hit
	found := false
	for i := 0; i < pack.length.Len(); i++ {
		if pack.valid&(1<<uint(i)) == 0 {
			continue
		}
		if h, ok := intersectLineLane(pack, i, ray); ok {
			ray.TMax = h.T
			best = h
			found = true
		}
	}
	return best, found
}

// collectLineHits tests every valid, predicate-matching lane of pack and
// inserts qualifying hits into set.
func collectLineHits(pack *linePack, ray core.Ray, predicate material.Predicate, set *multiHitSet) {
	for i := 0; i < pack.length.Len(); i++ {
		if pack.valid&(1<<uint(i)) == 0 {
			continue
		}
		if !predicate(pack.matID[i]) {
			continue
		}
		bounded := ray
		bounded.TMax = set.boundingTMax(ray.TMax)
		if h, ok := intersectLineLane(pack, i, bounded); ok {
			set.insert(h)
		}
	}
}

// wideLeaf is a wide BVH leaf's primitive storage: triangles and lines
// are SIMD-packed into lane-width groups (spec 4.6.1's Triangle_Pack /
// Line_Pack), while every other primitive kind falls back to a small
// scalar overflow list, tested one at a time exactly as the binary tree's
// leaves are.
type wideLeaf struct {
	triangles []*trianglePack
	lines     []*linePack
	overflow  []prim.Primitive
}

// primitiveCount reports how many source primitives this leaf holds,
// across packed lanes and the overflow list, for traversal stats.
func (l *wideLeaf) primitiveCount() int {
	n := len(l.overflow)
	for _, p := range l.triangles {
		n += bits.OnesCount8(p.valid)
	}
	for _, p := range l.lines {
		n += bits.OnesCount8(p.valid)
	}
	return n
}

// buildLeaf classifies buf[start:end]'s primitives by concrete Go type
// and freezes them into packs (triangles, lines) or the scalar overflow
// list (everything else), per spec 4.6.2.
func (t *WideTree) buildLeaf(buf []BuildPrimitive, start, end int, src []prim.Primitive) *wideLeaf {
	leaf := &wideLeaf{}
	var triangles []*prim.Triangle
	var lines []*prim.Line

	for i := start; i < end; i++ {
		switch p := src[buf[i].Index].(type) {
		case *prim.Triangle:
			triangles = append(triangles, p)
		case *prim.Line:
			lines = append(lines, p)
		default:
			leaf.overflow = append(leaf.overflow, p)
		}
	}

	leaf.triangles = packTriangles(triangles, t.arity)
	leaf.lines = packLines(lines, t.arity)
	return leaf
}

// testLeafNearest tests leaf's triangle packs, then its line packs, then
// its scalar overflow primitives against ray, in the order spec 4.6.3
// fixes for a wide leaf visit, narrowing as it finds closer hits.
func testLeafNearest(leaf *wideLeaf, ray core.Ray, frame rayFrame) (prim.Hit, bool) {
	var best prim.Hit
	found := false

	for _, pack := range leaf.triangles {
		if h, ok := intersectTrianglePack(pack, frame, ray); ok {
			ray.TMax = h.T
			best = h
			found = true
		}
	}
	for _, pack := range leaf.lines {
		if h, ok := intersectLinePack(pack, ray); ok {
			ray.TMax = h.T
			best = h
			found = true
		}
	}
	for _, p := range leaf.overflow {
		var h prim.Hit
		if p.Intersect(ray, &h) {
			ray.TMax = h.T
			best = h
			found = true
		}
	}

	return best, found
}

// testLeafAny reports whether anything in leaf hits ray, in the same
// triangle-pack / line-pack / overflow order as testLeafNearest.
func testLeafAny(leaf *wideLeaf, ray core.Ray, frame rayFrame) bool {
	for _, pack := range leaf.triangles {
		if _, ok := intersectTrianglePack(pack, frame, ray); ok {
			return true
		}
	}
	for _, pack := range leaf.lines {
		if _, ok := intersectLinePack(pack, ray); ok {
			return true
		}
	}
	for _, p := range leaf.overflow {
		var h prim.Hit
		if p.Intersect(ray, &h) {
			return true
		}
	}
	return false
}

// collectLeafHits inserts every predicate-matching hit in leaf into set,
// in the same triangle-pack / line-pack / overflow order.
func collectLeafHits(leaf *wideLeaf, ray core.Ray, frame rayFrame, predicate material.Predicate, set *multiHitSet) {
	for _, pack := range leaf.triangles {
		collectTriangleHits(pack, frame, ray, predicate, set)
	}
	for _, pack := range leaf.lines {
		collectLineHits(pack, ray, predicate, set)
	}
	for _, p := range leaf.overflow {
		if !predicate(p.MaterialID()) {
			continue
		}
		var h prim.Hit
		bounded := ray
		bounded.TMax = set.boundingTMax(ray.TMax)
		if p.Intersect(bounded, &h) {
			set.insert(h)
		}
	}
}
