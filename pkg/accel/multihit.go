package accel

import (
	"math"
	"sort"

	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// multiHitSet accumulates up to k hits for a bounded multi-hit query,
// evicting the farthest kept hit whenever a closer one arrives after the
// set is full. This mirrors SORT's BSSRDFIntersections container
// (fast_bvh.hpp / qbvh.h): a fixed-capacity array plus a running maxT used
// both to prune leaf tests and to know which slot to replace.
type multiHitSet struct {
	k     int
	hits  []prim.Hit
	maxT  float64
	maxAt int
}

func newMultiHitSet(k int) *multiHitSet {
	if k < 1 {
		k = 1
	}
	return &multiHitSet{k: k, hits: make([]prim.Hit, 0, k), maxT: math.Inf(1), maxAt: -1}
}

// boundingTMax returns the distance beyond which a new candidate cannot
// possibly improve the set: the ray's own TMax while the set has room,
// otherwise the farthest currently-kept hit's distance.
func (s *multiHitSet) boundingTMax(rayTMax float64) float64 {
	if len(s.hits) < s.k {
		return rayTMax
	}
	return s.maxT
}

func (s *multiHitSet) insert(h prim.Hit) {
	if len(s.hits) < s.k {
		s.hits = append(s.hits, h)
		s.recomputeMax()
		return
	}
	if h.T >= s.maxT {
		return
	}
	s.hits[s.maxAt] = h
	s.recomputeMax()
}

func (s *multiHitSet) recomputeMax() {
	s.maxT = math.Inf(-1)
	s.maxAt = -1
	for i, h := range s.hits {
		if h.T > s.maxT {
			s.maxT = h.T
			s.maxAt = i
		}
	}
	if len(s.hits) < s.k {
		s.maxT = math.Inf(1)
	}
}

// sorted returns the accumulated hits ordered nearest first.
func (s *multiHitSet) sorted() []prim.Hit {
	out := make([]prim.Hit, len(s.hits))
	copy(out, s.hits)
	sort.Slice(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}
