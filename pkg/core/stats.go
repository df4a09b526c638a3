package core

import "sync/atomic"

// Stats holds the read-only traversal counters a built tree exposes to its
// host. Every built Tree owns one Stats instance (not a process-wide
// global): a QBVH and an OBVH built side by side in the same test binary
// must not share counters, and a global would make that impossible to avoid.
//
// The ray and intersection-test counters are updated with atomic Add from
// concurrently traversing goroutines; the node, leaf, depth and primitive
// counters are written while the tree is built. The tree never resets any
// of them; the host reads them through Snapshot.
type Stats struct {
	RayCount           atomic.Int64
	ShadowRayCount      atomic.Int64
	IntersectionTests  atomic.Int64
	NodeCount          atomic.Int64
	LeafCount          atomic.Int64
	MaxDepth           atomic.Int64
	PrimitiveCount     atomic.Int64
}

// Snapshot is a point-in-time copy of Stats suitable for logging.
type Snapshot struct {
	RayCount          int64
	ShadowRayCount    int64
	IntersectionTests int64
	NodeCount         int64
	LeafCount         int64
	MaxDepth          int64
	PrimitiveCount    int64
	AveragePrimsPerLeaf float64
}

// Snapshot reads all counters into a plain value.
func (s *Stats) Snapshot() Snapshot {
	leafCount := s.LeafCount.Load()
	primCount := s.PrimitiveCount.Load()
	avg := 0.0
	if leafCount > 0 {
		avg = float64(primCount) / float64(leafCount)
	}
	return Snapshot{
		RayCount:            s.RayCount.Load(),
		ShadowRayCount:      s.ShadowRayCount.Load(),
		IntersectionTests:   s.IntersectionTests.Load(),
		NodeCount:           s.NodeCount.Load(),
		LeafCount:           s.LeafCount.Load(),
		MaxDepth:            s.MaxDepth.Load(),
		PrimitiveCount:      primCount,
		AveragePrimsPerLeaf: avg,
	}
}

// RecordRay increments the ray counter, splitting shadow rays into their
// own bucket the way SORT's sRayCount/sShadowRayCount pair does.
func (s *Stats) RecordRay(shadow bool) {
	s.RayCount.Add(1)
	if shadow {
		s.ShadowRayCount.Add(1)
	}
}

// RecordIntersectionTest increments the per-primitive intersection test
// counter by n (a leaf visit tests every primitive it packs in one step).
func (s *Stats) RecordIntersectionTest(n int64) {
	s.IntersectionTests.Add(n)
}

// Log writes a one-line summary through logger, if non-nil.
func (s *Stats) Log(logger Logger) {
	if logger == nil {
		return
	}
	snap := s.Snapshot()
	logger.Printf("accel: nodes=%d leaves=%d depth=%d prims=%d avg_prims_per_leaf=%.2f rays=%d shadow_rays=%d tests=%d",
		snap.NodeCount, snap.LeafCount, snap.MaxDepth, snap.PrimitiveCount, snap.AveragePrimsPerLeaf,
		snap.RayCount, snap.ShadowRayCount, snap.IntersectionTests)
}
