package accel

import "github.com/wavefront-render/spatialtracer/pkg/core"

// Variant selects which tree shape Build produces.
type Variant uint8

const (
	// Binary builds a standard two-child BVH (C5).
	Binary Variant = iota
	// Quad builds a 4-wide SIMD-lane BVH (C6).
	Quad
	// Oct builds an 8-wide SIMD-lane BVH (C6).
	Oct
)

// Options configures a Build call. The zero value is not valid; use
// DefaultOptions and override only what differs, matching qbvh.h's
// m_maxPriInLeaf/m_maxNodeDepth defaults (8 and 16) verbatim.
type Options struct {
	// MaxPrimsPerLeaf bounds how many primitives a leaf may pack before
	// the builder considers it full regardless of SAH cost.
	MaxPrimsPerLeaf int

	// MaxDepth bounds recursion; a node at this depth always becomes a
	// leaf no matter how many primitives it still holds.
	MaxDepth int

	// Variant selects Binary, Quad or Oct.
	Variant Variant

	// SAHBins overrides the number of SAH bins (0 uses the default 16,
	// matching bvh_utils.h's BVH_SPLIT_COUNT).
	SAHBins int

	// Logger receives a one-line build summary if non-nil.
	Logger core.Logger
}

// DefaultOptions returns the spec's default build configuration.
func DefaultOptions() Options {
	return Options{
		MaxPrimsPerLeaf: 8,
		MaxDepth:        16,
		Variant:         Binary,
		SAHBins:         sahBinCount,
	}
}

func (o Options) bins() int {
	if o.SAHBins <= 0 {
		return sahBinCount
	}
	return o.SAHBins
}
