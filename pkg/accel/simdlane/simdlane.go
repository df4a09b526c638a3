// Package simdlane provides the wide BVH's SIMD-width abstraction: a set
// of N lane-parallel float32 arrays representing one axis's min or max
// bound across every child of a wide node, generic over the lane count N
// (4 for QBVH, 8 for OBVH) and over the underlying float type via
// go-highway's hwy.Floats constraint.
//
// The package exercises github.com/ajroetker/go-highway/hwy for the part of
// its surface this module's retrieval pack actually demonstrates — zeroing
// and storing a lane vector — and falls back to a portable scalar loop for
// the per-lane min/max/compare arithmetic the slab test needs, exactly as
// spec's design notes describe: parameterize over a lane count and a SIMD
// vector type, and fall back to scalar emulation where no concrete
// architecture-specific kernel is available.
package simdlane

import "github.com/ajroetker/go-highway/hwy"

// Lanes holds N lane-parallel values of type T, padded to a fixed width so
// a short wide-node (fewer than N live children) can be tested uniformly:
// padding lanes are set to an identity value that can never produce a
// slab-test hit (e.g. +Inf for a min bound, -Inf for a max bound).
type Lanes[T hwy.Floats] struct {
	values []T
}

// NewLanes allocates a Lanes buffer of width n, zero-initialized through
// hwy's generic zero vector.
func NewLanes[T hwy.Floats](n int) Lanes[T] {
	l := Lanes[T]{values: make([]T, n)}
	zero := hwy.Zero[T]()
	fill := make([]T, zero.NumLanes())
	hwy.Store(zero, fill)
	for i := range l.values {
		if i < len(fill) {
			l.values[i] = fill[i]
		}
	}
	return l
}

// Fill sets every lane to v.
func (l *Lanes[T]) Fill(v T) {
	for i := range l.values {
		l.values[i] = v
	}
}

// Set assigns lane i.
func (l *Lanes[T]) Set(i int, v T) { l.values[i] = v }

// Get reads lane i.
func (l *Lanes[T]) Get(i int) T { return l.values[i] }

// Len reports the lane width.
func (l *Lanes[T]) Len() int { return len(l.values) }

// Min returns a new Lanes holding the per-lane minimum of l and other.
// This is the scalar-emulation fallback the package doc describes: a
// portable loop standing in for a per-ISA vector min instruction.
func (l Lanes[T]) Min(other Lanes[T]) Lanes[T] {
	out := Lanes[T]{values: make([]T, len(l.values))}
	for i := range l.values {
		if l.values[i] < other.values[i] {
			out.values[i] = l.values[i]
		} else {
			out.values[i] = other.values[i]
		}
	}
	return out
}

// Max returns a new Lanes holding the per-lane maximum of l and other.
func (l Lanes[T]) Max(other Lanes[T]) Lanes[T] {
	out := Lanes[T]{values: make([]T, len(l.values))}
	for i := range l.values {
		if l.values[i] > other.values[i] {
			out.values[i] = l.values[i]
		} else {
			out.values[i] = other.values[i]
		}
	}
	return out
}

// LessThanMask returns, for each lane, whether l's lane is less than
// other's — the per-lane compare a slab test reduces to once both bound
// arrays have been prepared.
func (l Lanes[T]) LessThanMask(other Lanes[T]) uint8 {
	var mask uint8
	for i := range l.values {
		if l.values[i] < other.values[i] {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
