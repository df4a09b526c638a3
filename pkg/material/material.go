// Package material carries the one fact this module needs about a
// primitive's material: an opaque identifier the bounded multi-hit query
// uses as a predicate. Shading, BRDFs, and texture evaluation live outside
// this module's scope.
package material

// ID identifies a material assigned to a primitive. The zero value, None,
// means "no material assigned" and never matches a predicate that requires
// a specific id.
type ID uint32

// None is the identifier used for primitives with no assigned material.
const None ID = 0

// Predicate reports whether a primitive carrying id should be accepted by
// a bounded multi-hit query (spec's query_k_nearest material filter).
type Predicate func(id ID) bool

// AcceptAll is the predicate used when a multi-hit query has no material
// filter: every candidate is accepted.
func AcceptAll(ID) bool { return true }

// Only returns a predicate that accepts a single material id.
func Only(id ID) Predicate {
	return func(candidate ID) bool { return candidate == id }
}
