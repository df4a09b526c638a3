// Package scene models the narrow inbound/outbound contract the
// acceleration core sits behind: a read-only primitive array, the scene's
// world bounding box, and nothing else. Scene construction, file loading,
// and material graph compilation live outside this module.
package scene

import (
	"github.com/wavefront-render/spatialtracer/pkg/accel"
	"github.com/wavefront-render/spatialtracer/pkg/core"
	"github.com/wavefront-render/spatialtracer/pkg/prim"
)

// Scene is the acceleration core's sole inbound contract: a primitive
// arena plus the tree built over it. A Scene is immutable once built —
// there is no API to add or remove primitives afterwards, matching spec's
// "no dynamic refitting, no instancing" non-goals.
type Scene struct {
	Primitives []prim.Primitive
	Tree       accel.Tree
}

// Build constructs a Scene: it builds the acceleration tree over
// primitives with opts and retains the primitive slice it was built from.
func Build(primitives []prim.Primitive, opts accel.Options) *Scene {
	return &Scene{
		Primitives: primitives,
		Tree:       accel.Build(primitives, opts),
	}
}

// WorldBounds returns the scene's overall bounding box.
func (s *Scene) WorldBounds() core.AABB {
	return s.Tree.Bounds()
}

// PrimitiveCount returns the number of primitives the scene was built from.
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}
