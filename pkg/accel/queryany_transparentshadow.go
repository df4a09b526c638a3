//go:build transparentshadow

package accel

import "github.com/wavefront-render/spatialtracer/pkg/core"

// QueryAny, under the transparentshadow build tag, degenerates to the
// nearest-hit walk rather than short-circuiting on the first candidate:
// a scene with transparent surfaces needs the actual nearest primitive so
// the caller can consult its material before deciding whether the shadow
// ray is actually occluded. This mirrors SORT's ENABLE_TRANSPARENT_SHADOW
// branch in fast_bvh.hpp, reintroduced here as a Go build tag rather than a
// runtime flag since spec.md calls this "a compile-time configuration, not
// a runtime one."
func (t *BinaryTree) QueryAny(ray core.Ray) bool {
	_, found := t.QueryNearest(ray)
	return found
}

func (t *WideTree) QueryAny(ray core.Ray) bool {
	_, found := t.QueryNearest(ray)
	return found
}
