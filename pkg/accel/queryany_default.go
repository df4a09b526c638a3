//go:build !transparentshadow

package accel

import "github.com/wavefront-render/spatialtracer/pkg/core"

// QueryAny reports whether ray hits anything at all, short-circuiting on
// the first accepted candidate. This is the default any-hit behavior for an
// opaque-only scene. Build with -tags transparentshadow to switch both tree
// types to the nearest-hit-degenerate behavior spec's §4.6.4 describes for
// scenes containing transparent surfaces.
func (t *BinaryTree) QueryAny(ray core.Ray) bool {
	t.stats.RecordRay(true)
	return t.queryAnyShortCircuit(ray)
}

// QueryAny reports whether ray hits anything at all, short-circuiting on
// the first accepted candidate.
func (t *WideTree) QueryAny(ray core.Ray) bool {
	t.stats.RecordRay(true)
	return t.queryAnyShortCircuit(ray)
}
