// Package tile implements the tile extraction glue (spec.md §4.7): viewport
// intersection, copying a rendered region into a tile buffer with the
// surrounding area cleared, and the floating-viewport render-reuse guard.
package tile

import "github.com/parallelviz/tileimage/dense"

// Viewport is an axis-aligned pixel rectangle with origin at the
// bottom-left corner (spec.md §5's coordinate convention), used for both
// the screen_viewport (valid region in the rendered buffer) and
// target_viewport (region within a tile).
type Viewport struct {
	X, Y, W, H int
}

// Empty reports whether v covers zero pixels.
func (v Viewport) Empty() bool {
	return v.W <= 0 || v.H <= 0
}

// Contains reports whether v fully encloses other (SPEC_FULL.md §7 supplemented
// feature: "Viewport.Contains/Intersect as named, reusable operations").
func (v Viewport) Contains(other Viewport) bool {
	if other.Empty() {
		return true
	}
	return other.X >= v.X && other.Y >= v.Y &&
		other.X+other.W <= v.X+v.W && other.Y+other.H <= v.Y+v.H
}

// Intersect returns the overlapping rectangle of v and other, and whether
// one exists (false for a disjoint pair — spec.md §4.7's "geometry outside
// tile" case).
func (v Viewport) Intersect(other Viewport) (Viewport, bool) {
	x0 := max(v.X, other.X)
	y0 := max(v.Y, other.Y)
	x1 := min(v.X+v.W, other.X+other.W)
	y1 := min(v.Y+v.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return Viewport{}, false
	}
	return Viewport{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// ToRegion converts v to a dense.Region expressed relative to origin (the
// caller translates v into the target buffer's local coordinate frame
// first, typically by subtracting the target buffer's own viewport origin).
func (v Viewport) ToRegion(origin Viewport) dense.Region {
	return dense.Region{X: v.X - origin.X, Y: v.Y - origin.Y, W: v.W, H: v.H}
}
