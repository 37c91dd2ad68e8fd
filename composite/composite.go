// Package composite implements the pixel-space composition operators
// (spec.md §4.6): dense⊕dense, dense⊕sparse (decompress-and-blend), and
// sparse⊕sparse→sparse (the "cc" compositor).
package composite

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
)

// Options configures composite operators beyond the process-wide composite
// mode and blend order.
type Options struct {
	// MaxLayers bounds the fragment count kept per pixel when merging two
	// layered Z-buffer fragment lists (spec.md §9 "Layered depth cap",
	// resolved in SPEC_FULL.md §9): 0 means unbounded, i.e. the merge keeps
	// every surviving fragment from both sides.
	MaxLayers int
}

func writeFragment(w dense.Writer, pixel, layer int, f format.Fragment) {
	h := w.Header()
	w.SetColorBytes(pixel, layer, f.Color[:h.ColorFormat.PixelSize()])
	if h.DepthFormat != format.DepthNone {
		w.SetDepthBytes(pixel, layer, f.Depth[:h.DepthFormat.PixelSize()])
	}
}

func readFragment(r dense.Reader, pixel, layer int) format.Fragment {
	h := r.Header()
	var f format.Fragment
	copy(f.Color[:h.ColorFormat.PixelSize()], r.ColorBytes(pixel, layer))
	if h.DepthFormat != format.DepthNone {
		copy(f.Depth[:h.DepthFormat.PixelSize()], r.DepthBytes(pixel, layer))
	}
	return f
}

// zbufferWinner returns whichever of a, b has the lower depth (spec.md
// §4.6 "Z-buffer": "take whichever source has the lower depth").
func zbufferWinner(df format.DepthFormat, a, b format.Fragment) format.Fragment {
	if a.DepthValue(df) <= b.DepthValue(df) {
		return a
	}
	return b
}
