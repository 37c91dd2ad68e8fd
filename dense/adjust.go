package dense

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// AdjustForOutput strips the LAYERED flag from img's magic and, if the
// one-buffer composite mode is enabled in store and color is present, drops
// the depth run and shrinks actual_bytes to match (spec.md §4.2 "Adjust for
// output").
func AdjustForOutput(store state.Store, img Dense) {
	h := img.Header()
	h.Magic = h.Magic.WithLayered(false)
	if store.GetBoolean(state.NameOneBufferComposite) && h.ColorFormat != format.ColorNone {
		h.DepthFormat = format.DepthNone
	}
	h.ActualBytes = int32(header.DenseSize(h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), false, 1))
	header.Encode(img.buf, h)
}

// AdjustForInput resets img's color and depth formats from the process
// state store and recomputes actual_bytes, for receivers that may observe a
// buffer the sender allocated with a larger max_pixels (spec.md §4.2
// "Adjust for input").
func AdjustForInput(store state.Store, img Dense) {
	h := img.Header()
	h.ColorFormat = format.ColorFormat(store.GetEnum(state.NameColorFormat))
	h.DepthFormat = format.DepthFormat(store.GetEnum(state.NameDepthFormat))
	h.ActualBytes = int32(header.DenseSize(h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), h.Magic.Layered(), int(img.NumLayers())))
	header.Encode(img.buf, h)
}
