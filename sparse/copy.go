package sparse

import (
	"github.com/parallelviz/tileimage/state"
)

// CopyPixelRange scans to skip offset pixels, then scans-and-copies
// numPixels pixels into a freshly allocated Sparse (spec.md §4.5 "Copy
// pixel range"). offset=0, numPixels=src's full pixel count is special-
// cased to a byte-for-byte copy of the whole buffer.
func CopyPixelRange(store state.Store, name state.Name, src Sparse, offset, numPixels int) Sparse {
	store.CompressBegin()
	defer store.CompressEnd()

	h := src.Header()
	total := int(h.Width) * int(h.Height)
	if offset == 0 && numPixels == total {
		buf := store.GetStateBuffer(name, len(src.buf))
		copy(buf, src.buf)
		return Bind(buf[:len(src.buf)])
	}

	layered := h.Magic.Layered()
	c := src.NewScanCursor()
	c.Skip(offset)
	b := NewBuilder(layered, h.ColorFormat, h.DepthFormat)
	c.CopyTo(b, numPixels)

	return FromBuilder(store, name, h.ColorFormat, h.DepthFormat, numPixels, 1, numPixels, layered, src.NumLayers(), b)
}
