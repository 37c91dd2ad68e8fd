package dense

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// Package returns the byte range to hand to the transport: the buffer up to
// actual_bytes. Pointer-backed images cannot be packaged (invariant 5,
// spec.md §3) since actual_bytes is the −1 sentinel; calling Package on one
// raises INVALID_OPERATION.
func Package(store state.Store, img Dense) ([]byte, error) {
	h := img.Header()
	if h.ActualBytes == header.ActualBytesPointerSentinel {
		store.RaiseError(format.InvalidOperation, "dense: Package: pointer-backed image cannot be packaged")
		return nil, format.NewError(format.InvalidOperation, "pointer-backed image cannot be packaged")
	}
	return img.buf[:h.ActualBytes], nil
}

// Unpackage validates a received buffer's header and rebinds it as a Dense.
// It checks magic validity, format validity, and that actual_bytes matches
// the size the formats/dimensions/layer-count predict, then clamps
// max_pixels down to width*height (spec.md §4.2 "Package/unpackage": "re-
// validates the header").
func Unpackage(store state.Store, buf []byte) (Dense, error) {
	if len(buf) < header.Size {
		store.RaiseError(format.InvalidValue, "dense: Unpackage: buffer shorter than header")
		return Dense{}, format.NewError(format.InvalidValue, "buffer shorter than header")
	}
	h := header.Decode(buf)
	if !h.Magic.Valid() || h.Magic.IsDensePointer() {
		store.RaiseError(format.SanityCheckFail, "dense: Unpackage: invalid magic %v", h.Magic)
		return Dense{}, format.NewError(format.SanityCheckFail, "invalid magic %v", h.Magic)
	}
	if !h.ColorFormat.Valid() || !h.DepthFormat.Valid() {
		store.RaiseError(format.InvalidEnum, "dense: Unpackage: invalid format")
		return Dense{}, format.NewError(format.InvalidEnum, "invalid format")
	}
	numLayers := int32(1)
	if h.Magic.Layered() {
		if len(buf) < header.Size+header.LayeredSubHeaderSize {
			store.RaiseError(format.InvalidValue, "dense: Unpackage: buffer shorter than layered sub-header")
			return Dense{}, format.NewError(format.InvalidValue, "buffer shorter than layered sub-header")
		}
		numLayers = header.NumLayers(buf)
	}
	want := header.DenseSize(h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), h.Magic.Layered(), int(numLayers))
	if int(h.ActualBytes) != want {
		store.RaiseError(format.SanityCheckFail, "dense: Unpackage: actual_bytes %d does not match computed size %d", h.ActualBytes, want)
		return Dense{}, format.NewError(format.SanityCheckFail, "actual_bytes mismatch")
	}
	if len(buf) < want {
		store.RaiseError(format.InvalidValue, "dense: Unpackage: buffer shorter than actual_bytes")
		return Dense{}, format.NewError(format.InvalidValue, "buffer shorter than actual_bytes")
	}
	h.MaxPixels = h.Width * h.Height
	header.Encode(buf, h)
	return Dense{buf: buf}, nil
}
