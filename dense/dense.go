// Package dense implements the flat, pointer-backed, and layered dense image
// representations (spec.md §3, §4.2): a header-prefixed buffer holding a
// color pixel array followed by a depth pixel array, or (for layered images)
// num_layers color+depth fragments per pixel stored as two long runs.
//
// Dense is the mutable in-buffer image; PointerImage is the read-only,
// externally-owned counterpart (design note, spec.md §9: "pointer-backed
// read-only images → distinct type" rather than a runtime-checked write
// guard on a single type).
package dense

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// Reader is the read-only surface both Dense and PointerImage satisfy, so
// region copy, encode, and composite operators can accept either without
// branching on the underlying class.
type Reader interface {
	Header() header.Header
	NumLayers() int32
	ColorBytes(pixel, layer int) []byte
	DepthBytes(pixel, layer int) []byte
}

// Writer extends Reader with in-place mutation. PointerImage does not
// implement Writer: writing a borrowed buffer is rejected statically, not
// by a runtime check against the magic class.
type Writer interface {
	Reader
	SetColorBytes(pixel, layer int, b []byte)
	SetDepthBytes(pixel, layer int, b []byte)
	Fragment(pixel, layer int) format.Fragment
	SetFragment(pixel, layer int, frag format.Fragment)
}

// Dense is a flat, in-buffer dense image (spec.md §3's "dense image" and
// "layered image", unified: layered-ness is carried by the header's LAYERED
// flag and the sub-header word rather than a distinct Go type, matching how
// the original stores it — one more bit in the same header word).
type Dense struct {
	buf []byte
}

// Assign writes a new header into buf and returns the bound Dense. It
// rejects a NULL buffer and coerces an invalid color or depth format to
// NONE, reporting INVALID_ENUM through store either way (spec.md §4.2
// "Assign buffer": "reject NULL buffer or invalid formats, coerce unknown
// formats to NONE with an error").
func Assign(store state.Store, buf []byte, cf format.ColorFormat, df format.DepthFormat, width, height, maxPixels int, layered bool, numLayers int32) (Dense, error) {
	if buf == nil {
		store.RaiseError(format.InvalidValue, "dense: Assign: nil buffer")
		return Dense{}, format.NewError(format.InvalidValue, "nil buffer")
	}
	if !cf.Valid() {
		store.RaiseError(format.InvalidEnum, "dense: Assign: invalid color format %d", int32(cf))
		cf = format.ColorNone
	}
	if !df.Valid() {
		store.RaiseError(format.InvalidEnum, "dense: Assign: invalid depth format %d", int32(df))
		df = format.DepthNone
	}
	if layered && df == format.DepthNone {
		store.RaiseError(format.InvalidOperation, "dense: Assign: layered image requires depth")
		return Dense{}, format.NewError(format.InvalidOperation, "layered image without depth")
	}
	if width*height > maxPixels {
		store.RaiseError(format.InvalidValue, "dense: Assign: width*height %d exceeds max_pixels %d", width*height, maxPixels)
		return Dense{}, format.NewError(format.InvalidValue, "width*height exceeds max_pixels")
	}
	if numLayers < 1 {
		numLayers = 1
	}
	magic := format.MagicDense.WithLayered(layered)
	actual := header.DenseSize(cf, df, width, height, layered, int(numLayers))
	if len(buf) < actual {
		store.RaiseError(format.InvalidValue, "dense: Assign: buffer too small for %d bytes", actual)
		return Dense{}, format.NewError(format.InvalidValue, "buffer too small")
	}
	h := header.Header{
		Magic:       magic,
		ColorFormat: cf,
		DepthFormat: df,
		Width:       int32(width),
		Height:      int32(height),
		MaxPixels:   int32(maxPixels),
		ActualBytes: int32(actual),
	}
	header.Encode(buf, h)
	if layered {
		header.PutNumLayers(buf, numLayers)
	}
	return Dense{buf: buf}, nil
}

// Bind reinterprets an already-populated buffer as a Dense without
// rewriting its header, for decode/deserialize paths that have already
// validated the header separately.
func Bind(buf []byte) Dense {
	return Dense{buf: buf}
}

// Header decodes the common header from the bound buffer.
func (d Dense) Header() header.Header {
	return header.Decode(d.buf)
}

// Buf returns the full backing buffer, including the header.
func (d Dense) Buf() []byte {
	return d.buf
}

// NumLayers returns the layer count: the sub-header word for layered
// images, 1 otherwise.
func (d Dense) NumLayers() int32 {
	h := d.Header()
	if !h.Magic.Layered() {
		return 1
	}
	return header.NumLayers(d.buf)
}

func (d Dense) payloadOffset() int {
	h := d.Header()
	if h.Magic.Layered() {
		return header.Size + header.LayeredSubHeaderSize
	}
	return header.Size
}

// colorOffset and depthOffset locate the start of the color and depth runs.
// Per spec.md §3, depth follows color as a separate run of the same pixel
// count (scaled by layer count for layered images).
func (d Dense) colorOffset() int {
	return d.payloadOffset()
}

func (d Dense) depthOffset() int {
	h := d.Header()
	n := int(d.NumLayers())
	pixels := int(h.Width) * int(h.Height) * n
	return d.payloadOffset() + pixels*h.ColorFormat.PixelSize()
}

// index returns the pixel-major, layer-minor slot for (pixel, layer) within
// a color or depth run.
func index(pixel, layer, numLayers int) int {
	return pixel*numLayers + layer
}

// ColorBytes returns the color sample for (pixel, layer) as a slice aliasing
// the backing buffer. layer is ignored (treated as 0) for non-layered
// images.
func (d Dense) ColorBytes(pixel, layer int) []byte {
	h := d.Header()
	n := int(d.NumLayers())
	if !h.Magic.Layered() {
		layer = 0
		n = 1
	}
	size := h.ColorFormat.PixelSize()
	off := d.colorOffset() + index(pixel, layer, n)*size
	return d.buf[off : off+size]
}

// DepthBytes returns the depth sample for (pixel, layer), analogous to
// ColorBytes.
func (d Dense) DepthBytes(pixel, layer int) []byte {
	h := d.Header()
	n := int(d.NumLayers())
	if !h.Magic.Layered() {
		layer = 0
		n = 1
	}
	size := h.DepthFormat.PixelSize()
	if size == 0 {
		return nil
	}
	off := d.depthOffset() + index(pixel, layer, n)*size
	return d.buf[off : off+size]
}

// SetColorBytes overwrites the color sample for (pixel, layer).
func (d Dense) SetColorBytes(pixel, layer int, b []byte) {
	copy(d.ColorBytes(pixel, layer), b)
}

// SetDepthBytes overwrites the depth sample for (pixel, layer).
func (d Dense) SetDepthBytes(pixel, layer int, b []byte) {
	dst := d.DepthBytes(pixel, layer)
	if dst == nil {
		return
	}
	copy(dst, b)
}

// Fragment reads the (pixel, layer) color+depth sample as a format.Fragment.
func (d Dense) Fragment(pixel, layer int) format.Fragment {
	h := d.Header()
	var frag format.Fragment
	copy(frag.Color[:h.ColorFormat.PixelSize()], d.ColorBytes(pixel, layer))
	if h.DepthFormat != format.DepthNone {
		copy(frag.Depth[:h.DepthFormat.PixelSize()], d.DepthBytes(pixel, layer))
	}
	return frag
}

// SetFragment writes a format.Fragment's color+depth sample to (pixel, layer).
func (d Dense) SetFragment(pixel, layer int, frag format.Fragment) {
	h := d.Header()
	d.SetColorBytes(pixel, layer, frag.Color[:h.ColorFormat.PixelSize()])
	if h.DepthFormat != format.DepthNone {
		d.SetDepthBytes(pixel, layer, frag.Depth[:h.DepthFormat.PixelSize()])
	}
}

// SetDimensions changes the logical width/height of an already-assigned
// Dense, rejecting a size whose pixel count exceeds max_pixels, and
// recomputes actual_bytes from the current formats and layer count
// (spec.md §4.2 "Set dimensions").
func (d Dense) SetDimensions(store state.Store, width, height int) error {
	h := d.Header()
	if width*height > int(h.MaxPixels) {
		store.RaiseError(format.InvalidValue, "dense: SetDimensions: width*height %d exceeds max_pixels %d", width*height, h.MaxPixels)
		return format.NewError(format.InvalidValue, "width*height exceeds max_pixels")
	}
	h.Width = int32(width)
	h.Height = int32(height)
	h.ActualBytes = int32(header.DenseSize(h.ColorFormat, h.DepthFormat, width, height, h.Magic.Layered(), int(d.NumLayers())))
	header.Encode(d.buf, h)
	return nil
}

var (
	_ Reader = Dense{}
	_ Writer = Dense{}
)
