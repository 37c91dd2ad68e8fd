// Package sparse implements the run-length encoded sparse image (spec.md
// §3, §4.3), the scan cursor that is its central primitive (§4.4), and the
// copy/split/interlace transforms built on top of it (§4.5).
package sparse

import (
	"encoding/binary"

	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// Sparse is a run-length encoded image (spec.md §3's "sparse image").
type Sparse struct {
	buf []byte
}

// Bind reinterprets an already-populated buffer as a Sparse, for deserialize
// paths that have already validated the header.
func Bind(buf []byte) Sparse {
	return Sparse{buf: buf}
}

// Assign writes a new header (and, if layered, sub-header) into buf
// followed by payload, and returns the bound Sparse. buf must be at least
// header.Size(+LayeredSubHeaderSize)+len(payload) bytes.
func Assign(store state.Store, buf []byte, cf format.ColorFormat, df format.DepthFormat, width, height, maxPixels int, layered bool, numLayers int32, payload []byte) (Sparse, error) {
	if buf == nil {
		store.RaiseError(format.InvalidValue, "sparse: Assign: nil buffer")
		return Sparse{}, format.NewError(format.InvalidValue, "nil buffer")
	}
	if layered && df == format.DepthNone {
		store.RaiseError(format.InvalidOperation, "sparse: Assign: layered image requires depth")
		return Sparse{}, format.NewError(format.InvalidOperation, "layered image without depth")
	}
	if width*height > maxPixels {
		store.RaiseError(format.InvalidValue, "sparse: Assign: width*height %d exceeds max_pixels %d", width*height, maxPixels)
		return Sparse{}, format.NewError(format.InvalidValue, "width*height exceeds max_pixels")
	}
	if numLayers < 1 {
		numLayers = 1
	}
	hdrSize := header.Size
	if layered {
		hdrSize += header.LayeredSubHeaderSize
	}
	total := hdrSize + len(payload)
	if len(buf) < total {
		store.RaiseError(format.InvalidValue, "sparse: Assign: buffer too small for %d bytes", total)
		return Sparse{}, format.NewError(format.InvalidValue, "buffer too small")
	}
	h := header.Header{
		Magic:       format.MagicSparse.WithLayered(layered),
		ColorFormat: cf,
		DepthFormat: df,
		Width:       int32(width),
		Height:      int32(height),
		MaxPixels:   int32(maxPixels),
		ActualBytes: int32(total),
	}
	header.Encode(buf, h)
	if layered {
		header.PutNumLayers(buf, numLayers)
	}
	copy(buf[hdrSize:total], payload)
	return Sparse{buf: buf[:total]}, nil
}

// Header decodes the common header from the bound buffer.
func (s Sparse) Header() header.Header {
	return header.Decode(s.buf)
}

// Buf returns the full backing buffer, including the header.
func (s Sparse) Buf() []byte {
	return s.buf
}

// NumLayers returns the layer count: the sub-header word for layered
// images, 1 otherwise.
func (s Sparse) NumLayers() int32 {
	h := s.Header()
	if !h.Magic.Layered() {
		return 1
	}
	return header.NumLayers(s.buf)
}

// PayloadOffset returns the byte offset of the run stream within the bound
// buffer.
func (s Sparse) PayloadOffset() int {
	h := s.Header()
	if h.Magic.Layered() {
		return header.Size + header.LayeredSubHeaderSize
	}
	return header.Size
}

// Payload returns the run stream bytes.
func (s Sparse) Payload() []byte {
	h := s.Header()
	return s.buf[s.PayloadOffset():h.ActualBytes]
}

// NewScanCursor returns a Cursor positioned at the start of s's run stream.
func (s Sparse) NewScanCursor() *Cursor {
	h := s.Header()
	return NewCursor(s.buf, s.PayloadOffset(), h.Magic.Layered(), h.ColorFormat, h.DepthFormat)
}

// NumActivePixels walks the full run stream and sums the active pixel
// counts. Supplemented helper (SPEC_FULL.md §7) used by property tests to
// state invariants directly.
func (s Sparse) NumActivePixels() int {
	h := s.Header()
	total := int(h.Width) * int(h.Height)
	c := s.NewScanCursor()
	n := 0
	for i := 0; i < total; i++ {
		active, _, ok := c.NextPixel()
		if !ok {
			break
		}
		if active {
			n++
		}
	}
	return n
}

// NumRuns walks the full run stream and counts run headers. Supplemented
// helper (SPEC_FULL.md §7).
func (s Sparse) NumRuns() int {
	h := s.Header()
	layered := h.Magic.Layered()
	payload := s.Payload()
	off := 0
	runs := 0
	for off < len(payload) {
		rh, n := readRunHeader(payload, off, layered)
		off += n
		runs++
		for i := uint32(0); i < rh.Active; i++ {
			if !layered {
				off += format.FragmentSize(h.ColorFormat, h.DepthFormat)
				continue
			}
			fragCount := int(binary.LittleEndian.Uint32(payload[off : off+4]))
			off += 4
			off += fragCount * format.FragmentSize(h.ColorFormat, h.DepthFormat)
		}
	}
	return runs
}

// FromBuilder finalizes a Builder's payload into a newly assigned Sparse
// backed by a buffer obtained from store under name. Also used by other
// packages (composite's sparse⊕sparse compositor) that build a run stream
// with a Builder of their own and need to package it as a Sparse.
func FromBuilder(store state.Store, name state.Name, cf format.ColorFormat, df format.DepthFormat, width, height, maxPixels int, layered bool, numLayers int32, b *Builder) Sparse {
	payload := b.Bytes()
	hdrSize := header.Size
	if layered {
		hdrSize += header.LayeredSubHeaderSize
	}
	buf := store.GetStateBuffer(name, hdrSize+len(payload))
	out, _ := Assign(store, buf, cf, df, width, height, maxPixels, layered, numLayers, payload)
	return out
}
