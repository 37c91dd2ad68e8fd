package sparse

import (
	"encoding/binary"

	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// Package returns the byte range to hand to the transport: the buffer up to
// actual_bytes. The sparse run stream is the only format the core carries
// across the network (spec.md §6), so this is the send half of the wire
// contract; Unpackage is the receive half.
func Package(store state.Store, s Sparse) ([]byte, error) {
	h := s.Header()
	if !h.Magic.IsSparse() {
		store.RaiseError(format.SanityCheckFail, "sparse: Package: not a sparse image (magic %v)", h.Magic)
		return nil, format.NewError(format.SanityCheckFail, "not a sparse image")
	}
	return s.buf[:h.ActualBytes], nil
}

// Unpackage re-validates a received sparse buffer and rebinds it. Beyond the
// header checks (magic including the layered flag bit, formats), it walks
// the run stream and verifies invariant 2 of spec.md §3: the runs sum to
// exactly width*height pixels and to actual_bytes minus the header size —
// and, for layered streams, that each run's active_fragments equals the sum
// of its per-pixel fragment counts (invariant 4). max_pixels is clamped down
// to width*height, as for dense images.
func Unpackage(store state.Store, buf []byte) (Sparse, error) {
	if len(buf) < header.Size {
		store.RaiseError(format.InvalidValue, "sparse: Unpackage: buffer shorter than header")
		return Sparse{}, format.NewError(format.InvalidValue, "buffer shorter than header")
	}
	h := header.Decode(buf)
	if !h.Magic.IsSparse() {
		store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: invalid magic %v", h.Magic)
		return Sparse{}, format.NewError(format.SanityCheckFail, "invalid magic %v", h.Magic)
	}
	if !h.ColorFormat.Valid() || !h.DepthFormat.Valid() {
		store.RaiseError(format.InvalidEnum, "sparse: Unpackage: invalid format")
		return Sparse{}, format.NewError(format.InvalidEnum, "invalid format")
	}
	layered := h.Magic.Layered()
	hdrSize := header.Size
	if layered {
		if h.DepthFormat == format.DepthNone {
			store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: layered image without depth")
			return Sparse{}, format.NewError(format.SanityCheckFail, "layered image without depth")
		}
		hdrSize += header.LayeredSubHeaderSize
	}
	if int(h.ActualBytes) < hdrSize || len(buf) < int(h.ActualBytes) {
		store.RaiseError(format.InvalidValue, "sparse: Unpackage: buffer shorter than actual_bytes %d", h.ActualBytes)
		return Sparse{}, format.NewError(format.InvalidValue, "buffer shorter than actual_bytes")
	}

	if err := validateRunStream(store, buf[hdrSize:h.ActualBytes], layered, h.ColorFormat, h.DepthFormat, int(h.Width)*int(h.Height)); err != nil {
		return Sparse{}, err
	}

	h.MaxPixels = h.Width * h.Height
	header.Encode(buf, h)
	return Sparse{buf: buf[:h.ActualBytes]}, nil
}

// validateRunStream walks payload as a run stream, checking every read stays
// in bounds, the pixel counts sum to wantPixels, and the stream ends exactly
// at the payload's last byte.
func validateRunStream(store state.Store, payload []byte, layered bool, cf format.ColorFormat, df format.DepthFormat, wantPixels int) error {
	fragSize := format.FragmentSize(cf, df)
	rhSize := runHeaderSize(layered)
	off := 0
	pixels := 0
	for off < len(payload) {
		if off+rhSize > len(payload) {
			store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: truncated run header at byte %d", off)
			return format.NewError(format.SanityCheckFail, "truncated run header")
		}
		rh, n := readRunHeader(payload, off, layered)
		off += n
		pixels += int(rh.Inactive) + int(rh.Active)
		frags := 0
		for i := uint32(0); i < rh.Active; i++ {
			if !layered {
				off += fragSize
				frags++
				continue
			}
			if off+4 > len(payload) {
				store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: truncated fragment count at byte %d", off)
				return format.NewError(format.SanityCheckFail, "truncated fragment count")
			}
			cnt := int(binary.LittleEndian.Uint32(payload[off : off+4]))
			off += 4 + cnt*fragSize
			frags += cnt
		}
		if off > len(payload) {
			store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: run overruns payload by %d bytes", off-len(payload))
			return format.NewError(format.SanityCheckFail, "run overruns payload")
		}
		if layered && frags != int(rh.ActiveFragments) {
			store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: run claims %d active fragments, holds %d", rh.ActiveFragments, frags)
			return format.NewError(format.SanityCheckFail, "active fragment count mismatch")
		}
	}
	if pixels != wantPixels {
		store.RaiseError(format.SanityCheckFail, "sparse: Unpackage: runs cover %d pixels, want %d", pixels, wantPixels)
		return format.NewError(format.SanityCheckFail, "run pixel count mismatch")
	}
	return nil
}
