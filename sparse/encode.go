package sparse

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/state"
)

// isActive implements spec.md §4.3's activity predicate, derived from the
// current composite mode: Z-buffer checks depth against 1.0, blend checks
// alpha against the background's alpha; blend on a color format without
// alpha (RGB-float) checks depth instead when the image has depth. When no
// usable channel is present (Z-buffer without depth, or open question (a),
// spec.md §9: RGB-float under blend with no depth), every pixel is treated
// as active and a one-time warning is raised, since the predicate would
// otherwise degenerate silently.
func isActive(store state.Store, mode format.CompositeMode, cf format.ColorFormat, df format.DepthFormat, bg, frag format.Fragment, warned *bool) bool {
	switch mode {
	case format.CompositeZBuffer:
		if df == format.DepthD32F {
			return frag.DepthValue(df) < 1.0
		}
	case format.CompositeBlend:
		if cf.HasAlpha() {
			switch cf {
			case format.ColorRGBA8:
				_, _, _, a := frag.RGBA8()
				_, _, _, ba := bg.RGBA8()
				return a != ba
			default:
				fc := frag.Float4(cf)
				bc := bg.Float4(cf)
				return fc[3] != bc[3]
			}
		}
		if df == format.DepthD32F {
			return frag.DepthValue(df) < 1.0
		}
	}
	if !*warned {
		*warned = true
		store.RaiseWarning(format.InvalidOperation, "sparse: Encode: no depth or alpha channel available for composite mode %v; treating all pixels as active", mode)
	}
	return true
}

// activeFragments returns the sub-slice of a layered pixel's depth-sorted
// fragments whose depth is below 1.0 (or, for alpha-only blend mode, whose
// alpha differs from the background), per spec.md §4.3 "Layered pixels
// enumerate fragments; fragments with depth < 1 (or alpha != bg) are kept."
func activeFragments(store state.Store, mode format.CompositeMode, cf format.ColorFormat, df format.DepthFormat, bg format.Fragment, frags []format.Fragment, warned *bool) []format.Fragment {
	kept := frags[:0:0]
	for _, f := range frags {
		if isActive(store, mode, cf, df, bg, f, warned) {
			kept = append(kept, f)
		}
	}
	return kept
}

// Encode compresses src into a freshly allocated Sparse, per spec.md §4.3.
func Encode(store state.Store, name state.Name, mode format.CompositeMode, bg format.Fragment, src dense.Reader) Sparse {
	store.CompressBegin()
	defer store.CompressEnd()

	h := src.Header()
	layered := h.Magic.Layered()
	numLayers := src.NumLayers()
	n := int(h.Width) * int(h.Height)
	b := NewBuilder(layered, h.ColorFormat, h.DepthFormat)
	warned := false

	for p := 0; p < n; p++ {
		if !layered {
			frag := readDenseFragment(src, p, 0)
			if isActive(store, mode, h.ColorFormat, h.DepthFormat, bg, frag, &warned) {
				b.AppendActive([]format.Fragment{frag})
			} else {
				b.AppendInactive(1)
			}
			continue
		}
		frags := make([]format.Fragment, numLayers)
		for l := 0; l < int(numLayers); l++ {
			frags[l] = readDenseFragment(src, p, l)
		}
		kept := activeFragments(store, mode, h.ColorFormat, h.DepthFormat, bg, frags, &warned)
		if len(kept) == 0 {
			b.AppendInactive(1)
		} else {
			b.AppendActive(kept)
		}
	}

	return FromBuilder(store, name, h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), int(h.MaxPixels), layered, numLayers, b)
}

// EncodeRegion compresses the tileW x tileH region covered by srcVP inside
// src into a sparse image of the full tile size, emitting inactive runs for
// every pixel outside srcVP and reading from src only for pixels inside it
// (spec.md §4.3 "Region encode").
func EncodeRegion(store state.Store, name state.Name, mode format.CompositeMode, bg format.Fragment, src dense.Reader, srcVP dense.Region, tileW, tileH int) Sparse {
	store.CompressBegin()
	defer store.CompressEnd()

	h := src.Header()
	layered := h.Magic.Layered()
	numLayers := src.NumLayers()
	b := NewBuilder(layered, h.ColorFormat, h.DepthFormat)
	warned := false

	for row := 0; row < tileH; row++ {
		for col := 0; col < tileW; col++ {
			inside := row >= srcVP.Y && row < srcVP.Y+srcVP.H && col >= srcVP.X && col < srcVP.X+srcVP.W
			if !inside {
				b.AppendInactive(1)
				continue
			}
			// src is sized to srcVP itself (the rendered region's own
			// buffer); translate tile-space (row, col) to src-local pixel.
			p := (row-srcVP.Y)*int(h.Width) + (col - srcVP.X)
			if !layered {
				frag := readDenseFragment(src, p, 0)
				if isActive(store, mode, h.ColorFormat, h.DepthFormat, bg, frag, &warned) {
					b.AppendActive([]format.Fragment{frag})
				} else {
					b.AppendInactive(1)
				}
				continue
			}
			frags := make([]format.Fragment, numLayers)
			for l := 0; l < int(numLayers); l++ {
				frags[l] = readDenseFragment(src, p, l)
			}
			kept := activeFragments(store, mode, h.ColorFormat, h.DepthFormat, bg, frags, &warned)
			if len(kept) == 0 {
				b.AppendInactive(1)
			} else {
				b.AppendActive(kept)
			}
		}
	}

	return FromBuilder(store, name, h.ColorFormat, h.DepthFormat, tileW, tileH, tileW*tileH, layered, numLayers, b)
}

// Clear writes a single all-inactive run covering width*height pixels
// (spec.md §4.3 "Clear sparse").
func Clear(store state.Store, name state.Name, cf format.ColorFormat, df format.DepthFormat, width, height, maxPixels int, layered bool, numLayers int32) Sparse {
	b := NewBuilder(layered, cf, df)
	b.AppendInactive(uint32(width * height))
	return FromBuilder(store, name, cf, df, width, height, maxPixels, layered, numLayers, b)
}

func readDenseFragment(src dense.Reader, pixel, layer int) format.Fragment {
	h := src.Header()
	var frag format.Fragment
	copy(frag.Color[:h.ColorFormat.PixelSize()], src.ColorBytes(pixel, layer))
	if h.DepthFormat != format.DepthNone {
		copy(frag.Depth[:h.DepthFormat.PixelSize()], src.DepthBytes(pixel, layer))
	}
	return frag
}
