package sparse

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/state"
)

// Decode walks s's run stream and writes it into dst, which must already be
// sized to s's width/height/layer count (spec.md §4.3 "Decode"). Inactive
// pixels (and, for layered images, layer slots beyond a pixel's surviving
// fragment count) are cleared to bg with depth 1.0; correctBackground, when
// true, re-applies the UNDER operator with trueBg to every decoded pixel
// instead of leaving the background-cleared pixels raw (spec.md §4.3's
// "Decompression with correction").
func Decode(store state.Store, dst dense.Writer, s Sparse, bg, trueBg format.Fragment, correctBackground bool) {
	store.CompressBegin()
	defer store.CompressEnd()

	h := s.Header()
	numLayers := int(dst.NumLayers())
	n := int(h.Width) * int(h.Height)
	c := s.NewScanCursor()

	write := func(p, l int, frag format.Fragment) {
		if correctBackground {
			if res, ok := format.Blend(h.ColorFormat, format.BlendUnder, trueBg, frag); ok {
				frag = res
			}
		}
		dst.SetColorBytes(p, l, frag.Color[:h.ColorFormat.PixelSize()])
		if h.DepthFormat != format.DepthNone {
			dst.SetDepthBytes(p, l, frag.Depth[:h.DepthFormat.PixelSize()])
		}
	}

	background := func() format.Fragment {
		f := bg
		f.SetDepthValue(h.DepthFormat, 1.0)
		return f
	}

	for p := 0; p < n; p++ {
		active, frags, ok := c.NextPixel()
		if !ok {
			return
		}
		for l := 0; l < numLayers; l++ {
			if active && l < len(frags) {
				write(p, l, frags[l])
			} else {
				write(p, l, background())
			}
		}
	}
}
