package composite

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/sparse"
	"github.com/parallelviz/tileimage/state"
)

// ComposeDenseSparse decompresses sp and blends each of its active
// fragments into the corresponding pixel of dst using mode/order, leaving
// pixels inactive in sp untouched (spec.md §4.6, operator 2: "Dense ⊕
// sparse (decompress-and-blend)"). dst and sp must share dimensions and
// formats; sp must be flat (layered dense⊕sparse composition goes through
// the sparse⊕sparse compositor instead, per spec.md §4.6's note that
// Z-buffer "is undefined for layered images").
func ComposeDenseSparse(store state.Store, mode format.CompositeMode, order format.BlendOrder, dst dense.Writer, sp sparse.Sparse) error {
	store.BlendBegin()
	defer store.BlendEnd()

	sh, dh := sp.Header(), dst.Header()
	if sh.Magic.Layered() {
		store.RaiseError(format.InvalidOperation, "composite: ComposeDenseSparse: layered sparse source not supported")
		return format.NewError(format.InvalidOperation, "layered sparse source")
	}
	if sh.ColorFormat != dh.ColorFormat || sh.DepthFormat != dh.DepthFormat {
		store.RaiseError(format.InvalidValue, "composite: ComposeDenseSparse: format mismatch")
		return format.NewError(format.InvalidValue, "format mismatch")
	}
	if sh.Width != dh.Width || sh.Height != dh.Height {
		store.RaiseError(format.InvalidValue, "composite: ComposeDenseSparse: dimension mismatch")
		return format.NewError(format.InvalidValue, "dimension mismatch")
	}

	c := sp.NewScanCursor()
	n := int(sh.Width) * int(sh.Height)
	warned := false
	for p := 0; p < n; p++ {
		active, frags, ok := c.NextPixel()
		if !ok {
			break
		}
		if !active {
			continue
		}
		frag := frags[0]
		cur := readFragment(dst, p, 0)
		switch mode {
		case format.CompositeZBuffer:
			if sh.DepthFormat == format.DepthNone {
				store.RaiseError(format.InvalidOperation, "composite: ComposeDenseSparse: Z-buffer requires depth")
				return format.NewError(format.InvalidOperation, "Z-buffer composition requires depth")
			}
			writeFragment(dst, p, 0, zbufferWinner(sh.DepthFormat, frag, cur))
		case format.CompositeBlend:
			result, ok := format.Blend(sh.ColorFormat, order, frag, cur)
			if !ok && !warned {
				warned = true
				store.RaiseWarning(format.InvalidOperation, "composite: ComposeDenseSparse: blending color format %v without alpha", sh.ColorFormat)
			}
			writeFragment(dst, p, 0, result)
		}
	}
	return nil
}
