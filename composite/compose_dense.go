package composite

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/state"
)

// ComposeDense composites a and b pixel-by-pixel into dst under mode,
// requiring identical dimensions and formats and rejecting layered sources
// (spec.md §4.6, operator 1: "Dense ⊕ dense"). For CompositeBlend, a is
// Blend's "src" operand and b is "dst"; order selects which is on top.
func ComposeDense(store state.Store, mode format.CompositeMode, order format.BlendOrder, dst dense.Writer, a, b dense.Reader) error {
	store.BlendBegin()
	defer store.BlendEnd()

	ah, bh, dh := a.Header(), b.Header(), dst.Header()
	if ah.Magic.Layered() || bh.Magic.Layered() {
		store.RaiseError(format.InvalidOperation, "composite: ComposeDense: layered sources not supported; use the sparse⊕sparse compositor")
		return format.NewError(format.InvalidOperation, "layered dense sources")
	}
	if ah.ColorFormat != bh.ColorFormat || ah.DepthFormat != bh.DepthFormat || ah.ColorFormat != dh.ColorFormat || ah.DepthFormat != dh.DepthFormat {
		store.RaiseError(format.InvalidValue, "composite: ComposeDense: format mismatch")
		return format.NewError(format.InvalidValue, "format mismatch")
	}
	if ah.Width != bh.Width || ah.Height != bh.Height || ah.Width != dh.Width || ah.Height != dh.Height {
		store.RaiseError(format.InvalidValue, "composite: ComposeDense: dimension mismatch")
		return format.NewError(format.InvalidValue, "dimension mismatch")
	}

	if mode == format.CompositeZBuffer && ah.DepthFormat == format.DepthNone {
		store.RaiseError(format.InvalidOperation, "composite: ComposeDense: Z-buffer requires depth")
		return format.NewError(format.InvalidOperation, "Z-buffer composition requires depth")
	}

	n := int(ah.Width) * int(ah.Height)
	warned := false
	for p := 0; p < n; p++ {
		fa := readFragment(a, p, 0)
		fb := readFragment(b, p, 0)
		switch mode {
		case format.CompositeZBuffer:
			writeFragment(dst, p, 0, zbufferWinner(ah.DepthFormat, fa, fb))
		case format.CompositeBlend:
			// Blend's fallback for alpha-less formats already picks the
			// right operand (overwrite for over, no-op for under).
			result, ok := format.Blend(ah.ColorFormat, order, fa, fb)
			if !ok && !warned {
				warned = true
				store.RaiseWarning(format.InvalidOperation, "composite: ComposeDense: blending color format %v without alpha", ah.ColorFormat)
			}
			writeFragment(dst, p, 0, result)
		}
	}
	return nil
}
