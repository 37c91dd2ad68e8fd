package composite

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/sparse"
	"github.com/parallelviz/tileimage/state"
)

// ComposeSparseSparse walks a and b's run streams in lockstep and merges
// them into a freshly allocated sparse image (spec.md §4.6, operator 3: the
// "cc" compositor). Both-inactive pixels stay inactive; a pixel active in
// only one input copies that input's fragment(s) unchanged; a pixel active
// in both is resolved by mode — the lower-depth fragment under Z-buffer,
// OVER(a, b) under blend, or (for layered images) the depth-sorted merge of
// both fragment lists capped at opts.MaxLayers. a and b must not alias the
// output buffer (spec.md §4.6: "Buffers must not alias").
func ComposeSparseSparse(store state.Store, name state.Name, mode format.CompositeMode, opts Options, a, b sparse.Sparse) (sparse.Sparse, error) {
	store.BlendBegin()
	defer store.BlendEnd()

	ah, bh := a.Header(), b.Header()
	if ah.ColorFormat != bh.ColorFormat || ah.DepthFormat != bh.DepthFormat || ah.Magic.Layered() != bh.Magic.Layered() {
		store.RaiseError(format.InvalidValue, "composite: ComposeSparseSparse: format/layer mismatch")
		return sparse.Sparse{}, format.NewError(format.InvalidValue, "format/layer mismatch")
	}
	if ah.Width != bh.Width || ah.Height != bh.Height {
		store.RaiseError(format.InvalidValue, "composite: ComposeSparseSparse: dimension mismatch")
		return sparse.Sparse{}, format.NewError(format.InvalidValue, "dimension mismatch")
	}

	layered := ah.Magic.Layered()
	n := int(ah.Width) * int(ah.Height)
	ca := a.NewScanCursor()
	cb := b.NewScanCursor()
	out := sparse.NewBuilder(layered, ah.ColorFormat, ah.DepthFormat)

	for p := 0; p < n; p++ {
		aActive, aFrags, ok1 := ca.NextPixel()
		bActive, bFrags, ok2 := cb.NextPixel()
		if !ok1 || !ok2 {
			break
		}
		switch {
		case !aActive && !bActive:
			out.AppendInactive(1)
		case aActive && !bActive:
			out.AppendActive(aFrags)
		case !aActive && bActive:
			out.AppendActive(bFrags)
		default:
			out.AppendActive(resolveBothActive(mode, opts, ah.DepthFormat, ah.ColorFormat, layered, aFrags, bFrags))
		}
	}

	// A layered merge can carry up to the sum of both inputs' layer counts
	// per pixel, bounded by the configured cap.
	outLayers := a.NumLayers()
	if layered {
		outLayers += b.NumLayers()
		if opts.MaxLayers > 0 && outLayers > int32(opts.MaxLayers) {
			outLayers = int32(opts.MaxLayers)
		}
	}
	return sparse.FromBuilder(store, name, ah.ColorFormat, ah.DepthFormat, int(ah.Width), int(ah.Height), int(ah.MaxPixels), layered, outLayers, out), nil
}

func resolveBothActive(mode format.CompositeMode, opts Options, df format.DepthFormat, cf format.ColorFormat, layered bool, aFrags, bFrags []format.Fragment) []format.Fragment {
	if layered {
		return mergeLayersByDepth(aFrags, bFrags, opts.MaxLayers, df)
	}
	fa, fb := aFrags[0], bFrags[0]
	switch mode {
	case format.CompositeZBuffer:
		return []format.Fragment{zbufferWinner(df, fa, fb)}
	default:
		// For alpha-less formats Blend falls back to the top operand.
		result, _ := format.Blend(cf, format.BlendOver, fa, fb)
		return []format.Fragment{result}
	}
}

// mergeLayersByDepth merges two depth-sorted fragment lists into one
// depth-sorted list, retaining at most maxLayers fragments (0 = unbounded),
// per spec.md §4.6's layered Z-buffer fragment-list merge.
func mergeLayersByDepth(a, b []format.Fragment, maxLayers int, df format.DepthFormat) []format.Fragment {
	merged := make([]format.Fragment, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].DepthValue(df) <= b[j].DepthValue(df) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	if maxLayers > 0 && len(merged) > maxLayers {
		merged = merged[:maxLayers]
	}
	return merged
}
