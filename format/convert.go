package format

// ConvertColor converts one color sample from srcFmt to dstFmt. Supported
// pairs are RGBA8<->RGBA32F and all pairs among {RGBA8, RGBA32F, RGB32F},
// per SPEC_FULL.md §4.2. Float<->ubyte conversions scale by 255; RGB->RGBA
// fills alpha = 1; RGBA->RGB drops alpha. Converting to or from ColorNone,
// or any other unsupported pair, returns ok = false.
func ConvertColor(srcFmt, dstFmt ColorFormat, src Fragment) (dst Fragment, ok bool) {
	if srcFmt == dstFmt {
		return src, true
	}
	if srcFmt == ColorNone || dstFmt == ColorNone {
		return Fragment{}, false
	}
	c := src.Float4(srcFmt)
	dst.SetFloat4(dstFmt, c)
	return dst, true
}

// ConvertDepth converts one depth sample from srcFmt to dstFmt. The only
// supported conversion is D32F->D32F (an identity copy); any other pair,
// including either side being DepthNone, returns ok = false.
func ConvertDepth(srcFmt, dstFmt DepthFormat, src Fragment) (dst Fragment, ok bool) {
	if srcFmt != DepthD32F || dstFmt != DepthD32F {
		return Fragment{}, false
	}
	dst.Depth = src.Depth
	return dst, true
}

// Blend composites src and dst using the standard premultiplied-alpha
// formula result = top + (1-top.alpha)*bottom, where "top" is src for
// BlendOver and dst for BlendUnder (spec.md §4.6: "OVER puts source on top;
// UNDER treats dst as on top"). Only RGBA8 and RGBA32F carry an alpha
// channel to blend against; RGB32F (no alpha) falls back to overwrite with
// top for BlendOver and is a no-op for BlendUnder (ok reports this so
// callers can raise the warning required by spec.md §4.6).
//
// The RGBA8 path uses an 8-bit fixed-point shift (>>8) rather than a plain
// /255 division for the (1-top.alpha)*bottom term, matching the worked
// compressed-compressed OVER example in spec.md §8 Scenario E bit-exactly
// (e.g. alpha 128 over 255 yields 254, not 255).
func Blend(cf ColorFormat, order BlendOrder, src, dst Fragment) (result Fragment, ok bool) {
	top, bottom := src, dst
	if order == BlendUnder {
		top, bottom = dst, src
	}
	switch cf {
	case ColorRGBA8:
		tr, tg, tb, ta := top.RGBA8()
		br, bg, bb, ba := bottom.RGBA8()
		inv := 255 - int(ta)
		blend := func(t, b byte) byte {
			v := int(t) + (int(b)*inv)>>8
			if v > 255 {
				v = 255
			}
			return byte(v)
		}
		var out Fragment
		out.SetRGBA8(blend(tr, br), blend(tg, bg), blend(tb, bb), blend(ta, ba))
		return out, true
	case ColorRGBA32F:
		tc := top.Float4(cf)
		bc := bottom.Float4(cf)
		inv := 1 - tc[3]
		var out Fragment
		var c [4]float32
		for i := 0; i < 4; i++ {
			c[i] = tc[i] + inv*bc[i]
		}
		out.SetFloat4(cf, c)
		return out, true
	case ColorRGB32F:
		// No alpha to blend with: the top operand wins outright. For
		// BlendOver that overwrites with src; for BlendUnder the dst operand
		// is on top, so the result equals dst and the blend is a no-op.
		return top, false
	default:
		return Fragment{}, false
	}
}
