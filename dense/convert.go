package dense

import "github.com/parallelviz/tileimage/format"

// ConvertFormat rewrites every pixel of dst (already sized to match src's
// dimensions and layer count) from src's color/depth formats to dst's own,
// using format.ConvertColor/ConvertDepth per sample (spec.md §4.2 "Format
// conversion"). Samples whose conversion is unsupported (e.g. depth when
// either side is not D32F) are not written; dst keeps the bytes it held.
func ConvertFormat(dst Writer, src Reader) {
	sh, dh := src.Header(), dst.Header()
	n := int(sh.Width) * int(sh.Height)
	layers := int(src.NumLayers())
	for p := 0; p < n; p++ {
		for l := 0; l < layers; l++ {
			var sf format.Fragment
			copy(sf.Color[:sh.ColorFormat.PixelSize()], src.ColorBytes(p, l))
			if df, ok := format.ConvertColor(sh.ColorFormat, dh.ColorFormat, sf); ok {
				dst.SetColorBytes(p, l, df.Color[:dh.ColorFormat.PixelSize()])
			}
			if sh.DepthFormat != format.DepthNone {
				var sdf format.Fragment
				copy(sdf.Depth[:sh.DepthFormat.PixelSize()], src.DepthBytes(p, l))
				if dd, ok := format.ConvertDepth(sh.DepthFormat, dh.DepthFormat, sdf); ok {
					dst.SetDepthBytes(p, l, dd.Depth[:dh.DepthFormat.PixelSize()])
				}
			}
		}
	}
}

// CorrectBackground applies the UNDER operator against trueBg to every
// (layered-unfolded) pixel of img in place, for RGBA color formats; RGB
// float (no alpha) is a no-op (spec.md §4.2 "Background correction").
//
// The pixel is passed as Blend's "dst" operand and trueBg as "src": UNDER
// treats dst as on top (spec.md §4.6), so this recomposites the rendered
// pixel over the true background rather than the other way around.
func CorrectBackground(img Writer, trueBg format.Fragment) {
	h := img.Header()
	if !h.ColorFormat.HasAlpha() {
		return
	}
	n := int(h.Width) * int(h.Height)
	layers := int(img.NumLayers())
	for p := 0; p < n; p++ {
		for l := 0; l < layers; l++ {
			var cur format.Fragment
			copy(cur.Color[:h.ColorFormat.PixelSize()], img.ColorBytes(p, l))
			result, ok := format.Blend(h.ColorFormat, format.BlendUnder, trueBg, cur)
			if !ok {
				continue
			}
			img.SetColorBytes(p, l, result.Color[:h.ColorFormat.PixelSize()])
		}
	}
}
