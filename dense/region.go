package dense

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/state"
)

// Region is an axis-aligned pixel rectangle with origin at the image's
// bottom-left corner, matching the viewport coordinate convention used
// throughout the core (spec.md §5).
type Region struct {
	X, Y, W, H int
}

// Empty reports whether r covers zero pixels (the degenerate clear-whole-
// image region, spec.md §4.2).
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// CopyPixels copies all w*h pixels from src to dst. Both images must share
// color format, depth format, and layer count (spec.md §4.2 "Copy pixels /
// region"); a mismatch raises INVALID_VALUE and leaves dst untouched.
func CopyPixels(store state.Store, dst Writer, src Reader) error {
	sh, dh := src.Header(), dst.Header()
	if sh.ColorFormat != dh.ColorFormat || sh.DepthFormat != dh.DepthFormat || src.NumLayers() != dst.NumLayers() {
		store.RaiseError(format.InvalidValue, "dense: CopyPixels: format or layer-count mismatch")
		return format.NewError(format.InvalidValue, "format or layer-count mismatch")
	}
	if sh.Width != dh.Width || sh.Height != dh.Height {
		store.RaiseError(format.InvalidValue, "dense: CopyPixels: dimension mismatch %dx%d vs %dx%d", sh.Width, sh.Height, dh.Width, dh.Height)
		return format.NewError(format.InvalidValue, "dimension mismatch")
	}
	n := int(sh.Width) * int(sh.Height)
	layers := int(src.NumLayers())
	for p := 0; p < n; p++ {
		for l := 0; l < layers; l++ {
			dst.SetColorBytes(p, l, src.ColorBytes(p, l))
			if sh.DepthFormat != format.DepthNone {
				dst.SetDepthBytes(p, l, src.DepthBytes(p, l))
			}
		}
	}
	return nil
}

// CopyRegion copies the in viewport of src into the out viewport of dst.
// Both viewports must have identical width/height (spec.md §4.2); formats
// and layer count must match as in CopyPixels.
func CopyRegion(store state.Store, dst Writer, dstVP Region, src Reader, srcVP Region) error {
	sh, dh := src.Header(), dst.Header()
	if sh.ColorFormat != dh.ColorFormat || sh.DepthFormat != dh.DepthFormat || src.NumLayers() != dst.NumLayers() {
		store.RaiseError(format.InvalidValue, "dense: CopyRegion: format or layer-count mismatch")
		return format.NewError(format.InvalidValue, "format or layer-count mismatch")
	}
	if srcVP.W != dstVP.W || srcVP.H != dstVP.H {
		store.RaiseError(format.InvalidValue, "dense: CopyRegion: viewport size mismatch %dx%d vs %dx%d", srcVP.W, srcVP.H, dstVP.W, dstVP.H)
		return format.NewError(format.InvalidValue, "viewport size mismatch")
	}
	if srcVP.X < 0 || srcVP.Y < 0 || srcVP.X+srcVP.W > int(sh.Width) || srcVP.Y+srcVP.H > int(sh.Height) {
		store.RaiseError(format.InvalidValue, "dense: CopyRegion: source viewport out of bounds")
		return format.NewError(format.InvalidValue, "source viewport out of bounds")
	}
	if dstVP.X < 0 || dstVP.Y < 0 || dstVP.X+dstVP.W > int(dh.Width) || dstVP.Y+dstVP.H > int(dh.Height) {
		store.RaiseError(format.InvalidValue, "dense: CopyRegion: destination viewport out of bounds")
		return format.NewError(format.InvalidValue, "destination viewport out of bounds")
	}
	layers := int(src.NumLayers())
	for row := 0; row < srcVP.H; row++ {
		for col := 0; col < srcVP.W; col++ {
			sp := (srcVP.Y+row)*int(sh.Width) + (srcVP.X + col)
			dp := (dstVP.Y+row)*int(dh.Width) + (dstVP.X + col)
			for l := 0; l < layers; l++ {
				dst.SetColorBytes(dp, l, src.ColorBytes(sp, l))
				if sh.DepthFormat != format.DepthNone {
					dst.SetDepthBytes(dp, l, src.DepthBytes(sp, l))
				}
			}
		}
	}
	return nil
}

// ClearAroundRegion sets every pixel outside region to bgColor (depth 1.0),
// leaving region itself untouched (spec.md §4.2 "Clear around region"). A
// degenerate region (W=0 or H=0) clears the full image. bgColor must be
// encoded under img's color format (use format.Fragment.SetFloat4/SetRGBA8).
func ClearAroundRegion(dst Writer, region Region, bgColor format.Fragment) {
	h := dst.Header()
	w, ht := int(h.Width), int(h.Height)
	if region.Empty() {
		region = Region{0, 0, 0, 0}
	}
	one := format.Fragment{}
	one.SetDepthValue(h.DepthFormat, 1.0)

	clearRow := func(y int, x0, x1 int) {
		if x1 <= x0 {
			return
		}
		layers := int(dst.NumLayers())
		for x := x0; x < x1; x++ {
			p := y*w + x
			for l := 0; l < layers; l++ {
				dst.SetColorBytes(p, l, bgColor.Color[:h.ColorFormat.PixelSize()])
				if h.DepthFormat != format.DepthNone {
					dst.SetDepthBytes(p, l, one.Depth[:h.DepthFormat.PixelSize()])
				}
			}
		}
	}

	// Bottom strip: rows below the region.
	for y := 0; y < region.Y; y++ {
		clearRow(y, 0, w)
	}
	// Top strip: rows above the region.
	for y := region.Y + region.H; y < ht; y++ {
		clearRow(y, 0, w)
	}
	// Left and right strips: only within the region's own row range, so the
	// top/bottom strips above are not double-written.
	for y := region.Y; y < region.Y+region.H && y < ht; y++ {
		clearRow(y, 0, region.X)
		clearRow(y, region.X+region.W, w)
	}
}
