package format

import (
	"encoding/binary"
	"math"
)

// maxColorBytes is the largest PixelSize any ColorFormat can report
// (RGBA32F: 4 components * 4 bytes).
const maxColorBytes = 16

// Fragment is one color+depth sample at one pixel. Layered pixels carry
// several fragments, sorted by depth. A Fragment's Color/Depth slices are
// always read or written through a ColorFormat/DepthFormat passed in by the
// caller (the same way the teacher's PixOrCopy token carries no alphabet of
// its own); Fragment only owns fixed storage sized for the largest format.
type Fragment struct {
	Color [maxColorBytes]byte
	Depth [4]byte
}

// DepthValue decodes df's depth sample from f.Depth. Returns 1.0 (the
// background depth) if df is DepthNone.
func (f *Fragment) DepthValue(df DepthFormat) float32 {
	if df != DepthD32F {
		return 1.0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(f.Depth[:4]))
}

// SetDepthValue encodes v into f.Depth under df. A no-op if df is DepthNone.
func (f *Fragment) SetDepthValue(df DepthFormat, v float32) {
	if df != DepthD32F {
		return
	}
	binary.LittleEndian.PutUint32(f.Depth[:4], math.Float32bits(v))
}

// RGBA8 decodes f.Color as packed RGBA8 bytes. Valid only when cf is
// ColorRGBA8.
func (f *Fragment) RGBA8() (r, g, b, a byte) {
	return f.Color[0], f.Color[1], f.Color[2], f.Color[3]
}

// SetRGBA8 encodes r,g,b,a into f.Color as packed RGBA8 bytes.
func (f *Fragment) SetRGBA8(r, g, b, a byte) {
	f.Color[0], f.Color[1], f.Color[2], f.Color[3] = r, g, b, a
}

// Float4 decodes f.Color as a 4-float color under cf, padding alpha to 1.0
// for formats that don't store one (ColorRGB32F) and zero for ColorNone.
func (f *Fragment) Float4(cf ColorFormat) [4]float32 {
	switch cf {
	case ColorRGBA32F:
		var c [4]float32
		for i := 0; i < 4; i++ {
			c[i] = math.Float32frombits(binary.LittleEndian.Uint32(f.Color[i*4 : i*4+4]))
		}
		return c
	case ColorRGB32F:
		var c [4]float32
		for i := 0; i < 3; i++ {
			c[i] = math.Float32frombits(binary.LittleEndian.Uint32(f.Color[i*4 : i*4+4]))
		}
		c[3] = 1.0
		return c
	case ColorRGBA8:
		r, g, b, a := f.RGBA8()
		return [4]float32{
			float32(r) / 255,
			float32(g) / 255,
			float32(b) / 255,
			float32(a) / 255,
		}
	default:
		return [4]float32{}
	}
}

// SetFloat4 encodes a 4-float color into f.Color under cf. The alpha
// component is dropped for ColorRGB32F.
func (f *Fragment) SetFloat4(cf ColorFormat, c [4]float32) {
	switch cf {
	case ColorRGBA32F:
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint32(f.Color[i*4:i*4+4], math.Float32bits(c[i]))
		}
	case ColorRGB32F:
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint32(f.Color[i*4:i*4+4], math.Float32bits(c[i]))
		}
	case ColorRGBA8:
		f.SetRGBA8(floatToByte(c[0]), floatToByte(c[1]), floatToByte(c[2]), floatToByte(c[3]))
	}
}

func floatToByte(v float32) byte {
	v *= 255
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v + 0.5)
	}
}

// ReadFragment decodes a fragment's color+depth bytes from buf at offset
// off, under the given formats, returning the fragment and the number of
// bytes consumed (FragmentSize(cf, df)).
func ReadFragment(buf []byte, off int, cf ColorFormat, df DepthFormat) (Fragment, int) {
	var frag Fragment
	n := cf.PixelSize()
	copy(frag.Color[:n], buf[off:off+n])
	off += n
	d := df.PixelSize()
	if d > 0 {
		copy(frag.Depth[:d], buf[off:off+d])
	}
	return frag, n + d
}

// WriteFragment encodes frag's color+depth bytes into buf at offset off,
// under the given formats, returning the number of bytes written.
func WriteFragment(buf []byte, off int, cf ColorFormat, df DepthFormat, frag Fragment) int {
	n := cf.PixelSize()
	copy(buf[off:off+n], frag.Color[:n])
	off += n
	d := df.PixelSize()
	if d > 0 {
		copy(buf[off:off+d], frag.Depth[:d])
	}
	return n + d
}
