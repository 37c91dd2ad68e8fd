// Package header implements the seven-word image header shared by dense,
// dense-pointer, and sparse images (spec.md §3), plus the worst-case byte
// size calculator (spec.md §4.1).
package header

import (
	"encoding/binary"

	"github.com/parallelviz/tileimage/format"
)

// WordSize is the byte size of one header word. The header and sub-header
// are both encoded as a run of little-endian int32 words, following the
// teacher's own ReadLE32/PutLE32 convention for fixed-offset container
// fields.
const WordSize = 4

// NumWords is the number of words in the common header (spec.md §3 table).
const NumWords = 7

// Size is the encoded byte size of the common header.
const Size = NumWords * WordSize

// LayeredSubHeaderSize is the byte size of the num_layers sub-header word
// that immediately follows the common header in a layered image.
const LayeredSubHeaderSize = WordSize

// ActualBytesPointerSentinel is the magic "actual bytes" value reserved for
// pointer-backed dense images, which own no contiguous payload to size.
const ActualBytesPointerSentinel = -1

// Header is the seven-word common header described in spec.md §3.
type Header struct {
	Magic       format.Magic
	ColorFormat format.ColorFormat
	DepthFormat format.DepthFormat
	Width       int32
	Height      int32
	MaxPixels   int32
	ActualBytes int32
}

// Encode writes h into buf[0:Size] in little-endian order.
func Encode(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Magic))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.ColorFormat))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.DepthFormat))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Width))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.Height))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(h.MaxPixels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.ActualBytes))
}

// Decode reads a Header from buf[0:Size].
func Decode(buf []byte) Header {
	return Header{
		Magic:       format.Magic(int32(binary.LittleEndian.Uint32(buf[0:4]))),
		ColorFormat: format.ColorFormat(int32(binary.LittleEndian.Uint32(buf[4:8]))),
		DepthFormat: format.DepthFormat(int32(binary.LittleEndian.Uint32(buf[8:12]))),
		Width:       int32(binary.LittleEndian.Uint32(buf[12:16])),
		Height:      int32(binary.LittleEndian.Uint32(buf[16:20])),
		MaxPixels:   int32(binary.LittleEndian.Uint32(buf[20:24])),
		ActualBytes: int32(binary.LittleEndian.Uint32(buf[24:28])),
	}
}

// PutNumLayers writes the layered sub-header word immediately after the
// common header.
func PutNumLayers(buf []byte, numLayers int32) {
	binary.LittleEndian.PutUint32(buf[Size:Size+4], uint32(numLayers))
}

// NumLayers reads the layered sub-header word immediately after the common
// header.
func NumLayers(buf []byte) int32 {
	return int32(binary.LittleEndian.Uint32(buf[Size : Size+4]))
}
