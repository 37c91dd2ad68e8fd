package header

import "github.com/parallelviz/tileimage/format"

// flatRunLengthSize is the byte size of a flat sparse run header: two
// uint32 counts (inactive, active).
const flatRunLengthSize = 8

// layeredRunLengthSize is the byte size of a layered sparse run header:
// three uint32 counts (inactive, active_pixels, active_fragments).
const layeredRunLengthSize = 12

// layeredFragCountSize is the byte size of the per-active-pixel fragment
// count field in a layered sparse stream. Fixed at 32 bits, see SPEC_FULL.md
// §3 (the original leaves this ambiguous between 16 and 32 bits).
const layeredFragCountSize = 4

// DenseSize returns the worst-case byte size of a dense image with the
// given formats, dimensions, and layer count. layered must be false for
// numLayers <= 1. Per spec.md §3, layered images store depth as a separate
// run following all colors, but the total payload size is the same either
// way: width*height*numLayers*(colorSize+depthSize).
func DenseSize(cf format.ColorFormat, df format.DepthFormat, width, height int, layered bool, numLayers int) int {
	n := numLayers
	if !layered {
		n = 1
	}
	hdr := Size
	if layered {
		hdr += LayeredSubHeaderSize
	}
	payload := width * height * n * format.FragmentSize(cf, df)
	return hdr + payload
}

// SparseSize returns the worst-case byte size of a sparse image compressed
// from a dense image with the given formats, dimensions, and layer count,
// per spec.md §4.1: header + run-length + dense-payload, plus the slack
// term for the degenerate alternating-1-pixel-run stream when a pixel's
// footprint is smaller than a run header.
func SparseSize(cf format.ColorFormat, df format.DepthFormat, width, height int, layered bool, numLayers int) int {
	pixels := width * height
	fragSize := format.FragmentSize(cf, df)

	runLen := flatRunLengthSize
	perPixel := fragSize
	hdr := Size
	if layered {
		runLen = layeredRunLengthSize
		perPixel = layeredFragCountSize + numLayers*fragSize
		hdr += LayeredSubHeaderSize
	}

	size := hdr + runLen + pixels*perPixel
	if perPixel < runLen {
		slack := (runLen - perPixel) * ceilDiv(pixels, 2)
		size += slack
	}
	return size
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
