package sparse

import (
	"testing"

	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
	"github.com/parallelviz/tileimage/state/statetest"
)

func buildDense(t *testing.T, st state.Store, w, h int, colors [][4]byte, depths []float32) dense.Dense {
	t.Helper()
	size := header.DenseSize(format.ColorRGBA8, format.DepthD32F, w, h, false, 1)
	buf := make([]byte, size)
	img, err := dense.Assign(st, buf, format.ColorRGBA8, format.DepthD32F, w, h, w*h, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	for p := 0; p < w*h; p++ {
		var f format.Fragment
		c := colors[p]
		f.SetRGBA8(c[0], c[1], c[2], c[3])
		f.SetDepthValue(format.DepthD32F, depths[p])
		img.SetFragment(p, 0, f)
	}
	return img
}

func TestEncodeScenarioA(t *testing.T) {
	st := statetest.New()
	colors := make([][4]byte, 8)
	depths := make([]float32, 8)
	for i := range colors {
		colors[i] = [4]byte{255, 0, 0, 255}
		depths[i] = 0.5
	}
	img := buildDense(t, st, 4, 2, colors, depths)

	var bg format.Fragment
	sp := Encode(st, "scenario-a", format.CompositeZBuffer, bg, img)

	if sp.NumActivePixels() != 8 {
		t.Fatalf("NumActivePixels = %d, want 8", sp.NumActivePixels())
	}
	if sp.NumRuns() != 1 {
		t.Fatalf("NumRuns = %d, want 1", sp.NumRuns())
	}
	if int(sp.Header().ActualBytes) != 100 {
		t.Fatalf("actual_bytes = %d, want 100", sp.Header().ActualBytes)
	}

	// Decompress into a cleared buffer and check byte-equality.
	outSize := header.DenseSize(format.ColorRGBA8, format.DepthD32F, 4, 2, false, 1)
	outBuf := make([]byte, outSize)
	out, err := dense.Assign(st, outBuf, format.ColorRGBA8, format.DepthD32F, 4, 2, 8, false, 1)
	if err != nil {
		t.Fatalf("Assign output: %v", err)
	}
	Decode(st, out, sp, bg, bg, false)
	for p := 0; p < 8; p++ {
		f := out.Fragment(p, 0)
		r, g, b, a := f.RGBA8()
		if r != 255 || g != 0 || b != 0 || a != 255 {
			t.Fatalf("pixel %d: got (%d,%d,%d,%d)", p, r, g, b, a)
		}
		if f.DepthValue(format.DepthD32F) != 0.5 {
			t.Fatalf("pixel %d: got depth %v", p, f.DepthValue(format.DepthD32F))
		}
	}
}

func eightPixelScenario(t *testing.T, st state.Store) Sparse {
	t.Helper()
	depths := []float32{1, 1, 0.5, 0.5, 1, 0.5, 1, 1}
	colors := make([][4]byte, 8)
	for i := range colors {
		colors[i] = [4]byte{byte(i), 0, 0, 255}
	}
	img := buildDense(t, st, 8, 1, colors, depths)
	var bg format.Fragment
	return Encode(st, "scenario-bc", format.CompositeZBuffer, bg, img)
}

func decodeToSlice(t *testing.T, st state.Store, sp Sparse) [][4]byte {
	t.Helper()
	h := sp.Header()
	outSize := header.DenseSize(h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), false, 1)
	buf := make([]byte, outSize)
	out, err := dense.Assign(st, buf, h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), int(h.Width*h.Height), false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	var bg format.Fragment
	Decode(st, out, sp, bg, bg, false)
	n := int(h.Width) * int(h.Height)
	result := make([][4]byte, n)
	for p := 0; p < n; p++ {
		f := out.Fragment(p, 0)
		r, g, b, a := f.RGBA8()
		result[p] = [4]byte{r, g, b, a}
	}
	return result
}

func TestSplitScenarioB(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	parts, err := Split(st, []state.Name{"part0", "part1"}, sp, 2, 4)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d partitions, want 2", len(parts))
	}
	got := append(decodeToSlice(t, st, parts[0]), decodeToSlice(t, st, parts[1])...)
	if len(got) != len(want) {
		t.Fatalf("concatenated partitions have %d pixels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSplitIdentityForSinglePartition(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	parts, err := Split(st, []state.Name{"whole"}, sp, 1, 1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	got := decodeToSlice(t, st, parts[0])
	if len(got) != len(want) {
		t.Fatalf("got %d pixels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInterlaceOffsetScenarioC(t *testing.T) {
	offsets := []int{0, 2, 4, 6}
	for j, want := range offsets {
		got := InterlaceOffset(8, 4, j)
		if got != want {
			t.Fatalf("InterlaceOffset(8,4,%d) = %d, want %d", j, got, want)
		}
	}
	if got := InterlaceOffset(8, 4, 4); got != 8 {
		t.Fatalf("InterlaceOffset(8,4,4) = %d, want 8 (full sum)", got)
	}
}

func TestInterlaceReordersWholePartitions(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	interlaced := Interlace(st, "interlaced", sp, 4)
	got := decodeToSlice(t, st, interlaced)

	// Chunk j of the output holds source partition BitReverse(j, 4): with
	// size-2 partitions the interlaced pixel order is [0 1 | 4 5 | 2 3 | 6 7].
	order := []int{0, 1, 4, 5, 2, 3, 6, 7}
	for i, p := range order {
		if got[i] != want[p] {
			t.Fatalf("interlaced pixel %d: got %v, want source pixel %d = %v", i, got[i], p, want[p])
		}
	}

	// Scenario C's offset lookup locates each chunk's first pixel: chunk 1
	// begins at interlaced offset 2 and holds source pixel 4 onward.
	if got[InterlaceOffset(8, 4, 1)] != want[4] {
		t.Fatalf("chunk 1 does not begin with source pixel 4")
	}
}

func TestInterlaceRemainderAlignsWithSplit(t *testing.T) {
	st := statetest.New()
	colors := make([][4]byte, 6)
	depths := make([]float32, 6)
	for i := range colors {
		colors[i] = [4]byte{byte(10 + i), 0, 0, 255}
		depths[i] = 0.5
	}
	img := buildDense(t, st, 6, 1, colors, depths)
	var bg format.Fragment
	sp := Encode(st, "six", format.CompositeZBuffer, bg, img)
	want := decodeToSlice(t, st, sp)

	interlaced := Interlace(st, "interlaced6", sp, 4)
	got := decodeToSlice(t, st, interlaced)

	// 6 pixels toward 4 eventual partitions: chunk sizes are [2 2 1 1] by
	// interlaced index, so the source partitions occupy [0 1][2][3 4][5] and
	// the interlaced order is [0 1 | 3 4 | 2 | 5].
	order := []int{0, 1, 3, 4, 2, 5}
	for i, p := range order {
		if got[i] != want[p] {
			t.Fatalf("interlaced pixel %d: got %v, want source pixel %d = %v", i, got[i], p, want[p])
		}
	}

	// The chunk boundaries coincide with a split of the interlaced image, so
	// downstream stages recover whole source partitions.
	parts, err := Split(st, []state.Name{"i0", "i1", "i2", "i3"}, interlaced, 4, 4)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	wantParts := [][]int{{0, 1}, {3, 4}, {2}, {5}}
	for j, part := range parts {
		decoded := decodeToSlice(t, st, part)
		if len(decoded) != len(wantParts[j]) {
			t.Fatalf("partition %d has %d pixels, want %d", j, len(decoded), len(wantParts[j]))
		}
		for i, p := range wantParts[j] {
			if decoded[i] != want[p] {
				t.Fatalf("partition %d pixel %d: got %v, want source pixel %d", j, i, decoded[i], p)
			}
		}
	}
}

func TestBitReverseScenarioC(t *testing.T) {
	cases := map[int]int{0: 0, 1: 2, 2: 1, 3: 3}
	for x, want := range cases {
		if got := BitReverse(x, 4); got != want {
			t.Fatalf("BitReverse(%d,4) = %d, want %d", x, got, want)
		}
	}
}

func TestCopyPixelRangeWindow(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	sub := CopyPixelRange(st, "window", sp, 2, 3)
	got := decodeToSlice(t, st, sub)
	if len(got) != 3 {
		t.Fatalf("got %d pixels, want 3", len(got))
	}
	for i := 0; i < 3; i++ {
		if got[i] != want[2+i] {
			t.Fatalf("pixel %d: got %v, want %v", i, got[i], want[2+i])
		}
	}
}

func TestSplitAllocMatchesSplit(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	parts, err := SplitAlloc(st, "alloc", sp, 2, 4)
	if err != nil {
		t.Fatalf("SplitAlloc: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d partitions, want 2", len(parts))
	}
	total := 0
	for i, part := range parts {
		decoded := decodeToSlice(t, st, part)
		if len(decoded) != 4 {
			t.Fatalf("partition %d has %d pixels, want 4", i, len(decoded))
		}
		for j := range decoded {
			if decoded[j] != want[i*4+j] {
				t.Fatalf("partition %d pixel %d: got %v, want %v", i, j, decoded[j], want[i*4+j])
			}
		}
		total += int(part.Header().ActualBytes)
	}
	if bound := SplitAllocSize(sp, 2); total > bound {
		t.Fatalf("partitions occupy %d bytes, exceeding the %d-byte bound", total, bound)
	}
}

func TestPackageUnpackageRoundTrip(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	want := decodeToSlice(t, st, sp)

	wire, err := Package(st, sp)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	got, err := Unpackage(st, wire)
	if err != nil {
		t.Fatalf("Unpackage: %v", err)
	}
	if got.Header().MaxPixels != 8 {
		t.Fatalf("max_pixels = %d, want clamp to 8", got.Header().MaxPixels)
	}
	decoded := decodeToSlice(t, st, got)
	for i := range want {
		if decoded[i] != want[i] {
			t.Fatalf("pixel %d: got %v, want %v", i, decoded[i], want[i])
		}
	}
}

func TestUnpackageRejectsInconsistentRunStream(t *testing.T) {
	st := statetest.New()
	sp := eightPixelScenario(t, st)
	wire, err := Package(st, sp)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}

	// Grow the claimed dimensions without touching the run stream: the runs
	// now cover fewer pixels than width*height.
	bad := make([]byte, len(wire))
	copy(bad, wire)
	h := header.Decode(bad)
	h.Width = 9
	header.Encode(bad, h)

	if _, err := Unpackage(st, bad); err == nil {
		t.Fatalf("expected Unpackage to reject a run stream covering too few pixels")
	}
	if !st.HasErrors() {
		t.Fatalf("expected a sanity-check error to be raised")
	}
}

func TestSparseSizeBoundsEncodedBytes(t *testing.T) {
	st := statetest.New()
	bound := header.SparseSize(format.ColorRGBA8, format.DepthD32F, 8, 1, false, 1)

	patterns := map[string][]float32{
		"all-active":   {0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		"all-inactive": {1, 1, 1, 1, 1, 1, 1, 1},
		"alternating":  {0.5, 1, 0.5, 1, 0.5, 1, 0.5, 1},
	}
	for name, depths := range patterns {
		colors := make([][4]byte, 8)
		for i := range colors {
			colors[i] = [4]byte{byte(i), 0, 0, 255}
		}
		img := buildDense(t, st, 8, 1, colors, depths)
		var bg format.Fragment
		sp := Encode(st, state.Name(name), format.CompositeZBuffer, bg, img)
		if int(sp.Header().ActualBytes) > bound {
			t.Fatalf("%s: actual_bytes %d exceeds worst-case bound %d", name, sp.Header().ActualBytes, bound)
		}
	}
}

func TestLayeredEncodeDecodeRoundTrip(t *testing.T) {
	st := statetest.New()
	w, h, layers := 2, 1, 2
	size := header.DenseSize(format.ColorRGBA8, format.DepthD32F, w, h, true, layers)
	buf := make([]byte, size)
	img, err := dense.Assign(st, buf, format.ColorRGBA8, format.DepthD32F, w, h, w*h, true, int32(layers))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	// Pixel 0 carries two live fragments sorted by depth; pixel 1 is empty.
	depths := [][]float32{{0.2, 0.7}, {1, 1}}
	for p := 0; p < w*h; p++ {
		for l := 0; l < layers; l++ {
			var f format.Fragment
			f.SetRGBA8(byte(100+10*p+l), 0, 0, 255)
			f.SetDepthValue(format.DepthD32F, depths[p][l])
			img.SetFragment(p, l, f)
		}
	}

	var bg format.Fragment
	sp := Encode(st, "layered", format.CompositeZBuffer, bg, img)
	if !sp.Header().Magic.Layered() {
		t.Fatalf("encoded image lost the layered flag")
	}
	if sp.NumActivePixels() != 1 {
		t.Fatalf("NumActivePixels = %d, want 1", sp.NumActivePixels())
	}

	outBuf := make([]byte, size)
	out, err := dense.Assign(st, outBuf, format.ColorRGBA8, format.DepthD32F, w, h, w*h, true, int32(layers))
	if err != nil {
		t.Fatalf("Assign out: %v", err)
	}
	Decode(st, out, sp, bg, bg, false)

	for l := 0; l < layers; l++ {
		f := out.Fragment(0, l)
		r, _, _, _ := f.RGBA8()
		if int(r) != 100+l {
			t.Fatalf("pixel 0 layer %d: got r=%d, want %d", l, r, 100+l)
		}
		if f.DepthValue(format.DepthD32F) != depths[0][l] {
			t.Fatalf("pixel 0 layer %d: depth %v", l, f.DepthValue(format.DepthD32F))
		}
	}
	for l := 0; l < layers; l++ {
		f := out.Fragment(1, l)
		if f.DepthValue(format.DepthD32F) != 1.0 {
			t.Fatalf("pixel 1 layer %d: expected background depth 1.0", l)
		}
	}
}

func TestClearProducesAllInactive(t *testing.T) {
	st := statetest.New()
	sp := Clear(st, "cleared", format.ColorRGBA8, format.DepthD32F, 4, 2, 8, false, 1)
	if sp.NumActivePixels() != 0 {
		t.Fatalf("NumActivePixels = %d, want 0", sp.NumActivePixels())
	}
	if sp.NumRuns() != 1 {
		t.Fatalf("NumRuns = %d, want 1", sp.NumRuns())
	}
}
