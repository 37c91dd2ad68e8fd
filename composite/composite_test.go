package composite

import (
	"testing"

	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/sparse"
	"github.com/parallelviz/tileimage/state"
	"github.com/parallelviz/tileimage/state/statetest"
)

func assignDense(t *testing.T, st state.Store, w, h int, pixels [][2]any) dense.Dense {
	t.Helper()
	size := header.DenseSize(format.ColorRGBA8, format.DepthD32F, w, h, false, 1)
	buf := make([]byte, size)
	img, err := dense.Assign(st, buf, format.ColorRGBA8, format.DepthD32F, w, h, w*h, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	for p, px := range pixels {
		c := px[0].([4]byte)
		d := px[1].(float32)
		var f format.Fragment
		f.SetRGBA8(c[0], c[1], c[2], c[3])
		f.SetDepthValue(format.DepthD32F, d)
		img.SetFragment(p, 0, f)
	}
	return img
}

func TestComposeDenseScenarioD(t *testing.T) {
	st := statetest.New()
	red := [4]byte{255, 0, 0, 255}
	green := [4]byte{0, 255, 0, 255}
	blue := [4]byte{0, 0, 255, 255}
	yellow := [4]byte{255, 255, 0, 255}

	a := assignDense(t, st, 2, 1, [][2]any{{red, float32(0.2)}, {green, float32(0.9)}})
	b := assignDense(t, st, 2, 1, [][2]any{{blue, float32(0.5)}, {yellow, float32(0.3)}})

	outBuf := make([]byte, header.DenseSize(format.ColorRGBA8, format.DepthD32F, 2, 1, false, 1))
	out, err := dense.Assign(st, outBuf, format.ColorRGBA8, format.DepthD32F, 2, 1, 2, false, 1)
	if err != nil {
		t.Fatalf("Assign out: %v", err)
	}
	if err := ComposeDense(st, format.CompositeZBuffer, format.BlendOver, out, a, b); err != nil {
		t.Fatalf("ComposeDense: %v", err)
	}

	f0 := out.Fragment(0, 0)
	r, g, b0, al := f0.RGBA8()
	if [4]byte{r, g, b0, al} != red || f0.DepthValue(format.DepthD32F) != 0.2 {
		t.Fatalf("pixel 0: got color %v depth %v, want red/0.2", [4]byte{r, g, b0, al}, f0.DepthValue(format.DepthD32F))
	}
	f1 := out.Fragment(1, 0)
	r, g, b0, al = f1.RGBA8()
	if [4]byte{r, g, b0, al} != yellow || f1.DepthValue(format.DepthD32F) != 0.3 {
		t.Fatalf("pixel 1: got color %v depth %v, want yellow/0.3", [4]byte{r, g, b0, al}, f1.DepthValue(format.DepthD32F))
	}
}

func makeSingleActiveSparse(t *testing.T, st state.Store, name state.Name, r, g, b, a byte) sparse.Sparse {
	t.Helper()
	builder := sparse.NewBuilder(false, format.ColorRGBA8, format.DepthNone)
	var f format.Fragment
	f.SetRGBA8(r, g, b, a)
	builder.AppendActive([]format.Fragment{f})
	return sparse.FromBuilder(st, name, format.ColorRGBA8, format.DepthNone, 1, 1, 1, false, 1, builder)
}

func TestComposeSparseSparseScenarioE(t *testing.T) {
	st := statetest.New()
	front := makeSingleActiveSparse(t, st, "front", 100, 0, 0, 128)
	back := makeSingleActiveSparse(t, st, "back", 0, 0, 200, 255)

	out, err := ComposeSparseSparse(st, "cc-out", format.CompositeBlend, Options{}, front, back)
	if err != nil {
		t.Fatalf("ComposeSparseSparse: %v", err)
	}
	if out.NumActivePixels() != 1 {
		t.Fatalf("NumActivePixels = %d, want 1", out.NumActivePixels())
	}
	c := out.NewScanCursor()
	active, frags, ok := c.NextPixel()
	if !ok || !active {
		t.Fatalf("expected one active pixel")
	}
	r, g, b, a := frags[0].RGBA8()
	want := [4]byte{100, 0, 99, 254}
	if [4]byte{r, g, b, a} != want {
		t.Fatalf("got (%d,%d,%d,%d), want %v (spec.md Scenario E)", r, g, b, a, want)
	}
}

func TestComposeDenseSparseBlendsActivePixels(t *testing.T) {
	st := statetest.New()
	size := header.DenseSize(format.ColorRGBA8, format.DepthNone, 1, 1, false, 1)
	buf := make([]byte, size)
	dst, err := dense.Assign(st, buf, format.ColorRGBA8, format.DepthNone, 1, 1, 1, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	var back format.Fragment
	back.SetRGBA8(0, 0, 200, 255)
	dst.SetFragment(0, 0, back)

	front := makeSingleActiveSparse(t, st, "front-ds", 100, 0, 0, 128)
	if err := ComposeDenseSparse(st, format.CompositeBlend, format.BlendOver, dst, front); err != nil {
		t.Fatalf("ComposeDenseSparse: %v", err)
	}
	f := dst.Fragment(0, 0)
	r, g, b, a := f.RGBA8()
	want := [4]byte{100, 0, 99, 254}
	if [4]byte{r, g, b, a} != want {
		t.Fatalf("got (%d,%d,%d,%d), want %v", r, g, b, a, want)
	}
}

func TestComposeDenseSparseLeavesInactivePixelsAlone(t *testing.T) {
	st := statetest.New()
	size := header.DenseSize(format.ColorRGBA8, format.DepthNone, 2, 1, false, 1)
	buf := make([]byte, size)
	dst, err := dense.Assign(st, buf, format.ColorRGBA8, format.DepthNone, 2, 1, 2, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	var back format.Fragment
	back.SetRGBA8(7, 7, 7, 255)
	dst.SetFragment(0, 0, back)
	dst.SetFragment(1, 0, back)

	// One inactive pixel, then one active.
	b := sparse.NewBuilder(false, format.ColorRGBA8, format.DepthNone)
	b.AppendInactive(1)
	var f format.Fragment
	f.SetRGBA8(0, 0, 0, 255)
	b.AppendActive([]format.Fragment{f})
	sp := sparse.FromBuilder(st, "inactive-active", format.ColorRGBA8, format.DepthNone, 2, 1, 2, false, 1, b)

	if err := ComposeDenseSparse(st, format.CompositeBlend, format.BlendOver, dst, sp); err != nil {
		t.Fatalf("ComposeDenseSparse: %v", err)
	}
	got := dst.Fragment(0, 0)
	r, g, bb, a := got.RGBA8()
	if [4]byte{r, g, bb, a} != [4]byte{7, 7, 7, 255} {
		t.Fatalf("inactive pixel was modified: (%d,%d,%d,%d)", r, g, bb, a)
	}
	got = dst.Fragment(1, 0)
	r, g, bb, a = got.RGBA8()
	if [4]byte{r, g, bb, a} != [4]byte{0, 0, 0, 255} {
		t.Fatalf("active pixel not blended: (%d,%d,%d,%d)", r, g, bb, a)
	}
}

func makeLayeredSparse(t *testing.T, st state.Store, name state.Name, frags []struct {
	r     byte
	depth float32
}) sparse.Sparse {
	t.Helper()
	b := sparse.NewBuilder(true, format.ColorRGBA8, format.DepthD32F)
	fs := make([]format.Fragment, len(frags))
	for i, fr := range frags {
		fs[i].SetRGBA8(fr.r, 0, 0, 255)
		fs[i].SetDepthValue(format.DepthD32F, fr.depth)
	}
	b.AppendActive(fs)
	return sparse.FromBuilder(st, name, format.ColorRGBA8, format.DepthD32F, 1, 1, 1, true, int32(len(frags)), b)
}

func TestComposeSparseSparseLayeredMergeRespectsCap(t *testing.T) {
	st := statetest.New()
	type frag = struct {
		r     byte
		depth float32
	}
	a := makeLayeredSparse(t, st, "layered-a", []frag{{10, 0.1}, {30, 0.5}})
	b := makeLayeredSparse(t, st, "layered-b", []frag{{20, 0.3}, {40, 0.9}})

	out, err := ComposeSparseSparse(st, "layered-cc", format.CompositeZBuffer, Options{MaxLayers: 3}, a, b)
	if err != nil {
		t.Fatalf("ComposeSparseSparse: %v", err)
	}
	c := out.NewScanCursor()
	active, frags, ok := c.NextPixel()
	if !ok || !active {
		t.Fatalf("expected one active pixel")
	}
	if len(frags) != 3 {
		t.Fatalf("got %d fragments, want 3 (capped merge of 2+2)", len(frags))
	}
	wantR := []byte{10, 20, 30}
	wantDepth := []float32{0.1, 0.3, 0.5}
	for i, f := range frags {
		r, _, _, _ := f.RGBA8()
		if r != wantR[i] || f.DepthValue(format.DepthD32F) != wantDepth[i] {
			t.Fatalf("fragment %d: got (r=%d, depth=%v), want (r=%d, depth=%v)",
				i, r, f.DepthValue(format.DepthD32F), wantR[i], wantDepth[i])
		}
	}
}

func TestComposeSparseSparseEquivalentToDecodeThenComposeDense(t *testing.T) {
	st := statetest.New()
	red := [4]byte{255, 0, 0, 255}
	green := [4]byte{0, 255, 0, 255}
	blue := [4]byte{0, 0, 255, 255}
	yellow := [4]byte{255, 255, 0, 255}
	a := assignDense(t, st, 2, 1, [][2]any{{red, float32(0.2)}, {green, float32(0.9)}})
	b := assignDense(t, st, 2, 1, [][2]any{{blue, float32(0.5)}, {yellow, float32(0.3)}})

	var bg format.Fragment
	sa := sparse.Encode(st, "sa", format.CompositeZBuffer, bg, a)
	sb := sparse.Encode(st, "sb", format.CompositeZBuffer, bg, b)

	cc, err := ComposeSparseSparse(st, "cc", format.CompositeZBuffer, Options{}, sa, sb)
	if err != nil {
		t.Fatalf("ComposeSparseSparse: %v", err)
	}

	ccDecodedBuf := make([]byte, header.DenseSize(format.ColorRGBA8, format.DepthD32F, 2, 1, false, 1))
	ccDecoded, err := dense.Assign(st, ccDecodedBuf, format.ColorRGBA8, format.DepthD32F, 2, 1, 2, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	sparse.Decode(st, ccDecoded, cc, bg, bg, false)

	denseComposedBuf := make([]byte, header.DenseSize(format.ColorRGBA8, format.DepthD32F, 2, 1, false, 1))
	denseComposed, err := dense.Assign(st, denseComposedBuf, format.ColorRGBA8, format.DepthD32F, 2, 1, 2, false, 1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := ComposeDense(st, format.CompositeZBuffer, format.BlendOver, denseComposed, a, b); err != nil {
		t.Fatalf("ComposeDense: %v", err)
	}

	for p := 0; p < 2; p++ {
		got := ccDecoded.Fragment(p, 0)
		want := denseComposed.Fragment(p, 0)
		if got.Color != want.Color || got.Depth != want.Depth {
			t.Fatalf("pixel %d: cc-decode %+v != dense-compose %+v", p, got, want)
		}
	}
}
