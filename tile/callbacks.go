package tile

import (
	"github.com/parallelviz/tileimage/dense"
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/sparse"
	"github.com/parallelviz/tileimage/state"
)

// DrawFunc is the draw callback signature exposed to the image core (spec.md
// §6, "Callbacks exposed"): given the current projection/modelview matrices,
// the background to clear to, and the viewport to read back, it renders the
// scene into image. readbackViewport is expressed in image's own local
// coordinate frame (origin at image's bottom-left corner).
type DrawFunc func(projection, modelview [16]float32, background [4]float32, readbackViewport Viewport, image dense.Writer)

// RenderedBufferProvider is the pair of callbacks spec.md §6 exposes "when
// the renderer owns the buffer": instead of the caller handing the core an
// already-rendered dense.Reader (as GetTileImage/GetCompressedTileImage take
// directly), these invoke a DrawFunc to produce one first.
type RenderedBufferProvider interface {
	GetRenderedBufferImage(store state.Store, dst dense.Writer, renderedVP, targetVP Viewport) error
	GetCompressedRenderedBufferImage(store state.Store, name state.Name, renderedVP, targetVP Viewport, w, h int) (sparse.Sparse, error)
}

// Renderer is a RenderedBufferProvider backed by a single DrawFunc and the
// projection/modelview/background state a frame renders with.
type Renderer struct {
	Draw        DrawFunc
	Projection  [16]float32
	Modelview   [16]float32
	Background  [4]float32
	Mode        format.CompositeMode
	BGFragment  format.Fragment
	ScratchName state.Name
	ColorFormat format.ColorFormat
	DepthFormat format.DepthFormat
}

// render invokes r.Draw under the RenderBegin/RenderEnd timing bracket
// (spec.md §5) into a freshly assigned scratch dense image sized to
// renderedVP, then reads it back under BufferReadBegin/BufferReadEnd —
// the two markers spec.md §1 lists as the core's callback-facing timing
// hooks, bracketing the render call and its readback as distinct phases.
func (r Renderer) render(store state.Store, renderedVP Viewport) (dense.Dense, error) {
	size := header.DenseSize(r.ColorFormat, r.DepthFormat, renderedVP.W, renderedVP.H, false, 1)
	buf := store.GetStateBuffer(r.ScratchName, size)
	scratch, err := dense.Assign(store, buf, r.ColorFormat, r.DepthFormat, renderedVP.W, renderedVP.H, renderedVP.W*renderedVP.H, false, 1)
	if err != nil {
		store.RaiseError(format.InvalidOperation, "tile: Renderer: scratch buffer assign failed")
		return dense.Dense{}, err
	}

	store.RenderBegin()
	r.Draw(r.Projection, r.Modelview, r.Background, Viewport{X: 0, Y: 0, W: renderedVP.W, H: renderedVP.H}, scratch)
	store.RenderEnd()

	store.BufferReadBegin()
	defer store.BufferReadEnd()
	return scratch, nil
}

// reuse rebinds the scratch buffer r last rendered into, without invoking
// r.Draw or any timing marker (spec.md §4.7's floating-viewport reuse path).
func (r Renderer) reuse(store state.Store, renderedVP Viewport) dense.Dense {
	size := header.DenseSize(r.ColorFormat, r.DepthFormat, renderedVP.W, renderedVP.H, false, 1)
	buf := store.GetStateBuffer(r.ScratchName, size)
	return dense.Bind(buf[:size])
}

// GetRenderedBufferImage renders via r.Draw and copies the targetVP overlap
// into dst, exactly as GetTileImage does for an already-rendered source
// (spec.md §6 "get_rendered_buffer_image").
func (r Renderer) GetRenderedBufferImage(store state.Store, dst dense.Writer, renderedVP, targetVP Viewport) error {
	scratch, err := r.render(store, renderedVP)
	if err != nil {
		return err
	}
	return GetTileImage(store, dst, targetVP, scratch, renderedVP, r.BGFragment)
}

// GetCompressedRenderedBufferImage renders via r.Draw and compresses the
// targetVP overlap into a w x h sparse image, exactly as
// GetCompressedTileImage does for an already-rendered source (spec.md §6
// "get_compressed_rendered_buffer_image").
func (r Renderer) GetCompressedRenderedBufferImage(store state.Store, name state.Name, renderedVP, targetVP Viewport, w, h int) (sparse.Sparse, error) {
	scratch, err := r.render(store, renderedVP)
	if err != nil {
		return sparse.Sparse{}, err
	}
	return GetCompressedTileImage(store, name, r.Mode, r.BGFragment, scratch, renderedVP, targetVP, w, h), nil
}

var _ RenderedBufferProvider = Renderer{}
