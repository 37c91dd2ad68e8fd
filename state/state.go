// Package state defines the external state-store contract the image core
// consumes (spec.md §6): process-wide format/background reads, a keyed
// buffer allocator, and an error/warning channel. The core never implements
// this contract itself — callers inject a Store (design note, spec.md §9:
// "process-wide format/background state → explicit context"). See
// state/statetest for an in-memory reference implementation used by this
// repo's own tests.
package state

import "github.com/parallelviz/tileimage/format"

// Name identifies a scalar or buffer the Store knows how to produce.
// Recognized names are listed in spec.md §6; callers may define additional
// names for their own buffer keys (e.g. per-tile scratch buffers).
type Name string

// Recognized state names (spec.md §6).
const (
	NameColorFormat           Name = "color_format"
	NameDepthFormat           Name = "depth_format"
	NameCompositeMode         Name = "composite_mode"
	NameBackgroundColorFloat  Name = "background_color_float"
	NameBackgroundColorWord   Name = "background_color_word"
	NameTrueBackgroundFloat   Name = "true_background_color_float"
	NameTrueBackgroundWord    Name = "true_background_color_word"
	NameOneBufferComposite    Name = "one_buffer_composite"
	NameFloatingViewport      Name = "floating_viewport"
	NameEmptyImageRender      Name = "empty_image_render"
	NamePreRendered           Name = "pre_rendered"
	NameRenderLayerHoldsBuf   Name = "render_layer_holds_buffer"
	NameDrawingFrame          Name = "drawing_frame"
	NameTileViewports         Name = "tile_viewports"
	NameContainedViewportMask Name = "contained_viewport_mask"
	NamePhysicalRenderWidth   Name = "physical_render_width"
	NamePhysicalRenderHeight  Name = "physical_render_height"
	NameMaxLayers             Name = "max_layers"

	// NameRenderedViewportTimestamp and NameFrameStartTimestamp back the
	// floating-viewport reuse guard (spec.md §4.7).
	NameRenderedViewportTimestamp Name = "rendered_viewport_timestamp"
	NameFrameStartTimestamp       Name = "frame_start_timestamp"
)

// Store is the process-wide state store the image core reads from and
// reports errors to. Implementations are process-global by design: buffers
// returned by GetStateBuffer for the same name may alias a previous call's
// result and must be treated as invalidated by any later call with that
// name (spec.md §5).
//
// Store embeds Timing: the timing marker calls are listed in spec.md §1 as
// one of the four things the image core consumes from its external
// collaborators, alongside the buffer allocator and the scalar/enum reads
// this interface also carries, so a single injected Store satisfies both.
type Store interface {
	Timing

	// GetEnum returns an integer-valued enum state (composite mode,
	// formats, and similar small closed sets).
	GetEnum(name Name) int32
	// GetInteger, GetFloat, and GetBoolean return scalar configuration or
	// timestamp state.
	GetInteger(name Name) int64
	GetFloat(name Name) float64
	GetBoolean(name Name) bool
	// GetFloat4 returns a 4-float state value (background colors).
	GetFloat4(name Name) [4]float32
	// GetIntSlice returns an integer-slice state value (tile viewports).
	GetIntSlice(name Name) []int32
	// GetPointer returns an opaque pointer-valued state (e.g. the draw
	// callback function value).
	GetPointer(name Name) any

	// GetStateBuffer returns a process-owned buffer of at least the given
	// size for the given name, reusing a prior allocation for that name
	// when large enough.
	GetStateBuffer(name Name, bytes int) []byte

	// RaiseError reports a detected precondition failure. Callers treat the
	// operation as aborted and fall back to an identity result (a null
	// image, zero, or a no-op) per spec.md §7.
	RaiseError(kind format.ErrorKind, f string, args ...any)
	// RaiseWarning reports a recoverable issue (e.g. blending without an
	// alpha channel) that does not abort the operation.
	RaiseWarning(kind format.ErrorKind, f string, args ...any)
}
