package dense

import (
	"github.com/parallelviz/tileimage/state"
)

// Clone duplicates an entire dense image, header included, into a second
// state-store buffer. Supplemented from original_source/src/ice-t/image.c
// (not explicit in spec.md's distillation): the original's full-image
// duplication path used internally before compression, when a caller needs
// to mutate a tile without disturbing the source render target.
func Clone(store state.Store, name state.Name, src Dense) Dense {
	h := src.Header()
	size := len(src.buf)
	if h.ActualBytes != -1 && int(h.ActualBytes) < size {
		size = int(h.ActualBytes)
	}
	buf := store.GetStateBuffer(name, size)
	copy(buf, src.buf[:size])
	return Dense{buf: buf}
}
