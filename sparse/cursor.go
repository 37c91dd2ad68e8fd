// Cursor and Builder implement the sparse scan primitive (spec.md §4.4),
// the central routine every transform in this package is built from: Cursor
// reads logical pixels out of a run stream one at a time; Builder appends
// logical pixels into a new run stream, applying the tail-merge rule so
// adjacent pixels of the same activity collapse into a single run instead
// of a fresh run header per pixel.
package sparse

import (
	"encoding/binary"

	"github.com/parallelviz/tileimage/format"
)

// Cursor scans a run stream by logical pixel. Its fields mirror the scan
// state spec.md §4.4 names explicitly: inactiveBefore and
// activeTillNextRunl are how many inactive/active pixels of the run at
// lastRunHeaderOffset remain ahead of pos.
type Cursor struct {
	buf     []byte
	pos     int
	layered bool
	cf      format.ColorFormat
	df      format.DepthFormat

	inactiveBefore      uint32
	activeTillNextRunl  uint32
	lastRunHeaderOffset int
}

// NewCursor returns a Cursor positioned at the start of the run stream
// beginning at payloadOffset within buf.
func NewCursor(buf []byte, payloadOffset int, layered bool, cf format.ColorFormat, df format.DepthFormat) *Cursor {
	return &Cursor{
		buf:                 buf,
		pos:                 payloadOffset,
		layered:             layered,
		cf:                  cf,
		df:                  df,
		lastRunHeaderOffset: -1,
	}
}

// ensureRun reads the next run header once both of the current run's
// counts are exhausted (spec.md §4.4 case (iii)). Reports false once the
// stream has no more runs to read.
func (c *Cursor) ensureRun() bool {
	if c.inactiveBefore > 0 || c.activeTillNextRunl > 0 {
		return true
	}
	if c.pos >= len(c.buf) {
		return false
	}
	c.lastRunHeaderOffset = c.pos
	rh, n := readRunHeader(c.buf, c.pos, c.layered)
	c.pos += n
	c.inactiveBefore = rh.Inactive
	c.activeTillNextRunl = rh.Active
	return true
}

// Done reports whether the stream has no more runs to read.
func (c *Cursor) Done() bool {
	return c.inactiveBefore == 0 && c.activeTillNextRunl == 0 && c.pos >= len(c.buf)
}

// NextPixel consumes one logical pixel, reporting whether it was active and,
// if so, its fragments (exactly one for a flat stream, the stored count for
// a layered one). ok is false once the stream is exhausted.
func (c *Cursor) NextPixel() (active bool, frags []format.Fragment, ok bool) {
	if !c.ensureRun() {
		return false, nil, false
	}
	if c.inactiveBefore > 0 {
		c.inactiveBefore--
		return false, nil, true
	}
	c.activeTillNextRunl--
	if !c.layered {
		frag, n := format.ReadFragment(c.buf, c.pos, c.cf, c.df)
		c.pos += n
		return true, []format.Fragment{frag}, true
	}
	fragCount := binary.LittleEndian.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	frags = make([]format.Fragment, fragCount)
	for i := range frags {
		frag, n := format.ReadFragment(c.buf, c.pos, c.cf, c.df)
		c.pos += n
		frags[i] = frag
	}
	return true, frags, true
}

// Skip advances n logical pixels without retaining their data.
func (c *Cursor) Skip(n int) bool {
	for i := 0; i < n; i++ {
		if _, _, ok := c.NextPixel(); !ok {
			return false
		}
	}
	return true
}

// CopyTo advances n logical pixels, appending each to b (the scan-and-copy
// half of spec.md §4.4: "optionally copying the scanned data to an output
// cursor").
func (c *Cursor) CopyTo(b *Builder, n int) bool {
	for i := 0; i < n; i++ {
		active, frags, ok := c.NextPixel()
		if !ok {
			return false
		}
		if active {
			b.AppendActive(frags)
		} else {
			b.AppendInactive(1)
		}
	}
	return true
}

// Builder appends logical pixels into a fresh run stream, merging adjacent
// pixels of the same activity into one run rather than opening a new run
// header per call (spec.md §4.4's output-cursor merge rule: "an active
// pixel extends the output's active tail only if the tail's active count >
// 0; otherwise... a new run is needed" — symmetrically, inactive pixels
// extend the tail only while it has not yet started an active span).
type Builder struct {
	buf     []byte
	layered bool
	cf      format.ColorFormat
	df      format.DepthFormat

	haveRun        bool
	curInactive    uint32
	curActive      uint32
	curActiveFrags uint32
	pending        []byte
}

// NewBuilder returns an empty Builder for the given stream class and
// formats.
func NewBuilder(layered bool, cf format.ColorFormat, df format.DepthFormat) *Builder {
	return &Builder{layered: layered, cf: cf, df: df}
}

// AppendInactive appends n consecutive inactive pixels.
func (b *Builder) AppendInactive(n uint32) {
	if n == 0 {
		return
	}
	if b.haveRun && b.curActive == 0 {
		b.curInactive += n
		return
	}
	b.flush()
	b.haveRun = true
	b.curInactive = n
}

// AppendActive appends one active pixel carrying frags (length 1 for a flat
// stream, any length for a layered one).
func (b *Builder) AppendActive(frags []format.Fragment) {
	if !b.haveRun {
		b.haveRun = true
	}
	b.curActive++
	if b.layered {
		var cnt [4]byte
		binary.LittleEndian.PutUint32(cnt[:], uint32(len(frags)))
		b.pending = append(b.pending, cnt[:]...)
		b.curActiveFrags += uint32(len(frags))
	}
	var tmp [32]byte
	for _, f := range frags {
		n := format.WriteFragment(tmp[:], 0, b.cf, b.df, f)
		b.pending = append(b.pending, tmp[:n]...)
	}
}

// flush closes the in-progress run, writing its header and pending
// fragment bytes to buf.
func (b *Builder) flush() {
	if !b.haveRun {
		return
	}
	rh := RunHeader{Inactive: b.curInactive, Active: b.curActive, ActiveFragments: b.curActiveFrags}
	hdrBuf := make([]byte, runHeaderSize(b.layered))
	writeRunHeader(hdrBuf, 0, rh, b.layered)
	b.buf = append(b.buf, hdrBuf...)
	b.buf = append(b.buf, b.pending...)
	b.pending = b.pending[:0]
	b.haveRun = false
	b.curInactive, b.curActive, b.curActiveFrags = 0, 0, 0
}

// Bytes flushes any in-progress run and returns the accumulated stream.
func (b *Builder) Bytes() []byte {
	b.flush()
	return b.buf
}
