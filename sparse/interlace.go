package sparse

import (
	"math/bits"

	"github.com/parallelviz/tileimage/state"
)

// numBits returns ceil(log2(E)), the width of the bit-reverse permutation
// used by Interlace (spec.md §4.5).
func numBits(e int) uint {
	if e <= 1 {
		return 0
	}
	return uint(bits.Len(uint(e - 1)))
}

// BitReverse reverses the ceil(log2(e)) low bits of x, falling back to
// identity for x >= e (spec.md §4.5 "Interlace").
func BitReverse(x, e int) int {
	if x >= e || x < 0 {
		return x
	}
	nb := numBits(e)
	var r uint
	v := uint(x)
	for i := uint(0); i < nb; i++ {
		r <<= 1
		r |= v & 1
		v >>= 1
	}
	if int(r) >= e {
		return x
	}
	return int(r)
}

// InterlaceOffset returns the pixel offset, within the interlaced stream of
// an n-pixel image interlaced toward e eventual partitions, at which
// interlaced chunk j begins: the sum of the sizes of the chunks before it
// (spec.md §4.5 "Interlace offset lookup", §8 invariant 5). Chunk k holds
// source partition BitReverse(k, e) but carries the k-indexed share of the
// remainder, so the chunk boundaries coincide with a later Split of the
// interlaced image into e partitions; summing all e chunk sizes yields n.
func InterlaceOffset(n, e, j int) int {
	off := 0
	for k := 0; k < j; k++ {
		off += subPartitionSize(n, e, k)
	}
	return off
}

// Interlace reorders src's e sub-partitions so output chunk j holds source
// partition BitReverse(j, e) (spec.md §4.5 "Interlace"). A single forward
// pass over the stream records one scan cursor per interlaced chunk; a
// second pass appends each chunk's pixels to the output in order, using the
// scan primitive's merge semantics to keep the output compact.
//
// Chunk j is sized by its interlaced index j, not its source index: source
// partition i occupies subPartitionSize(n, e, BitReverse(i, e)) pixels, so
// that splitting the interlaced image into e partitions later recovers
// whole source partitions even when e does not divide n.
func Interlace(store state.Store, name state.Name, src Sparse, e int) Sparse {
	store.InterlaceBegin()
	defer store.InterlaceEnd()

	h := src.Header()
	n := int(h.Width) * int(h.Height)
	layered := h.Magic.Layered()

	// Nothing to reorder.
	if e < 2 {
		return CopyPixelRange(store, name, src, 0, n)
	}

	cursors := make([]Cursor, e)
	c := src.NewScanCursor()
	for orig := 0; orig < e; orig++ {
		inter := BitReverse(orig, e)
		cursors[inter] = *c
		if orig < e-1 {
			c.Skip(subPartitionSize(n, e, inter))
		}
	}

	b := NewBuilder(layered, h.ColorFormat, h.DepthFormat)
	for inter := 0; inter < e; inter++ {
		cur := cursors[inter]
		cur.CopyTo(b, subPartitionSize(n, e, inter))
	}

	return FromBuilder(store, name, h.ColorFormat, h.DepthFormat, int(h.Width), int(h.Height), int(h.MaxPixels), layered, src.NumLayers(), b)
}
