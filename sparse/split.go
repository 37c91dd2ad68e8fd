package sparse

import (
	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/internal/header"
	"github.com/parallelviz/tileimage/state"
)

// subPartitionSize and subPartitionOffset implement the hierarchical
// partition boundary rule of spec.md §4.5: splitting n pixels into E
// sub-partitions distributes the remainder n%E one pixel at a time across
// the first n%E sub-partitions, so that partitioning into K (K|E) output
// partitions of E/K sub-partitions each lines up with a recursive halving
// of E.
func subPartitionSize(n, E, k int) int {
	base := n / E
	if k < n%E {
		return base + 1
	}
	return base
}

func subPartitionOffset(n, E, k int) int {
	off := 0
	for i := 0; i < k; i++ {
		off += subPartitionSize(n, E, i)
	}
	return off
}

// Split produces K consecutive partitions of src whose boundaries follow
// the eventual-E hierarchical rule (spec.md §4.5 "Split"). K=1 (with any E)
// is the identity case (spec.md §9 open question (b)): the single output
// partition's sub-partition range is [0, E), i.e. the whole image.
func Split(store state.Store, names []state.Name, src Sparse, k, e int) ([]Sparse, error) {
	store.CompressBegin()
	defer store.CompressEnd()

	h := src.Header()
	n := int(h.Width) * int(h.Height)
	if k <= 0 || e < k || e%k != 0 {
		store.RaiseError(format.InvalidValue, "sparse: Split: invalid K=%d E=%d", k, e)
		return nil, format.NewError(format.InvalidValue, "invalid partition counts")
	}
	if len(names) != k {
		store.RaiseError(format.InvalidValue, "sparse: Split: need %d buffer names, got %d", k, len(names))
		return nil, format.NewError(format.InvalidValue, "wrong number of buffer names")
	}
	subPerPartition := e / k
	out := make([]Sparse, k)
	for i := 0; i < k; i++ {
		startSub := i * subPerPartition
		endSub := startSub + subPerPartition
		offset := subPartitionOffset(n, e, startSub)
		length := subPartitionOffset(n, e, endSub) - offset
		out[i] = CopyPixelRange(store, names[i], src, offset, length)
	}
	return out, nil
}

// SplitAllocSize returns the worst-case byte size of a single buffer holding
// all K partitions of src consecutively: the source's compressed size plus,
// per additional partition, one image header and one run header for the run
// a partition boundary may cut in two (spec.md §4.5's allocating variant).
func SplitAllocSize(src Sparse, k int) int {
	h := src.Header()
	layered := h.Magic.Layered()
	hdr := header.Size
	if layered {
		hdr += header.LayeredSubHeaderSize
	}
	return int(h.ActualBytes) + (k-1)*(hdr+runHeaderSize(layered))
}

// SplitAlloc is the variant of Split that allocates its own output: it
// obtains one state buffer sized by SplitAllocSize under name and carves the
// K partitions out of it back to back. The partition boundaries follow the
// same eventual-E hierarchical rule as Split.
func SplitAlloc(store state.Store, name state.Name, src Sparse, k, e int) ([]Sparse, error) {
	store.CompressBegin()
	defer store.CompressEnd()

	h := src.Header()
	n := int(h.Width) * int(h.Height)
	if k <= 0 || e < k || e%k != 0 {
		store.RaiseError(format.InvalidValue, "sparse: SplitAlloc: invalid K=%d E=%d", k, e)
		return nil, format.NewError(format.InvalidValue, "invalid partition counts")
	}
	layered := h.Magic.Layered()
	hdrSize := header.Size
	if layered {
		hdrSize += header.LayeredSubHeaderSize
	}
	buf := store.GetStateBuffer(name, SplitAllocSize(src, k))

	subPerPartition := e / k
	out := make([]Sparse, k)
	c := src.NewScanCursor()
	off := 0
	for i := 0; i < k; i++ {
		startSub := i * subPerPartition
		endSub := startSub + subPerPartition
		length := subPartitionOffset(n, e, endSub) - subPartitionOffset(n, e, startSub)
		b := NewBuilder(layered, h.ColorFormat, h.DepthFormat)
		c.CopyTo(b, length)
		payload := b.Bytes()
		need := hdrSize + len(payload)
		if off+need > len(buf) {
			store.RaiseError(format.SanityCheckFail, "sparse: SplitAlloc: partitions overrun the %d-byte bound", len(buf))
			return nil, format.NewError(format.SanityCheckFail, "partition buffer overrun")
		}
		img, err := Assign(store, buf[off:off+need], h.ColorFormat, h.DepthFormat, length, 1, length, layered, src.NumLayers(), payload)
		if err != nil {
			return nil, err
		}
		out[i] = img
		off += need
	}
	return out, nil
}
