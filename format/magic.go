package format

// Magic is the self-describing discriminant stored at header offset 0. It
// identifies the image class (dense, dense-pointer, sparse) and carries the
// LAYERED flag as a separate bit, per the data model in SPEC_FULL.md §3.
type Magic int32

// Base magic values. LayeredFlag is combined with one of these via bitwise
// OR; it is never a class on its own.
const (
	MagicDense        Magic = 0x1
	MagicDensePointer Magic = 0x2
	MagicSparse       Magic = 0x3

	LayeredFlag Magic = 0x10
)

// Class returns m with the LAYERED flag stripped, i.e. the base image class.
func (m Magic) Class() Magic {
	return m &^ LayeredFlag
}

// Layered reports whether the LAYERED flag is set.
func (m Magic) Layered() bool {
	return m&LayeredFlag != 0
}

// WithLayered returns m with the LAYERED flag set or cleared.
func (m Magic) WithLayered(layered bool) Magic {
	if layered {
		return m | LayeredFlag
	}
	return m &^ LayeredFlag
}

// IsDense reports whether m's class is a flat dense image.
func (m Magic) IsDense() bool {
	return m.Class() == MagicDense
}

// IsDensePointer reports whether m's class is a pointer-backed dense image.
func (m Magic) IsDensePointer() bool {
	return m.Class() == MagicDensePointer
}

// IsSparse reports whether m's class is a sparse (RLE) image.
func (m Magic) IsSparse() bool {
	return m.Class() == MagicSparse
}

// Valid reports whether m names a recognized class, with any combination of
// flag bits.
func (m Magic) Valid() bool {
	switch m.Class() {
	case MagicDense, MagicDensePointer, MagicSparse:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of m.
func (m Magic) String() string {
	var base string
	switch m.Class() {
	case MagicDense:
		base = "dense"
	case MagicDensePointer:
		base = "dense-pointer"
	case MagicSparse:
		base = "sparse"
	default:
		base = "invalid"
	}
	if m.Layered() {
		return base + "+layered"
	}
	return base
}
