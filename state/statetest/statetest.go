// Package statetest provides an in-memory reference implementation of
// state.Store, adapted from the teacher's bucketed sync.Pool allocator
// (internal/pool/pool.go) into a name-keyed buffer table: the external
// contract addresses buffers by symbolic name (state.Name), not by size
// class alone, so size-classing is kept as the allocation strategy used
// once a name's buffer must grow rather than as the lookup key itself.
//
// This package exists for this repo's own tests and for any external
// driver that wants a drop-in Store without standing up its own state
// management; it is not part of the image core itself (spec.md treats the
// state store as an external collaborator).
package statetest

import (
	"sync"

	"github.com/parallelviz/tileimage/format"
)

// size classes for the buffer table, mirroring internal/pool/pool.go.
const (
	size256B = 256
	size1K   = 1024
	size4K   = 4096
	size16K  = 16384
	size64K  = 65536
	size256K = 262144
	size1M   = 1048576
)

func bucketSize(n int) int {
	switch {
	case n <= size256B:
		return size256B
	case n <= size1K:
		return size1K
	case n <= size4K:
		return size4K
	case n <= size16K:
		return size16K
	case n <= size64K:
		return size64K
	case n <= size256K:
		return size256K
	case n <= size1M:
		return size1M
	default:
		return n
	}
}

// Event records one RaiseError/RaiseWarning call, for tests that assert on
// the error channel instead of a returned Go error.
type Event struct {
	Warning bool
	Kind    format.ErrorKind
	Message string
}

// Store is an in-memory state.Store. The zero value is not usable; use New.
type Store struct {
	mu      sync.Mutex
	enumVal map[string]int32
	intVal  map[string]int64
	fltVal  map[string]float64
	boolVal map[string]bool
	f4Val   map[string][4]float32
	intsVal map[string][]int32
	ptrVal  map[string]any

	buffers map[string][]byte

	events []Event

	// timingLog records each begin/end marker name in call order, so tests
	// can assert the pairs balance on every control-flow path (spec.md §5).
	timingLog []string
}

// New constructs an empty Store. Callers typically set the scalar state
// they care about with the Set* methods before exercising an operation.
func New() *Store {
	return &Store{
		enumVal: make(map[string]int32),
		intVal:  make(map[string]int64),
		fltVal:  make(map[string]float64),
		boolVal: make(map[string]bool),
		f4Val:   make(map[string][4]float32),
		intsVal: make(map[string][]int32),
		ptrVal:  make(map[string]any),
		buffers: make(map[string][]byte),
	}
}
