package statetest

import (
	"fmt"

	"github.com/parallelviz/tileimage/format"
	"github.com/parallelviz/tileimage/state"
)

func sprintf(f string, args ...any) string {
	if len(args) == 0 {
		return f
	}
	return fmt.Sprintf(f, args...)
}

// SetEnum sets the enum value returned for name.
func (s *Store) SetEnum(name state.Name, v int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enumVal[string(name)] = v
}

// SetInteger sets the integer value returned for name.
func (s *Store) SetInteger(name state.Name, v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intVal[string(name)] = v
}

// SetFloat sets the float value returned for name.
func (s *Store) SetFloat(name state.Name, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fltVal[string(name)] = v
}

// SetBoolean sets the boolean value returned for name.
func (s *Store) SetBoolean(name state.Name, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boolVal[string(name)] = v
}

// SetFloat4 sets the 4-float value returned for name.
func (s *Store) SetFloat4(name state.Name, v [4]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f4Val[string(name)] = v
}

// SetIntSlice sets the integer-slice value returned for name.
func (s *Store) SetIntSlice(name state.Name, v []int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intsVal[string(name)] = v
}

// SetPointer sets the opaque pointer value returned for name.
func (s *Store) SetPointer(name state.Name, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ptrVal[string(name)] = v
}

func (s *Store) GetEnum(name state.Name) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enumVal[string(name)]
}

func (s *Store) GetInteger(name state.Name) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intVal[string(name)]
}

func (s *Store) GetFloat(name state.Name) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fltVal[string(name)]
}

func (s *Store) GetBoolean(name state.Name) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boolVal[string(name)]
}

func (s *Store) GetFloat4(name state.Name) [4]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f4Val[string(name)]
}

func (s *Store) GetIntSlice(name state.Name) []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intsVal[string(name)]
}

func (s *Store) GetPointer(name state.Name) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptrVal[string(name)]
}

// GetStateBuffer returns a buffer of at least bytes for name, reusing and
// growing (bucket-sized) a prior allocation for that name when present.
// Per the external contract (spec.md §5), any later call with the same
// name invalidates the slice previously returned.
func (s *Store) GetStateBuffer(name state.Name, bytes int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(name)
	buf, ok := s.buffers[key]
	if ok && cap(buf) >= bytes {
		buf = buf[:bytes]
		s.buffers[key] = buf
		return buf
	}
	buf = make([]byte, bucketSize(bytes))[:bytes]
	s.buffers[key] = buf
	return buf
}

// RaiseError records an Event for a detected precondition failure. Callers
// observe it only through Events/HasErrors, matching the external error
// channel the image core reports through instead of a returned Go error.
func (s *Store) RaiseError(kind format.ErrorKind, f string, args ...any) {
	s.record(false, kind, f, args...)
}

// RaiseWarning records an Event for a recoverable condition.
func (s *Store) RaiseWarning(kind format.ErrorKind, f string, args ...any) {
	s.record(true, kind, f, args...)
}

func (s *Store) record(warning bool, kind format.ErrorKind, f string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		Warning: warning,
		Kind:    kind,
		Message: sprintf(f, args...),
	})
}

// Events returns all recorded RaiseError/RaiseWarning calls so far.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// HasErrors reports whether any non-warning event was recorded.
func (s *Store) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if !e.Warning {
			return true
		}
	}
	return false
}

var _ state.Store = (*Store)(nil)
