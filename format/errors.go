package format

import "fmt"

// ErrorKind classifies a core error or warning, per spec.md §7.
type ErrorKind int

const (
	// InvalidValue flags bad dimensions, offsets, or mismatched formats.
	InvalidValue ErrorKind = iota
	// InvalidEnum flags an unrecognized format or mode value.
	InvalidEnum
	// InvalidOperation flags an operation that is well-formed but not
	// permitted in the current state (e.g. writing a pointer image).
	InvalidOperation
	// SanityCheckFail flags an internal-invariant violation: bad magic, a
	// run-length counting mismatch, or a buffer overrun.
	SanityCheckFail
)

// String returns a human-readable name for k.
func (k ErrorKind) String() string {
	switch k {
	case InvalidValue:
		return "invalid value"
	case InvalidEnum:
		return "invalid enum"
	case InvalidOperation:
		return "invalid operation"
	case SanityCheckFail:
		return "sanity check fail"
	default:
		return fmt.Sprintf("errorkind(%d)", int(k))
	}
}

// CoreError is an error annotated with its ErrorKind, so callers (and a
// bound state.Store's RaiseError/RaiseWarning channel) can dispatch on the
// kind rather than parsing the message.
type CoreError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("tileimage: %s: %s", e.Kind, e.Msg)
}

// NewError constructs a CoreError with the given kind and formatted message.
func NewError(kind ErrorKind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
