package monitor

import "fmt"

// Kind distinguishes the three ways the monitor can fail outright, as
// opposed to reporting an Occasion through the normal reporting callback.
type Kind int

const (
	// IllegalState means the host reported a change of average segment
	// order that the monitor's rotation logic cannot make sense of.
	IllegalState Kind = iota
	// Assertion means an internal sanity check failed; this always
	// indicates a bug in the monitor or in how the host drives it.
	Assertion
	// ConcurrentModification means a segment split arrived for an order
	// that is impossible unless some other goroutine mutated the map
	// concurrently with the caller.
	ConcurrentModification
)

func (k Kind) String() string {
	switch k {
	case IllegalState:
		return "illegal state"
	case Assertion:
		return "assertion"
	case ConcurrentModification:
		return "concurrent modification"
	default:
		return "unknown"
	}
}

// Error reports one of the monitor's three unrecoverable-bug kinds. The
// caller should treat a non-nil Error as aborting whatever host operation
// triggered it; none of these indicate a poor hash code distribution
// occasion, which is reported through the callback instead.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Msg }

func illegalStateErrorf(format string, args ...any) error {
	return &Error{Kind: IllegalState, Msg: fmt.Sprintf(format, args...)}
}

func assertionErrorf(format string, args ...any) error {
	return &Error{Kind: Assertion, Msg: fmt.Sprintf(format, args...)}
}

func concurrentModificationErrorf(format string, args ...any) error {
	return &Error{Kind: ConcurrentModification, Msg: fmt.Sprintf(format, args...)}
}
