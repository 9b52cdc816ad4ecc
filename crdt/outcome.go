package crdt

import (
	"github.com/pkg/errors"
)

// ErrDataIntegrity marks an operation that references state this replica
// can never have observed, e.g. a delete naming an unknown position
// identifier or an insert anchored at one. It signals a causality
// violation on the sending side rather than routine duplication. Local
// state is left unchanged; the surrounding system decides whether to log,
// alert or request resynchronization.
var ErrDataIntegrity = errors.New("operation references state this replica has never observed")

// ErrNotFound marks a lookup of a visible index beyond the current
// visible length of a sequence.
var ErrNotFound = errors.New("no element at requested visible position")

// Structs

// ApplyOutcome reports how an incoming operation affected local state.
// Both variants are routine results of at-least-once delivery, never
// failures.
type ApplyOutcome int

const (
	// Applied means the operation changed local state.
	Applied ApplyOutcome = iota

	// AlreadyApplied means the operation was a duplicate, stale or
	// tie-break-losing delivery already reflected in local state. The
	// call was a no-op.
	AlreadyApplied
)

// Functions

// String returns the human-readable name of an ApplyOutcome.
func (o ApplyOutcome) String() string {

	switch o {
	case Applied:
		return "Applied"
	case AlreadyApplied:
		return "AlreadyApplied"
	default:
		return "Unknown"
	}
}
