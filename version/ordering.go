package version

// Ordering is the result of comparing two causal clocks. It refines a
// partial order with an explicit Concurrent variant for clocks of which
// neither dominates the other.
type Ordering int

const (
	// Before means the left clock happened strictly before the right one.
	Before Ordering = iota

	// Equal means both clocks denote the same logical mapping.
	Equal

	// After means the left clock happened strictly after the right one.
	After

	// Concurrent means neither clock dominates the other.
	Concurrent
)

// Functions

// Reverse flips Before and After and leaves
// Equal and Concurrent unchanged.
func (o Ordering) Reverse() Ordering {

	switch o {
	case Before:
		return After
	case After:
		return Before
	default:
		return o
	}
}

// String returns the human-readable name of an Ordering.
func (o Ordering) String() string {

	switch o {
	case Before:
		return "Before"
	case Equal:
		return "Equal"
	case After:
		return "After"
	case Concurrent:
		return "Concurrent"
	default:
		return "Unknown"
	}
}
