package crdt

import (
	"fmt"

	"github.com/Bathtor/flotsync/version"
)

// Structs

// Stamp is one causal clock entry attached to a register operation. It
// records the member position of the writing replica and the value of that
// replica's own clock entry at the time of the write.
type Stamp struct {
	Position int
	Counter  uint64
}

// Functions

// Compare relates two stamps under the causal clock semantics of a clock
// with a single known entry. Stamps of the same member are ordered by
// counter, stamps of different members carry no causal relation to each
// other and compare Concurrent.
func (s Stamp) Compare(other Stamp) version.Ordering {

	if s.Position != other.Position {
		return version.Concurrent
	}

	if s.Counter < other.Counter {
		return version.Before
	}

	if s.Counter > other.Counter {
		return version.After
	}

	return version.Equal
}

// Less orders stamps by member position first and counter second. This is
// the deterministic total order the register uses to break concurrent
// ties: it extends the causal partial order of Compare, so folding
// operations in any delivery order converges on the maximal stamp.
func (s Stamp) Less(other Stamp) bool {

	if s.Position != other.Position {
		return s.Position < other.Position
	}

	return s.Counter < other.Counter
}

// String returns the stamp in '(position, counter)' form.
func (s Stamp) String() string {
	return fmt.Sprintf("(%d, %d)", s.Position, s.Counter)
}
