package version

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Encoding tags the physical representation of a VersionVector.
type Encoding int

const (
	// EncodingFull lists one counter per known member position.
	EncodingFull Encoding = iota

	// EncodingOverride stores a group-wide baseline counter plus exactly
	// one member position that has advanced past that baseline.
	EncodingOverride

	// EncodingSynced stores a single counter at which every known member
	// sits. The maximally compact case.
	EncodingSynced
)

// Structs

// VersionVector is a causal clock over the member positions of one
// replication group. Values are immutable; every mutating operation
// returns a fresh vector.
//
// The zero value is not usable, construct vectors through NewFull,
// NewOverride or NewSynced.
type VersionVector struct {
	encoding Encoding

	// Full encoding.
	counters []uint64

	// Override and Synced encodings.
	numMembers   int
	groupVersion uint64

	// Override encoding only.
	overridePosition int
	overrideVersion  uint64
}

// Functions

// NewFull constructs a vector from an explicit ordered counter list,
// one counter per member position. At least one member is required.
func NewFull(counters []uint64) (*VersionVector, error) {

	if len(counters) < 1 {
		return nil, errors.New("full version vector requires at least one member counter")
	}

	// Copy so the caller cannot mutate our state afterwards.
	own := make([]uint64, len(counters))
	copy(own, counters)

	return &VersionVector{
		encoding: EncodingFull,
		counters: own,
	}, nil
}

// NewOverride constructs a vector in which every member of a numMembers
// sized group sits at groupVersion, except the member at overridePosition
// which has advanced to overrideVersion. The override must actually be an
// advance, and a single-member group has nothing to override.
func NewOverride(numMembers int, groupVersion uint64, overridePosition int, overrideVersion uint64) (*VersionVector, error) {

	if numMembers < 2 {
		return nil, errors.Errorf("override version vector requires at least two members, got %d", numMembers)
	}

	if (overridePosition < 0) || (overridePosition >= numMembers) {
		return nil, errors.Errorf("override position %d is outside of group range 0-%d", overridePosition, (numMembers - 1))
	}

	if overrideVersion <= groupVersion {
		return nil, errors.Errorf("override version %d does not advance past group version %d", overrideVersion, groupVersion)
	}

	return &VersionVector{
		encoding:         EncodingOverride,
		numMembers:       numMembers,
		groupVersion:     groupVersion,
		overridePosition: overridePosition,
		overrideVersion:  overrideVersion,
	}, nil
}

// NewSynced constructs a vector in which every member of a numMembers
// sized group sits at exactly version.
func NewSynced(numMembers int, version uint64) (*VersionVector, error) {

	if numMembers < 1 {
		return nil, errors.Errorf("synced version vector requires at least one member, got %d", numMembers)
	}

	return &VersionVector{
		encoding:     EncodingSynced,
		numMembers:   numMembers,
		groupVersion: version,
	}, nil
}

// Encoding returns the physical representation tag of this vector.
func (v *VersionVector) Encoding() Encoding {
	return v.encoding
}

// NumMembers returns the number of member positions this vector
// explicitly knows about.
func (v *VersionVector) NumMembers() int {

	if v.encoding == EncodingFull {
		return len(v.counters)
	}

	return v.numMembers
}

// Counter returns the counter at the supplied member position. Positions
// this vector does not know about are implicitly at zero.
func (v *VersionVector) Counter(position int) uint64 {

	if (position < 0) || (position >= v.NumMembers()) {
		return 0
	}

	switch v.encoding {
	case EncodingFull:
		return v.counters[position]
	case EncodingOverride:
		if position == v.overridePosition {
			return v.overrideVersion
		}
		return v.groupVersion
	default:
		return v.groupVersion
	}
}

// Counters returns the canonical expansion of this vector, one counter
// per known member position. The returned slice is owned by the caller.
func (v *VersionVector) Counters() []uint64 {
	return v.expand(v.NumMembers())
}

// GroupVersion returns the baseline counter of an Override or Synced
// encoded vector and zero for a Full one.
func (v *VersionVector) GroupVersion() uint64 {

	if v.encoding == EncodingFull {
		return 0
	}

	return v.groupVersion
}

// OverridePosition returns the diverging member position of an Override
// encoded vector.
func (v *VersionVector) OverridePosition() int {
	return v.overridePosition
}

// OverrideVersion returns the counter of the diverging member of an
// Override encoded vector.
func (v *VersionVector) OverrideVersion() uint64 {
	return v.overrideVersion
}

// MaxVersion returns the largest counter any member has reached.
func (v *VersionVector) MaxVersion() uint64 {

	switch v.encoding {
	case EncodingFull:
		max := v.counters[0]
		for _, c := range v.counters[1:] {
			if c > max {
				max = c
			}
		}
		return max
	case EncodingOverride:
		return v.overrideVersion
	default:
		return v.groupVersion
	}
}

// expand produces the logical per-member counter mapping padded with
// zeros to n members. Every comparison and merge operates on this one
// canonical form, never on per-encoding special cases.
func (v *VersionVector) expand(n int) []uint64 {

	if n < v.NumMembers() {
		n = v.NumMembers()
	}

	expanded := make([]uint64, n)

	switch v.encoding {
	case EncodingFull:
		copy(expanded, v.counters)
	case EncodingOverride:
		for i := 0; i < v.numMembers; i++ {
			expanded[i] = v.groupVersion
		}
		expanded[v.overridePosition] = v.overrideVersion
	default:
		for i := 0; i < v.numMembers; i++ {
			expanded[i] = v.groupVersion
		}
	}

	return expanded
}

// Compare establishes the happened-before relation between two vectors.
// Both are expanded to the larger membership, treating absent positions
// as zero, and compared pointwise.
func (v *VersionVector) Compare(other *VersionVector) Ordering {

	n := v.NumMembers()
	if other.NumMembers() > n {
		n = other.NumMembers()
	}

	left := v.expand(n)
	right := other.expand(n)

	hasLess := false
	hasGreater := false

	for i := 0; i < n; i++ {

		if left[i] < right[i] {
			hasLess = true
		} else if left[i] > right[i] {
			hasGreater = true
		}

		// Neither side dominates, no need to look further.
		if hasLess && hasGreater {
			return Concurrent
		}
	}

	if hasLess {
		return Before
	}

	if hasGreater {
		return After
	}

	return Equal
}

// Equal reports whether both vectors denote the same logical mapping,
// regardless of their physical encodings.
func (v *VersionVector) Equal(other *VersionVector) bool {
	return v.Compare(other) == Equal
}

// Merge returns the pointwise maximum of both vectors, re-encoded in the
// most compact applicable representation.
func (v *VersionVector) Merge(other *VersionVector) *VersionVector {

	n := v.NumMembers()
	if other.NumMembers() > n {
		n = other.NumMembers()
	}

	left := v.expand(n)
	right := other.expand(n)

	merged := make([]uint64, n)
	for i := 0; i < n; i++ {
		if left[i] >= right[i] {
			merged[i] = left[i]
		} else {
			merged[i] = right[i]
		}
	}

	return compactify(merged)
}

// Compact returns the logically identical vector in the most compact
// applicable encoding. Serialization boundaries use it so the wire always
// carries the smallest of the three variants.
func (v *VersionVector) Compact() *VersionVector {
	return compactify(v.expand(v.NumMembers()))
}

// SuccAt returns a vector identical to this one except that the counter
// of the member at position is one greater. Incrementing the position
// directly past the known range grows the membership by one, consistent
// with absent positions being implicitly at zero. Positions beyond that
// are a caller contract violation.
func (v *VersionVector) SuccAt(position int) (*VersionVector, error) {

	n := v.NumMembers()

	if (position < 0) || (position > n) {
		return nil, errors.Errorf("position %d is outside of group range 0-%d", position, n)
	}

	if position == n {
		n++
	}

	expanded := v.expand(n)
	expanded[position]++

	return compactify(expanded), nil
}

// compactify re-encodes an expanded counter mapping in the most compact
// representation: Synced if all members agree, Override if exactly one
// member has advanced past a common baseline, Full otherwise.
func compactify(counters []uint64) *VersionVector {

	allEqual := true
	for _, c := range counters[1:] {
		if c != counters[0] {
			allEqual = false
			break
		}
	}

	if allEqual {
		return &VersionVector{
			encoding:     EncodingSynced,
			numMembers:   len(counters),
			groupVersion: counters[0],
		}
	}

	// Check for the almost-synced case: exactly one member diverging
	// upwards from the baseline shared by all others.
	if divergent, baseline, ok := singleDivergence(counters); ok {

		return &VersionVector{
			encoding:         EncodingOverride,
			numMembers:       len(counters),
			groupVersion:     baseline,
			overridePosition: divergent,
			overrideVersion:  counters[divergent],
		}
	}

	own := make([]uint64, len(counters))
	copy(own, counters)

	return &VersionVector{
		encoding: EncodingFull,
		counters: own,
	}
}

// singleDivergence reports whether exactly one position in counters holds
// a value above the common value of all the others.
func singleDivergence(counters []uint64) (int, uint64, bool) {

	if len(counters) < 2 {
		return 0, 0, false
	}

	divergent := -1

	// Candidate baseline: the smaller of the first two values.
	baseline := counters[0]
	if counters[1] < baseline {
		baseline = counters[1]
	}

	for i, c := range counters {

		if c == baseline {
			continue
		}

		if (c < baseline) || (divergent >= 0) {
			return 0, 0, false
		}

		divergent = i
	}

	if divergent < 0 {
		return 0, 0, false
	}

	return divergent, baseline, true
}

// String renders the vector in a compact range notation, e.g. a fully
// synced three member group at counter 5 prints as '<0-2:5>'.
func (v *VersionVector) String() string {

	switch v.encoding {

	case EncodingSynced:
		return fmt.Sprintf("<0-%d:%d>", (v.numMembers - 1), v.groupVersion)

	case EncodingOverride:
		return fmt.Sprintf("<0-%d:%d, %d:%d>", (v.numMembers - 1), v.groupVersion, v.overridePosition, v.overrideVersion)

	default:
		parts := make([]string, len(v.counters))
		for i, c := range v.counters {
			parts[i] = fmt.Sprintf("%d", c)
		}
		return fmt.Sprintf("<%s>", strings.Join(parts, ", "))
	}
}
