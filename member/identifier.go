package member

import (
	"strings"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// SegmentSeparator joins the segments of a hierarchical identifier in its
// textual form, e.g. 'building-a.floor-2.sensor-7'.
const SegmentSeparator = "."

// Structs

// GroupID is the fixed-size opaque identifier of one replication group.
type GroupID [16]byte

// Identifier names one member inside a replication group as an ordered
// sequence of string segments.
type Identifier struct {
	segments []string
}

// Functions

// NewGroupID returns a fresh random group identifier.
func NewGroupID() GroupID {
	return GroupID(uuid.NewV4())
}

// ParseGroupID parses the canonical textual form of a group identifier.
func ParseGroupID(raw string) (GroupID, error) {

	id, err := uuid.FromString(raw)
	if err != nil {
		return GroupID{}, errors.Wrap(err, "parsing group identifier failed")
	}

	return GroupID(id), nil
}

// String returns the canonical textual form of a group identifier.
func (g GroupID) String() string {
	return uuid.UUID(g).String()
}

// NewIdentifier builds an identifier from its segments. At least one
// non-empty segment is required and segments must not contain the
// separator character.
func NewIdentifier(segments ...string) (Identifier, error) {

	if len(segments) < 1 {
		return Identifier{}, errors.New("member identifier requires at least one segment")
	}

	own := make([]string, len(segments))
	for i, seg := range segments {

		if seg == "" {
			return Identifier{}, errors.Errorf("member identifier segment %d is empty", i)
		}

		if strings.Contains(seg, SegmentSeparator) {
			return Identifier{}, errors.Errorf("member identifier segment '%s' contains the separator", seg)
		}

		own[i] = seg
	}

	return Identifier{segments: own}, nil
}

// ParseIdentifier parses the dotted textual form of an identifier.
func ParseIdentifier(raw string) (Identifier, error) {
	return NewIdentifier(strings.Split(raw, SegmentSeparator)...)
}

// Segments returns a copy of the identifier's segments.
func (id Identifier) Segments() []string {

	segments := make([]string, len(id.segments))
	copy(segments, id.segments)

	return segments
}

// String returns the dotted textual form of the identifier.
func (id Identifier) String() string {
	return strings.Join(id.segments, SegmentSeparator)
}

// Equal reports whether both identifiers consist of the same segments.
func (id Identifier) Equal(other Identifier) bool {

	if len(id.segments) != len(other.segments) {
		return false
	}

	for i, seg := range id.segments {
		if other.segments[i] != seg {
			return false
		}
	}

	return true
}
