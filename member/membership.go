package member

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Structs

// Membership assigns stable positions to member identifiers of one
// replication group. Positions are handed out in admission order and are
// never reassigned, removal is not supported: a departed member keeps its
// position so existing clock entries stay meaningful.
//
// Access from multiple goroutines must be synchronized externally.
type Membership struct {
	group     GroupID
	members   []Identifier
	positions map[string]int
}

// Functions

// NewMembership returns an empty membership for the supplied group.
func NewMembership(group GroupID) *Membership {

	return &Membership{
		group:     group,
		positions: make(map[string]int),
	}
}

// Group returns the group identifier this membership belongs to.
func (m *Membership) Group() GroupID {
	return m.group
}

// Add admits a member and returns its newly assigned position. Admitting
// an identifier that is already a member is a caller contract violation.
func (m *Membership) Add(id Identifier) (int, error) {

	key := id.String()

	if _, exists := m.positions[key]; exists {
		return 0, errors.Errorf("member '%s' is already part of group %s", key, m.group)
	}

	position := len(m.members)
	m.members = append(m.members, id)
	m.positions[key] = position

	return position, nil
}

// PositionOf returns the position assigned to the supplied member.
func (m *Membership) PositionOf(id Identifier) (int, bool) {
	position, exists := m.positions[id.String()]
	return position, exists
}

// At returns the member admitted at the supplied position.
func (m *Membership) At(position int) (Identifier, bool) {

	if (position < 0) || (position >= len(m.members)) {
		return Identifier{}, false
	}

	return m.members[position], true
}

// Len returns the number of admitted members.
func (m *Membership) Len() int {
	return len(m.members)
}

// Members returns the set of all admitted member identifiers in their
// textual form.
func (m *Membership) Members() mapset.Set[string] {

	members := mapset.NewSet[string]()
	for _, id := range m.members {
		members.Add(id.String())
	}

	return members
}
