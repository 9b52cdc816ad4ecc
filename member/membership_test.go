package member

import (
	"testing"
)

// TestIdentifierParsing executes a white-box unit test on identifier
// construction and its dotted textual form.
func TestIdentifierParsing(t *testing.T) {

	id, err := ParseIdentifier("a.b.c")
	if err != nil {
		t.Fatalf("[member.TestIdentifierParsing] Unexpected error: %v\n", err)
	}

	if id.String() != "a.b.c" {
		t.Fatalf("[member.TestIdentifierParsing] Expected 'a.b.c' but got '%s'.\n", id.String())
	}

	built, err := NewIdentifier("a", "b", "c")
	if err != nil {
		t.Fatalf("[member.TestIdentifierParsing] Unexpected error: %v\n", err)
	}

	if !id.Equal(built) {
		t.Fatalf("[member.TestIdentifierParsing] Expected parsed and built identifiers to be equal.\n")
	}

	if _, err := ParseIdentifier("a..c"); err == nil {
		t.Fatalf("[member.TestIdentifierParsing] Expected empty segment to be rejected.\n")
	}

	if _, err := NewIdentifier(); err == nil {
		t.Fatalf("[member.TestIdentifierParsing] Expected zero segments to be rejected.\n")
	}

	if _, err := NewIdentifier("a.b"); err == nil {
		t.Fatalf("[member.TestIdentifierParsing] Expected separator inside segment to be rejected.\n")
	}
}

// TestGroupIDRoundtrip checks that group identifiers survive the textual
// round-trip unchanged.
func TestGroupIDRoundtrip(t *testing.T) {

	group := NewGroupID()

	parsed, err := ParseGroupID(group.String())
	if err != nil {
		t.Fatalf("[member.TestGroupIDRoundtrip] Unexpected error: %v\n", err)
	}

	if parsed != group {
		t.Fatalf("[member.TestGroupIDRoundtrip] Expected '%s' but got '%s'.\n", group, parsed)
	}

	if _, err := ParseGroupID("clearly-not-a-group-id"); err == nil {
		t.Fatalf("[member.TestGroupIDRoundtrip] Expected malformed group identifier to be rejected.\n")
	}
}

// TestMembershipPositions checks stable position assignment in
// admission order.
func TestMembershipPositions(t *testing.T) {

	m := NewMembership(NewGroupID())

	ids := []string{"site-a.node-1", "site-a.node-2", "site-b.node-1"}
	for i, raw := range ids {

		id, err := ParseIdentifier(raw)
		if err != nil {
			t.Fatalf("[member.TestMembershipPositions] Unexpected error: %v\n", err)
		}

		position, err := m.Add(id)
		if err != nil {
			t.Fatalf("[member.TestMembershipPositions] Unexpected error admitting '%s': %v\n", raw, err)
		}

		if position != i {
			t.Fatalf("[member.TestMembershipPositions] Expected position %d for '%s' but got %d.\n", i, raw, position)
		}
	}

	if m.Len() != 3 {
		t.Fatalf("[member.TestMembershipPositions] Expected 3 members but got %d.\n", m.Len())
	}

	first, _ := ParseIdentifier("site-a.node-1")
	if position, exists := m.PositionOf(first); !exists || (position != 0) {
		t.Fatalf("[member.TestMembershipPositions] Expected 'site-a.node-1' at position 0.\n")
	}

	if _, err := m.Add(first); err == nil {
		t.Fatalf("[member.TestMembershipPositions] Expected duplicate admission to be rejected.\n")
	}

	back, exists := m.At(2)
	if !exists || (back.String() != "site-b.node-1") {
		t.Fatalf("[member.TestMembershipPositions] Expected 'site-b.node-1' at position 2 but got '%s'.\n", back)
	}

	if !m.Members().Contains("site-a.node-2") {
		t.Fatalf("[member.TestMembershipPositions] Expected member set to contain 'site-a.node-2'.\n")
	}
}
