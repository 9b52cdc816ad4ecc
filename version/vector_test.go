package version

import (
	"testing"
)

// Functions

func mustFull(t *testing.T, counters ...uint64) *VersionVector {

	v, err := NewFull(counters)
	if err != nil {
		t.Fatalf("[version.mustFull] Expected valid full vector but got error: %v\n", err)
	}

	return v
}

func mustOverride(t *testing.T, numMembers int, groupVersion uint64, overridePosition int, overrideVersion uint64) *VersionVector {

	v, err := NewOverride(numMembers, groupVersion, overridePosition, overrideVersion)
	if err != nil {
		t.Fatalf("[version.mustOverride] Expected valid override vector but got error: %v\n", err)
	}

	return v
}

func mustSynced(t *testing.T, numMembers int, ver uint64) *VersionVector {

	v, err := NewSynced(numMembers, ver)
	if err != nil {
		t.Fatalf("[version.mustSynced] Expected valid synced vector but got error: %v\n", err)
	}

	return v
}

// TestConstructionContract executes a white-box unit test on the
// construction-time validation of all three encodings.
func TestConstructionContract(t *testing.T) {

	if _, err := NewFull([]uint64{}); err == nil {
		t.Fatalf("[version.TestConstructionContract] Expected empty full vector to be rejected.\n")
	}

	if _, err := NewSynced(0, 5); err == nil {
		t.Fatalf("[version.TestConstructionContract] Expected zero member synced vector to be rejected.\n")
	}

	if _, err := NewOverride(1, 3, 0, 5); err == nil {
		t.Fatalf("[version.TestConstructionContract] Expected single member override vector to be rejected.\n")
	}

	if _, err := NewOverride(3, 5, 1, 5); err == nil {
		t.Fatalf("[version.TestConstructionContract] Expected non-advancing override vector to be rejected.\n")
	}

	if _, err := NewOverride(3, 5, 3, 7); err == nil {
		t.Fatalf("[version.TestConstructionContract] Expected out-of-range override position to be rejected.\n")
	}
}

// TestCompareReflexivity checks that every vector compares Equal
// to itself.
func TestCompareReflexivity(t *testing.T) {

	vectors := []*VersionVector{
		mustFull(t, 1, 2, 3),
		mustFull(t, 0, 0, 0),
		mustOverride(t, 3, 1, 1, 2),
		mustSynced(t, 3, 7),
		mustSynced(t, 1, 0),
	}

	for _, v := range vectors {
		if ord := v.Compare(v); ord != Equal {
			t.Fatalf("[version.TestCompareReflexivity] Expected %v to compare Equal to itself but got %v.\n", v, ord)
		}
	}
}

// TestRepresentationEquivalence checks that encodings denoting the same
// logical mapping compare Equal, per the canonicalization rule.
func TestRepresentationEquivalence(t *testing.T) {

	synced := mustSynced(t, 3, 5)
	full := mustFull(t, 5, 5, 5)

	if ord := synced.Compare(full); ord != Equal {
		t.Fatalf("[version.TestRepresentationEquivalence] Expected Synced{5} == Full{5,5,5} but got %v.\n", ord)
	}

	over := mustOverride(t, 3, 1, 0, 2)
	fullOver := mustFull(t, 2, 1, 1)

	if ord := over.Compare(fullOver); ord != Equal {
		t.Fatalf("[version.TestRepresentationEquivalence] Expected Override{1,(0,2)} == Full{2,1,1} but got %v.\n", ord)
	}

	overMid := mustOverride(t, 3, 1, 1, 3)
	fullMid := mustFull(t, 1, 3, 1)

	if ord := overMid.Compare(fullMid); ord != Equal {
		t.Fatalf("[version.TestRepresentationEquivalence] Expected Override{1,(1,3)} == Full{1,3,1} but got %v.\n", ord)
	}
}

// TestBasicRelationships ports the basic happened-before relations from
// the reference cases for all encoding pairings.
func TestBasicRelationships(t *testing.T) {

	cases := []struct {
		left     *VersionVector
		right    *VersionVector
		expected Ordering
	}{
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 2, 3), Equal},
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 3, 3), Before},
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 1, 3), After},
		{mustFull(t, 1, 2, 3), mustFull(t, 4, 5, 6), Before},
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 2, 18), Before},
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 3, 1), Concurrent},

		{mustOverride(t, 3, 1, 1, 2), mustOverride(t, 3, 1, 1, 2), Equal},
		{mustOverride(t, 3, 1, 1, 2), mustFull(t, 1, 2, 1), Equal},
		{mustOverride(t, 3, 1, 1, 2), mustOverride(t, 3, 1, 1, 3), Before},
		{mustOverride(t, 3, 0, 1, 2), mustOverride(t, 3, 1, 1, 2), Before},
		{mustOverride(t, 3, 0, 1, 3), mustOverride(t, 3, 1, 1, 2), Concurrent},
		{mustOverride(t, 3, 1, 1, 2), mustOverride(t, 3, 1, 0, 2), Concurrent},
		{mustOverride(t, 3, 0, 1, 1), mustOverride(t, 3, 1, 0, 2), Before},

		{mustSynced(t, 3, 1), mustSynced(t, 3, 1), Equal},
		{mustSynced(t, 3, 1), mustSynced(t, 3, 2), Before},
		{mustSynced(t, 3, 3), mustSynced(t, 3, 2), After},
		{mustSynced(t, 3, 1), mustFull(t, 1, 2, 1), Before},
		{mustSynced(t, 3, 1), mustFull(t, 0, 2, 1), Concurrent},
	}

	for i, c := range cases {

		if ord := c.left.Compare(c.right); ord != c.expected {
			t.Fatalf("[version.TestBasicRelationships] Case %d: expected %v.Compare(%v) = %v but got %v.\n", i, c.left, c.right, c.expected, ord)
		}

		// Antisymmetry.
		if ord := c.right.Compare(c.left); ord != c.expected.Reverse() {
			t.Fatalf("[version.TestBasicRelationships] Case %d: expected reversed comparison %v but got %v.\n", i, c.expected.Reverse(), ord)
		}
	}
}

// TestMembershipGrowth checks that vectors over differently sized groups
// compare with absent positions implicitly at zero.
func TestMembershipGrowth(t *testing.T) {

	small := mustFull(t, 5, 5, 5)
	grown := mustFull(t, 5, 5, 5, 0)

	if ord := small.Compare(grown); ord != Equal {
		t.Fatalf("[version.TestMembershipGrowth] Expected absent member to count as zero but got %v.\n", ord)
	}

	advanced := mustFull(t, 5, 5, 5, 1)
	if ord := small.Compare(advanced); ord != Before {
		t.Fatalf("[version.TestMembershipGrowth] Expected smaller group to be Before after new member advanced but got %v.\n", ord)
	}
}

// TestMergeDominatesInputs checks that a merged vector compares Equal or
// After against both of its inputs.
func TestMergeDominatesInputs(t *testing.T) {

	pairs := []struct {
		left  *VersionVector
		right *VersionVector
	}{
		{mustFull(t, 1, 2, 3), mustFull(t, 3, 2, 1)},
		{mustFull(t, 1, 2, 3), mustFull(t, 1, 2, 3)},
		{mustSynced(t, 3, 4), mustOverride(t, 3, 2, 1, 6)},
		{mustOverride(t, 3, 1, 0, 4), mustOverride(t, 3, 1, 2, 3)},
		{mustSynced(t, 2, 9), mustFull(t, 1, 2, 3, 4)},
	}

	for i, p := range pairs {

		merged := p.left.Merge(p.right)

		if ord := merged.Compare(p.left); (ord != Equal) && (ord != After) {
			t.Fatalf("[version.TestMergeDominatesInputs] Case %d: merged vector %v does not dominate left input %v (%v).\n", i, merged, p.left, ord)
		}

		if ord := merged.Compare(p.right); (ord != Equal) && (ord != After) {
			t.Fatalf("[version.TestMergeDominatesInputs] Case %d: merged vector %v does not dominate right input %v (%v).\n", i, merged, p.right, ord)
		}

		// Merge is commutative.
		if swapped := p.right.Merge(p.left); !merged.Equal(swapped) {
			t.Fatalf("[version.TestMergeDominatesInputs] Case %d: merge is not commutative, %v != %v.\n", i, merged, swapped)
		}
	}
}

// TestMergeReencoding checks that merge results come back in the most
// compact applicable encoding.
func TestMergeReencoding(t *testing.T) {

	// Scenario: merging Synced{3} with Override{3,(1,5)} yields the
	// logical mapping {3,5,3} which encodes as that same override.
	merged := mustSynced(t, 3, 3).Merge(mustOverride(t, 3, 3, 1, 5))

	if merged.Encoding() != EncodingOverride {
		t.Fatalf("[version.TestMergeReencoding] Expected override encoding but got %v.\n", merged.Encoding())
	}

	if (merged.GroupVersion() != 3) || (merged.OverridePosition() != 1) || (merged.OverrideVersion() != 5) {
		t.Fatalf("[version.TestMergeReencoding] Expected Override{3,(1,5)} but got %v.\n", merged)
	}

	// Two full vectors that happen to agree everywhere collapse to Synced.
	synced := mustFull(t, 2, 7, 2).Merge(mustFull(t, 7, 2, 7))
	if synced.Encoding() != EncodingSynced {
		t.Fatalf("[version.TestMergeReencoding] Expected synced encoding for uniform merge result but got %v.\n", synced)
	}
	if synced.GroupVersion() != 7 {
		t.Fatalf("[version.TestMergeReencoding] Expected merged group version 7 but got %d.\n", synced.GroupVersion())
	}

	// Divergence at more than one member has to stay a full vector.
	full := mustFull(t, 1, 5, 1).Merge(mustFull(t, 1, 1, 6))
	if full.Encoding() != EncodingFull {
		t.Fatalf("[version.TestMergeReencoding] Expected full encoding but got %v.\n", full)
	}
}

// TestSuccAt checks the increment operation across encodings, including
// the re-encoding transitions the compact forms go through.
func TestSuccAt(t *testing.T) {

	next, err := mustFull(t, 1, 2, 3).SuccAt(1)
	if err != nil {
		t.Fatalf("[version.TestSuccAt] Unexpected error: %v\n", err)
	}
	if !next.Equal(mustFull(t, 1, 3, 3)) {
		t.Fatalf("[version.TestSuccAt] Expected {1,3,3} but got %v.\n", next)
	}

	// Synced + one increment = Override.
	next, err = mustSynced(t, 3, 1).SuccAt(0)
	if err != nil {
		t.Fatalf("[version.TestSuccAt] Unexpected error: %v\n", err)
	}
	if next.Encoding() != EncodingOverride {
		t.Fatalf("[version.TestSuccAt] Expected override encoding after incrementing synced vector but got %v.\n", next)
	}
	if !next.Equal(mustFull(t, 2, 1, 1)) {
		t.Fatalf("[version.TestSuccAt] Expected {2,1,1} but got %v.\n", next)
	}

	// Incrementing a second member degrades to Full.
	next, err = next.SuccAt(1)
	if err != nil {
		t.Fatalf("[version.TestSuccAt] Unexpected error: %v\n", err)
	}
	if next.Encoding() != EncodingFull {
		t.Fatalf("[version.TestSuccAt] Expected full encoding but got %v.\n", next.Encoding())
	}
	if !next.Equal(mustFull(t, 2, 2, 1)) {
		t.Fatalf("[version.TestSuccAt] Expected {2,2,1} but got %v.\n", next)
	}

	// Every increment is strictly After its predecessor.
	base := mustFull(t, 1, 2, 3)
	for pos := 0; pos < base.NumMembers(); pos++ {

		succ, err := base.SuccAt(pos)
		if err != nil {
			t.Fatalf("[version.TestSuccAt] Unexpected error at position %d: %v\n", pos, err)
		}

		if ord := base.Compare(succ); ord != Before {
			t.Fatalf("[version.TestSuccAt] Expected base Before successor at position %d but got %v.\n", pos, ord)
		}
	}

	// Growth by one position is allowed, further out is not.
	grown, err := mustSynced(t, 2, 4).SuccAt(2)
	if err != nil {
		t.Fatalf("[version.TestSuccAt] Unexpected error growing membership: %v\n", err)
	}
	if !grown.Equal(mustFull(t, 4, 4, 1)) {
		t.Fatalf("[version.TestSuccAt] Expected {4,4,1} after growth but got %v.\n", grown)
	}

	if _, err := mustSynced(t, 2, 4).SuccAt(5); err == nil {
		t.Fatalf("[version.TestSuccAt] Expected position far outside group range to be rejected.\n")
	}
}

// TestStringRendering checks the compact range notation.
func TestStringRendering(t *testing.T) {

	if s := mustSynced(t, 4, 12).String(); s != "<0-3:12>" {
		t.Fatalf("[version.TestStringRendering] Expected '<0-3:12>' but got '%s'.\n", s)
	}

	if s := mustOverride(t, 4, 12, 2, 13).String(); s != "<0-3:12, 2:13>" {
		t.Fatalf("[version.TestStringRendering] Expected '<0-3:12, 2:13>' but got '%s'.\n", s)
	}

	if s := mustFull(t, 12, 13, 12, 11).String(); s != "<12, 13, 12, 11>" {
		t.Fatalf("[version.TestStringRendering] Expected '<12, 13, 12, 11>' but got '%s'.\n", s)
	}
}
