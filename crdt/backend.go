package crdt

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// backend is the capability set a linear sequence storage layer has to
// provide. The production implementation is the coalescing run arena in
// arena.go; a naive per-element implementation in reference.go serves as a
// cross-checking oracle in tests.
type backend interface {

	// integrate places one insertion batch relative to its anchor.
	// Re-delivery of a known batch reports AlreadyApplied, an unknown
	// anchor fails with ErrDataIntegrity.
	integrate(head ID, anchor *ID, content []rune) (ApplyOutcome, error)

	// remove tombstones one element. A tombstoned element reports
	// AlreadyApplied, an unknown identifier fails with ErrDataIntegrity.
	remove(id ID) (ApplyOutcome, error)

	// idAtPos translates a visible offset into the element's stable
	// identifier, failing with ErrNotFound beyond the visible range.
	idAtPos(position int) (ID, error)

	// contains reports whether the identifier names a known element,
	// tombstoned or not.
	contains(id ID) bool

	// visibleLength returns the number of non-tombstoned elements.
	visibleLength() int

	// visible materializes the non-tombstoned projection in order.
	visible() []rune

	// tombstones returns the identifiers of all tombstoned elements.
	tombstones() mapset.Set[ID]
}
