package crdt

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Structs

// run is one arena node holding a maximal contiguous fragment of a single
// insertion batch. Element i of content carries the identifier head plus
// i. The origin links to the element the fragment is anchored after;
// hasOrigin is false for fragments anchored at the document start.
//
// tailClear caches whether no run other than the direct arena successor is
// anchored at this run's tail element. The flag is invalidated whenever a
// structural mutation can change that fact: a split replacing the tail,
// or the arrival of a new child anchored at it.
type run struct {
	head      ID
	content   []rune
	origin    ID
	hasOrigin bool
	deleted   bool

	tailClear      bool
	tailClearKnown bool
}

// runArena keeps all runs of one sequence in a flat slice whose order is
// the in-order traversal of the anchor tree, i.e. the identifier total
// order. Tombstoned runs stay in the slice and keep their ordering role;
// only the visible projection skips them.
type runArena struct {
	runs       []*run
	visibleLen int
}

// Functions

// tail returns the identifier of the run's last element.
func (r *run) tail() ID {
	return ID{Replica: r.head.Replica, Seq: r.head.Seq, Index: r.head.Index + uint16(len(r.content)-1)}
}

// containsID reports whether the identifier addresses an element of this
// run, tombstoned or not.
func (r *run) containsID(id ID) bool {

	if !id.SameBatch(r.head) {
		return false
	}

	offset := int(id.Index) - int(r.head.Index)

	return (offset >= 0) && (offset < len(r.content))
}

// anchoredAt reports whether the run's first element is anchored directly
// after the supplied element, or at the document start if hasOrigin is
// false.
func (r *run) anchoredAt(origin ID, hasOrigin bool) bool {

	if r.hasOrigin != hasOrigin {
		return false
	}

	return !hasOrigin || (r.origin == origin)
}

// newRunArena returns an empty arena.
func newRunArena() *runArena {
	return &runArena{}
}

// findRun returns the index of the run containing the identifier.
func (a *runArena) findRun(id ID) (int, bool) {

	for i, r := range a.runs {

		if r.containsID(id) {
			return i, true
		}
	}

	return 0, false
}

// insertRun places a run at the supplied arena index.
func (a *runArena) insertRun(i int, r *run) {
	a.runs = append(a.runs, nil)
	copy(a.runs[(i+1):], a.runs[i:])
	a.runs[i] = r
}

// removeRun drops the run at the supplied arena index.
func (a *runArena) removeRun(i int) {
	a.runs = append(a.runs[:i], a.runs[(i+1):]...)
}

// split cuts the run at the supplied arena index in two in front of the
// element at offset. Identifiers are untouched, the right half is anchored
// at the left half's new tail. The cached tail fact moves to the right
// half because the old tail element now lives there.
func (a *runArena) split(i int, offset int) {

	left := a.runs[i]
	headIndex := left.head.Index + uint16(offset)

	right := &run{
		head:           ID{Replica: left.head.Replica, Seq: left.head.Seq, Index: headIndex},
		content:        append([]rune(nil), left.content[offset:]...),
		origin:         ID{Replica: left.head.Replica, Seq: left.head.Seq, Index: headIndex - 1},
		hasOrigin:      true,
		deleted:        left.deleted,
		tailClear:      left.tailClear,
		tailClearKnown: left.tailClearKnown,
	}

	left.content = left.content[:offset:offset]
	left.tailClearKnown = false

	a.insertRun(i+1, right)
}

// splitAfter makes the supplied element the tail of its run, splitting the
// run when the element is interior. Returns the index of the run that now
// ends at the element.
func (a *runArena) splitAfter(i int, id ID) int {

	offset := int(id.Index) - int(a.runs[i].head.Index) + 1
	if offset < len(a.runs[i].content) {
		a.split(i, offset)
	}

	return i
}

// splitBefore makes the supplied element the head of its run, splitting
// the run when the element is interior. Returns the index of the run that
// now starts at the element.
func (a *runArena) splitBefore(i int, id ID) int {

	offset := int(id.Index) - int(a.runs[i].head.Index)
	if offset > 0 {
		a.split(i, offset)
		return i + 1
	}

	return i
}

// subtreeEnd returns the index one past the last run of the subtree rooted
// at the run at index i, i.e. the contiguous span of runs whose origin
// element lies within the span itself.
func (a *runArena) subtreeEnd(i int) int {

	end := i + 1

	for end < len(a.runs) {

		r := a.runs[end]
		if !r.hasOrigin {
			break
		}

		inside := false
		for k := i; k < end; k++ {

			if a.runs[k].containsID(r.origin) {
				inside = true
				break
			}
		}

		if !inside {
			break
		}

		end++
	}

	return end
}

// checkTailClear computes or recalls whether no run other than the direct
// arena successor is anchored at the tail element of the run at index i.
// Only then may the successor be coalesced in: a foreign child anchored at
// the tail sits further right in the identifier order, and folding the
// boundary away would bury its anchor inside a run. The scan descends the
// whole arena, so its result is cached on the node.
func (a *runArena) checkTailClear(i int) bool {

	r := a.runs[i]
	if r.tailClearKnown {
		return r.tailClear
	}

	tail := r.tail()

	clear := true
	for j, other := range a.runs {

		if (j == i) || (j == (i + 1)) {
			continue
		}

		if other.hasOrigin && (other.origin == tail) {
			clear = false
			break
		}
	}

	r.tailClear = clear
	r.tailClearKnown = true

	return clear
}

// tryCoalesce merges the run at index i into its arena predecessor when
// both are fragments of one split batch: consecutive indices, an intact
// origin chain, the same tombstone state, and a clear tail on the left
// run. Reports whether a merge happened.
func (a *runArena) tryCoalesce(i int) bool {

	if (i <= 0) || (i >= len(a.runs)) {
		return false
	}

	left := a.runs[i-1]
	right := a.runs[i]

	if !left.head.SameBatch(right.head) {
		return false
	}

	if (int(left.head.Index) + len(left.content)) != int(right.head.Index) {
		return false
	}

	if !right.hasOrigin || (right.origin != left.tail()) {
		return false
	}

	if left.deleted != right.deleted {
		return false
	}

	if !a.checkTailClear(i - 1) {
		return false
	}

	left.content = append(left.content, right.content...)
	left.tailClear = right.tailClear
	left.tailClearKnown = right.tailClearKnown

	a.removeRun(i)

	return true
}

// integrate places one insertion batch as a new run. The anchor run is
// split so the anchor becomes a run tail, then sibling subtrees whose head
// is newer than the incoming batch are skipped so concurrent same-anchor
// inserts interleave by identifier order alone, independent of arrival
// order.
func (a *runArena) integrate(head ID, anchor *ID, content []rune) (ApplyOutcome, error) {

	if _, known := a.findRun(head); known {
		return AlreadyApplied, nil
	}

	pos := 0

	var origin ID
	hasOrigin := false

	if anchor != nil {

		ai, known := a.findRun(*anchor)
		if !known {
			return Applied, errors.Wrapf(ErrDataIntegrity, "insert anchored at unknown identifier %v", *anchor)
		}

		ai = a.splitAfter(ai, *anchor)

		// A new child for this tail is about to arrive.
		a.runs[ai].tailClearKnown = false

		pos = ai + 1
		origin = *anchor
		hasOrigin = true
	}

	for pos < len(a.runs) {

		r := a.runs[pos]
		if !r.anchoredAt(origin, hasOrigin) || !r.head.Newer(head) {
			break
		}

		pos = a.subtreeEnd(pos)
	}

	a.insertRun(pos, &run{
		head:      head,
		content:   append([]rune(nil), content...),
		origin:    origin,
		hasOrigin: hasOrigin,
	})
	a.visibleLen += len(content)

	if a.tryCoalesce(pos) {
		pos--
	}
	a.tryCoalesce(pos + 1)

	return Applied, nil
}

// remove tombstones one element, isolating it in its own run first so the
// tombstone boundary matches the element boundary.
func (a *runArena) remove(id ID) (ApplyOutcome, error) {

	i, known := a.findRun(id)
	if !known {
		return Applied, errors.Wrapf(ErrDataIntegrity, "delete of unknown identifier %v", id)
	}

	if a.runs[i].deleted {
		return AlreadyApplied, nil
	}

	i = a.splitBefore(i, id)
	i = a.splitAfter(i, id)

	a.runs[i].deleted = true
	a.visibleLen--

	// Adjacent tombstoned fragments of one batch fold back together.
	if a.tryCoalesce(i) {
		i--
	}
	a.tryCoalesce(i + 1)

	return Applied, nil
}

// idAtPos translates a visible offset into the element's identifier.
func (a *runArena) idAtPos(position int) (ID, error) {

	if (position < 0) || (position >= a.visibleLen) {
		return ID{}, errors.Wrapf(ErrNotFound, "visible position %d outside [0, %d)", position, a.visibleLen)
	}

	remaining := position
	for _, r := range a.runs {

		if r.deleted {
			continue
		}

		if remaining < len(r.content) {
			return ID{Replica: r.head.Replica, Seq: r.head.Seq, Index: r.head.Index + uint16(remaining)}, nil
		}

		remaining -= len(r.content)
	}

	return ID{}, errors.Wrapf(ErrNotFound, "visible position %d outside [0, %d)", position, a.visibleLen)
}

// contains reports whether the identifier names a known element.
func (a *runArena) contains(id ID) bool {
	_, known := a.findRun(id)
	return known
}

// visibleLength returns the number of non-tombstoned elements.
func (a *runArena) visibleLength() int {
	return a.visibleLen
}

// visible materializes the non-tombstoned projection in order.
func (a *runArena) visible() []rune {

	out := make([]rune, 0, a.visibleLen)
	for _, r := range a.runs {

		if !r.deleted {
			out = append(out, r.content...)
		}
	}

	return out
}

// tombstones returns the identifiers of all tombstoned elements.
func (a *runArena) tombstones() mapset.Set[ID] {

	set := mapset.NewSet[ID]()
	for _, r := range a.runs {

		if !r.deleted {
			continue
		}

		id := r.head
		for range r.content {
			set.Add(id)
			id = id.Next()
		}
	}

	return set
}

// runCount returns the number of arena nodes, exposed for coalescing
// behavior inspection.
func (a *runArena) runCount() int {
	return len(a.runs)
}
