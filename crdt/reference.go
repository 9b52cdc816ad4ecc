package crdt

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Structs

// listElement is one element of the reference backend, which stores the
// sequence without any coalescing: one node per element, in identifier
// order.
type listElement struct {
	id        ID
	origin    ID
	hasOrigin bool
	deleted   bool
	value     rune
}

// listBackend is a deliberately naive sequence storage layer used as a
// test oracle for the run arena. It shares the integration rules but none
// of the splitting, coalescing or caching machinery, so divergence between
// the two implementations points at a defect in exactly that machinery.
type listBackend struct {
	elems      []*listElement
	visibleLen int
}

// Functions

func newListBackend() *listBackend {
	return &listBackend{}
}

func (l *listBackend) find(id ID) int {

	for i, e := range l.elems {

		if e.id == id {
			return i
		}
	}

	return -1
}

// subtreeEnd returns the index one past the last element of the subtree
// rooted at the element at index i.
func (l *listBackend) subtreeEnd(i int) int {

	end := i + 1

	for end < len(l.elems) {

		e := l.elems[end]
		if !e.hasOrigin {
			break
		}

		inside := false
		for k := i; k < end; k++ {

			if l.elems[k].id == e.origin {
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

func (l *listBackend) integrate(head ID, anchor *ID, content []rune) (ApplyOutcome, error) {

	if l.find(head) >= 0 {
		return AlreadyApplied, nil
	}

	pos := 0

	var origin ID
	hasOrigin := false

	if anchor != nil {

		ai := l.find(*anchor)
		if ai < 0 {
			return Applied, errors.Wrapf(ErrDataIntegrity, "insert anchored at unknown identifier %v", *anchor)
		}

		pos = ai + 1
		origin = *anchor
		hasOrigin = true
	}

	for pos < len(l.elems) {

		e := l.elems[pos]

		sibling := (e.hasOrigin == hasOrigin) && (!hasOrigin || (e.origin == origin))
		if !sibling || !e.id.Newer(head) {
			break
		}

		pos = l.subtreeEnd(pos)
	}

	batch := make([]*listElement, len(content))

	id := head
	prev := origin
	hasPrev := hasOrigin
	for k, ch := range content {

		batch[k] = &listElement{
			id:        id,
			origin:    prev,
			hasOrigin: hasPrev,
			value:     ch,
		}

		prev = id
		hasPrev = true
		id = id.Next()
	}

	l.elems = append(l.elems, batch...)
	copy(l.elems[(pos+len(batch)):], l.elems[pos:])
	copy(l.elems[pos:], batch)

	l.visibleLen += len(content)

	return Applied, nil
}

func (l *listBackend) remove(id ID) (ApplyOutcome, error) {

	i := l.find(id)
	if i < 0 {
		return Applied, errors.Wrapf(ErrDataIntegrity, "delete of unknown identifier %v", id)
	}

	if l.elems[i].deleted {
		return AlreadyApplied, nil
	}

	l.elems[i].deleted = true
	l.visibleLen--

	return Applied, nil
}

func (l *listBackend) idAtPos(position int) (ID, error) {

	if (position < 0) || (position >= l.visibleLen) {
		return ID{}, errors.Wrapf(ErrNotFound, "visible position %d outside [0, %d)", position, l.visibleLen)
	}

	remaining := position
	for _, e := range l.elems {

		if e.deleted {
			continue
		}

		if remaining == 0 {
			return e.id, nil
		}

		remaining--
	}

	return ID{}, errors.Wrapf(ErrNotFound, "visible position %d outside [0, %d)", position, l.visibleLen)
}

func (l *listBackend) contains(id ID) bool {
	return l.find(id) >= 0
}

func (l *listBackend) visibleLength() int {
	return l.visibleLen
}

func (l *listBackend) visible() []rune {

	out := make([]rune, 0, l.visibleLen)
	for _, e := range l.elems {

		if !e.deleted {
			out = append(out, e.value)
		}
	}

	return out
}

func (l *listBackend) tombstones() mapset.Set[ID] {

	set := mapset.NewSet[ID]()
	for _, e := range l.elems {

		if e.deleted {
			set.Add(e.id)
		}
	}

	return set
}
