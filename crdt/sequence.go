package crdt

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Structs

// Sequence is a replicated linear sequence of text elements. Elements are
// addressed by stable position identifiers that sort correctly relative to
// every existing and future identifier without ever renumbering anything,
// so concurrent edits at arbitrary places merge without coordination.
// Deleted elements become tombstones that keep their place in the order;
// user-facing offsets always address the visible projection only.
//
// Locally typed runs continue the previous insertion batch whenever the
// new content directly extends it, which lets the run arena keep dense
// sequential insertion in a handful of nodes.
type Sequence struct {
	name     string
	replica  int
	seq      uint64
	lastTail ID
	hasLast  bool
	backend  backend
}

// Functions

// NewSequence returns an empty sequence owned by the replica at the
// supplied member position.
func NewSequence(name string, replica int) *Sequence {

	return &Sequence{
		name:    name,
		replica: replica,
		backend: newRunArena(),
	}
}

// Name returns the instance name operations of this sequence carry.
func (s *Sequence) Name() string {
	return s.name
}

// Insert places content immediately after anchor, or at the start of the
// sequence if anchor is nil. Anchoring at a tombstoned element is valid,
// the tombstone retains its ordering role. The batch is applied locally
// and the returned operation carries everything a remote replica needs to
// integrate it at the same logical place. The second return value lists
// the fresh identifiers assigned to the inserted elements, in order.
func (s *Sequence) Insert(anchor *ID, text string) (SequenceInsertOp, []ID, error) {

	content := []rune(text)

	if len(content) == 0 {
		return SequenceInsertOp{}, nil, errors.New("insert content must not be empty")
	}

	if len(content) > MaxBatchLen {
		return SequenceInsertOp{}, nil, errors.Errorf("insert content of %d elements exceeds the batch limit of %d", len(content), MaxBatchLen)
	}

	var head ID
	if s.hasLast && (anchor != nil) && (*anchor == s.lastTail) && ((int(s.lastTail.Index) + len(content)) < MaxBatchLen) {
		// Directly extending the last local batch keeps its identifier
		// range, so the arena can coalesce the two fragments.
		head = s.lastTail.Next()
	} else {
		s.seq++
		head = ID{Replica: s.replica, Seq: s.seq}
	}

	op := SequenceInsertOp{
		Name:    s.name,
		Head:    head,
		Anchor:  cloneID(anchor),
		Content: string(content),
	}

	if _, err := s.backend.integrate(head, op.Anchor, content); err != nil {
		return SequenceInsertOp{}, nil, errors.Wrap(err, "local insert failed")
	}

	ids := make([]ID, len(content))
	id := head
	for i := range ids {
		ids[i] = id
		id = id.Next()
	}

	s.lastTail = ids[len(ids)-1]
	s.hasLast = true

	return op, ids, nil
}

// Delete tombstones the element with the supplied identifier locally and
// returns the operation to hand to transport. Deleting an already
// tombstoned element is a routine no-op, an unknown identifier fails with
// ErrDataIntegrity.
func (s *Sequence) Delete(id ID) (SequenceDeleteOp, error) {

	if _, err := s.backend.remove(id); err != nil {
		return SequenceDeleteOp{}, errors.Wrap(err, "local delete failed")
	}

	return SequenceDeleteOp{
		Name:   s.name,
		Target: id,
	}, nil
}

// ApplyInsert integrates one remote insertion batch. Concurrent inserts at
// the same anchor interleave deterministically by identifier order, not by
// arrival order.
func (s *Sequence) ApplyInsert(op SequenceInsertOp) (ApplyOutcome, error) {

	content := []rune(op.Content)
	if len(content) == 0 {
		return Applied, errors.New("insert operation carries no content")
	}

	// Element i carries identifier Head plus i; a batch running past the
	// index width would wrap and collide with existing identifiers.
	if (int(op.Head.Index) + len(content)) > MaxBatchLen {
		return Applied, errors.Errorf("insert batch of %d elements starting at index %d exceeds the batch limit of %d", len(content), op.Head.Index, MaxBatchLen)
	}

	outcome, err := s.backend.integrate(op.Head, op.Anchor, content)
	if err != nil {
		return outcome, err
	}

	// Later local batches must order in front of everything observed.
	if op.Head.Seq > s.seq {
		s.seq = op.Head.Seq
	}

	return outcome, nil
}

// ApplyDelete integrates one remote deletion.
func (s *Sequence) ApplyDelete(op SequenceDeleteOp) (ApplyOutcome, error) {
	return s.backend.remove(op.Target)
}

// IDAtPos translates a user-facing offset into the visible projection to
// the addressed element's stable identifier. Fails with ErrNotFound when
// the offset is outside the visible range.
func (s *Sequence) IDAtPos(position int) (ID, error) {
	return s.backend.idAtPos(position)
}

// Contains reports whether the identifier names a known element of this
// sequence, tombstoned or not.
func (s *Sequence) Contains(id ID) bool {
	return s.backend.contains(id)
}

// VisibleLength returns the number of non-tombstoned elements.
func (s *Sequence) VisibleLength() int {
	return s.backend.visibleLength()
}

// Tombstones returns the identifiers of all tombstoned elements.
func (s *Sequence) Tombstones() mapset.Set[ID] {
	return s.backend.tombstones()
}

// String materializes the visible projection in order.
func (s *Sequence) String() string {
	return string(s.backend.visible())
}

// cloneID returns an independent copy of an optional identifier.
func cloneID(id *ID) *ID {

	if id == nil {
		return nil
	}

	copied := *id
	return &copied
}
