package crdt

import (
	"fmt"
)

// MaxBatchLen bounds the number of elements one insertion batch can carry,
// fixed by the width of the Index component.
const MaxBatchLen = 1 << 16

// Structs

// ID is the globally unique, stable position identifier of one sequence
// element. Replica is the member position of the inserting replica, Seq is
// that replica's insertion counter and Index addresses one element within
// an insertion batch. An element keeps its ID for its entire lifetime,
// including its time as a tombstone; no structural edit elsewhere ever
// renumbers it.
type ID struct {
	Replica int
	Seq     uint64
	Index   uint16
}

// Functions

// Next returns the identifier of the directly following element within the
// same batch.
func (id ID) Next() ID {
	return ID{Replica: id.Replica, Seq: id.Seq, Index: id.Index + 1}
}

// SameBatch reports whether both identifiers were minted by the same
// insertion batch.
func (id ID) SameBatch(other ID) bool {
	return (id.Replica == other.Replica) && (id.Seq == other.Seq)
}

// Newer orders batch heads for concurrent same-anchor integration: the
// identifier with the higher (Seq, Replica) pair integrates closer to the
// shared anchor. Seq dominates so that a writer that has already observed
// a sibling places causally later content in front of it.
func (id ID) Newer(other ID) bool {

	if id.Seq != other.Seq {
		return id.Seq > other.Seq
	}

	return id.Replica > other.Replica
}

// String returns the identifier in 'replica:seq.index' form.
func (id ID) String() string {
	return fmt.Sprintf("%d:%d.%d", id.Replica, id.Seq, id.Index)
}
