package crdt

// Operation tags

const (
	// TagRegisterSet marks a register write.
	TagRegisterSet = "set"

	// TagSequenceInsert marks a sequence insertion batch.
	TagSequenceInsert = "ins"

	// TagSequenceDelete marks a sequence element deletion.
	TagSequenceDelete = "del"
)

// Structs

// Operation is one replicated mutation, tagged for transport-level
// dispatch. The concrete types are RegisterSetOp, SequenceInsertOp and
// SequenceDeleteOp.
type Operation interface {

	// Tag returns the operation's dispatch tag.
	Tag() string

	// Instance returns the name of the register or sequence the
	// operation addresses inside its replica.
	Instance() string
}

// RegisterSetOp replaces a register's value if its stamp wins.
type RegisterSetOp struct {
	Name  string
	Value []byte
	Stamp Stamp
}

// SequenceInsertOp inserts one batch of contiguous elements immediately
// after Anchor, or at the start of the sequence if Anchor is nil. Element
// i of Content carries the position identifier Head plus i.
type SequenceInsertOp struct {
	Name    string
	Head    ID
	Anchor  *ID
	Content string
}

// SequenceDeleteOp tombstones one element.
type SequenceDeleteOp struct {
	Name   string
	Target ID
}

// Functions

// Tag returns TagRegisterSet.
func (o RegisterSetOp) Tag() string { return TagRegisterSet }

// Instance returns the addressed register name.
func (o RegisterSetOp) Instance() string { return o.Name }

// Tag returns TagSequenceInsert.
func (o SequenceInsertOp) Tag() string { return TagSequenceInsert }

// Instance returns the addressed sequence name.
func (o SequenceInsertOp) Instance() string { return o.Name }

// Tag returns TagSequenceDelete.
func (o SequenceDeleteOp) Tag() string { return TagSequenceDelete }

// Instance returns the addressed sequence name.
func (o SequenceDeleteOp) Instance() string { return o.Name }
