package crdt

import (
	"bytes"

	"github.com/Bathtor/flotsync/version"
	"github.com/pkg/errors"
)

// Structs

// Register is a latest-value-wins cell holding one opaque payload. Every
// write carries a Stamp drawn from the writer's causal clock, and the
// register keeps the value whose stamp is maximal under the deterministic
// tie-break order of Stamp.Less. Given the same set of operations, all
// replicas therefore converge on the same (value, stamp) pair regardless
// of delivery order or duplication.
//
// The register does not own a clock. The owning replica passes its current
// clock through Set and receives the advanced clock back together with the
// outgoing operation.
type Register struct {
	value   []byte
	stamp   Stamp
	stamped bool
}

// Functions

// NewRegister returns an empty register. The first applied operation
// always wins.
func NewRegister() *Register {
	return &Register{}
}

// NewRegisterWithValue returns a register seeded with an initial value and
// the stamp it was written under.
func NewRegisterWithValue(value []byte, stamp Stamp) *Register {

	return &Register{
		value:   append([]byte(nil), value...),
		stamp:   stamp,
		stamped: true,
	}
}

// Value returns the currently accepted payload, nil while the register is
// still empty.
func (r *Register) Value() []byte {
	return r.value
}

// Stamp returns the stamp of the currently accepted payload. The second
// return value is false while the register is still empty.
func (r *Register) Stamp() (Stamp, bool) {
	return r.stamp, r.stamped
}

// Set writes a new value on the owning replica. It advances the supplied
// clock at the writer's own member position, applies the write locally and
// returns the operation to hand to transport together with the advanced
// clock. The supplied clock is left untouched.
func (r *Register) Set(clock *version.VersionVector, position int, value []byte) (RegisterSetOp, *version.VersionVector, error) {

	next, err := clock.SuccAt(position)
	if err != nil {
		return RegisterSetOp{}, nil, errors.Wrap(err, "advancing clock for register write failed")
	}

	op := RegisterSetOp{
		Value: append([]byte(nil), value...),
		Stamp: Stamp{
			Position: position,
			Counter:  next.Counter(position),
		},
	}

	r.Apply(op)

	return op, next, nil
}

// Apply folds one incoming operation into the register. The fold is
// idempotent, commutative and associative: duplicates and stale deliveries
// report AlreadyApplied, a concurrent write is resolved through the total
// tie-break order, with fully equal stamps decided by the lexicographically
// greater payload.
func (r *Register) Apply(op RegisterSetOp) ApplyOutcome {

	if !r.stamped {
		r.adopt(op)
		return Applied
	}

	switch op.Stamp.Compare(r.stamp) {

	case version.After:
		r.adopt(op)
		return Applied

	case version.Before:
		return AlreadyApplied

	case version.Equal:

		if bytes.Compare(op.Value, r.value) > 0 {
			r.adopt(op)
			return Applied
		}

		return AlreadyApplied

	default:

		if r.stamp.Less(op.Stamp) {
			r.adopt(op)
			return Applied
		}

		return AlreadyApplied
	}
}

// adopt replaces value and stamp with the operation's.
func (r *Register) adopt(op RegisterSetOp) {
	r.value = append([]byte(nil), op.Value...)
	r.stamp = op.Stamp
	r.stamped = true
}
