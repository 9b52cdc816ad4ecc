package replica

import (
	"github.com/Bathtor/flotsync/config"
	"github.com/Bathtor/flotsync/crdt"
	"github.com/Bathtor/flotsync/member"
	"github.com/Bathtor/flotsync/version"
	"github.com/Bathtor/flotsync/wire"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

// Structs

// Replica is one member's local copy of a replication group's state: the
// roster, this member's causal clock and the named registers and
// sequences, together with a logger and outcome counters.
type Replica struct {
	group      member.GroupID
	membership *member.Membership
	self       member.Identifier
	position   int
	clock      *version.VersionVector
	registers  map[string]*crdt.Register
	sequences  map[string]*crdt.Sequence
	logger     log.Logger
	metrics    *Metrics
}

// Functions

// New assembles a replica from a validated group config.
func New(conf *config.Config, logger log.Logger, metrics *Metrics) (*Replica, error) {

	membership, err := conf.Membership()
	if err != nil {
		return nil, errors.Wrap(err, "assembling replica membership failed")
	}

	self, err := member.ParseIdentifier(conf.Self)
	if err != nil {
		return nil, errors.Wrap(err, "invalid local member identifier")
	}

	clock, err := version.NewSynced(membership.Len(), 0)
	if err != nil {
		return nil, errors.Wrap(err, "initializing causal clock failed")
	}

	return &Replica{
		group:      conf.GroupID(),
		membership: membership,
		self:       self,
		position:   conf.SelfPosition(),
		clock:      clock,
		registers:  make(map[string]*crdt.Register),
		sequences:  make(map[string]*crdt.Sequence),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Self returns the local member's identifier.
func (r *Replica) Self() member.Identifier {
	return r.self
}

// Position returns the local member's clock position.
func (r *Replica) Position() int {
	return r.position
}

// Clock returns the replica's current causal clock.
func (r *Replica) Clock() *version.VersionVector {
	return r.clock
}

// Register returns the named register, if it exists yet.
func (r *Replica) Register(name string) (*crdt.Register, bool) {
	reg, exists := r.registers[name]
	return reg, exists
}

// Sequence returns the named sequence, if it exists yet.
func (r *Replica) Sequence(name string) (*crdt.Sequence, bool) {
	seq, exists := r.sequences[name]
	return seq, exists
}

// ensureRegister returns the named register, creating it on first use.
func (r *Replica) ensureRegister(name string) *crdt.Register {

	reg, exists := r.registers[name]
	if !exists {
		reg = crdt.NewRegister()
		r.registers[name] = reg
	}

	return reg
}

// ensureSequence returns the named sequence, creating it on first use.
func (r *Replica) ensureSequence(name string) *crdt.Sequence {

	seq, exists := r.sequences[name]
	if !exists {
		seq = crdt.NewSequence(name, r.position)
		r.sequences[name] = seq
	}

	return seq
}

// envelope wraps an operation with this replica's identity and advanced
// clock.
func (r *Replica) envelope(op crdt.Operation) *wire.Message {

	return &wire.Message{
		Sender: r.self,
		Group:  r.group,
		Clock:  r.clock,
		Op:     op,
	}
}

// SetRegister writes a new value into the named register and returns the
// message to broadcast.
func (r *Replica) SetRegister(name string, value []byte) (*wire.Message, error) {

	op, next, err := r.ensureRegister(name).Set(r.clock, r.position, value)
	if err != nil {
		return nil, errors.Wrapf(err, "setting register '%s' failed", name)
	}

	op.Name = name
	r.clock = next
	r.metrics.LocalMutations.Add(1)

	level.Debug(r.logger).Log(
		"msg", "set register",
		"register", name,
		"stamp", op.Stamp.String(),
	)

	return r.envelope(op), nil
}

// InsertText places text immediately after anchor in the named sequence,
// or at the start for a nil anchor. It returns the message to broadcast
// and the identifiers assigned to the inserted elements.
func (r *Replica) InsertText(name string, anchor *crdt.ID, text string) (*wire.Message, []crdt.ID, error) {

	op, ids, err := r.ensureSequence(name).Insert(anchor, text)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "inserting into sequence '%s' failed", name)
	}

	next, err := r.clock.SuccAt(r.position)
	if err != nil {
		return nil, nil, errors.Wrap(err, "advancing clock failed")
	}

	r.clock = next
	r.metrics.LocalMutations.Add(1)

	level.Debug(r.logger).Log(
		"msg", "inserted text",
		"sequence", name,
		"head", op.Head.String(),
		"elements", len(ids),
	)

	return r.envelope(op), ids, nil
}

// DeleteAt tombstones the element at the supplied visible offset of the
// named sequence and returns the message to broadcast.
func (r *Replica) DeleteAt(name string, position int) (*wire.Message, error) {

	seq, exists := r.sequences[name]
	if !exists {
		return nil, errors.Errorf("sequence '%s' does not exist", name)
	}

	id, err := seq.IDAtPos(position)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving visible position %d failed", position)
	}

	op, err := seq.Delete(id)
	if err != nil {
		return nil, errors.Wrapf(err, "deleting from sequence '%s' failed", name)
	}

	next, err := r.clock.SuccAt(r.position)
	if err != nil {
		return nil, errors.Wrap(err, "advancing clock failed")
	}

	r.clock = next
	r.metrics.LocalMutations.Add(1)

	level.Debug(r.logger).Log(
		"msg", "deleted element",
		"sequence", name,
		"id", id.String(),
	)

	return r.envelope(op), nil
}

// Apply folds one received message into local state. The sender's clock is
// merged into the local clock, the operation is dispatched by its tag and
// the outcome is counted. Integrity failures are reported to the caller
// with local state unchanged; deciding between logging, alerting and
// resynchronization is the transport layer's call.
func (r *Replica) Apply(msg *wire.Message) (crdt.ApplyOutcome, error) {

	if msg.Group != r.group {
		r.metrics.Rejected.Add(1)
		return crdt.Applied, errors.Errorf("message for group %s delivered to group %s", msg.Group, r.group)
	}

	var outcome crdt.ApplyOutcome
	var err error

	switch op := msg.Op.(type) {

	case crdt.RegisterSetOp:
		outcome = r.ensureRegister(op.Name).Apply(op)

	case crdt.SequenceInsertOp:
		outcome, err = r.ensureSequence(op.Name).ApplyInsert(op)

	case crdt.SequenceDeleteOp:
		outcome, err = r.ensureSequence(op.Name).ApplyDelete(op)

	default:
		err = errors.Errorf("message carries unsupported operation type %T", msg.Op)
	}

	if err != nil {

		r.metrics.Rejected.Add(1)

		level.Warn(r.logger).Log(
			"msg", "rejected operation",
			"sender", msg.Sender.String(),
			"op", msg.Op.Tag(),
			"instance", msg.Op.Instance(),
			"err", err,
		)

		return outcome, err
	}

	r.clock = r.clock.Merge(msg.Clock)

	switch outcome {
	case crdt.Applied:
		r.metrics.Applied.Add(1)
	case crdt.AlreadyApplied:
		r.metrics.AlreadyApplied.Add(1)
	}

	level.Debug(r.logger).Log(
		"msg", "applied operation",
		"sender", msg.Sender.String(),
		"op", msg.Op.Tag(),
		"instance", msg.Op.Instance(),
		"outcome", outcome.String(),
	)

	return outcome, nil
}
