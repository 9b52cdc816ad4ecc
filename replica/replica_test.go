package replica_test

import (
	"io"
	"testing"

	"github.com/Bathtor/flotsync/config"
	"github.com/Bathtor/flotsync/crdt"
	"github.com/Bathtor/flotsync/replica"
	"github.com/Bathtor/flotsync/wire"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Functions

// groupConfig returns a two-member group config with the supplied local
// member.
func groupConfig(self string) *config.Config {

	return &config.Config{
		Group:    "11111111-2222-3333-4444-555555555555",
		Self:     self,
		LogLevel: "info",
		Member: []config.Member{
			{Identifier: "site-a.node-1", Position: 0},
			{Identifier: "site-b.node-1", Position: 1},
		},
	}
}

// newReplica assembles a test replica with a discarded error-level logger
// and discarding counters.
func newReplica(t *testing.T, self string) *replica.Replica {

	t.Helper()

	r, err := replica.New(groupConfig(self), replica.NewLogger(io.Discard, "error"), replica.NewMetrics(""))
	require.Nil(t, err, "assembling replica should not fail")

	return r
}

// deliver pushes a message through its wire form into the receiving
// replica, the way a transport would.
func deliver(t *testing.T, to *replica.Replica, msg *wire.Message) crdt.ApplyOutcome {

	t.Helper()

	raw, err := msg.String()
	require.Nil(t, err, "marshalling message should not fail")

	parsed, err := wire.Parse(raw)
	require.Nil(t, err, "parsing message should not fail")

	outcome, err := to.Apply(parsed)
	require.Nil(t, err, "applying message should not fail")

	return outcome
}

// TestReplicaConvergence lets two replicas mutate concurrently and
// exchange their operations in opposite orders, expecting identical state
// on both sides afterwards.
func TestReplicaConvergence(t *testing.T) {

	a := newReplica(t, "site-a.node-1")
	b := newReplica(t, "site-b.node-1")

	msgRegA, err := a.SetRegister("title", []byte("x"))
	require.Nil(t, err, "local register write should not fail")

	msgSeqA, _, err := a.InsertText("body", nil, "ab")
	require.Nil(t, err, "local insert should not fail")

	msgRegB, err := b.SetRegister("title", []byte("y"))
	require.Nil(t, err, "local register write should not fail")

	msgSeqB, _, err := b.InsertText("body", nil, "X")
	require.Nil(t, err, "local insert should not fail")

	// Opposite delivery orders on the two sides.
	for _, msg := range []*wire.Message{msgRegB, msgSeqB} {
		deliver(t, a, msg)
	}

	for _, msg := range []*wire.Message{msgSeqA, msgRegA} {
		deliver(t, b, msg)
	}

	regA, exists := a.Register("title")
	require.True(t, exists, "register should exist on replica a")

	regB, exists := b.Register("title")
	require.True(t, exists, "register should exist on replica b")

	// Concurrent writes with equal counters: the greater member position
	// wins everywhere.
	assert.Equal(t, []byte("y"), regA.Value(), "replica a should settle on the deterministic winner")
	assert.Equal(t, regA.Value(), regB.Value(), "register values should converge")

	seqA, exists := a.Sequence("body")
	require.True(t, exists, "sequence should exist on replica a")

	seqB, exists := b.Sequence("body")
	require.True(t, exists, "sequence should exist on replica b")

	assert.Equal(t, seqA.String(), seqB.String(), "sequence projections should converge")
	assert.True(t, seqA.Tombstones().Equal(seqB.Tombstones()), "tombstone sets should converge")
	assert.True(t, a.Clock().Equal(b.Clock()), "clocks should converge after full exchange")
}

// TestReplicaRedelivery checks the at-least-once contract end to end.
func TestReplicaRedelivery(t *testing.T) {

	a := newReplica(t, "site-a.node-1")
	b := newReplica(t, "site-b.node-1")

	msg, _, err := a.InsertText("body", nil, "hello")
	require.Nil(t, err, "local insert should not fail")

	assert.Equal(t, crdt.Applied, deliver(t, b, msg), "first delivery should apply")
	assert.Equal(t, crdt.AlreadyApplied, deliver(t, b, msg), "re-delivery should be a reported no-op")

	seq, exists := b.Sequence("body")
	require.True(t, exists, "sequence should exist after delivery")
	assert.Equal(t, "hello", seq.String(), "re-delivery should not corrupt state")
}

// TestReplicaDeleteAt checks visible-offset deletion across replicas.
func TestReplicaDeleteAt(t *testing.T) {

	a := newReplica(t, "site-a.node-1")
	b := newReplica(t, "site-b.node-1")

	insert, _, err := a.InsertText("body", nil, "abc")
	require.Nil(t, err, "local insert should not fail")

	remove, err := a.DeleteAt("body", 1)
	require.Nil(t, err, "local delete should not fail")

	deliver(t, b, insert)
	deliver(t, b, remove)

	seqA, _ := a.Sequence("body")
	seqB, _ := b.Sequence("body")

	assert.Equal(t, "ac", seqA.String(), "local projection should drop the deleted element")
	assert.Equal(t, "ac", seqB.String(), "remote projection should drop the deleted element")

	_, err = a.DeleteAt("body", 5)
	assert.NotNil(t, err, "deleting beyond the visible range should fail")

	_, err = a.DeleteAt("unknown", 0)
	assert.NotNil(t, err, "deleting from an unknown sequence should fail")
}

// TestReplicaRejectsForeignGroup checks that messages for another group
// never touch local state.
func TestReplicaRejectsForeignGroup(t *testing.T) {

	a := newReplica(t, "site-a.node-1")

	foreign := groupConfig("site-b.node-1")
	foreign.Group = "99999999-8888-7777-6666-555555555555"

	b, err := replica.New(foreign, log.NewNopLogger(), replica.NewMetrics(""))
	require.Nil(t, err, "assembling replica should not fail")

	msg, err := b.SetRegister("title", []byte("y"))
	require.Nil(t, err, "local register write should not fail")

	_, err = a.Apply(msg)
	assert.NotNil(t, err, "foreign group message should be rejected")

	_, exists := a.Register("title")
	assert.False(t, exists, "rejected message should not create instances")
}

// TestReplicaIntegrityRejection checks that a delete for a never-seen
// identifier is reported and leaves state unchanged.
func TestReplicaIntegrityRejection(t *testing.T) {

	a := newReplica(t, "site-a.node-1")
	b := newReplica(t, "site-b.node-1")

	insert, ids, err := a.InsertText("body", nil, "ab")
	require.Nil(t, err, "local insert should not fail")

	deliver(t, b, insert)

	// A delete for an identifier b has never seen.
	unknown := crdt.ID{Replica: 9, Seq: 9, Index: 0}
	msg := &wire.Message{
		Sender: a.Self(),
		Group:  groupConfig("site-a.node-1").GroupID(),
		Clock:  a.Clock(),
		Op:     crdt.SequenceDeleteOp{Name: "body", Target: unknown},
	}

	_, err = b.Apply(msg)
	assert.NotNil(t, err, "delete of an unknown identifier should be rejected")

	seqB, _ := b.Sequence("body")
	assert.Equal(t, "ab", seqB.String(), "rejected delete should leave state unchanged")
	assert.False(t, seqB.Contains(unknown), "unknown identifier should stay unknown")
	assert.Equal(t, 2, len(ids), "insert should have assigned two identifiers")
}
