package wire

import (
	"fmt"
	"strings"

	"github.com/Bathtor/flotsync/crdt"
	"github.com/Bathtor/flotsync/member"
	"github.com/Bathtor/flotsync/version"
	"github.com/pkg/errors"
)

// Structs

// Message is one synchronization message between flotsync replicas. It
// consists of the sending member's identifier, the replication group, the
// sender's causal clock at send time and one operation to apply at the
// receiver's replica.
type Message struct {
	Sender member.Identifier
	Group  member.GroupID
	Clock  *version.VersionVector
	Op     crdt.Operation
}

// Functions

// String marshals the message into its newline-terminated wire form
// 'sender|group|clock|operation'.
func (m *Message) String() (string, error) {

	if err := checkSender(m.Sender.String()); err != nil {
		return "", err
	}

	op, err := EncodeOp(m.Op)
	if err != nil {
		return "", errors.Wrap(err, "marshalling operation failed")
	}

	return fmt.Sprintf("%s|%s|%s|%s\n", m.Sender, m.Group, EncodeClock(m.Clock), op), nil
}

// checkSender rejects sender identifiers that would collide with the
// message framing characters.
func checkSender(sender string) error {

	if sender == "" {
		return errors.New("message carries no sender")
	}

	if strings.ContainsAny(sender, "|\n") {
		return errors.Errorf("sender identifier '%s' contains framing characters", sender)
	}

	return nil
}

// Parse takes in a received wire string and parses it back into message
// struct form.
func Parse(raw string) (*Message, error) {

	raw = strings.TrimRight(raw, "\n")

	parts := strings.SplitN(raw, "|", 4)
	if len(parts) < 4 {
		return nil, errors.New("invalid sync message")
	}

	sender, err := member.ParseIdentifier(parts[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid sync message sender")
	}

	group, err := member.ParseGroupID(parts[1])
	if err != nil {
		return nil, errors.Wrap(err, "invalid sync message group")
	}

	clock, err := DecodeClock(parts[2])
	if err != nil {
		return nil, errors.Wrap(err, "invalid sync message clock")
	}

	op, err := DecodeOp(parts[3])
	if err != nil {
		return nil, errors.Wrap(err, "invalid sync message operation")
	}

	return &Message{
		Sender: sender,
		Group:  group,
		Clock:  clock,
		Op:     op,
	}, nil
}
