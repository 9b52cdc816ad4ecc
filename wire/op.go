package wire

import (
	"fmt"
	"strconv"
	"strings"

	"encoding/base64"

	"github.com/Bathtor/flotsync/crdt"
	"github.com/pkg/errors"
)

// noAnchor marks a sequence insert at the document start.
const noAnchor = "-"

// Functions

// EncodeOp marshals one operation into its tagged wire field. Payload
// bytes travel base64-encoded so they can never collide with the framing
// characters.
func EncodeOp(op crdt.Operation) (string, error) {

	if err := checkInstanceName(op.Instance()); err != nil {
		return "", err
	}

	switch o := op.(type) {

	case crdt.RegisterSetOp:
		return fmt.Sprintf("%s:%s:%d:%d:%s", crdt.TagRegisterSet, o.Name, o.Stamp.Position, o.Stamp.Counter, base64.StdEncoding.EncodeToString(o.Value)), nil

	case crdt.SequenceInsertOp:

		anchor := noAnchor
		if o.Anchor != nil {
			anchor = encodeID(*o.Anchor)
		}

		return fmt.Sprintf("%s:%s:%s:%s:%s", crdt.TagSequenceInsert, o.Name, encodeID(o.Head), anchor, base64.StdEncoding.EncodeToString([]byte(o.Content))), nil

	case crdt.SequenceDeleteOp:
		return fmt.Sprintf("%s:%s:%s", crdt.TagSequenceDelete, o.Name, encodeID(o.Target)), nil

	default:
		return "", errors.Errorf("operation type %T cannot be marshalled", op)
	}
}

// DecodeOp parses a tagged operation field back into its struct form.
func DecodeOp(raw string) (crdt.Operation, error) {

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return nil, errors.Errorf("invalid operation field '%s'", raw)
	}

	switch parts[0] {

	case crdt.TagRegisterSet:

		fields := strings.SplitN(parts[1], ":", 4)
		if len(fields) != 4 {
			return nil, errors.Errorf("register set operation needs 4 fields but found %d", len(fields))
		}

		position, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrap(err, "invalid stamp position")
		}

		counter, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid stamp counter")
		}

		value, err := base64.StdEncoding.DecodeString(fields[3])
		if err != nil {
			return nil, errors.Wrap(err, "invalid register payload")
		}

		return crdt.RegisterSetOp{
			Name:  fields[0],
			Value: value,
			Stamp: crdt.Stamp{Position: position, Counter: counter},
		}, nil

	case crdt.TagSequenceInsert:

		fields := strings.SplitN(parts[1], ":", 4)
		if len(fields) != 4 {
			return nil, errors.Errorf("sequence insert operation needs 4 fields but found %d", len(fields))
		}

		head, err := decodeID(fields[1])
		if err != nil {
			return nil, errors.Wrap(err, "invalid insert head identifier")
		}

		var anchor *crdt.ID
		if fields[2] != noAnchor {

			id, err := decodeID(fields[2])
			if err != nil {
				return nil, errors.Wrap(err, "invalid insert anchor identifier")
			}

			anchor = &id
		}

		content, err := base64.StdEncoding.DecodeString(fields[3])
		if err != nil {
			return nil, errors.Wrap(err, "invalid insert content")
		}

		return crdt.SequenceInsertOp{
			Name:    fields[0],
			Head:    head,
			Anchor:  anchor,
			Content: string(content),
		}, nil

	case crdt.TagSequenceDelete:

		fields := strings.SplitN(parts[1], ":", 2)
		if len(fields) != 2 {
			return nil, errors.Errorf("sequence delete operation needs 2 fields but found %d", len(fields))
		}

		target, err := decodeID(fields[1])
		if err != nil {
			return nil, errors.Wrap(err, "invalid delete target identifier")
		}

		return crdt.SequenceDeleteOp{
			Name:   fields[0],
			Target: target,
		}, nil

	default:
		return nil, errors.Errorf("unsupported operation tag '%s'", parts[0])
	}
}

// encodeID marshals a position identifier as 'replica.seq.index'.
func encodeID(id crdt.ID) string {
	return fmt.Sprintf("%d.%d.%d", id.Replica, id.Seq, id.Index)
}

// decodeID parses the dotted identifier form.
func decodeID(raw string) (crdt.ID, error) {

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return crdt.ID{}, errors.Errorf("invalid position identifier '%s'", raw)
	}

	replica, err := strconv.Atoi(parts[0])
	if err != nil {
		return crdt.ID{}, errors.Wrapf(err, "invalid replica in identifier '%s'", raw)
	}

	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return crdt.ID{}, errors.Wrapf(err, "invalid counter in identifier '%s'", raw)
	}

	index, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return crdt.ID{}, errors.Wrapf(err, "invalid batch index in identifier '%s'", raw)
	}

	return crdt.ID{Replica: replica, Seq: seq, Index: uint16(index)}, nil
}

// checkInstanceName rejects instance names that would collide with the
// framing characters.
func checkInstanceName(name string) error {

	if name == "" {
		return errors.New("operation carries no instance name")
	}

	if strings.ContainsAny(name, ":|\n") {
		return errors.Errorf("instance name '%s' contains framing characters", name)
	}

	return nil
}
