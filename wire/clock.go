package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Bathtor/flotsync/version"
	"github.com/pkg/errors"
)

// Functions

// EncodeClock marshals a causal clock into its most compact wire variant:
// 's:members;version' when all members agree, 'o:members;base;pos;ver'
// when exactly one member diverges from a common baseline, and
// 'f:c1,c2,...' otherwise.
func EncodeClock(clock *version.VersionVector) string {

	clock = clock.Compact()

	switch clock.Encoding() {

	case version.EncodingSynced:
		return fmt.Sprintf("s:%d;%d", clock.NumMembers(), clock.MaxVersion())

	case version.EncodingOverride:
		return fmt.Sprintf("o:%d;%d;%d;%d", clock.NumMembers(), clock.GroupVersion(), clock.OverridePosition(), clock.OverrideVersion())

	default:

		counters := make([]string, clock.NumMembers())
		for i, c := range clock.Counters() {
			counters[i] = strconv.FormatUint(c, 10)
		}

		return fmt.Sprintf("f:%s", strings.Join(counters, ","))
	}
}

// DecodeClock parses any of the three clock variants back into a causal
// clock value.
func DecodeClock(raw string) (*version.VersionVector, error) {

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return nil, errors.Errorf("invalid clock field '%s'", raw)
	}

	switch parts[0] {

	case "s":

		fields, err := parseUints(parts[1], ";", 2)
		if err != nil {
			return nil, errors.Wrap(err, "invalid synced clock")
		}

		return version.NewSynced(int(fields[0]), fields[1])

	case "o":

		fields, err := parseUints(parts[1], ";", 4)
		if err != nil {
			return nil, errors.Wrap(err, "invalid override clock")
		}

		return version.NewOverride(int(fields[0]), fields[1], int(fields[2]), fields[3])

	case "f":

		fields, err := parseUints(parts[1], ",", -1)
		if err != nil {
			return nil, errors.Wrap(err, "invalid full clock")
		}

		return version.NewFull(fields)

	default:
		return nil, errors.Errorf("unknown clock variant '%s'", parts[0])
	}
}

// parseUints splits a field list on the supplied separator and parses
// every element as an unsigned counter. A count below zero accepts any
// number of fields.
func parseUints(raw string, sep string, count int) ([]uint64, error) {

	fields := strings.Split(raw, sep)

	if (count >= 0) && (len(fields) != count) {
		return nil, errors.Errorf("expected %d fields but found %d in '%s'", count, len(fields), raw)
	}

	out := make([]uint64, len(fields))
	for i, f := range fields {

		num, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d of '%s' is not a counter", i, raw)
		}

		out[i] = num
	}

	return out, nil
}
