package chain

import (
	"errors"
	"fmt"
	"regexp"
)

// ChannelOrder is a channel's delivery ordering guarantee.
type ChannelOrder string

const (
	ChannelOrderUnordered ChannelOrder = "ORDER_UNORDERED"
	ChannelOrderOrdered   ChannelOrder = "ORDER_ORDERED"
)

// connectionIDPattern matches a well-formed connection identifier, e.g.
// "connection-0". A connection_hops entry that does not match this pattern
// is a "non-parsable" entry per §6/§8.5.
var connectionIDPattern = regexp.MustCompile(`^connection-[0-9]+$`)

// UpgradeFields is the decoded, validated form of an IBC channel upgrade's
// proposed fields (§6): an ordering, a path of connection hops, and a
// version string. Every entry in the wire form's connection_hops must parse
// as a ConnectionID for UpgradeFields to decode successfully.
type UpgradeFields struct {
	Ordering       ChannelOrder
	ConnectionHops []ConnectionID
	Version        string
}

// RawUpgradeFields is the wire representation: connection_hops is a bare
// string slice, exactly as it arrives off the chain, before each entry has
// been validated as a ConnectionID.
type RawUpgradeFields struct {
	Ordering       ChannelOrder
	ConnectionHops []string
	Version        string
}

// DecodeUpgradeFields validates every entry of raw.ConnectionHops and
// returns the typed UpgradeFields. If any entry fails to parse, decoding
// fails with an aggregated error listing every bad entry (§6, §8.5) — not
// just the first one, so an operator can fix every hop in one pass.
func DecodeUpgradeFields(raw RawUpgradeFields) (UpgradeFields, error) {
	hops := make([]ConnectionID, len(raw.ConnectionHops))
	var errs []error
	for i, hop := range raw.ConnectionHops {
		if !connectionIDPattern.MatchString(hop) {
			errs = append(errs, fmt.Errorf("connection_hops[%d]: %q is not a valid connection id", i, hop))
			continue
		}
		hops[i] = ConnectionID(hop)
	}
	if len(errs) > 0 {
		return UpgradeFields{}, fmt.Errorf("%w: %w", ErrDecode, errors.Join(errs...))
	}
	return UpgradeFields{
		Ordering:       raw.Ordering,
		ConnectionHops: hops,
		Version:        raw.Version,
	}, nil
}

// Encode renders u back to its wire form. Encode/DecodeUpgradeFields
// round-trip for any valid UpgradeFields (§8.5).
func (u UpgradeFields) Encode() RawUpgradeFields {
	hops := make([]string, len(u.ConnectionHops))
	for i, hop := range u.ConnectionHops {
		hops[i] = string(hop)
	}
	return RawUpgradeFields{
		Ordering:       u.Ordering,
		ConnectionHops: hops,
		Version:        u.Version,
	}
}
