package chain

import (
	"fmt"
	"time"
)

// ID identifies a chain. It is a stable string, never reused across two
// different chains in the same relay process.
type ID string

// PortID, ChannelID, ClientID and ConnectionID are the IBC identifier
// families. They are distinct types (not plain strings) so a port cannot be
// passed where a channel is expected — the same discipline the teacher
// applies to its own domain identifiers (types.Node.ID vs types.Service.ID
// are both strings but never interchanged by accident because callers
// thread named fields, not bare strings).
type (
	PortID       string
	ChannelID    string
	ClientID     string
	ConnectionID string
)

// Sequence is an IBC packet sequence number.
type Sequence uint64

// Height is a chain's totally ordered notion of block height. RevisionNumber
// supports IBC's "revision" scheme for chains that reset their height on
// upgrade; relayers that never see a revision bump can leave it zero.
type Height struct {
	RevisionNumber uint64
	RevisionHeight uint64
}

// ZeroHeight is the unset sentinel for Height — used to represent "no
// timeout height configured" per spec.md's rule that exactly one of
// timeout_height/timeout_timestamp may be unset.
var ZeroHeight = Height{}

// IsZero reports whether h is the unset sentinel.
func (h Height) IsZero() bool {
	return h == ZeroHeight
}

// Compare returns -1, 0 or 1 as h is less than, equal to, or greater than o,
// comparing revision number first and then revision height.
func (h Height) Compare(o Height) int {
	switch {
	case h.RevisionNumber != o.RevisionNumber:
		if h.RevisionNumber < o.RevisionNumber {
			return -1
		}
		return 1
	case h.RevisionHeight < o.RevisionHeight:
		return -1
	case h.RevisionHeight > o.RevisionHeight:
		return 1
	default:
		return 0
	}
}

// Before reports whether h orders strictly before o.
func (h Height) Before(o Height) bool { return h.Compare(o) < 0 }

// After reports whether h orders strictly after o.
func (h Height) After(o Height) bool { return h.Compare(o) > 0 }

// Increment returns the proof height for a commitment observed at h: IBC's
// "commitment_height + 1" contract (§4.F) is not a tunable, so this is the
// only place that arithmetic happens.
func (h Height) Increment() Height {
	return Height{RevisionNumber: h.RevisionNumber, RevisionHeight: h.RevisionHeight + 1}
}

func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// Timestamp is a chain's notion of wall-clock time at a given height.
type Timestamp struct {
	time.Time
}

// ZeroTimestamp is the unset sentinel for Timestamp.
var ZeroTimestamp = Timestamp{}

// IsZero reports whether t is the unset sentinel.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// Before reports whether t orders strictly before o.
func (t Timestamp) Before(o Timestamp) bool { return t.Time.Before(o.Time) }

// TimestampFromUnixNano builds a Timestamp from an IBC wire-format
// nanosecond Unix timestamp.
func TimestampFromUnixNano(ns int64) Timestamp {
	return Timestamp{Time: time.Unix(0, ns).UTC()}
}

// ChainStatus pairs a chain's current height and timestamp, the result of
// QueryChainStatus.
type ChainStatus struct {
	Height    Height
	Timestamp Timestamp
}

// ConsensusState is a chain's light-client view of a counterparty at a
// given height. The verification math over it is out of scope (§1
// Non-goals); the relayer only ever passes it through to a client-update
// message builder.
type ConsensusState struct {
	Height    Height
	Timestamp Timestamp
	Root      []byte
}

// PacketKey identifies a packet for relay purposes, per spec.md §3: the
// triple (src_channel, src_port, sequence).
type PacketKey struct {
	SrcChannel ChannelID
	SrcPort    PortID
	Sequence   Sequence
}

func (k PacketKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.SrcPort, k.SrcChannel, k.Sequence)
}

// Packet is an immutable IBC packet. The source chain owns the commitment;
// the destination chain owns the receipt and, optionally, a written
// acknowledgement.
type Packet struct {
	SrcPort          PortID
	SrcChannel       ChannelID
	DstPort          PortID
	DstChannel       ChannelID
	Sequence         Sequence
	Data             []byte
	TimeoutHeight    Height    // zero value means unset
	TimeoutTimestamp Timestamp // zero value means unset
}

// Key returns the packet's relay identity.
func (p Packet) Key() PacketKey {
	return PacketKey{SrcChannel: p.SrcChannel, SrcPort: p.SrcPort, Sequence: p.Sequence}
}

// HasTimeoutHeight reports whether the packet carries a timeout height.
func (p Packet) HasTimeoutHeight() bool { return !p.TimeoutHeight.IsZero() }

// HasTimeoutTimestamp reports whether the packet carries a timeout
// timestamp.
func (p Packet) HasTimeoutTimestamp() bool { return !p.TimeoutTimestamp.IsZero() }

// EventType enumerates the IBC-relevant event kinds the relayer cares
// about. Any ABCI event that does not decode into one of these is dropped
// at the event-source boundary (§4.B, step 1) and never reaches an
// EventBatch.
type EventType string

const (
	EventTypeNewBlock             EventType = "NewBlock"
	EventTypeSendPacket           EventType = "SendPacket"
	EventTypeWriteAcknowledgement EventType = "WriteAcknowledgement"
	EventTypeAcknowledgePacket    EventType = "AcknowledgePacket"
	EventTypeTimeoutPacket        EventType = "TimeoutPacket"
)

// Event is a single decoded IBC event. Packet is the zero Packet for
// NewBlock; Acknowledgement is only set for WriteAcknowledgement.
type Event struct {
	Type            EventType
	Packet          Packet
	Acknowledgement []byte
}

// EventWithHeight pairs a decoded event with the height it was observed at.
type EventWithHeight struct {
	Event  Event
	Height Height
}

// EventBatch is a height-homogeneous, ordered slice of events published by
// an event source. Invariant (§3, §8.1): ChainID is the source's own id,
// Events is non-empty, and every element's height equals Height.
type EventBatch struct {
	ChainID    ID
	Height     Height
	TrackingID string
	Events     []EventWithHeight
}
