package chain

import "context"

// MessageSender submits a batch of messages to a chain atomically: either
// every message in ms succeeds together, or the call fails and none of them
// took effect. The returned outer slice has the same length and order as
// ms; events[i] holds every event message i emitted, in submission order
// (§4.A, §8.3).
type MessageSender interface {
	SendMessages(ctx context.Context, msgs []Message) ([][]Event, error)
}

// StatusQuerier answers questions about a chain's live tip and its view of
// a counterparty's consensus state. It never looks at history beyond the
// live tip (§1 Non-goals: no chain indexing, no historical replay).
type StatusQuerier interface {
	QueryChainStatus(ctx context.Context) (ChainStatus, error)
	QueryConsensusState(ctx context.Context, clientID ClientID, height Height) (ConsensusState, error)
}

// PacketQuerier answers whether a packet has already been received on its
// destination channel — the S1 "has-been-received?" check.
type PacketQuerier interface {
	IsPacketReceived(ctx context.Context, portID PortID, channelID ChannelID, seq Sequence) (bool, error)
}

// EventCodec groups the pure, side-effect-free extractors a chain provides
// over its own Event and Message families. None of these block or touch the
// network; they are plain functions attached to the chain only because they
// need chain-specific knowledge of wire formats.
type EventCodec interface {
	// TryExtractWriteAcknowledgement returns the WriteAcknowledgement event
	// within events, if any. Absent for unordered-async-ack channels.
	TryExtractWriteAcknowledgement(events []Event) (Event, bool)

	// EstimateMessageLen estimates a message's serialized size for the
	// batcher's size bound.
	EstimateMessageLen(msg Message) int

	// EncodeRawMessage renders msg as the chain's wire bytes, signed by
	// signer. Key management and the signature itself are out of scope
	// (§1); this only serializes the unsigned body plus the signer
	// identity the concrete chain needs to route the message.
	EncodeRawMessage(msg Message, signer string) ([]byte, error)
}

// Chain is the uniform contract the relay core programs against. A
// concrete chain (a real RPC/gRPC client, or a test double) implements all
// four capability interfaces; nothing else in this module is permitted to
// couple to chain-specific transport (§6).
type Chain interface {
	ID() ID
	MessageSender
	StatusQuerier
	PacketQuerier
	EventCodec
}
