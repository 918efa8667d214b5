// Package mockchain is an in-memory chain.Chain double for tests of
// pkg/relayer and pkg/supervisor, in the spirit of the teacher's
// test/framework fakes (a small struct with setter methods and scriptable
// behavior, no real transport).
package mockchain

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/cuemby/ibc-relayer/pkg/chain"
)

// SendMessagesFunc lets a test script exactly what a SendMessages call
// returns for a given batch of messages.
type SendMessagesFunc func(msgs []chain.Message) ([][]chain.Event, error)

// Chain is a goroutine-safe fake chain.Chain implementation.
type Chain struct {
	mu sync.Mutex

	id     chain.ID
	status chain.ChainStatus

	received        map[chain.PacketKey]bool
	consensusStates map[chain.ClientID]chain.ConsensusState

	onSendMessages SendMessagesFunc
	sent           []chain.Message
}

// New creates a mock chain with id and an all-zero initial status.
func New(id chain.ID) *Chain {
	return &Chain{
		id:              id,
		received:        make(map[chain.PacketKey]bool),
		consensusStates: make(map[chain.ClientID]chain.ConsensusState),
	}
}

func (c *Chain) ID() chain.ID { return c.id }

// SetStatus sets the value QueryChainStatus returns.
func (c *Chain) SetStatus(status chain.ChainStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// SetPacketReceived scripts IsPacketReceived for a given packet key.
func (c *Chain) SetPacketReceived(key chain.PacketKey, received bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received[key] = received
}

// SetConsensusState scripts QueryConsensusState for a given client id.
func (c *Chain) SetConsensusState(clientID chain.ClientID, cs chain.ConsensusState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consensusStates[clientID] = cs
}

// OnSendMessages installs a scripted SendMessages response. When unset,
// SendMessages synthesizes a plausible default per message type: a
// WriteAcknowledgement event for RecvPacketMessage, no events otherwise.
func (c *Chain) OnSendMessages(fn SendMessagesFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSendMessages = fn
}

// SentMessages returns every message ever passed to SendMessages, in
// submission order, for test assertions.
func (c *Chain) SentMessages() []chain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chain.Message, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *Chain) SendMessages(_ context.Context, msgs []chain.Message) ([][]chain.Event, error) {
	c.mu.Lock()
	c.sent = append(c.sent, msgs...)
	hook := c.onSendMessages
	c.mu.Unlock()

	if hook != nil {
		return hook(msgs)
	}

	out := make([][]chain.Event, len(msgs))
	for i, m := range msgs {
		out[i] = defaultEventsFor(m)
	}
	return out, nil
}

func defaultEventsFor(m chain.Message) []chain.Event {
	switch msg := m.(type) {
	case chain.RecvPacketMessage:
		return []chain.Event{{
			Type:            chain.EventTypeWriteAcknowledgement,
			Packet:          msg.Packet,
			Acknowledgement: []byte("default-ack"),
		}}
	default:
		return nil
	}
}

func (c *Chain) QueryChainStatus(_ context.Context) (chain.ChainStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, nil
}

func (c *Chain) QueryConsensusState(_ context.Context, clientID chain.ClientID, _ chain.Height) (chain.ConsensusState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consensusStates[clientID], nil
}

func (c *Chain) IsPacketReceived(_ context.Context, portID chain.PortID, channelID chain.ChannelID, seq chain.Sequence) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := chain.PacketKey{SrcPort: portID, SrcChannel: channelID, Sequence: seq}
	return c.received[key], nil
}

func (c *Chain) TryExtractWriteAcknowledgement(events []chain.Event) (chain.Event, bool) {
	for _, ev := range events {
		if ev.Type == chain.EventTypeWriteAcknowledgement {
			return ev, true
		}
	}
	return chain.Event{}, false
}

func (c *Chain) EstimateMessageLen(msg chain.Message) int {
	switch m := msg.(type) {
	case chain.RecvPacketMessage:
		return len(m.Packet.Data) + len(m.Proof) + 64
	case chain.AckPacketMessage:
		return len(m.Acknowledgement) + len(m.Proof) + 64
	case chain.TimeoutPacketMessage:
		return len(m.Proof) + 64
	default:
		return 64
	}
}

func (c *Chain) EncodeRawMessage(msg chain.Message, signer string) ([]byte, error) {
	return []byte(hex.EncodeToString([]byte(signer + ":" + msg.MsgType()))), nil
}
