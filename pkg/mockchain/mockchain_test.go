package mockchain

import (
	"context"
	"testing"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/stretchr/testify/require"
)

func TestDefaultRecvPacketProducesWriteAck(t *testing.T) {
	c := New("chain-a")
	packet := chain.Packet{SrcPort: "transfer", SrcChannel: "channel-0", Sequence: 1}

	events, err := c.SendMessages(context.Background(), []chain.Message{
		chain.RecvPacketMessage{Packet: packet, ProofHeight: chain.Height{RevisionHeight: 10}},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	ack, ok := c.TryExtractWriteAcknowledgement(events[0])
	require.True(t, ok)
	require.Equal(t, packet, ack.Packet)
}

func TestScriptedIsPacketReceived(t *testing.T) {
	c := New("chain-a")
	key := chain.PacketKey{SrcPort: "transfer", SrcChannel: "channel-0", Sequence: 5}
	c.SetPacketReceived(key, true)

	received, err := c.IsPacketReceived(context.Background(), key.SrcPort, key.SrcChannel, key.Sequence)
	require.NoError(t, err)
	require.True(t, received)

	received, err = c.IsPacketReceived(context.Background(), "other", "channel-1", 99)
	require.NoError(t, err)
	require.False(t, received)
}

func TestOnSendMessagesOverride(t *testing.T) {
	c := New("chain-a")
	c.OnSendMessages(func(msgs []chain.Message) ([][]chain.Event, error) {
		return nil, chain.ErrTransient
	})

	_, err := c.SendMessages(context.Background(), []chain.Message{chain.UpdateClientMessage{}})
	require.ErrorIs(t, err, chain.ErrTransient)
	require.Len(t, c.SentMessages(), 1)
}
