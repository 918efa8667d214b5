package eventsource

import (
	"encoding/hex"
	"testing"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/stretchr/testify/require"
)

func TestDecodeNewBlock(t *testing.T) {
	ev, ok := decode(RawEvent{Height: 42, Kind: "new_block"})
	require.True(t, ok)
	require.Equal(t, chain.EventTypeNewBlock, ev.Event.Type)
	require.Equal(t, uint64(42), ev.Height.RevisionHeight)
}

func TestDecodeSendPacketWithTimeoutHeight(t *testing.T) {
	attrs := packetAttrs("9")
	attrs["packet_timeout_height"] = "1-500"

	ev, ok := decode(RawEvent{Height: 1, Kind: "send_packet", Attributes: attrs})
	require.True(t, ok)
	require.Equal(t, chain.EventTypeSendPacket, ev.Event.Type)
	require.Equal(t, chain.Sequence(9), ev.Event.Packet.Sequence)
	require.Equal(t, chain.Height{RevisionNumber: 1, RevisionHeight: 500}, ev.Event.Packet.TimeoutHeight)
}

func TestDecodeWriteAcknowledgementDecodesHexAck(t *testing.T) {
	attrs := packetAttrs("1")
	attrs["packet_ack"] = hex.EncodeToString([]byte("ack-bytes"))

	ev, ok := decode(RawEvent{Height: 1, Kind: "write_acknowledgement", Attributes: attrs})
	require.True(t, ok)
	require.Equal(t, []byte("ack-bytes"), ev.Event.Acknowledgement)
}

func TestDecodeWriteAcknowledgementMissingAckDropped(t *testing.T) {
	_, ok := decode(RawEvent{Height: 1, Kind: "write_acknowledgement", Attributes: packetAttrs("1")})
	require.False(t, ok)
}

func TestDecodeUnknownKindDropped(t *testing.T) {
	_, ok := decode(RawEvent{Height: 1, Kind: "some_other_module_event", Attributes: map[string]string{"x": "y"}})
	require.False(t, ok)
}

func TestDecodeMissingRequiredAttributeDropped(t *testing.T) {
	_, ok := decode(RawEvent{Height: 1, Kind: "acknowledge_packet", Attributes: map[string]string{
		"packet_src_port": "transfer",
	}})
	require.False(t, ok)
}
