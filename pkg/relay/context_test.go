package relay

import (
	"testing"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/mockchain"
	"github.com/stretchr/testify/require"
)

func TestNewContextRejectsSameChainID(t *testing.T) {
	a := mockchain.New("chain-a")
	b := mockchain.New("chain-a")

	_, err := NewContext(a, b, "client-on-a", "client-on-b", nil, nil)
	require.Error(t, err)
}

func TestTargetAccessors(t *testing.T) {
	src := mockchain.New("chain-src")
	dst := mockchain.New("chain-dst")

	rc, err := NewContext(src, dst, "client-on-src", "client-on-dst", nil, nil)
	require.NoError(t, err)

	require.Equal(t, chain.ID("chain-dst"), DestinationTarget.Chain(rc).ID())
	require.Equal(t, chain.ID("chain-src"), DestinationTarget.CounterpartyChain(rc).ID())
	require.Equal(t, chain.ClientID("client-on-dst"), DestinationTarget.ClientID(rc))
	require.Equal(t, chain.ClientID("client-on-src"), DestinationTarget.CounterpartyClientID(rc))
	require.Equal(t, SourceTarget, DestinationTarget.Counterparty())

	packet := chain.Packet{SrcPort: "transfer", SrcChannel: "channel-0", DstPort: "transfer", DstChannel: "channel-1"}
	port, ch := DestinationTarget.OwnPortChannel(packet)
	require.Equal(t, chain.PortID("transfer"), port)
	require.Equal(t, chain.ChannelID("channel-1"), ch)

	port, ch = SourceTarget.OwnPortChannel(packet)
	require.Equal(t, chain.ChannelID("channel-0"), ch)
	_ = port
}
