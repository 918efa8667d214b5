package relay

import (
	"github.com/cuemby/ibc-relayer/pkg/batcher"
	"github.com/cuemby/ibc-relayer/pkg/chain"
)

// Target picks one side of a Context to address: the chain a message is
// being submitted to. The other side is its "counterparty" (§4.E).
type Target int

const (
	SourceTarget Target = iota
	DestinationTarget
)

func (t Target) String() string {
	if t == SourceTarget {
		return "source"
	}
	return "destination"
}

// Chain returns the chain this Target submits messages to.
func (t Target) Chain(rc *Context) chain.Chain {
	if t == SourceTarget {
		return rc.Source
	}
	return rc.Destination
}

// CounterpartyChain returns the other chain in rc.
func (t Target) CounterpartyChain(rc *Context) chain.Chain {
	if t == SourceTarget {
		return rc.Destination
	}
	return rc.Source
}

// ClientID returns the client id registered on this Target's chain, which
// tracks the counterparty's consensus state.
func (t Target) ClientID(rc *Context) chain.ClientID {
	if t == SourceTarget {
		return rc.ClientOnSource
	}
	return rc.ClientOnDestination
}

// CounterpartyClientID returns the client id registered on the
// counterparty's chain, which tracks this Target's consensus state.
func (t Target) CounterpartyClientID(rc *Context) chain.ClientID {
	if t == SourceTarget {
		return rc.ClientOnDestination
	}
	return rc.ClientOnSource
}

// Batcher returns the batcher worker that serializes submissions to this
// Target's chain.
func (t Target) Batcher(rc *Context) *batcher.Worker {
	if t == SourceTarget {
		return rc.SourceBatcher
	}
	return rc.DestinationBatcher
}

// Counterparty returns the other Target.
func (t Target) Counterparty() Target {
	if t == SourceTarget {
		return DestinationTarget
	}
	return SourceTarget
}

// OwnPortChannel returns p's port and channel id on this Target's own
// chain (§4.E "packet field accessors... derived generically").
func (t Target) OwnPortChannel(p chain.Packet) (chain.PortID, chain.ChannelID) {
	if t == SourceTarget {
		return p.SrcPort, p.SrcChannel
	}
	return p.DstPort, p.DstChannel
}

// CounterpartyPortChannel returns p's port and channel id on the
// counterparty's chain.
func (t Target) CounterpartyPortChannel(p chain.Packet) (chain.PortID, chain.ChannelID) {
	if t == SourceTarget {
		return p.DstPort, p.DstChannel
	}
	return p.SrcPort, p.SrcChannel
}
