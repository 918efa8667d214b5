package relay

import (
	"fmt"

	"github.com/cuemby/ibc-relayer/pkg/batcher"
	"github.com/cuemby/ibc-relayer/pkg/chain"
)

// Context pairs a source and destination chain with the client each one
// uses to track the other, plus the batcher worker that serializes
// submissions to each side (§3 "Relay context", §4.E).
type Context struct {
	Source      chain.Chain
	Destination chain.Chain

	// ClientOnSource is the client id registered on Source that tracks
	// Destination's consensus state.
	ClientOnSource chain.ClientID
	// ClientOnDestination is the client id registered on Destination that
	// tracks Source's consensus state.
	ClientOnDestination chain.ClientID

	SourceBatcher      *batcher.Worker
	DestinationBatcher *batcher.Worker
}

// NewContext builds a Context. It is an error for the two chains to share
// an id (§3 invariant: "the two chain ids differ").
func NewContext(source, destination chain.Chain, clientOnSource, clientOnDestination chain.ClientID, sourceBatcher, destinationBatcher *batcher.Worker) (*Context, error) {
	if source.ID() == destination.ID() {
		return nil, fmt.Errorf("relay: source and destination chain ids must differ, both are %q", source.ID())
	}
	return &Context{
		Source:              source,
		Destination:         destination,
		ClientOnSource:      clientOnSource,
		ClientOnDestination: clientOnDestination,
		SourceBatcher:       sourceBatcher,
		DestinationBatcher:  destinationBatcher,
	}, nil
}
