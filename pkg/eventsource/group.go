package eventsource

import (
	"sort"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/google/uuid"
)

// grouper implements spec.md's group_while operator: consecutive decoded
// events sharing a height are accumulated together, and a change of height
// flushes the prior group as a batch. It holds exactly one partially
// accumulated group at a time, mirroring the original Rust source's
// fold-until-height-changes shape in event/source/websocket.rs.
type grouper struct {
	chainID chain.ID
	height  chain.Height
	events  []chain.EventWithHeight
	open    bool
}

func newGrouper(chainID chain.ID) *grouper {
	return &grouper{chainID: chainID}
}

// add folds ev into the open group. If ev belongs to a new height, the
// previously open group is flushed into a batch (non-nil) before ev starts
// the next one.
func (g *grouper) add(ev chain.EventWithHeight) *chain.EventBatch {
	if !g.open {
		g.height = ev.Height
		g.events = append(g.events[:0], ev)
		g.open = true
		return nil
	}
	if ev.Height == g.height {
		g.events = append(g.events, ev)
		return nil
	}

	flushed := g.build()
	g.height = ev.Height
	g.events = append(g.events[:0:0], ev)
	g.open = true
	return flushed
}

// flush emits the currently open group, if any, and resets the grouper to
// empty. Source.Run calls it once, on exit, so the last accumulated events
// are not lost; across a reconnect the open group is kept and is flushed by
// the next event at a later height.
func (g *grouper) flush() *chain.EventBatch {
	if !g.open {
		return nil
	}
	return g.build()
}

func (g *grouper) build() *chain.EventBatch {
	events := orderBatch(g.events)
	g.events = nil
	g.open = false
	return &chain.EventBatch{
		ChainID:    g.chainID,
		Height:     g.height,
		TrackingID: uuid.NewString(),
		Events:     events,
	}
}

// orderBatch returns a stable-sorted copy of events with every NewBlock
// event moved to the front, preserving relative order within each of the
// two partitions (§3 invariant: "a batch's NewBlock event, if present,
// always sorts first").
func orderBatch(events []chain.EventWithHeight) []chain.EventWithHeight {
	out := make([]chain.EventWithHeight, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		iBlock := out[i].Event.Type == chain.EventTypeNewBlock
		jBlock := out[j].Event.Type == chain.EventTypeNewBlock
		return iBlock && !jBlock
	})
	return out
}
