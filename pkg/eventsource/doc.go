/*
Package eventsource maintains a live subscription to a chain's Tendermint-
style RPC websocket and publishes per-height chain.EventBatch values onto an
eventbus.Bus until told to shut down (spec.md §4.B).

	┌───────────────────────── EVENT SOURCE ──────────────────────────┐
	│                                                                    │
	│   wsClient.Subscribe(NewBlock, Tx) ──► raw RPC events (merged)   │
	│                     │                                             │
	│                     ▼                                             │
	│              decode (drop junk)                                  │
	│                     │                                             │
	│                     ▼                                             │
	│              group_while(height)                                 │
	│                     │                                             │
	│                     ▼                                             │
	│        stable partition: NewBlock first, rest in order           │
	│                     │                                             │
	│                     ▼                                             │
	│              mint tracking_id, emit EventBatch                   │
	│                     │                                             │
	│                     ▼                                             │
	│                 eventbus.Bus.Publish                              │
	│                                                                    │
	│   run loop also selects: driver error (→ reconnect) and the      │
	│   Shutdown signal; Subscribe registers directly on the bus.     │
	└────────────────────────────────────────────────────────────────┘

On a fatal driver error the source enters reconnect: Fibonacci backoff
starting at 1s, capped per-attempt at 60s, capped in total at 10 minutes.
Adapted from the teacher's pkg/reconciler run-loop shape (ticker-or-channel
select, single goroutine owns all mutable state) generalized from a fixed
polling tick to a websocket stream with its own failure and backoff
handling, and grounded on the original Rust source's
event/source/websocket.rs for the reconnect/command-ordering contract.
*/
package eventsource
