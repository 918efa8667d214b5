/*
Package eventbus is a single-writer, many-reader broadcaster of event
batches. It is the Go rendering of spec.md §4.C: subscribers register
by calling Bus.Subscribe, each gets its own bounded queue, and a slow
subscriber drops its oldest undelivered batch rather than stalling the
publisher.

It is adapted from the teacher's pkg/events package: the same
subscriber-map-behind-a-mutex shape and the same single run-loop-owns-state
discipline, generalized from "fire and forget, drop on full" to the
stricter oldest-drop policy §4.C requires (a full subscriber queue evicts
its oldest entry to make room, rather than silently discarding the newest
arrival), since a relayer's supervisor cares about recency more than
completeness when it falls behind — an old batch it never manages to
process is less useful than the current chain tip.

	┌─────────────────────── EVENT BUS ───────────────────────────┐
	│                                                                │
	│  Publish(envelope) ──────────────┐                           │
	│                                   ▼                           │
	│                          ┌─────────────────┐                 │
	│                          │   broadcast     │                 │
	│                          │  (RLock subs)   │                 │
	│                          └────────┬────────┘                 │
	│                                   │                           │
	│              ┌────────────────────┼────────────────────┐     │
	│              ▼                    ▼                    ▼     │
	│        subscriber 1         subscriber 2          subscriber N│
	│        bounded queue        bounded queue         bounded queue│
	│        (oldest-drop)        (oldest-drop)         (oldest-drop)│
	└────────────────────────────────────────────────────────────┘
*/
package eventbus
