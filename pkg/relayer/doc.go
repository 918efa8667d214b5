/*
Package relayer implements the per-packet state machine (§4.F): the core
of the system. One Task is spawned per observed SendPacket and drives that
single packet from commitment to a terminal outcome.

	S0 filter ──false──► done (Filtered)
	  │ true
	  ▼
	S1 has the destination already received p?
	  │ yes                         │ no
	  ▼                             ▼
	  (join ack wait)         timeout already reached? ──yes──► Sx
	                                │ no
	                                ▼
	                          S2 update destination client (h_s+1)
	                                │
	                          timeout reached? ──yes──► Sx
	                                │ no
	                                ▼
	                          S3 submit RecvPacket (proof h_s+1)
	                                │ inspect events for WriteAcknowledgement
	                                ▼
	                          S4 await ack (inline or externally notified)
	                                │
	                                ├─ ack wait itself times out ──────► Sx
	                                ▼
	                          update source client (h_d+1), submit AckPacket
	                                │
	                                ▼
	                             done (Acked)

	Sx: update source client to the destination's current status height+1,
	    submit TimeoutPacket, done (TimedOut).

A Task never holds a lock across a suspension point: QueryChainStatus,
QueryConsensusState, IsPacketReceived and batcher submissions are all
potential await points, and the task's only mutable state between them is
its own stack-local state and the single-slot ackCh a supervisor feeds
WriteAcknowledgement events discovered on the destination's event bus.

Transient errors (chain.IsTransient) retry under the same Fibonacci policy
as the event source's reconnect loop (pkg/backoff, shared rather than
duplicated). Permanent errors terminate only the one task; other in-flight
relay tasks are unaffected (§4.F "Failure handling").

Grounded on relayer-framework/src/base/relay/traits/packet_relayers (the
S0-S4/Sx split mirrors receive_packet.rs/ack_packet.rs/timeout_packet.rs as
distinct relayer traits, collapsed here into one state machine per spec.md's
"the core covered by this specification" framing) and on the teacher's
pkg/reconciler/reconciler.go for the retry-with-backoff shape around a
per-entity reconcile step.
*/
package relayer
