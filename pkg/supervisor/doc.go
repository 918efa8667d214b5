/*
Package supervisor drives one direction of relaying between a source and
destination chain (§4.G): it subscribes to both chains' event buses, spawns
a pkg/relayer.Task per observed SendPacket, and demuxes WriteAcknowledgement
events discovered on the destination's bus to whichever task is waiting on
them in S4.

	source bus ──SendPacket──► spawn Task, track by PacketKey
	                                │
	dest bus ──WriteAcknowledgement──► demux by PacketKey
	                                │           │
	                          task known?   not yet known
	                                │           │
	                      NotifyWriteAcknowledgement   stash in a bounded
	                                │           LRU cache; a task started
	                                ▼           later consults it first
	                         Task.Run (own goroutine)

Bidirectional relaying between two chains runs as two Supervisors, one per
relay.Context orientation — a Relay (§4.E) is directional by construction,
so "both directions" composes at this layer rather than inside one
Supervisor.

On an error envelope from either bus the supervisor performs packet
clearing: every packet it currently has an in-flight task for is
re-entered into the state machine from S0, since §4.A's chain abstraction
has no bulk "list unrelayed commitments" query to re-scan history against
— clearing only the already-tracked set is the scope this module's chain
interfaces support.

Grounded on pkg/reconciler/reconciler.go's run loop shape and
pkg/manager/manager.go's subsystem wiring; the ack demux cache is grounded
via other_examples/manifests/lyfeloopinc-awm-relayer's use of
hashicorp/golang-lru/v2.
*/
package supervisor
