/*
Package batcher coalesces concurrent per-target message submissions into
chain transactions under a size, count and delay bound.

	Submit(msgs) ──► submit chan ──► Worker.run (single goroutine)
	                                      │
	                                      │ append to pending buffer,
	                                      │ flush eagerly when a bound
	                                      │ would be exceeded, or on
	                                      │ the delay timer otherwise
	                                      ▼
	                                 sender.SendMessages(ctx, batch)
	                                      │
	                                      ▼
	                     partition [][]Event back to each unit's sink,
	                     in the order units were dequeued

One Worker serves one (chain, direction) pair, matching the relay
pipeline's per-target batcher handles (§4.E). Every producer's messages
within a single Submit call always land in the same transaction — they are
never split across a flush boundary.

Grounded on the teacher's pkg/scheduler.Scheduler (single goroutine, ticker
+ channel select, no lock held across a blocking call) and
pkg/manager/fsm.go's single-writer apply loop.
*/
package batcher
