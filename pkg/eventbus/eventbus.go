package eventbus

import (
	"sync"

	"github.com/cuemby/ibc-relayer/pkg/chain"
)

// defaultQueueDepth is the per-subscriber bound used when NewBus is given a
// non-positive queueDepth.
const defaultQueueDepth = 64

// Envelope is the Go rendering of Arc<Result<EventBatch>>: exactly one of
// Batch or Err is set, never both, and error payloads ride the same channel
// as success payloads, in order (§4.C).
type Envelope struct {
	Batch *chain.EventBatch
	Err   error
}

// Subscription is a read-only handle a subscriber drains. It is closed when
// the bus is stopped.
type Subscription <-chan *Envelope

// subscriber owns a single bounded queue; Bus is the only writer, the
// holder of the Subscription is the only reader. Oldest-drop is
// implemented at the point of send: if the queue is full, its oldest
// element is discarded first so the newest batch always gets in.
type subscriber struct {
	ch chan *Envelope
}

// Bus is a single-writer, many-reader broadcaster of EventBatch envelopes.
// It has no notion of topics — every subscriber receives every envelope
// published after it registered, matching spec.md's "subscribe() ->
// Subscription" contract.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	queueDepth  int
	stopped     bool
}

// NewBus creates a bus whose subscribers each get a bounded queue of
// queueDepth envelopes. A non-positive queueDepth falls back to the
// default.
func NewBus(queueDepth int) *Bus {
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}
	return &Bus{
		subscribers: make(map[*subscriber]struct{}),
		queueDepth:  queueDepth,
	}
}

// Subscribe registers a new subscriber and returns its receive handle. The
// subscriber sees every envelope published after this call returns, never
// anything published before it.
func (b *Bus) Subscribe() Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan *Envelope, b.queueDepth)}
	if !b.stopped {
		b.subscribers[sub] = struct{}{}
	} else {
		close(sub.ch)
	}
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel. Passing a
// Subscription not currently registered (already removed, or never
// returned by this bus) is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subscribers {
		if s.ch == (chan *Envelope)(sub) {
			delete(b.subscribers, s)
			close(s.ch)
			return
		}
	}
}

// Publish broadcasts envelope to every current subscriber. A subscriber
// whose queue is full has its oldest pending envelope dropped to make room
// — Publish itself never blocks on a slow subscriber (§4.C, §5).
func (b *Bus) Publish(envelope *Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subscribers {
		deliver(s.ch, envelope)
	}
}

// PublishBatch is a convenience wrapper for the common success path.
func (b *Bus) PublishBatch(batch *chain.EventBatch) {
	b.Publish(&Envelope{Batch: batch})
}

// PublishError is a convenience wrapper for the error path (§4.B: a
// SubscriptionCancelled error is broadcast so downstream can trigger packet
// clearing).
func (b *Bus) PublishError(err error) {
	b.Publish(&Envelope{Err: err})
}

func deliver(ch chan *Envelope, envelope *Envelope) {
	select {
	case ch <- envelope:
		return
	default:
	}

	// Queue is full: drop the oldest pending envelope and retry once. If a
	// concurrent receive already made room, the retry send still succeeds
	// without needing to drop anything.
	select {
	case <-ch:
	default:
	}

	select {
	case ch <- envelope:
	default:
		// Another publisher (there is only ever one, the event source's
		// run loop) or a racing drain emptied and refilled the queue
		// between our drop and our retry; give up silently rather than
		// spin — the next Publish call will succeed.
	}
}

// Stop closes every subscriber's channel and marks the bus so that any
// further Subscribe calls receive an already-closed handle. Stop is
// idempotent.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.stopped = true
	for s := range b.subscribers {
		close(s.ch)
		delete(b.subscribers, s)
	}
}

// SubscriberCount returns the number of currently registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
