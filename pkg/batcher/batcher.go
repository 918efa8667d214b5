package batcher

import (
	"context"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/metrics"
	"github.com/rs/zerolog"
)

// Result is what a Submit call's sink resolves to: either an ordered
// per-message event slice of the same length as the submitted messages, or
// the error that applied to the whole transaction (§3 Pending-message unit).
type Result struct {
	Events [][]chain.Event
	Err    error
}

// Sender is the narrow slice of chain.Chain the batcher needs: submit a
// transaction, and estimate a message's size for the size bound.
type Sender interface {
	SendMessages(ctx context.Context, msgs []chain.Message) ([][]chain.Event, error)
	EstimateMessageLen(msg chain.Message) int
}

type submission struct {
	messages []chain.Message
	sink     chan Result
}

// pendingUnit is one producer's still-unflushed Submit call.
type pendingUnit struct {
	messages []chain.Message
	sink     chan Result
	size     int
}

// Worker is the single task per (chain, direction) that owns the pending
// buffer; Worker.run is its only writer (§4.D).
type Worker struct {
	chainID chain.ID
	sender  Sender
	bounds  Bounds
	logger  zerolog.Logger

	submit  chan submission
	stopCh  chan struct{}
	stopped chan struct{}
}

// NewWorker creates a batcher worker for chainID. Call Start to begin its
// run loop and Stop to drain it.
func NewWorker(chainID chain.ID, sender Sender, bounds Bounds, logger zerolog.Logger) *Worker {
	return &Worker{
		chainID: chainID,
		sender:  sender,
		bounds:  bounds,
		logger:  logger.With().Str("component", "batcher").Str("chain_id", string(chainID)).Logger(),
		submit:  make(chan submission),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the worker's run loop in its own goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Stop signals the run loop to exit once its current work is done and
// blocks until it has. Any units still pending at that point are flushed
// first.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stopped
}

// Submit enqueues an ordered group of messages as one pending unit,
// guaranteed never to be split across a transaction boundary (§4.D
// invariant). It returns a sink that receives exactly one Result. Submit
// blocks until the worker has accepted the unit, ctx is done, or the worker
// has been stopped.
func (w *Worker) Submit(ctx context.Context, messages []chain.Message) <-chan Result {
	sink := make(chan Result, 1)
	sub := submission{messages: messages, sink: sink}

	select {
	case w.submit <- sub:
	case <-ctx.Done():
		sink <- Result{Err: ctx.Err()}
	case <-w.stopCh:
		sink <- Result{Err: chain.ErrShutdown}
	}
	return sink
}

func (w *Worker) run() {
	defer close(w.stopped)

	var pending []pendingUnit
	var pendingSize, pendingCount int
	var timer *time.Timer
	var timerC <-chan time.Time

	resetTimer := func() {
		timer = time.NewTimer(w.bounds.MaxDelay)
		timerC = timer.C
	}
	clearTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = nil
		timerC = nil
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		w.flush(pending)
		pending = nil
		pendingSize = 0
		pendingCount = 0
		clearTimer()
	}

	for {
		select {
		case sub := <-w.submit:
			unit := pendingUnit{
				messages: sub.messages,
				sink:     sub.sink,
				size:     w.estimateSize(sub.messages),
			}

			if unit.size > w.bounds.MaxTxSize || len(unit.messages) > w.bounds.MaxMessagesPerTx {
				// Flush whatever was already pending, then submit this
				// unit alone: an oversize unit is still attempted, and any
				// resulting error is returned only to its own sink (§4.D).
				flush()
				w.flush([]pendingUnit{unit})
				continue
			}

			if len(pending) > 0 && (pendingSize+unit.size > w.bounds.MaxTxSize || pendingCount+len(unit.messages) > w.bounds.MaxMessagesPerTx) {
				flush()
			}

			pending = append(pending, unit)
			pendingSize += unit.size
			pendingCount += len(unit.messages)
			if len(pending) == 1 {
				resetTimer()
			}

		case <-timerC:
			flush()

		case <-w.stopCh:
			flush()
			return
		}
	}
}

func (w *Worker) estimateSize(messages []chain.Message) int {
	total := 0
	for _, m := range messages {
		total += w.sender.EstimateMessageLen(m)
	}
	return total
}

// flush submits every unit in pending as a single transaction and routes
// the result back to each unit's sink in dequeue order (§4.D "Result
// routing"). A submission error or a mismatched event count is delivered to
// every sink in the transaction unchanged — there is no cross-transaction
// dependency, so the worker continues regardless.
func (w *Worker) flush(pending []pendingUnit) {
	var all []chain.Message
	for _, u := range pending {
		all = append(all, u.messages...)
	}

	metrics.BatcherQueueDepth.WithLabelValues(string(w.chainID)).Set(float64(len(all)))

	ctx, cancel := context.WithTimeout(context.Background(), w.bounds.CallTimeout)
	defer cancel()

	timer := metrics.NewTimer()
	events, err := w.sender.SendMessages(ctx, all)
	timer.ObserveDurationVec(metrics.BatcherFlushLatency, string(w.chainID))

	if err != nil {
		w.logger.Warn().Err(err).Int("messages", len(all)).Msg("batch submission failed")
		metrics.BatcherTransactionsTotal.WithLabelValues(string(w.chainID), "error").Inc()
		for _, u := range pending {
			u.sink <- Result{Err: err}
		}
		return
	}

	if len(events) != len(all) {
		mismatch := chain.NewMismatchIbcEventsCountError(len(all), len(events))
		w.logger.Error().Err(mismatch).Msg("send_messages returned a mismatched event count")
		metrics.BatcherTransactionsTotal.WithLabelValues(string(w.chainID), "error").Inc()
		for _, u := range pending {
			u.sink <- Result{Err: mismatch}
		}
		return
	}

	metrics.BatcherTransactionsTotal.WithLabelValues(string(w.chainID), "success").Inc()

	offset := 0
	for _, u := range pending {
		n := len(u.messages)
		u.sink <- Result{Events: events[offset : offset+n]}
		offset += n
	}
}
