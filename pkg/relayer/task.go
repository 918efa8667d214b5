package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/backoff"
	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/metrics"
	"github.com/cuemby/ibc-relayer/pkg/relay"
	"github.com/rs/zerolog"
)

// Outcome is the terminal state a Task reaches.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeFiltered
	OutcomeAcked
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFiltered:
		return "filtered"
	case OutcomeAcked:
		return "acked"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// FilterFunc is the user-supplied should_relay_packet predicate (S0).
type FilterFunc func(chain.Packet) bool

// errAckTimedOut is the internal signal that the S4 ack wait observed the
// destination crossing the packet's timeout while still waiting; it routes
// the task into Sx instead of surfacing as a task error.
var errAckTimedOut = errors.New("relayer: ack wait observed packet timeout")

const ackPollInterval = 5 * time.Second

// Task drives a single packet from SendPacket to a terminal outcome. It is
// not safe for concurrent use by multiple goroutines beyond the single
// NotifyWriteAcknowledgement call a supervisor's demux may make while Run
// is in progress.
type Task struct {
	rc         *relay.Context
	packet     chain.Packet
	sendHeight chain.Height

	shouldRelay FilterFunc
	logger      zerolog.Logger

	ackCh     chan chain.Event
	inlineAck *chain.Event
}

// Option configures optional Task behavior.
type Option func(*Task)

// WithFilter installs the S0 should_relay_packet predicate. The default
// predicate relays every packet.
func WithFilter(fn FilterFunc) Option {
	return func(t *Task) { t.shouldRelay = fn }
}

// WithLogger installs the logger a Task reports its progress to.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Task) { t.logger = logger }
}

// NewTask builds a relay task for packet p, observed on rc.Source at
// height sendHeight.
func NewTask(rc *relay.Context, p chain.Packet, sendHeight chain.Height, opts ...Option) *Task {
	t := &Task{
		rc:          rc,
		packet:      p,
		sendHeight:  sendHeight,
		shouldRelay: func(chain.Packet) bool { return true },
		logger:      zerolog.Nop(),
		ackCh:       make(chan chain.Event, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NotifyWriteAcknowledgement delivers a WriteAcknowledgement a supervisor's
// per-destination demux matched to this task's packet key (§4.G). It is
// safe to call at any point in the task's lifetime, including before Run
// observes it; a notification arriving while an earlier one still sits
// unconsumed in the single-slot channel is dropped, since a packet can only
// be acknowledged once.
func (t *Task) NotifyWriteAcknowledgement(ack chain.Event) {
	select {
	case t.ackCh <- ack:
	default:
	}
}

// Run drives the state machine to completion or until ctx is cancelled.
func (t *Task) Run(ctx context.Context) (outcome Outcome, err error) {
	srcID := string(t.rc.Source.ID())
	dstID := string(t.rc.Destination.ID())
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDurationVec(metrics.RelayTaskDuration, srcID, dstID, outcome.String())
		if err != nil {
			metrics.RelayTasksFailed.WithLabelValues(srcID, dstID).Inc()
		}
	}()

	if !t.shouldRelay(t.packet) {
		t.logger.Debug().Msg("packet filtered at S0")
		return OutcomeFiltered, nil
	}

	var received bool
	if err := t.withRetry(ctx, func() error {
		var qerr error
		received, qerr = t.rc.Destination.IsPacketReceived(ctx, t.packet.DstPort, t.packet.DstChannel, t.packet.Sequence)
		return qerr
	}); err != nil {
		return OutcomeUnknown, fmt.Errorf("S1 is_packet_received: %w", err)
	}

	if !received {
		if timedOut, terr := t.checkTimeout(ctx); terr != nil {
			return OutcomeUnknown, fmt.Errorf("S1 timeout check: %w", terr)
		} else if timedOut {
			return t.doTimeout(ctx)
		}

		if err := t.updateClient(ctx, relay.DestinationTarget, t.sendHeight.Increment()); err != nil {
			return OutcomeUnknown, fmt.Errorf("S2 update destination client: %w", err)
		}

		if timedOut, terr := t.checkTimeout(ctx); terr != nil {
			return OutcomeUnknown, fmt.Errorf("S2 timeout check: %w", terr)
		} else if timedOut {
			return t.doTimeout(ctx)
		}

		proofHeight := t.sendHeight.Increment()
		recvMsg := chain.RecvPacketMessage{Packet: t.packet, ProofHeight: proofHeight}
		events, err := t.submit(ctx, relay.DestinationTarget, []chain.Message{recvMsg})
		if err != nil {
			return OutcomeUnknown, fmt.Errorf("S3 relay recv: %w", err)
		}
		if ack, ok := t.rc.Destination.TryExtractWriteAcknowledgement(events); ok {
			t.inlineAck = &ack
		}
	}

	return t.doAck(ctx)
}

// doAck is S4: obtain the WriteAcknowledgement (inline from S3, or an
// externally notified one), update the source client, submit AckPacket.
func (t *Task) doAck(ctx context.Context) (Outcome, error) {
	ack, err := t.awaitAck(ctx)
	if err != nil {
		if errors.Is(err, errAckTimedOut) {
			return t.doTimeout(ctx)
		}
		return OutcomeUnknown, fmt.Errorf("S4 await ack: %w", err)
	}

	status, err := t.queryDestinationStatus(ctx)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("S4 query destination status: %w", err)
	}

	if err := t.updateClient(ctx, relay.SourceTarget, status.Height.Increment()); err != nil {
		return OutcomeUnknown, fmt.Errorf("S4 update source client: %w", err)
	}

	ackMsg := chain.AckPacketMessage{
		Packet:          t.packet,
		Acknowledgement: ack.Acknowledgement,
		ProofHeight:     status.Height.Increment(),
	}
	if _, err := t.submit(ctx, relay.SourceTarget, []chain.Message{ackMsg}); err != nil {
		return OutcomeUnknown, fmt.Errorf("S4 relay ack: %w", err)
	}
	return OutcomeAcked, nil
}

// awaitAck returns the WriteAcknowledgement this task is waiting on,
// whichever arrives first: one already collected in S3, one delivered by
// NotifyWriteAcknowledgement, or errAckTimedOut if a periodic re-check
// sees the destination has crossed the packet's timeout.
func (t *Task) awaitAck(ctx context.Context) (chain.Event, error) {
	if t.inlineAck != nil {
		ack := *t.inlineAck
		t.inlineAck = nil
		return ack, nil
	}

	ticker := time.NewTicker(ackPollInterval)
	defer ticker.Stop()

	for {
		select {
		case ack := <-t.ackCh:
			return ack, nil
		case <-ticker.C:
			timedOut, err := t.checkTimeout(ctx)
			if err != nil {
				return chain.Event{}, err
			}
			if timedOut {
				return chain.Event{}, errAckTimedOut
			}
		case <-ctx.Done():
			return chain.Event{}, ctx.Err()
		}
	}
}

// doTimeout is Sx: update the source client to cover the destination's
// current status height, submit TimeoutPacket, terminate success.
func (t *Task) doTimeout(ctx context.Context) (Outcome, error) {
	status, err := t.queryDestinationStatus(ctx)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("Sx query destination status: %w", err)
	}

	if err := t.updateClient(ctx, relay.SourceTarget, status.Height.Increment()); err != nil {
		return OutcomeUnknown, fmt.Errorf("Sx update source client: %w", err)
	}

	msg := chain.TimeoutPacketMessage{Packet: t.packet, ProofHeight: status.Height.Increment()}
	if _, err := t.submit(ctx, relay.SourceTarget, []chain.Message{msg}); err != nil {
		return OutcomeUnknown, fmt.Errorf("Sx submit timeout: %w", err)
	}
	return OutcomeTimedOut, nil
}

// checkTimeout reports whether the destination's latest status exceeds
// the packet's timeout height or timestamp (§4.F tie-break: exactly one
// of the two may be unset).
func (t *Task) checkTimeout(ctx context.Context) (bool, error) {
	status, err := t.queryDestinationStatus(ctx)
	if err != nil {
		return false, err
	}
	return packetTimedOut(status, t.packet), nil
}

func packetTimedOut(status chain.ChainStatus, p chain.Packet) bool {
	if p.HasTimeoutHeight() && !status.Height.Before(p.TimeoutHeight) {
		return true
	}
	if p.HasTimeoutTimestamp() && !status.Timestamp.Before(p.TimeoutTimestamp) {
		return true
	}
	return false
}

func (t *Task) queryDestinationStatus(ctx context.Context) (chain.ChainStatus, error) {
	var status chain.ChainStatus
	err := t.withRetry(ctx, func() error {
		var qerr error
		status, qerr = t.rc.Destination.QueryChainStatus(ctx)
		return qerr
	})
	return status, err
}

// updateClient builds and submits a client-update message for target's
// client, advancing its view of the counterparty to trackedHeight. If the
// client already has a consensus state at or past trackedHeight, the
// update is skipped — the idempotent no-op the spec requires for an update
// that would otherwise fail because the target is already past the
// requested height (§4.F tie-breaks).
func (t *Task) updateClient(ctx context.Context, target relay.Target, trackedHeight chain.Height) error {
	targetChain := target.Chain(t.rc)
	clientID := target.ClientID(t.rc)
	trackedChain := target.CounterpartyChain(t.rc)

	var existing chain.ConsensusState
	err := t.withRetry(ctx, func() error {
		var qerr error
		existing, qerr = targetChain.QueryConsensusState(ctx, clientID, trackedHeight)
		return qerr
	})
	if err == nil && !existing.Height.Before(trackedHeight) {
		return nil
	}

	header, err := t.buildHeader(ctx, trackedChain, trackedHeight)
	if err != nil {
		return err
	}

	_, err = t.submit(ctx, target, []chain.Message{chain.UpdateClientMessage{ClientID: clientID, Header: header}})
	return err
}

// buildHeader constructs the client-update header for tracked's state at
// height. Light-client verification math is out of scope (spec.md §1
// Non-goals): the header carries tracked's current status as opaque bytes
// sufficient to exercise the Any-header registry and submission plumbing,
// not a real signed header a verifier would check.
func (t *Task) buildHeader(ctx context.Context, tracked chain.Chain, height chain.Height) (chain.Header, error) {
	var status chain.ChainStatus
	err := t.withRetry(ctx, func() error {
		var qerr error
		status, qerr = tracked.QueryChainStatus(ctx)
		return qerr
	})
	if err != nil {
		return nil, err
	}

	return &chain.TendermintHeader{
		TrustedHeight: height,
		SignedHeader:  []byte(fmt.Sprintf("status:%s@%s", status.Height, status.Timestamp.Time.UTC().Format(time.RFC3339Nano))),
	}, nil
}

// submit sends msgs through target's batcher and flattens the per-message
// event slices it returns into one slice, preserving submission order.
func (t *Task) submit(ctx context.Context, target relay.Target, msgs []chain.Message) ([]chain.Event, error) {
	var events []chain.Event
	err := t.withRetry(ctx, func() error {
		events = nil
		sink := target.Batcher(t.rc).Submit(ctx, msgs)
		select {
		case res := <-sink:
			if res.Err != nil {
				return res.Err
			}
			for _, perMsg := range res.Events {
				events = append(events, perMsg...)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	return events, err
}

// withRetry runs fn, retrying on transient errors (chain.IsTransient)
// under the same Fibonacci backoff policy as the event source's reconnect
// loop (§4.F: "same policy as §4.B"). A permanent error, or exhausting the
// backoff's total budget, returns immediately.
func (t *Task) withRetry(ctx context.Context, fn func() error) error {
	var bo *backoff.Fibonacci
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !chain.IsTransient(err) {
			return err
		}

		if bo == nil {
			bo = backoff.NewFibonacci(1*time.Second, 60*time.Second, 10*time.Minute)
		}
		delay, ok := bo.Next()
		if !ok {
			return err
		}

		t.logger.Warn().Err(err).Dur("delay", delay).Msg("transient error, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
