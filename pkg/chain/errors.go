package chain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. The relayer never inspects an error beyond one of
// these kinds (via errors.Is) — concrete transports are free to wrap
// whatever underlying cause they like as long as one of these is in the
// chain.
var (
	// ErrTransient covers network timeouts, connection resets and 5xx RPC
	// responses. The caller retries locally with backoff.
	ErrTransient = errors.New("transient chain error")

	// ErrSubscriptionCancelled means the server closed the subscription.
	// It is broadcast to subscribers (so downstream can trigger clearing)
	// before the event source reconnects.
	ErrSubscriptionCancelled = errors.New("subscription cancelled by server")

	// ErrClientCreationFailed means building a new websocket client failed
	// during reconnect.
	ErrClientCreationFailed = errors.New("client creation failed")

	// ErrClientSubscriptionFailed means re-running subscription init after
	// a reconnect failed.
	ErrClientSubscriptionFailed = errors.New("client subscription failed")

	// ErrClientTerminationFailed means closing the prior websocket client
	// during reconnect failed.
	ErrClientTerminationFailed = errors.New("client termination failed")

	// ErrDecode means a protobuf or ABCI event could not be decoded. For a
	// single event this just drops that event; for a whole message it is
	// fatal and is surfaced to the submitter.
	ErrDecode = errors.New("decode error")

	// ErrUnknownHeaderType means an Any-typed header carried a type URL no
	// registered client implementation understands.
	ErrUnknownHeaderType = errors.New("unknown header type")

	// ErrMismatchClientHeaderFormat means an AnyHeader's decoded variant did
	// not match the registered client's expected variant.
	ErrMismatchClientHeaderFormat = errors.New("mismatched client header format")

	// ErrPacketTimedOut is not a failure — it is the Sx state transition.
	// It is returned by the relayer state machine as a sentinel so callers
	// can distinguish "timed out" from "acked" without a side channel.
	ErrPacketTimedOut = errors.New("packet timed out")

	// ErrShutdown is not a failure — it is the terminal control signal
	// propagated through cancellation.
	ErrShutdown = errors.New("shutdown")
)

// MismatchIbcEventsCountError is ErrMismatchIbcEventsCount with the counts
// that disagreed attached, so logs and sinks can report both sides.
type MismatchIbcEventsCountError struct {
	Expected int
	Actual   int
}

// ErrMismatchIbcEventsCount is the sentinel the caller matches on via
// errors.Is; MismatchIbcEventsCountError carries the detail.
var ErrMismatchIbcEventsCount = errors.New("mismatched IBC events count")

func (e *MismatchIbcEventsCountError) Error() string {
	return fmt.Sprintf("mismatched IBC events count: expected %d, got %d", e.Expected, e.Actual)
}

func (e *MismatchIbcEventsCountError) Unwrap() error {
	return ErrMismatchIbcEventsCount
}

// NewMismatchIbcEventsCountError builds the fatal error returned to every
// sink in a transaction when send_messages returns a different number of
// event slices than messages submitted.
func NewMismatchIbcEventsCountError(expected, actual int) error {
	return &MismatchIbcEventsCountError{Expected: expected, Actual: actual}
}

// IsTransient reports whether err should be retried locally with backoff
// rather than surfaced as fatal.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrClientCreationFailed) ||
		errors.Is(err, ErrClientSubscriptionFailed) ||
		errors.Is(err, ErrClientTerminationFailed)
}
