package eventsource

import (
	"time"

	"github.com/cuemby/ibc-relayer/pkg/backoff"
)

const (
	backoffStart         = 1 * time.Second
	backoffPerAttemptCap = 60 * time.Second
	backoffTotalCap      = 10 * time.Minute
)

// ReconnectPolicy parameterizes the Fibonacci reconnect schedule a Source
// runs per spec.md §4.B. DefaultReconnectPolicy matches the spec's own
// schedule; a Config may override it with the §6 reconnect_* options.
type ReconnectPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	TotalCap     time.Duration
}

// DefaultReconnectPolicy is the spec's named schedule: 1s start, 60s cap on
// any single delay, 10 minutes of total elapsed waiting before the source
// gives up and logs the chain as abandoned.
var DefaultReconnectPolicy = ReconnectPolicy{
	InitialDelay: backoffStart,
	MaxDelay:     backoffPerAttemptCap,
	TotalCap:     backoffTotalCap,
}

func (p ReconnectPolicy) orDefault() ReconnectPolicy {
	if p.InitialDelay <= 0 || p.MaxDelay <= 0 || p.TotalCap <= 0 {
		return DefaultReconnectPolicy
	}
	return p
}

// fibonacciBackoff computes reconnect delays per spec.md §4.B: Fibonacci
// growth (not exponential — named explicitly in the spec to rule out the
// more common doubling policy), capped per policy for any single attempt
// and for the sum of a continuous failure streak.
//
// A thin wrapper around pkg/backoff.Fibonacci, which the packet relayer's
// transient-error retry loop (§4.F) reuses with the same policy.
type fibonacciBackoff struct {
	inner *backoff.Fibonacci
}

func newFibonacciBackoff(policy ReconnectPolicy) *fibonacciBackoff {
	policy = policy.orDefault()
	return &fibonacciBackoff{inner: backoff.NewFibonacci(policy.InitialDelay, policy.MaxDelay, policy.TotalCap)}
}

// next returns the next delay to wait, and false once the total cap has
// been exhausted.
func (f *fibonacciBackoff) next() (time.Duration, bool) {
	return f.inner.Next()
}
