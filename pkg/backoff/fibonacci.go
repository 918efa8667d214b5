// Package backoff implements the Fibonacci reconnect/retry policy shared by
// the event source's reconnect loop (§4.B) and the packet relayer's
// transient-error retry loop (§4.F: "same policy as §4.B").
package backoff

import "time"

// Fibonacci computes successive delays by Fibonacci recurrence
// (prev, cur = cur, prev+cur), capped at PerAttemptCap for any single
// delay and TotalCap for the sum across one continuous failure streak.
// Grounded on the teacher's connection-retry shape in pkg/worker/worker.go,
// generalized from a fixed interval to Fibonacci growth: no example repo
// in the corpus imports a backoff library offering Fibonacci rather than
// exponential growth (cenkalti/backoff/v4, pack-attested via
// other_examples/manifests/furychain-furya-relayer, is exponential-only).
type Fibonacci struct {
	perAttemptCap time.Duration
	totalCap      time.Duration

	prev, cur time.Duration
	elapsed   time.Duration
}

// NewFibonacci creates a policy starting at start, capping any single
// delay at perAttemptCap, and giving up once the sum of delays reaches
// totalCap.
func NewFibonacci(start, perAttemptCap, totalCap time.Duration) *Fibonacci {
	return &Fibonacci{
		perAttemptCap: perAttemptCap,
		totalCap:      totalCap,
		prev:          0,
		cur:           start,
	}
}

// Next returns the next delay to wait, and false once the total cap has
// been exhausted.
func (f *Fibonacci) Next() (time.Duration, bool) {
	if f.elapsed >= f.totalCap {
		return 0, false
	}

	d := f.cur
	if d > f.perAttemptCap {
		d = f.perAttemptCap
	}
	if f.elapsed+d > f.totalCap {
		d = f.totalCap - f.elapsed
	}

	f.elapsed += d
	f.prev, f.cur = f.cur, f.prev+f.cur
	return d, true
}
