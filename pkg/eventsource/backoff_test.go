package eventsource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFibonacciBackoffGrowsThenCaps(t *testing.T) {
	b := newFibonacciBackoff(DefaultReconnectPolicy)

	d1, ok := b.next()
	require.True(t, ok)
	require.Equal(t, 1*time.Second, d1)

	d2, ok := b.next()
	require.True(t, ok)
	require.Equal(t, 1*time.Second, d2)

	d3, ok := b.next()
	require.True(t, ok)
	require.Equal(t, 2*time.Second, d3)

	d4, ok := b.next()
	require.True(t, ok)
	require.Equal(t, 3*time.Second, d4)
}

func TestFibonacciBackoffCapsPerAttempt(t *testing.T) {
	b := newFibonacciBackoff(DefaultReconnectPolicy)
	sawCap := false
	for i := 0; i < 12; i++ {
		d, ok := b.next()
		require.True(t, ok)
		require.LessOrEqual(t, d, backoffPerAttemptCap)
		if d == backoffPerAttemptCap {
			sawCap = true
		}
	}
	require.True(t, sawCap, "fibonacci growth should eventually hit the per-attempt cap")
}

func TestFibonacciBackoffHonorsCustomPolicy(t *testing.T) {
	b := newFibonacciBackoff(ReconnectPolicy{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		TotalCap:     50 * time.Millisecond,
	})

	d1, ok := b.next()
	require.True(t, ok)
	require.Equal(t, 10*time.Millisecond, d1)

	var total time.Duration = d1
	for {
		d, ok := b.next()
		if !ok {
			break
		}
		require.LessOrEqual(t, d, 20*time.Millisecond)
		total += d
	}
	require.Equal(t, 50*time.Millisecond, total)
}

func TestFibonacciBackoffZeroPolicyFallsBackToDefault(t *testing.T) {
	b := newFibonacciBackoff(ReconnectPolicy{})
	d, ok := b.next()
	require.True(t, ok)
	require.Equal(t, backoffStart, d)
}

func TestFibonacciBackoffExhaustsTotalBudget(t *testing.T) {
	b := newFibonacciBackoff(DefaultReconnectPolicy)
	var total time.Duration
	for {
		d, ok := b.next()
		if !ok {
			break
		}
		total += d
		require.LessOrEqual(t, total, backoffTotalCap)
	}
	require.Equal(t, backoffTotalCap, total)
}
