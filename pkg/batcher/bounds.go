package batcher

import "time"

// Bounds are the three limits a pending buffer is flushed under (§4.D).
type Bounds struct {
	// MaxTxSize is the estimated serialized size, in bytes, a single
	// transaction may not exceed.
	MaxTxSize int
	// MaxMessagesPerTx is the message count a single transaction may not
	// exceed.
	MaxMessagesPerTx int
	// MaxDelay is how long a pending buffer may sit before being flushed,
	// measured from its first message's arrival.
	MaxDelay time.Duration
	// CallTimeout bounds a single send_messages call (§6 PerCallTimeout).
	CallTimeout time.Duration
}

// DefaultBounds returns a conservative default, per-chain configurable
// (§4.D: "size bound... default conservative; per-chain configurable").
func DefaultBounds() Bounds {
	return Bounds{
		MaxTxSize:        128 * 1024,
		MaxMessagesPerTx: 20,
		MaxDelay:         500 * time.Millisecond,
		CallTimeout:      30 * time.Second,
	}
}
