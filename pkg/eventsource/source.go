package eventsource

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/eventbus"
	"github.com/rs/zerolog"
)

// DefaultQueries are the two Tendermint RPC queries a source subscribes to:
// every new block, and every transaction result — merged into one logical
// stream so NewBlock and packet events interleave in arrival order (§4.B).
var DefaultQueries = []string{
	"tm.event='NewBlock'",
	"tm.event='Tx'",
}

// Config parameterizes a Source.
type Config struct {
	ChainID   chain.ID
	Endpoint  string
	Queries   []string
	Reconnect ReconnectPolicy // zero value falls back to DefaultReconnectPolicy
}

func (c Config) queries() []string {
	if len(c.Queries) > 0 {
		return c.Queries
	}
	return DefaultQueries
}

// Source owns one chain's RPC websocket subscription end to end: dial,
// decode, group_while, stable NewBlock-first ordering, and publication onto
// an eventbus.Bus, with Fibonacci-backoff reconnect on driver failure.
// A single goroutine (Run) owns all mutable state, matching the teacher's
// pkg/reconciler run-loop discipline.
type Source struct {
	cfg    Config
	dialer Dialer
	bus    *eventbus.Bus
	logger zerolog.Logger

	shutdown chan struct{}
	stopped  chan struct{}
}

// NewSource wires a Source to publish onto bus using dialer to obtain its
// websocket driver.
func NewSource(cfg Config, dialer Dialer, bus *eventbus.Bus, logger zerolog.Logger) *Source {
	return &Source{
		cfg:      cfg,
		dialer:   dialer,
		bus:      bus,
		logger:   logger.With().Str("component", "eventsource").Str("chain_id", string(cfg.ChainID)).Logger(),
		shutdown: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Subscribe registers a new consumer of this source's batches. It is safe
// to call concurrently with Run, including after Shutdown (in which case it
// returns an already-closed handle, per eventbus.Bus's own contract).
func (s *Source) Subscribe() eventbus.Subscription {
	return s.bus.Subscribe()
}

// Shutdown requests the run loop stop, flushing any partially accumulated
// group first. It returns once the loop has exited. Calling Shutdown more
// than once is safe.
func (s *Source) Shutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
	<-s.stopped
}

// reconnectStatus is the outcome of waiting out one backoff step.
type reconnectStatus int

const (
	reconnectRetry     reconnectStatus = iota
	reconnectStop                      // ctx cancelled or Shutdown called: stop cleanly
	reconnectExhausted                 // backoff budget used up: stop with an error
)

// Run dials the chain's websocket endpoint and publishes batches onto the
// bus until Shutdown is called or ctx is cancelled. It never returns while
// reconnect attempts remain within the Fibonacci backoff budget; once that
// budget is exhausted it returns the terminal error so the caller can
// decide whether to retire the chain entirely. Whatever
// events were accumulated into an as-yet-unflushed group at the moment of
// exit are always flushed as a final batch before Run returns.
func (s *Source) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.bus.Stop()

	group := newGrouper(s.cfg.ChainID)
	defer func() {
		if batch := group.flush(); batch != nil {
			s.bus.PublishBatch(batch)
		}
	}()

	backoff := newFibonacciBackoff(s.cfg.Reconnect)

	for {
		driver, conn, err := s.dialer.Dial(ctx, s.cfg.Endpoint, s.cfg.queries())
		if err != nil {
			switch s.reconnect(ctx, backoff, fmt.Errorf("%w: %w", chain.ErrClientCreationFailed, err)) {
			case reconnectStop:
				return nil
			case reconnectExhausted:
				return fmt.Errorf("%w: reconnect budget exhausted: %w", chain.ErrClientCreationFailed, err)
			case reconnectRetry:
				continue
			}
		}
		// A successful dial resets the backoff budget: the 10-minute cap
		// bounds one continuous failure streak, not the source's lifetime.
		backoff = newFibonacciBackoff(s.cfg.Reconnect)

		terminal, shouldReturn, retErr := s.drain(ctx, driver, group)
		conn.Close()

		if shouldReturn {
			return retErr
		}
		switch s.reconnect(ctx, backoff, terminal) {
		case reconnectStop:
			return nil
		case reconnectExhausted:
			return fmt.Errorf("%w: reconnect budget exhausted: %w", chain.ErrClientCreationFailed, terminal)
		case reconnectRetry:
		}
	}
}

// drain consumes one driver's events until it dies, the context is
// cancelled, or Shutdown is requested. It returns the driver's terminal
// error (nil on clean shutdown), whether Run should return entirely rather
// than reconnect, and the error Run should return in that case.
func (s *Source) drain(ctx context.Context, driver *Driver, group *grouper) (terminal error, shouldReturn bool, retErr error) {
	for {
		select {
		case <-ctx.Done():
			return nil, true, ctx.Err()

		case <-s.shutdown:
			return nil, true, nil

		case raw, ok := <-driver.Events:
			if !ok {
				// The driver only ever sends its terminal error, if any,
				// before closing Events (readLoop's defer runs after the
				// send), so by the time we observe the close it is already
				// there to be picked up without blocking.
				err := pendingErr(driver)
				if err == nil {
					return nil, false, nil
				}
				s.bus.PublishError(chain.ErrSubscriptionCancelled)
				return err, false, nil
			}
			ev, accepted := decode(raw)
			if !accepted {
				s.logger.Debug().Str("kind", raw.Kind).Msg("dropped undecodable event")
				continue
			}
			if batch := group.add(ev); batch != nil {
				s.bus.PublishBatch(batch)
			}
		}
	}
}

func pendingErr(driver *Driver) error {
	select {
	case err := <-driver.Errs:
		return err
	default:
		return nil
	}
}

// reconnect waits out the next Fibonacci backoff step before the caller
// redials, logging the cause. It reports reconnectExhausted once the total
// backoff budget (10 minutes) is used up, and reconnectStop if Shutdown or
// ctx cancellation arrives first — both end the run loop, but only the
// former is a failure worth reporting to the caller.
func (s *Source) reconnect(ctx context.Context, backoff *fibonacciBackoff, cause error) reconnectStatus {
	delay, ok := backoff.next()
	if !ok {
		s.logger.Error().Err(cause).Msg("reconnect budget exhausted, abandoning chain")
		return reconnectExhausted
	}
	s.logger.Warn().Err(cause).Dur("delay", delay).Msg("reconnecting after event source failure")

	select {
	case <-ctx.Done():
		return reconnectStop
	case <-s.shutdown:
		return reconnectStop
	case <-time.After(delay):
		return reconnectRetry
	}
}
