package eventsource

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeCloser satisfies closer without touching a real network connection.
type fakeCloser struct{ closed atomic.Bool }

func (f *fakeCloser) Close() error {
	f.closed.Store(true)
	return nil
}

// scriptedDial is one dial attempt's worth of fake driver behavior: a
// sequence of RawEvents to deliver, optionally followed by a terminal
// error. A nil Err means the driver's Events channel simply closes
// (clean end of stream) after the scripted events are delivered.
type scriptedDial struct {
	DialErr error
	Events  []RawEvent
	Err     error
}

// fakeDialer replays a fixed sequence of scriptedDial attempts, one per
// call to Dial, then repeats the last attempt forever (so reconnect tests
// don't need to predict exactly how many redials occur).
type fakeDialer struct {
	attempts []scriptedDial
	calls    int32
}

func newFakeDialer(attempts ...scriptedDial) *fakeDialer {
	return &fakeDialer{attempts: attempts}
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string, queries []string) (*Driver, closer, error) {
	i := int(atomic.AddInt32(&d.calls, 1)) - 1
	if i >= len(d.attempts) {
		i = len(d.attempts) - 1
	}
	attempt := d.attempts[i]

	if attempt.DialErr != nil {
		return nil, nil, attempt.DialErr
	}

	events := make(chan RawEvent, len(attempt.Events)+1)
	errs := make(chan error, 1)
	for _, ev := range attempt.Events {
		events <- ev
	}
	if attempt.Err != nil {
		errs <- attempt.Err
	}
	close(events)

	return &Driver{Events: events, Errs: errs}, &fakeCloser{}, nil
}

var errFakeDialFailed = errors.New("fake dial failed")
