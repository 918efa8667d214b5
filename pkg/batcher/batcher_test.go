package batcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeMsg struct {
	id   string
	size int
}

func (fakeMsg) MsgType() string { return "fake" }

// fakeSender records every call to SendMessages so tests can assert how
// the worker grouped units into transactions.
type fakeSender struct {
	mu    sync.Mutex
	calls [][]chain.Message
	// err, if set, is returned by the next call to SendMessages and then
	// cleared.
	err error
}

func (s *fakeSender) SendMessages(_ context.Context, msgs []chain.Message) ([][]chain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msgs)

	if s.err != nil {
		err := s.err
		s.err = nil
		return nil, err
	}

	out := make([][]chain.Event, len(msgs))
	for i, m := range msgs {
		fm := m.(fakeMsg)
		out[i] = []chain.Event{{Type: chain.EventTypeSendPacket, Packet: chain.Packet{Data: []byte(fm.id)}}}
	}
	return out, nil
}

func (s *fakeSender) EstimateMessageLen(m chain.Message) int {
	return m.(fakeMsg).size
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func recvResult(t *testing.T, sink <-chan Result) Result {
	t.Helper()
	select {
	case r := <-sink:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batcher result")
		return Result{}
	}
}

func TestSubmitSingleUnitFlushesOnDelay(t *testing.T) {
	sender := &fakeSender{}
	bounds := Bounds{MaxTxSize: 1000, MaxMessagesPerTx: 10, MaxDelay: 30 * time.Millisecond, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()
	defer w.Stop()

	sink := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "m1", size: 10}})
	result := recvResult(t, sink)

	require.NoError(t, result.Err)
	require.Len(t, result.Events, 1)
	require.Equal(t, 1, sender.callCount())
}

func TestSubmitNeverSplitsOneProducersMessages(t *testing.T) {
	sender := &fakeSender{}
	bounds := Bounds{MaxTxSize: 1000, MaxMessagesPerTx: 2, MaxDelay: time.Hour, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()
	defer w.Stop()

	msgs := []chain.Message{fakeMsg{id: "a", size: 1}, fakeMsg{id: "b", size: 1}, fakeMsg{id: "c", size: 1}}
	sink := w.Submit(context.Background(), msgs)
	result := recvResult(t, sink)

	require.NoError(t, result.Err)
	require.Len(t, result.Events, 3)
}

func TestCountBoundFlushesBeforeNewUnitJoins(t *testing.T) {
	sender := &fakeSender{}
	bounds := Bounds{MaxTxSize: 1000, MaxMessagesPerTx: 2, MaxDelay: time.Hour, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()

	sink1 := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "a", size: 1}, fakeMsg{id: "b", size: 1}})
	// The first unit already fills the count bound; submitting a second
	// unit forces the first to flush before the new one joins the buffer.
	sink2 := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "c", size: 1}})

	r1 := recvResult(t, sink1)
	require.NoError(t, r1.Err)

	// The second unit is still sitting in the pending buffer alone (its
	// own count is under the bound); Stop forces its flush too.
	w.Stop()
	r2 := recvResult(t, sink2)
	require.NoError(t, r2.Err)

	require.Equal(t, 2, sender.callCount())
}

func TestOversizeUnitSubmittedAloneInOwnTransaction(t *testing.T) {
	sender := &fakeSender{}
	bounds := Bounds{MaxTxSize: 5, MaxMessagesPerTx: 10, MaxDelay: 20 * time.Millisecond, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()
	defer w.Stop()

	normalSink := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "ok", size: 2}})
	oversizeSink := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "big", size: 50}})

	oversizeResult := recvResult(t, oversizeSink)
	require.NoError(t, oversizeResult.Err)
	require.Len(t, oversizeResult.Events, 1)

	normalResult := recvResult(t, normalSink)
	require.NoError(t, normalResult.Err)

	// The two units were submitted in two separate transactions: the
	// oversized one never joined the other's pending buffer.
	require.Equal(t, 2, sender.callCount())
}

func TestSubmissionErrorDeliveredToEverySinkInTransaction(t *testing.T) {
	sender := &fakeSender{err: chain.ErrTransient}
	bounds := Bounds{MaxTxSize: 1000, MaxMessagesPerTx: 10, MaxDelay: time.Hour, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()

	sink1 := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "a", size: 1}})
	sink2 := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "b", size: 1}})

	w.Stop() // forces a flush of both still-pending units together

	r1 := recvResult(t, sink1)
	r2 := recvResult(t, sink2)
	require.ErrorIs(t, r1.Err, chain.ErrTransient)
	require.ErrorIs(t, r2.Err, chain.ErrTransient)
}

func TestStopFlushesRemainingPendingUnits(t *testing.T) {
	sender := &fakeSender{}
	bounds := Bounds{MaxTxSize: 1000, MaxMessagesPerTx: 10, MaxDelay: time.Hour, CallTimeout: time.Second}
	w := NewWorker("chain-a", sender, bounds, zerolog.Nop())
	w.Start()

	sink := w.Submit(context.Background(), []chain.Message{fakeMsg{id: "a", size: 1}})
	w.Stop()

	result := recvResult(t, sink)
	require.NoError(t, result.Err)
}
