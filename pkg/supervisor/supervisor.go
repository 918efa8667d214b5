package supervisor

import (
	"context"
	"sync"

	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/eventbus"
	"github.com/cuemby/ibc-relayer/pkg/metrics"
	"github.com/cuemby/ibc-relayer/pkg/relay"
	"github.com/cuemby/ibc-relayer/pkg/relayer"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ackCacheSize bounds the number of not-yet-matched WriteAcknowledgement
// events held for packets whose relay task hasn't registered yet.
const ackCacheSize = 4096

// Option configures optional Supervisor behavior.
type Option func(*Supervisor)

// WithFilter installs the should_relay_packet predicate every spawned
// task is given (§4.F S0). The default relays every packet.
func WithFilter(fn relayer.FilterFunc) Option {
	return func(s *Supervisor) { s.filter = fn }
}

// WithLogger installs the logger the supervisor and every task it spawns
// reports through.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger.With().Str("component", "supervisor").Logger() }
}

// trackedTask pairs a running Task with the cancel function for its Run
// call, so packet clearing can stop and respawn it.
type trackedTask struct {
	task       *relayer.Task
	packet     chain.Packet
	sendHeight chain.Height
	cancel     context.CancelFunc
}

// Supervisor drives one directional Relay end to end (§4.G).
type Supervisor struct {
	rc     *relay.Context
	filter relayer.FilterFunc
	logger zerolog.Logger

	sourceSub eventbus.Subscription
	destSub   eventbus.Subscription

	mu    sync.Mutex
	tasks map[chain.PacketKey]*trackedTask

	pendingAcks *lru.Cache[chain.PacketKey, chain.Event]

	wg sync.WaitGroup
}

// New builds a Supervisor over rc, subscribing to both chains' event
// sources immediately.
func New(rc *relay.Context, sourceBus, destBus *eventbus.Bus, opts ...Option) *Supervisor {
	cache, _ := lru.New[chain.PacketKey, chain.Event](ackCacheSize)

	s := &Supervisor{
		rc:          rc,
		filter:      func(chain.Packet) bool { return true },
		logger:      zerolog.Nop(),
		sourceSub:   sourceBus.Subscribe(),
		destSub:     destBus.Subscribe(),
		tasks:       make(map[chain.PacketKey]*trackedTask),
		pendingAcks: cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveRelayTasks implements metrics.StatsProvider.
func (s *Supervisor) ActiveRelayTasks() map[metrics.ChainPair]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[metrics.ChainPair]int{
		{Src: string(s.rc.Source.ID()), Dst: string(s.rc.Destination.ID())}: len(s.tasks),
	}
}

// Run consumes both buses until ctx is cancelled, spawning and demuxing
// relay tasks. It returns once every spawned task has exited.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case env, ok := <-s.sourceSub:
			if !ok {
				return nil
			}
			s.handleSourceEnvelope(ctx, env)

		case env, ok := <-s.destSub:
			if !ok {
				return nil
			}
			s.handleDestinationEnvelope(ctx, env)
		}
	}
}

func (s *Supervisor) handleSourceEnvelope(ctx context.Context, env *eventbus.Envelope) {
	if env.Err != nil {
		s.logger.Warn().Err(env.Err).Msg("source bus error, clearing tracked packets")
		s.clearPackets(ctx)
		return
	}
	for _, ev := range env.Batch.Events {
		if ev.Event.Type != chain.EventTypeSendPacket {
			continue
		}
		s.spawn(ctx, ev.Event.Packet, ev.Height)
	}
}

func (s *Supervisor) handleDestinationEnvelope(ctx context.Context, env *eventbus.Envelope) {
	if env.Err != nil {
		s.logger.Warn().Err(env.Err).Msg("destination bus error, clearing tracked packets")
		s.clearPackets(ctx)
		return
	}
	for _, ev := range env.Batch.Events {
		if ev.Event.Type != chain.EventTypeWriteAcknowledgement {
			continue
		}
		s.demuxAck(ev.Event)
	}
}

// spawn starts a relay task for packet if one is not already tracked for
// its key, handing it any WriteAcknowledgement already cached for it.
func (s *Supervisor) spawn(ctx context.Context, packet chain.Packet, sendHeight chain.Height) {
	s.startTask(ctx, packet, sendHeight, false)
}

// respawn unconditionally replaces any task currently tracked for packet's
// key, even one whose goroutine hasn't finished exiting yet — used by
// packet clearing, which cancels the old task and immediately restarts it.
func (s *Supervisor) respawn(ctx context.Context, packet chain.Packet, sendHeight chain.Height) {
	s.startTask(ctx, packet, sendHeight, true)
}

func (s *Supervisor) startTask(ctx context.Context, packet chain.Packet, sendHeight chain.Height, force bool) {
	key := packet.Key()

	s.mu.Lock()
	if _, exists := s.tasks[key]; exists && !force {
		s.mu.Unlock()
		return
	}
	taskCtx, cancel := context.WithCancel(ctx)
	task := relayer.NewTask(s.rc, packet, sendHeight, relayer.WithFilter(s.filter), relayer.WithLogger(s.logger))
	tracked := &trackedTask{task: task, packet: packet, sendHeight: sendHeight, cancel: cancel}
	s.tasks[key] = tracked
	s.mu.Unlock()

	if ack, ok := s.pendingAcks.Get(key); ok {
		s.pendingAcks.Remove(key)
		task.NotifyWriteAcknowledgement(ack)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		outcome, err := task.Run(taskCtx)
		if err != nil {
			s.logger.Error().Err(err).Str("packet", key.String()).Msg("relay task failed")
		} else {
			s.logger.Info().Str("packet", key.String()).Str("outcome", outcome.String()).Msg("relay task terminated")
		}

		// Only remove the map entry if it still points at this goroutine's
		// own task: a respawn during packet clearing may have already
		// installed a replacement under the same key while this one was
		// still unwinding after cancellation.
		s.mu.Lock()
		if current, ok := s.tasks[key]; ok && current == tracked {
			delete(s.tasks, key)
		}
		s.mu.Unlock()
	}()
}

// demuxAck routes an observed WriteAcknowledgement to the task tracking
// its packet, or caches it if that task hasn't been spawned yet.
func (s *Supervisor) demuxAck(ack chain.Event) {
	key := ack.Packet.Key()

	s.mu.Lock()
	tracked, ok := s.tasks[key]
	s.mu.Unlock()

	if ok {
		tracked.task.NotifyWriteAcknowledgement(ack)
		return
	}
	s.pendingAcks.Add(key, ack)
}

// clearPackets re-enters every currently tracked packet into the state
// machine from S0: cancel its running task and spawn a fresh one for the
// same packet and send height (§4.G packet clearing).
func (s *Supervisor) clearPackets(ctx context.Context) {
	s.mu.Lock()
	toRespawn := make([]trackedTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		toRespawn = append(toRespawn, *t)
	}
	s.mu.Unlock()

	for _, t := range toRespawn {
		t.cancel()
	}
	for _, t := range toRespawn {
		s.respawn(ctx, t.packet, t.sendHeight)
	}
}
