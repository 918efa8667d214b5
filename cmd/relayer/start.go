package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/batcher"
	"github.com/cuemby/ibc-relayer/pkg/chain"
	"github.com/cuemby/ibc-relayer/pkg/config"
	"github.com/cuemby/ibc-relayer/pkg/eventbus"
	"github.com/cuemby/ibc-relayer/pkg/eventsource"
	"github.com/cuemby/ibc-relayer/pkg/healthsrv"
	"github.com/cuemby/ibc-relayer/pkg/log"
	"github.com/cuemby/ibc-relayer/pkg/metrics"
	"github.com/cuemby/ibc-relayer/pkg/relay"
	"github.com/cuemby/ibc-relayer/pkg/supervisor"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start relaying packets between two chains",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().String("config", "", "Path to a YAML configuration file (defaults used if omitted)")

	startCmd.Flags().String("chain-a-id", "", "Chain A id (required)")
	startCmd.Flags().String("chain-a-endpoint", "", "Chain A Tendermint websocket endpoint (required)")
	startCmd.Flags().String("chain-a-backend", "mock", "Chain A chain.Chain backend")
	startCmd.Flags().String("client-on-a", "", "Client id on chain A tracking chain B (required)")

	startCmd.Flags().String("chain-b-id", "", "Chain B id (required)")
	startCmd.Flags().String("chain-b-endpoint", "", "Chain B Tendermint websocket endpoint (required)")
	startCmd.Flags().String("chain-b-backend", "mock", "Chain B chain.Chain backend")
	startCmd.Flags().String("client-on-b", "", "Client id on chain B tracking chain A (required)")

	startCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "HTTP address for /metrics, /health, /ready, /live")
	startCmd.Flags().String("health-addr", "127.0.0.1:9091", "gRPC address for the health protocol")

	for _, f := range []string{"chain-a-id", "chain-a-endpoint", "client-on-a", "chain-b-id", "chain-b-endpoint", "client-on-b"} {
		_ = startCmd.MarkFlagRequired(f)
	}
}

func runStart(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
	}

	chainAID, _ := cmd.Flags().GetString("chain-a-id")
	chainAEndpoint, _ := cmd.Flags().GetString("chain-a-endpoint")
	chainABackend, _ := cmd.Flags().GetString("chain-a-backend")
	clientOnA, _ := cmd.Flags().GetString("client-on-a")

	chainBID, _ := cmd.Flags().GetString("chain-b-id")
	chainBEndpoint, _ := cmd.Flags().GetString("chain-b-endpoint")
	chainBBackend, _ := cmd.Flags().GetString("chain-b-backend")
	clientOnB, _ := cmd.Flags().GetString("client-on-b")

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	healthAddr, _ := cmd.Flags().GetString("health-addr")

	chainA, err := buildChain(chainABackend, chain.ID(chainAID))
	if err != nil {
		return fmt.Errorf("chain A: %w", err)
	}
	chainB, err := buildChain(chainBBackend, chain.ID(chainBID))
	if err != nil {
		return fmt.Errorf("chain B: %w", err)
	}

	busA := eventbus.NewBus(0)
	busB := eventbus.NewBus(0)

	reconnect := eventsource.ReconnectPolicy{
		InitialDelay: time.Duration(cfg.ReconnectInitialDelay),
		MaxDelay:     time.Duration(cfg.ReconnectMaxDelay),
		TotalCap:     time.Duration(cfg.ReconnectTotalCap),
	}
	sourceA := eventsource.NewSource(eventsource.Config{
		ChainID: chain.ID(chainAID), Endpoint: chainAEndpoint, Queries: cfg.SubscribeQueries, Reconnect: reconnect,
	}, eventsource.NewWSDialer(), busA, log.WithChainID(chainAID))
	sourceB := eventsource.NewSource(eventsource.Config{
		ChainID: chain.ID(chainBID), Endpoint: chainBEndpoint, Queries: cfg.SubscribeQueries, Reconnect: reconnect,
	}, eventsource.NewWSDialer(), busB, log.WithChainID(chainBID))

	bounds := cfg.BatcherBounds()
	batcherA := batcher.NewWorker(chain.ID(chainAID), chainA, bounds, log.WithChainID(chainAID))
	batcherB := batcher.NewWorker(chain.ID(chainBID), chainB, bounds, log.WithChainID(chainBID))
	batcherA.Start()
	batcherB.Start()

	rcAToB, err := relay.NewContext(chainA, chainB, chain.ClientID(clientOnA), chain.ClientID(clientOnB), batcherA, batcherB)
	if err != nil {
		return err
	}
	rcBToA, err := relay.NewContext(chainB, chainA, chain.ClientID(clientOnB), chain.ClientID(clientOnA), batcherB, batcherA)
	if err != nil {
		return err
	}

	supAToB := supervisor.New(rcAToB, busA, busB, supervisor.WithLogger(log.WithComponent("supervisor-a-to-b")))
	supBToA := supervisor.New(rcBToA, busB, busA, supervisor.WithLogger(log.WithComponent("supervisor-b-to-a")))

	collector := metrics.NewCollector(combinedStats{supAToB, supBToA})
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("supervisor", false, "starting")
	metrics.RegisterComponent("api", true, "ready")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", metricsAddr)

	healthServer := healthsrv.NewServer(log.WithComponent("healthsrv"))
	go func() {
		if err := healthServer.Start(healthAddr); err != nil {
			log.Logger.Error().Err(err).Msg("health server error")
		}
	}()
	fmt.Printf("✓ Health protocol: %s\n", healthAddr)

	errCh := make(chan error, 4)
	go func() { errCh <- sourceA.Run(ctx) }()
	go func() { errCh <- sourceB.Run(ctx) }()
	go func() { errCh <- supAToB.Run(ctx) }()
	go func() { errCh <- supBToA.Run(ctx) }()

	metrics.RegisterComponent("supervisor", true, "ready")
	fmt.Printf("✓ Relaying %s <-> %s. Press Ctrl+C to stop.\n", chainAID, chainBID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nFatal error: %v\n", err)
		}
	}

	cancel()
	sourceA.Shutdown()
	sourceB.Shutdown()
	batcherA.Stop()
	batcherB.Stop()
	healthServer.Stop()

	fmt.Println("✓ Shutdown complete")
	return nil
}

// combinedStats merges two supervisors' active-task gauges, one per relay
// direction, into a single metrics.StatsProvider.
type combinedStats struct {
	a, b interface {
		ActiveRelayTasks() map[metrics.ChainPair]int
	}
}

func (c combinedStats) ActiveRelayTasks() map[metrics.ChainPair]int {
	out := make(map[metrics.ChainPair]int)
	for pair, n := range c.a.ActiveRelayTasks() {
		out[pair] += n
	}
	for pair, n := range c.b.ActiveRelayTasks() {
		out[pair] += n
	}
	return out
}
