package healthsrv

import (
	"fmt"
	"net"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadinessService is the health service name readiness is reported under;
// the empty service name ("") is the standard liveness check.
const ReadinessService = "readiness"

const pollInterval = 5 * time.Second

// Server serves the gRPC health protocol over its own listener.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger zerolog.Logger
	stopCh chan struct{}
}

// NewServer creates a health server already reporting liveness as SERVING.
// Readiness starts NOT_SERVING until the first poll observes every
// critical component healthy.
func NewServer(logger zerolog.Logger) *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ReadinessService, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &Server{
		grpc:   grpcServer,
		health: hs,
		logger: logger.With().Str("component", "healthsrv").Logger(),
		stopCh: make(chan struct{}),
	}
}

// Start begins polling pkg/metrics readiness and serving gRPC on addr. It
// blocks until Stop is called or the listener fails.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("healthsrv: listen on %s: %w", addr, err)
	}

	go s.pollReadiness()

	s.logger.Info().Str("addr", addr).Msg("health server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the gRPC server and the readiness poller.
func (s *Server) Stop() {
	close(s.stopCh)
	s.grpc.GracefulStop()
}

func (s *Server) pollReadiness() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	s.updateReadiness()
	for {
		select {
		case <-ticker.C:
			s.updateReadiness()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Server) updateReadiness() {
	status := metrics.GetReadiness()
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status.Status == "ready" {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ReadinessService, serving)
}
