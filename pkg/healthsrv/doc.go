// Package healthsrv exposes the relayer's readiness and liveness over the
// standard gRPC health protocol, the way pkg/api/server.go serves its
// control surface as a plain gRPC service alongside the core loop.
//
// Liveness (grpc_health_v1.Check/Watch on service "") always reports
// SERVING once the process is up. Readiness (service "readiness") reports
// NOT_SERVING until every component pkg/metrics/health.go's
// GetReadiness considers critical ("supervisor", "api") has registered
// healthy.
package healthsrv
