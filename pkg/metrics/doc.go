/*
Package metrics defines and registers the relayer's Prometheus
instruments and exposes a small HTTP health/readiness/liveness surface
alongside them.

# Metrics Catalog

Relay:
  - relayer_relay_tasks_active{src_chain,dst_chain}: gauge
  - relayer_relay_task_duration_seconds{src_chain,dst_chain,outcome}: histogram
  - relayer_relay_tasks_failed_total{src_chain,dst_chain}: counter

Batcher:
  - relayer_batcher_queue_depth{chain_id}: gauge
  - relayer_batcher_transactions_total{chain_id,result}: counter
  - relayer_batcher_flush_latency_seconds{chain_id}: histogram

Event source:
  - relayer_event_batches_published_total{chain_id}: counter
  - relayer_event_source_reconnects_total{chain_id}: counter
  - relayer_event_source_abandoned_total{chain_id}: counter

# Usage

	timer := metrics.NewTimer()
	// ... flush a batch ...
	timer.ObserveDurationVec(metrics.BatcherFlushLatency, string(chainID))

	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/health", metrics.HealthHandler())
	http.HandleFunc("/ready", metrics.ReadyHandler())
	http.HandleFunc("/live", metrics.LivenessHandler())

See Also: https://prometheus.io/docs/practices/histograms/
*/
package metrics
