package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Relay task metrics
	RelayTasksActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relayer_relay_tasks_active",
			Help: "Number of packet relay tasks currently in flight, by chain pair",
		},
		[]string{"src_chain", "dst_chain"},
	)

	RelayTaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayer_relay_task_duration_seconds",
			Help:    "Time from SendPacket observation to AckPacket or timeout",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"src_chain", "dst_chain", "outcome"},
	)

	RelayTasksFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_relay_tasks_failed_total",
			Help: "Total number of packet relay tasks that ended in a non-timeout error",
		},
		[]string{"src_chain", "dst_chain"},
	)

	// Batcher metrics
	BatcherQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relayer_batcher_queue_depth",
			Help: "Number of messages in a target's batcher transaction at flush time",
		},
		[]string{"chain_id"},
	)

	BatcherTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_batcher_transactions_total",
			Help: "Total number of transactions submitted by the batcher, by result",
		},
		[]string{"chain_id", "result"},
	)

	BatcherFlushLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayer_batcher_flush_latency_seconds",
			Help:    "Time taken for send_messages to return during a batcher flush",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain_id"},
	)

	// Event source metrics
	EventBatchesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_event_batches_published_total",
			Help: "Total number of event batches published by a chain's event source",
		},
		[]string{"chain_id"},
	)

	EventSourceReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_event_source_reconnects_total",
			Help: "Total number of reconnect attempts made by a chain's event source",
		},
		[]string{"chain_id"},
	)

	EventSourceAbandonedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_event_source_abandoned_total",
			Help: "Total number of times an event source exhausted its reconnect budget",
		},
		[]string{"chain_id"},
	)
)

func init() {
	prometheus.MustRegister(RelayTasksActive)
	prometheus.MustRegister(RelayTaskDuration)
	prometheus.MustRegister(RelayTasksFailed)
	prometheus.MustRegister(BatcherQueueDepth)
	prometheus.MustRegister(BatcherTransactionsTotal)
	prometheus.MustRegister(BatcherFlushLatency)
	prometheus.MustRegister(EventBatchesPublished)
	prometheus.MustRegister(EventSourceReconnectsTotal)
	prometheus.MustRegister(EventSourceAbandonedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
