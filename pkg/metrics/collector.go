package metrics

import "time"

// ChainPair identifies a source/destination chain pairing a relay task runs
// against, used to label the periodic gauge collection below.
type ChainPair struct {
	Src, Dst string
}

// StatsProvider is implemented by the supervisor to expose point-in-time
// counts that only make sense as a gauge snapshot rather than a counter
// updated inline by the code that changes them.
type StatsProvider interface {
	ActiveRelayTasks() map[ChainPair]int
}

// Collector polls a StatsProvider on a fixed interval and writes the
// results into the relayer_relay_tasks_active gauge.
type Collector struct {
	provider StatsProvider
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider) *Collector {
	return &Collector{
		provider: provider,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for pair, n := range c.provider.ActiveRelayTasks() {
		RelayTasksActive.WithLabelValues(pair.Src, pair.Dst).Set(float64(n))
	}
}
