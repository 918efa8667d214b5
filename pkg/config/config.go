// Package config loads the relayer's tunable options (§6) from a YAML file:
// read it, parse it over the defaults, then validate the result.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/ibc-relayer/pkg/batcher"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written as a human-readable
// string ("500ms", "1m30s") in YAML rather than a raw nanosecond count.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config holds the §6 configuration options, each with the spec's default.
type Config struct {
	MaxTxSize             int      `yaml:"max_tx_size"`
	MaxMessagesPerTx      int      `yaml:"max_messages_per_tx"`
	MaxBatchDelay         Duration `yaml:"max_batch_delay"`
	PerCallTimeout        Duration `yaml:"per_call_timeout"`
	ReconnectInitialDelay Duration `yaml:"reconnect_initial_delay"`
	ReconnectMaxDelay     Duration `yaml:"reconnect_max_delay"`
	ReconnectTotalCap     Duration `yaml:"reconnect_total_cap"`
	SubscribeQueries      []string `yaml:"subscribe_queries"`
}

// Default returns the configuration with every §6 default applied.
func Default() Config {
	bounds := batcher.DefaultBounds()
	return Config{
		MaxTxSize:             bounds.MaxTxSize,
		MaxMessagesPerTx:      bounds.MaxMessagesPerTx,
		MaxBatchDelay:         Duration(bounds.MaxDelay),
		PerCallTimeout:        Duration(30 * time.Second),
		ReconnectInitialDelay: Duration(1 * time.Second),
		ReconnectMaxDelay:     Duration(60 * time.Second),
		ReconnectTotalCap:     Duration(10 * time.Minute),
		SubscribeQueries:      []string{"NewBlock", "Tx"},
	}
}

// Load reads and parses a YAML configuration file, starting from Default
// and overriding only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every option is within a usable range.
func (c Config) Validate() error {
	if c.MaxTxSize <= 0 {
		return fmt.Errorf("config: max_tx_size must be positive, got %d", c.MaxTxSize)
	}
	if c.MaxMessagesPerTx <= 0 {
		return fmt.Errorf("config: max_messages_per_tx must be positive, got %d", c.MaxMessagesPerTx)
	}
	if c.MaxBatchDelay <= 0 {
		return fmt.Errorf("config: max_batch_delay must be positive, got %s", time.Duration(c.MaxBatchDelay))
	}
	if c.PerCallTimeout <= 0 {
		return fmt.Errorf("config: per_call_timeout must be positive, got %s", time.Duration(c.PerCallTimeout))
	}
	if c.ReconnectInitialDelay <= 0 || c.ReconnectMaxDelay <= 0 || c.ReconnectTotalCap <= 0 {
		return fmt.Errorf("config: reconnect delays must be positive")
	}
	if c.ReconnectInitialDelay > c.ReconnectMaxDelay {
		return fmt.Errorf("config: reconnect_initial_delay cannot exceed reconnect_max_delay")
	}
	if len(c.SubscribeQueries) == 0 {
		return fmt.Errorf("config: subscribe_queries must list at least one query")
	}
	return nil
}

// BatcherBounds projects the batching-related options onto batcher.Bounds.
func (c Config) BatcherBounds() batcher.Bounds {
	return batcher.Bounds{
		MaxTxSize:        c.MaxTxSize,
		MaxMessagesPerTx: c.MaxMessagesPerTx,
		MaxDelay:         time.Duration(c.MaxBatchDelay),
		CallTimeout:      time.Duration(c.PerCallTimeout),
	}
}
