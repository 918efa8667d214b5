package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relayer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_tx_size: 4096
reconnect_max_delay: 30s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4096, cfg.MaxTxSize)
	require.Equal(t, Duration(30*time.Second), cfg.ReconnectMaxDelay)

	def := Default()
	require.Equal(t, def.MaxMessagesPerTx, cfg.MaxMessagesPerTx)
	require.Equal(t, def.SubscribeQueries, cfg.SubscribeQueries)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relayer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`max_batch_delay: "not-a-duration"`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeOptions(t *testing.T) {
	cfg := Default()
	cfg.MaxTxSize = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SubscribeQueries = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ReconnectInitialDelay = Duration(time.Minute)
	cfg.ReconnectMaxDelay = Duration(time.Second)
	require.Error(t, cfg.Validate())
}

func TestBatcherBoundsProjection(t *testing.T) {
	cfg := Default()
	bounds := cfg.BatcherBounds()
	require.Equal(t, cfg.MaxTxSize, bounds.MaxTxSize)
	require.Equal(t, cfg.MaxMessagesPerTx, bounds.MaxMessagesPerTx)
	require.Equal(t, time.Duration(cfg.MaxBatchDelay), bounds.MaxDelay)
	require.Equal(t, time.Duration(cfg.PerCallTimeout), bounds.CallTimeout)
}
