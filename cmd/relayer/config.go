package main

import (
	"fmt"

	"github.com/cuemby/ibc-relayer/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file operations",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a relayer configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s is valid\n", args[0])
		fmt.Printf("  max_tx_size: %d\n", cfg.MaxTxSize)
		fmt.Printf("  max_messages_per_tx: %d\n", cfg.MaxMessagesPerTx)
		fmt.Printf("  max_batch_delay: %s\n", cfg.MaxBatchDelay)
		fmt.Printf("  per_call_timeout: %s\n", cfg.PerCallTimeout)
		fmt.Printf("  reconnect: %s / %s / %s\n", cfg.ReconnectInitialDelay, cfg.ReconnectMaxDelay, cfg.ReconnectTotalCap)
		fmt.Printf("  subscribe_queries: %v\n", cfg.SubscribeQueries)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
