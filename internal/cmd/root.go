// Package cmd holds the stocksentinel command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stocksentinel",
	Short: "StockSentinel - demand forecasting and inventory alerts",
	Long: `StockSentinel forecasts daily product demand from sales history,
raises stock alerts with restock or clearance recommendations, and
reports them over an HTTP API and Telegram.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
