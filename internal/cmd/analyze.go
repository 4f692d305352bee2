package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockSentinel/internal/notifier"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze inventory once and print the alerts",
	RunE:  analyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	alerts, err := a.svc.AnalyzeInventory(cmd.Context())
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No alerts. Inventory levels look healthy.")
		return nil
	}
	for _, al := range alerts {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", al.Severity, al.Message)
		if al.Recommendation != nil {
			fmt.Fprintln(cmd.OutOrStdout(), al.Recommendation.Text())
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if notifier.NeedsAttention(alerts) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d alerts, action required\n", len(alerts))
	}
	return nil
}
