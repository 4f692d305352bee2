package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"StockSentinel/internal/model"
)

var forecastDays int

var forecastCmd = &cobra.Command{
	Use:   "forecast <product-id>",
	Short: "Train and print a demand forecast for one product",
	Args:  cobra.ExactArgs(1),
	RunE:  forecastProduct,
}

func init() {
	forecastCmd.Flags().IntVar(&forecastDays, "days", 0, "forecast horizon in days (default from config)")
	rootCmd.AddCommand(forecastCmd)
}

func forecastProduct(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.ForecastProduct(cmd.Context(), id, forecastDays)
	if err != nil {
		return fmt.Errorf("forecast (%s): %w", res.ErrorKind, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Forecast for %s (%d days)\n", res.ProductName, len(res.Forecast))
	if res.Accuracy != nil {
		fmt.Fprintf(out, "Accuracy %.1f%%  MAE %.2f  RMSE %.2f  R2 %.3f\n",
			res.Accuracy.Accuracy, res.Accuracy.MAE, res.Accuracy.RMSE, res.Accuracy.R2)
	}
	for _, p := range res.Forecast {
		fmt.Fprintf(out, "%s  %7.2f  [%6.2f, %6.2f]\n", p.Date.Format(model.DateLayout), p.PredictedDemand, p.LowerBound, p.UpperBound)
	}
	fmt.Fprintf(out, "Total demand: %.0f units\n", model.TotalDemand(res.Forecast))
	for _, r := range res.Recommendations {
		fmt.Fprintf(out, "\n[%s] %s\n  %s\n", r.Priority, r.Message, r.Action)
	}
	return nil
}
