package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockSentinel/internal/seed"
)

var (
	seedValue uint64
	seedDays  int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog and a synthetic sales history",
	RunE:  seedData,
}

func init() {
	seedCmd.Flags().Uint64Var(&seedValue, "seed", seed.DefaultSeed, "random seed")
	seedCmd.Flags().IntVar(&seedDays, "days", seed.DefaultDays, "days of sales history")
	rootCmd.AddCommand(seedCmd)
}

func seedData(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	g := seed.NewGenerator(a.store, a.store, seedValue)
	g.Days = seedDays
	sum, err := g.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products with %d sales (%d restocks)\n", sum.Products, sum.Sales, sum.Restocks)
	return nil
}
