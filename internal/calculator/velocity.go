package calculator

import (
	"context"
	"fmt"

	"StockSentinel/internal/model"
)

// NoDepletionDays stands in for days of stock when nothing is selling.
const NoDepletionDays = 999.0

// DefaultVelocityWindow is the trailing window, in days, for sell-through rate.
const DefaultVelocityWindow = 30

// SalesSource returns a product's sale events over a trailing window.
type SalesSource interface {
	GetSales(ctx context.Context, productID int64, windowDays int) ([]model.SaleEvent, error)
}

// CalculateVelocity divides total units sold by the number of distinct days with a sale.
// Returns 0 when there are no events.
func CalculateVelocity(events []model.SaleEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	total := 0
	days := make(map[string]struct{})
	for _, e := range events {
		total += e.QuantitySold
		days[e.Date.Format(model.DateLayout)] = struct{}{}
	}
	return float64(total) / float64(len(days))
}

// DaysOfStock is how long current stock lasts at the given velocity.
func DaysOfStock(current int, velocity float64) float64 {
	if velocity <= 0 {
		return NoDepletionDays
	}
	return float64(current) / velocity
}

// VelocityEstimator reads trailing sales and reports average daily sell-through.
type VelocityEstimator struct {
	Sales      SalesSource
	WindowDays int
}

// NewVelocityEstimator creates an estimator over the given window (0 means 30 days).
func NewVelocityEstimator(sales SalesSource, windowDays int) *VelocityEstimator {
	if windowDays <= 0 {
		windowDays = DefaultVelocityWindow
	}
	return &VelocityEstimator{Sales: sales, WindowDays: windowDays}
}

// Velocity returns the product's average units sold per active sales day.
func (v *VelocityEstimator) Velocity(ctx context.Context, productID int64) (float64, error) {
	events, err := v.Sales.GetSales(ctx, productID, v.WindowDays)
	if err != nil {
		return 0, fmt.Errorf("get sales for velocity: %w", err)
	}
	return CalculateVelocity(events), nil
}
