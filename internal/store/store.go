// Package store persists the catalog, sales history, forecasts and alerts.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"StockSentinel/internal/model"
)

var (
	// ErrNotFound is returned when a product or alert does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a sale exceeds the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for non-positive sale or purchase quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ProductStore reads and mutates the product catalog.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	// AddProduct inserts a product, or adds stock to the existing product with the
	// same name and brand and refreshes its prices.
	AddProduct(ctx context.Context, p model.Product) (model.Product, error)
	RecordPurchase(ctx context.Context, id int64, quantity int) (model.Product, error)
}

// SalesStore records and reads sale events.
type SalesStore interface {
	// GetSales returns the product's sales dated within the trailing windowDays, oldest first.
	GetSales(ctx context.Context, productID int64, windowDays int) ([]model.SaleEvent, error)
	RecordSale(ctx context.Context, productID int64, quantity int, date time.Time) (model.SaleEvent, error)
}

// ForecastStore keeps the latest forecast per product.
type ForecastStore interface {
	// SaveForecast replaces every stored point for the product.
	SaveForecast(ctx context.Context, productID int64, points []model.ForecastPoint, accuracy float64) error
	GetForecast(ctx context.Context, productID int64) ([]model.ForecastPoint, error)
	// ForecastAccuracy is the validation accuracy saved with the forecast;
	// ok is false when the product has none.
	ForecastAccuracy(ctx context.Context, productID int64) (accuracy float64, ok bool, err error)
}

// AlertStore appends and resolves alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, a *model.Alert) error
	// ListUnresolvedAlerts orders by severity, critical first, then newest first.
	ListUnresolvedAlerts(ctx context.Context) ([]model.Alert, error)
	ResolveAlert(ctx context.Context, id string) error
	ClearUnresolvedAlerts(ctx context.Context) (int, error)
}

// Store is the full persistence surface.
type Store interface {
	ProductStore
	SalesStore
	ForecastStore
	AlertStore
	Close() error
}

type options struct {
	now func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithClock sets the clock used for sale windows and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Thresholds are the default stock levels for a category.
type Thresholds struct {
	ReorderLevel  int
	MaxStockLevel int
}

// CategoryThresholds lists the built-in categories.
var CategoryThresholds = map[string]Thresholds{
	"Cosmetics":          {100, 500},
	"Electronics":        {50, 200},
	"Clothing":           {80, 300},
	"Food & Beverages":   {200, 1000},
	"Home & Kitchen":     {100, 400},
	"Books & Stationery": {120, 500},
	"Sports & Fitness":   {60, 250},
	"Toys & Games":       {80, 300},
	"Health & Wellness":  {150, 600},
	"Automotive":         {40, 150},
}

// DefaultThresholds apply to categories not in CategoryThresholds.
var DefaultThresholds = Thresholds{ReorderLevel: 50, MaxStockLevel: 500}

// ThresholdsFor returns the category's thresholds or the defaults.
func ThresholdsFor(category string) Thresholds {
	if t, ok := CategoryThresholds[category]; ok {
		return t
	}
	return DefaultThresholds
}

// withDefaults fills unset thresholds from the product's category.
func withDefaults(p model.Product) model.Product {
	t := ThresholdsFor(p.Category)
	if p.ReorderLevel <= 0 {
		p.ReorderLevel = t.ReorderLevel
	}
	if p.MaxStockLevel <= 0 {
		p.MaxStockLevel = t.MaxStockLevel
	}
	return p
}

func windowStart(now time.Time, windowDays int) time.Time {
	return model.Day(now).AddDate(0, 0, -windowDays)
}

func sortProducts(ps []model.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Category != ps[j].Category {
			return ps[i].Category < ps[j].Category
		}
		return ps[i].Name < ps[j].Name
	})
}

func sortAlerts(as []model.Alert) {
	sort.SliceStable(as, func(i, j int) bool {
		ri, rj := as[i].Severity.Rank(), as[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return as[i].CreatedAt.After(as[j].CreatedAt)
	})
}
