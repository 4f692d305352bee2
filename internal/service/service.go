// Package service wires the forecasting and alerting engines to the stores.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"StockSentinel/internal/advisor"
	"StockSentinel/internal/alert"
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/forecast"
	"StockSentinel/internal/model"
	"StockSentinel/internal/series"
	"StockSentinel/internal/store"
)

// Options tune the analysis windows.
type Options struct {
	ForecastDays int
	HistoryDays  int
	VelocityDays int
	Workers      int
}

func (o Options) withDefaults() Options {
	if o.ForecastDays <= 0 {
		o.ForecastDays = 30
	}
	if o.HistoryDays <= 0 {
		o.HistoryDays = 180
	}
	if o.VelocityDays <= 0 {
		o.VelocityDays = calculator.DefaultVelocityWindow
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// Deps are the collaborators a Service needs.
type Deps struct {
	Products  store.ProductStore
	Sales     store.SalesStore
	Forecasts store.ForecastStore
	Alerts    store.AlertStore
	Engine    *alert.Engine
}

// Service runs per-product forecasts and full-catalog alert passes.
type Service struct {
	products  store.ProductStore
	sales     store.SalesStore
	forecasts store.ForecastStore
	alerts    store.AlertStore
	engine    *alert.Engine
	velocity  *calculator.VelocityEstimator
	opts      Options

	productLocks keyedMutex
	// alertMu serializes clear-and-append alert passes.
	alertMu sync.Mutex
}

func New(d Deps, opts Options) *Service {
	opts = opts.withDefaults()
	engine := d.Engine
	if engine == nil {
		engine = alert.NewEngine()
	}
	return &Service{
		products:  d.Products,
		sales:     d.Sales,
		forecasts: d.Forecasts,
		alerts:    d.Alerts,
		engine:    engine,
		velocity:  calculator.NewVelocityEstimator(d.Sales, opts.VelocityDays),
		opts:      opts,
	}
}

// DefaultForecastDays is the horizon used when callers pass 0.
func (s *Service) DefaultForecastDays() int { return s.opts.ForecastDays }

// ForecastResult is the outcome of one forecast request.
type ForecastResult struct {
	Success         bool                   `json:"success"`
	ProductID       int64                  `json:"product_id"`
	ProductName     string                 `json:"product_name,omitempty"`
	Forecast        []model.ForecastPoint  `json:"forecast,omitempty"`
	Accuracy        *model.AccuracyMetrics `json:"accuracy,omitempty"`
	Recommendations []model.AdvisoryView   `json:"recommendations,omitempty"`
	Advisories      []model.Advisory       `json:"-"`
	Error           string                 `json:"error,omitempty"`
	ErrorKind       ErrorKind              `json:"error_kind,omitempty"`
}

func failed(id int64, err error) *ForecastResult {
	return &ForecastResult{ProductID: id, Error: err.Error(), ErrorKind: KindOf(err)}
}

// ForecastProduct trains a fresh model on the product's history, predicts days
// ahead, stores the forecast and derives advisories. Concurrent calls for the
// same product run one at a time. On failure the returned result carries the
// error text and kind alongside the error itself.
func (s *Service) ForecastProduct(ctx context.Context, productID int64, days int) (*ForecastResult, error) {
	if days <= 0 {
		days = s.opts.ForecastDays
	}

	unlock := s.productLocks.lock(productID)
	defer unlock()

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return failed(productID, err), err
	}
	events, err := s.sales.GetSales(ctx, productID, s.opts.HistoryDays)
	if err != nil {
		err = fmt.Errorf("load sales: %w", err)
		return failed(productID, err), err
	}
	points, err := series.Prepare(events)
	if err != nil {
		return failed(productID, err), err
	}

	f := forecast.NewForecaster()
	metrics, err := f.Train(points)
	if err != nil {
		return failed(productID, err), err
	}
	predicted, err := f.Predict(days)
	if err != nil {
		return failed(productID, err), err
	}
	if err := s.forecasts.SaveForecast(ctx, productID, predicted, metrics.Accuracy); err != nil {
		err = fmt.Errorf("save forecast: %w", err)
		return failed(productID, err), err
	}

	advisories := advisor.Synthesize(p, predicted)
	log.Printf("[INFO] forecast for %s (#%d): %d days, accuracy %.2f%%, %d advisories",
		p.Name, p.ID, days, metrics.Accuracy, len(advisories))
	return &ForecastResult{
		Success:         true,
		ProductID:       p.ID,
		ProductName:     p.Name,
		Forecast:        predicted,
		Accuracy:        &metrics,
		Recommendations: model.ViewAdvisories(advisories),
		Advisories:      advisories,
	}, nil
}

// RefreshSummary counts the outcome of a catalog-wide forecast refresh.
type RefreshSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// RefreshForecasts forecasts every product in catalog order. Products without
// enough history are skipped; other failures are counted and logged.
func (s *Service) RefreshForecasts(ctx context.Context, days int) (RefreshSummary, error) {
	var sum RefreshSummary
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return sum, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := s.ForecastProduct(ctx, p.ID, days)
		switch {
		case err == nil:
			sum.Succeeded++
		case res.ErrorKind.IsDataShortfall():
			sum.Skipped++
		default:
			sum.Failed++
			log.Printf("[WARN] forecast refresh for %s (#%d) failed: %v", p.Name, p.ID, err)
		}
	}
	log.Printf("[INFO] forecast refresh done: %d ok, %d skipped, %d failed", sum.Succeeded, sum.Skipped, sum.Failed)
	return sum, nil
}

// AnalyzeInventory replaces all unresolved alerts with a fresh pass over the
// catalog. Products are evaluated concurrently; a product whose inputs cannot be
// read is logged and left out. Alerts are returned and stored in catalog order.
func (s *Service) AnalyzeInventory(ctx context.Context) ([]model.Alert, error) {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if _, err := s.alerts.ClearUnresolvedAlerts(ctx); err != nil {
		return nil, fmt.Errorf("clear alerts: %w", err)
	}

	results := make([]*model.Alert, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, p := range products {
		g.Go(func() error {
			a, err := s.evaluate(gctx, p)
			if err != nil {
				log.Printf("[WARN] analysis skipped %s (#%d): %v", p.Name, p.ID, err)
				return nil
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Alert
	for _, a := range results {
		if a == nil {
			continue
		}
		if err := s.alerts.CreateAlert(ctx, a); err != nil {
			log.Printf("[WARN] store alert for product #%d: %v", a.ProductID, err)
			continue
		}
		out = append(out, *a)
	}
	log.Printf("[INFO] inventory analysis: %d products, %d alerts", len(products), len(out))
	return out, nil
}

func (s *Service) evaluate(ctx context.Context, p model.Product) (*model.Alert, error) {
	velocity, err := s.velocity.Velocity(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	stored, err := s.forecasts.GetForecast(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}
	var sum *float64
	if len(stored) > 0 {
		total := model.TotalDemand(stored)
		sum = &total
	}
	return s.engine.Evaluate(p, velocity, sum), nil
}

// keyedMutex hands out one mutex per product.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
