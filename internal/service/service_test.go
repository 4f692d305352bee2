package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/model"
	"StockSentinel/internal/store"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, sales store.SalesStore, st *store.MemoryStore) *Service {
	t.Helper()
	if sales == nil {
		sales = st
	}
	return New(Deps{
		Products:  st,
		Sales:     sales,
		Forecasts: st,
		Alerts:    st,
		Engine:    alert.NewEngine(alert.WithClock(func() time.Time { return now })),
	}, Options{Workers: 2})
}

func seedProduct(t *testing.T, st *store.MemoryStore, name string, stock, days, perDay int) model.Product {
	t.Helper()
	ctx := context.Background()
	p, err := st.AddProduct(ctx, model.Product{
		Name: name, Brand: "Acme", Category: "Cosmetics",
		CurrentQuantity: stock + days*perDay, PurchasePrice: 10, SellingPrice: 15,
	})
	require.NoError(t, err)
	for d := days - 1; d >= 0; d-- {
		_, err := st.RecordSale(ctx, p.ID, perDay, now.AddDate(0, 0, -d))
		require.NoError(t, err)
	}
	p, err = st.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func TestForecastProduct(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	p := seedProduct(t, st, "Serum", 5000, 150, 5)

	res, err := svc.ForecastProduct(context.Background(), p.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Forecast, 30)
	require.NotNil(t, res.Accuracy)
	assert.InDelta(t, 100, res.Accuracy.Accuracy, 1e-6)
	for _, f := range res.Forecast {
		assert.InDelta(t, 5, f.PredictedDemand, 1e-9)
	}
	assert.Equal(t, model.Day(now).AddDate(0, 0, 1), res.Forecast[0].Date)

	saved, err := st.GetForecast(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Forecast, saved)
}

func TestForecastProductFailures(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	thin := seedProduct(t, st, "Rare", 100, 10, 1)
	// 80 sales over 40 days: enough records, too short a span.
	busy := seedProduct(t, st, "Busy", 100, 40, 2)
	for d := 39; d >= 0; d-- {
		_, err := st.RecordSale(context.Background(), busy.ID, 2, now.AddDate(0, 0, -d))
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		id   int64
		kind ErrorKind
	}{
		{"unknown product", 999, KindNotFound},
		{"too little history", thin.ID, KindInsufficientData},
		{"too short a span", busy.ID, KindInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.ForecastProduct(context.Background(), tt.id, 7)
			require.Error(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.kind, res.ErrorKind)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Empty(t, res.Forecast)
		})
	}
}

func TestForecastProductSerializesPerProduct(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	p := seedProduct(t, st, "Serum", 5000, 150, 5)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.ForecastProduct(context.Background(), p.ID, 14)
			assert.NoError(t, err)
			assert.Len(t, res.Forecast, 14)
		}()
	}
	wg.Wait()

	saved, err := st.GetForecast(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 14)
}

func TestAnalyzeInventory(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	ctx := context.Background()

	// Cosmetics thresholds are reorder 100, max 500.
	low := seedProduct(t, st, "A Low", 70, 10, 5)
	seedProduct(t, st, "B Fine", 300, 10, 5)
	over := seedProduct(t, st, "C Over", 900, 10, 5)

	alerts, err := svc.AnalyzeInventory(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, low.ID, alerts[0].ProductID)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Nil(t, alerts[0].ForecastDemand)
	assert.Equal(t, over.ID, alerts[1].ProductID)
	assert.Equal(t, model.AlertOverstock, alerts[1].Type)

	// A second pass replaces rather than duplicates.
	_, err = svc.AnalyzeInventory(ctx)
	require.NoError(t, err)
	unresolved, err := st.ListUnresolvedAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, unresolved, 2)

	// Stored forecasts are summed onto the alert.
	require.NoError(t, st.SaveForecast(ctx, low.ID, []model.ForecastPoint{
		model.NewForecastPoint(now, 4), model.NewForecastPoint(now.AddDate(0, 0, 1), 6),
	}, 90))
	alerts, err = svc.AnalyzeInventory(ctx)
	require.NoError(t, err)
	require.NotNil(t, alerts[0].ForecastDemand)
	assert.Equal(t, 10.0, *alerts[0].ForecastDemand)
}

func TestAnalyzeInventoryConcurrentPasses(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	seedProduct(t, st, "A Low", 70, 10, 5)
	seedProduct(t, st, "C Over", 900, 10, 5)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AnalyzeInventory(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	unresolved, err := st.ListUnresolvedAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, unresolved, 2)
}

type flakySales struct {
	*store.MemoryStore
	badID int64
}

func (f flakySales) GetSales(ctx context.Context, productID int64, windowDays int) ([]model.SaleEvent, error) {
	if productID == f.badID {
		return nil, errors.New("disk on fire")
	}
	return f.MemoryStore.GetSales(ctx, productID, windowDays)
}

func TestAnalyzeInventoryIsolatesFailures(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	bad := seedProduct(t, st, "A Broken", 70, 10, 5)
	good := seedProduct(t, st, "B Low", 60, 10, 5)
	svc := newService(t, flakySales{MemoryStore: st, badID: bad.ID}, st)

	alerts, err := svc.AnalyzeInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, good.ID, alerts[0].ProductID)
}

func TestRefreshForecasts(t *testing.T) {
	st := store.NewMemoryStore(store.WithClock(func() time.Time { return now }))
	svc := newService(t, nil, st)
	seedProduct(t, st, "Serum", 5000, 150, 5)
	seedProduct(t, st, "Rare", 100, 10, 1)

	sum, err := svc.RefreshForecasts(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, RefreshSummary{Succeeded: 1, Skipped: 1}, sum)
}
