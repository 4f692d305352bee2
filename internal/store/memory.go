package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockSentinel/internal/model"
)

// MemoryStore keeps everything in process memory. Used in tests and when no
// database path is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	opts      options
	nextID    int64
	products  map[int64]model.Product
	sales     map[int64][]model.SaleEvent
	forecasts map[int64][]model.ForecastPoint
	accuracy  map[int64]float64
	alerts    []model.Alert
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:      buildOptions(opts),
		products:  make(map[int64]model.Product),
		sales:     make(map[int64][]model.SaleEvent),
		forecasts: make(map[int64][]model.ForecastPoint),
		accuracy:  make(map[int64]float64),
	}
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id int64) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *MemoryStore) AddProduct(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.products {
		if existing.Name == p.Name && existing.Brand == p.Brand {
			existing.CurrentQuantity += p.CurrentQuantity
			existing.PurchasePrice = p.PurchasePrice
			existing.SellingPrice = p.SellingPrice
			m.products[id] = existing
			return existing, nil
		}
	}
	m.nextID++
	p = withDefaults(p)
	p.ID = m.nextID
	m.products[p.ID] = p
	return p, nil
}

func (m *MemoryStore) RecordPurchase(_ context.Context, id int64, quantity int) (model.Product, error) {
	if quantity <= 0 {
		return model.Product{}, ErrInvalidQuantity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p.CurrentQuantity += quantity
	m.products[id] = p
	return p, nil
}

func (m *MemoryStore) GetSales(_ context.Context, productID int64, windowDays int) ([]model.SaleEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := windowStart(m.opts.now(), windowDays)
	var out []model.SaleEvent
	for _, e := range m.sales[productID] {
		if !e.Date.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) RecordSale(_ context.Context, productID int64, quantity int, date time.Time) (model.SaleEvent, error) {
	if quantity <= 0 {
		return model.SaleEvent{}, ErrInvalidQuantity
	}
	if date.IsZero() {
		date = m.opts.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return model.SaleEvent{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if p.CurrentQuantity < quantity {
		return model.SaleEvent{}, fmt.Errorf("product %d has %d, sale of %d: %w", productID, p.CurrentQuantity, quantity, ErrInsufficientStock)
	}
	p.CurrentQuantity -= quantity
	m.products[productID] = p

	e := model.SaleEvent{ProductID: productID, Date: model.Day(date), QuantitySold: quantity, UnitPrice: p.SellingPrice}
	list := append(m.sales[productID], e)
	// Keep chronological order for out-of-order inserts.
	for i := len(list) - 1; i > 0 && list[i].Date.Before(list[i-1].Date); i-- {
		list[i], list[i-1] = list[i-1], list[i]
	}
	m.sales[productID] = list
	return e, nil
}

func (m *MemoryStore) SaveForecast(_ context.Context, productID int64, points []model.ForecastPoint, accuracy float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(points) == 0 {
		delete(m.forecasts, productID)
		delete(m.accuracy, productID)
		return nil
	}
	m.forecasts[productID] = append([]model.ForecastPoint(nil), points...)
	m.accuracy[productID] = accuracy
	return nil
}

func (m *MemoryStore) GetForecast(_ context.Context, productID int64) ([]model.ForecastPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ForecastPoint(nil), m.forecasts[productID]...), nil
}

func (m *MemoryStore) ForecastAccuracy(_ context.Context, productID int64) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accuracy[productID]
	return acc, ok, nil
}

func (m *MemoryStore) CreateAlert(_ context.Context, a *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.opts.now().UTC()
	}
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *MemoryStore) ListUnresolvedAlerts(_ context.Context) ([]model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Alert
	for _, a := range m.alerts {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func (m *MemoryStore) ResolveAlert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Resolved = true
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id, ErrNotFound)
}

func (m *MemoryStore) ClearUnresolvedAlerts(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.alerts[:0]
	removed := 0
	for _, a := range m.alerts {
		if a.Resolved {
			kept = append(kept, a)
		} else {
			removed++
		}
	}
	m.alerts = kept
	return removed, nil
}

func (m *MemoryStore) Close() error { return nil }
