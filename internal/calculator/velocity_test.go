package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

type stubSales struct {
	events []model.SaleEvent
	err    error
	window int
}

func (s *stubSales) GetSales(_ context.Context, _ int64, windowDays int) ([]model.SaleEvent, error) {
	s.window = windowDays
	return s.events, s.err
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateVelocity_DistinctDays(t *testing.T) {
	events := []model.SaleEvent{
		{Date: day(1), QuantitySold: 4},
		{Date: day(1), QuantitySold: 6},
		{Date: day(3), QuantitySold: 5},
	}
	// 15 units over 2 distinct sale days.
	if got := CalculateVelocity(events); got != 7.5 {
		t.Errorf("expected 7.5, got %v", got)
	}
	if got := CalculateVelocity(nil); got != 0 {
		t.Errorf("expected 0 for no sales, got %v", got)
	}
}

func TestDaysOfStock(t *testing.T) {
	if got := DaysOfStock(70, 5); got != 14 {
		t.Errorf("expected 14, got %v", got)
	}
	if got := DaysOfStock(70, 0); got != NoDepletionDays {
		t.Errorf("expected sentinel for zero velocity, got %v", got)
	}
}

func TestVelocityEstimator(t *testing.T) {
	src := &stubSales{events: []model.SaleEvent{{Date: day(2), QuantitySold: 9}}}
	est := NewVelocityEstimator(src, 0)
	v, err := est.Velocity(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 9 {
		t.Errorf("expected 9, got %v", v)
	}
	if src.window != DefaultVelocityWindow {
		t.Errorf("expected default window %d, got %d", DefaultVelocityWindow, src.window)
	}

	failing := NewVelocityEstimator(&stubSales{err: errors.New("boom")}, 7)
	if _, err := failing.Velocity(context.Background(), 1); err == nil {
		t.Error("expected store error to propagate")
	}
}
