// Package alert classifies a product's stock position into a single tiered alert.
package alert

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

const (
	// CriticalRatio is the share of the reorder level at or below which stock is critical.
	CriticalRatio = 0.8
	// OverstockRatio is the share of max stock at or above which stock is excessive.
	OverstockRatio = 0.8
	// InfoHorizonDays is the days-of-stock horizon under which a healthy item gets a reorder plan.
	InfoHorizonDays = 14.0
	// ReorderLeadDays is subtracted from days of stock to schedule the next order.
	ReorderLeadDays = 7.0

	criticalBuffer  = 50
	warningBuffer   = 30
	maxFlatDiscount = 35
)

// snapshot is everything a rule looks at for one product.
type snapshot struct {
	Product     model.Product
	Velocity    float64
	DaysOfStock float64
	ForecastSum *float64
}

type rule struct {
	Name  string
	Match func(s snapshot) bool
	Build func(s snapshot) draft
}

type draft struct {
	Type           model.AlertType
	Severity       model.Severity
	Message        string
	Recommendation model.Recommendation
	ActionRequired bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{"critical_understock", isCritical, buildCritical},
	{"warning_understock", isLow, buildWarning},
	{"overstock", isOverstock, buildOverstock},
	{"reorder_plan", isHealthyButDepleting, buildReorderPlan},
}

// Engine turns snapshots into alerts.
type Engine struct {
	newID func() string
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs overrides alert ID generation.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate classifies one product. It returns nil when the product needs no alert.
func (e *Engine) Evaluate(p model.Product, velocity float64, forecastSum *float64) *model.Alert {
	s := snapshot{
		Product:     p,
		Velocity:    velocity,
		DaysOfStock: calculator.DaysOfStock(p.CurrentQuantity, velocity),
		ForecastSum: forecastSum,
	}
	d, ok := classify(s)
	if !ok {
		return nil
	}
	return &model.Alert{
		ID:             e.newID(),
		ProductID:      p.ID,
		ProductName:    p.Name,
		Type:           d.Type,
		Severity:       d.Severity,
		Message:        d.Message,
		Recommendation: d.Recommendation,
		ActionRequired: d.ActionRequired,
		CurrentStock:   p.CurrentQuantity,
		ReorderLevel:   p.ReorderLevel,
		MaxStockLevel:  p.MaxStockLevel,
		ForecastDemand: forecastSum,
		CreatedAt:      e.now().UTC(),
	}
}

// classify runs the rule table and reports whether any rule matched.
func classify(s snapshot) (draft, bool) {
	for _, r := range rules {
		if r.Match(s) {
			return r.Build(s), true
		}
	}
	return draft{}, false
}

func isCritical(s snapshot) bool {
	return float64(s.Product.CurrentQuantity) <= float64(s.Product.ReorderLevel)*CriticalRatio
}

func isLow(s snapshot) bool {
	return s.Product.CurrentQuantity <= s.Product.ReorderLevel
}

func isOverstock(s snapshot) bool {
	return float64(s.Product.CurrentQuantity) >= float64(s.Product.MaxStockLevel)*OverstockRatio
}

func isHealthyButDepleting(s snapshot) bool {
	p := s.Product
	return s.Velocity > 0 &&
		p.CurrentQuantity > p.ReorderLevel &&
		float64(p.CurrentQuantity) < float64(p.MaxStockLevel)*OverstockRatio &&
		s.DaysOfStock < InfoHorizonDays
}

func buildCritical(s snapshot) draft {
	p := s.Product
	d := draft{Type: model.AlertUnderstock, Severity: model.SeverityCritical, ActionRequired: true}
	if s.Velocity > 0 {
		safe := supply(s.Velocity, 30)
		d.Message = fmt.Sprintf("CRITICAL: %s will run out in %.0f days", p.Name, s.DaysOfStock)
		d.Recommendation = model.StockoutRestock{
			Velocity:    s.Velocity,
			DaysOfStock: s.DaysOfStock,
			UrgentQty:   supply(s.Velocity, 14),
			SafeQty:     safe,
			Cost:        cost(safe, p.PurchasePrice),
		}
		return d
	}
	qty := p.ReorderLevel - p.CurrentQuantity + criticalBuffer
	d.Message = fmt.Sprintf("CRITICAL: %s critically low at %d units", p.Name, p.CurrentQuantity)
	d.Recommendation = model.EmergencyRestock{Quantity: qty, Cost: cost(qty, p.PurchasePrice)}
	return d
}

func buildWarning(s snapshot) draft {
	p := s.Product
	d := draft{
		Type:           model.AlertUnderstock,
		Severity:       model.SeverityWarning,
		Message:        fmt.Sprintf("WARNING: %s stock running low (%d units)", p.Name, p.CurrentQuantity),
		ActionRequired: true,
	}
	if s.Velocity > 0 {
		standard := supply(s.Velocity, 21)
		optimal := supply(s.Velocity, 30)
		d.Recommendation = model.LowStockRestock{
			Velocity:      s.Velocity,
			DaysOfStock:   s.DaysOfStock,
			StandardQty:   standard,
			OptimalQty:    optimal,
			StandardCost:  cost(standard, p.PurchasePrice),
			OptimalCost:   cost(optimal, p.PurchasePrice),
			MarkupPercent: markup(p),
		}
		return d
	}
	qty := p.ReorderLevel - p.CurrentQuantity + warningBuffer
	d.Recommendation = model.ReorderTopUp{Quantity: qty, Cost: cost(qty, p.PurchasePrice)}
	return d
}

// Clearance tiers keyed by days needed to sell the excess; first match wins.
var clearanceTiers = []struct {
	MinDays  float64
	Discount int
	Urgency  model.Urgency
}{
	{90, 30, model.UrgencyUrgent},
	{60, 20, model.UrgencyHigh},
}

var defaultClearance = struct {
	Discount int
	Urgency  model.Urgency
}{15, model.UrgencyMedium}

func buildOverstock(s snapshot) draft {
	p := s.Product
	excess := p.CurrentQuantity - p.MaxStockLevel
	d := draft{
		Type:     model.AlertOverstock,
		Severity: model.SeverityWarning,
		Message:  fmt.Sprintf("OVERSTOCK: %s has excess inventory (%d units)", p.Name, p.CurrentQuantity),
	}
	excessPercent := 0.0
	if p.MaxStockLevel > 0 {
		excessPercent = float64(excess) / float64(p.MaxStockLevel) * 100
	}
	if s.Velocity <= 0 {
		discount := int(math.Round(calculator.Clamp(excessPercent, 0, maxFlatDiscount)))
		d.Recommendation = model.FlatClearance{Excess: excess, DiscountPercent: discount}
		return d
	}

	daysToClear := float64(excess) / s.Velocity
	discount, urgency := defaultClearance.Discount, defaultClearance.Urgency
	for _, t := range clearanceTiers {
		if daysToClear > t.MinDays {
			discount, urgency = t.Discount, t.Urgency
			break
		}
	}

	selling := decimal.NewFromFloat(p.SellingPrice)
	discounted := selling.Mul(decimal.NewFromInt(int64(100 - discount))).Div(decimal.NewFromInt(100))
	d.Recommendation = model.ClearanceDiscount{
		Excess:          excess,
		ExcessPercent:   excessPercent,
		DaysToClear:     daysToClear,
		DiscountPercent: discount,
		Urgency:         urgency,
		DiscountedPrice: discounted,
		ProfitPerUnit:   discounted.Sub(decimal.NewFromFloat(p.PurchasePrice)),
		ExpectedRevenue: discounted.Mul(decimal.NewFromInt(int64(excess))),
		HoldingCost:     cost(excess, p.PurchasePrice),
	}
	return d
}

func buildReorderPlan(s snapshot) draft {
	inDays := int(s.DaysOfStock - ReorderLeadDays)
	return draft{
		Type:     model.AlertInfo,
		Severity: model.SeverityInfo,
		Message:  fmt.Sprintf("INFO: %s stock healthy, reorder in %d days", s.Product.Name, inDays),
		Recommendation: model.ReorderPlan{
			Velocity:      s.Velocity,
			DaysOfStock:   s.DaysOfStock,
			ReorderInDays: inDays,
			SuggestedQty:  int(s.Velocity * 30),
		},
	}
}

// supply is the rounded quantity covering days of sales at velocity.
func supply(velocity float64, days int) int {
	return int(math.Round(velocity * float64(days)))
}

func cost(qty int, unitPrice float64) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty)))
}

func markup(p model.Product) float64 {
	if p.PurchasePrice <= 0 {
		return 0
	}
	return (p.SellingPrice - p.PurchasePrice) / p.PurchasePrice * 100
}
