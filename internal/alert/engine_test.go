package alert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }), WithIDs(func() string { return "alert-1" }))
}

func product(current, reorder, max int) model.Product {
	return model.Product{
		ID:              7,
		Name:            "Face Cream",
		Category:        "Cosmetics",
		CurrentQuantity: current,
		ReorderLevel:    reorder,
		MaxStockLevel:   max,
		PurchasePrice:   10,
		SellingPrice:    15,
	}
}

func TestEvaluate_CriticalWithVelocity(t *testing.T) {
	a := testEngine().Evaluate(product(70, 100, 500), 5, nil)
	require.NotNil(t, a)
	assert.Equal(t, model.AlertUnderstock, a.Type)
	assert.Equal(t, model.SeverityCritical, a.Severity)
	assert.True(t, a.ActionRequired)
	assert.Equal(t, "alert-1", a.ID)
	assert.Equal(t, fixedNow, a.CreatedAt)

	rec, ok := a.Recommendation.(model.StockoutRestock)
	require.True(t, ok, "got %T", a.Recommendation)
	assert.Equal(t, 70, rec.UrgentQty)
	assert.Equal(t, 150, rec.SafeQty)
	assert.True(t, rec.Cost.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 14.0, rec.DaysOfStock)
}

func TestEvaluate_WarningWithoutVelocity(t *testing.T) {
	a := testEngine().Evaluate(product(45, 50, 500), 0, nil)
	require.NotNil(t, a)
	assert.Equal(t, model.SeverityWarning, a.Severity)
	rec, ok := a.Recommendation.(model.ReorderTopUp)
	require.True(t, ok, "got %T", a.Recommendation)
	assert.Equal(t, 35, rec.Quantity)
}

func TestEvaluate_CriticalWithoutVelocity(t *testing.T) {
	a := testEngine().Evaluate(product(40, 50, 500), 0, nil)
	require.NotNil(t, a)
	assert.Equal(t, model.SeverityCritical, a.Severity)
	rec, ok := a.Recommendation.(model.EmergencyRestock)
	require.True(t, ok, "got %T", a.Recommendation)
	assert.Equal(t, 60, rec.Quantity)
	assert.True(t, rec.Cost.Equal(decimal.NewFromInt(600)))
}

func TestEvaluate_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		velocity float64
		severity model.Severity
		typ      model.AlertType
		none     bool
	}{
		{"exactly 0.8 reorder is critical", 80, 5, model.SeverityCritical, model.AlertUnderstock, false},
		{"just above 0.8 reorder is warning", 81, 5, model.SeverityWarning, model.AlertUnderstock, false},
		{"exactly reorder is warning", 100, 5, model.SeverityWarning, model.AlertUnderstock, false},
		{"exactly 0.8 max is overstock", 400, 5, model.SeverityWarning, model.AlertOverstock, false},
		{"above max is overstock", 650, 0, model.SeverityWarning, model.AlertOverstock, false},
		{"healthy depleting gets reorder plan", 120, 10, model.SeverityInfo, model.AlertInfo, false},
		{"healthy with long cover gets nothing", 300, 10, "", "", true},
		{"healthy without velocity gets nothing", 300, 0, "", "", true},
		{"14 days of stock is not under horizon", 140, 10, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testEngine().Evaluate(product(tt.current, 100, 500), tt.velocity, nil)
			if tt.none {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, tt.severity, a.Severity)
			assert.Equal(t, tt.typ, a.Type)
		})
	}
}

func TestEvaluate_OverstockTiers(t *testing.T) {
	tests := []struct {
		current  int
		velocity float64
		discount int
		urgency  model.Urgency
	}{
		{1000, 5, 30, model.UrgencyUrgent}, // 100 days to clear
		{850, 5, 20, model.UrgencyHigh},    // 70 days
		{600, 5, 15, model.UrgencyMedium},  // 20 days
		{950, 5, 20, model.UrgencyHigh},    // exactly 90 days
	}
	for _, tt := range tests {
		a := testEngine().Evaluate(product(tt.current, 100, 500), tt.velocity, nil)
		require.NotNil(t, a)
		rec, ok := a.Recommendation.(model.ClearanceDiscount)
		require.True(t, ok, "current=%d got %T", tt.current, a.Recommendation)
		assert.Equal(t, tt.discount, rec.DiscountPercent, "current=%d", tt.current)
		assert.Equal(t, tt.urgency, rec.Urgency, "current=%d", tt.current)
		assert.False(t, a.ActionRequired)
	}

	a := testEngine().Evaluate(product(1000, 100, 500), 5, nil)
	rec := a.Recommendation.(model.ClearanceDiscount)
	assert.Equal(t, 500, rec.Excess)
	assert.True(t, rec.DiscountedPrice.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, rec.ProfitPerUnit.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, rec.ExpectedRevenue.Equal(decimal.NewFromInt(5250)))
	assert.True(t, rec.HoldingCost.Equal(decimal.NewFromInt(5000)))
}

func TestEvaluate_FlatClearance(t *testing.T) {
	tests := []struct {
		current  int
		discount int
	}{
		{600, 20},
		{1000, 35},
		{450, 0},
	}
	for _, tt := range tests {
		a := testEngine().Evaluate(product(tt.current, 100, 500), 0, nil)
		require.NotNil(t, a)
		rec, ok := a.Recommendation.(model.FlatClearance)
		require.True(t, ok, "got %T", a.Recommendation)
		assert.Equal(t, tt.discount, rec.DiscountPercent, "current=%d", tt.current)
	}
}

func TestEvaluate_ReorderPlan(t *testing.T) {
	a := testEngine().Evaluate(product(120, 100, 500), 10, nil)
	require.NotNil(t, a)
	rec, ok := a.Recommendation.(model.ReorderPlan)
	require.True(t, ok, "got %T", a.Recommendation)
	assert.Equal(t, 5, rec.ReorderInDays)
	assert.Equal(t, 300, rec.SuggestedQty)
	assert.False(t, a.ActionRequired)
}

func TestEvaluate_CarriesForecastSum(t *testing.T) {
	sum := 240.5
	a := testEngine().Evaluate(product(70, 100, 500), 5, &sum)
	require.NotNil(t, a)
	require.NotNil(t, a.ForecastDemand)
	assert.Equal(t, sum, *a.ForecastDemand)
}

// Every stock level lands in exactly the tier its thresholds call for, or none.
func TestEvaluate_TiersAreExclusive(t *testing.T) {
	e := testEngine()
	for _, velocity := range []float64{0, 0.5, 3, 40} {
		for current := 0; current <= 700; current++ {
			p := product(current, 100, 500)
			a := e.Evaluate(p, velocity, nil)
			switch {
			case current <= 80:
				require.Equal(t, model.SeverityCritical, a.Severity)
			case current <= 100:
				require.Equal(t, model.SeverityWarning, a.Severity)
				require.Equal(t, model.AlertUnderstock, a.Type)
			case current >= 400:
				require.Equal(t, model.AlertOverstock, a.Type)
			case velocity > 0 && float64(current)/velocity < InfoHorizonDays:
				require.Equal(t, model.AlertInfo, a.Type)
			default:
				require.Nil(t, a, "current=%d velocity=%v", current, velocity)
			}
		}
	}
}
