package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AdvisoryType is the machine-readable tag of a forecast advisory.
type AdvisoryType string

const (
	AdvisoryUrgentReorder    AdvisoryType = "urgent_reorder"
	AdvisoryReorderSoon      AdvisoryType = "reorder_soon"
	AdvisoryIncreasingDemand AdvisoryType = "increasing_demand"
	AdvisoryDecreasingDemand AdvisoryType = "decreasing_demand"
	AdvisoryPeakWarning      AdvisoryType = "peak_warning"
	AdvisoryStableDemand     AdvisoryType = "stable_demand"
	AdvisoryMarginWarning    AdvisoryType = "margin_warning"
)

// Priority ranks an advisory.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Advisory is a forecast-driven recommendation. The concrete types below form a closed set.
type Advisory interface {
	Type() AdvisoryType
	Priority() Priority
	Message() string
	Action() string
	isAdvisory()
}

// UrgentReorder fires when forecast demand exhausts stock within a week.
type UrgentReorder struct {
	DaysOfStock     float64         `json:"days_of_stock"`
	Quantity        int             `json:"quantity"`
	Cost            decimal.Decimal `json:"cost"`
	ExpectedRevenue decimal.Decimal `json:"expected_revenue"`
	ExpectedProfit  decimal.Decimal `json:"expected_profit"`
}

// ReorderSoon fires when forecast demand exhausts stock within two weeks.
type ReorderSoon struct {
	DaysOfStock float64         `json:"days_of_stock"`
	Quantity    int             `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
}

// IncreasingDemand fires when the last forecast week outpaces the first by more than 20%.
type IncreasingDemand struct {
	TrendPercent       float64         `json:"trend_percent"`
	ExtraQuantity      int             `json:"extra_quantity"`
	RevenueOpportunity decimal.Decimal `json:"revenue_opportunity"`
}

// DecreasingDemand fires when the last forecast week trails the first by more than 20%.
type DecreasingDemand struct {
	TrendPercent    float64 `json:"trend_percent"`
	DiscountPercent int     `json:"discount_percent"`
}

// PeakWarning fires when a single day exceeds 1.5x the average forecast demand.
type PeakWarning struct {
	PeakDemand float64   `json:"peak_demand"`
	PeakDate   time.Time `json:"peak_date"`
	AvgDemand  float64   `json:"avg_demand"`
	BufferQty  int       `json:"buffer_qty"`
}

// StableDemand fires when forecast demand varies little around a meaningful average.
type StableDemand struct {
	AvgDemand    float64 `json:"avg_demand"`
	BulkOrderQty int     `json:"bulk_order_qty"`
}

// MarginWarning fires when the gross margin falls under 20%.
type MarginWarning struct {
	MarginPercent float64         `json:"margin_percent"`
	ProfitPerUnit decimal.Decimal `json:"profit_per_unit"`
	HorizonProfit decimal.Decimal `json:"horizon_profit"`
	PriceIncrease decimal.Decimal `json:"price_increase"`
}

func (UrgentReorder) Type() AdvisoryType    { return AdvisoryUrgentReorder }
func (ReorderSoon) Type() AdvisoryType      { return AdvisoryReorderSoon }
func (IncreasingDemand) Type() AdvisoryType { return AdvisoryIncreasingDemand }
func (DecreasingDemand) Type() AdvisoryType { return AdvisoryDecreasingDemand }
func (PeakWarning) Type() AdvisoryType      { return AdvisoryPeakWarning }
func (StableDemand) Type() AdvisoryType     { return AdvisoryStableDemand }
func (MarginWarning) Type() AdvisoryType    { return AdvisoryMarginWarning }

func (UrgentReorder) Priority() Priority    { return PriorityHigh }
func (ReorderSoon) Priority() Priority      { return PriorityMedium }
func (IncreasingDemand) Priority() Priority { return PriorityHigh }
func (DecreasingDemand) Priority() Priority { return PriorityMedium }
func (PeakWarning) Priority() Priority      { return PriorityHigh }
func (StableDemand) Priority() Priority     { return PriorityLow }
func (MarginWarning) Priority() Priority    { return PriorityMedium }

func (UrgentReorder) isAdvisory()    {}
func (ReorderSoon) isAdvisory()      {}
func (IncreasingDemand) isAdvisory() {}
func (DecreasingDemand) isAdvisory() {}
func (PeakWarning) isAdvisory()      {}
func (StableDemand) isAdvisory()     {}
func (MarginWarning) isAdvisory()    {}

func (a UrgentReorder) Message() string {
	return fmt.Sprintf("CRITICAL: Stock will last only %d days", int(a.DaysOfStock))
}

func (a UrgentReorder) Action() string {
	return fmt.Sprintf("IMMEDIATE ORDER REQUIRED:\n• Quantity: %d units (forecast + 30%% buffer)\n• Investment: %s\n• Expected Revenue: %s\n• Expected Profit: %s\n• Place order today with expedited shipping",
		a.Quantity, a.Cost.StringFixed(0), a.ExpectedRevenue.StringFixed(0), a.ExpectedProfit.StringFixed(0))
}

func (a ReorderSoon) Message() string {
	return fmt.Sprintf("Stock sufficient for only %d days", int(a.DaysOfStock))
}

func (a ReorderSoon) Action() string {
	return fmt.Sprintf("PLAN TO ORDER:\n• Quantity: %d units (forecast + 20%% buffer)\n• Cost: %s\n• Order within 3-5 days",
		a.Quantity, a.Cost.StringFixed(0))
}

func (a IncreasingDemand) Message() string {
	return fmt.Sprintf("Demand SURGING: +%.1f%% growth trend", a.TrendPercent)
}

func (a IncreasingDemand) Action() string {
	return fmt.Sprintf("CAPITALIZE ON GROWTH:\n• Increase stock by %d units (30%% boost)\n• Consider bulk purchasing discount\n• Revenue opportunity: %s",
		a.ExtraQuantity, a.RevenueOpportunity.StringFixed(0))
}

func (a DecreasingDemand) Message() string {
	return fmt.Sprintf("Demand DECLINING: %.1f%% drop detected", -a.TrendPercent)
}

func (a DecreasingDemand) Action() string {
	return fmt.Sprintf("MITIGATE DECLINE:\n• Launch %d%% promotional discount\n• Run targeted marketing campaign\n• Bundle with popular products",
		a.DiscountPercent)
}

func (a PeakWarning) Message() string {
	return fmt.Sprintf("PEAK DEMAND FORECAST: %.0f units expected", a.PeakDemand)
}

func (a PeakWarning) Action() string {
	return fmt.Sprintf("PREPARE FOR PEAK:\n• Peak Date: Around %s\n• Peak Demand: %.0f units (vs avg %.0f)\n• Buffer Stock Needed: %d units",
		a.PeakDate.Format(DateLayout), a.PeakDemand, a.AvgDemand, a.BufferQty)
}

func (a StableDemand) Message() string {
	return "STABLE DEMAND: Highly predictable sales pattern"
}

func (a StableDemand) Action() string {
	return fmt.Sprintf("OPTIMIZE ORDERING:\n• Demand is very stable (~%.1f units/day)\n• Consider bulk order: %d units (45-day supply)\n• Reduce safety stock to minimize holding costs",
		a.AvgDemand, a.BulkOrderQty)
}

func (a MarginWarning) Message() string {
	return fmt.Sprintf("LOW PROFIT MARGIN: Only %.1f%%", a.MarginPercent)
}

func (a MarginWarning) Action() string {
	return fmt.Sprintf("IMPROVE PROFITABILITY:\n• Current Margin: %.1f%% (%s/unit)\n• Expected Profit: %s\n• Increase selling price by %s (10%%) or renegotiate with supplier",
		a.MarginPercent, a.ProfitPerUnit.StringFixed(2), a.HorizonProfit.StringFixed(0), a.PriceIncrease.StringFixed(2))
}

// AdvisoryView is the wire shape of an advisory.
type AdvisoryView struct {
	Type     AdvisoryType `json:"type"`
	Priority Priority     `json:"priority"`
	Message  string       `json:"message"`
	Action   string       `json:"action"`
	Details  Advisory     `json:"details"`
}

// ViewAdvisories flattens advisories for JSON responses and notifications.
func ViewAdvisories(list []Advisory) []AdvisoryView {
	out := make([]AdvisoryView, 0, len(list))
	for _, a := range list {
		out = append(out, AdvisoryView{
			Type:     a.Type(),
			Priority: a.Priority(),
			Message:  a.Message(),
			Action:   a.Action(),
			Details:  a,
		})
	}
	return out
}
