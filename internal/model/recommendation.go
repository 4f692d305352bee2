package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecommendationKind discriminates the closed set of alert recommendations.
type RecommendationKind string

const (
	KindStockoutRestock   RecommendationKind = "stockout_restock"
	KindEmergencyRestock  RecommendationKind = "emergency_restock"
	KindLowStockRestock   RecommendationKind = "low_stock_restock"
	KindReorderTopUp      RecommendationKind = "reorder_top_up"
	KindClearanceDiscount RecommendationKind = "clearance_discount"
	KindFlatClearance     RecommendationKind = "flat_clearance"
	KindReorderPlan       RecommendationKind = "reorder_plan"
)

// Recommendation is the structured advice attached to an alert. Implementations are
// the concrete types in this file; each carries a fixed field set.
type Recommendation interface {
	Kind() RecommendationKind
	Text() string
	isRecommendation()
}

// StockoutRestock is the critical understock advice when sales velocity is known.
type StockoutRestock struct {
	Velocity    float64         `json:"velocity"`
	DaysOfStock float64         `json:"days_of_stock"`
	UrgentQty   int             `json:"urgent_qty"`
	SafeQty     int             `json:"safe_qty"`
	Cost        decimal.Decimal `json:"cost"`
}

// EmergencyRestock is the critical understock advice when nothing sold recently.
type EmergencyRestock struct {
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// LowStockRestock is the warning understock advice when sales velocity is known.
type LowStockRestock struct {
	Velocity      float64         `json:"velocity"`
	DaysOfStock   float64         `json:"days_of_stock"`
	StandardQty   int             `json:"standard_qty"`
	OptimalQty    int             `json:"optimal_qty"`
	StandardCost  decimal.Decimal `json:"standard_cost"`
	OptimalCost   decimal.Decimal `json:"optimal_cost"`
	MarkupPercent float64         `json:"markup_percent"`
}

// ReorderTopUp is the warning understock advice when nothing sold recently.
type ReorderTopUp struct {
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// ClearanceDiscount is the overstock advice when sales velocity is known.
type ClearanceDiscount struct {
	Excess          int             `json:"excess"`
	ExcessPercent   float64         `json:"excess_percent"`
	DaysToClear     float64         `json:"days_to_clear"`
	DiscountPercent int             `json:"discount_percent"`
	Urgency         Urgency         `json:"urgency"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	ProfitPerUnit   decimal.Decimal `json:"profit_per_unit"`
	ExpectedRevenue decimal.Decimal `json:"expected_revenue"`
	HoldingCost     decimal.Decimal `json:"holding_cost"`
}

// FlatClearance is the overstock advice when nothing sold recently.
type FlatClearance struct {
	Excess          int `json:"excess"`
	DiscountPercent int `json:"discount_percent"`
}

// ReorderPlan is the healthy-stock advisory for items that will need a reorder soon.
type ReorderPlan struct {
	Velocity      float64 `json:"velocity"`
	DaysOfStock   float64 `json:"days_of_stock"`
	ReorderInDays int     `json:"reorder_in_days"`
	SuggestedQty  int     `json:"suggested_qty"`
}

func (StockoutRestock) Kind() RecommendationKind   { return KindStockoutRestock }
func (EmergencyRestock) Kind() RecommendationKind  { return KindEmergencyRestock }
func (LowStockRestock) Kind() RecommendationKind   { return KindLowStockRestock }
func (ReorderTopUp) Kind() RecommendationKind      { return KindReorderTopUp }
func (ClearanceDiscount) Kind() RecommendationKind { return KindClearanceDiscount }
func (FlatClearance) Kind() RecommendationKind     { return KindFlatClearance }
func (ReorderPlan) Kind() RecommendationKind       { return KindReorderPlan }

func (StockoutRestock) isRecommendation()   {}
func (EmergencyRestock) isRecommendation()  {}
func (LowStockRestock) isRecommendation()   {}
func (ReorderTopUp) isRecommendation()      {}
func (ClearanceDiscount) isRecommendation() {}
func (FlatClearance) isRecommendation()     {}
func (ReorderPlan) isRecommendation()       {}

func (r StockoutRestock) Text() string {
	var b strings.Builder
	b.WriteString("IMMEDIATE ACTION REQUIRED:\n")
	b.WriteString(fmt.Sprintf("• Sales Velocity: %.1f units/day\n", r.Velocity))
	b.WriteString(fmt.Sprintf("• Days Until Stockout: %.0f days\n", r.DaysOfStock))
	b.WriteString(fmt.Sprintf("• Minimum Order: %d units (2-week supply)\n", r.UrgentQty))
	b.WriteString(fmt.Sprintf("• Recommended Order: %d units (1-month supply)\n", r.SafeQty))
	b.WriteString(fmt.Sprintf("• Cost: %s\n", r.Cost.StringFixed(0)))
	b.WriteString("• Place an urgent order and consider expedited shipping")
	return b.String()
}

func (r EmergencyRestock) Text() string {
	return fmt.Sprintf("CRITICAL STOCK ALERT:\n• Order %d units immediately\n• Cost: %s\n• Restores stock to reorder level plus safety buffer",
		r.Quantity, r.Cost.StringFixed(0))
}

func (r LowStockRestock) Text() string {
	var b strings.Builder
	b.WriteString("LOW STOCK WARNING:\n")
	b.WriteString(fmt.Sprintf("• Sales Velocity: %.1f units/day\n", r.Velocity))
	b.WriteString(fmt.Sprintf("• Days Remaining: %.0f days\n", r.DaysOfStock))
	b.WriteString(fmt.Sprintf("• Standard Order: %d units (3-week supply), cost %s\n", r.StandardQty, r.StandardCost.StringFixed(0)))
	b.WriteString(fmt.Sprintf("• Optimal Order: %d units (1-month supply), cost %s\n", r.OptimalQty, r.OptimalCost.StringFixed(0)))
	b.WriteString(fmt.Sprintf("• Expected markup: %.1f%%\n", r.MarkupPercent))
	b.WriteString("• Place order within 3-5 days")
	return b.String()
}

func (r ReorderTopUp) Text() string {
	return fmt.Sprintf("Stock below reorder point:\n• Order %d units within next week\n• Cost: %s",
		r.Quantity, r.Cost.StringFixed(0))
}

func (r ClearanceDiscount) Text() string {
	var b strings.Builder
	b.WriteString("OVERSTOCK ANALYSIS:\n")
	b.WriteString(fmt.Sprintf("• Excess Stock: %d units (%.1f%% over max)\n", r.Excess, r.ExcessPercent))
	b.WriteString(fmt.Sprintf("• Days to Clear at Current Rate: %.0f days\n", r.DaysToClear))
	b.WriteString(fmt.Sprintf("• Holding Cost: %s\n", r.HoldingCost.StringFixed(0)))
	b.WriteString(fmt.Sprintf("• Urgency Level: %s\n", r.Urgency))
	b.WriteString(fmt.Sprintf("• Recommended Discount: %d%%\n", r.DiscountPercent))
	b.WriteString(fmt.Sprintf("• Discounted Price: %s\n", r.DiscountedPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("• Profit per Unit: %s\n", r.ProfitPerUnit.StringFixed(2)))
	b.WriteString(fmt.Sprintf("• Expected Revenue: %s", r.ExpectedRevenue.StringFixed(0)))
	return b.String()
}

func (r FlatClearance) Text() string {
	return fmt.Sprintf("OVERSTOCK DETECTED:\n• Excess: %d units\n• Recommended Action: %d%% discount\n• Alternative: bundle deals or clearance sale",
		r.Excess, r.DiscountPercent)
}

func (r ReorderPlan) Text() string {
	return fmt.Sprintf("STOCK STATUS - GOOD:\n• Sales Rate: %.1f units/day\n• Stock will last ~%.0f days\n• Consider reordering in %d days\n• Suggested quantity: %d units",
		r.Velocity, r.DaysOfStock, r.ReorderInDays, r.SuggestedQty)
}

type recommendationEnvelope struct {
	Kind RecommendationKind `json:"kind"`
	Text string             `json:"text"`
	Data json.RawMessage    `json:"data"`
}

// EncodeRecommendation serializes a recommendation with its kind tag for storage.
func EncodeRecommendation(r Recommendation) ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", r.Kind(), err)
	}
	return json.Marshal(recommendationEnvelope{Kind: r.Kind(), Text: r.Text(), Data: data})
}

// DecodeRecommendation restores a recommendation written by EncodeRecommendation.
func DecodeRecommendation(raw []byte) (Recommendation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env recommendationEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}
	var r Recommendation
	var err error
	switch env.Kind {
	case KindStockoutRestock:
		r, err = decodeAs[StockoutRestock](env.Data)
	case KindEmergencyRestock:
		r, err = decodeAs[EmergencyRestock](env.Data)
	case KindLowStockRestock:
		r, err = decodeAs[LowStockRestock](env.Data)
	case KindReorderTopUp:
		r, err = decodeAs[ReorderTopUp](env.Data)
	case KindClearanceDiscount:
		r, err = decodeAs[ClearanceDiscount](env.Data)
	case KindFlatClearance:
		r, err = decodeAs[FlatClearance](env.Data)
	case KindReorderPlan:
		r, err = decodeAs[ReorderPlan](env.Data)
	default:
		return nil, fmt.Errorf("decode recommendation: unknown kind %q", env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return r, nil
}

func decodeAs[T Recommendation](data json.RawMessage) (Recommendation, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
