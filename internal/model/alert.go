package model

import (
	"time"
)

// AlertType is the stock-health category of an alert.
type AlertType string

const (
	AlertUnderstock AlertType = "understock"
	AlertOverstock  AlertType = "overstock"
	AlertInfo       AlertType = "info"
)

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for listing: critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityWarning:
		return 2
	default:
		return 3
	}
}

// Urgency labels how fast overstock should be cleared.
type Urgency string

const (
	UrgencyNone   Urgency = ""
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// Alert is one classification outcome for a product. Alerts are created once and only
// ever change by being resolved.
type Alert struct {
	ID             string         `json:"alert_id"`
	ProductID      int64          `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Type           AlertType      `json:"type"`
	Severity       Severity       `json:"severity"`
	Message        string         `json:"message"`
	Recommendation Recommendation `json:"-"`
	ActionRequired bool           `json:"action_required"`
	CurrentStock   int            `json:"current_stock"`
	ReorderLevel   int            `json:"reorder_level"`
	MaxStockLevel  int            `json:"max_stock_level"`
	// ForecastDemand is the summed stored forecast for the product, nil when none exists.
	ForecastDemand *float64  `json:"forecast_demand,omitempty"`
	Resolved       bool      `json:"resolved"`
	CreatedAt      time.Time `json:"created_at"`
}
