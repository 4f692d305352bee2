package model

import (
	"encoding/json"
	"time"
)

// ForecastPoint is one predicted day with a fixed ±20% band.
type ForecastPoint struct {
	Date            time.Time `json:"-"`
	PredictedDemand float64   `json:"demand"`
	LowerBound      float64   `json:"lower"`
	UpperBound      float64   `json:"upper"`
}

// NewForecastPoint builds a point whose bounds are exactly 0.8x and 1.2x the demand.
func NewForecastPoint(date time.Time, demand float64) ForecastPoint {
	if demand < 0 {
		demand = 0
	}
	return ForecastPoint{
		Date:            Day(date),
		PredictedDemand: demand,
		LowerBound:      demand * 0.8,
		UpperBound:      demand * 1.2,
	}
}

// MarshalJSON renders the date as a calendar day.
func (f ForecastPoint) MarshalJSON() ([]byte, error) {
	type alias ForecastPoint
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: f.Date.Format(DateLayout), alias: alias(f)})
}

// AccuracyMetrics are computed on the held-out validation split.
type AccuracyMetrics struct {
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	R2       float64 `json:"r2"`
	MAPE     float64 `json:"mape"`
	Accuracy float64 `json:"accuracy"`
}

// TotalDemand sums predicted demand over a forecast.
func TotalDemand(points []ForecastPoint) float64 {
	total := 0.0
	for _, p := range points {
		total += p.PredictedDemand
	}
	return total
}
