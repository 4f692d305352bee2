package model

import "time"

// FeatureCount is the width of one day's feature block.
const FeatureCount = 12

// LagOffsets are the day offsets used for lag features.
var LagOffsets = [4]int{1, 7, 14, 30}

// RollingWindows are the trailing windows used for rolling means.
var RollingWindows = [3]int{7, 14, 30}

// DailyPoint is one gap-filled day of a product's sales series with its engineered features.
type DailyPoint struct {
	Date       time.Time
	Value      float64 // units sold that day, 0 when nothing sold
	DayOfWeek  int     // Monday = 0 ... Sunday = 6
	DayOfMonth int
	Month      int
	IsWeekend  bool
	Lags       [4]float64 // aligned with LagOffsets
	Rolling    [3]float64 // aligned with RollingWindows
}

// Features returns the feature block in model column order:
// value, day_of_week, day_of_month, month, is_weekend, lag_1, lag_7, lag_14, lag_30,
// rolling_mean_7, rolling_mean_14, rolling_mean_30.
func (p DailyPoint) Features() [FeatureCount]float64 {
	weekend := 0.0
	if p.IsWeekend {
		weekend = 1
	}
	return [FeatureCount]float64{
		p.Value,
		float64(p.DayOfWeek),
		float64(p.DayOfMonth),
		float64(p.Month),
		weekend,
		p.Lags[0], p.Lags[1], p.Lags[2], p.Lags[3],
		p.Rolling[0], p.Rolling[1], p.Rolling[2],
	}
}

// CalendarPoint builds a point carrying only the date and its calendar features.
func CalendarPoint(date time.Time) DailyPoint {
	date = Day(date)
	dow := (int(date.Weekday()) + 6) % 7
	return DailyPoint{
		Date:       date,
		DayOfWeek:  dow,
		DayOfMonth: date.Day(),
		Month:      int(date.Month()),
		IsWeekend:  dow >= 5,
	}
}
