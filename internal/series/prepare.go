// Package series turns raw sale events into a gap-filled daily series with
// calendar, lag and rolling-mean features.
package series

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// MinTrainingSamples is the minimum number of raw sale events, and of calendar days
// between the first and last sale, required to train.
const MinTrainingSamples = 60

// ErrInsufficientData means the raw history or its span is below MinTrainingSamples.
var ErrInsufficientData = errors.New("insufficient sales history")

// Prepare aggregates events per calendar day, materializes zero-sale days between
// the first and last sale, and adds features. Undefined lags resolve to 0.
func Prepare(events []model.SaleEvent) ([]model.DailyPoint, error) {
	if len(events) < MinTrainingSamples {
		return nil, fmt.Errorf("%w: have %d sale records, need at least %d", ErrInsufficientData, len(events), MinTrainingSamples)
	}

	totals := make(map[time.Time]float64, len(events))
	first, last := model.Day(events[0].Date), model.Day(events[0].Date)
	for _, e := range events {
		d := model.Day(e.Date)
		totals[d] += float64(e.QuantitySold)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var points []model.DailyPoint
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		p := model.CalendarPoint(d)
		p.Value = totals[d]
		points = append(points, p)
	}

	if len(points) < MinTrainingSamples {
		return nil, fmt.Errorf("%w: have %d days of sales, need at least %d", ErrInsufficientData, len(points), MinTrainingSamples)
	}

	AddFeatures(points)
	log.Printf("[INFO] series prepared: %d days from %d sale records", len(points), len(events))
	return points, nil
}

// AddFeatures fills lag and rolling-mean features in place. Rolling means include the
// current day and expand at the start of the series.
func AddFeatures(points []model.DailyPoint) {
	values := Values(points)
	for i := range points {
		for j, lag := range model.LagOffsets {
			if i >= lag {
				points[i].Lags[j] = values[i-lag]
			} else {
				points[i].Lags[j] = 0
			}
		}
		for j, w := range model.RollingWindows {
			points[i].Rolling[j] = calculator.TrailingMean(values[:i+1], w)
		}
	}
}

// Values extracts the daily totals.
func Values(points []model.DailyPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// SortEvents orders events chronologically, keeping same-day order stable.
func SortEvents(events []model.SaleEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
}
