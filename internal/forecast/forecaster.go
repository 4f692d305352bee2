// Package forecast fits a ridge regression on windowed daily features and rolls it
// out autoregressively into a multi-day demand forecast.
package forecast

import (
	"fmt"
	"log"
	"math"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
	"StockSentinel/internal/series"
)

const (
	// MaxLookback caps the number of prior days assembled into one training input.
	MaxLookback = 30
	// MinSequences is the minimum number of supervised pairs required to train.
	MinSequences = 20
	// TrainSplit is the chronological share of pairs used for fitting.
	TrainSplit = 0.8
	// TailDays is the size of the running window used to rebuild features during rollout.
	TailDays = 30
	// SmoothingWeight blends each raw prediction with the previous predicted day.
	SmoothingWeight = 0.7
)

// State tracks the forecaster lifecycle.
type State int

const (
	StateUntrained State = iota
	StateTrained
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTrained:
		return "trained"
	case StateFailed:
		return "failed"
	default:
		return "untrained"
	}
}

// Forecaster is a single-product demand model. It is not safe for concurrent use;
// callers serialize train and predict per product.
type Forecaster struct {
	state    State
	lookback int
	scaler   *StandardScaler
	model    *RidgeModel
	history  []model.DailyPoint
	metrics  model.AccuracyMetrics
	lastErr  error
}

// NewForecaster creates an untrained forecaster.
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

func (f *Forecaster) State() State                   { return f.state }
func (f *Forecaster) Lookback() int                  { return f.lookback }
func (f *Forecaster) Metrics() model.AccuracyMetrics { return f.metrics }
func (f *Forecaster) Err() error                     { return f.lastErr }

// Coefficients returns a copy of the fitted weights and the intercept.
func (f *Forecaster) Coefficients() ([]float64, float64) {
	if f.model == nil {
		return nil, 0
	}
	return append([]float64(nil), f.model.Coef...), f.model.Intercept
}

// Train fits the model on a prepared daily series and validates it on the last 20%
// of supervised pairs.
func (f *Forecaster) Train(points []model.DailyPoint) (model.AccuracyMetrics, error) {
	metrics, err := f.train(points)
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		f.model = nil
		log.Printf("[WARN] forecaster training failed: %v", err)
		return model.AccuracyMetrics{}, err
	}
	f.state = StateTrained
	f.lastErr = nil
	f.metrics = metrics
	return metrics, nil
}

func (f *Forecaster) train(points []model.DailyPoint) (model.AccuracyMetrics, error) {
	lookback := min(MaxLookback, len(points)/4)
	x, y := BuildSequences(points, lookback)
	if len(x) < MinSequences {
		return model.AccuracyMetrics{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSequences, len(x), MinSequences)
	}
	for i, row := range x {
		if !finite(y[i]) {
			return model.AccuracyMetrics{}, fmt.Errorf("%w: non-finite target at sequence %d", ErrTrainingFailure, i)
		}
		for j, v := range row {
			if !finite(v) {
				return model.AccuracyMetrics{}, fmt.Errorf("%w: non-finite feature at sequence %d column %d", ErrTrainingFailure, i, j)
			}
		}
	}

	trainSize := int(float64(len(x)) * TrainSplit)
	xTrain, xVal := x[:trainSize], x[trainSize:]
	yTrain, yVal := y[:trainSize], y[trainSize:]
	log.Printf("[INFO] training with %d samples (lookback %d, %d features)", len(xTrain), lookback, len(x[0]))

	scaler := FitScaler(xTrain)
	ridge, err := FitRidge(scaler.TransformAll(xTrain), yTrain, RidgeAlpha)
	if err != nil {
		return model.AccuracyMetrics{}, fmt.Errorf("%w: %w", ErrTrainingFailure, err)
	}

	predicted := make([]float64, len(xVal))
	for i, row := range xVal {
		predicted[i] = math.Max(0, ridge.Predict(scaler.Transform(row)))
	}
	metrics := Evaluate(yVal, predicted)

	f.lookback = lookback
	f.scaler = scaler
	f.model = ridge
	f.history = append([]model.DailyPoint(nil), points...)

	log.Printf("[INFO] model trained: accuracy %.2f%%, MAE %.2f, R² %.3f", metrics.Accuracy, metrics.MAE, metrics.R2)
	return metrics, nil
}

// BuildSequences flattens the feature blocks of rows [i-lookback, i) into one input
// for target row i.
func BuildSequences(points []model.DailyPoint, lookback int) ([][]float64, []float64) {
	if lookback <= 0 {
		return nil, nil
	}
	var x [][]float64
	var y []float64
	for i := lookback; i < len(points); i++ {
		row := make([]float64, 0, lookback*model.FeatureCount)
		for _, p := range points[i-lookback : i] {
			block := p.Features()
			row = append(row, block[:]...)
		}
		x = append(x, row)
		y = append(y, points[i].Value)
	}
	return x, y
}

// Predict rolls the model forward one day at a time, feeding each predicted day back
// into the running series.
func (f *Forecaster) Predict(days int) ([]model.ForecastPoint, error) {
	if f.state != StateTrained || f.model == nil {
		return nil, ErrPredictionUnavailable
	}
	if days <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", days)
	}
	log.Printf("[INFO] generating %d-day forecast", days)

	values := series.Values(f.history)
	lastDate := f.history[len(f.history)-1].Date

	out := make([]model.ForecastPoint, 0, days)
	for day := 1; day <= days; day++ {
		next := lastDate.AddDate(0, 0, day)
		tail := values[max(0, len(values)-TailDays):]
		x := inferenceInput(nextDayPoint(tail, next), f.lookback)

		prediction := math.Max(0, f.model.Predict(f.scaler.Transform(x)))
		if day > 1 {
			prediction = SmoothingWeight*prediction + (1-SmoothingWeight)*out[len(out)-1].PredictedDemand
		}

		out = append(out, model.NewForecastPoint(next, calculator.Round2(prediction)))
		values = append(values, prediction)
	}
	return out, nil
}

// nextDayPoint rebuilds one day's features from the running tail. A lag longer than
// the tail falls back to the tail mean.
func nextDayPoint(tail []float64, date time.Time) model.DailyPoint {
	p := model.CalendarPoint(date)
	last := tail[len(tail)-1]
	p.Value = last
	for j, k := range model.LagOffsets {
		if len(tail) >= k {
			p.Lags[j] = tail[len(tail)-k]
		} else {
			p.Lags[j] = calculator.Mean(tail)
		}
	}
	for j, w := range model.RollingWindows {
		p.Rolling[j] = calculator.TrailingMean(tail, w)
	}
	return p
}

// inferenceInput repeats a single day's feature block lookback times to match the
// training input width. Training inputs hold distinct days; this one does not.
// A series shorter than 120 days trains with a lookback below 30, and the block is
// repeated that many times rather than a fixed 30, so such products still forecast.
func inferenceInput(p model.DailyPoint, lookback int) []float64 {
	block := p.Features()
	x := make([]float64, 0, lookback*model.FeatureCount)
	for i := 0; i < lookback; i++ {
		x = append(x, block[:]...)
	}
	return x
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
