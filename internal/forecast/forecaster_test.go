package forecast

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/model"
	"StockSentinel/internal/series"
)

var seriesStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func makePoints(values []float64) []model.DailyPoint {
	points := make([]model.DailyPoint, len(values))
	for i, v := range values {
		points[i] = model.CalendarPoint(seriesStart.AddDate(0, 0, i))
		points[i].Value = v
	}
	series.AddFeatures(points)
	return points
}

func constantValues(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func seasonalValues(n int) []float64 {
	rng := rand.New(rand.NewPCG(42, 7))
	out := make([]float64, n)
	for i := range out {
		base := 8 + 0.05*float64(i)
		if d := seriesStart.AddDate(0, 0, i).Weekday(); d == time.Saturday || d == time.Sunday {
			base *= 1.4
		}
		out[i] = math.Round(base + rng.Float64()*4)
	}
	return out
}

func TestForecasterLifecycle(t *testing.T) {
	f := NewForecaster()
	assert.Equal(t, StateUntrained, f.State())

	_, err := f.Predict(7)
	assert.ErrorIs(t, err, ErrPredictionUnavailable)

	_, err = f.Train(makePoints(constantValues(20, 3)))
	assert.ErrorIs(t, err, ErrInsufficientSequences)
	assert.Equal(t, StateFailed, f.State())

	_, err = f.Predict(7)
	assert.ErrorIs(t, err, ErrPredictionUnavailable)

	_, err = f.Train(makePoints(constantValues(150, 5)))
	require.NoError(t, err)
	assert.Equal(t, StateTrained, f.State())
	assert.Equal(t, "trained", f.State().String())
}

func TestTrainLookback(t *testing.T) {
	tests := []struct {
		days     int
		lookback int
	}{
		{64, 16},
		{100, 25},
		{120, 30},
		{180, 30},
	}
	for _, tt := range tests {
		f := NewForecaster()
		_, err := f.Train(makePoints(seasonalValues(tt.days)))
		require.NoError(t, err)
		assert.Equal(t, tt.lookback, f.Lookback(), "days=%d", tt.days)
		coef, _ := f.Coefficients()
		assert.Len(t, coef, tt.lookback*model.FeatureCount)

		// Inference width follows the lookback, so short series still forecast.
		assert.Len(t, inferenceInput(model.CalendarPoint(seriesStart), tt.lookback), len(coef))
		points, err := f.Predict(3)
		require.NoError(t, err, "days=%d", tt.days)
		assert.Len(t, points, 3)
	}
}

func TestTrainConstantSeries(t *testing.T) {
	f := NewForecaster()
	metrics, err := f.Train(makePoints(constantValues(150, 5)))
	require.NoError(t, err)

	assert.InDelta(t, 0, metrics.MAE, 1e-9)
	assert.InDelta(t, 0, metrics.RMSE, 1e-9)
	assert.InDelta(t, 1, metrics.R2, 1e-6)
	assert.InDelta(t, 100, metrics.Accuracy, 1e-9)

	points, err := f.Predict(10)
	require.NoError(t, err)
	require.Len(t, points, 10)
	for _, p := range points {
		assert.Equal(t, 5.0, p.PredictedDemand)
		assert.Equal(t, 4.0, p.LowerBound)
		assert.Equal(t, 6.0, p.UpperBound)
	}
}

func TestTrainRejectsNonFiniteInput(t *testing.T) {
	values := seasonalValues(100)
	values[40] = math.NaN()

	f := NewForecaster()
	_, err := f.Train(makePoints(values))
	assert.ErrorIs(t, err, ErrTrainingFailure)
	assert.Equal(t, StateFailed, f.State())
	assert.ErrorIs(t, f.Err(), ErrTrainingFailure)
}

func TestPredictShape(t *testing.T) {
	points := makePoints(seasonalValues(180))
	f := NewForecaster()
	_, err := f.Train(points)
	require.NoError(t, err)

	forecast, err := f.Predict(30)
	require.NoError(t, err)
	require.Len(t, forecast, 30)

	last := points[len(points)-1].Date
	for i, p := range forecast {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date)
		assert.GreaterOrEqual(t, p.PredictedDemand, 0.0)
		assert.Equal(t, p.PredictedDemand*0.8, p.LowerBound)
		assert.Equal(t, p.PredictedDemand*1.2, p.UpperBound)
		assert.Equal(t, math.Round(p.PredictedDemand*100)/100, p.PredictedDemand)
	}

	again, err := f.Predict(30)
	require.NoError(t, err)
	assert.Equal(t, forecast, again, "predict must not mutate the trained history")

	_, err = f.Predict(0)
	assert.Error(t, err)
}

// The rollout repeats one rebuilt day across the lookback window. These values
// freeze that behavior for the seeded 150-day series; a change to feature
// reconstruction, scaling or smoothing moves them.
func TestPredictPinnedRollout(t *testing.T) {
	f := NewForecaster()
	metrics, err := f.Train(makePoints(seasonalValues(150)))
	require.NoError(t, err)
	require.Equal(t, 30, f.Lookback())

	assert.InDelta(t, 2.140874882, metrics.MAE, 1e-6)
	assert.InDelta(t, 12.390204822, metrics.MAPE, 1e-6)
	assert.InDelta(t, 87.609795178, metrics.Accuracy, 1e-6)

	want := []float64{21.18, 19.2, 20.3, 20.93, 19.72, 20.59, 20.44}
	got, err := f.Predict(len(want))
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.InDelta(t, w, got[i].PredictedDemand, 1e-9, "day %d", i+1)
	}
}

func TestTrainDeterministic(t *testing.T) {
	points := makePoints(seasonalValues(150))

	a := NewForecaster()
	_, err := a.Train(points)
	require.NoError(t, err)
	b := NewForecaster()
	_, err = b.Train(points)
	require.NoError(t, err)

	coefA, interceptA := a.Coefficients()
	coefB, interceptB := b.Coefficients()
	assert.Equal(t, coefA, coefB)
	assert.Equal(t, interceptA, interceptB)
	assert.InDelta(t, 15.270833333, interceptA, 1e-6)
}

func TestNextDayPoint(t *testing.T) {
	tail := make([]float64, 30)
	for i := range tail {
		tail[i] = float64(i + 1)
	}
	p := nextDayPoint(tail, seriesStart)
	assert.Equal(t, 30.0, p.Value)
	assert.Equal(t, [4]float64{30, 24, 17, 1}, p.Lags)
	assert.Equal(t, [3]float64{27, 23.5, 15.5}, p.Rolling)
	assert.Equal(t, 0, p.DayOfWeek)

	short := nextDayPoint([]float64{2, 4, 6}, seriesStart)
	assert.Equal(t, [4]float64{6, 4, 4, 4}, short.Lags)
	assert.Equal(t, [3]float64{4, 4, 4}, short.Rolling)
}

func TestBuildSequences(t *testing.T) {
	points := makePoints(seasonalValues(40))
	x, y := BuildSequences(points, 10)
	require.Len(t, x, 30)
	require.Len(t, y, 30)
	assert.Len(t, x[0], 10*model.FeatureCount)
	assert.Equal(t, points[10].Value, y[0])

	first := points[9].Features()
	assert.Equal(t, first[:], x[0][9*model.FeatureCount:])
}
