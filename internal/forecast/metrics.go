package forecast

import (
	"math"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// DefaultMAPE is reported when no validation day had nonzero demand.
const DefaultMAPE = 15.0

// r2Epsilon keeps R² finite on a constant validation target.
const r2Epsilon = 1e-10

// Evaluate scores predictions against actual validation targets.
func Evaluate(actual, predicted []float64) model.AccuracyMetrics {
	n := float64(len(actual))
	if n == 0 {
		return model.AccuracyMetrics{MAPE: DefaultMAPE, Accuracy: 100 - DefaultMAPE}
	}

	var absSum, sqSum, pctSum float64
	pctCount := 0
	for i, a := range actual {
		d := a - predicted[i]
		absSum += math.Abs(d)
		sqSum += d * d
		if a > 0 {
			pctSum += math.Abs(d / a)
			pctCount++
		}
	}

	mean := calculator.Mean(actual)
	ssTot := 0.0
	for _, a := range actual {
		ssTot += (a - mean) * (a - mean)
	}

	mape := DefaultMAPE
	if pctCount > 0 {
		mape = pctSum / float64(pctCount) * 100
	}

	return model.AccuracyMetrics{
		MAE:      absSum / n,
		RMSE:     math.Sqrt(sqSum / n),
		R2:       1 - sqSum/(ssTot+r2Epsilon),
		MAPE:     mape,
		Accuracy: calculator.Clamp(100-mape, 0, 100),
	}
}
