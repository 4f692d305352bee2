package calculator

import (
	"errors"
	"math"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrailingMean averages the last window values, or all of them when fewer exist.
// Returns 0 for an empty slice.
func TrailingMean(values []float64, window int) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	m, _ := CalculateSMA(values, window)
	return m
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopStdDev returns the population standard deviation (divides by n).
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
