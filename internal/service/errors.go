package service

import (
	"errors"

	"StockSentinel/internal/forecast"
	"StockSentinel/internal/series"
	"StockSentinel/internal/store"
)

// ErrorKind is the machine-readable class of a forecast failure.
type ErrorKind string

const (
	KindNone                  ErrorKind = ""
	KindInsufficientData      ErrorKind = "insufficient_data"
	KindInsufficientSequences ErrorKind = "insufficient_sequences"
	KindTrainingFailure       ErrorKind = "training_failure"
	KindPredictionUnavailable ErrorKind = "prediction_unavailable"
	KindNotFound              ErrorKind = "not_found"
	KindStoreFailure          ErrorKind = "store_failure"
)

// KindOf classifies an error returned by ForecastProduct.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, series.ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, forecast.ErrInsufficientSequences):
		return KindInsufficientSequences
	case errors.Is(err, forecast.ErrTrainingFailure):
		return KindTrainingFailure
	case errors.Is(err, forecast.ErrPredictionUnavailable):
		return KindPredictionUnavailable
	default:
		return KindStoreFailure
	}
}

// IsDataShortfall reports whether the product simply lacks enough history.
func (k ErrorKind) IsDataShortfall() bool {
	return k == KindInsufficientData || k == KindInsufficientSequences
}
