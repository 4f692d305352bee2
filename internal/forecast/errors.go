package forecast

import "errors"

var (
	// ErrInsufficientSequences means windowing produced fewer than MinSequences pairs.
	ErrInsufficientSequences = errors.New("not enough data for training sequences")
	// ErrTrainingFailure wraps a numerical failure while fitting the model.
	ErrTrainingFailure = errors.New("training failed")
	// ErrPredictionUnavailable means Predict was called without a successful Train.
	ErrPredictionUnavailable = errors.New("prediction unavailable: model not trained")
)
