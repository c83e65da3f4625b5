package common

import "errors"

// Error taxonomy shared by the loading, prediction and decision stages.
// Callers wrap these with fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrDataUnavailable reports a missing or corrupt training split or model artifact.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNoUsableModels is fatal: no configured model loaded with probability support.
	ErrNoUsableModels = errors.New("no usable models")

	// ErrNoProbabilitySupport is the rejection reason for hard-label-only models.
	ErrNoProbabilitySupport = errors.New("model does not support probability output")

	// ErrInferenceFailed marks a single model failing during one prediction.
	ErrInferenceFailed = errors.New("model inference failed")

	// ErrNoPredictionsAvailable means every model failed for one request.
	ErrNoPredictionsAvailable = errors.New("no predictions available")

	// ErrInvalidInput rejects a feature record outside the accepted ranges.
	ErrInvalidInput = errors.New("invalid input")
)
