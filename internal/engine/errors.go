package engine

import "errors"

var (
	// ErrInsufficientTrainingData marks a group whose characteristic time is the sentinel 0
	// because fewer than MinGroupSamples historical durations were available.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrDegenerateNormalization is returned when total urgency is not positive.
	ErrDegenerateNormalization = errors.New("degenerate priority normalization")

	errEmptyGroup = errors.New("empty sample group")
)
