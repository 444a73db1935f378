package engine

import (
	"fmt"
	"math"
)

// Normalize converts raw RUL ratios into priority weights: urgency is 1-ratio and each
// weight is its share of total urgency. A total that is not positive is rejected.
func Normalize(ratios []float64) ([]float64, error) {
	urgencies := make([]float64, len(ratios))
	total := 0.0
	for i, ratio := range ratios {
		urgencies[i] = 1 - ratio
		total += urgencies[i]
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("total urgency %v over %d observations: %w", total, len(ratios), ErrDegenerateNormalization)
	}

	weights := urgencies
	for i := range weights {
		weights[i] /= total
	}
	return weights, nil
}
