package engine

import (
	"errors"
	"testing"
)

func TestNormalizeWeights(t *testing.T) {
	weights, err := Normalize([]float64{0.5, -0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(weights[0], 0.25, 1e-12) || !almostEqual(weights[1], 0.75, 1e-12) {
		t.Fatalf("unexpected weights: %v", weights)
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	ratios := []float64{0.9, 0.1, -2.4, 0.33, 0, 0.75}
	weights, err := Normalize(ratios)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0.0
	for i, w := range weights {
		if w < 0 {
			t.Fatalf("weight %d negative: %v", i, w)
		}
		sum += w
	}
	if !almostEqual(sum, 1, 1e-9) {
		t.Fatalf("weights sum to %v", sum)
	}
	// More overdue means more weight.
	if weights[2] <= weights[1] || weights[1] <= weights[0] {
		t.Fatalf("weights not ordered by urgency: %v", weights)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		ratios []float64
	}{
		{"empty", nil},
		{"single fresh machine", []float64{1}},
		{"negative total", []float64{1.5, 1.2}},
		{"cancelling urgencies", []float64{2, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Normalize(tc.ratios); !errors.Is(err, ErrDegenerateNormalization) {
				t.Fatalf("expected ErrDegenerateNormalization, got %v", err)
			}
		})
	}
}
