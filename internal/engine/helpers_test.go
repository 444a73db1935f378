package engine

import (
	"math"
	"testing"

	"github.com/miradorstack/mirador-rul/internal/taxonomy"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// tableWith builds a table where only the listed pairs carry a characteristic time.
func tableWith(t *testing.T, values map[[2]int]float64) *ParameterTable {
	t.Helper()
	groups := make([]GroupEstimate, taxonomy.GroupCount)
	for flat := range groups {
		m, f := taxonomy.SplitIndex(flat)
		groups[flat] = GroupEstimate{MachineCategory: m, FailureType: f}
		if v, ok := values[[2]int{m, f}]; ok {
			groups[flat].CharacteristicHours = v
			groups[flat].Samples = MinGroupSamples
		}
	}
	table, err := TableFromSnapshot(groups)
	if err != nil {
		t.Fatalf("table from snapshot: %v", err)
	}
	return table
}
