package engine

import (
	"fmt"
	"sort"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
)

// AssembleRows joins each scored observation with its labels, RUL and weight, then ranks by
// weight descending. Equal weights keep observation order. results and weights must be
// parallel slices.
func AssembleRows(observations []models.Observation, results []models.RULResult, weights []float64) ([]models.ReportRow, error) {
	if len(results) != len(weights) {
		return nil, fmt.Errorf("assemble rows: %d results but %d weights", len(results), len(weights))
	}
	rows := make([]models.ReportRow, 0, len(results))
	for i, res := range results {
		if res.Observation < 0 || res.Observation >= len(observations) {
			return nil, fmt.Errorf("assemble rows: result %d references observation %d of %d", i, res.Observation, len(observations))
		}
		obs := observations[res.Observation]
		row := models.ReportRow{
			Observation:         res.Observation,
			MachineID:           obs.MachineID,
			LastFailure:         obs.LastFailure,
			MachineCategory:     taxonomy.MachineLabel(obs.MachineCategory),
			FailureType:         taxonomy.FailureLabel(obs.FailureType),
			CharacteristicHours: res.CharacteristicHours,
			RULPercent:          res.DisplayedPercent,
			RawRatio:            res.RawRatio,
			PriorityWeight:      weights[i],
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PriorityWeight > rows[j].PriorityWeight
	})
	return rows, nil
}
