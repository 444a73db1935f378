package engine

import (
	"math"
	"time"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// RemainingLife computes 1 - elapsed/characteristic for one observation. Observations in a
// sentinel group return an error wrapping ErrInsufficientTrainingData instead of a ratio.
func RemainingLife(obs models.Observation, now time.Time, table *ParameterTable) (models.RULResult, error) {
	characteristic, err := table.CharacteristicTime(obs.MachineCategory, obs.FailureType)
	if err != nil {
		return models.RULResult{}, err
	}

	elapsed := utils.HoursBetween(obs.LastFailure, now)
	raw := 1 - elapsed/characteristic
	return models.RULResult{
		CharacteristicHours: characteristic,
		ElapsedHours:        elapsed,
		RawRatio:            raw,
		DisplayedPercent:    DisplayPercent(raw),
	}, nil
}

// DisplayPercent turns a raw ratio into the reported percentage, clamped to [0, 100] and
// rounded to two decimals. Ranking never uses this value.
func DisplayPercent(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) {
		return 0
	}
	pct := math.Round(raw*100*100) / 100
	if pct > 100 {
		return 100
	}
	return pct
}
