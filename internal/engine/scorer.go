package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
)

// Scorer runs scoring passes against one immutable ParameterTable.
type Scorer struct {
	logger *slog.Logger
	table  *ParameterTable
}

// NewScorer constructs a Scorer. The table is shared, never copied or mutated.
func NewScorer(logger *slog.Logger, table *ParameterTable) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{logger: logger, table: table}
}

// Table exposes the parameter table the scorer reads.
func (s *Scorer) Table() *ParameterTable {
	return s.table
}

// Score computes RUL for every observation at now, flags those whose group lacks training
// data, normalises the rest into priority weights and returns the ranked report.
func (s *Scorer) Score(ctx context.Context, observations []models.Observation, now time.Time) (models.Report, error) {
	if s.table == nil {
		return models.Report{}, fmt.Errorf("parameter table not configured")
	}
	if err := ctx.Err(); err != nil {
		return models.Report{}, err
	}

	report := models.Report{GeneratedAt: now}
	results := make([]models.RULResult, 0, len(observations))
	ratios := make([]float64, 0, len(observations))

	for i, obs := range observations {
		res, err := RemainingLife(obs, now, s.table)
		if errors.Is(err, ErrInsufficientTrainingData) {
			report.Flagged = append(report.Flagged, models.FlaggedObservation{
				Observation:     i,
				MachineID:       obs.MachineID,
				LastFailure:     obs.LastFailure,
				MachineCategory: taxonomy.MachineLabel(obs.MachineCategory),
				FailureType:     taxonomy.FailureLabel(obs.FailureType),
				Reason:          ErrInsufficientTrainingData.Error(),
			})
			s.logger.Debug("observation flagged",
				slog.String("machine_id", obs.MachineID),
				slog.String("group", groupName(obs.MachineCategory, obs.FailureType)),
			)
			continue
		}
		if err != nil {
			return models.Report{}, fmt.Errorf("observation %d (%s): %w", i, obs.MachineID, err)
		}
		res.Observation = i
		results = append(results, res)
		ratios = append(ratios, res.RawRatio)
	}

	if len(results) == 0 {
		if len(report.Flagged) > 0 {
			s.logger.Warn("no observation could be scored", slog.Int("flagged", len(report.Flagged)))
		}
		return report, nil
	}

	weights, err := Normalize(ratios)
	if err != nil {
		return models.Report{}, err
	}

	rows, err := AssembleRows(observations, results, weights)
	if err != nil {
		return models.Report{}, err
	}
	report.Rows = rows
	s.logger.Debug("scoring pass complete",
		slog.Int("scored", len(report.Rows)),
		slog.Int("flagged", len(report.Flagged)),
	)
	return report, nil
}
