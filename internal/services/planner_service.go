package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-rul/internal/api"
	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/metrics"
	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// ReportSink persists ranked reports.
type ReportSink interface {
	SaveReport(ctx context.Context, runID string, report models.Report) error
}

// PlannerService implements the MaintenancePlanner gRPC service and the batch scoring path.
type PlannerService struct {
	logger *slog.Logger
	scorer *engine.Scorer
	now    func() time.Time
	sink   ReportSink
	runs   atomic.Uint64
}

// NewPlannerService constructs the planner facade. A nil clock means time.Now and a nil
// sink disables persistence.
func NewPlannerService(logger *slog.Logger, scorer *engine.Scorer, now func() time.Time, sink ReportSink) *PlannerService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &PlannerService{logger: logger, scorer: scorer, now: now, sink: sink}
}

// Plan runs one scoring pass, records metrics and persists the ranked rows when a sink is
// configured. A zero at falls back to the service clock.
func (s *PlannerService) Plan(ctx context.Context, observations []models.Observation, at time.Time) (models.Report, error) {
	if s.scorer == nil {
		return models.Report{}, fmt.Errorf("scorer not configured")
	}
	if at.IsZero() {
		at = s.now()
	}

	start := time.Now()
	report, err := s.scorer.Score(ctx, observations, at)
	duration := time.Since(start)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, engine.ErrDegenerateNormalization) {
			outcome = metrics.OutcomeDegenerate
		}
		metrics.ObserveScoring(duration, outcome, 0)
		return models.Report{}, err
	}
	metrics.ObserveScoring(duration, metrics.OutcomeSuccess, len(report.Flagged))

	s.logger.Info("scoring pass complete",
		slog.Int("observations", len(observations)),
		slog.Int("ranked", len(report.Rows)),
		slog.Int("flagged", len(report.Flagged)),
		slog.Duration("duration", duration),
	)

	if s.sink != nil && len(report.Rows) > 0 {
		runID := RunID(time.Now(), s.runs.Add(1))
		if err := s.sink.SaveReport(ctx, runID, report); err != nil {
			return report, fmt.Errorf("persist report %s: %w", runID, err)
		}
		s.logger.Debug("report persisted", slog.String("run_id", runID))
	}
	return report, nil
}

// Score decodes the request, runs Plan and encodes the ranked report.
func (s *PlannerService) Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.scorer == nil {
		return nil, status.Error(codes.FailedPrecondition, "scorer not configured")
	}
	scoreReq, err := api.FromStructScoreRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := s.Plan(ctx, scoreReq.Observations, scoreReq.CurrentTime)
	if err != nil {
		s.logger.Error("scoring failed", slog.String("op", utils.OpOf(err)), slog.Any("error", err))
		return nil, toStatus(err)
	}

	resp, err := api.ToStructReport(report)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// GetParameterTable returns the parameter table shared by every scoring pass.
func (s *PlannerService) GetParameterTable(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.scorer == nil || s.scorer.Table() == nil {
		return nil, status.Error(codes.FailedPrecondition, "parameter table not configured")
	}
	resp, err := api.ToStructParameterTable(s.scorer.Table())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// RunID names a persisted scoring pass by the wall-clock time it was saved and a per-process
// sequence number. The scoring time is stored separately and may repeat across passes.
func RunID(savedAt time.Time, seq uint64) string {
	return fmt.Sprintf("%s-%06d", savedAt.UTC().Format("20060102T150405.000000000Z"), seq)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, taxonomy.ErrInvalidIndex), errors.Is(err, api.ErrBadPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrDegenerateNormalization):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("scoring failed: %v", err))
	}
}
