package api

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// ErrBadPayload marks a request whose structure cannot be decoded.
var ErrBadPayload = errors.New("bad payload")

// ScoreRequest is the decoded form of a Score call.
type ScoreRequest struct {
	Observations []models.Observation
	// CurrentTime is zero when the caller wants the server clock.
	CurrentTime time.Time
}

// FromStructScoreRequest maps the Score payload into domain observations.
func FromStructScoreRequest(req *structpb.Struct) (ScoreRequest, error) {
	if req == nil {
		return ScoreRequest{}, badPayload("request is nil")
	}
	fields := req.GetFields()

	var out ScoreRequest
	if v, ok := fields["current_time"]; ok && v.GetStringValue() != "" {
		t, err := utils.ParseTimestamp(v.GetStringValue())
		if err != nil {
			return ScoreRequest{}, badPayload(fmt.Sprintf("current_time: %v", err))
		}
		out.CurrentTime = t
	}

	list := fields["observations"].GetListValue()
	if list == nil {
		return ScoreRequest{}, badPayload("observations list is required")
	}
	for i, item := range list.GetValues() {
		obs, err := observationFromValue(item)
		if err != nil {
			return ScoreRequest{}, badPayload(fmt.Sprintf("observations[%d]: %v", i, err))
		}
		out.Observations = append(out.Observations, obs)
	}
	return out, nil
}

func observationFromValue(v *structpb.Value) (models.Observation, error) {
	s := v.GetStructValue()
	if s == nil {
		return models.Observation{}, fmt.Errorf("expected object")
	}
	fields := s.GetFields()

	id := fields["machine_id"].GetStringValue()
	if id == "" {
		return models.Observation{}, fmt.Errorf("machine_id is required")
	}
	last, err := utils.ParseTimestamp(fields["last_failure"].GetStringValue())
	if err != nil {
		return models.Observation{}, fmt.Errorf("last_failure: %w", err)
	}
	machine, err := indexField(fields, "machine_category")
	if err != nil {
		return models.Observation{}, err
	}
	failure, err := indexField(fields, "failure_type")
	if err != nil {
		return models.Observation{}, err
	}
	return models.Observation{
		MachineID:       id,
		LastFailure:     last,
		MachineCategory: machine,
		FailureType:     failure,
	}, nil
}

func indexField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

// ToStructReport converts a scored report into the Score response payload.
func ToStructReport(report models.Report) (*structpb.Struct, error) {
	rows := make([]any, 0, len(report.Rows))
	for rank, row := range report.Rows {
		rows = append(rows, map[string]any{
			"rank":                 rank + 1,
			"machine_id":           row.MachineID,
			"last_failure":         row.LastFailure.Format(utils.FailureTimestampLayout),
			"machine_category":     row.MachineCategory,
			"failure_type":         row.FailureType,
			"characteristic_hours": row.CharacteristicHours,
			"rul_percent":          row.RULPercent,
			"raw_ratio":            row.RawRatio,
			"priority_weight":      row.PriorityWeight,
		})
	}
	flagged := make([]any, 0, len(report.Flagged))
	for _, f := range report.Flagged {
		flagged = append(flagged, map[string]any{
			"machine_id":       f.MachineID,
			"last_failure":     f.LastFailure.Format(utils.FailureTimestampLayout),
			"machine_category": f.MachineCategory,
			"failure_type":     f.FailureType,
			"reason":           f.Reason,
		})
	}

	out, err := structpb.NewStruct(map[string]any{
		"generated_at": report.GeneratedAt.UTC().Format(time.RFC3339),
		"rows":         rows,
		"flagged":      flagged,
	})
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return out, nil
}

// ToStructParameterTable converts the parameter table into the GetParameterTable payload.
func ToStructParameterTable(table *engine.ParameterTable) (*structpb.Struct, error) {
	if table == nil {
		return nil, fmt.Errorf("parameter table is nil")
	}
	groups := table.Snapshot()
	entries := make([]any, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, map[string]any{
			"machine_category":      g.MachineCategory,
			"failure_type":          g.FailureType,
			"machine_label":         taxonomy.MachineLabel(g.MachineCategory),
			"failure_label":         taxonomy.FailureLabel(g.FailureType),
			"characteristic_hours":  g.CharacteristicHours,
			"samples":               g.Samples,
			"insufficient_training": g.Sentinel(),
		})
	}
	out, err := structpb.NewStruct(map[string]any{"entries": entries})
	if err != nil {
		return nil, fmt.Errorf("encode parameter table: %w", err)
	}
	return out, nil
}

func badPayload(msg string) error {
	return utils.NewAppError("api.decode", msg, ErrBadPayload)
}
