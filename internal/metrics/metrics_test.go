package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestObserveScoring(t *testing.T) {
	before := testutil.ToFloat64(scoringPassesTotal.WithLabelValues(OutcomeSuccess))
	flaggedBefore := testutil.ToFloat64(flaggedObservationsTotal)

	ObserveScoring(3*time.Millisecond, OutcomeSuccess, 2)

	if got := testutil.ToFloat64(scoringPassesTotal.WithLabelValues(OutcomeSuccess)); got != before+1 {
		t.Fatalf("expected success counter %v, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(flaggedObservationsTotal); got != flaggedBefore+2 {
		t.Fatalf("expected flagged counter %v, got %v", flaggedBefore+2, got)
	}
}

func TestObserveScoringUnknownOutcome(t *testing.T) {
	before := testutil.ToFloat64(scoringPassesTotal.WithLabelValues(OutcomeError))
	ObserveScoring(-time.Second, "weird", 0)
	if got := testutil.ToFloat64(scoringPassesTotal.WithLabelValues(OutcomeError)); got != before+1 {
		t.Fatalf("unknown outcome should count as error")
	}
}

func TestSetParameterTable(t *testing.T) {
	table, err := engine.BuildParameterTable(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	SetParameterTable(table)
	if got := testutil.ToFloat64(parameterGroups.WithLabelValues("insufficient")); got != taxonomy.GroupCount {
		t.Fatalf("expected %d insufficient groups, got %v", taxonomy.GroupCount, got)
	}
	if got := testutil.ToFloat64(parameterGroups.WithLabelValues("estimated")); got != 0 {
		t.Fatalf("expected 0 estimated groups, got %v", got)
	}
}
