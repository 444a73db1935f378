package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/miradorstack/mirador-rul/internal/engine"
)

const (
	// OutcomeSuccess labels scoring passes that produced a report.
	OutcomeSuccess = "success"
	// OutcomeDegenerate labels passes rejected by priority normalisation.
	OutcomeDegenerate = "degenerate"
	// OutcomeError labels failed scoring passes (invalid input or dependency issues).
	OutcomeError = "error"
)

var (
	scoringPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_rul",
			Name:      "scoring_passes_total",
			Help:      "Total number of scoring passes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	scoringDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mirador_rul",
			Name:      "scoring_seconds",
			Help:      "Scoring pass latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	flaggedObservationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mirador_rul",
			Name:      "flagged_observations_total",
			Help:      "Observations that could not be scored because their group lacks training data.",
		},
	)

	parameterGroups = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mirador_rul",
			Name:      "parameter_groups",
			Help:      "Parameter table groups by estimation state.",
		},
		[]string{"state"},
	)
)

// Register attaches mirador-rul collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		scoringPassesTotal,
		scoringDurationSeconds,
		flaggedObservationsTotal,
		parameterGroups,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveScoring records a scoring pass duration, outcome and flagged observation count.
func ObserveScoring(duration time.Duration, outcome string, flagged int) {
	switch outcome {
	case OutcomeSuccess, OutcomeDegenerate, OutcomeError:
	default:
		outcome = OutcomeError
	}
	scoringPassesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	scoringDurationSeconds.Observe(duration.Seconds())
	if flagged > 0 {
		flaggedObservationsTotal.Add(float64(flagged))
	}
}

// SetParameterTable publishes how many groups were estimated and how many hold the sentinel.
func SetParameterTable(table *engine.ParameterTable) {
	if table == nil {
		return
	}
	estimated, insufficient := table.Counts()
	parameterGroups.WithLabelValues("estimated").Set(float64(estimated))
	parameterGroups.WithLabelValues("insufficient").Set(float64(insufficient))
}
