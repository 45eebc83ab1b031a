package wizard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

var (
	// runsTotal counts finished runs by wizard and outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_runs_total",
		Help: "Total number of wizard runs by wizard and outcome (completed, cancelled, failed, aborted)",
	}, []string{"wizard", "outcome"})

	// stepsTotal counts field transitions.
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_steps_total",
		Help: "Total number of field transitions by wizard, field and action (shown, skipped, answered, rewound)",
	}, []string{"wizard", "field", "action"})

	// runDuration tracks how long users spend in a wizard.
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wizard_run_duration_seconds",
		Help:    "Duration of wizard runs by wizard and outcome",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"wizard", "outcome"})

	// stepDuration tracks time spent on a single prompt.
	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wizard_step_duration_seconds",
		Help:    "Time spent answering one field by wizard and field",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"wizard", "field"})
)

func sanitizeName(name string) string {
	if name == "" {
		return "unnamed"
	}

	return name
}
