package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeError labels saves that failed.
const outcomeError = "error"

// Metrics records save outcomes and latency per object class.
type Metrics struct {
	// outcomes counts saves by class and outcome (or "error").
	outcomes *prometheus.CounterVec

	// duration observes save latency by class, failures included.
	duration *prometheus.HistogramVec
}

// NewMetrics creates the save collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_save_outcomes_total",
				Help: "Total number of save calls by object class and outcome",
			},
			[]string{"class", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_save_duration_seconds",
				Help:    "Duration of save calls including the retrieve",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"class"},
		),
	}
}

func (m *Metrics) observe(class string, outcome Outcome, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(class, outcomeLabel(outcome, err)).Inc()
	m.duration.WithLabelValues(class).Observe(elapsed.Seconds())
}

func outcomeLabel(outcome Outcome, err error) string {
	if err != nil {
		return outcomeError
	}
	return outcome.String()
}
