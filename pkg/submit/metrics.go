package submit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded by Metrics.
const (
	OutcomeSubmitted = "submitted"
	OutcomeRejected  = "rejected"
	OutcomeTrapped   = "trapped"
	OutcomeFailed    = "failed"
)

// Metrics records gate outcomes. A nil *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the gate collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "composer_submissions_total",
				Help: "Form submissions by outcome",
			},
			[]string{"form", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "composer_submit_duration_seconds",
				Help:    "Time from submit to completion signal",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"form", "outcome"},
		),
	}
	for _, collector := range []prometheus.Collector{m.outcomes, m.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNewMetrics mirrors NewMetrics but panics on error.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) observe(form, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(form, outcome).Inc()
	m.duration.WithLabelValues(form, outcome).Observe(elapsed.Seconds())
}
