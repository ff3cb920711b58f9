package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters the preference service reports
type Metrics struct {
	AnalysesApplied  prometheus.Counter
	AnalysesRejected *prometheus.CounterVec
	UpdateDuration   prometheus.Histogram
}

// NewMetrics registers the collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platewise_analyses_applied_total",
			Help: "Waste analyses folded into a user profile.",
		}),
		AnalysesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "platewise_analyses_rejected_total",
			Help: "Waste analyses that were not applied, by reason.",
		}, []string{"reason"}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platewise_update_duration_seconds",
			Help:    "Time spent in a full preference update, lock wait included.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.AnalysesApplied, m.AnalysesRejected, m.UpdateDuration)
	}
	return m
}

func rejectReason(err error) string {
	var se *StoreError
	switch {
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.As(err, &se):
		return "store_error"
	default:
		return "other"
	}
}
