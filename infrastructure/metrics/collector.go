// Package metrics exposes Prometheus collectors for engine evaluations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector counts and times evaluations per engine.
type Collector struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tmplkit_evaluations_total",
			Help: "Total template evaluations by engine and outcome",
		}, []string{"engine", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tmplkit_evaluation_duration_seconds",
			Help:    "Duration of template evaluations by engine",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"engine"}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.evaluations, c.duration} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Observe records one evaluation. Safe to call on a nil Collector.
func (c *Collector) Observe(engine string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.evaluations.WithLabelValues(engine, outcome).Inc()
	c.duration.WithLabelValues(engine).Observe(elapsed.Seconds())
}
