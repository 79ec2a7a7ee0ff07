// Package metrics exposes the Prometheus registry for the adjudication
// engine, following the teacher's sync.Once-guarded global registry shape
// (observability/metrics/potso.go), recomposed for pipeline step timings
// and decision/window counters instead of staking epochs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics bundles the counters and gauges this engine exposes.
type DecisionMetrics struct {
	recordsProcessed *prometheus.CounterVec
	stepDuration     *prometheus.HistogramVec
	stepFailures     *prometheus.CounterVec
	windowAttempts   prometheus.Gauge
	primeGateUsage   *prometheus.GaugeVec
}

var (
	once     sync.Once
	registry *DecisionMetrics
)

// Decision returns the lazily-initialized global registry.
func Decision() *DecisionMetrics {
	once.Do(func() {
		registry = &DecisionMetrics{
			recordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "loadshield",
				Subsystem: "decision",
				Name:      "records_total",
				Help:      "Count of adjudicated records by reason code (empty for accepted).",
			}, []string{"reason"}),
			stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "loadshield",
				Subsystem: "pipeline",
				Name:      "step_duration_seconds",
				Help:      "Latency distribution for individual step invocations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"step"}),
			stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "loadshield",
				Subsystem: "pipeline",
				Name:      "step_failures_total",
				Help:      "Count of step invocations that returned an error or panicked.",
			}, []string{"step"}),
			windowAttempts: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "loadshield",
				Subsystem: "window",
				Name:      "distinct_customer_days",
				Help:      "Count of distinct (customer, day) buckets observed so far in the run.",
			}),
			primeGateUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "loadshield",
				Subsystem: "window",
				Name:      "prime_gate_usage",
				Help:      "Global prime-gate approvals recorded for a given UTC day key.",
			}, []string{"day"}),
		}
		prometheus.MustRegister(
			registry.recordsProcessed,
			registry.stepDuration,
			registry.stepFailures,
			registry.windowAttempts,
			registry.primeGateUsage,
		)
	})
	return registry
}

// ObserveRecord increments the per-reason record counter. reason is empty
// for an accepted record.
func (m *DecisionMetrics) ObserveRecord(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "accepted"
	}
	m.recordsProcessed.WithLabelValues(reason).Inc()
}

// ObserveStepDuration records how long one step invocation took.
func (m *DecisionMetrics) ObserveStepDuration(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// IncStepFailure bumps the failure counter for a step.
func (m *DecisionMetrics) IncStepFailure(step string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(step).Inc()
}

// SetDistinctCustomerDays reports the current cardinality of the daily
// attempts window.
func (m *DecisionMetrics) SetDistinctCustomerDays(n int) {
	if m == nil {
		return
	}
	m.windowAttempts.Set(float64(n))
}

// SetPrimeGateUsage reports the current global prime-gate count for a day.
func (m *DecisionMetrics) SetPrimeGateUsage(day string, count uint32) {
	if m == nil {
		return
	}
	m.primeGateUsage.WithLabelValues(day).Set(float64(count))
}
