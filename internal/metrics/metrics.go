// Package metrics exposes Prometheus instrumentation for conversions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for ConversionsTotal
const (
	OutcomeSuccess    = "success"
	OutcomeEmptyInput = "empty_input"
	OutcomeParseError = "parse_error"
	OutcomeError      = "error"
)

// Metrics holds the collectors for one registry
type Metrics struct {
	ConversionsTotal *prometheus.CounterVec
	SkippedLines     prometheus.Counter
	Elements         prometheus.Histogram
	OutputBytes      prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textjson_conversions_total",
				Help: "Number of conversion requests by outcome.",
			},
			[]string{"outcome"},
		),
		SkippedLines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "textjson_skipped_array_lines_total",
				Help: "Bracketed lines that failed to parse and were skipped.",
			},
		),
		Elements: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textjson_result_elements",
				Help:    "Element count of successful conversions.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		OutputBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textjson_output_bytes",
				Help:    "Size in bytes of serialized conversion output.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
	}
	reg.MustRegister(m.ConversionsTotal, m.SkippedLines, m.Elements, m.OutputBytes)
	return m
}

// ObserveSuccess records a finished conversion
func (m *Metrics) ObserveSuccess(elements, bytes, skipped int) {
	m.ConversionsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.Elements.Observe(float64(elements))
	m.OutputBytes.Observe(float64(bytes))
	m.SkippedLines.Add(float64(skipped))
}

// ObserveFailure records a failed conversion under the given outcome
func (m *Metrics) ObserveFailure(outcome string) {
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}
