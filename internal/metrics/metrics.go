// Package metrics exposes Prometheus collectors for questionnaire traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Delivery outcomes.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Metrics holds the collectors. A nil *Metrics is a no-op.
type Metrics struct {
	submissions *prometheus.CounterVec
	rejected    prometheus.Counter
	deliveries  *prometheus.CounterVec
	analysis    prometheus.Histogram
}

// New registers the collectors with reg. Registration failures panic, the
// same as the promauto helpers.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blueprint",
				Name:      "submissions_total",
				Help:      "Questionnaires scored and stored, by persona and risk profile.",
			},
			[]string{"persona", "risk_profile"},
		),
		rejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "blueprint",
				Name:      "submissions_rejected_total",
				Help:      "Questionnaires rejected by validation.",
			},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blueprint",
				Name:      "deliveries_total",
				Help:      "Blueprint deliveries by channel and outcome.",
			},
			[]string{"channel", "status"},
		),
		analysis: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "blueprint",
				Name:      "analysis_duration_seconds",
				Help:      "Time spent scoring a questionnaire and writing its narrative.",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
	}
	reg.MustRegister(m.submissions, m.rejected, m.deliveries, m.analysis)
	return m
}

// ObserveSubmission counts a stored submission.
func (m *Metrics) ObserveSubmission(persona, riskProfile string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(persona, riskProfile).Inc()
}

func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// ObserveDelivery counts one delivery attempt outcome for channel.
func (m *Metrics) ObserveDelivery(channel, status string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.analysis.Observe(d.Seconds())
}
