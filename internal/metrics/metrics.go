// Package metrics exposes Prometheus instrumentation for the debate gateway.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}

// Package-level metrics (registered once)
var (
	metricsOnce           sync.Once
	debatesTotal          *prometheus.CounterVec
	debateDuration        prometheus.Histogram
	activeDebatesGauge    prometheus.Gauge
	evidenceCitationsHist prometheus.Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		debatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cogito_debates_total",
				Help: "Total debates by outcome (completed, timed_out, cancelled, errored)",
			},
			[]string{"outcome"},
		)

		debateDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cogito_debate_duration_seconds",
				Help:    "Wall clock duration of full debate runs",
				Buckets: []float64{5, 15, 30, 60, 120, 180, 240, 300},
			},
		)

		activeDebatesGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cogito_active_debates",
				Help: "Number of debates currently registered",
			},
		)

		evidenceCitationsHist = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cogito_evidence_citations_per_debate",
				Help:    "Evidence citations captured per debate across both sides",
				Buckets: []float64{0, 3, 6, 9, 12, 18, 24},
			},
		)
	})
}

// Outcome labels for the debates counter.
const (
	OutcomeCompleted = "completed"
	OutcomeTimedOut  = "timed_out"
	OutcomeCancelled = "cancelled"
	OutcomeErrored   = "errored"
)

// RecordDebate counts one finished debate and observes its duration.
func RecordDebate(outcome string, elapsed time.Duration) {
	initMetrics()
	debatesTotal.WithLabelValues(outcome).Inc()
	debateDuration.Observe(elapsed.Seconds())
}

// RecordEvidence observes how many citations one debate captured.
func RecordEvidence(total int) {
	initMetrics()
	evidenceCitationsHist.Observe(float64(total))
}

// SetActiveDebates updates the registered debate gauge.
func SetActiveDebates(n int) {
	initMetrics()
	activeDebatesGauge.Set(float64(n))
}
