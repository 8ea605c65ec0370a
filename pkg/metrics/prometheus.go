package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	vixLevel      prometheus.Gauge
	interval      prometheus.Gauge
	cycleDuration prometheus.Histogram
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketmind_cycles_total",
				Help: "Total number of assessment cycles by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketmind_source_errors_total",
				Help: "Total number of data source errors",
			},
			[]string{"source"},
		),
		vixLevel: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketmind_vix_level",
				Help: "Last observed volatility index level",
			},
		),
		interval: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketmind_assessment_interval_minutes",
				Help: "Current adaptive assessment interval",
			},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketmind_cycle_duration_seconds",
				Help:    "Duration of assessment cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketmind_last_price",
				Help: "Last quoted price for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordCycle records an assessment cycle outcome.
func (r *Recorder) RecordCycle(outcome string) {
	r.cyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordSourceError records a data source error.
func (r *Recorder) RecordSourceError(source string) {
	r.errorsTotal.WithLabelValues(source).Inc()
}

// RecordVIX records the observed volatility index level.
func (r *Recorder) RecordVIX(level float64) {
	r.vixLevel.Set(level)
}

// RecordInterval records the active assessment interval.
func (r *Recorder) RecordInterval(minutes int) {
	r.interval.Set(float64(minutes))
}

// RecordCycleDuration records how long a cycle took.
func (r *Recorder) RecordCycleDuration(seconds float64) {
	r.cycleDuration.Observe(seconds)
}

// RecordQuote records the last price seen for a symbol.
func (r *Recorder) RecordQuote(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
