package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches        *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	evalError      *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bm_fetches_total",
				Help: "Total number of source fetches by outcome",
			},
			[]string{"source", "outcome"},
		),
		recordsWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bm_records_written_total",
				Help: "Total number of series records upserted",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bm_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bm_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		evalError: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bm_forecast_abs_error",
				Help: "Absolute error of the latest reconciled forecast",
			},
			[]string{"series_type", "market_type", "model"},
		),
	}
}

// RecordFetch records one source fetch attempt with its outcome.
func (r *Recorder) RecordFetch(source, outcome string) {
	r.fetches.WithLabelValues(source, outcome).Inc()
}

// RecordRecordsWritten counts upserted series records by kind.
func (r *Recorder) RecordRecordsWritten(kind string, n int) {
	r.recordsWritten.WithLabelValues(kind).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordEvaluation records the absolute error of a reconciled forecast.
func (r *Recorder) RecordEvaluation(seriesType, marketType, model string, absError float64) {
	r.evalError.WithLabelValues(seriesType, marketType, model).Set(absError)
}
