package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalization run.
type Metrics struct {
	RecordsExtracted  prometheus.Counter
	RecordsSkipped    prometheus.Counter
	RecordsNormalized prometheus.Counter
	RecordsFailed     prometheus.Counter
	RecordsLoaded     prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Per-record quality observations.
	QualityScore    prometheus.Histogram
	AnomalyFindings *prometheus.CounterVec // label: severity
	RunDuration     prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsExtracted,
		m.RecordsSkipped,
		m.RecordsNormalized,
		m.RecordsFailed,
		m.RecordsLoaded,
		m.PipelineRunning,
		m.QualityScore,
		m.AnomalyFindings,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "records_extracted_total",
			Help:      "Total raw records read from the bulk export.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "records_skipped_total",
			Help:      "Raw records outside the sector/care-home predicate.",
		}),
		RecordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "records_normalized_total",
			Help:      "Records successfully assembled into facilities.",
		}),
		RecordsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "records_failed_total",
			Help:      "Records too malformed to assemble.",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "records_loaded_total",
			Help:      "Facilities upserted into the destination store.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carehome_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		QualityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carehome_etl",
			Name:      "quality_score",
			Help:      "Completeness score distribution across assembled facilities.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		AnomalyFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carehome_etl",
			Name:      "anomaly_findings_total",
			Help:      "Anomaly findings by severity.",
		}, []string{"severity"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carehome_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
	}
}
