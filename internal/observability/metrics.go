package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// crash-data ingestion pipeline.
type Metrics struct {
	IngestsTotal    *prometheus.CounterVec // labels: source={upload,sheet}
	RowsDropped     prometheus.Counter
	SnapshotRecords prometheus.Gauge

	// Sheet fetch metrics.
	FetchErrors   prometheus.Counter
	FetchDuration prometheus.Histogram

	// Kafka publishing metrics.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IngestsTotal,
		m.RowsDropped,
		m.SnapshotRecords,
		m.FetchErrors,
		m.FetchDuration,
		m.RecordsPublished,
		m.PublishErrors,
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
		IngestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crash_data",
			Name:      "ingests_total",
			Help:      "Completed ingestions by source.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_data",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded for an unparseable date.",
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crash_data",
			Name:      "snapshot_records",
			Help:      "Normalized records in the current snapshot.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_data",
			Name:      "fetch_errors_total",
			Help:      "Failed sheet fetch attempts.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crash_data",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a sheet fetch-and-decode cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_data",
			Name:      "records_published_total",
			Help:      "Normalized records published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crash_data",
			Name:      "publish_errors_total",
			Help:      "Failed sink topic publishes.",
		}),
	}
}
