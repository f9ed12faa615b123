package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// sounding analysis pipeline.
type Metrics struct {
	GranulesConsumed prometheus.Counter
	ProductsProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	EmptyProfiles    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Physical distribution of the computed instability.
	CAPEDistribution prometheus.Histogram

	// Archive metrics.
	ArchiveWrites        *prometheus.CounterVec // labels: backend={sqlite,postgres}, outcome={success,error}
	ArchiveWriteDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		GranulesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "granules_consumed_total",
			Help:      "Total granule documents read from the source.",
		}),
		ProductsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "products_produced_total",
			Help:      "Total per-footprint sounding products written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "transform_errors_total",
			Help:      "Total granule documents that failed transformation.",
		}),
		EmptyProfiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "empty_profiles_total",
			Help:      "Footprints skipped because the surface mask selected no levels.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sounding_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "batch_size",
			Help:      "Number of granule documents per extracted batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CAPEDistribution: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "cape_joules_per_kg",
			Help:      "Distribution of computed CAPE across footprints.",
			Buckets:   []float64{0, 100, 250, 500, 1000, 1500, 2500, 4000, 6000},
		}),
		ArchiveWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sounding_etl",
			Name:      "archive_writes_total",
			Help:      "Archive batch writes by backend and outcome.",
		}, []string{"backend", "outcome"}),
		ArchiveWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sounding_etl",
			Name:      "archive_write_duration_seconds",
			Help:      "Duration of archive batch inserts.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}

	prometheus.MustRegister(
		m.GranulesConsumed,
		m.ProductsProduced,
		m.TransformErrors,
		m.EmptyProfiles,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.CAPEDistribution,
		m.ArchiveWrites,
		m.ArchiveWriteDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		GranulesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "granules_consumed_total"}),
		ProductsProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "products_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "transform_errors_total"}),
		EmptyProfiles:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "empty_profiles_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sounding_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "batch_processing_duration_seconds"}),
		CAPEDistribution:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "cape_joules_per_kg"}),
		ArchiveWrites:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sounding_etl", Name: "archive_writes_total"}, []string{"backend", "outcome"}),
		ArchiveWriteDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sounding_etl", Name: "archive_write_duration_seconds"}),
	}
}
