package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the ingestion counters exported on /metrics
type Metrics struct {
	runs     *prometheus.CounterVec
	records  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the ingestion metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afa",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Bulletin ingestion runs by product type and outcome.",
		}, []string{"product_type", "outcome"}),
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "afa",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Product records extracted and stored.",
		}, []string{"product_type"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "afa",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time spent ingesting one bulletin.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"product_type"}),
	}
}
