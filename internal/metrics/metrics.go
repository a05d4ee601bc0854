package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landparser_pipeline_runs_total",
			Help: "Total number of pipeline runs by resulting signal",
		},
		[]string{"signal"},
	)

	PipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "landparser_pipeline_run_duration_seconds",
			Help:    "Duration of uncached pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"signal"},
	)

	PipelineCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landparser_pipeline_cache_requests_total",
			Help: "Pipeline cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	ListingsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landparser_listings_collected_total",
			Help: "Total number of listings collected from the provider",
		},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landparser_exports_total",
			Help: "Workbook exports by kind and status",
		},
		[]string{"kind", "status"},
	)
)
