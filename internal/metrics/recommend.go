package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction, recommendation and ingest metrics.
var (
	// ExtractionTotal counts keyword extraction outcomes: parsed, partial, fallback.
	ExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extraction_total",
			Help:      "Keyword extraction outcomes",
		},
		[]string{"outcome"},
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recommendations_total",
			Help:      "Total recommendation requests by status",
		},
		[]string{"status"},
	)

	RecommendationSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "recommendation_size",
			Help:      "Number of assessments returned per recommendation",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)

	IngestedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingested_records_total",
			Help:      "Catalog records written to the vector index",
		},
		[]string{"status"},
	)
)
