// Package metrics exposes Prometheus collectors for the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors. One instance is shared across services.
type Metrics struct {
	TicketsProcessed  *prometheus.CounterVec
	ExtractionSeconds prometheus.Histogram

	EmbeddingRequests *prometheus.CounterVec
	EmbeddingSeconds  prometheus.Histogram

	SimilaritySearches *prometheus.CounterVec

	InsightsCreated  *prometheus.CounterVec
	InsightsMerged   *prometheus.CounterVec
	InsightsFiltered prometheus.Counter
	AnalyzerFailures *prometheus.CounterVec
	AggregationRuns  *prometheus.CounterVec
}

// New registers all collectors on the given registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TicketsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_tickets_processed_total",
			Help: "Tickets run through signal extraction, by outcome.",
		}, []string{"outcome"}),
		ExtractionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "insightd_extraction_duration_seconds",
			Help:    "Wall time of one signal extraction.",
			Buckets: prometheus.DefBuckets,
		}),
		EmbeddingRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_embedding_requests_total",
			Help: "Embedding service calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		EmbeddingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "insightd_embedding_duration_seconds",
			Help:    "Wall time of one embedding service call.",
			Buckets: prometheus.DefBuckets,
		}),
		SimilaritySearches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_similarity_searches_total",
			Help: "Similarity retrievals, by outcome.",
		}, []string{"outcome"}),
		InsightsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_insights_created_total",
			Help: "New insights created, by type.",
		}, []string{"type"}),
		InsightsMerged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_insights_merged_total",
			Help: "Candidate insights merged into existing ones, by type.",
		}, []string{"type"}),
		InsightsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "insightd_insights_filtered_total",
			Help: "Candidate insights dropped for low confidence.",
		}),
		AnalyzerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_analyzer_failures_total",
			Help: "Analyzer runs that panicked or errored, by analyzer.",
		}, []string{"analyzer"}),
		AggregationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_aggregation_runs_total",
			Help: "Aggregation sweeps, by outcome.",
		}, []string{"outcome"}),
	}
}
