package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// completionsTotal counts model calls by pipeline operation and result
	completionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctai_llm_completions_total",
		Help: "Language model completions by operation and result",
	}, []string{"operation", "result"})

	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ctai_llm_completion_duration_seconds",
		Help:    "Language model completion latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
	}, []string{"operation"})

	warehouseQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctai_warehouse_queries_total",
		Help: "Warehouse queries by result",
	}, []string{"result"})

	// parseFallbacksTotal counts model replies replaced by a default record
	parseFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctai_parse_fallbacks_total",
		Help: "Model replies that were not valid JSON and fell back to a default record",
	}, []string{"record"})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
