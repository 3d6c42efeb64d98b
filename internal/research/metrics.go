package research

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dobby_research_cache_lookups_total",
		Help: "Query cache lookups by outcome.",
	}, []string{"outcome"})

	queryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dobby_research_query_failures_total",
		Help: "Search queries that failed and contributed no results.",
	})

	fallbacksUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dobby_research_fallbacks_total",
		Help: "Times a stage fell back to its deterministic path.",
	}, []string{"stage"})

	researchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dobby_research_duration_seconds",
		Help:    "End-to-end latency of one research request.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})
)
