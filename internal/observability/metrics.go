// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingest metrics
	VideosFetched    *prometheus.CounterVec
	VideoFetchErrors *prometheus.CounterVec

	// Discovery metrics
	CandidatesDiscovered prometheus.Counter
	ExistingMatches      prometheus.Counter
	EntriesAdded         prometheus.Counter

	// Price metrics
	PriceLookups     *prometheus.CounterVec
	PriceLookupTime  *prometheus.HistogramVec
	PriceCacheHits   prometheus.Counter
	PriceCacheMisses prometheus.Counter

	// Analysis metrics
	LLMRequests      *prometheus.CounterVec
	LLMRequestTime   prometheus.Histogram
	AnalysisCacheHit *prometheus.CounterVec
	RecordsRejected  prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	EntriesReconciled prometheus.Counter
	FeedsPublished    prometheus.Counter

	// Storage metrics
	StoreOpDuration *prometheus.HistogramVec
	StoreOpErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stock_lab"
	}

	return &Metrics{
		VideosFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "videos_fetched_total",
			Help:      "Total number of videos fetched by channel",
		}, []string{"channel"}),
		VideoFetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetch_errors_total",
			Help:      "Total number of video fetch errors by source",
		}, []string{"source"}),

		CandidatesDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_total",
			Help:      "Total number of new ticker-channel candidates discovered",
		}),
		ExistingMatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "existing_matches_total",
			Help:      "Total number of already-tracked combinations seen in video batches",
		}),
		EntriesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "entries_added_total",
			Help:      "Total number of placeholder entries promoted into the registry",
		}),

		PriceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "lookups_total",
			Help:      "Total number of price lookups by provider and result",
		}, []string{"provider", "result"}),
		PriceLookupTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "lookup_duration_seconds",
			Help:      "Price lookup latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		PriceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "cache_hits_total",
			Help:      "Total number of historical price cache hits",
		}),
		PriceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "cache_misses_total",
			Help:      "Total number of historical price cache misses",
		}),

		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests by status",
		}, []string{"status"}),
		LLMRequestTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		AnalysisCacheHit: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "cache_total",
			Help:      "Total number of analysis cache lookups by result",
		}, []string{"result"}),
		RecordsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "records_rejected_total",
			Help:      "Total number of analysis records rejected by validation",
		}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by phase and status",
		}, []string{"phase", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline phase duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),
		EntriesReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "entries_reconciled_total",
			Help:      "Total number of registry entries written by reconciliation",
		}),
		FeedsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "feeds_published_total",
			Help:      "Total number of feed files published",
		}),

		StoreOpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		StoreOpErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Total number of storage operation errors",
		}, []string{"store", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordVideosFetched adds to the per-channel video counter.
func RecordVideosFetched(channel string, n int) {
	DefaultMetrics.VideosFetched.WithLabelValues(channel).Add(float64(n))
}

// RecordFetchError increments the fetch error counter for a source.
func RecordFetchError(source string) {
	DefaultMetrics.VideoFetchErrors.WithLabelValues(source).Inc()
}

// RecordDiscovery records one discovery pass.
func RecordDiscovery(newCandidates, existingMatches int) {
	DefaultMetrics.CandidatesDiscovered.Add(float64(newCandidates))
	DefaultMetrics.ExistingMatches.Add(float64(existingMatches))
}

// RecordEntriesAdded adds to the promoted-entries counter.
func RecordEntriesAdded(n int) {
	DefaultMetrics.EntriesAdded.Add(float64(n))
}

// RecordPriceLookup records one provider lookup.
func RecordPriceLookup(provider, result string, seconds float64) {
	DefaultMetrics.PriceLookups.WithLabelValues(provider, result).Inc()
	DefaultMetrics.PriceLookupTime.WithLabelValues(provider).Observe(seconds)
}

// RecordPriceCache records a historical price cache lookup.
func RecordPriceCache(hit bool) {
	if hit {
		DefaultMetrics.PriceCacheHits.Inc()
	} else {
		DefaultMetrics.PriceCacheMisses.Inc()
	}
}

// RecordLLMRequest records one LLM completion attempt.
func RecordLLMRequest(status string, seconds float64) {
	DefaultMetrics.LLMRequests.WithLabelValues(status).Inc()
	DefaultMetrics.LLMRequestTime.Observe(seconds)
}

// RecordAnalysisCache records an analysis cache lookup.
func RecordAnalysisCache(result string) {
	DefaultMetrics.AnalysisCacheHit.WithLabelValues(result).Inc()
}

// RecordRecordRejected increments the rejected-records counter.
func RecordRecordRejected() {
	DefaultMetrics.RecordsRejected.Inc()
}

// RecordPipelineRun records a pipeline phase run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordReconciled adds to the reconciled-entries counter.
func RecordReconciled(n int) {
	DefaultMetrics.EntriesReconciled.Add(float64(n))
}

// RecordFeedPublished increments the published-feeds counter.
func RecordFeedPublished() {
	DefaultMetrics.FeedsPublished.Inc()
}

// RecordStoreOp records storage operation metrics.
func RecordStoreOp(store, operation string, seconds float64, err error) {
	DefaultMetrics.StoreOpDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreOpErrors.WithLabelValues(store, operation).Inc()
	}
}
