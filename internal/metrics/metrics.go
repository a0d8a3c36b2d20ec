// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Recommendation Query Metrics
	RecommendQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total recommendation queries by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: product, cart, trending, personalized
	)

	RecommendQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"kind"},
	)

	RecommendFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Total queries answered from a fallback path",
		},
		[]string{"kind"}, // popularity, trending
	)

	RecommendCandidatesReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_returned",
			Help:    "Number of candidates returned per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"kind"},
	)

	// Knowledge Snapshot Metrics
	KnowledgeSnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_snapshot_version",
			Help: "Version of the live knowledge snapshot",
		},
	)

	KnowledgeSnapshotBuiltAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_snapshot_built_timestamp_seconds",
			Help: "Unix time the live knowledge snapshot was built",
		},
	)

	KnowledgeSnapshotProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_snapshot_products",
			Help: "Number of products in the live knowledge snapshot",
		},
	)

	KnowledgeLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "knowledge_load_duration_seconds",
			Help:    "Duration of knowledge snapshot loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	KnowledgeLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_loads_total",
			Help: "Total knowledge snapshot loads by result",
		},
		[]string{"result"},
	)

	KnowledgeRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_refreshes_total",
			Help: "Total knowledge refresh requests by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: api, event, startup
	)

	// Builder Metrics
	BuilderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "builder_run_duration_seconds",
			Help:    "Duration of association builder runs in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	BuilderRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_runs_total",
			Help: "Total association builder runs by result",
		},
		[]string{"result"},
	)

	BuilderOrdersScanned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_orders_scanned",
			Help: "Qualifying orders read by the last successful build",
		},
	)

	BuilderOrdersUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_orders_used",
			Help: "Multi-item orders mined by the last successful build",
		},
	)

	BuilderLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_last_success_timestamp_seconds",
			Help: "Unix time of the last successful build",
		},
	)

	// Event Bus Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total events consumed by topic and result",
		},
		[]string{"topic", "result"}, // result: refreshed, stale, invalid, failed
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total calls rejected by an open circuit breaker",
		},
		[]string{"name"},
	)

	// Enrichment Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordQuery records one recommendation query.
func RecordQuery(kind string, duration time.Duration, returned int, err error) {
	RecommendQueriesTotal.WithLabelValues(kind, result(err)).Inc()
	RecommendQueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		RecommendCandidatesReturned.WithLabelValues(kind).Observe(float64(returned))
	}
}

// RecordFallback records a query answered by a fallback path.
func RecordFallback(kind string) {
	RecommendFallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordKnowledgeLoad records a snapshot load attempt. On success the
// snapshot gauges are moved to the new snapshot.
func RecordKnowledgeLoad(version, products int, builtAt time.Time, duration time.Duration, err error) {
	KnowledgeLoadDuration.Observe(duration.Seconds())
	KnowledgeLoadsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	KnowledgeSnapshotVersion.Set(float64(version))
	KnowledgeSnapshotProducts.Set(float64(products))
	if !builtAt.IsZero() {
		KnowledgeSnapshotBuiltAt.Set(float64(builtAt.Unix()))
	}
}

// RecordRefresh records an explicit refresh request.
func RecordRefresh(trigger string, err error) {
	KnowledgeRefreshesTotal.WithLabelValues(trigger, result(err)).Inc()
}

// RecordBuild records an association builder run.
func RecordBuild(duration time.Duration, ordersScanned, ordersUsed int, err error) {
	BuilderRunDuration.Observe(duration.Seconds())
	BuilderRunsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	BuilderOrdersScanned.Set(float64(ordersScanned))
	BuilderOrdersUsed.Set(float64(ordersUsed))
	BuilderLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEventPublished records a publish attempt on topic.
func RecordEventPublished(topic string, err error) {
	EventsPublishedTotal.WithLabelValues(topic, result(err)).Inc()
}

// RecordEventConsumed records the handling outcome of a consumed event.
func RecordEventConsumed(topic, outcome string) {
	EventsConsumedTotal.WithLabelValues(topic, outcome).Inc()
}

// SetCircuitBreakerState records a breaker state (0 closed, 1 half-open, 2 open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRejection counts a call rejected by an open breaker.
func RecordCircuitBreakerRejection(name string) {
	CircuitBreakerRejections.WithLabelValues(name).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// StatusLabel formats an HTTP status code as a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
