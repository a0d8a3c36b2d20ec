// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)

Recommendation Metrics:
  - recommend_queries_total: Queries by kind and outcome (counter)
  - recommend_query_duration_seconds: Query latency by kind (histogram)
  - recommend_fallbacks_total: Queries answered from a fallback (counter)
  - recommend_candidates_returned: Result size per query (histogram)

Knowledge Metrics:
  - knowledge_snapshot_version: Live snapshot version (gauge)
  - knowledge_snapshot_built_timestamp_seconds: Build time of live snapshot (gauge)
  - knowledge_snapshot_products: Products in live snapshot (gauge)
  - knowledge_load_duration_seconds, knowledge_loads_total
  - knowledge_refreshes_total: Labels: trigger, result

Builder Metrics:
  - builder_run_duration_seconds, builder_runs_total
  - builder_orders_scanned, builder_orders_used
  - builder_last_success_timestamp_seconds

Infrastructure Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - events_published_total, events_consumed_total
  - circuit_breaker_state, circuit_breaker_rejections_total
  - cache_hits_total, cache_misses_total

# Usage

	start := time.Now()
	recs, err := svc.ByProduct(ctx, id, 10, nil)
	metrics.RecordQuery("product", time.Since(start), len(recs), err)
*/
package metrics
