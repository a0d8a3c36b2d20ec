// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package middleware provides infrastructure HTTP middleware for the API.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: X-Request-ID propagation plus request and correlation ids
    in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labeled
    by chi route pattern
  - AccessLog: one structured log line per request, warn for slow or
    failed requests

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Route("/api/v1/recommend", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Post("/product", h.ByProduct)
	})

Authentication and authorization live in the auth and authz packages.
*/
package middleware
