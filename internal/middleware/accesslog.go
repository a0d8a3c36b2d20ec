// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/basketrec/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which requests are
// logged at warn level.
const DefaultSlowRequestThreshold = time.Second

// AccessLog logs one line per request with the request's logging context.
// Requests slower than slow are logged at warn level; health probes are
// logged at trace level.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			switch {
			case duration > slow:
				event = logger.Warn().Dur("threshold", slow)
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logger.Warn()
			case isProbe(r.URL.Path):
				event = logger.Trace()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}

func isProbe(path string) bool {
	return path == "/api/v1/health/live" || path == "/api/v1/health/ready"
}
