// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package authz

import (
	"net/http"
	"strings"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/logging"
)

// Middleware enforces the policy on routes behind auth.RequireAuth.
type Middleware struct {
	enforcer   *Enforcer
	audit      *logging.AuditLogger
	writeError auth.ErrorWriter
}

// NewMiddleware creates the middleware. audit and writeError may be nil.
func NewMiddleware(enforcer *Enforcer, audit *logging.AuditLogger, writeError auth.ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{enforcer: enforcer, audit: audit, writeError: writeError}
}

// Authorize returns a chi-compatible middleware allowing only subjects
// whose roles grant action on object.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: no authentication context")
				return
			}

			allowed, err := m.enforcer.EnforceRoles(subject.Roles, object, action)
			if err != nil {
				logging.CtxErr(r.Context(), err).Msg("authorization error")
				m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			if !allowed {
				if m.audit != nil {
					m.audit.Log(&logging.AuditEvent{
						Event:   "access_denied",
						Subject: subject.ID,
						Role:    strings.Join(subject.Roles, ","),
						Method:  r.Method,
						Path:    r.URL.Path,
						IP:      auth.ClientIP(r),
						Error:   object + ":" + action,
					})
				}
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
