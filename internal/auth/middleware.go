// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package auth

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tomtom215/basketrec/internal/logging"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

func plainErrorWriter(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
	http.Error(w, message, status)
}

// Middleware authenticates requests and stores the AuthSubject in the
// request context.
type Middleware struct {
	mode       AuthMode
	jwt        *JWTManager
	basic      *BasicAuthManager
	audit      *logging.AuditLogger
	writeError ErrorWriter
}

// NewMiddleware creates the middleware. jwtManager is required in
// AuthModeJWT. audit and writeError may be nil.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager, audit *logging.AuditLogger, writeError ErrorWriter) (*Middleware, error) {
	if mode == AuthModeJWT && jwtManager == nil {
		return nil, fmt.Errorf("jwt manager is required for auth mode %q", mode)
	}
	if writeError == nil {
		writeError = plainErrorWriter
	}
	return &Middleware{
		mode:       mode,
		jwt:        jwtManager,
		audit:      audit,
		writeError: writeError,
	}, nil
}

// NewBasicMiddleware creates the middleware for AuthModeBasic.
func NewBasicMiddleware(basic *BasicAuthManager, audit *logging.AuditLogger, writeError ErrorWriter) (*Middleware, error) {
	if basic == nil {
		return nil, fmt.Errorf("basic auth manager is required for auth mode %q", AuthModeBasic)
	}
	m, err := NewMiddleware(AuthModeBasic, nil, audit, writeError)
	if err != nil {
		return nil, err
	}
	m.basic = basic
	return m, nil
}

// RequireAuth rejects requests without valid credentials with 401.
// In AuthModeNone every request runs as the anonymous administrator.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), anonymousSubject())))
			return
		}

		subject, err := m.authenticate(r)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

// OptionalAuth attaches a subject when a token is presented and passes
// anonymous requests through untouched. A presented but invalid token is
// still rejected.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone || r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := m.authenticate(r)
		if err != nil {
			m.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	if m.mode == AuthModeBasic {
		return m.basic.Authenticate(r.Header.Get("Authorization"))
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return claims.Subject(), nil
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Debug().Err(err).Msg("authentication failed")
	if m.audit != nil {
		m.audit.Log(&logging.AuditEvent{
			Event:  "auth_failure",
			Method: r.Method,
			Path:   r.URL.Path,
			IP:     ClientIP(r),
			Token:  m.presentedToken(r),
			Error:  err.Error(),
		})
	}

	if m.mode == AuthModeBasic {
		w.Header().Set("WWW-Authenticate", `Basic realm="basketrec", charset="UTF-8"`)
		m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: invalid credentials")
		return
	}

	msg := "Unauthorized: invalid token"
	switch {
	case errors.Is(err, ErrNoCredentials):
		msg = "Unauthorized: missing bearer token"
	case errors.Is(err, ErrExpiredCredentials):
		msg = "Unauthorized: token expired"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="basketrec"`)
	m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg)
}

// presentedToken returns the bearer token of a failed request for the
// audit trail. Basic credentials carry a password and are never recorded.
func (m *Middleware) presentedToken(r *http.Request) string {
	if m.mode != AuthModeJWT {
		return ""
	}
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return ""
	}
	return token
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}
	return strings.TrimSpace(token), nil
}

// ClientIP returns the request's remote host without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
