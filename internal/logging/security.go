// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuditEvent is one admin access decision or admin action.
type AuditEvent struct {
	// Event names what happened: auth_failure, access_denied, refresh, rebuild.
	Event   string
	Subject string
	Role    string
	Method  string
	Path    string
	IP      string
	// Token is the credential presented with a failed request. Only a
	// masked form is written.
	Token   string
	Success bool
	Error   string
}

// AuditLogger writes admin audit events with identifiers masked.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger on the global logger.
func NewAuditLogger() *AuditLogger {
	return NewAuditLoggerWithLogger(Logger())
}

// NewAuditLoggerWithLogger creates an audit logger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Log writes event. Failures are logged at warn level.
func (l *AuditLogger) Log(event *AuditEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.Subject != "" {
		e = e.Str("subject", SanitizeSubject(event.Subject))
	}
	if event.Role != "" {
		e = e.Str("role", event.Role)
	}
	if event.Method != "" {
		e = e.Str("method", event.Method).Str("path", event.Path)
	}
	if event.IP != "" {
		e = e.Str("ip", event.IP)
	}
	if event.Token != "" {
		e = e.Str("token", SanitizeToken(event.Token))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	e.Msg("admin audit")
}

// SanitizeToken masks a bearer token to its first and last four characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeSubject masks a token subject.
func SanitizeSubject(subject string) string {
	if subject == "" {
		return ""
	}
	if len(subject) <= 8 {
		return "***"
	}
	return subject[:4] + "..." + subject[len(subject)-4:]
}

// SanitizeError hides error messages that may echo credentials.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, pattern := range []string{"secret", "bearer", "authorization", "password"} {
		if strings.Contains(lower, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
