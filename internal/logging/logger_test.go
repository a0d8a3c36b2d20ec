// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func captureLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("console test")

	if strings.Contains(buf.String(), `"level"`) {
		t.Errorf("expected console format (not JSON): %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), captureLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithBuildID(ctx, "build-1")

	Ctx(ctx).Info().Msg("with ids")
	CtxErr(ctx, errors.New("publish failed")).Msg("build failed")

	output := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"build_id":"build-1"`, `"level":"error"`, `"error":"publish failed"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestContextIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || BuildIDFromContext(ctx) != "" {
		t.Error("expected empty ids on a bare context")
	}

	ctx = ContextWithNewCorrelationID(ctx)
	if id := CorrelationIDFromContext(ctx); len(id) != 8 {
		t.Errorf("correlation id = %q, want 8 characters", id)
	}
	if id := GenerateRequestID(); len(id) != 36 {
		t.Errorf("request id = %q, want UUID", id)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("expected unique request ids")
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(captureLogger(&buf)))

	logger.WithGroup("svc").Info("service started", "name", "http", slog.Group("cfg", "port", 8080))

	output := buf.String()
	for _, want := range []string{`"svc.name":"http"`, `"svc.cfg.port":8080`, "service started"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

type secretValue string

func (secretValue) LogValue() slog.Value { return slog.StringValue("[redacted]") }

func TestSlogHandler_LevelsAndValuers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(captureLogger(&buf)))

	logger.Log(context.Background(), slog.LevelWarn+2, "between levels", "token", secretValue("abc"), slog.Group("", "flat", true))

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"token":"[redacted]"`, `"flat":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
	if strings.Contains(output, "abc") {
		t.Errorf("LogValuer not resolved: %s", output)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	var adapter watermill.LoggerAdapter = NewWatermillAdapter(captureLogger(&buf))

	adapter.With(watermill.LogFields{"topic": "knowledge.published"}).
		Error("handler failed", errors.New("boom"), watermill.LogFields{"uuid": "m1"})

	output := buf.String()
	for _, want := range []string{`"topic":"knowledge.published"`, `"uuid":"m1"`, `"error":"boom"`, "handler failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLoggerWithLogger(captureLogger(&buf))

	audit.Log(&AuditEvent{
		Event:   "access_denied",
		Subject: "user-123456789",
		Role:    "viewer",
		Method:  "POST",
		Path:    "/api/v1/recommend/refresh",
		Token:   "eyJhbGciOiJIUzI1NiJ9.payload",
		Error:   "invalid bearer token",
	})

	output := buf.String()
	if strings.Contains(output, "user-123456789") {
		t.Errorf("subject not masked: %s", output)
	}
	if strings.Contains(output, "payload") || !strings.Contains(output, `"token":"eyJh...load"`) {
		t.Errorf("token not masked: %s", output)
	}
	for _, want := range []string{`"status":"failed"`, `"level":"warn"`, `"error":"authentication error"`, `"component":"audit"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"empty token", SanitizeToken, "", ""},
		{"short token", SanitizeToken, "abc", "***"},
		{"long token", SanitizeToken, "eyJhbGciOiJIUzI1NiJ9.payload", "eyJh...load"},
		{"short subject", SanitizeSubject, "admin", "***"},
		{"long subject", SanitizeSubject, "user-123456789", "user...6789"},
		{"plain error", SanitizeError, "token expired", "token expired"},
		{"secret error", SanitizeError, "bad secret", "authentication error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
