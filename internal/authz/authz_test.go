// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package authz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/logging"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"viewer", ObjectRecommendations, ActionRead, true},
		{"viewer", ObjectStatus, ActionRead, true},
		{"viewer", ObjectKnowledge, ActionRefresh, false},
		{"operator", ObjectRecommendations, ActionRead, true},
		{"operator", ObjectKnowledge, ActionRefresh, true},
		{"operator", ObjectKnowledge, ActionRebuild, false},
		{"admin", ObjectKnowledge, ActionRebuild, true},
		{"admin", ObjectKnowledge, ActionRefresh, true},
		{"admin", "anything", "whatever", true},
		{"stranger", ObjectRecommendations, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			// Twice: the second answer comes from the cache.
			for i := 0; i < 2; i++ {
				got, err := e.Enforce(tt.role, tt.object, tt.action)
				if err != nil {
					t.Fatalf("Enforce() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Enforce() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEnforcer_EnforceRoles(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"no roles uses default viewer", nil, false},
		{"any role suffices", []string{"viewer", "operator"}, true},
		{"unknown roles", []string{"guest"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EnforceRoles(tt.roles, ObjectKnowledge, ActionRefresh)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("EnforceRoles(%v) = %v, want %v", tt.roles, got, tt.want)
			}
		})
	}

	allowed, err := e.EnforceRoles(nil, ObjectRecommendations, ActionRead)
	if err != nil || !allowed {
		t.Errorf("default role read = %v, %v; want true", allowed, err)
	}
}

func TestEnforcer_FilePolicyAndReload(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(policyPath, []byte("p, viewer, knowledge, refresh\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultEnforcerConfig()
	cfg.PolicyPath = policyPath
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	if ok, _ := e.Enforce("viewer", ObjectKnowledge, ActionRefresh); !ok {
		t.Fatal("file policy should allow viewer refresh")
	}

	if err := os.WriteFile(policyPath, []byte("p, admin, knowledge, refresh\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if ok, _ := e.Enforce("viewer", ObjectKnowledge, ActionRefresh); ok {
		t.Error("cached decision survived Reload")
	}
}

func TestNewEnforcer_MissingPolicyFile(t *testing.T) {
	cfg := DefaultEnforcerConfig()
	cfg.PolicyPath = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := NewEnforcer(cfg); err == nil {
		t.Error("NewEnforcer() expected error for missing policy file")
	}
}

func TestMiddleware_Authorize(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(newTestEnforcer(t), logging.NewAuditLoggerWithLogger(zerolog.New(&buf)), nil)
	h := mw.Authorize(ObjectKnowledge, ActionRebuild)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	tests := []struct {
		name       string
		subject    *auth.AuthSubject
		wantStatus int
	}{
		{"admin allowed", &auth.AuthSubject{ID: "ops-1", Roles: []string{auth.RoleAdmin}}, http.StatusAccepted},
		{"operator denied", &auth.AuthSubject{ID: "ops-2", Roles: []string{auth.RoleOperator}}, http.StatusForbidden},
		{"no subject", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/rebuild", nil)
			if tt.subject != nil {
				req = req.WithContext(auth.ContextWithSubject(req.Context(), tt.subject))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	if !strings.Contains(buf.String(), `"event":"access_denied"`) {
		t.Errorf("audit log missing access_denied: %s", buf.String())
	}
}
