// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package auth

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPassword = "correct-horse-battery"

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestNewBasicAuthManager(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		role     string
		wantRole string
		wantErr  bool
	}{
		{"valid", "rebuild-bot", testPassword, RoleAdmin, RoleAdmin, false},
		{"default role", "rebuild-bot", testPassword, "", RoleOperator, false},
		{"no username", "", testPassword, "", "", true},
		{"short password", "rebuild-bot", "short", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewBasicAuthManager(tt.username, tt.password, tt.role)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBasicAuthManager() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.role != tt.wantRole {
				t.Errorf("role = %q, want %q", m.role, tt.wantRole)
			}
			if string(m.passwordHash) == tt.password {
				t.Error("password stored in clear text")
			}
		})
	}
}

func TestBasicAuthManager_Authenticate(t *testing.T) {
	m, err := NewBasicAuthManager("rebuild-bot", testPassword, RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid", basicHeader("rebuild-bot", testPassword), nil},
		{"lowercase scheme", "basic " + base64.StdEncoding.EncodeToString([]byte("rebuild-bot:"+testPassword)), nil},
		{"empty", "", ErrNoCredentials},
		{"bearer", "Bearer abc", ErrInvalidCredentials},
		{"not base64", "Basic %%%", ErrInvalidCredentials},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("rebuild-bot")), ErrInvalidCredentials},
		{"wrong password", basicHeader("rebuild-bot", "wrong-password-123"), ErrInvalidCredentials},
		{"wrong user", basicHeader("intruder", testPassword), ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := m.Authenticate(tt.header)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if s.ID != "rebuild-bot" || !s.HasRole(RoleAdmin) || s.Anonymous {
				t.Errorf("subject = %+v", s)
			}
		})
	}
}

func TestMiddleware_BasicMode(t *testing.T) {
	if _, err := NewBasicMiddleware(nil, nil, nil); err == nil {
		t.Error("NewBasicMiddleware(nil) expected error")
	}

	m, err := NewBasicAuthManager("rebuild-bot", testPassword, "")
	if err != nil {
		t.Fatal(err)
	}
	mw, err := NewBasicMiddleware(m, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		optional   bool
		header     string
		wantStatus int
		wantBody   string
	}{
		{"require valid", false, basicHeader("rebuild-bot", testPassword), http.StatusOK, "rebuild-bot"},
		{"require missing", false, "", http.StatusUnauthorized, "invalid credentials"},
		{"require wrong", false, basicHeader("rebuild-bot", "nope-nope-nope"), http.StatusUnauthorized, "invalid credentials"},
		{"optional anonymous", true, "", http.StatusOK, "none"},
		{"optional valid", true, basicHeader("rebuild-bot", testPassword), http.StatusOK, "rebuild-bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mw.RequireAuth(subjectEcho())
			if tt.optional {
				h = mw.OptionalAuth(subjectEcho())
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend/rebuild", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus || !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantStatus, tt.wantBody)
			}
			if rec.Code == http.StatusUnauthorized && !strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic") {
				t.Errorf("WWW-Authenticate = %q", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
