// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/authz"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type routerFixture struct {
	handler http.Handler
	rec     *fakeRecommender
	jwt     *auth.JWTManager
}

func newRouterFixture(t *testing.T, mode auth.AuthMode, mw *ChiMiddlewareConfig) *routerFixture {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(testSecret, "basketrec", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	authn, err := auth.NewMiddleware(mode, jwtManager, nil, WriteError)
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}

	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}

	rec := &fakeRecommender{
		status:       recommend.Status{Ready: true, Version: 1},
		trending:     []recommend.Candidate{{ProductID: "milk", Score: 3, Popularity: 3}},
		personalized: []recommend.Candidate{{ProductID: "jam", Score: 8, Matches: 1}},
	}
	rebuilder := &fakeRebuilder{res: &builder.Result{Metadata: knowledge.Metadata{Version: 2}}}
	h := NewHandler(DefaultHandlerConfig(), rec, testCatalog(), rebuilder, nil, nil)

	router := NewRouter(RouterConfig{}, h, NewChiMiddleware(mw), authn, authz.NewMiddleware(enforcer, nil, WriteError))
	return &routerFixture{handler: router.Setup(), rec: rec, jwt: jwtManager}
}

func (f *routerFixture) token(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	tok, err := f.jwt.GenerateToken(subject, subject, roles...)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (f *routerFixture) do(method, path, token string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader("{}")
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccessControl(t *testing.T) {
	f := newRouterFixture(t, auth.AuthModeJWT, nil)

	viewer := f.token(t, "shopper-1", auth.RoleViewer)
	noRoles := f.token(t, "shopper-2")
	operator := f.token(t, "ops-1", auth.RoleOperator)
	admin := f.token(t, "root-1", auth.RoleAdmin)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"public trending", http.MethodGet, "/api/v1/recommend/trending", "", http.StatusOK},
		{"public status", http.MethodGet, "/api/v1/recommend/status", "", http.StatusOK},
		{"invalid token on public route", http.MethodGet, "/api/v1/recommend/trending", "garbage", http.StatusUnauthorized},
		{"personalized needs token", http.MethodGet, "/api/v1/recommend/personalized", "", http.StatusUnauthorized},
		{"personalized viewer", http.MethodGet, "/api/v1/recommend/personalized", viewer, http.StatusOK},
		{"personalized default role", http.MethodGet, "/api/v1/recommend/personalized", noRoles, http.StatusOK},
		{"refresh viewer denied", http.MethodPost, "/api/v1/recommend/refresh", viewer, http.StatusForbidden},
		{"refresh operator", http.MethodPost, "/api/v1/recommend/refresh", operator, http.StatusOK},
		{"rebuild operator denied", http.MethodPost, "/api/v1/recommend/rebuild", operator, http.StatusForbidden},
		{"rebuild admin", http.MethodPost, "/api/v1/recommend/rebuild", admin, http.StatusOK},
		{"liveness", http.MethodGet, "/api/v1/health/live", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/v1/recommend/refresh", admin, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, tt.token)
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}

	if f.rec.lastUserID != "shopper-2" {
		t.Errorf("personalized user = %q, want the token subject", f.rec.lastUserID)
	}
}

func TestRouter_AuthDisabled(t *testing.T) {
	f := newRouterFixture(t, auth.AuthModeNone, nil)

	if rec := f.do(http.MethodPost, "/api/v1/recommend/rebuild", ""); rec.Code != http.StatusOK {
		t.Errorf("rebuild without auth = %d, want 200", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/recommend/personalized?userId=u-9", ""); rec.Code != http.StatusOK {
		t.Errorf("personalized = %d, want 200", rec.Code)
	}
	if f.rec.lastUserID != "u-9" {
		t.Errorf("personalized user = %q, want u-9", f.rec.lastUserID)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 2
	mw.RateLimitWindow = time.Minute
	f := newRouterFixture(t, auth.AuthModeJWT, mw)

	for i := 0; i < 2; i++ {
		if rec := f.do(http.MethodGet, "/api/v1/recommend/trending", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec := f.do(http.MethodGet, "/api/v1/recommend/trending", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrCodeTooManyRequests) {
		t.Errorf("429 body = %s", rec.Body.String())
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	f := newRouterFixture(t, auth.AuthModeJWT, nil)
	rec := f.do(http.MethodGet, "/api/v1/recommend/status", "")

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
