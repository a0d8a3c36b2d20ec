// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/api"
	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/authz"
	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/middleware"
)

// initAuth builds the authentication and authorization middleware.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initAuth(cfg *config.SecurityConfig, audit *logging.AuditLogger, logger zerolog.Logger) (*auth.Middleware, *authz.Middleware, error) {
	mode, err := auth.ParseAuthMode(cfg.AuthMode)
	if err != nil {
		return nil, nil, err
	}

	var authn *auth.Middleware
	switch mode {
	case auth.AuthModeJWT:
		jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("create JWT manager: %w", err)
		}
		logger.Info().Str("issuer", cfg.JWTIssuer).Msg("JWT authentication enabled")
		authn, err = auth.NewMiddleware(mode, jwtManager, audit, api.WriteError)
		if err != nil {
			return nil, nil, err
		}
	case auth.AuthModeBasic:
		basic, err := auth.NewBasicAuthManager(cfg.BasicUsername, cfg.BasicPassword, cfg.BasicRole)
		if err != nil {
			return nil, nil, fmt.Errorf("create basic auth manager: %w", err)
		}
		logger.Info().Str("username", cfg.BasicUsername).Str("role", cfg.BasicRole).Msg("basic authentication enabled")
		authn, err = auth.NewBasicMiddleware(basic, audit, api.WriteError)
		if err != nil {
			return nil, nil, err
		}
	default:
		logger.Warn().Msg("authentication is disabled (AUTH_MODE=none): admin endpoints are open to every caller")
		authn, err = auth.NewMiddleware(mode, nil, audit, api.WriteError)
		if err != nil {
			return nil, nil, err
		}
	}

	ec := authz.DefaultEnforcerConfig()
	ec.ModelPath = cfg.CasbinModelPath
	ec.PolicyPath = cfg.CasbinPolicyPath
	if cfg.DefaultRole != "" {
		ec.DefaultRole = cfg.DefaultRole
	}
	enforcer, err := authz.NewEnforcer(ec)
	if err != nil {
		return nil, nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	return authn, authz.NewMiddleware(enforcer, audit, api.WriteError), nil
}

// newHTTPServer wires handlers, middleware and routes into an http.Server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newHTTPServer(cfg *config.Config, kc *KnowledgeComponents, db api.Pinger, logger zerolog.Logger) (*http.Server, error) {
	audit := logging.NewAuditLogger()

	authn, authzMW, err := initAuth(&cfg.Security, audit, logger)
	if err != nil {
		return nil, err
	}

	if cfg.ShouldWarnAboutCORS() {
		logger.Warn().Msg("CORS allows any origin while authentication is enabled; set CORS_ORIGINS in production")
	}
	if cfg.Security.RateLimitDisabled {
		logger.Warn().Msg("rate limiting is disabled")
	}

	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	chiCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	chiCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	chiCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled

	handler := api.NewHandler(api.HandlerConfig{
		DefaultLimit:   cfg.Recommend.DefaultLimit,
		RequestTimeout: cfg.Server.Timeout,
		AllowedOrigins: cfg.Security.CORSOrigins,
	}, kc.Service, kc.Products, kc.Builder, db, audit)
	handler.SetStatusHub(kc.Hub)

	router := api.NewRouter(api.RouterConfig{
		SwaggerEnabled:       cfg.Server.SwaggerEnabled,
		SlowRequestThreshold: middleware.DefaultSlowRequestThreshold,
	}, handler, api.NewChiMiddleware(chiCfg), authn, authzMW)

	// Rebuilds run inside the request and are bounded by the builder timeout.
	writeTimeout := cfg.Server.Timeout
	if cfg.Builder.Timeout > writeTimeout {
		writeTimeout = cfg.Builder.Timeout
	}

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}, nil
}
