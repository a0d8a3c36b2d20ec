// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/authz"
	"github.com/tomtom215/basketrec/internal/middleware"
)

// RouterConfig toggles optional routes.
type RouterConfig struct {
	SwaggerEnabled       bool
	SlowRequestThreshold time.Duration
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	cfg           RouterConfig
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
}

// NewRouter creates a Router.
func NewRouter(cfg RouterConfig, handler *Handler, chiMW *ChiMiddleware, authn *auth.Middleware, authzMW *authz.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		cfg:           cfg,
		handler:       handler,
		chiMiddleware: chiMW,
		authn:         authn,
		authz:         authzMW,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(router.cfg.SlowRequestThreshold))
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/recommend", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Public storefront queries
		r.Group(func(r chi.Router) {
			r.Use(router.authn.OptionalAuth)
			r.Post("/product", router.handler.RecommendByProduct)
			r.Post("/cart", router.handler.RecommendByCart)
			r.Get("/trending", router.handler.Trending)
			r.Get("/new", router.handler.NewArrivals)
			r.Get("/status", router.handler.Status)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.authn.RequireAuth)
			r.With(router.authz.Authorize(authz.ObjectRecommendations, authz.ActionRead)).
				Get("/personalized", router.handler.Personalized)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitAdmin())
				r.With(router.authz.Authorize(authz.ObjectKnowledge, authz.ActionRefresh)).
					Post("/refresh", router.handler.Refresh)
				r.With(router.authz.Authorize(authz.ObjectKnowledge, authz.ActionRebuild)).
					Post("/rebuild", router.handler.Rebuild)
			})
		})
	})

	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.authn.OptionalAuth)
		r.Get("/knowledge", router.handler.StatusStream)
	})

	r.Handle("/metrics", promhttp.Handler())

	if router.cfg.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	return r
}
