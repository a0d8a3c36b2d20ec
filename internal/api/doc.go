// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package api exposes the recommendation service over HTTP with the chi router.

# Endpoints

Public (token optional):

	POST /api/v1/recommend/product       products bought together with a product
	POST /api/v1/recommend/cart          products complementing a cart
	GET  /api/v1/recommend/trending      most popular products
	GET  /api/v1/recommend/new           newest catalog products
	GET  /api/v1/recommend/status        knowledge readiness, no side effects
	GET  /api/v1/ws/knowledge            WebSocket stream of snapshot loads

Authenticated:

	GET  /api/v1/recommend/personalized  recommendations from the caller's orders (viewer)
	POST /api/v1/recommend/refresh       reload the latest snapshot (operator)
	POST /api/v1/recommend/rebuild       run the builder, then reload (admin)

Infrastructure:

	GET /api/v1/health/live, /api/v1/health/ready, /metrics, /swagger/*

# Responses

Every response uses one envelope:

	{
	  "success": true,
	  "count": 3,
	  "data": [...],
	  "sourceProduct": {"id": "p-1", "name": "Milk"},
	  "meta": {"requestId": "...", "timestamp": "...", "durationMs": 4}
	}

Errors set success=false and error={code, message, details, requestId}.
KNOWLEDGE_NOT_AVAILABLE (503) means no snapshot has been published yet.

Recommended product ids are enriched from the catalog concurrently.
Products that no longer exist, or whose lookup fails, are dropped from the
response rather than failing it.
*/
package api
