// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// @title Basketrec API
// @version 1.0
// @description Market basket recommendations from co-purchase history.
// @description
// @description ## Queries
// @description
// @description - **By product**: items most often bought together with one product
// @description - **By cart**: items associated with a whole cart, weighted by quantity
// @description - **Trending**: products in the most multi-item orders
// @description - **Personalized**: recommendations from the caller's last orders
// @description
// @description Scores are `associationCount*10 + ln(popularity+1)*2`. A product without
// @description associations falls back to the most popular products, flagged `isFallback`.
// @description
// @description ## Authentication
// @description
// @description Admin and personalized endpoints take an HS256 JWT in the `Authorization: Bearer` header.
// @description Roles: `viewer` (personalized), `operator` (refresh), `admin` (rebuild).
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "success": false,
// @description   "data": null,
// @description   "error": {"code": "KNOWLEDGE_NOT_AVAILABLE", "message": "...", "requestId": "..."},
// @description   "meta": {"requestId": "...", "timestamp": "2026-01-02T03:04:05Z"}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/basketrec/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 JWT in the Authorization header: Bearer <token>
//
// @tag.name Recommend
// @tag.description Recommendation queries and knowledge status
//
// @tag.name Admin
// @tag.description Knowledge refresh and rebuild (operator and admin roles)
//
// @tag.name Health
// @tag.description Liveness and readiness probes
package main
