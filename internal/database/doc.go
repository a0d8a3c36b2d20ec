// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package database is the DuckDB-backed order and product repository.

Tables:
  - products: the catalog used to enrich recommendations and list new arrivals
  - orders: one row per order with user, status and creation time
  - order_items: order lines keyed by (order_id, line_no)

The association builder reads history through QueryOrders, which returns
qualifying orders oldest first with items in their stored sequence. The
recommendation service reads a user's recent orders through
QueryOrdersByUser. Both are wrapped in circuit breakers by the repository
package before they reach the service layer.

Queries without a caller deadline get a 30 second timeout. Every query
reports to the db_* Prometheus metrics.
*/
package database
