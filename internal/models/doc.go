// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package models defines the shop records shared by the database, repository
and recommendation packages.

Key Components:

  - Order: a historical purchase with its line items
  - OrderItem: one product line of an order
  - Product: the catalog projection used to enrich recommendations
  - ProductRef: a short id and name pair

Order Statuses:

Orders move through Pending, Preparing, Out for Delivery and Delivered, or
end as Cancelled. DefaultQualifyingStatuses lists the statuses the
association builder mines; pending and cancelled orders never contribute
co-purchase evidence.

Usage Example:

	order := models.Order{
	    ID:     "o-1001",
	    UserID: "u-42",
	    Status: models.OrderStatusDelivered,
	    Items: []models.OrderItem{
	        {ProductID: "milk", Name: "Milk", Quantity: 2},
	        {ProductID: "bread", Name: "Bread", Quantity: 1},
	    },
	}
	ids := order.ProductIDs() // ["milk", "bread"]

Thread Safety:

Models are plain data. They are safe for concurrent reads and carry no
internal locking.

See Also:

  - internal/database: reads and seeds orders and products
  - internal/repository: breaker-guarded access used by the builder and API
  - internal/recommend/builder: mines orders into association snapshots
*/
package models
