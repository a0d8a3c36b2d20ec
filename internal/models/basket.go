// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package models

import "time"

// Order statuses known to the shop backend.
const (
	OrderStatusPending        = "Pending"
	OrderStatusPreparing      = "Preparing"
	OrderStatusOutForDelivery = "Out for Delivery"
	OrderStatusDelivered      = "Delivered"
	OrderStatusCancelled      = "Cancelled"
)

// DefaultQualifyingStatuses are the statuses whose orders are mined for
// co-purchase patterns.
func DefaultQualifyingStatuses() []string {
	return []string{OrderStatusDelivered, OrderStatusPreparing, OrderStatusOutForDelivery}
}

// Order is a historical purchase as read from the order repository.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items"`
}

// OrderItem is one line of an order. Price and Image are carried for
// completeness; mining only uses ProductID and Name.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ProductIDs returns the distinct product ids of the order in item order.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for i := range o.Items {
		id := o.Items[i].ProductID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Product is the catalog projection used to enrich recommendations.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Category  string    `json:"category,omitempty"`
	Stock     int       `json:"stock"`
	Unit      string    `json:"unit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductRef is a short reference to a product.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
