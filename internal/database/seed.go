// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/models"
)

// mockBaskets are the co-purchase themes the seeded orders are drawn from.
var mockBaskets = [][]string{
	{"milk", "bread", "eggs", "butter"},
	{"pasta", "tomato-sauce", "parmesan"},
	{"coffee", "milk", "sugar"},
	{"bananas", "apples", "yogurt"},
	{"rice", "chicken", "onions"},
}

var mockProducts = []models.Product{
	{ID: "milk", Name: "Whole Milk", Price: 1.19, Category: "dairy", Stock: 120, Unit: "1L"},
	{ID: "bread", Name: "Sourdough Bread", Price: 3.49, Category: "bakery", Stock: 40, Unit: "loaf"},
	{ID: "eggs", Name: "Free Range Eggs", Price: 2.99, Category: "dairy", Stock: 80, Unit: "dozen"},
	{ID: "butter", Name: "Salted Butter", Price: 2.29, Category: "dairy", Stock: 60, Unit: "250g"},
	{ID: "pasta", Name: "Spaghetti", Price: 1.09, Category: "pantry", Stock: 150, Unit: "500g"},
	{ID: "tomato-sauce", Name: "Tomato Sauce", Price: 1.89, Category: "pantry", Stock: 90, Unit: "jar"},
	{ID: "parmesan", Name: "Parmesan", Price: 4.59, Category: "dairy", Stock: 30, Unit: "200g"},
	{ID: "coffee", Name: "Ground Coffee", Price: 6.99, Category: "beverages", Stock: 45, Unit: "500g"},
	{ID: "sugar", Name: "Cane Sugar", Price: 1.49, Category: "pantry", Stock: 70, Unit: "1kg"},
	{ID: "bananas", Name: "Bananas", Price: 0.99, Category: "produce", Stock: 200, Unit: "bunch"},
	{ID: "apples", Name: "Gala Apples", Price: 2.49, Category: "produce", Stock: 110, Unit: "1kg"},
	{ID: "yogurt", Name: "Greek Yogurt", Price: 1.79, Category: "dairy", Stock: 75, Unit: "500g"},
	{ID: "rice", Name: "Basmati Rice", Price: 3.19, Category: "pantry", Stock: 95, Unit: "1kg"},
	{ID: "chicken", Name: "Chicken Breast", Price: 7.49, Category: "meat", Stock: 35, Unit: "500g"},
	{ID: "onions", Name: "Yellow Onions", Price: 1.29, Category: "produce", Stock: 130, Unit: "1kg"},
}

// SeedMockData fills an empty database with a small grocery catalog and
// reproducible order history for demos and screenshots. A database that
// already has products is left untouched.
func (db *DB) SeedMockData(ctx context.Context) error {
	n, err := db.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Info().Int("products", n).Msg("Database already has products, skipping mock data")
		return nil
	}

	logging.Info().Msg("Seeding database with mock data...")

	const (
		numUsers  = 8
		numOrders = 120
		days      = 30
	)

	base := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -days)
	byID := make(map[string]models.Product, len(mockProducts))
	for i := range mockProducts {
		p := mockProducts[i]
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := db.UpsertProduct(ctx, &p); err != nil {
			return err
		}
		byID[p.ID] = p
	}

	statuses := []string{
		models.OrderStatusDelivered, models.OrderStatusDelivered, models.OrderStatusDelivered,
		models.OrderStatusPreparing, models.OrderStatusOutForDelivery,
		models.OrderStatusPending, models.OrderStatusCancelled,
	}

	rng := rand.New(rand.NewPCG(42, 1024)) //nolint:gosec // demo data only
	for i := 0; i < numOrders; i++ {
		theme := mockBaskets[rng.IntN(len(mockBaskets))]
		size := 2 + rng.IntN(len(theme)-1)
		picked := rng.Perm(len(theme))[:size]

		order := models.Order{
			ID:        fmt.Sprintf("order-%04d", i+1),
			UserID:    fmt.Sprintf("user-%02d", rng.IntN(numUsers)+1),
			Status:    statuses[rng.IntN(len(statuses))],
			CreatedAt: base.Add(time.Duration(i) * (days * 24 * time.Hour / numOrders)),
		}
		for _, idx := range picked {
			p := byID[theme[idx]]
			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Image:     p.Image,
				Price:     p.Price,
				Quantity:  1 + rng.IntN(3),
			})
		}
		if err := db.InsertOrder(ctx, &order); err != nil {
			return err
		}
	}

	logging.Info().
		Int("products", len(mockProducts)).
		Int("orders", numOrders).
		Msg("Mock data seeded")
	return nil
}
