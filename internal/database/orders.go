// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/basketrec/internal/database/query"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
)

const orderColumns = `
	o.id, o.user_id, o.status, o.created_at,
	COALESCE(i.line_no, -1),
	COALESCE(i.product_id, ''),
	COALESCE(i.name, ''),
	COALESCE(i.image, ''),
	COALESCE(i.price, 0),
	COALESCE(i.quantity, 0)`

// QueryOrders returns every order whose status is in statuses, oldest first
// with ties broken by order id. Items keep their stored sequence. An empty
// statuses slice matches all orders.
func (db *DB) QueryOrders(ctx context.Context, statuses []string) (orders []models.Order, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "orders", time.Since(start), err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddIn("o.status", statuses).BuildWithPrefix()
	q := `SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		` + where + `
		ORDER BY o.created_at ASC, o.id ASC, i.line_no ASC`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer closeWithLog(rows, "rows")

	return scanOrders(rows)
}

// QueryOrdersByUser returns the user's most recent orders, newest first,
// regardless of status.
func (db *DB) QueryOrdersByUser(ctx context.Context, userID string, limit int) (orders []models.Order, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "orders", time.Since(start), err) }()

	if limit <= 0 {
		return []models.Order{}, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	q := `WITH recent AS (
			SELECT id, user_id, status, created_at
			FROM orders
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		SELECT ` + orderColumns + `
		FROM recent o
		LEFT JOIN order_items i ON i.order_id = o.id
		ORDER BY o.created_at DESC, o.id DESC, i.line_no ASC`

	rows, err := db.conn.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders for user: %w", err)
	}
	defer closeWithLog(rows, "rows")

	return scanOrders(rows)
}

// scanOrders folds joined order/item rows into orders. Rows must be grouped
// by order.
func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		var (
			o      models.Order
			item   models.OrderItem
			lineNo int
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt,
			&lineNo, &item.ProductID, &item.Name, &item.Image, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		if n := len(orders); n == 0 || orders[n-1].ID != o.ID {
			o.Items = []models.OrderItem{}
			orders = append(orders, o)
		}
		if lineNo >= 0 {
			last := &orders[len(orders)-1]
			last.Items = append(last.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// InsertOrder stores an order and its items in one transaction. Items are
// numbered in slice order.
func (db *DB) InsertOrder(ctx context.Context, order *models.Order) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "orders", time.Since(start), err) }()

	if order.ID == "" || order.UserID == "" {
		return fmt.Errorf("%w: id and user id are required", ErrInvalidOrder)
	}
	for i := range order.Items {
		if order.Items[i].ProductID == "" {
			return fmt.Errorf("%w: item %d has no product id", ErrInvalidOrder, i)
		}
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, status, created_at) VALUES (?, ?, ?, ?)`,
		order.ID, order.UserID, order.Status, createdAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, line_no, product_id, name, image, price, quantity)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			order.ID, i, item.ProductID, item.Name, item.Image, item.Price, qty); err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// CountOrders returns the number of stored orders.
func (db *DB) CountOrders(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
