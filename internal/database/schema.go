// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			price DOUBLE NOT NULL DEFAULT 0,
			image VARCHAR,
			category VARCHAR,
			stock INTEGER NOT NULL DEFAULT 0,
			unit VARCHAR,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		// line_no keeps the order's item sequence, which decides association
		// order for equal counts.
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id VARCHAR NOT NULL,
			line_no INTEGER NOT NULL,
			product_id VARCHAR NOT NULL,
			name VARCHAR,
			image VARCHAR,
			price DOUBLE NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (order_id, line_no)
		)`,
	}
}

func (db *DB) createIndexes() error {
	if db.cfg.SkipIndexes {
		return nil
	}
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range indexQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_products_created ON products(created_at)`,
	}
}
