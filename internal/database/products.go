// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
)

const productColumns = `id, name, price, COALESCE(image, ''), COALESCE(category, ''), stock, COALESCE(unit, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Category, &p.Stock, &p.Unit, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct returns one catalog product or ErrProductNotFound.
func (db *DB) GetProduct(ctx context.Context, id string) (p *models.Product, err error) {
	start := time.Now()
	defer func() {
		// A miss is an answer, not a failed query.
		qerr := err
		if errors.Is(qerr, ErrProductNotFound) {
			qerr = nil
		}
		metrics.RecordDBQuery("select", "products", time.Since(start), qerr)
	}()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err = scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// NewArrivals returns the most recently added products, newest first.
func (db *DB) NewArrivals(ctx context.Context, limit int) (products []models.Product, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "products", time.Since(start), err) }()

	if limit <= 0 {
		return []models.Product{}, nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query new arrivals: %w", err)
	}
	defer closeWithLog(rows, "rows")

	products = make([]models.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// UpsertProduct inserts a product or replaces the stored one with the same id.
func (db *DB) UpsertProduct(ctx context.Context, p *models.Product) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "products", time.Since(start), err) }()

	if p.ID == "" || p.Name == "" {
		return fmt.Errorf("product id and name are required")
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO products (id, name, price, image, category, stock, unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			image = excluded.image,
			category = excluded.category,
			stock = excluded.stock,
			unit = excluded.unit`,
		p.ID, p.Name, p.Price, p.Image, p.Category, p.Stock, p.Unit, createdAt)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// CountProducts returns the catalog size.
func (db *DB) CountProducts(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
