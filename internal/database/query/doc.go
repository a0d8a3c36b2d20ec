// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package query provides SQL WHERE clause construction for the database
// package.
//
// Every value is bound through a placeholder; column names are supplied by
// the caller and must never come from user input.
//
//	wb := query.NewWhereBuilder()
//	wb.AddIn("o.status", statuses)
//	wb.AddEquals("o.user_id", userID)
//	where, args := wb.BuildWithPrefix()
//	rows, err := conn.QueryContext(ctx, "SELECT ... FROM orders o "+where, args...)
package query
