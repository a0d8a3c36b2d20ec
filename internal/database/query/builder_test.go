// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}
	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	where, args := wb.Build()
	if where != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", where)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_Clauses(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		build     func(*WhereBuilder)
		wantWhere string
		wantArgs  int
	}{
		{
			name:      "in",
			build:     func(wb *WhereBuilder) { wb.AddIn("status", []string{"Delivered", "Pending"}) },
			wantWhere: "status IN (?, ?)",
			wantArgs:  2,
		},
		{
			name:      "empty in skipped",
			build:     func(wb *WhereBuilder) { wb.AddIn("status", nil) },
			wantWhere: "1=1",
		},
		{
			name:      "equals",
			build:     func(wb *WhereBuilder) { wb.AddEquals("user_id", "u1") },
			wantWhere: "user_id = ?",
			wantArgs:  1,
		},
		{
			name:      "empty equals skipped",
			build:     func(wb *WhereBuilder) { wb.AddEquals("user_id", "") },
			wantWhere: "1=1",
		},
		{
			name:      "time range",
			build:     func(wb *WhereBuilder) { wb.AddTimeRange("created_at", &since, &until) },
			wantWhere: "created_at >= ? AND created_at <= ?",
			wantArgs:  2,
		},
		{
			name:      "open upper bound",
			build:     func(wb *WhereBuilder) { wb.AddTimeRange("created_at", &since, nil) },
			wantWhere: "created_at >= ?",
			wantArgs:  1,
		},
		{
			name: "combined",
			build: func(wb *WhereBuilder) {
				wb.AddIn("o.status", []string{"Delivered"}).
					AddEquals("o.user_id", "u1").
					AddClause("o.total > ?", 10)
			},
			wantWhere: "o.status IN (?) AND o.user_id = ? AND o.total > ?",
			wantArgs:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			tt.build(wb)
			where, args := wb.Build()
			if where != tt.wantWhere {
				t.Errorf("Build() where = %q, want %q", where, tt.wantWhere)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("Build() args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilder_ArgOrder(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddIn("status", []string{"a", "b"})
	wb.AddEquals("user_id", "u1")

	_, args := wb.Build()
	want := []interface{}{"a", "b", "u1"}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestWhereBuilder_BuildWithPrefix(t *testing.T) {
	wb := NewWhereBuilder().AddEquals("id", "p1")

	where, _ := wb.BuildWithPrefix()
	if where != "WHERE id = ?" {
		t.Errorf("BuildWithPrefix() = %q", where)
	}
	if wb.Count() != 1 || wb.IsEmpty() {
		t.Errorf("Count() = %d, IsEmpty() = %v", wb.Count(), wb.IsEmpty())
	}
}
