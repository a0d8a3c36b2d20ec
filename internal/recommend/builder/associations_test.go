// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package builder

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/models"
)

func order(id string, products ...string) models.Order {
	items := make([]models.OrderItem, len(products))
	for i, p := range products {
		items[i] = models.OrderItem{ProductID: p, Name: "name-" + p, Quantity: 1}
	}
	return models.Order{ID: id, Status: models.OrderStatusDelivered, Items: items}
}

func TestBuild_Counts(t *testing.T) {
	orders := []models.Order{
		order("o1", "a", "b", "c"),
		order("o2", "a", "b"),
		order("o3", "a"), // single item, skipped
		order("o4", "b", "c"),
	}

	assoc, pop, _, stats := Build(orders)

	tests := []struct {
		from, to string
		want     int
	}{
		{"a", "b", 2},
		{"b", "a", 2},
		{"a", "c", 1},
		{"c", "a", 1},
		{"b", "c", 2},
		{"c", "b", 2},
	}
	for _, tt := range tests {
		got := 0
		for _, e := range assoc[tt.from] {
			if e.ProductID == tt.to {
				got = e.Count
			}
		}
		if got != tt.want {
			t.Errorf("count(%s,%s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}

	wantPop := map[string]int{"a": 2, "b": 3, "c": 2}
	for id, want := range wantPop {
		if pop[id] != want {
			t.Errorf("popularity[%s] = %d, want %d", id, pop[id], want)
		}
	}

	if stats.OrdersScanned != 4 || stats.OrdersUsed != 3 || stats.Products != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBuild_Symmetry(t *testing.T) {
	orders := []models.Order{
		order("o1", "p1", "p2", "p3", "p4"),
		order("o2", "p2", "p4"),
		order("o3", "p5", "p1", "p4"),
		order("o4", "p3", "p2"),
	}
	assoc, _, _, _ := Build(orders)

	counts := make(map[[2]string]int)
	for from, list := range assoc {
		for _, e := range list {
			counts[[2]string{from, e.ProductID}] = e.Count
		}
	}
	for k, v := range counts {
		if back := counts[[2]string{k[1], k[0]}]; back != v {
			t.Errorf("count(%s,%s) = %d but count(%s,%s) = %d", k[0], k[1], v, k[1], k[0], back)
		}
	}
}

func TestBuild_RepeatedProductIsNotSelfAssociation(t *testing.T) {
	orders := []models.Order{
		order("o1", "a", "a"),
		order("o2", "a", "b", "a"),
	}
	assoc, pop, _, stats := Build(orders)

	for from, list := range assoc {
		for _, e := range list {
			if e.ProductID == from {
				t.Errorf("self association for %s", from)
			}
		}
	}
	if got := assoc["a"]; len(got) != 1 || got[0].ProductID != "b" || got[0].Count != 1 {
		t.Errorf("assoc[a] = %+v, want [{b 1}]", got)
	}
	if pop["a"] != 1 {
		t.Errorf("popularity[a] = %d, want 1", pop["a"])
	}
	if stats.OrdersUsed != 1 {
		t.Errorf("OrdersUsed = %d, want 1", stats.OrdersUsed)
	}
}

func TestBuild_SortStableOnTies(t *testing.T) {
	orders := []models.Order{
		order("o1", "x", "c"),
		order("o2", "x", "a"),
		order("o3", "x", "b"),
		order("o4", "x", "b"),
	}
	assoc, _, _, _ := Build(orders)

	want := []string{"b", "c", "a"}
	got := assoc["x"]
	if len(got) != len(want) {
		t.Fatalf("assoc[x] = %+v", got)
	}
	for i, id := range want {
		if got[i].ProductID != id {
			t.Errorf("assoc[x][%d] = %s, want %s", i, got[i].ProductID, id)
		}
	}
}

func TestBuild_FirstSeenNameWins(t *testing.T) {
	orders := []models.Order{
		{ID: "o1", Items: []models.OrderItem{{ProductID: "a", Name: "Milk"}, {ProductID: "b", Name: "Bread"}}},
		{ID: "o2", Items: []models.OrderItem{{ProductID: "a", Name: "Whole Milk"}, {ProductID: "b", Name: ""}}},
	}
	_, _, names, _ := Build(orders)

	if names["a"] != "Milk" {
		t.Errorf("names[a] = %q, want Milk", names["a"])
	}
	if names["b"] != "Bread" {
		t.Errorf("names[b] = %q, want Bread", names["b"])
	}
}

func TestBuild_NoOrders(t *testing.T) {
	assoc, pop, names, stats := Build(nil)
	if len(assoc) != 0 || len(pop) != 0 || len(names) != 0 {
		t.Errorf("Build(nil) produced data: %v %v %v", assoc, pop, names)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	orders := []models.Order{
		order("o1", "m", "k", "z", "a"),
		order("o2", "k", "a"),
		order("o3", "z", "m"),
		order("o4", "a", "m", "k"),
	}

	encode := func() []byte {
		assoc, pop, names, _ := Build(orders)
		var buf bytes.Buffer
		for _, v := range []interface{}{assoc, pop, names} {
			data, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			buf.Write(data)
		}
		return buf.Bytes()
	}

	first := encode()
	for i := 0; i < 5; i++ {
		if next := encode(); !bytes.Equal(first, next) {
			t.Fatalf("build %d differs:\n%s\n%s", i, first, next)
		}
	}
}
