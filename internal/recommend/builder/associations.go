// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package builder

import (
	"sort"

	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// Stats summarizes one pass over the order history.
type Stats struct {
	OrdersScanned int
	OrdersUsed    int
	Products      int
	Pairs         int
}

// pairCounter accumulates counts for one source product and remembers the
// order in which related products were first seen.
type pairCounter struct {
	order  []string
	counts map[string]int
}

func (p *pairCounter) add(related string) {
	if _, ok := p.counts[related]; !ok {
		p.order = append(p.order, related)
	}
	p.counts[related]++
}

func (p *pairCounter) sorted() knowledge.RelatedList {
	list := make(knowledge.RelatedList, len(p.order))
	for i, id := range p.order {
		list[i] = knowledge.Association{ProductID: id, Count: p.counts[id]}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Count > list[j].Count
	})
	return list
}

// Build mines co-purchase associations from orders.
//
// Orders with fewer than two line items are skipped. Each remaining order
// contributes one increment per direction for every unordered pair of
// distinct products it contains, so a product repeated across several lines
// never pairs with itself and quantities do not inflate counts. A product's
// popularity grows by one for every such order it takes part in. The first
// name seen for a product wins.
//
// Identical input produces identical maps, including related-list order.
func Build(orders []models.Order) (knowledge.AssociationMap, knowledge.PopularityMap, knowledge.NameMap, Stats) {
	counters := make(map[string]*pairCounter)
	popularity := make(knowledge.PopularityMap)
	names := make(knowledge.NameMap)
	stats := Stats{OrdersScanned: len(orders)}

	for oi := range orders {
		order := &orders[oi]
		if len(order.Items) < 2 {
			continue
		}

		ids := order.ProductIDs()
		if len(ids) < 2 {
			continue
		}
		stats.OrdersUsed++

		for i := range order.Items {
			item := &order.Items[i]
			if item.ProductID == "" {
				continue
			}
			if _, ok := names[item.ProductID]; !ok && item.Name != "" {
				names[item.ProductID] = item.Name
			}
		}

		for _, a := range ids {
			c, ok := counters[a]
			if !ok {
				c = &pairCounter{counts: make(map[string]int)}
				counters[a] = c
			}
			for _, b := range ids {
				if a == b {
					continue
				}
				c.add(b)
				stats.Pairs++
			}
			popularity[a]++
		}
	}

	associations := make(knowledge.AssociationMap, len(counters))
	for id, c := range counters {
		associations[id] = c.sorted()
	}
	stats.Products = len(popularity)

	return associations, popularity, names, stats
}
