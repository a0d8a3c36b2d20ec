// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package knowledge

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// UnknownName is returned by Snapshot.Name for products without a cached name.
const UnknownName = "Unknown"

// Association is one related product and its co-occurrence count.
type Association struct {
	ProductID string `json:"productId"`
	Count     int    `json:"count"`
}

// RelatedList is the ordered association list of a single product.
//
// Entries are sorted by count descending at build time; ties keep the order
// in which the related product was first seen. The JSON form is an object
// whose key order mirrors the slice order.
type RelatedList []Association

// MarshalJSON encodes the list as {"relatedId": count, ...} in slice order.
func (l RelatedList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.ProductID)
		if err != nil {
			return nil, fmt.Errorf("encode related id: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(a.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while keeping its key order.
func (l *RelatedList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read related list: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("related list must be a JSON object")
	}

	out := make(RelatedList, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read related id: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("related id must be a string, got %T", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read count for %s: %w", key, err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("count for %s must be a number, got %T", key, valTok)
		}
		count, err := strconv.Atoi(num.String())
		if err != nil {
			return fmt.Errorf("count for %s must be an integer: %w", key, err)
		}
		out = append(out, Association{ProductID: key, Count: count})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("close related list: %w", err)
	}

	*l = out
	return nil
}

// AssociationMap maps a product id to its ordered related list.
type AssociationMap map[string]RelatedList

// PopularityMap maps a product id to the number of qualifying orders it appeared in.
type PopularityMap map[string]int

// NameMap maps a product id to a cached display name.
type NameMap map[string]string

// Metadata describes how and when a snapshot was produced.
type Metadata struct {
	// Version is the monotonically increasing publish version (0 until published).
	Version int `json:"version"`

	// BuildID uniquely identifies the build run.
	BuildID string `json:"build_id"`

	// BuiltAt is when the builder produced the snapshot.
	BuiltAt time.Time `json:"built_at"`

	// OrdersScanned is the number of qualifying orders read.
	OrdersScanned int `json:"orders_scanned"`

	// OrdersUsed is the number of orders with at least two line items.
	OrdersUsed int `json:"orders_used"`

	// ProductCount is the number of products with popularity.
	ProductCount int `json:"product_count"`

	// Checksum is the SHA-256 of the encoded documents, set on publish.
	Checksum string `json:"checksum,omitempty"`
}

// Snapshot is an immutable, versioned triple of knowledge maps.
// Callers must not modify the maps or slices returned by its accessors.
type Snapshot struct {
	meta         Metadata
	associations AssociationMap
	popularity   PopularityMap
	names        NameMap

	products     []string
	byPopularity []string
}

// NewSnapshot builds a snapshot and its derived indexes. Nil maps are
// replaced by empty ones.
func NewSnapshot(meta Metadata, associations AssociationMap, popularity PopularityMap, names NameMap) *Snapshot {
	if associations == nil {
		associations = AssociationMap{}
	}
	if popularity == nil {
		popularity = PopularityMap{}
	}
	if names == nil {
		names = NameMap{}
	}

	products := make([]string, 0, len(popularity))
	for id := range popularity {
		products = append(products, id)
	}
	sort.Strings(products)

	byPopularity := make([]string, len(products))
	copy(byPopularity, products)
	sort.SliceStable(byPopularity, func(i, j int) bool {
		return popularity[byPopularity[i]] > popularity[byPopularity[j]]
	})

	meta.ProductCount = len(products)

	return &Snapshot{
		meta:         meta,
		associations: associations,
		popularity:   popularity,
		names:        names,
		products:     products,
		byPopularity: byPopularity,
	}
}

// Metadata returns the snapshot metadata.
func (s *Snapshot) Metadata() Metadata {
	return s.meta
}

// WithMetadata returns a copy sharing the same maps but carrying new metadata.
//
//nolint:gocritic // Metadata is small and copied on purpose
func (s *Snapshot) WithMetadata(meta Metadata) *Snapshot {
	cp := *s
	meta.ProductCount = len(s.products)
	cp.meta = meta
	return &cp
}

// Related returns the ordered association list for a product.
func (s *Snapshot) Related(productID string) RelatedList {
	return s.associations[productID]
}

// Popularity returns the popularity of a product, 0 if unknown.
func (s *Snapshot) Popularity(productID string) int {
	return s.popularity[productID]
}

// Name returns the cached display name or UnknownName.
func (s *Snapshot) Name(productID string) string {
	if name, ok := s.names[productID]; ok && name != "" {
		return name
	}
	return UnknownName
}

// Products returns all known product ids sorted ascending.
func (s *Snapshot) Products() []string {
	return s.products
}

// ByPopularity returns all known product ids by popularity descending,
// ties ordered by product id ascending.
func (s *Snapshot) ByPopularity() []string {
	return s.byPopularity
}

// Associations exposes the raw association map for encoding.
func (s *Snapshot) Associations() AssociationMap {
	return s.associations
}

// PopularityMap exposes the raw popularity map for encoding.
func (s *Snapshot) PopularityMap() PopularityMap {
	return s.popularity
}

// Names exposes the raw name map for encoding.
func (s *Snapshot) Names() NameMap {
	return s.names
}

// Validate reports structural problems that make a snapshot unusable.
func (s *Snapshot) Validate() error {
	for id, related := range s.associations {
		if id == "" {
			return errors.New("association map has an empty product id")
		}
		for _, a := range related {
			if a.ProductID == id {
				return fmt.Errorf("product %s is associated with itself", id)
			}
			if a.Count < 0 {
				return fmt.Errorf("negative association count %d for %s -> %s", a.Count, id, a.ProductID)
			}
		}
	}
	for id, pop := range s.popularity {
		if pop < 0 {
			return fmt.Errorf("negative popularity %d for %s", pop, id)
		}
	}
	return nil
}
