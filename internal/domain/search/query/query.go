// Package query describes the individual lookups a venue search fans out to the places provider.
package query

import (
	"fmt"

	"github.com/margaritamap/margarita/internal/domain/geo"
)

// Kind selects the provider endpoint.
type Kind string

// Query kinds.
const (
	// Nearby is a category/keyword search around a point.
	Nearby Kind = "nearby"
	// Text is a free-text search biased to a point.
	Text Kind = "text"
)

// Query is one provider lookup.
type Query struct {
	Kind         Kind
	Location     geo.Point
	RadiusMeters int
	// Type is the provider category filter (restaurant, food, meal_takeaway). Nearby only.
	Type string
	// Keyword is matched against venue names and reviews. Nearby only.
	Keyword string
	// Text is the free-text query. Text only.
	Text string
}

// NewNearby creates a nearby query.
func NewNearby(loc geo.Point, radiusMeters int, placeType, keyword string) Query {
	return Query{Kind: Nearby, Location: loc, RadiusMeters: radiusMeters, Type: placeType, Keyword: keyword}
}

// NewText creates a free-text query.
func NewText(loc geo.Point, radiusMeters int, text string) Query {
	return Query{Kind: Text, Location: loc, RadiusMeters: radiusMeters, Text: text}
}

// Label is a short, low-cardinality description used for logs.
func (q Query) Label() string {
	switch q.Kind {
	case Text:
		return fmt.Sprintf("text(%q, %dm)", q.Text, q.RadiusMeters)
	default:
		if q.Type != "" {
			return fmt.Sprintf("nearby(%s, %q, %dm)", q.Type, q.Keyword, q.RadiusMeters)
		}
		return fmt.Sprintf("nearby(%q, %dm)", q.Keyword, q.RadiusMeters)
	}
}
