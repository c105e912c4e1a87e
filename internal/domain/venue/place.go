// Package venue holds the venue records produced by a search: raw places from the
// provider or the first-party store, and the distance-annotated candidates built from them.
package venue

import (
	"fmt"
	"strings"

	"github.com/margaritamap/margarita/internal/domain/geo"
)

// Origin identifies which data source produced a place.
type Origin string

// Place origins.
const (
	OriginProvider Origin = "provider"
	OriginStore    Origin = "store"
	OriginFallback Origin = "fallback"
)

// Rating and price bounds.
const (
	MaxRating     = 5.0
	MinPriceLevel = 1
	MaxPriceLevel = 4
)

// Fields carries the raw attributes of a place before it becomes an immutable Place.
type Fields struct {
	ID         string
	Name       string
	Address    string
	Rating     *float64
	PriceLevel *int
	Location   *geo.Point
	Categories []string
	PhotoRefs  []string
	Phone      string
	Website    string
	Origin     Origin
}

// Place is a venue as returned by one data source (immutable value object).
// The ID is the deduplication key across every query of a search.
type Place struct {
	id         string
	name       string
	address    string
	rating     float64
	hasRating  bool
	priceLevel int
	location   geo.Point
	located    bool
	categories []string
	photoRefs  []string
	phone      string
	website    string
	origin     Origin
}

// New validates and creates a Place.
// ID and name are required; rating must be within [0,5], price level within [1,4],
// and the location, when present, must have in-range coordinates.
func New(f Fields) (Place, error) {
	if strings.TrimSpace(f.ID) == "" {
		return Place{}, fmt.Errorf("place ID is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		return Place{}, fmt.Errorf("place %q: name is required", f.ID)
	}
	if f.Rating != nil && (*f.Rating < 0 || *f.Rating > MaxRating) {
		return Place{}, fmt.Errorf("place %q: rating %.2f out of range [0,%.0f]", f.ID, *f.Rating, MaxRating)
	}
	if f.PriceLevel != nil && (*f.PriceLevel < MinPriceLevel || *f.PriceLevel > MaxPriceLevel) {
		return Place{}, fmt.Errorf("place %q: price level %d out of range [%d,%d]",
			f.ID, *f.PriceLevel, MinPriceLevel, MaxPriceLevel)
	}
	if f.Location != nil && !f.Location.Valid() {
		return Place{}, fmt.Errorf("place %q: invalid coordinates %s", f.ID, f.Location)
	}
	return Reconstruct(f), nil
}

// Reconstruct creates a Place without validation (provider/storage hydration).
func Reconstruct(f Fields) Place {
	p := Place{
		id:         f.ID,
		name:       f.Name,
		address:    f.Address,
		categories: uniqueStrings(f.Categories),
		photoRefs:  append([]string(nil), f.PhotoRefs...),
		phone:      f.Phone,
		website:    f.Website,
		origin:     f.Origin,
	}
	if f.Rating != nil {
		p.rating = *f.Rating
		p.hasRating = true
	}
	if f.PriceLevel != nil {
		p.priceLevel = *f.PriceLevel
	}
	if f.Location != nil {
		p.location = *f.Location
		p.located = true
	}
	if p.origin == "" {
		p.origin = OriginProvider
	}
	return p
}

// ID returns the provider-assigned identifier.
func (p Place) ID() string { return p.id }

// Name returns the display name.
func (p Place) Name() string { return p.name }

// Address returns the formatted address.
func (p Place) Address() string { return p.address }

// Rating returns the average rating and whether the source reported one.
func (p Place) Rating() (float64, bool) { return p.rating, p.hasRating }

// PriceLevel returns the price tier (1-4), or 0 when unknown.
func (p Place) PriceLevel() int { return p.priceLevel }

// Location returns the coordinates and whether the place has any.
func (p Place) Location() (geo.Point, bool) { return p.location, p.located }

// Categories returns the category tags in source order without duplicates.
func (p Place) Categories() []string { return p.categories }

// HasCategory reports whether the place is tagged with category.
func (p Place) HasCategory(category string) bool {
	for _, c := range p.categories {
		if c == category {
			return true
		}
	}
	return false
}

// PhotoRefs returns the provider photo references in order.
func (p Place) PhotoRefs() []string { return p.photoRefs }

// Phone returns the phone number, if known.
func (p Place) Phone() string { return p.phone }

// Website returns the website URL, if known.
func (p Place) Website() string { return p.website }

// Origin returns the data source that produced the place.
func (p Place) Origin() Origin { return p.origin }

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
