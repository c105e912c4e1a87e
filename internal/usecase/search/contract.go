package search

import (
	"context"

	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/query"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

// PlacesProvider is the external places lookup service.
type PlacesProvider interface {
	// Search runs one nearby or text query. A denied request returns domain.ErrProviderDenied.
	Search(ctx context.Context, q query.Query) ([]venue.Place, error)
	// Probe checks that the provider accepts our credentials near origin.
	Probe(ctx context.Context, origin geo.Point) error
}

// VenueStore reads first-party venues.
type VenueStore interface {
	// ListLocated returns every stored venue that has coordinates.
	ListLocated(ctx context.Context) ([]venue.Place, error)
}

// Geocoder resolves a zip code, city or street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Point, error)
}
