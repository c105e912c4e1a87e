package search

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

// fallbackSpreadDegrees bounds the placeholder offsets from the origin in both latitude and longitude.
const fallbackSpreadDegrees = 0.08

type placeholder struct {
	name    string
	address string
	rating  float64
	price   int
	tags    []string
}

var placeholders = []placeholder{
	{"Casa Margarita", "Placeholder venue", 4.6, 2, []string{"restaurant", "bar", "food"}},
	{"El Agave Cantina", "Placeholder venue", 4.4, 2, []string{"bar", "restaurant"}},
	{"La Tequileria", "Placeholder venue", 4.3, 3, []string{"bar"}},
	{"Taqueria del Sol", "Placeholder venue", 4.1, 1, []string{"restaurant", "meal_takeaway", "food"}},
	{"Salt & Lime Kitchen", "Placeholder venue", 3.9, 2, []string{"restaurant", "food"}},
	{"Mezcaleria Cielo", "Placeholder venue", 4.5, 3, []string{"bar"}},
	{"Rancho Verde Grill", "Placeholder venue", 4.0, 2, []string{"restaurant", "food"}},
	{"Mi Pueblito", "Placeholder venue", 4.2, 1, []string{"restaurant", "food"}},
}

// fallbackPlaces generates count placeholder venues scattered within
// fallbackSpreadDegrees of origin. The scatter is seeded from the origin, so the
// same origin always yields the same venues.
func fallbackPlaces(origin geo.Point, count int) []venue.Place {
	rng := rand.New(rand.NewPCG(math.Float64bits(origin.Lat), math.Float64bits(origin.Lng))) //nolint:gosec // placement only

	out := make([]venue.Place, 0, count)
	for i := 0; i < count; i++ {
		tpl := placeholders[i%len(placeholders)]
		name := tpl.name
		if i >= len(placeholders) {
			name = fmt.Sprintf("%s %d", tpl.name, i/len(placeholders)+1)
		}
		loc := geo.NewPoint(
			clamp(origin.Lat+jitter(rng), -90, 90),
			clamp(origin.Lng+jitter(rng), -180, 180),
		)
		rating := tpl.rating
		price := tpl.price
		out = append(out, venue.Reconstruct(venue.Fields{
			ID:         fmt.Sprintf("fallback-%d", i+1),
			Name:       name,
			Address:    tpl.address,
			Rating:     &rating,
			PriceLevel: &price,
			Location:   &loc,
			Categories: tpl.tags,
			Origin:     venue.OriginFallback,
		}))
	}
	return out
}

// jitter returns an offset in (-fallbackSpreadDegrees, fallbackSpreadDegrees).
func jitter(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * fallbackSpreadDegrees
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
