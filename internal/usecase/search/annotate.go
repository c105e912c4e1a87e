package search

import (
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

// annotate measures every place from origin and keeps those within maxRadiusMiles.
// Places without coordinates are dropped. Input order is kept.
// It also returns how many located places fell outside the radius.
func annotate(places []venue.Place, origin geo.Point, maxRadiusMiles float64) ([]venue.Candidate, int) {
	out := make([]venue.Candidate, 0, len(places))
	outside := 0
	for _, p := range places {
		loc, ok := p.Location()
		if !ok {
			continue
		}
		d := origin.DistanceTo(loc)
		if d > maxRadiusMiles {
			outside++
			continue
		}
		out = append(out, venue.NewCandidate(p, d))
	}
	return out, outside
}
