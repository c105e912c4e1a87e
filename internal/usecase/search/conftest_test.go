package search

import (
	"context"
	"sync"

	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/query"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

// --- Mocks ---

type mockPlaces struct {
	mu       sync.Mutex
	probeErr error
	// probeBlocks makes Probe wait for its context to end.
	probeBlocks bool
	// respond answers one query; nil means "no results".
	respond func(ctx context.Context, q query.Query) ([]venue.Place, error)
	queries []query.Query
}

func (m *mockPlaces) Search(ctx context.Context, q query.Query) ([]venue.Place, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.respond == nil {
		return nil, nil
	}
	return m.respond(ctx, q)
}

func (m *mockPlaces) Probe(ctx context.Context, _ geo.Point) error {
	if m.probeBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.probeErr
}

func (m *mockPlaces) recorded() []query.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]query.Query(nil), m.queries...)
}

type mockStore struct {
	places []venue.Place
	err    error
	calls  int
}

func (m *mockStore) ListLocated(_ context.Context) ([]venue.Place, error) {
	m.calls++
	return m.places, m.err
}

type mockGeocoder struct {
	point   geo.Point
	err     error
	address string
}

func (m *mockGeocoder) Geocode(_ context.Context, address string) (geo.Point, error) {
	m.address = address
	return m.point, m.err
}

// --- Fixtures ---

var austin = geo.NewPoint(30.2672, -97.7431)

// byKey answers queries from a table keyed by "type|keyword" (nearby) or "text|query" (text).
func byKey(table map[string][]venue.Place) func(context.Context, query.Query) ([]venue.Place, error) {
	return func(_ context.Context, q query.Query) ([]venue.Place, error) {
		return table[queryKey(q)], nil
	}
}

func queryKey(q query.Query) string {
	if q.Kind == query.Text {
		return "text|" + q.Text
	}
	return q.Type + "|" + q.Keyword
}

// placeAt builds a provider place offset from austin by dLat degrees of latitude.
func placeAt(id, name string, rating float64, dLat float64, tags ...string) venue.Place {
	loc := geo.NewPoint(austin.Lat+dLat, austin.Lng)
	f := venue.Fields{ID: id, Name: name, Location: &loc, Categories: tags}
	if rating > 0 {
		f.Rating = &rating
	}
	return venue.Reconstruct(f)
}

func unlocated(id, name string) venue.Place {
	return venue.Reconstruct(venue.Fields{ID: id, Name: name, Categories: []string{"restaurant"}})
}

func candidate(name string, rating, distance float64) venue.Candidate {
	f := venue.Fields{ID: name, Name: name}
	if rating > 0 {
		f.Rating = &rating
	}
	return venue.NewCandidate(venue.Reconstruct(f), distance)
}

func ids[T interface{ ID() string }](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID()
	}
	return out
}
