package venue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/db"
	"github.com/margaritamap/margarita/internal/domain/geo"
	domvenue "github.com/margaritamap/margarita/internal/domain/venue"
)

func TestValkeyListLocated(t *testing.T) {
	var pattern string
	ms := &mockHashStore{
		scanFn: func(_ context.Context, p string) ([]string, error) {
			pattern = p
			return []string{"margarita:venue:1", "margarita:venue:2", "margarita:venue:3"}, nil
		},
		hgetMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			return []map[string]string{
				{"id": "1", "name": "Chuy's", "latitude": "30.2617", "longitude": "-97.7634"},
				{"id": "2", "name": "No Coordinates"},
				{"id": "3", "name": "Bad Coordinates", "latitude": "north", "longitude": "-97"},
			}, nil
		},
	}
	repo := NewValkey(ms, "margarita:", zap.NewNop())

	places, err := repo.ListLocated(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pattern != "margarita:venue:*" {
		t.Errorf("unexpected scan pattern %q", pattern)
	}
	if len(places) != 1 || places[0].ID() != "1" {
		t.Fatalf("expected only venue 1, got %d places", len(places))
	}
	if places[0].Origin() != domvenue.OriginStore || !places[0].HasCategory("restaurant") {
		t.Error("stored venue must have store origin and restaurant tag")
	}
}

func TestValkeyListLocated_Batches(t *testing.T) {
	keys := make([]string, fetchBatch+3)
	for i := range keys {
		keys[i] = fmt.Sprintf("margarita:venue:%d", i)
	}
	var batches []int
	ms := &mockHashStore{
		scanFn: func(context.Context, string) ([]string, error) { return keys, nil },
		hgetMultiFn: func(_ context.Context, batch []string) ([]map[string]string, error) {
			batches = append(batches, len(batch))
			out := make([]map[string]string, len(batch))
			for i, k := range batch {
				out[i] = map[string]string{"id": k, "name": k, "latitude": "30", "longitude": "-97"}
			}
			return out, nil
		},
	}
	repo := NewValkey(ms, "margarita:", zap.NewNop())

	places, err := repo.ListLocated(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != len(keys) {
		t.Errorf("expected %d places, got %d", len(keys), len(places))
	}
	if len(batches) != 2 || batches[0] != fetchBatch || batches[1] != 3 {
		t.Errorf("unexpected batches %v", batches)
	}
}

func TestValkeyListLocated_Errors(t *testing.T) {
	scanFail := NewValkey(&mockHashStore{
		scanFn: func(context.Context, string) ([]string, error) { return nil, errors.New("down") },
	}, "margarita:", zap.NewNop())
	if _, err := scanFail.ListLocated(context.Background()); err == nil {
		t.Error("expected scan error")
	}

	fetchFail := NewValkey(&mockHashStore{
		scanFn: func(context.Context, string) ([]string, error) { return []string{"k"}, nil },
		hgetMultiFn: func(context.Context, []string) ([]map[string]string, error) {
			return nil, errors.New("down")
		},
	}, "margarita:", zap.NewNop())
	if _, err := fetchFail.ListLocated(context.Background()); err == nil {
		t.Error("expected fetch error")
	}
}

func TestValkeyPut(t *testing.T) {
	var written []db.HashSetItem
	ms := &mockHashStore{hsetMultiFn: func(_ context.Context, items []db.HashSetItem) error {
		written = items
		return nil
	}}
	repo := NewValkey(ms, "margarita:", zap.NewNop())

	loc := geo.NewPoint(30.2617, -97.7634)
	located := domvenue.Reconstruct(domvenue.Fields{ID: "1", Name: "Chuy's", Location: &loc, Phone: "555"})
	unlocated := domvenue.Reconstruct(domvenue.Fields{ID: "2", Name: "Nowhere"})

	n, err := repo.Put(context.Background(), []domvenue.Place{located, unlocated})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(written) != 1 {
		t.Fatalf("expected 1 venue written, got %d", n)
	}
	if written[0].Key != "margarita:venue:1" {
		t.Errorf("unexpected key %q", written[0].Key)
	}

	// Round-trip through the hash parser.
	p, ok := parseVenueHash(written[0].Fields)
	if !ok {
		t.Fatal("written hash must parse")
	}
	got, _ := p.Location()
	if got != loc || p.Phone() != "555" {
		t.Errorf("round-trip mismatch: %v %q", got, p.Phone())
	}
}
