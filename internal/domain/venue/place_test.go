package venue

import (
	"testing"

	"github.com/margaritamap/margarita/internal/domain/geo"
)

func ptr[T any](v T) *T { return &v }

func TestNew_Valid(t *testing.T) {
	loc := geo.NewPoint(30.2672, -97.7431)
	p, err := New(Fields{
		ID:         "ChIJ-lupe",
		Name:       "Lupe Tortilla",
		Address:    "1111 Congress Ave",
		Rating:     ptr(4.5),
		PriceLevel: ptr(2),
		Location:   &loc,
		Categories: []string{"restaurant", "food", "restaurant"},
		PhotoRefs:  []string{"ref-1", "ref-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "ChIJ-lupe" || p.Name() != "Lupe Tortilla" {
		t.Errorf("unexpected identity: %s %s", p.ID(), p.Name())
	}
	if r, ok := p.Rating(); !ok || r != 4.5 {
		t.Errorf("expected rating 4.5, got %v %v", r, ok)
	}
	if got, ok := p.Location(); !ok || got != loc {
		t.Errorf("expected location %v, got %v %v", loc, got, ok)
	}
	if len(p.Categories()) != 2 {
		t.Errorf("expected duplicate category dropped, got %v", p.Categories())
	}
	if !p.HasCategory("food") || p.HasCategory("bar") {
		t.Error("HasCategory mismatch")
	}
	if p.Origin() != OriginProvider {
		t.Errorf("expected default origin provider, got %s", p.Origin())
	}
}

func TestNew_Validation(t *testing.T) {
	bad := geo.NewPoint(95, 0)
	tests := []struct {
		name string
		f    Fields
	}{
		{"missing id", Fields{Name: "x"}},
		{"missing name", Fields{ID: "a"}},
		{"rating too high", Fields{ID: "a", Name: "x", Rating: ptr(5.1)}},
		{"negative rating", Fields{ID: "a", Name: "x", Rating: ptr(-1.0)}},
		{"price too low", Fields{ID: "a", Name: "x", PriceLevel: ptr(0)}},
		{"price too high", Fields{ID: "a", Name: "x", PriceLevel: ptr(5)}},
		{"bad coordinates", Fields{ID: "a", Name: "x", Location: &bad}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.f); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestReconstruct_OptionalFieldsAbsent(t *testing.T) {
	p := Reconstruct(Fields{ID: "a", Name: "x", Origin: OriginStore})
	if _, ok := p.Rating(); ok {
		t.Error("rating should be absent")
	}
	if _, ok := p.Location(); ok {
		t.Error("location should be absent")
	}
	if p.PriceLevel() != 0 {
		t.Errorf("expected unknown price level 0, got %d", p.PriceLevel())
	}
	if p.Origin() != OriginStore {
		t.Errorf("expected store origin, got %s", p.Origin())
	}
}

func TestReconstruct_CopiesPhotoRefs(t *testing.T) {
	refs := []string{"a", "b"}
	p := Reconstruct(Fields{ID: "a", Name: "x", PhotoRefs: refs})
	refs[0] = "mutated"
	if p.PhotoRefs()[0] != "a" {
		t.Error("place must not share the caller's photo slice")
	}
}

func TestCandidate(t *testing.T) {
	p := Reconstruct(Fields{ID: "a", Name: "x"})
	c := NewCandidate(p, 2.5)
	if c.DistanceMiles() != 2.5 || c.ID() != "a" || c.Name() != "x" {
		t.Fatalf("unexpected candidate %+v", c)
	}
	if c.RatingOrZero() != 0 {
		t.Errorf("unrated candidate should rank as 0, got %f", c.RatingOrZero())
	}
	m := c.WithNameMatch(true)
	if c.NameMatch() {
		t.Error("WithNameMatch must not modify the receiver")
	}
	if !m.NameMatch() {
		t.Error("expected name match on copy")
	}
	if NewCandidate(p, -1).DistanceMiles() != 0 {
		t.Error("distance must be clamped to >= 0")
	}
}
