package search

import "github.com/margaritamap/margarita/internal/domain/venue"

// RelevanceFilter drops keyword false positives (a law firm named after a taco chain)
// from name searches.
type RelevanceFilter struct {
	allowed map[string]struct{}
	denied  map[string]struct{}
}

// NewRelevanceFilter creates a filter. A place is relevant when it has at least one
// allowed category and none of the denied ones.
func NewRelevanceFilter(allowed, denied []string) RelevanceFilter {
	return RelevanceFilter{allowed: toSet(allowed), denied: toSet(denied)}
}

// Apply returns places unchanged when nameFilterActive is false, otherwise only the relevant ones.
func (f RelevanceFilter) Apply(places []venue.Place, nameFilterActive bool) []venue.Place {
	if !nameFilterActive {
		return places
	}
	out := make([]venue.Place, 0, len(places))
	for _, p := range places {
		if f.Relevant(p) {
			out = append(out, p)
		}
	}
	return out
}

// Relevant reports whether a place looks like a food/drink establishment.
func (f RelevanceFilter) Relevant(p venue.Place) bool {
	allowed := false
	for _, c := range p.Categories() {
		if _, ok := f.denied[c]; ok {
			return false
		}
		if _, ok := f.allowed[c]; ok {
			allowed = true
		}
	}
	return allowed
}

func toSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
