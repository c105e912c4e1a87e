package search

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/margaritamap/margarita/internal/domain/venue"
)

// minReverseMatchLen is the shortest venue name that may match by being contained in the filter.
// Shorter names ("El", "La") would otherwise match almost any search.
const minReverseMatchLen = 3

// ranker orders annotated candidates.
type ranker struct {
	ratingTie float64
}

// rank flags name matches (when nameFilter is set) and stable-sorts candidates:
// name matches first, then rating descending with near-equal ratings tied, then distance ascending.
func (r ranker) rank(candidates []venue.Candidate, nameFilter string) []venue.Candidate {
	out := make([]venue.Candidate, len(candidates))
	copy(out, candidates)

	nameMode := nameFilter != ""
	if nameMode {
		for i := range out {
			out[i] = out[i].WithNameMatch(nameMatches(out[i].Name(), nameFilter))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if nameMode && a.NameMatch() != b.NameMatch() {
			return a.NameMatch()
		}
		ra, rb := a.RatingOrZero(), b.RatingOrZero()
		if d := ra - rb; d != 0 && math.Abs(d) >= r.ratingTie {
			return d > 0
		}
		return a.DistanceMiles() < b.DistanceMiles()
	})
	return out
}

// nameMatches reports whether a venue name and the search name contain one another, ignoring case.
func nameMatches(venueName, filter string) bool {
	name := strings.ToLower(strings.TrimSpace(venueName))
	f := strings.ToLower(strings.TrimSpace(filter))
	if name == "" || f == "" {
		return false
	}
	if strings.Contains(name, f) {
		return true
	}
	return utf8.RuneCountInString(name) >= minReverseMatchLen && strings.Contains(f, name)
}
