package search

import "github.com/margaritamap/margarita/internal/domain/venue"

// dedupe concatenates lists in the order given and keeps the first place seen for each ID.
// First-occurrence order is preserved; ranking happens later.
func dedupe(lists [][]venue.Place) []venue.Place {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	seen := make(map[string]struct{}, total)
	out := make([]venue.Place, 0, total)
	for _, l := range lists {
		for _, p := range l {
			if _, ok := seen[p.ID()]; ok {
				continue
			}
			seen[p.ID()] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
