package venue

// Candidate is a place annotated with its distance from the search origin.
type Candidate struct {
	place         Place
	distanceMiles float64
	nameMatch     bool
}

// NewCandidate annotates a place with its distance in miles.
func NewCandidate(p Place, distanceMiles float64) Candidate {
	if distanceMiles < 0 {
		distanceMiles = 0
	}
	return Candidate{place: p, distanceMiles: distanceMiles}
}

// WithNameMatch returns a copy of the candidate carrying the name-match flag.
func (c Candidate) WithNameMatch(match bool) Candidate {
	c.nameMatch = match
	return c
}

// Place returns the underlying place.
func (c Candidate) Place() Place { return c.place }

// ID returns the place identifier.
func (c Candidate) ID() string { return c.place.id }

// Name returns the place display name.
func (c Candidate) Name() string { return c.place.name }

// DistanceMiles returns the great-circle distance from the search origin.
func (c Candidate) DistanceMiles() float64 { return c.distanceMiles }

// NameMatch reports whether the place matched the search name filter.
// Always false outside name-filter searches.
func (c Candidate) NameMatch() bool { return c.nameMatch }

// RatingOrZero returns the rating, treating unrated places as 0.
func (c Candidate) RatingOrZero() float64 {
	if !c.place.hasRating {
		return 0
	}
	return c.place.rating
}
