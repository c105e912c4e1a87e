package chi

import (
	"github.com/margaritamap/margarita/internal/domain/search/result"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeLocationNotFound    ErrorCode = "location_not_found"
	ErrorCodeNoDataSource        ErrorCode = "no_data_source"
	ErrorCodeStoreUnavailable    ErrorCode = "store_unavailable"
	ErrorCodeProviderUnavailable ErrorCode = "provider_unavailable"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SearchResponse is a ranked venue list. Venue order is the ranking and must be preserved.
type SearchResponse struct {
	Source         string       `json:"source"`
	FallbackReason string       `json:"fallback_reason,omitempty"`
	Stats          SearchStats  `json:"stats"`
	Venues         []VenueEntry `json:"venues"`
}

// SearchStats mirrors result.Stats.
type SearchStats struct {
	QueriesIssued int `json:"queries_issued"`
	QueriesFailed int `json:"queries_failed"`
	RawCandidates int `json:"raw_candidates"`
	UniqueVenues  int `json:"unique_venues"`
	OutOfRadius   int `json:"out_of_radius"`
	FilteredOut   int `json:"filtered_out"`
}

// VenueEntry is one ranked venue.
type VenueEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	PriceLevel    *int      `json:"price_level,omitempty"`
	Location      *Location `json:"location,omitempty"`
	DistanceMiles float64   `json:"distance_miles"`
	NameMatch     bool      `json:"name_match,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
	PhotoRefs     []string  `json:"photo_refs,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Website       string    `json:"website,omitempty"`
	Origin        string    `json:"origin"`
}

// Location is a lat/lng pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewSearchResponse converts a ranked result to its JSON form.
func NewSearchResponse(res *result.RankedResult) SearchResponse {
	st := res.Stats()
	resp := SearchResponse{
		Source:         string(res.Source()),
		FallbackReason: string(res.FallbackReason()),
		Stats: SearchStats{
			QueriesIssued: st.QueriesIssued,
			QueriesFailed: st.QueriesFailed,
			RawCandidates: st.RawCandidates,
			UniqueVenues:  st.UniqueVenues,
			OutOfRadius:   st.OutOfRadius,
			FilteredOut:   st.FilteredOut,
		},
		Venues: make([]VenueEntry, 0, res.Len()),
	}
	for _, c := range res.Candidates() {
		resp.Venues = append(resp.Venues, venueToEntry(c))
	}
	return resp
}

func venueToEntry(c venue.Candidate) VenueEntry {
	p := c.Place()
	e := VenueEntry{
		ID:            p.ID(),
		Name:          p.Name(),
		Address:       p.Address(),
		DistanceMiles: c.DistanceMiles(),
		NameMatch:     c.NameMatch(),
		Categories:    p.Categories(),
		PhotoRefs:     p.PhotoRefs(),
		Phone:         p.Phone(),
		Website:       p.Website(),
		Origin:        string(p.Origin()),
	}
	if r, ok := p.Rating(); ok {
		e.Rating = &r
	}
	if lvl := p.PriceLevel(); lvl > 0 {
		e.PriceLevel = &lvl
	}
	if loc, ok := p.Location(); ok {
		e.Location = &Location{Lat: loc.Lat, Lng: loc.Lng}
	}
	return e
}
