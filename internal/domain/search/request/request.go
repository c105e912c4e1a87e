package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/scope"
)

// Search parameter limits.
const (
	// MaxNameLength is the maximum allowed restaurant name filter length.
	MaxNameLength = 120
	// MaxRadiusMeters is the largest radius the places provider accepts.
	MaxRadiusMeters = 50_000
)

// Request is a validated venue search.
type Request struct {
	origin       geo.Point
	searchScope  scope.Scope
	radiusMeters int
	nameFilter   string
}

// New validates and normalizes search parameters.
// An empty scope becomes named when a name filter is present and nearby otherwise.
// radiusMeters == 0 means "use the policy radius for the scope".
func New(origin geo.Point, s scope.Scope, radiusMeters int, nameFilter string) (Request, error) {
	if !origin.Valid() {
		return Request{}, fmt.Errorf("invalid origin coordinates %s", origin)
	}

	name := strings.Join(strings.Fields(nameFilter), " ")
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Request{}, fmt.Errorf("name filter too long (max %d chars)", MaxNameLength)
	}

	if s == "" {
		s = scope.Nearby
		if name != "" {
			s = scope.Named
		}
	}
	if !s.IsValid() {
		return Request{}, fmt.Errorf("invalid search scope: %q", s)
	}
	if s == scope.Named && name == "" {
		return Request{}, fmt.Errorf("name is required for a named search")
	}

	if radiusMeters < 0 || radiusMeters > MaxRadiusMeters {
		return Request{}, fmt.Errorf("radius must be between 0 and %d meters", MaxRadiusMeters)
	}

	return Request{
		origin:       origin,
		searchScope:  s,
		radiusMeters: radiusMeters,
		nameFilter:   name,
	}, nil
}

// Origin returns the point distances are measured from.
func (r *Request) Origin() geo.Point { return r.origin }

// Scope returns the search intent.
func (r *Request) Scope() scope.Scope { return r.searchScope }

// RadiusMeters returns the explicit radius, or 0 for the scope default.
func (r *Request) RadiusMeters() int { return r.radiusMeters }

// NameFilter returns the normalized restaurant name, empty for a generic search.
func (r *Request) NameFilter() string { return r.nameFilter }

// HasNameFilter reports whether this is a "find all locations of X" search.
func (r *Request) HasNameFilter() bool { return r.nameFilter != "" }
