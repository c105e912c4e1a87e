package search

import (
	"time"

	"github.com/margaritamap/margarita/internal/domain/search/request"
	"github.com/margaritamap/margarita/internal/domain/search/scope"
)

// Policy holds the search tuning knobs. Built once from config and injected into the Service.
type Policy struct {
	DefaultRadiusMeters     int
	ZipRadiusMeters         int
	NamedSearchRadiusMeters int
	// MaxResultRadiusMiles is the ceiling for provider searches.
	MaxResultRadiusMiles float64
	// StoreRadiusMiles is the ceiling for the store-only lookup path.
	StoreRadiusMiles   float64
	FallbackVenueCount int
	// RatingTieThreshold: ratings closer than this rank as equal.
	RatingTieThreshold float64
	SubqueryTimeout    time.Duration
	AllowedCategories  []string
	DeniedCategories   []string
}

// DefaultPolicy returns the production search policy.
func DefaultPolicy() Policy {
	return Policy{
		DefaultRadiusMeters:     16000,
		ZipRadiusMeters:         40000,
		NamedSearchRadiusMeters: 32000,
		MaxResultRadiusMiles:    10,
		StoreRadiusMiles:        15,
		FallbackVenueCount:      5,
		RatingTieThreshold:      0.3,
		SubqueryTimeout:         4 * time.Second,
		AllowedCategories:       []string{"restaurant", "food", "meal_takeaway", "meal_delivery", "cafe"},
		DeniedCategories:        []string{"lawyer", "general_contractor", "roofing_contractor", "real_estate_agency"},
	}
}

// RadiusFor returns the query radius for a request: the explicit radius when set,
// otherwise the policy radius of its scope.
func (p Policy) RadiusFor(req *request.Request) int {
	if req.RadiusMeters() > 0 {
		return req.RadiusMeters()
	}
	switch req.Scope() {
	case scope.Zip:
		return p.ZipRadiusMeters
	case scope.Named:
		return p.NamedSearchRadiusMeters
	default:
		return p.DefaultRadiusMeters
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.DefaultRadiusMeters <= 0 {
		p.DefaultRadiusMeters = d.DefaultRadiusMeters
	}
	if p.ZipRadiusMeters <= 0 {
		p.ZipRadiusMeters = d.ZipRadiusMeters
	}
	if p.NamedSearchRadiusMeters <= 0 {
		p.NamedSearchRadiusMeters = d.NamedSearchRadiusMeters
	}
	if p.MaxResultRadiusMiles <= 0 {
		p.MaxResultRadiusMiles = d.MaxResultRadiusMiles
	}
	if p.StoreRadiusMiles <= 0 {
		p.StoreRadiusMiles = d.StoreRadiusMiles
	}
	if p.FallbackVenueCount <= 0 {
		p.FallbackVenueCount = d.FallbackVenueCount
	}
	if p.RatingTieThreshold <= 0 {
		p.RatingTieThreshold = d.RatingTieThreshold
	}
	if p.SubqueryTimeout <= 0 {
		p.SubqueryTimeout = d.SubqueryTimeout
	}
	if p.AllowedCategories == nil {
		p.AllowedCategories = d.AllowedCategories
	}
	if p.DeniedCategories == nil {
		p.DeniedCategories = d.DeniedCategories
	}
	return p
}

// capRadius keeps widened radii within what the provider accepts.
func capRadius(m int) int {
	if m > request.MaxRadiusMeters {
		return request.MaxRadiusMeters
	}
	return m
}
