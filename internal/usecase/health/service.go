package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Component names reported in Report.Checks.
const (
	CheckVenueStore = "venue_store"
	CheckCache      = "cache"
	CheckPlaces     = "places"
)

// Service coordinates health checks.
type Service struct {
	venueStore Pinger
	cache      Pinger
	places     PlacesChecker
}

// New creates a Service. Any component can be nil when it is not configured.
func New(venueStore, cache Pinger, places PlacesChecker) *Service {
	return &Service{venueStore: venueStore, cache: cache, places: places}
}

// Check runs health checks against all configured components.
// A failing component degrades the service; searches still answer, from fallback data if needed.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.venueStore != nil {
		checks[CheckVenueStore] = result(s.venueStore.Ping(ctx))
	}
	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}
	if s.places != nil {
		checks[CheckPlaces] = result(s.places.HealthCheck(ctx))
	}

	status := Healthy
	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed == 0:
	case failed == len(checks):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
