package health

import "context"

// Pinger checks a backing store's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PlacesChecker checks places provider availability.
type PlacesChecker interface {
	HealthCheck(ctx context.Context) error
}
