package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProviderDenied signals that the places provider rejected our credentials (REQUEST_DENIED).
	ErrProviderDenied = errors.New("places provider denied request")
	// ErrProviderUnavailable signals a places provider failure (network, 5xx, quota, malformed response).
	ErrProviderUnavailable = errors.New("places provider unavailable")
	// ErrGeocodeNotFound signals that an address, city or zip could not be resolved to coordinates.
	ErrGeocodeNotFound = errors.New("location not found")
	// ErrStoreUnavailable signals a first-party venue store failure.
	ErrStoreUnavailable = errors.New("venue store unavailable")
	// ErrNoDataSource signals that neither the places provider nor the venue store could be reached.
	ErrNoDataSource = errors.New("no venue data source reachable")
)
