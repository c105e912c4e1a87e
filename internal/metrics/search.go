package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "margarita",
			Name:      "search_requests_total",
			Help:      "Total number of venue searches by scope and result source",
		},
		[]string{"scope", "source"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "margarita",
			Name:      "search_duration_seconds",
			Help:      "End-to-end venue search duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"scope"},
	)

	SearchSubqueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "margarita",
			Name:      "search_subqueries_total",
			Help:      "Fanned-out sub-queries by kind and outcome",
		},
		[]string{"kind", "status"}, // kind: nearby/text/store, status: ok/error/timeout
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "margarita",
			Name:      "search_fallback_total",
			Help:      "Searches answered with placeholder venues",
		},
		[]string{"reason"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "margarita",
			Name:      "places_provider_requests_total",
			Help:      "Places provider HTTP calls by endpoint and provider status",
		},
		[]string{"endpoint", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "margarita",
			Name:      "places_provider_request_duration_seconds",
			Help:      "Places provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "margarita",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search, provider and cache metrics. Called from main.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchDuration,
			SearchSubqueriesTotal,
			SearchFallbackTotal,
			ProviderRequestsTotal,
			ProviderRequestDuration,
			GeocodeCacheTotal,
		)
	})
}
