// Package app wires config into the search and health services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/config"
	"github.com/margaritamap/margarita/internal/db/postgres"
	dbRedis "github.com/margaritamap/margarita/internal/db/redis"
	"github.com/margaritamap/margarita/internal/metrics"
	"github.com/margaritamap/margarita/internal/repository/geocache"
	venuerepo "github.com/margaritamap/margarita/internal/repository/venue"
	"github.com/margaritamap/margarita/internal/transport/places"
	healthuc "github.com/margaritamap/margarita/internal/usecase/health"
	searchuc "github.com/margaritamap/margarita/internal/usecase/search"
)

// App holds the wired services and the connections they own.
type App struct {
	Search *searchuc.Service
	Health *healthuc.Service

	closers []func()
}

// New connects the configured stores and builds the services.
// The venue store must be reachable; the geocode cache is optional and only logged when down.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	placesClient := places.NewClient(places.Config{
		APIKey:        cfg.Places.APIKey,
		BaseURL:       cfg.Places.BaseURL,
		Timeout:       time.Duration(cfg.Places.TimeoutSec) * time.Second,
		RetryAttempts: uint(cfg.Places.RetryAttempts), //nolint:gosec // validated positive by ApplyDefaults
		Logger:        logger,
	})

	// Interfaces stay nil (not typed nil pointers) when a component is not configured.
	var (
		store       searchuc.VenueStore
		storePinger healthuc.Pinger
		cachePinger healthuc.Pinger
		geocoder    searchuc.Geocoder = placesClient
	)

	readiness := time.Duration(cfg.VenueStore.ReadinessTimeout) * time.Second

	switch cfg.VenueStore.Driver {
	case config.StoreDriverPostgres:
		pg, err := OpenPostgres(ctx, cfg.VenueStore.DSN, readiness)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		store = venuerepo.NewPostgres(pg, logger)
		storePinger = pg
	case config.StoreDriverValkey:
		vk, err := OpenValkey(ctx, cfg.VenueStore.Addrs, cfg.VenueStore.Password, readiness)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, vk.Close)
		store = venuerepo.NewValkey(vk, cfg.VenueStore.KeyPrefix, logger)
		storePinger = vk
	}
	logger.Info("Venue store configured", zap.String("driver", cfg.VenueStore.Driver))

	if len(cfg.Cache.Addrs) > 0 {
		cache, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Cache.Addrs, Password: cfg.Cache.Password})
		if err != nil {
			logger.Warn("Geocode cache disabled", zap.Error(err))
		} else {
			if err := cache.WaitForReady(ctx, readiness); err != nil {
				logger.Warn("Geocode cache not ready, lookups bypass it until it recovers", zap.Error(err))
			}
			a.closers = append(a.closers, cache.Close)
			geocoder = geocache.New(
				placesClient, cache, cfg.Cache.KeyPrefix,
				time.Duration(cfg.Geocode.CacheTTLHours)*time.Hour,
				metrics.GeocodeCacheTotal, logger,
			)
			cachePinger = cache
		}
	}

	a.Search = searchuc.New(placesClient, store, PolicyFromConfig(&cfg.Search), logger).WithGeocoder(geocoder)
	a.Health = healthuc.New(storePinger, cachePinger, placesClient)
	return a, nil
}

// Close releases every connection in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// PolicyFromConfig converts the search config section into a search policy.
func PolicyFromConfig(sc *config.SearchConfig) searchuc.Policy {
	return searchuc.Policy{
		DefaultRadiusMeters:     sc.DefaultRadiusMeters,
		ZipRadiusMeters:         sc.ZipRadiusMeters,
		NamedSearchRadiusMeters: sc.NamedSearchRadiusMeters,
		MaxResultRadiusMiles:    sc.MaxResultRadiusMiles,
		StoreRadiusMiles:        sc.StoreRadiusMiles,
		FallbackVenueCount:      sc.FallbackVenueCount,
		RatingTieThreshold:      sc.RatingTieThreshold,
		SubqueryTimeout:         time.Duration(sc.SubqueryTimeoutMs) * time.Millisecond,
		AllowedCategories:       sc.Relevance.AllowedCategories,
		DeniedCategories:        sc.Relevance.DeniedCategories,
	}
}

// OpenPostgres opens the venue database and waits until it answers.
func OpenPostgres(ctx context.Context, dsn string, readiness time.Duration) (*postgres.Store, error) {
	pg, err := postgres.Open(postgres.Config{DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	if err != nil {
		return nil, fmt.Errorf("open postgres venue store: %w", err)
	}
	if err := pg.WaitForReady(ctx, readiness); err != nil {
		pg.Close()
		return nil, fmt.Errorf("postgres venue store not ready: %w", err)
	}
	return pg, nil
}

// OpenValkey connects to Valkey and waits until it answers.
func OpenValkey(ctx context.Context, addrs []string, password string, readiness time.Duration) (*dbRedis.Store, error) {
	vk, err := dbRedis.NewStore(dbRedis.Config{Addrs: addrs, Password: password})
	if err != nil {
		return nil, fmt.Errorf("connect valkey: %w", err)
	}
	if err := vk.WaitForReady(ctx, readiness); err != nil {
		vk.Close()
		return nil, fmt.Errorf("valkey not ready: %w", err)
	}
	return vk, nil
}
