package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/domain"
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/request"
	"github.com/margaritamap/margarita/internal/domain/search/result"
	"github.com/margaritamap/margarita/internal/domain/search/scope"
	logpkg "github.com/margaritamap/margarita/internal/logger"
	"github.com/margaritamap/margarita/internal/metrics"
)

var zipRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Service runs the venue search pipeline:
// probe, fan-out, dedupe, relevance filter, distance annotation, ranking.
type Service struct {
	places    PlacesProvider
	store     VenueStore
	geocoder  Geocoder
	policy    Policy
	relevance RelevanceFilter
	ranker    ranker
	logger    *zap.Logger
}

// New creates a search service. store may be nil when no first-party store is configured.
// Zero policy fields take DefaultPolicy values.
func New(places PlacesProvider, store VenueStore, policy Policy, logger *zap.Logger) *Service {
	policy = policy.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		places:    places,
		store:     store,
		policy:    policy,
		relevance: NewRelevanceFilter(policy.AllowedCategories, policy.DeniedCategories),
		ranker:    ranker{ratingTie: policy.RatingTieThreshold},
		logger:    logger,
	}
}

// WithGeocoder enables address/zip/city searches.
func (s *Service) WithGeocoder(g Geocoder) *Service {
	s.geocoder = g
	return s
}

// Policy returns the effective search policy.
func (s *Service) Policy() Policy { return s.policy }

// Search runs one venue search. Degraded conditions (denied credentials, failing
// sub-queries, nothing relevant) still produce a result; only a search where every
// data source failed returns domain.ErrNoDataSource.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.RankedResult, error) {
	start := time.Now()
	log := logpkg.FromContextOr(ctx, s.logger).With(
		zap.String("scope", string(req.Scope())),
		zap.Bool("named", req.HasNameFilter()),
	)

	res, err := s.search(ctx, req, log)

	source := string(res.Source())
	if err != nil {
		source = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Scope()), source).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Scope())).Observe(time.Since(start).Seconds())
	return res, err
}

func (s *Service) search(ctx context.Context, req *request.Request, log *zap.Logger) (result.RankedResult, error) {
	origin := req.Origin()

	if err := s.probe(ctx, origin); err != nil {
		if errors.Is(err, domain.ErrProviderDenied) {
			log.Warn("Places provider denied probe, serving placeholder venues", zap.Error(err))
			return s.fallback(origin, result.ReasonProviderDenied, result.Stats{}, log), nil
		}
		log.Warn("Places provider probe failed, continuing", zap.Error(err))
	}

	radius := s.policy.RadiusFor(req)
	fan := s.fanout(ctx, planQueries(req, radius), log)

	stats := result.Stats{QueriesIssued: fan.issued(), QueriesFailed: fan.failed()}
	if fan.allFailed() {
		return result.RankedResult{}, fmt.Errorf("all %d sub-queries failed: %w", fan.issued(), domain.ErrNoDataSource)
	}
	for _, l := range fan.lists {
		stats.RawCandidates += len(l)
	}

	unique := dedupe(fan.lists)
	stats.UniqueVenues = len(unique)
	if len(unique) == 0 {
		return s.fallback(origin, result.ReasonNoResults, stats, log), nil
	}

	relevant := s.relevance.Apply(unique, req.HasNameFilter())
	stats.FilteredOut = len(unique) - len(relevant)
	if len(relevant) == 0 {
		return s.fallback(origin, result.ReasonNoRelevantResults, stats, log), nil
	}

	annotated, outside := annotate(relevant, origin, s.policy.MaxResultRadiusMiles)
	stats.OutOfRadius = outside

	ranked := s.ranker.rank(annotated, req.NameFilter())

	log.Debug("Search completed",
		zap.Int("radius_m", radius),
		zap.Float64("radius_mi", geo.MetersToMiles(float64(radius))),
		zap.Int("queries", stats.QueriesIssued),
		zap.Int("failed", stats.QueriesFailed),
		zap.Int("raw", stats.RawCandidates),
		zap.Int("unique", stats.UniqueVenues),
		zap.Int("filtered", stats.FilteredOut),
		zap.Int("out_of_radius", stats.OutOfRadius),
		zap.Int("results", len(ranked)),
	)
	return result.New(ranked, stats), nil
}

// probe checks provider credentials within the sub-query timeout.
func (s *Service) probe(ctx context.Context, origin geo.Point) error {
	ctx, cancel := context.WithTimeout(ctx, s.policy.SubqueryTimeout)
	defer cancel()
	return s.places.Probe(ctx, origin)
}

// SearchAddress geocodes a zip code, city or street address and searches around it.
// A bare zip code without an explicit scope or name uses the zip radius.
func (s *Service) SearchAddress(
	ctx context.Context, address string, sc scope.Scope, radiusMeters int, name string,
) (result.RankedResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return result.RankedResult{}, fmt.Errorf("%w: address is required", domain.ErrInvalidRequest)
	}
	if s.geocoder == nil {
		return result.RankedResult{}, fmt.Errorf("geocoder not configured: %w", domain.ErrProviderUnavailable)
	}

	origin, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return result.RankedResult{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	if sc == "" && strings.TrimSpace(name) == "" && zipRegex.MatchString(address) {
		sc = scope.Zip
	}

	req, err := request.New(origin, sc, radiusMeters, name)
	if err != nil {
		return result.RankedResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return s.Search(ctx, &req)
}

// NearbyStored ranks first-party venues around origin without calling the places provider.
func (s *Service) NearbyStored(ctx context.Context, origin geo.Point) (result.RankedResult, error) {
	if !origin.Valid() {
		return result.RankedResult{}, fmt.Errorf("%w: invalid origin coordinates %s", domain.ErrInvalidRequest, origin)
	}
	if s.store == nil {
		return result.RankedResult{}, fmt.Errorf("no venue store configured: %w", domain.ErrStoreUnavailable)
	}

	places, err := s.runStoreQuery(ctx)
	if err != nil {
		return result.RankedResult{}, err
	}

	annotated, outside := annotate(places, origin, s.policy.StoreRadiusMiles)
	stats := result.Stats{
		QueriesIssued: 1,
		RawCandidates: len(places),
		UniqueVenues:  len(places),
		OutOfRadius:   outside,
	}
	return result.New(s.ranker.rank(annotated, ""), stats), nil
}

// fallback builds the placeholder result used when live data can't be shown.
func (s *Service) fallback(
	origin geo.Point, reason result.FallbackReason, stats result.Stats, log *zap.Logger,
) result.RankedResult {
	places := fallbackPlaces(origin, s.policy.FallbackVenueCount)
	annotated, _ := annotate(places, origin, math.Inf(1))
	metrics.SearchFallbackTotal.WithLabelValues(string(reason)).Inc()
	log.Info("Serving placeholder venues", zap.String("reason", string(reason)), zap.Int("count", len(annotated)))
	// Placeholder ratings are cosmetic; order by distance only.
	byDistance := ranker{ratingTie: math.Inf(1)}
	return result.NewFallback(byDistance.rank(annotated, ""), reason, stats)
}
