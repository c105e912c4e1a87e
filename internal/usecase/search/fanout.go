package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/margaritamap/margarita/internal/domain"
	"github.com/margaritamap/margarita/internal/domain/search/query"
	"github.com/margaritamap/margarita/internal/domain/search/request"
	"github.com/margaritamap/margarita/internal/domain/venue"
	"github.com/margaritamap/margarita/internal/metrics"
)

// Keywords of a generic (no name filter) search.
var genericKeywords = []string{"mexican restaurant", "margarita bar", "tequila bar"}

const storeKind = "store"

// planQueries builds the provider query set for a request.
// Generic searches look for Mexican restaurants and tequila/margarita bars at one radius.
// Name searches query the name under several categories, then widen to 2x and 3x
// the radius to catch chain locations farther away.
func planQueries(req *request.Request, radius int) []query.Query {
	origin := req.Origin()
	if !req.HasNameFilter() {
		plan := make([]query.Query, 0, len(genericKeywords)+1)
		for _, kw := range genericKeywords {
			plan = append(plan, query.NewNearby(origin, radius, "", kw))
		}
		return append(plan, query.NewNearby(origin, radius, "restaurant", "mexican"))
	}

	name := req.NameFilter()
	return []query.Query{
		query.NewNearby(origin, radius, "restaurant", name),
		query.NewNearby(origin, radius, "food", name),
		query.NewNearby(origin, radius, "meal_takeaway", name),
		query.NewNearby(origin, radius, "", name+" restaurant"),
		query.NewNearby(origin, capRadius(radius*2), "restaurant", name),
		query.NewText(origin, capRadius(radius*3), name),
	}
}

// fanoutResult holds every source's places in plan order, with the store last.
type fanoutResult struct {
	lists          [][]venue.Place
	providerIssued int
	providerFailed int
	storeIssued    bool
	storeFailed    bool
}

func (r fanoutResult) issued() int {
	if r.storeIssued {
		return r.providerIssued + 1
	}
	return r.providerIssued
}

func (r fanoutResult) failed() int {
	if r.storeFailed {
		return r.providerFailed + 1
	}
	return r.providerFailed
}

// allFailed reports whether no source answered at all.
func (r fanoutResult) allFailed() bool {
	return r.providerFailed == r.providerIssued && (!r.storeIssued || r.storeFailed)
}

// fanout runs every provider query and the store query concurrently and waits for all of them.
// A failing sub-query contributes nothing and never cancels its siblings.
func (s *Service) fanout(ctx context.Context, plan []query.Query, log *zap.Logger) fanoutResult {
	withStore := s.store != nil
	n := len(plan)
	if withStore {
		n++
	}

	// Each goroutine writes only its own slot.
	lists := make([][]venue.Place, n)
	errs := make([]error, n)

	var g errgroup.Group
	for i, q := range plan {
		g.Go(func() error {
			lists[i], errs[i] = s.runProviderQuery(ctx, q)
			return nil
		})
	}
	if withStore {
		g.Go(func() error {
			lists[n-1], errs[n-1] = s.runStoreQuery(ctx)
			return nil
		})
	}
	_ = g.Wait()

	res := fanoutResult{lists: lists, providerIssued: len(plan), storeIssued: withStore}
	for i, err := range errs {
		if err == nil {
			continue
		}
		lists[i] = nil
		if withStore && i == n-1 {
			res.storeFailed = true
			log.Warn("venue store query failed", zap.Error(err))
			continue
		}
		res.providerFailed++
		log.Warn("places sub-query failed", zap.String("query", plan[i].Label()), zap.Error(err))
	}
	return res
}

func (s *Service) runProviderQuery(ctx context.Context, q query.Query) ([]venue.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.SubqueryTimeout)
	defer cancel()

	places, err := s.places.Search(ctx, q)
	observeSubquery(string(q.Kind), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.Label(), err)
	}
	return places, nil
}

func (s *Service) runStoreQuery(ctx context.Context) ([]venue.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.SubqueryTimeout)
	defer cancel()

	places, err := s.store.ListLocated(ctx)
	observeSubquery(storeKind, err)
	if err != nil {
		return nil, fmt.Errorf("list stored venues: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return places, nil
}

func observeSubquery(kind string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	default:
		status = "error"
	}
	metrics.SearchSubqueriesTotal.WithLabelValues(kind, status).Inc()
}
