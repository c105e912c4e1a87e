// Package chi is the HTTP API: venue search handlers, bearer auth and error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/domain"
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/request"
	"github.com/margaritamap/margarita/internal/domain/search/scope"
	logpkg "github.com/margaritamap/margarita/internal/logger"
	healthuc "github.com/margaritamap/margarita/internal/usecase/health"
	searchuc "github.com/margaritamap/margarita/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the venue search API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	// Order matters: the first matching sentinel wins.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrGeocodeNotFound, http.StatusNotFound, ErrorCodeLocationNotFound),
		sentinelHandler(domain.ErrNoDataSource, http.StatusServiceUnavailable, ErrorCodeNoDataSource),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
		sentinelHandler(domain.ErrProviderDenied, http.StatusBadGateway, ErrorCodeProviderUnavailable),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, ErrorCodeProviderUnavailable),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/address", s.SearchAddress)
		r.Get("/venues/nearby", s.NearbyVenues)
	})
}

// Search handles GET /v1/search?lat=&lng=&scope=&name=&radius=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var (
		lat, lng float64
		opt      optionalParams
	)
	if err := bindAll(r.URL.Query(),
		param{"lat", true, &lat},
		param{"lng", true, &lng},
		param{"scope", false, &opt.scope},
		param{"name", false, &opt.name},
		param{"radius", false, &opt.radius},
	); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	req, err := request.New(geo.NewPoint(lat, lng), opt.searchScope(), opt.radiusMeters(), opt.nameFilter())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSearchResponse(&res))
}

// SearchAddress handles GET /v1/search/address?q=&scope=&name=&radius=.
func (s *Server) SearchAddress(w http.ResponseWriter, r *http.Request) {
	var (
		address string
		opt     optionalParams
	)
	if err := bindAll(r.URL.Query(),
		param{"q", true, &address},
		param{"scope", false, &opt.scope},
		param{"name", false, &opt.name},
		param{"radius", false, &opt.radius},
	); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.search.SearchAddress(
		r.Context(), address, opt.searchScope(), opt.radiusMeters(), opt.nameFilter(),
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSearchResponse(&res))
}

// NearbyVenues handles GET /v1/venues/nearby?lat=&lng=.
func (s *Server) NearbyVenues(w http.ResponseWriter, r *http.Request) {
	var lat, lng float64
	if err := bindAll(r.URL.Query(),
		param{"lat", true, &lat},
		param{"lng", true, &lng},
	); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.search.NearbyStored(r.Context(), geo.NewPoint(lat, lng))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSearchResponse(&res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// param is one form-style query parameter binding.
// Optional parameters must bind into a pointer field (dest is **T).
type param struct {
	name     string
	required bool
	dest     any
}

func bindAll(q url.Values, params ...param) error {
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, p.required, p.name, q, p.dest); err != nil {
			return err
		}
	}
	return nil
}

// optionalParams are the search parameters shared by the search endpoints.
type optionalParams struct {
	scope  *string
	name   *string
	radius *int
}

func (o optionalParams) searchScope() scope.Scope {
	if o.scope == nil {
		return ""
	}
	return scope.Scope(*o.scope)
}

func (o optionalParams) nameFilter() string {
	if o.name == nil {
		return ""
	}
	return *o.name
}

func (o optionalParams) radiusMeters() int {
	if o.radius == nil {
		return 0
	}
	return *o.radius
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrGeocodeNotFound,
		domain.ErrNoDataSource,
		domain.ErrStoreUnavailable,
		domain.ErrProviderDenied,
		domain.ErrProviderUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
