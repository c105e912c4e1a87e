// Package places is the Google Places and Geocoding web service client.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/domain"
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/query"
	"github.com/margaritamap/margarita/internal/domain/venue"
	"github.com/margaritamap/margarita/internal/metrics"
)

// Endpoints, relative to the base URL. Also used as metric labels.
const (
	endpointNearby  = "nearbysearch"
	endpointText    = "textsearch"
	endpointGeocode = "geocode"
)

// Provider statuses.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusRequestDenied  = "REQUEST_DENIED"
	statusUnknownError   = "UNKNOWN_ERROR"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusInvalidRequest = "INVALID_REQUEST"
)

// probeRadiusMeters keeps the connectivity probe cheap.
const probeRadiusMeters = 50

// maxBodyBytes bounds provider response size.
const maxBodyBytes = 4 << 20

// Config holds the provider client settings.
type Config struct {
	APIKey        string
	BaseURL       string // e.g. https://maps.googleapis.com/maps/api
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client calls the Places Nearby/Text Search and Geocoding endpoints.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

// NewClient creates a provider client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	attempts := cfg.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		attempts: attempts,
		delay:    delay,
		logger:   logger,
	}
}

// Search runs one nearby or text query and converts the results to places.
// Results with missing IDs or invalid attributes are skipped.
func (c *Client) Search(ctx context.Context, q query.Query) ([]venue.Place, error) {
	endpoint, params := c.queryParams(q)

	var resp placesResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	out := make([]venue.Place, 0, len(resp.Results))
	for i := range resp.Results {
		p, err := toPlace(&resp.Results[i])
		if err != nil {
			c.logger.Debug("Skipping provider result", zap.String("query", q.Label()), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Probe checks that the provider accepts our credentials near origin.
// A missing API key is reported as denied without a network call.
func (c *Client) Probe(ctx context.Context, origin geo.Point) error {
	if c.apiKey == "" {
		return fmt.Errorf("places api key not configured: %w", domain.ErrProviderDenied)
	}
	params := url.Values{}
	params.Set("location", origin.String())
	params.Set("radius", strconv.Itoa(probeRadiusMeters))
	params.Set("type", "restaurant")

	var resp placesResponse
	return c.get(ctx, endpointNearby, params, &resp)
}

// HealthCheck reports whether the client is configured with credentials.
// It makes no network call; credential rejection surfaces through Probe.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("places api key not configured: %w", domain.ErrProviderDenied)
	}
	return nil
}

// Geocode resolves a zip code, city or street address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Point, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, endpointGeocode, params, &resp); err != nil {
		return geo.Point{}, err
	}
	if len(resp.Results) == 0 {
		return geo.Point{}, fmt.Errorf("no match for %q: %w", address, domain.ErrGeocodeNotFound)
	}
	loc := resp.Results[0].Geometry.Location
	p := geo.NewPoint(loc.Lat, loc.Lng)
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("geocoder returned invalid coordinates %s: %w", p, domain.ErrProviderUnavailable)
	}
	return p, nil
}

func (c *Client) queryParams(q query.Query) (string, url.Values) {
	params := url.Values{}
	params.Set("location", q.Location.String())
	params.Set("radius", strconv.Itoa(q.RadiusMeters))

	if q.Kind == query.Text {
		params.Set("query", q.Text)
		return endpointText, params
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	return endpointNearby, params
}

// get calls an endpoint with retries on transient failures and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out statusResponse) error {
	params.Set("key", c.apiKey)
	u := c.endpointURL(endpoint) + "?" + params.Encode()

	err := retry.Do(
		func() error {
			return c.getOnce(ctx, endpoint, u, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying places request",
				zap.String("endpoint", endpoint), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("places %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) getOnce(ctx context.Context, endpoint, u string, out statusResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		if ctx.Err() != nil {
			return fmt.Errorf("request aborted: %w", err)
		}
		return &transientError{err: fmt.Errorf("request failed: %w: %w", domain.ErrProviderUnavailable, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &transientError{err: fmt.Errorf("read body: %w: %w", domain.ErrProviderUnavailable, err)}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "http_"+strconv.Itoa(resp.StatusCode)).Inc()
		err := fmt.Errorf("http status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
		if resp.StatusCode >= http.StatusInternalServerError {
			return &transientError{err: err}
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
		return fmt.Errorf("decode response: %w: %w", domain.ErrProviderUnavailable, err)
	}

	status, message := out.status()
	metrics.ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
	return statusError(status, message)
}

func (c *Client) endpointURL(endpoint string) string {
	if endpoint == endpointGeocode {
		return c.baseURL + "/geocode/json"
	}
	return c.baseURL + "/place/" + endpoint + "/json"
}

// statusError maps a provider status to a domain error. OK and ZERO_RESULTS are not errors.
func statusError(status, message string) error {
	detail := status
	if message != "" {
		detail = status + ": " + message
	}
	switch status {
	case statusOK, statusZeroResults:
		return nil
	case statusRequestDenied:
		return fmt.Errorf("%s: %w", detail, domain.ErrProviderDenied)
	case statusUnknownError:
		return &transientError{err: fmt.Errorf("%s: %w", detail, domain.ErrProviderUnavailable)}
	case statusOverQueryLimit, statusInvalidRequest:
		return fmt.Errorf("%s: %w", detail, domain.ErrProviderUnavailable)
	default:
		return fmt.Errorf("unexpected status %s: %w", detail, domain.ErrProviderUnavailable)
	}
}

// transientError marks failures worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

func toPlace(r *placeResult) (venue.Place, error) {
	address := r.Vicinity
	if address == "" {
		address = r.FormattedAddress
	}
	photos := make([]string, 0, len(r.Photos))
	for _, p := range r.Photos {
		if p.PhotoReference != "" {
			photos = append(photos, p.PhotoReference)
		}
	}
	// Price level 0 means "free"; we only model paid tiers.
	price := r.PriceLevel
	if price != nil && *price < venue.MinPriceLevel {
		price = nil
	}
	f := venue.Fields{
		ID:         r.PlaceID,
		Name:       r.Name,
		Address:    address,
		Rating:     r.Rating,
		PriceLevel: price,
		Categories: r.Types,
		PhotoRefs:  photos,
		Origin:     venue.OriginProvider,
	}
	if r.Geometry != nil {
		loc := geo.NewPoint(r.Geometry.Location.Lat, r.Geometry.Location.Lng)
		f.Location = &loc
	}
	return venue.New(f)
}
