package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margaritamap/margarita/internal/domain"
	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/search/query"
	"github.com/margaritamap/margarita/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

var austin = geo.NewPoint(30.2672, -97.7431)

const nearbyBody = `{
  "status": "OK",
  "results": [
    {
      "place_id": "ChIJchuys",
      "name": "Chuy's",
      "vicinity": "1728 Barton Springs Rd, Austin",
      "rating": 4.4,
      "price_level": 2,
      "geometry": {"location": {"lat": 30.2617, "lng": -97.7634}},
      "types": ["restaurant", "food", "point_of_interest"],
      "photos": [{"photo_reference": "ref-1"}, {"photo_reference": ""}]
    },
    {
      "place_id": "ChIJfree",
      "name": "Free Salsa Bar",
      "price_level": 0,
      "geometry": {"location": {"lat": 30.27, "lng": -97.74}},
      "types": ["bar"]
    },
    {"place_id": "", "name": "No ID"},
    {"place_id": "ChIJnogeo", "name": "No Geometry", "types": ["restaurant"]}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:        "test-key",
		BaseURL:       srv.URL + "/maps/api/",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
}

func TestSearch_Nearby(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "30.267200,-97.743100", q.Get("location"))
		assert.Equal(t, "16000", q.Get("radius"))
		assert.Equal(t, "restaurant", q.Get("type"))
		assert.Equal(t, "mexican", q.Get("keyword"))
		_, _ = w.Write([]byte(nearbyBody))
	})

	got, err := c.Search(context.Background(), query.NewNearby(austin, 16000, "restaurant", "mexican"))
	require.NoError(t, err)
	require.Len(t, got, 3)

	chuys := got[0]
	assert.Equal(t, "ChIJchuys", chuys.ID())
	assert.Equal(t, "1728 Barton Springs Rd, Austin", chuys.Address())
	rating, ok := chuys.Rating()
	assert.True(t, ok)
	assert.InDelta(t, 4.4, rating, 1e-9)
	assert.Equal(t, 2, chuys.PriceLevel())
	assert.Equal(t, []string{"ref-1"}, chuys.PhotoRefs())
	assert.True(t, chuys.HasCategory("restaurant"))

	assert.Equal(t, 0, got[1].PriceLevel(), "free tier maps to no price level")

	_, located := got[2].Location()
	assert.False(t, located, "missing geometry yields an unlocated place")
}

func TestSearch_Text(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "Chuy's", r.URL.Query().Get("query"))
		assert.Empty(t, r.URL.Query().Get("keyword"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"place_id":"a","name":"Chuy's",
			"formatted_address":"Round Rock, TX","geometry":{"location":{"lat":30.5,"lng":-97.7}}}]}`))
	})

	got, err := c.Search(context.Background(), query.NewText(austin, 48000, "Chuy's"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Round Rock, TX", got[0].Address())
}

func TestSearch_ZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	got, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "tequila bar"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_RequestDeniedNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	})

	_, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "tequila bar"))
	require.ErrorIs(t, err, domain.ErrProviderDenied)
	assert.Contains(t, err.Error(), "The provided API key is invalid.")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_TransientErrorsRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2:
			_, _ = w.Write([]byte(`{"status":"UNKNOWN_ERROR"}`))
		default:
			_, _ = w.Write([]byte(nearbyBody))
		}
	})

	got, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "margarita bar"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "margarita bar"))
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_NonRetryableStatuses(t *testing.T) {
	for _, status := range []string{"OVER_QUERY_LIMIT", "INVALID_REQUEST", "SOMETHING_NEW"} {
		t.Run(status, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
			})

			_, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "x"))
			require.ErrorIs(t, err, domain.ErrProviderUnavailable)
			assert.NotErrorIs(t, err, domain.ErrProviderDenied)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.Search(context.Background(), query.NewNearby(austin, 1000, "", "x"))
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearch_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(nearbyBody))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, query.NewNearby(austin, 1000, "", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProbe(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "50", r.URL.Query().Get("radius"))
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
		})
		assert.NoError(t, c.Probe(context.Background(), austin))
	})

	t.Run("denied", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED"}`))
		})
		assert.ErrorIs(t, c.Probe(context.Background(), austin), domain.ErrProviderDenied)
	})

	t.Run("no api key", func(t *testing.T) {
		c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
		assert.ErrorIs(t, c.Probe(context.Background(), austin), domain.ErrProviderDenied)
		assert.ErrorIs(t, c.HealthCheck(context.Background()), domain.ErrProviderDenied)
	})
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		switch r.URL.Query().Get("address") {
		case "78701":
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Austin, TX 78701",
				"geometry":{"location":{"lat":30.2729,"lng":-97.7444}}}]}`))
		default:
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		}
	})

	p, err := c.Geocode(context.Background(), "78701")
	require.NoError(t, err)
	assert.Equal(t, geo.NewPoint(30.2729, -97.7444), p)

	_, err = c.Geocode(context.Background(), "Nowhereville")
	assert.ErrorIs(t, err, domain.ErrGeocodeNotFound)
}

func TestStatusError(t *testing.T) {
	assert.NoError(t, statusError("OK", ""))
	assert.NoError(t, statusError("ZERO_RESULTS", ""))
	assert.True(t, errors.Is(statusError("REQUEST_DENIED", "bad key"), domain.ErrProviderDenied))
	assert.True(t, isTransient(statusError("UNKNOWN_ERROR", "")))
	assert.False(t, isTransient(statusError("REQUEST_DENIED", "")))
}
