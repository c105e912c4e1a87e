package geocache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/db"
	"github.com/margaritamap/margarita/internal/domain/geo"
)

type mockGeocoder struct {
	point geo.Point
	err   error
	calls int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (geo.Point, error) {
	m.calls++
	return m.point, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedGeocoder(t *testing.T, inner *mockGeocoder) (*CachedGeocoder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cg := New(inner, ms, "margarita:", 720*time.Hour, nil, zap.NewNop())
	return cg, ms
}
