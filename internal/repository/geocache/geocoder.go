// Package geocache caches address geocoding results in a key-value store.
package geocache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/db"
	"github.com/margaritamap/margarita/internal/domain/geo"
)

// geocoder is the wrapped address resolver.
type geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Point, error)
}

// store is the consumer interface for the geocode cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedGeocoder caches geocoding results in a key-value store.
// Cache failures are logged and bypassed; they never fail a lookup.
type CachedGeocoder struct {
	inner      geocoder
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner geocoder,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGeocoder {
	return &CachedGeocoder{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix + "geocode:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Geocode returns a cached point or resolves the address with the inner geocoder.
// Failed lookups are not cached.
func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (geo.Point, error) {
	key := c.cacheKey(address)

	if p, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return p, nil
	}

	c.incCache("miss")

	p, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode address: %w", err)
	}

	c.putToCache(ctx, key, p)
	return p, nil
}

func (c *CachedGeocoder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey normalizes case and whitespace so "78701" and " 78701 " share an entry.
func (c *CachedGeocoder) cacheKey(address string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(norm))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedGeocoder) getFromCache(ctx context.Context, key string) (geo.Point, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached geocode", zap.String("key", key), zap.Error(err))
		}
		return geo.Point{}, false
	}

	p, err := bytesToPoint(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached geocode", zap.String("key", key), zap.Error(err))
		return geo.Point{}, false
	}
	return p, true
}

func (c *CachedGeocoder) putToCache(ctx context.Context, key string, p geo.Point) {
	if err := c.store.SetWithTTL(ctx, key, pointToBytes(p), c.ttl); err != nil {
		c.logger.Warn("Failed to cache geocode", zap.String("key", key), zap.Error(err))
	}
}

// pointToBytes encodes lat and lng as two little-endian float64s.
func pointToBytes(p geo.Point) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(p.Lat))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Lng))
	return buf
}

func bytesToPoint(data []byte) (geo.Point, error) {
	if len(data) != 16 {
		return geo.Point{}, fmt.Errorf("invalid geocode cache data: len=%d (want 16)", len(data))
	}
	p := geo.NewPoint(
		math.Float64frombits(binary.LittleEndian.Uint64(data[0:])),
		math.Float64frombits(binary.LittleEndian.Uint64(data[8:])),
	)
	if !p.Valid() {
		return geo.Point{}, fmt.Errorf("invalid cached coordinates %s", p)
	}
	return p, nil
}
