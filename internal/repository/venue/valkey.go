package venue

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/db"
	"github.com/margaritamap/margarita/internal/domain/geo"
	domvenue "github.com/margaritamap/margarita/internal/domain/venue"
)

// fetchBatch caps the number of hashes fetched per pipelined round-trip.
const fetchBatch = 500

// hashStore is the consumer interface for the Valkey venue store (ISP).
type hashStore interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// ValkeyRepo stores first-party venues as hashes at <prefix>venue:<id>.
type ValkeyRepo struct {
	store  hashStore
	prefix string
	logger *zap.Logger
}

// NewValkey creates a Valkey-backed venue repository.
func NewValkey(s hashStore, keyPrefix string, logger *zap.Logger) *ValkeyRepo {
	return &ValkeyRepo{store: s, prefix: keyPrefix, logger: logger}
}

// ListLocated returns every stored venue that has parseable coordinates.
func (r *ValkeyRepo) ListLocated(ctx context.Context) ([]domvenue.Place, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"venue:*")
	if err != nil {
		return nil, fmt.Errorf("scan venues: %w", err)
	}

	out := make([]domvenue.Place, 0, len(keys))
	for start := 0; start < len(keys); start += fetchBatch {
		end := min(start+fetchBatch, len(keys))
		hashes, err := r.store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch venues: %w", err)
		}
		for i, h := range hashes {
			p, ok := parseVenueHash(h)
			if !ok {
				r.logger.Debug("Skipping venue hash without usable coordinates",
					zap.String("key", keys[start+i]))
				continue
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// Put writes venues as hashes in one pipelined round-trip. Venues without a location are skipped.
// Returns how many were written.
func (r *ValkeyRepo) Put(ctx context.Context, places []domvenue.Place) (int, error) {
	items := make([]db.HashSetItem, 0, len(places))
	for _, p := range places {
		fields, ok := venueHash(p)
		if !ok {
			continue
		}
		items = append(items, db.HashSetItem{Key: r.venueKey(p.ID()), Fields: fields})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("store venues: %w", err)
	}
	return len(items), nil
}

func (r *ValkeyRepo) venueKey(id string) string {
	return r.prefix + "venue:" + id
}

func venueHash(p domvenue.Place) (map[string]string, bool) {
	loc, ok := p.Location()
	if !ok {
		return nil, false
	}
	return map[string]string{
		"id":        p.ID(),
		"name":      p.Name(),
		"address":   p.Address(),
		"phone":     p.Phone(),
		"website":   p.Website(),
		"latitude":  strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(loc.Lng, 'f', -1, 64),
	}, true
}

func parseVenueHash(h map[string]string) (domvenue.Place, bool) {
	lat, err := strconv.ParseFloat(h["latitude"], 64)
	if err != nil {
		return domvenue.Place{}, false
	}
	lng, err := strconv.ParseFloat(h["longitude"], 64)
	if err != nil {
		return domvenue.Place{}, false
	}
	loc := geo.NewPoint(lat, lng)
	p, err := domvenue.New(storeFields(h["id"], h["name"], h["address"], h["phone"], h["website"], loc))
	if err != nil {
		return domvenue.Place{}, false
	}
	return p, true
}
