package venue

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/margaritamap/margarita/internal/db"
	"github.com/margaritamap/margarita/internal/domain/geo"
	domvenue "github.com/margaritamap/margarita/internal/domain/venue"
)

const listLocatedSQL = `SELECT id, name, address, phone, website, latitude, longitude
FROM establishments
WHERE latitude IS NOT NULL AND longitude IS NOT NULL`

// querier is the consumer interface for the SQL venue store (ISP).
type querier interface {
	Query(ctx context.Context, query string, args ...any) (db.Rows, error)
}

// PostgresRepo reads first-party venues from the establishments table.
type PostgresRepo struct {
	db     querier
	logger *zap.Logger
}

// NewPostgres creates a Postgres-backed venue repository.
func NewPostgres(q querier, logger *zap.Logger) *PostgresRepo {
	return &PostgresRepo{db: q, logger: logger}
}

// ListLocated returns every establishment with coordinates.
// Rows with out-of-range coordinates or no name are skipped.
func (r *PostgresRepo) ListLocated(ctx context.Context) ([]domvenue.Place, error) {
	rows, err := r.db.Query(ctx, listLocatedSQL)
	if err != nil {
		return nil, fmt.Errorf("list establishments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domvenue.Place
	for rows.Next() {
		var (
			id                      string
			name                    string
			address, phone, website sql.NullString
			lat, lng                float64
		)
		if err := rows.Scan(&id, &name, &address, &phone, &website, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan establishment: %w", err)
		}

		loc := geo.NewPoint(lat, lng)
		p, err := domvenue.New(storeFields(id, name, address.String, phone.String, website.String, loc))
		if err != nil {
			r.logger.Warn("Skipping invalid establishment", zap.String("id", id), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate establishments: %w", err)
	}
	return out, nil
}

// storeFields builds the attributes of a first-party venue.
// Stored venues are food/drink establishments by construction, so they carry the restaurant tag.
func storeFields(id, name, address, phone, website string, loc geo.Point) domvenue.Fields {
	return domvenue.Fields{
		ID:         id,
		Name:       name,
		Address:    address,
		Phone:      phone,
		Website:    website,
		Location:   &loc,
		Categories: []string{"restaurant"},
		Origin:     domvenue.OriginStore,
	}
}
