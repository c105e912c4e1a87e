package venue

import (
	"context"
	"errors"
	"fmt"

	"github.com/margaritamap/margarita/internal/db"
)

// fakeRows is an in-memory db.Rows.
type fakeRows struct {
	data    [][]any
	pos     int
	err     error
	scanErr error
	closed  bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: expected %d columns, got %d", len(row), len(dest))
	}
	for i, v := range row {
		if err := assign(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return r.err }
func (r *fakeRows) Close() error { r.closed = true; return nil }

func assign(dest, v any) error {
	switch d := dest.(type) {
	case *string:
		*d = v.(string)
	case *float64:
		*d = v.(float64)
	case interface{ Scan(any) error }:
		return d.Scan(v)
	default:
		return errors.New("unsupported scan destination")
	}
	return nil
}

type mockQuerier struct {
	rows  *fakeRows
	err   error
	query string
}

func (m *mockQuerier) Query(_ context.Context, query string, _ ...any) (db.Rows, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

// mockHashStore implements the consumer interface for tests.
type mockHashStore struct {
	scanFn      func(ctx context.Context, pattern string) ([]string, error)
	hgetMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
}

func (m *mockHashStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockHashStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetMultiFn != nil {
		return m.hgetMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockHashStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}
