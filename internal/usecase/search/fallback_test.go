package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margaritamap/margarita/internal/domain/geo"
	"github.com/margaritamap/margarita/internal/domain/venue"
)

func TestFallbackPlaces_WithinSpread(t *testing.T) {
	got := fallbackPlaces(austin, 5)

	require.Len(t, got, 5)
	for _, p := range got {
		loc, ok := p.Location()
		require.True(t, ok)
		assert.Less(t, math.Abs(loc.Lat-austin.Lat), fallbackSpreadDegrees)
		assert.Less(t, math.Abs(loc.Lng-austin.Lng), fallbackSpreadDegrees)
		assert.Equal(t, venue.OriginFallback, p.Origin())
	}
}

func TestFallbackPlaces_DeterministicPerOrigin(t *testing.T) {
	a := fallbackPlaces(austin, 5)
	b := fallbackPlaces(austin, 5)
	other := fallbackPlaces(geo.NewPoint(29.7604, -95.3698), 5)

	for i := range a {
		la, _ := a[i].Location()
		lb, _ := b[i].Location()
		lo, _ := other[i].Location()
		assert.Equal(t, la, lb)
		assert.NotEqual(t, la, lo)
	}
}

func TestFallbackPlaces_UniqueIDsBeyondTemplates(t *testing.T) {
	got := fallbackPlaces(austin, len(placeholders)+3)

	seenIDs := map[string]bool{}
	seenNames := map[string]bool{}
	for _, p := range got {
		assert.False(t, seenIDs[p.ID()], "duplicate id %s", p.ID())
		assert.False(t, seenNames[p.Name()], "duplicate name %s", p.Name())
		seenIDs[p.ID()] = true
		seenNames[p.Name()] = true
	}
}

func TestFallbackPlaces_ClampedAtPole(t *testing.T) {
	for _, p := range fallbackPlaces(geo.NewPoint(90, 180), 8) {
		loc, _ := p.Location()
		assert.True(t, loc.Valid(), "invalid placeholder location %s", loc)
	}
}
