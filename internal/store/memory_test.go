package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-9/chrono-atlas/internal/events"
	"github.com/e-9/chrono-atlas/internal/geo"
)

func TestDateCache(t *testing.T) {
	c := NewDateCache()

	_, ok := c.Get("07-04")
	assert.False(t, ok)

	list := []events.HistoricalEvent{{ID: "a", DateKey: "07-04"}}
	c.Put("07-04", list)

	got, ok := c.Get("07-04")
	require.True(t, ok)
	assert.Equal(t, list, got)

	// An empty list is a hit, not a miss: the date was aggregated and
	// produced nothing.
	c.Put("02-30", []events.HistoricalEvent{})
	got, ok = c.Get("02-30")
	require.True(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	_, ok = c.Get("07-04")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestNameCache(t *testing.T) {
	c := NewNameCache()

	_, ok := c.Get("Wessex")
	assert.False(t, ok)

	loc := geo.NewPoint(-1.5, 51.0)
	loc.PlaceName = "Wessex"
	c.Put("Wessex", loc)

	got, ok := c.Get("Wessex")
	require.True(t, ok)
	assert.Equal(t, loc, got)
	assert.Equal(t, 1, c.Len())
}
