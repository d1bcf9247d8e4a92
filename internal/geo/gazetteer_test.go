package geo

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGazetteerLookup(t *testing.T) {
	g := NewGazetteer("", zerolog.Nop())
	require.NotZero(t, g.Len())

	t.Run("known place", func(t *testing.T) {
		loc, ok := g.Lookup("Constantinople")
		require.True(t, ok)
		assert.Equal(t, "Constantinople", loc.PlaceName)
		assert.Equal(t, "Istanbul", loc.ModernEquivalent)
		assert.Equal(t, ResolverGazetteer, loc.Resolver)
		assert.Equal(t, ConfidenceHigh, loc.Confidence)
		assert.Equal(t, "Point", loc.Type)
	})

	t.Run("case and whitespace invariant", func(t *testing.T) {
		want, ok := g.Lookup("Constantinople")
		require.True(t, ok)

		for _, variant := range []string{"constantinople", "CONSTANTINOPLE", "  Constantinople  ", "\tcOnStAnTiNoPlE\n"} {
			got, ok := g.Lookup(variant)
			require.True(t, ok, "variant %q", variant)
			assert.Equal(t, want, got, "variant %q", variant)
		}
	})

	t.Run("unknown place misses", func(t *testing.T) {
		_, ok := g.Lookup("Atlantis")
		assert.False(t, ok)
	})

	t.Run("all entries have valid coordinates", func(t *testing.T) {
		for name, loc := range g.entries {
			assert.True(t, loc.Valid(), "entry %q out of bounds: %v", name, loc.Coordinates)
		}
	})
}

func TestGazetteerMissingDataset(t *testing.T) {
	g := NewGazetteer("/nonexistent/places.csv", zerolog.Nop())

	assert.Zero(t, g.Len())
	_, ok := g.Lookup("Constantinople")
	assert.False(t, ok)
}
