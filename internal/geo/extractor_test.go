package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchKnownPlace(t *testing.T) {
	t.Run("case-insensitive substring", func(t *testing.T) {
		place, ok := matchKnownPlace("Protests continued in hong kong overnight.")
		require.True(t, ok)
		assert.Equal(t, "Hong Kong", place)
	})

	t.Run("declaration order wins", func(t *testing.T) {
		place, ok := matchKnownPlace("Talks between the United Kingdom and the United States stalled.")
		require.True(t, ok)
		assert.Equal(t, "United States", place)
	})

	t.Run("no dictionary hit", func(t *testing.T) {
		_, ok := matchKnownPlace("An uneventful day in an unnamed village.")
		assert.False(t, ok)
	})
}

func TestEntityClass(t *testing.T) {
	assert.Equal(t, "LOC", entityClass("B-LOC"))
	assert.Equal(t, "LOC", entityClass("I-LOC"))
	assert.Equal(t, "GPE", entityClass("GPE"))
	assert.Equal(t, "MISC", entityClass("B-MISC"))
}

func TestNoCandidateExtractor(t *testing.T) {
	place, ok := NoCandidateExtractor{}.Extract("The fall of Constantinople.")
	assert.False(t, ok)
	assert.Empty(t, place)
}
