package geo

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	place string
	calls int
}

func (e *countingExtractor) Extract(string) (string, bool) {
	e.calls++
	return e.place, e.place != ""
}

type mapLookup map[string]Location

func (m mapLookup) Lookup(name string) (Location, bool) {
	loc, ok := m[name]
	return loc, ok
}

type funcGeocoder func(string) (Location, bool)

func (f funcGeocoder) Resolve(_ context.Context, name string) (Location, bool) {
	return f(name)
}

func istanbul() Location {
	loc := NewPoint(28.9784, 41.0082)
	loc.Confidence = ConfidenceHigh
	loc.Resolver = ResolverGazetteer
	loc.PlaceName = "Constantinople"
	loc.ModernEquivalent = "Istanbul"
	return loc
}

func noGeocoder(t *testing.T) funcGeocoder {
	return func(name string) (Location, bool) {
		t.Errorf("unexpected external call for %q", name)
		return Location{}, false
	}
}

func TestPipelineCachesByCombinedText(t *testing.T) {
	extractor := &countingExtractor{place: "Constantinople"}
	p := NewPipeline(extractor, mapLookup{"Constantinople": istanbul()}, noGeocoder(t), 10, time.Minute, zerolog.Nop())

	loc, ok := p.ResolveText(context.Background(), "Fall of a city", "The siege ended.")
	require.True(t, ok)
	assert.Equal(t, "Istanbul", loc.ModernEquivalent)
	assert.Equal(t, 1, extractor.calls)

	// Identical text is a pure cache hit.
	_, ok = p.ResolveText(context.Background(), "Fall of a city", "The siege ended.")
	require.True(t, ok)
	assert.Equal(t, 1, extractor.calls)

	// A different text naming the same place is cached independently.
	_, ok = p.ResolveText(context.Background(), "", "Another account of the same siege.")
	require.True(t, ok)
	assert.Equal(t, 2, extractor.calls)
}

func TestPipelineMissNotCached(t *testing.T) {
	extractor := &countingExtractor{place: "Wessex"}
	geocoder := funcGeocoder(func(string) (Location, bool) { return Location{}, false })
	p := NewPipeline(extractor, mapLookup{}, geocoder, 10, time.Minute, zerolog.Nop())

	_, ok := p.ResolveText(context.Background(), "", "A battle in Wessex.")
	assert.False(t, ok)

	_, ok = p.ResolveText(context.Background(), "", "A battle in Wessex.")
	assert.False(t, ok)
	assert.Equal(t, 2, extractor.calls)
}

func TestPipelineTTLExpiry(t *testing.T) {
	extractor := &countingExtractor{place: "Constantinople"}
	p := NewPipeline(extractor, mapLookup{"Constantinople": istanbul()}, noGeocoder(t), 10, 30*time.Millisecond, zerolog.Nop())

	_, ok := p.ResolveText(context.Background(), "", "The siege ended.")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = p.ResolveText(context.Background(), "", "The siege ended.")
	require.True(t, ok)
	assert.Equal(t, 2, extractor.calls)
}

func TestPipelineLRUEviction(t *testing.T) {
	extractor := &countingExtractor{place: "Constantinople"}
	p := NewPipeline(extractor, mapLookup{"Constantinople": istanbul()}, noGeocoder(t), 1, time.Minute, zerolog.Nop())

	p.ResolveText(context.Background(), "", "text one")
	p.ResolveText(context.Background(), "", "text two") // evicts "text one"
	p.ResolveText(context.Background(), "", "text one")
	assert.Equal(t, 3, extractor.calls)
}

func TestPipelineExternalFillsCache(t *testing.T) {
	extractor := &countingExtractor{place: "Wessex"}
	external := 0
	geocoder := funcGeocoder(func(name string) (Location, bool) {
		external++
		loc := NewPoint(-1.5, 51.0)
		loc.Confidence = ConfidenceMedium
		loc.Resolver = ResolverExternal
		loc.PlaceName = name
		return loc, true
	})
	p := NewPipeline(extractor, mapLookup{}, geocoder, 10, time.Minute, zerolog.Nop())

	loc, ok := p.ResolveText(context.Background(), "", "A battle in Wessex.")
	require.True(t, ok)
	assert.Equal(t, ResolverExternal, loc.Resolver)

	_, ok = p.ResolveText(context.Background(), "", "A battle in Wessex.")
	require.True(t, ok)
	assert.Equal(t, 1, external)
}
