package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-9/chrono-atlas/internal/events"
	"github.com/e-9/chrono-atlas/internal/geo"
)

func newTestFeed(t *testing.T, handler http.HandlerFunc) *WikipediaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWikipediaClient(srv.Client(), srv.URL, "chrono-atlas-test", zerolog.Nop())
}

var feedPayload = `{
	"selected": [
		{
			"text": "Apollo program lands on the Moon.",
			"year": 1969,
			"pages": [
				{
					"title": "Apollo 11",
					"extract": "Apollo 11 was the first crewed Moon landing.",
					"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Apollo_11"}},
					"thumbnail": {"source": "https://upload.wikimedia.org/apollo.jpg"}
				}
			]
		}
	],
	"events": [
		{"text": "A treaty was signed.", "year": 1648, "pages": []},
		{"text": "Apollo program lands on the Moon.", "year": 1969, "pages": []},
		{"text": "A record without a year is skipped."},
		{"year": 1900},
		{"text": "` + strings.Repeat("x", 120) + `", "year": 1700, "pages": []}
	]
}`

func TestFetchParsesDedupesAndSorts(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/07/20"), "path %q", r.URL.Path)
		w.Write([]byte(feedPayload))
	})

	raw, err := client.Fetch(context.Background(), 7, 20)
	require.NoError(t, err)
	require.Len(t, raw, 3)

	// Sorted ascending by year; the duplicate (1969, same text) collapsed
	// into the first occurrence, which carries the page metadata.
	assert.Equal(t, 1648, raw[0].Year)
	assert.Equal(t, 1700, raw[1].Year)
	assert.Equal(t, 1969, raw[2].Year)

	apollo := raw[2]
	assert.Equal(t, "Apollo 11", apollo.Title)
	assert.Equal(t, "Apollo 11 was the first crewed Moon landing.", apollo.Extract)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Apollo_11", apollo.PageURL)
	assert.Equal(t, "https://upload.wikimedia.org/apollo.jpg", apollo.ThumbnailURL)

	// No structured title: derived from the first 80 characters of text.
	assert.Len(t, raw[1].Title, 80)
	assert.Equal(t, strings.Repeat("x", 80), raw[1].Title)

	// Optional fields stay absent.
	treaty := raw[0]
	assert.Equal(t, "A treaty was signed.", treaty.Title)
	assert.Empty(t, treaty.PageURL)
	assert.Empty(t, treaty.ThumbnailURL)
	assert.Empty(t, treaty.Extract)
}

func TestFetchMalformedBody(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"selected": [`))
	})

	_, err := client.Fetch(context.Background(), 1, 1)
	assert.Error(t, err)
}

func TestFetchCancelledContext(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, 1, 1)
	assert.Error(t, err)
}

// Aggregation flow over a real feed client: an exact duplicate record must
// collapse to a single located event.
func TestAggregationCollapsesDuplicates(t *testing.T) {
	const declaration = `{
		"selected": [],
		"events": [
			{"text": "The Declaration of Independence is adopted in Philadelphia.", "year": 1776, "pages": []},
			{"text": "The Declaration of Independence is adopted in Philadelphia.", "year": 1776, "pages": []}
		]
	}`
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(declaration))
	})

	gazetteer := geo.NewGazetteer("", zerolog.Nop())
	geocoder := &recordingGeocoder{}
	svc := events.NewService(client, staticExtractor("Philadelphia"), gazetteer, geocoder, &flatDateCache{}, &flatNameCache{}, zerolog.Nop())

	list := svc.EventsForDate(context.Background(), 7, 4)
	require.Len(t, list, 1)

	ev := list[0]
	assert.Equal(t, 1776, ev.Year)
	assert.InDelta(t, -75.1498, ev.Location.Lng(), 0.01)
	assert.InDelta(t, 39.9496, ev.Location.Lat(), 0.01)
	assert.Empty(t, geocoder.calls)
}

type staticExtractor string

func (s staticExtractor) Extract(string) (string, bool) { return string(s), true }

type recordingGeocoder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingGeocoder) Resolve(_ context.Context, name string) (geo.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return geo.Location{}, false
}

type flatDateCache struct {
	data map[string][]events.HistoricalEvent
}

func (c *flatDateCache) Get(key string) ([]events.HistoricalEvent, bool) {
	list, ok := c.data[key]
	return list, ok
}

func (c *flatDateCache) Put(key string, list []events.HistoricalEvent) {
	if c.data == nil {
		c.data = make(map[string][]events.HistoricalEvent)
	}
	c.data[key] = list
}

func (c *flatDateCache) Clear() { c.data = nil }

type flatNameCache struct {
	data map[string]geo.Location
}

func (c *flatNameCache) Get(name string) (geo.Location, bool) {
	loc, ok := c.data[name]
	return loc, ok
}

func (c *flatNameCache) Put(name string, loc geo.Location) {
	if c.data == nil {
		c.data = make(map[string]geo.Location)
	}
	c.data[name] = loc
}
