package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/e-9/chrono-atlas/internal/geo"
)

// Source fetches normalized raw events for a calendar day, ordered by year
// ascending and deduplicated on (year, text).
type Source interface {
	Fetch(ctx context.Context, month, day int) ([]RawEvent, error)
}

// Gazetteer is the curated-table resolution stage.
type Gazetteer interface {
	Lookup(name string) (geo.Location, bool)
}

// DateCache stores assembled event lists by date key for process lifetime.
type DateCache interface {
	Get(key string) ([]HistoricalEvent, bool)
	Put(key string, events []HistoricalEvent)
	Clear()
}

// NameCache stores externally resolved place names. It is never evicted;
// external resolutions are expensive to rebuild and survive date-cache
// invalidation.
type NameCache interface {
	Get(name string) (geo.Location, bool)
	Put(name string, loc geo.Location)
}

// Service aggregates, geocodes, and caches historical events per calendar
// day.
type Service struct {
	source    Source
	extractor geo.Extractor
	gazetteer Gazetteer
	geocoder  geo.ExternalGeocoder
	dates     DateCache
	names     NameCache
	group     singleflight.Group
	logger    zerolog.Logger
}

// NewService creates a new Service.
func NewService(source Source, extractor geo.Extractor, gazetteer Gazetteer, geocoder geo.ExternalGeocoder, dates DateCache, names NameCache, logger zerolog.Logger) *Service {
	return &Service{
		source:    source,
		extractor: extractor,
		gazetteer: gazetteer,
		geocoder:  geocoder,
		dates:     dates,
		names:     names,
		logger:    logger,
	}
}

// EventsForDate returns the fully resolved events for a month/day. The
// result is cached per date key; concurrent cold misses for the same key
// collapse into a single aggregation. Upstream failures yield an empty,
// cached list rather than an error.
func (s *Service) EventsForDate(ctx context.Context, month, day int) []HistoricalEvent {
	key := DateKey(month, day)

	if cached, ok := s.dates.Get(key); ok {
		s.logger.Debug().Str("date", key).Int("count", len(cached)).Msg("date cache hit")
		return cached
	}

	result, _, _ := s.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while we waited.
		if cached, ok := s.dates.Get(key); ok {
			return cached, nil
		}
		return s.aggregate(ctx, key, month, day), nil
	})
	return result.([]HistoricalEvent)
}

// ClearCache purges only the date-keyed event cache. The name cache is
// intentionally preserved.
func (s *Service) ClearCache() {
	s.dates.Clear()
	s.logger.Info().Msg("date cache cleared")
}

func (s *Service) aggregate(ctx context.Context, key string, month, day int) []HistoricalEvent {
	raw, err := s.source.Fetch(ctx, month, day)
	if err != nil {
		// A cancelled caller is not an upstream failure; caching an empty
		// list here would pin the date empty until a manual cache clear.
		if ctx.Err() != nil {
			s.logger.Warn().Str("date", key).Msg("aggregation cancelled; date not cached")
			return []HistoricalEvent{}
		}
		s.logger.Warn().Err(err).Str("date", key).Msg("event feed unavailable")
		raw = nil
	}

	// Write-through even when empty so a failing upstream does not cause
	// repeated refetch storms for the same date.
	if len(raw) == 0 {
		empty := []HistoricalEvent{}
		s.dates.Put(key, empty)
		return empty
	}

	// Extract a candidate place per record; collect distinct names in
	// insertion order so dedup never perturbs resolution order.
	placeByIndex := make(map[int]string, len(raw))
	var distinct []string
	seen := make(map[string]struct{})
	for i, re := range raw {
		place, ok := s.extractor.Extract(re.Title + ". " + re.Text)
		if !ok {
			continue
		}
		placeByIndex[i] = place
		if _, dup := seen[place]; !dup {
			seen[place] = struct{}{}
			distinct = append(distinct, place)
		}
	}

	// Resolve each distinct name: name cache, then gazetteer, then queue
	// for the external geocoder.
	resolved := make(map[string]geo.Location, len(distinct))
	var external []string
	for _, place := range distinct {
		if loc, ok := s.names.Get(place); ok {
			resolved[place] = loc
			continue
		}
		if loc, ok := s.gazetteer.Lookup(place); ok {
			resolved[place] = loc
			continue
		}
		external = append(external, place)
	}

	s.logger.Info().
		Str("date", key).
		Int("fetched", len(raw)).
		Int("unique_places", len(distinct)).
		Int("external", len(external)).
		Msg("resolution plan")

	// External calls run strictly sequentially; the shared throttle keeps
	// the mandated spacing.
	for _, place := range external {
		loc, ok := s.geocoder.Resolve(ctx, place)
		if !ok {
			continue
		}
		resolved[place] = loc
		s.names.Put(place, loc)
	}

	// Assemble in fetch order (already year-ascending). Records without a
	// candidate or a resolution are dropped silently.
	assembled := make([]HistoricalEvent, 0, len(raw))
	for i, re := range raw {
		place, ok := placeByIndex[i]
		if !ok {
			continue
		}
		loc, ok := resolved[place]
		if !ok {
			continue
		}
		assembled = append(assembled, buildEvent(key, re, loc))
	}

	// Cancellation during resolution leaves events unresolved for the
	// wrong reason; return what we have but let a later call redo the day.
	if ctx.Err() != nil {
		s.logger.Warn().Str("date", key).Msg("aggregation cancelled; date not cached")
		return assembled
	}

	s.dates.Put(key, assembled)
	s.logger.Info().Str("date", key).Int("fetched", len(raw)).Int("located", len(assembled)).Msg("events aggregated")
	return assembled
}

func buildEvent(key string, re RawEvent, loc geo.Location) HistoricalEvent {
	description := re.Extract
	if description == "" {
		description = re.Text
	}

	ev := HistoricalEvent{
		ID:      uuid.NewString(),
		DateKey: key,
		Source: Provenance{
			Type:      ProvenanceWikipedia,
			SourceURL: re.PageURL,
		},
		Title:       re.Title,
		Description: description,
		Year:        re.Year,
		Categories:  InferCategories(re.Text),
		Location:    loc,
		CreatedAt:   time.Now().UTC(),
	}
	if re.ThumbnailURL != "" {
		ev.Media = &Media{ImageURL: re.ThumbnailURL}
	}
	return ev
}
