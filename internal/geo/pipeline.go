package geo

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// Lookup is the curated-table stage of the pipeline.
type Lookup interface {
	Lookup(name string) (Location, bool)
}

// Pipeline resolves free text to a location through extraction, the
// gazetteer, and the external geocoder, caching results by the exact
// combined text. Two different texts that name the same place are cached
// independently; place-name level caching lives with the aggregator.
type Pipeline struct {
	extractor Extractor
	gazetteer Lookup
	geocoder  ExternalGeocoder
	cache     *expirable.LRU[string, Location]
	logger    zerolog.Logger
}

// NewPipeline builds a text-resolution pipeline with a capacity+TTL LRU
// cache over resolved locations.
func NewPipeline(extractor Extractor, gazetteer Lookup, geocoder ExternalGeocoder, cacheSize int, cacheTTL time.Duration, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		gazetteer: gazetteer,
		geocoder:  geocoder,
		cache:     expirable.NewLRU[string, Location](cacheSize, nil, cacheTTL),
		logger:    logger,
	}
}

// ResolveText geocodes the combined title+text. Misses at every stage
// yield (zero, false); failures never propagate.
func (p *Pipeline) ResolveText(ctx context.Context, title, text string) (Location, bool) {
	combined := strings.TrimSpace(strings.TrimSpace(title) + " " + text)
	if combined == "" {
		return Location{}, false
	}

	if loc, ok := p.cache.Get(combined); ok {
		p.logger.Debug().Str("key", truncateKey(combined)).Msg("geocode cache hit")
		return loc, true
	}

	place, ok := p.extractor.Extract(combined)
	if !ok {
		return Location{}, false
	}

	if loc, ok := p.gazetteer.Lookup(place); ok {
		p.cache.Add(combined, loc)
		return loc, true
	}

	if loc, ok := p.geocoder.Resolve(ctx, place); ok {
		p.cache.Add(combined, loc)
		return loc, true
	}

	p.logger.Debug().Str("place", place).Msg("all resolution stages missed")
	return Location{}, false
}

func truncateKey(s string) string {
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
