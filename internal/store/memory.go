package store

import (
	"sync"

	"github.com/e-9/chrono-atlas/internal/events"
	"github.com/e-9/chrono-atlas/internal/geo"
)

// DateCache is a concurrency-safe in-memory cache of assembled event lists
// keyed by "MM-DD". It is unbounded and lives for the process lifetime;
// Clear is the only invalidation path.
type DateCache struct {
	mu   sync.RWMutex
	data map[string][]events.HistoricalEvent
}

// NewDateCache creates an empty DateCache.
func NewDateCache() *DateCache {
	return &DateCache{
		data: make(map[string][]events.HistoricalEvent),
	}
}

// Get returns the cached list for a date key. An empty cached list is a
// hit; it means the date was aggregated and produced nothing.
func (c *DateCache) Get(key string) ([]events.HistoricalEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list, ok := c.data[key]
	return list, ok
}

// Put stores the assembled list under a date key.
func (c *DateCache) Put(key string, list []events.HistoricalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = list
}

// Clear drops every cached date.
func (c *DateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string][]events.HistoricalEvent)
}

// Len reports the number of cached dates.
func (c *DateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

// NameCache is a concurrency-safe cache of externally resolved place
// names. Entries are never evicted: external resolutions are expensive to
// rebuild and must survive date-cache invalidation.
type NameCache struct {
	mu   sync.RWMutex
	data map[string]geo.Location
}

// NewNameCache creates an empty NameCache.
func NewNameCache() *NameCache {
	return &NameCache{
		data: make(map[string]geo.Location),
	}
}

// Get returns the cached location for a place name.
func (c *NameCache) Get(name string) (geo.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	loc, ok := c.data[name]
	return loc, ok
}

// Put stores a resolved location under its place name.
func (c *NameCache) Put(name string, loc geo.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[name] = loc
}

// Len reports the number of cached names.
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
