package events

import (
	"fmt"
	"time"

	"github.com/e-9/chrono-atlas/internal/geo"
)

// RawEvent is a normalized upstream feed record. Optional fields are left
// zero-valued when the feed omits them and never serialized as empty
// strings.
type RawEvent struct {
	Text         string
	Year         int
	Title        string
	PageURL      string
	ThumbnailURL string
	Extract      string
}

// ProvenanceKind identifies where an event originated.
type ProvenanceKind string

const (
	ProvenanceWikipedia ProvenanceKind = "wikipedia"
	ProvenanceCurated   ProvenanceKind = "curated"
)

// Provenance links an event back to its origin.
type Provenance struct {
	Type      ProvenanceKind `json:"type"`
	SourceURL string         `json:"sourceUrl,omitempty"`
}

// Media holds optional attached media for an event.
type Media struct {
	ImageURL string `json:"imageUrl"`
}

// HistoricalEvent is a fully resolved event. It always carries a valid
// location; events that fail every resolution stage are never built.
type HistoricalEvent struct {
	ID          string       `json:"id"`
	DateKey     string       `json:"isoDate"`
	Source      Provenance   `json:"source"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Year        int          `json:"year"`
	Categories  []string     `json:"categories"`
	Location    geo.Location `json:"location"`
	Media       *Media       `json:"media,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// DateKey formats a month/day pair as the canonical "MM-DD" cache key.
func DateKey(month, day int) string {
	return fmt.Sprintf("%02d-%02d", month, day)
}
