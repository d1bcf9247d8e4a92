package geo

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

//go:embed data/historical_places.csv
var embeddedGazetteer []byte

// Gazetteer is a curated historical place-name table with exact-key,
// case-insensitive lookup. The table is loaded once at construction and
// never reloaded.
type Gazetteer struct {
	entries map[string]Location
	logger  zerolog.Logger
}

// NewGazetteer loads the table from path, or from the embedded dataset when
// path is empty. A missing or unreadable dataset degrades to an empty
// table; this is logged once and is non-fatal.
func NewGazetteer(path string, logger zerolog.Logger) *Gazetteer {
	g := &Gazetteer{
		entries: make(map[string]Location),
		logger:  logger,
	}

	data := embeddedGazetteer
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("gazetteer dataset unavailable; lookups will miss")
			return g
		}
		data = b
	}

	if err := g.load(data); err != nil {
		logger.Warn().Err(err).Msg("gazetteer dataset malformed; lookups will miss")
		return g
	}

	logger.Info().Int("places", len(g.entries)).Msg("gazetteer loaded")
	return g
}

func (g *Gazetteer) load(data []byte) error {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 4

	// Header row.
	if _, err := reader.Read(); err != nil {
		return err
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		historical := strings.TrimSpace(row[0])
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if historical == "" || latErr != nil || lngErr != nil {
			continue
		}

		loc := NewPoint(lng, lat)
		if !loc.Valid() {
			continue
		}
		loc.Confidence = ConfidenceHigh
		loc.Resolver = ResolverGazetteer
		loc.PlaceName = historical
		loc.ModernEquivalent = strings.TrimSpace(row[1])

		g.entries[strings.ToLower(historical)] = loc
	}
}

// Lookup returns the curated location for a place name. Keys are matched
// after trimming whitespace and lowercasing.
func (g *Gazetteer) Lookup(name string) (Location, bool) {
	loc, ok := g.entries[strings.ToLower(strings.TrimSpace(name))]
	return loc, ok
}

// Len reports the number of curated entries.
func (g *Gazetteer) Len() int { return len(g.entries) }
