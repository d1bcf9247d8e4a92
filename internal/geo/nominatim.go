package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ExternalGeocoder resolves a place name through an external service.
type ExternalGeocoder interface {
	Resolve(ctx context.Context, name string) (Location, bool)
}

// maxQueryLen bounds the free-text query sent to the external geocoder.
const maxQueryLen = 200

// NominatimClient geocodes free-text place names via the Nominatim search
// API. All calls share a Throttle, so outbound requests keep the mandated
// minimum spacing even across concurrent aggregations. Retries are
// deliberately absent here; a retry loop would violate that spacing.
type NominatimClient struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
	throttle  *Throttle
	logger    zerolog.Logger
}

func NewNominatimClient(client *http.Client, baseURL, userAgent string, throttle *Throttle, logger zerolog.Logger) *NominatimClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &NominatimClient{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
		circuit:   cb,
		throttle:  throttle,
		logger:    logger,
	}
}

func (c *NominatimClient) Name() string { return c.name }

// Resolve geocodes name, returning a miss on any transport failure or
// empty result set. The shared timestamp is stamped after the call
// completes, success or not, so spacing stays correct.
func (c *NominatimClient) Resolve(ctx context.Context, name string) (Location, bool) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxQueryLen {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:maxQueryLen]))
	}
	if name == "" {
		return Location{}, false
	}

	release, err := c.throttle.Acquire(ctx)
	if err != nil {
		return Location{}, false
	}
	body, err := c.search(ctx, name)
	release()

	if err != nil {
		c.logger.Warn().Err(err).Str("place", name).Msg("nominatim request failed")
		return Location{}, false
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		c.logger.Warn().Err(err).Str("place", name).Msg("nominatim response malformed")
		return Location{}, false
	}
	if len(results) == 0 {
		c.logger.Debug().Str("place", name).Msg("nominatim no results")
		return Location{}, false
	}

	hit := results[0]
	lat, latErr := strconv.ParseFloat(hit.Lat, 64)
	lng, lngErr := strconv.ParseFloat(hit.Lon, 64)
	if latErr != nil || lngErr != nil {
		c.logger.Warn().Str("place", name).Msg("nominatim returned unparseable coordinates")
		return Location{}, false
	}

	loc := NewPoint(lng, lat)
	if !loc.Valid() {
		c.logger.Warn().Str("place", name).Msg("nominatim returned out-of-range coordinates")
		return Location{}, false
	}
	loc.Confidence = ConfidenceMedium
	loc.Resolver = ResolverExternal
	loc.PlaceName = name
	loc.ModernEquivalent = hit.DisplayName
	return loc, true
}

func (c *NominatimClient) search(ctx context.Context, name string) ([]byte, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		values := url.Values{}
		values.Set("q", name)
		values.Set("format", "json")
		values.Set("limit", "1")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
