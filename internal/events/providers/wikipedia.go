package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/e-9/chrono-atlas/internal/events"
)

// WikipediaClient implements the events.Source interface against the
// Wikimedia "on this day" feed.
type WikipediaClient struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	logger    zerolog.Logger
}

func NewWikipediaClient(client *http.Client, baseURL, userAgent string, logger zerolog.Logger) *WikipediaClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wikipedia",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WikipediaClient{
		name:      "wikipedia",
		baseURL:   baseURL,
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		logger:  logger,
	}
}

func (c *WikipediaClient) Name() string { return c.name }

// feedEvent mirrors the slice of the feed payload we consume.
type feedEvent struct {
	Text  string `json:"text"`
	Year  *int   `json:"year"`
	Pages []struct {
		Title       string `json:"title"`
		Extract     string `json:"extract"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	} `json:"pages"`
}

// Fetch returns the feed's records for a calendar day, deduplicated on
// (year, text) with the first occurrence winning, sorted ascending by
// year. Callers treat any error as an empty day.
func (c *WikipediaClient) Fetch(ctx context.Context, month, day int) ([]events.RawEvent, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%02d/%02d", c.baseURL, month, day)
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Selected []feedEvent `json:"selected"`
		Events   []feedEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding feed payload: %w", err)
	}

	type dedupKey struct {
		year int
		text string
	}
	seen := make(map[dedupKey]struct{})
	var results []events.RawEvent

	for _, raw := range append(payload.Selected, payload.Events...) {
		parsed, ok := parseFeedEvent(raw)
		if !ok {
			continue
		}
		key := dedupKey{parsed.Year, parsed.Text}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, parsed)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Year < results[j].Year
	})

	c.logger.Debug().Int("month", month).Int("day", day).Int("count", len(results)).Msg("feed fetched")
	return results, nil
}

// parseFeedEvent normalizes one feed record. Records without text or year
// are skipped; a missing structured title falls back to the first 80
// characters of the text.
func parseFeedEvent(raw feedEvent) (events.RawEvent, bool) {
	if raw.Text == "" || raw.Year == nil {
		return events.RawEvent{}, false
	}

	re := events.RawEvent{
		Text: raw.Text,
		Year: *raw.Year,
	}

	if len(raw.Pages) > 0 {
		page := raw.Pages[0]
		re.Title = page.Title
		re.Extract = page.Extract
		re.PageURL = page.ContentURLs.Desktop.Page
		re.ThumbnailURL = page.Thumbnail.Source
	}
	if re.Title == "" {
		re.Title = truncateRunes(raw.Text, 80)
	}

	return re, true
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
