package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// Warm-up scheduler interval; keep it shorter than any freshness
	// expectation on the date cache.
	WarmInterval time.Duration

	// Text-level geocode cache.
	GeocodeCacheSize int
	GeocodeCacheTTL  time.Duration

	// Minimum spacing between outbound geocoder calls.
	ThrottleInterval time.Duration

	FeedBaseURL  string
	NominatimURL string
	UserAgent    string

	// Optional override for the embedded gazetteer dataset.
	GazetteerPath string

	// Directory for downloaded NER models.
	ModelsDir string

	CORSOrigins string
	LogLevel    string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = httpTimeout

	// Default 50 minutes, as the warm loop must beat cache staleness.
	warmInterval, err := getenvDuration("WARM_INTERVAL", "50m")
	if err != nil {
		return nil, err
	}
	cfg.WarmInterval = warmInterval

	cfg.GeocodeCacheSize = getenvInt("GEOCODE_CACHE_SIZE", 2000)

	cacheTTL, err := getenvDuration("GEOCODE_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	cfg.GeocodeCacheTTL = cacheTTL

	throttle, err := getenvDuration("THROTTLE_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	cfg.ThrottleInterval = throttle

	cfg.FeedBaseURL = getenvDefault("WIKI_FEED_URL", "https://api.wikimedia.org/feed/v1/wikipedia/en/onthisday/all")
	cfg.NominatimURL = getenvDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search")
	cfg.UserAgent = getenvDefault("USER_AGENT", "ChronoAtlas/0.1 (https://github.com/e-9/chrono-atlas)")

	cfg.GazetteerPath = os.Getenv("GAZETTEER_PATH")
	cfg.ModelsDir = getenvDefault("MODELS_DIR", "./models")

	cfg.CORSOrigins = getenvDefault("CORS_ORIGINS", "http://localhost:5173")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
