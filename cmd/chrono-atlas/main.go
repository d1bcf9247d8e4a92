package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/e-9/chrono-atlas/internal/api/http"
	"github.com/e-9/chrono-atlas/internal/config"
	"github.com/e-9/chrono-atlas/internal/events"
	"github.com/e-9/chrono-atlas/internal/events/providers"
	"github.com/e-9/chrono-atlas/internal/geo"
	"github.com/e-9/chrono-atlas/internal/scheduler"
	"github.com/e-9/chrono-atlas/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg.LogLevel)

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Place extraction. An unavailable model is non-fatal: the service
	// degrades to producing no candidates (and therefore no events).
	var extractor geo.Extractor
	ner, err := geo.NewNERExtractor(cfg.ModelsDir, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("place extraction model unavailable; events will not be located")
		extractor = geo.NoCandidateExtractor{}
	} else {
		extractor = ner
		defer ner.Close()
	}

	// Resolution stages and shared throttle.
	gazetteer := geo.NewGazetteer(cfg.GazetteerPath, logger)
	throttle := geo.NewThrottle(cfg.ThrottleInterval)
	nominatim := geo.NewNominatimClient(httpClient, cfg.NominatimURL, cfg.UserAgent, throttle, logger)

	// Upstream event feed.
	feed := providers.NewWikipediaClient(httpClient, cfg.FeedBaseURL, cfg.UserAgent, logger)

	// Caches owned here and injected, so cross-request reuse is explicit.
	dateCache := store.NewDateCache()
	nameCache := store.NewNameCache()

	// Core service orchestrating fetch, resolution, and caching.
	service := events.NewService(feed, extractor, gazetteer, nominatim, dateCache, nameCache, logger)

	// Text-level geocoding pipeline with its own capacity+TTL cache.
	pipeline := geo.NewPipeline(extractor, gazetteer, nominatim, cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL, logger)

	// Warm-up scheduler priming yesterday/today/tomorrow.
	sched := scheduler.New(cfg.WarmInterval, service, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration.
	app := fiber.New(fiber.Config{
		AppName:               "chrono-atlas",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware.
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
	}))
	app.Use(compress.New())

	// Basic health endpoint.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "chrono-atlas",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, pipeline)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("chrono-atlas started")

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
