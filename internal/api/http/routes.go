package httpapi

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/e-9/chrono-atlas/internal/events"
	"github.com/e-9/chrono-atlas/internal/geo"
)

var validate = validator.New()

// EventService is the upward interface exposed to the request layer.
type EventService interface {
	EventsForDate(ctx context.Context, month, day int) []events.HistoricalEvent
	ClearCache()
}

// GeocodePipeline resolves free text to a location.
type GeocodePipeline interface {
	ResolveText(ctx context.Context, title, text string) (geo.Location, bool)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service EventService, pipeline GeocodePipeline) {
	v1 := app.Group("/api/v1")

	v1.Get("/events", func(c *fiber.Ctx) error {
		req, err := parseDateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		list := service.EventsForDate(c.UserContext(), req.Month, req.Day)
		return c.JSON(fiber.Map{
			"date":   events.DateKey(req.Month, req.Day),
			"count":  len(list),
			"events": list,
		})
	})

	v1.Delete("/cache", func(c *fiber.Ctx) error {
		service.ClearCache()
		return c.JSON(fiber.Map{"status": "cleared"})
	})

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		loc, ok := pipeline.ResolveText(c.UserContext(), "", q)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "place could not be resolved")
		}
		return c.JSON(loc)
	})
}

// dateQuery holds query parameters identifying a calendar day.
type dateQuery struct {
	Month int `validate:"required,min=1,max=12"`
	Day   int `validate:"required,min=1,max=31"`
}

func parseDateQuery(c *fiber.Ctx) (dateQuery, error) {
	q := dateQuery{
		Month: c.QueryInt("month"),
		Day:   c.QueryInt("day"),
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
