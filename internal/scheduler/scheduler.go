package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/e-9/chrono-atlas/internal/events"
)

// Aggregator is the slice of the event service the warm loop needs.
type Aggregator interface {
	EventsForDate(ctx context.Context, month, day int) []events.HistoricalEvent
}

// Scheduler periodically primes the date cache so users in any timezone
// hit warm data.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Aggregator
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, service Aggregator, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the warm-up job, runs it immediately once, and starts
// the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(s.warm)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs. In-flight work
// finishes; nothing is corrupted by shutdown.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) warm() {
	s.logger.Info().Msg("scheduler: warming date caches")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, d := range warmDates(time.Now().UTC()) {
		key := events.DateKey(int(d.Month()), d.Day())
		list := s.service.EventsForDate(ctx, int(d.Month()), d.Day())
		s.logger.Info().Str("date", key).Int("count", len(list)).Msg("cache primed")
	}
}

// warmDates returns yesterday, today, and tomorrow (UTC). Timezones span
// UTC-12 to UTC+14, so at any moment up to three calendar dates are
// "today" somewhere.
func warmDates(now time.Time) []time.Time {
	return []time.Time{
		now.AddDate(0, 0, -1),
		now,
		now.AddDate(0, 0, 1),
	}
}
