/*
scheduler.go - Nightly settlement scheduler

PURPOSE:
  Invokes the settlement runner on a cron expression, once per
  configured restaurant. Defaults to 03:00 so the previous business
  day's totals have been finalized by the POS before payouts compute.

DESIGN:
  - One cron entry per scheduler; restaurants share the tick
  - The settled business date is "yesterday" relative to the tick
  - RunDay is idempotent, so a missed or doubled tick is harmless

USAGE:
  sched := settlement.NewScheduler(runner, logger, "tably-sf")
  if err := sched.Start("0 3 * * *"); err != nil { ... }
  defer sched.Stop()

SEE ALSO:
  - settlement/runner.go: The per-day pipeline this triggers
*/
package settlement

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tably/gratuity-engine/payout"
)

// Scheduler runs daily settlements on a cron expression.
type Scheduler struct {
	runner      *Runner
	restaurants []payout.RestaurantID
	log         zerolog.Logger
	cron        *cron.Cron
}

// NewScheduler creates a scheduler for the given restaurants.
func NewScheduler(runner *Runner, log zerolog.Logger, restaurants ...payout.RestaurantID) *Scheduler {
	return &Scheduler{
		runner:      runner,
		restaurants: restaurants,
		log:         log.With().Str("component", "scheduler").Logger(),
		cron:        cron.New(),
	}
}

// Start registers the settlement job and starts the cron loop.
// spec is a standard 5-field cron expression, e.g. "0 3 * * *".
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("cron", spec).Int("restaurants", len(s.restaurants)).Msg("settlement scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("settlement scheduler stopped")
}

// RunNow settles the given business date immediately for all
// restaurants, outside the cron cadence.
func (s *Scheduler) RunNow(ctx context.Context, date time.Time) {
	for _, rid := range s.restaurants {
		s.settle(ctx, rid, date)
	}
}

func (s *Scheduler) tick() {
	// The nightly tick settles the day that just ended.
	date := time.Now().AddDate(0, 0, -1)
	ctx := context.Background()
	for _, rid := range s.restaurants {
		s.settle(ctx, rid, date)
	}
}

func (s *Scheduler) settle(ctx context.Context, rid payout.RestaurantID, date time.Time) {
	summary, err := s.runner.RunDay(ctx, rid, date)
	if err != nil {
		s.log.Error().Err(err).
			Str("restaurant", string(rid)).
			Str("date", date.Format("2006-01-02")).
			Msg("settlement day run failed")
		return
	}
	s.log.Info().
		Str("restaurant", string(rid)).
		Str("date", date.Format("2006-01-02")).
		Int("settled", summary.Settled()).
		Int("failed", summary.Failed()).
		Msg("settlement day run complete")
}
