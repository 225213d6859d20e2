/*
Package settlement drives the end-of-day payout computation.

PURPOSE:
  Takes everything the engine needs for one business day - live
  schedules, the roster, the day's gross totals - and turns matching
  schedules into persisted settlement runs.

PIPELINE (per schedule, see Runner.RunDay):
  1. Filter:  schedule day window must cover the business date
  2. Pool:    trigger percentages applied to the day's gross totals
  3. Deduct:  pre-payout entries applied in order to the pool
  4. Compute: rule engine distributes the remainder to the roster
  5. Persist: append-only run snapshot, rejected if one already exists

FAILURE ISOLATION:
  One schedule failing (bad stored config, storage error) must not
  block the others. Failures are logged and reported in the summary;
  the loop continues.

IDEMPOTENCE:
  A run already stored for (schedule, business date) is skipped. The
  store enforces the same invariant with a unique index, so even two
  racing runners cannot double-pay a day.

USAGE:
  runner := settlement.NewRunner(store, store, store, store, logger)
  summary, err := runner.RunDay(ctx, restaurantID, businessDate)

SEE ALSO:
  - payout/rules.go: The distribution engine this package drives
  - settlement/scheduler.go: Cron wrapper invoking RunDay nightly
*/
package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tably/gratuity-engine/payout"
)

// Runner executes the daily settlement pipeline for a restaurant.
type Runner struct {
	schedules   payout.ScheduleStore
	roster      payout.RosterStore
	totals      payout.TotalsStore
	settlements payout.SettlementStore
	engine      payout.RuleEngine
	log         zerolog.Logger
}

// NewRunner wires a runner over the given stores.
func NewRunner(
	schedules payout.ScheduleStore,
	roster payout.RosterStore,
	totals payout.TotalsStore,
	settlements payout.SettlementStore,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		schedules:   schedules,
		roster:      roster,
		totals:      totals,
		settlements: settlements,
		log:         log.With().Str("component", "settlement").Logger(),
	}
}

// ScheduleOutcome reports what happened to one schedule during a day run.
type ScheduleOutcome struct {
	ScheduleID   payout.ScheduleID
	ScheduleName string
	Skipped      bool
	SkipReason   string
	Run          *payout.SettlementRun
	Gaps         []payout.ConfigGap
	Err          error
}

// DaySummary aggregates the outcomes of one RunDay call.
type DaySummary struct {
	RestaurantID payout.RestaurantID
	BusinessDate time.Time
	Outcomes     []ScheduleOutcome
}

// Settled counts schedules that produced a new persisted run.
func (d DaySummary) Settled() int {
	n := 0
	for _, o := range d.Outcomes {
		if !o.Skipped && o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts schedules that errored.
func (d DaySummary) Failed() int {
	n := 0
	for _, o := range d.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// RunDay computes and persists settlements for every live schedule whose
// day window covers the business date. Already-settled schedules are
// skipped, so calling RunDay twice for the same date writes nothing new.
func (r *Runner) RunDay(ctx context.Context, restaurantID payout.RestaurantID, date time.Time) (DaySummary, error) {
	summary := DaySummary{RestaurantID: restaurantID, BusinessDate: date}

	schedules, err := r.schedules.ListSchedules(ctx, restaurantID)
	if err != nil {
		return summary, err
	}

	var rosterLoaded bool
	var roster []payout.RosterEntry
	var totals payout.DailyTotals

	for _, sched := range schedules {
		outcome := ScheduleOutcome{ScheduleID: sched.ID, ScheduleName: sched.Name}

		if !sched.MatchesDate(date) {
			outcome.Skipped = true
			outcome.SkipReason = "outside schedule day window"
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}

		exists, err := r.settlements.RunExists(ctx, sched.ID, date)
		if err != nil {
			outcome.Err = err
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}
		if exists {
			outcome.Skipped = true
			outcome.SkipReason = "already settled"
			r.log.Debug().
				Int64("schedule_id", int64(sched.ID)).
				Str("date", date.Format("2006-01-02")).
				Msg("run already exists, skipping")
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}

		// Roster and totals are per-day, not per-schedule; load once.
		if !rosterLoaded {
			roster, err = r.roster.LoadRosterForDate(ctx, restaurantID, date)
			if err != nil {
				return summary, err
			}
			totals, err = r.totals.LoadDailyTotals(ctx, restaurantID, date)
			if err != nil {
				return summary, err
			}
			rosterLoaded = true
		}

		run, gaps, err := r.settleOne(ctx, restaurantID, sched, date, roster, totals)
		outcome.Gaps = gaps
		if err != nil {
			// Two runners racing on the same day: the store's unique
			// constraint won, treat it as a skip.
			if errors.Is(err, payout.ErrRunExists) {
				outcome.Skipped = true
				outcome.SkipReason = "already settled"
			} else {
				outcome.Err = err
				r.log.Error().Err(err).
					Int64("schedule_id", int64(sched.ID)).
					Str("schedule", sched.Name).
					Msg("settlement failed")
			}
			summary.Outcomes = append(summary.Outcomes, outcome)
			continue
		}

		outcome.Run = run
		for _, gap := range gaps {
			r.log.Warn().
				Int64("schedule_id", int64(sched.ID)).
				Str("employee_id", string(gap.EmployeeID)).
				Str("job_title", gap.JobTitle).
				Str("reason", gap.Reason).
				Msg("employee excluded from distribution")
		}
		r.log.Info().
			Int64("schedule_id", int64(sched.ID)).
			Str("schedule", sched.Name).
			Str("date", date.Format("2006-01-02")).
			Str("pool", run.GrossPool.String()).
			Str("distributed", run.Distributed.String()).
			Int("line_items", len(run.LineItems)).
			Msg("settlement recorded")
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	return summary, nil
}

// Preview computes a settlement for one schedule without persisting it.
// Useful for managers checking what tonight's payout would look like.
func (r *Runner) Preview(ctx context.Context, restaurantID payout.RestaurantID, scheduleID payout.ScheduleID, date time.Time) (*payout.SettlementRun, []payout.ConfigGap, error) {
	sched, err := r.schedules.GetSchedule(ctx, restaurantID, scheduleID)
	if err != nil {
		return nil, nil, err
	}
	roster, err := r.roster.LoadRosterForDate(ctx, restaurantID, date)
	if err != nil {
		return nil, nil, err
	}
	totals, err := r.totals.LoadDailyTotals(ctx, restaurantID, date)
	if err != nil {
		return nil, nil, err
	}
	run, gaps := r.compute(restaurantID, sched, date, roster, totals)
	return run, gaps, nil
}

func (r *Runner) settleOne(
	ctx context.Context,
	restaurantID payout.RestaurantID,
	sched *payout.Schedule,
	date time.Time,
	roster []payout.RosterEntry,
	totals payout.DailyTotals,
) (*payout.SettlementRun, []payout.ConfigGap, error) {
	run, gaps := r.compute(restaurantID, sched, date, roster, totals)
	if err := r.settlements.SaveRun(ctx, *run); err != nil {
		return nil, gaps, err
	}
	return run, gaps, nil
}

func (r *Runner) compute(
	restaurantID payout.RestaurantID,
	sched *payout.Schedule,
	date time.Time,
	roster []payout.RosterEntry,
	totals payout.DailyTotals,
) (*payout.SettlementRun, []payout.ConfigGap) {
	pool := sched.Trigger.Pool(totals)
	remaining, deductions := payout.ApplyDeductions(pool, sched.PrePayout)
	result := r.engine.ComputeSchedule(sched, remaining, roster)

	run := &payout.SettlementRun{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		ScheduleID:   sched.ID,
		ScheduleName: sched.Name,
		BusinessDate: date,
		Rule:         sched.Rule,
		GrossPool:    pool,
		Distributed:  result.Total(),
		Deductions:   deductions,
		LineItems:    result.LineItems,
		CreatedAt:    time.Now().UTC(),
	}
	return run, result.Gaps
}
