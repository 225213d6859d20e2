/*
store.go - Persistence interfaces for schedules and settlements

PURPOSE:
  Defines the boundary between the engine and storage. The engine's
  public contract is expressed against these shapes; the actual
  implementation (SQLite here, HTTP in the source system) is a detail.

KEY INTERFACES:
  ScheduleStore:   CRUD for schedule definitions (saves are gated by
                   Schedule.Validate at the call site)
  RosterStore:     Employee roster with hours for a business date
  TotalsStore:     A day's aggregated gross tips/gratuity
  SettlementStore: Immutable payout run snapshots

SNAPSHOT CONTRACT:
  Settlement runs are append-only snapshots. A run records the schedule
  configuration it computed with, so editing or deleting the schedule
  afterwards never changes what was paid. Re-running the same
  (schedule, business date) is rejected with ErrRunExists, which is how
  the nightly job stays idempotent.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - payout/store: In-memory for tests and dev

SEE ALSO:
  - settlement/runner.go: Drives these interfaces once per business day
*/
package payout

import (
	"context"
	"time"
)

// =============================================================================
// SCHEDULES
// =============================================================================

// ScheduleStore persists schedule definitions.
type ScheduleStore interface {
	// SaveSchedule inserts or updates a schedule. A zero ID means insert;
	// the assigned ID is returned.
	SaveSchedule(ctx context.Context, restaurantID RestaurantID, s *Schedule) (ScheduleID, error)

	// GetSchedule returns ErrScheduleNotFound for unknown or deleted IDs.
	GetSchedule(ctx context.Context, restaurantID RestaurantID, id ScheduleID) (*Schedule, error)

	// ListSchedules returns all live schedules for a restaurant.
	ListSchedules(ctx context.Context, restaurantID RestaurantID) ([]*Schedule, error)

	// DeleteSchedule removes a schedule from future runs. Historical
	// settlement snapshots are untouched.
	DeleteSchedule(ctx context.Context, restaurantID RestaurantID, id ScheduleID) error
}

// =============================================================================
// ROSTER AND TOTALS - Read-only inputs to the engine
// =============================================================================

// RosterStore supplies the employee roster for a business date.
type RosterStore interface {
	LoadRosterForDate(ctx context.Context, restaurantID RestaurantID, date time.Time) ([]RosterEntry, error)
}

// TotalsStore supplies a day's aggregated sales totals.
type TotalsStore interface {
	LoadDailyTotals(ctx context.Context, restaurantID RestaurantID, date time.Time) (DailyTotals, error)
}

// =============================================================================
// SETTLEMENTS - Append-only run snapshots
// =============================================================================

// SettlementRun is one schedule's computed payout for one business day.
type SettlementRun struct {
	ID           string
	RestaurantID RestaurantID
	ScheduleID   ScheduleID
	ScheduleName string
	BusinessDate time.Time
	Rule         RuleType

	GrossPool    Money
	Distributed  Money
	Deductions   []DeductionLineItem
	LineItems    []PayoutLineItem

	CreatedAt time.Time
}

// SettlementStore persists run snapshots. Append-only: no update, no
// delete. One run per (schedule, business date).
type SettlementStore interface {
	// SaveRun persists a run. Returns ErrRunExists if a run for the same
	// schedule and business date is already stored.
	SaveRun(ctx context.Context, run SettlementRun) error

	// RunExists reports whether a run is already stored for the pair.
	RunExists(ctx context.Context, scheduleID ScheduleID, date time.Time) (bool, error)

	// ListRuns returns all runs for a restaurant and business date.
	ListRuns(ctx context.Context, restaurantID RestaurantID, date time.Time) ([]SettlementRun, error)
}
