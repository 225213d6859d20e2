package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/gratuity-engine/payout"
	"github.com/tably/gratuity-engine/payout/store"
	"github.com/tably/gratuity-engine/settlement"
)

const restaurant = payout.RestaurantID("tably-sf")

// 2025-06-07 is a Saturday.
var saturday = time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

func weekday(d time.Weekday) *time.Weekday { return &d }

func seedDay(t *testing.T, mem *store.Memory) {
	t.Helper()
	mem.SetRoster(restaurant, saturday, []payout.RosterEntry{
		{EmployeeID: "E1", JobTitle: "server", HoursWorked: decimal.NewFromInt(8), Active: true},
		{EmployeeID: "E2", JobTitle: "server", HoursWorked: decimal.NewFromInt(8), Active: true},
		{EmployeeID: "E3", JobTitle: "host", HoursWorked: decimal.NewFromInt(6), Active: true},
	})
	mem.SetDailyTotals(restaurant, saturday, payout.DailyTotals{
		GrossTips:     payout.MustMoney("150.00"),
		GrossGratuity: payout.MustMoney("60.00"),
	})
}

// weekendEqualSchedule pools 100% of gratuity plus 50% of tips on
// Fri through Mon, deducts a fixed 35.00 for the kitchen, and splits
// the rest equally.
func weekendEqualSchedule(t *testing.T, mem *store.Memory) payout.ScheduleID {
	t.Helper()
	full := payout.MustPercent("100")
	half := payout.MustPercent("50")
	sched := &payout.Schedule{
		Name:     "Weekend pool",
		StartDay: weekday(time.Friday),
		EndDay:   weekday(time.Monday),
		Rule:     payout.RuleEqual,
		Trigger:  payout.Trigger{GratuityPercent: &full, TipsPercent: &half},
		PrePayout: []payout.PrePayoutEntry{
			{Kind: payout.DeductionFixedAmount, Value: decimal.RequireFromString("35.00"), Account: "kitchen_fund"},
		},
	}
	require.NoError(t, sched.Validate())

	id, err := mem.SaveSchedule(context.Background(), restaurant, sched)
	require.NoError(t, err)
	return id
}

func newRunner(mem *store.Memory) *settlement.Runner {
	return settlement.NewRunner(mem, mem, mem, mem, zerolog.Nop())
}

func TestRunDaySettlesMatchingSchedule(t *testing.T) {
	// GIVEN a weekend schedule, a 3-person roster and the day's totals
	mem := store.NewMemory()
	seedDay(t, mem)
	id := weekendEqualSchedule(t, mem)
	runner := newRunner(mem)

	// WHEN running Saturday's settlement
	summary, err := runner.RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// THEN exactly one run is recorded
	require.Equal(t, 1, summary.Settled())
	require.Equal(t, 0, summary.Failed())

	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ScheduleID)
	assert.Equal(t, payout.RuleEqual, run.Rule)

	// Pool is 60.00 gratuity + 75.00 (half of tips) = 135.00; the fixed
	// kitchen deduction leaves 100.00 to distribute.
	assert.Equal(t, "135.00", run.GrossPool.String())
	assert.Equal(t, "100.00", run.Distributed.String())
	require.Len(t, run.Deductions, 1)
	assert.Equal(t, "35.00", run.Deductions[0].AmountDeducted.String())
	assert.False(t, run.Deductions[0].PartiallySatisfied)

	// 100.00 across three people: the odd cent goes to the lowest ID.
	require.Len(t, run.LineItems, 3)
	total := payout.ZeroMoney()
	for _, li := range run.LineItems {
		total = total.Add(li.Amount)
	}
	assert.Equal(t, "100.00", total.String())
	assert.Equal(t, "33.34", run.LineItems[0].Amount.String())
}

func TestRunDayIsIdempotent(t *testing.T) {
	// GIVEN a day that has already been settled
	mem := store.NewMemory()
	seedDay(t, mem)
	weekendEqualSchedule(t, mem)
	runner := newRunner(mem)

	_, err := runner.RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// WHEN running the same day again
	summary, err := runner.RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// THEN nothing new is written
	assert.Equal(t, 0, summary.Settled())
	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Skipped)
	assert.Equal(t, "already settled", summary.Outcomes[0].SkipReason)

	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunDaySkipsScheduleOutsideDayWindow(t *testing.T) {
	// GIVEN a Tuesday-through-Thursday schedule
	mem := store.NewMemory()
	seedDay(t, mem)
	sched := &payout.Schedule{
		Name:     "Midweek pool",
		StartDay: weekday(time.Tuesday),
		EndDay:   weekday(time.Thursday),
		Rule:     payout.RuleEqual,
	}
	require.NoError(t, sched.Validate())
	_, err := mem.SaveSchedule(context.Background(), restaurant, sched)
	require.NoError(t, err)

	// WHEN settling a Saturday
	summary, err := newRunner(mem).RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// THEN the schedule is skipped and no run exists
	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Skipped)
	assert.Equal(t, "outside schedule day window", summary.Outcomes[0].SkipReason)

	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDeletingScheduleKeepsSettlementHistory(t *testing.T) {
	// GIVEN a settled day
	mem := store.NewMemory()
	seedDay(t, mem)
	id := weekendEqualSchedule(t, mem)
	runner := newRunner(mem)

	_, err := runner.RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// WHEN the schedule is deleted
	require.NoError(t, mem.DeleteSchedule(context.Background(), restaurant, id))

	// THEN the recorded run is still there, and a later day run
	// no longer considers the schedule
	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "100.00", runs[0].Distributed.String())

	sunday := saturday.AddDate(0, 0, 1)
	mem.SetDailyTotals(restaurant, sunday, payout.DailyTotals{
		GrossTips:     payout.MustMoney("80.00"),
		GrossGratuity: payout.MustMoney("20.00"),
	})
	summary, err := runner.RunDay(context.Background(), restaurant, sunday)
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	// GIVEN an unsettled day
	mem := store.NewMemory()
	seedDay(t, mem)
	id := weekendEqualSchedule(t, mem)
	runner := newRunner(mem)

	// WHEN previewing the schedule
	run, gaps, err := runner.Preview(context.Background(), restaurant, id, saturday)
	require.NoError(t, err)
	assert.Empty(t, gaps)
	assert.Equal(t, "100.00", run.Distributed.String())

	// THEN no run has been stored
	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunDayReportsConfigGaps(t *testing.T) {
	// GIVEN a weighted schedule whose percentage map has no entry for
	// the host title
	mem := store.NewMemory()
	seedDay(t, mem)
	full := payout.MustPercent("100")
	sched := &payout.Schedule{
		Name:    "Servers only",
		Rule:    payout.RuleJobWeighted,
		Trigger: payout.Trigger{GratuityPercent: &full},
		Participants: []payout.Participant{
			{JobTitle: "server", Role: payout.RoleReceiver},
			{JobTitle: "host", Role: payout.RoleReceiver},
		},
		Percentages: map[string]payout.Percent{
			"server": payout.MustPercent("100"),
		},
	}
	require.NoError(t, sched.Validate())
	_, err := mem.SaveSchedule(context.Background(), restaurant, sched)
	require.NoError(t, err)

	// WHEN settling the day
	summary, err := newRunner(mem).RunDay(context.Background(), restaurant, saturday)
	require.NoError(t, err)

	// THEN the host shows up as a reported gap, not an error
	require.Len(t, summary.Outcomes, 1)
	outcome := summary.Outcomes[0]
	require.NoError(t, outcome.Err)
	require.Len(t, outcome.Gaps, 1)
	assert.Equal(t, payout.EmployeeID("E3"), outcome.Gaps[0].EmployeeID)
	assert.Equal(t, "host", outcome.Gaps[0].JobTitle)
}
