package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/gratuity-engine/payout"
	"github.com/tably/gratuity-engine/store/sqlite"
)

const restaurant = payout.RestaurantID("tably-sf")

// 2025-06-07 is a Saturday.
var saturday = time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func weekday(d time.Weekday) *time.Weekday { return &d }

func sampleSchedule() *payout.Schedule {
	full := payout.MustPercent("100")
	return &payout.Schedule{
		Name:     "Dinner pool",
		StartDay: weekday(time.Friday),
		EndDay:   weekday(time.Sunday),
		Rule:     payout.RuleJobWeighted,
		Trigger:  payout.Trigger{GratuityPercent: &full},
		Participants: []payout.Participant{
			{JobTitle: "server", Role: payout.RoleReceiver},
			{JobTitle: "host", Role: payout.RoleReceiver},
		},
		Percentages: map[string]payout.Percent{
			"server": payout.MustPercent("70"),
			"host":   payout.MustPercent("30"),
		},
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// GIVEN a schedule saved with a zero ID
	id, err := s.SaveSchedule(ctx, restaurant, sampleSchedule())
	require.NoError(t, err)
	require.NotZero(t, id)

	// WHEN loading it back
	got, err := s.GetSchedule(ctx, restaurant, id)
	require.NoError(t, err)

	// THEN the definition survives the JSON round trip
	assert.Equal(t, "Dinner pool", got.Name)
	assert.Equal(t, payout.RuleJobWeighted, got.Rule)
	assert.Equal(t, 1, got.Version)
	require.NotNil(t, got.StartDay)
	assert.Equal(t, time.Friday, *got.StartDay)
	assert.True(t, got.Percentages["server"].Value.Equal(decimal.NewFromInt(70)))
	assert.Len(t, got.Participants, 2)
}

func TestScheduleUpdateBumpsVersion(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	sched := sampleSchedule()
	id, err := s.SaveSchedule(ctx, restaurant, sched)
	require.NoError(t, err)

	sched.Name = "Dinner pool v2"
	_, err = s.SaveSchedule(ctx, restaurant, sched)
	require.NoError(t, err)

	got, err := s.GetSchedule(ctx, restaurant, id)
	require.NoError(t, err)
	assert.Equal(t, "Dinner pool v2", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestDeleteScheduleIsSoft(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.SaveSchedule(ctx, restaurant, sampleSchedule())
	require.NoError(t, err)

	require.NoError(t, s.DeleteSchedule(ctx, restaurant, id))

	// Deleted schedules are invisible to reads...
	_, err = s.GetSchedule(ctx, restaurant, id)
	assert.ErrorIs(t, err, payout.ErrScheduleNotFound)

	list, err := s.ListSchedules(ctx, restaurant)
	require.NoError(t, err)
	assert.Empty(t, list)

	// ...and deleting twice reports not found.
	assert.ErrorIs(t, s.DeleteSchedule(ctx, restaurant, id), payout.ErrScheduleNotFound)
}

func TestScheduleIsolatedPerRestaurant(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.SaveSchedule(ctx, restaurant, sampleSchedule())
	require.NoError(t, err)

	_, err = s.GetSchedule(ctx, "other-restaurant", id)
	assert.ErrorIs(t, err, payout.ErrScheduleNotFound)
}

func TestRosterJoinsEmployeesAndHours(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, sqlite.Employee{
		ID: "E1", RestaurantID: string(restaurant), Name: "Ana", JobTitle: "server", Active: true,
	}))
	require.NoError(t, s.SaveEmployee(ctx, sqlite.Employee{
		ID: "E2", RestaurantID: string(restaurant), Name: "Ben", JobTitle: "host", Active: false,
	}))
	require.NoError(t, s.SetHours(ctx, "E1", saturday, decimal.RequireFromString("7.5")))

	roster, err := s.LoadRosterForDate(ctx, restaurant, saturday)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	assert.Equal(t, payout.EmployeeID("E1"), roster[0].EmployeeID)
	assert.True(t, roster[0].Active)
	assert.True(t, roster[0].HoursWorked.Equal(decimal.RequireFromString("7.5")))

	// No shift recorded for E2: hours default to zero.
	assert.False(t, roster[1].Active)
	assert.True(t, roster[1].HoursWorked.IsZero())
}

func TestSetHoursUnknownEmployee(t *testing.T) {
	s := newStore(t)
	err := s.SetHours(context.Background(), "ghost", saturday, decimal.NewFromInt(8))
	assert.ErrorIs(t, err, payout.ErrEmployeeNotFound)
}

func TestDailyTotalsDefaultToZero(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	totals, err := s.LoadDailyTotals(ctx, restaurant, saturday)
	require.NoError(t, err)
	assert.True(t, totals.GrossTips.IsZero())
	assert.True(t, totals.GrossGratuity.IsZero())

	want := payout.DailyTotals{
		GrossTips:     payout.MustMoney("150.00"),
		GrossGratuity: payout.MustMoney("60.00"),
	}
	require.NoError(t, s.SaveDailyTotals(ctx, restaurant, saturday, want))

	totals, err = s.LoadDailyTotals(ctx, restaurant, saturday)
	require.NoError(t, err)
	assert.Equal(t, "150.00", totals.GrossTips.String())
	assert.Equal(t, "60.00", totals.GrossGratuity.String())
}

func TestSaveRunRejectsDuplicateDay(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.SaveSchedule(ctx, restaurant, sampleSchedule())
	require.NoError(t, err)

	run := payout.SettlementRun{
		ID:           uuid.NewString(),
		RestaurantID: restaurant,
		ScheduleID:   id,
		ScheduleName: "Dinner pool",
		BusinessDate: saturday,
		Rule:         payout.RuleJobWeighted,
		GrossPool:    payout.MustMoney("135.00"),
		Distributed:  payout.MustMoney("100.00"),
		Deductions: []payout.DeductionLineItem{
			{Account: "kitchen_fund", KindApplied: payout.DeductionFixedAmount, AmountDeducted: payout.MustMoney("35.00")},
		},
		LineItems: []payout.PayoutLineItem{
			{EmployeeID: "E1", JobTitle: "server", Amount: payout.MustMoney("70.00")},
			{EmployeeID: "E3", JobTitle: "host", Amount: payout.MustMoney("30.00")},
		},
	}
	require.NoError(t, s.SaveRun(ctx, run))

	exists, err := s.RunExists(ctx, id, saturday)
	require.NoError(t, err)
	assert.True(t, exists)

	dup := run
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.SaveRun(ctx, dup), payout.ErrRunExists)

	// Same schedule, different day is fine.
	next := run
	next.ID = uuid.NewString()
	next.BusinessDate = saturday.AddDate(0, 0, 1)
	assert.NoError(t, s.SaveRun(ctx, next))
}

func TestListRunsRestoresLines(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.SaveSchedule(ctx, restaurant, sampleSchedule())
	require.NoError(t, err)

	run := payout.SettlementRun{
		ID:           uuid.NewString(),
		RestaurantID: restaurant,
		ScheduleID:   id,
		ScheduleName: "Dinner pool",
		BusinessDate: saturday,
		Rule:         payout.RuleJobWeighted,
		GrossPool:    payout.MustMoney("135.00"),
		Distributed:  payout.MustMoney("100.00"),
		Deductions: []payout.DeductionLineItem{
			{Account: "kitchen_fund", KindApplied: payout.DeductionPercentage, AmountDeducted: payout.MustMoney("13.50")},
			{Account: "cc_fees", KindApplied: payout.DeductionFixedAmount, AmountDeducted: payout.MustMoney("21.50"), PartiallySatisfied: true},
		},
		LineItems: []payout.PayoutLineItem{
			{EmployeeID: "E1", JobTitle: "server", Amount: payout.MustMoney("70.00")},
			{EmployeeID: "E3", JobTitle: "host", Amount: payout.MustMoney("30.00")},
		},
	}
	require.NoError(t, s.SaveRun(ctx, run))

	// Deleting the schedule must not touch the stored run.
	require.NoError(t, s.DeleteSchedule(ctx, restaurant, id))

	runs, err := s.ListRuns(ctx, restaurant, saturday)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "135.00", got.GrossPool.String())
	assert.Equal(t, "100.00", got.Distributed.String())
	assert.Equal(t, saturday.Format("2006-01-02"), got.BusinessDate.Format("2006-01-02"))

	// Deductions come back in applied order with flags intact.
	require.Len(t, got.Deductions, 2)
	assert.Equal(t, "kitchen_fund", got.Deductions[0].Account)
	assert.False(t, got.Deductions[0].PartiallySatisfied)
	assert.Equal(t, "cc_fees", got.Deductions[1].Account)
	assert.True(t, got.Deductions[1].PartiallySatisfied)

	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "70.00", got.LineItems[0].Amount.String())
}

func TestAccountsUniquePerRestaurant(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, sqlite.Account{
		ID: uuid.NewString(), RestaurantID: string(restaurant), Name: "kitchen_fund",
	}))
	// Second save of the same name is a no-op.
	require.NoError(t, s.SaveAccount(ctx, sqlite.Account{
		ID: uuid.NewString(), RestaurantID: string(restaurant), Name: "kitchen_fund",
	}))
	require.NoError(t, s.SaveAccount(ctx, sqlite.Account{
		ID: uuid.NewString(), RestaurantID: string(restaurant), Name: "cc_fees",
	}))

	accounts, err := s.ListAccounts(ctx, restaurant)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "cc_fees", accounts[0].Name)
	assert.Equal(t, "kitchen_fund", accounts[1].Name)
}
