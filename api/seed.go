/*
seed.go - Demo data seeding

PURPOSE:
  Populates a fresh database with a realistic restaurant so the API is
  explorable immediately: a roster across job titles, deduction
  accounts, and the stock schedules from the factory presets.

USAGE:
  Enabled with --seed on the server binary. Safe to run twice,
  employee and account writes are upserts and schedules are only
  created when the restaurant has none.

SEE ALSO:
  - factory/presets.go: Schedule definitions seeded here
*/
package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tably/gratuity-engine/factory"
	"github.com/tably/gratuity-engine/payout"
	"github.com/tably/gratuity-engine/store/sqlite"
)

// SeedDemo loads the demo restaurant into the store.
func SeedDemo(ctx context.Context, store *sqlite.Store, restaurantID payout.RestaurantID) error {
	rid := string(restaurantID)

	employees := []sqlite.Employee{
		{ID: "emp-ana", RestaurantID: rid, Name: "Ana Reyes", JobTitle: "server", Active: true},
		{ID: "emp-ben", RestaurantID: rid, Name: "Ben Okafor", JobTitle: "server", Active: true},
		{ID: "emp-caro", RestaurantID: rid, Name: "Caro Lindt", JobTitle: "bartender", Active: true},
		{ID: "emp-dev", RestaurantID: rid, Name: "Dev Sharma", JobTitle: "host", Active: true},
		{ID: "emp-eli", RestaurantID: rid, Name: "Eli Navarro", JobTitle: "busser", Active: true},
		{ID: "emp-fay", RestaurantID: rid, Name: "Fay Chen", JobTitle: "server", Active: false},
	}
	for _, emp := range employees {
		if err := store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("seed employee %s: %w", emp.ID, err)
		}
	}

	for _, name := range []string{"kitchen_fund", "cc_fees", "house"} {
		acct := sqlite.Account{ID: uuid.NewString(), RestaurantID: rid, Name: name}
		if err := store.SaveAccount(ctx, acct); err != nil {
			return fmt.Errorf("seed account %s: %w", name, err)
		}
	}

	existing, err := store.ListSchedules(ctx, restaurantID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	f := factory.NewScheduleFactory()
	presets := []factory.ScheduleJSON{
		factory.EvenTipPool("Lunch even split", "100"),
		factory.HourWeightedTipPool("Dinner hour split", "100", "100"),
		factory.WeekendDinnerPool("Weekend dinner FOH", map[string]string{
			"server":    "55",
			"bartender": "25",
			"host":      "12",
			"busser":    "8",
		}, "10"),
	}
	for _, sj := range presets {
		sched, err := f.FromJSON(sj)
		if err != nil {
			return fmt.Errorf("seed schedule %q: %w", sj.Name, err)
		}
		if _, err := store.SaveSchedule(ctx, restaurantID, sched); err != nil {
			return fmt.Errorf("seed schedule %q: %w", sj.Name, err)
		}
	}
	return nil
}
