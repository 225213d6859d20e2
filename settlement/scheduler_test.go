package settlement_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/gratuity-engine/payout/store"
	"github.com/tably/gratuity-engine/settlement"
)

func TestSchedulerRunNowSettlesAllRestaurants(t *testing.T) {
	// GIVEN a scheduler over one restaurant with a matching schedule
	mem := store.NewMemory()
	seedDay(t, mem)
	weekendEqualSchedule(t, mem)
	sched := settlement.NewScheduler(newRunner(mem), zerolog.Nop(), restaurant)

	// WHEN triggering an immediate run for Saturday
	sched.RunNow(context.Background(), saturday)

	// THEN the day is settled, and a second trigger changes nothing
	runs, err := mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	sched.RunNow(context.Background(), saturday)
	runs, err = mem.ListRuns(context.Background(), restaurant, saturday)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
