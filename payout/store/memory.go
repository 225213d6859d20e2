// Package store provides in-memory implementations of the payout
// persistence interfaces, for tests and local development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tably/gratuity-engine/payout"
)

// =============================================================================
// MEMORY STORE - Implements every payout store interface
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	nextID    payout.ScheduleID
	schedules map[payout.ScheduleID]*scheduleRecord
	roster    map[dayKey][]payout.RosterEntry
	totals    map[dayKey]payout.DailyTotals
	runs      map[runKey]payout.SettlementRun
}

type scheduleRecord struct {
	restaurantID payout.RestaurantID
	schedule     payout.Schedule
	deleted      bool
}

type dayKey struct {
	RestaurantID payout.RestaurantID
	Date         string
}

type runKey struct {
	ScheduleID payout.ScheduleID
	Date       string
}

func NewMemory() *Memory {
	return &Memory{
		nextID:    1,
		schedules: make(map[payout.ScheduleID]*scheduleRecord),
		roster:    make(map[dayKey][]payout.RosterEntry),
		totals:    make(map[dayKey]payout.DailyTotals),
		runs:      make(map[runKey]payout.SettlementRun),
	}
}

func day(t time.Time) string { return t.Format("2006-01-02") }

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (m *Memory) SaveSchedule(_ context.Context, restaurantID payout.RestaurantID, s *payout.Schedule) (payout.ScheduleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == 0 {
		s.ID = m.nextID
		m.nextID++
		s.Version = 1
	} else {
		rec, ok := m.schedules[s.ID]
		if !ok || rec.deleted || rec.restaurantID != restaurantID {
			return 0, payout.ErrScheduleNotFound
		}
		s.Version = rec.schedule.Version + 1
	}

	cp := cloneSchedule(s)
	m.schedules[s.ID] = &scheduleRecord{restaurantID: restaurantID, schedule: cp}
	return s.ID, nil
}

func (m *Memory) GetSchedule(_ context.Context, restaurantID payout.RestaurantID, id payout.ScheduleID) (*payout.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.schedules[id]
	if !ok || rec.deleted || rec.restaurantID != restaurantID {
		return nil, payout.ErrScheduleNotFound
	}
	cp := cloneSchedule(&rec.schedule)
	return &cp, nil
}

func (m *Memory) ListSchedules(_ context.Context, restaurantID payout.RestaurantID) ([]*payout.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*payout.Schedule
	for _, rec := range m.schedules {
		if rec.deleted || rec.restaurantID != restaurantID {
			continue
		}
		cp := cloneSchedule(&rec.schedule)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteSchedule(_ context.Context, restaurantID payout.RestaurantID, id payout.ScheduleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.schedules[id]
	if !ok || rec.deleted || rec.restaurantID != restaurantID {
		return payout.ErrScheduleNotFound
	}
	// Soft delete: stored settlement snapshots keep referencing the run's
	// own copy of the schedule, so nothing historical changes here.
	rec.deleted = true
	return nil
}

// =============================================================================
// ROSTER AND TOTALS
// =============================================================================

// SetRoster seeds the roster for a business date.
func (m *Memory) SetRoster(restaurantID payout.RestaurantID, date time.Time, entries []payout.RosterEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster[dayKey{restaurantID, day(date)}] = append([]payout.RosterEntry(nil), entries...)
}

func (m *Memory) LoadRosterForDate(_ context.Context, restaurantID payout.RestaurantID, date time.Time) ([]payout.RosterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.roster[dayKey{restaurantID, day(date)}]
	return append([]payout.RosterEntry(nil), entries...), nil
}

// SetDailyTotals seeds the gross totals for a business date.
func (m *Memory) SetDailyTotals(restaurantID payout.RestaurantID, date time.Time, totals payout.DailyTotals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[dayKey{restaurantID, day(date)}] = totals
}

func (m *Memory) LoadDailyTotals(_ context.Context, restaurantID payout.RestaurantID, date time.Time) (payout.DailyTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals[dayKey{restaurantID, day(date)}], nil
}

// =============================================================================
// SETTLEMENT STORE - Append-only
// =============================================================================

func (m *Memory) SaveRun(_ context.Context, run payout.SettlementRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := runKey{run.ScheduleID, day(run.BusinessDate)}
	if _, exists := m.runs[k]; exists {
		return fmt.Errorf("schedule %d on %s: %w", run.ScheduleID, k.Date, payout.ErrRunExists)
	}
	m.runs[k] = run
	return nil
}

func (m *Memory) RunExists(_ context.Context, scheduleID payout.ScheduleID, date time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.runs[runKey{scheduleID, day(date)}]
	return exists, nil
}

func (m *Memory) ListRuns(_ context.Context, restaurantID payout.RestaurantID, date time.Time) ([]payout.SettlementRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payout.SettlementRun
	for k, run := range m.runs {
		if run.RestaurantID == restaurantID && k.Date == day(date) {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleID < out[j].ScheduleID })
	return out, nil
}

// cloneSchedule deep-copies the mutable parts so callers can't alias
// stored state.
func cloneSchedule(s *payout.Schedule) payout.Schedule {
	cp := *s
	cp.Participants = append([]payout.Participant(nil), s.Participants...)
	cp.PrePayout = append([]payout.PrePayoutEntry(nil), s.PrePayout...)
	if s.Percentages != nil {
		cp.Percentages = make(map[string]payout.Percent, len(s.Percentages))
		for k, v := range s.Percentages {
			cp.Percentages[k] = v
		}
	}
	if s.Custom != nil {
		c := *s.Custom
		cp.Custom = &c
	}
	if s.StartDay != nil {
		d := *s.StartDay
		cp.StartDay = &d
	}
	if s.EndDay != nil {
		d := *s.EndDay
		cp.EndDay = &d
	}
	if s.StartTime != nil {
		t := *s.StartTime
		cp.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		cp.EndTime = &t
	}
	return cp
}
