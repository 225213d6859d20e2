/*
trigger.go - Active-window evaluation for schedules

PURPOSE:
  Decides whether a schedule is active for a given business day and
  time of day. Pure predicate, no side effects.

SEMANTICS:
  Day range:   inclusive, wraps across the week boundary. Fri..Mon
               matches Fri, Sat, Sun, Mon.
  Time range:  inclusive, 15-minute granularity, wraps across midnight.
               22:00..02:00 matches 23:15 and 01:45.
  One bound:   the unset side is unrestricted (>= start, or <= end).
  No bounds:   always active.

SEE ALSO:
  - schedule.go: Where the bounds live
*/
package payout

import (
	"fmt"
	"time"
)

// =============================================================================
// CLOCK TIME - Time of day at 15-minute granularity
// =============================================================================

// ClockTime is a time of day expressed as minutes since midnight,
// constrained to 15-minute slots.
type ClockTime struct {
	minutes int
}

// ParseClockTime parses "HH:MM". Minutes must fall on a 15-minute
// boundary (00, 15, 30, 45).
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	if m%15 != 0 {
		return ClockTime{}, fmt.Errorf("invalid time %q: minutes must be a multiple of 15", s)
	}
	return ClockTime{minutes: h*60 + m}, nil
}

// MustClockTime is ParseClockTime for fixtures.
func MustClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

// ClockTimeOf truncates a wall-clock time down to its 15-minute slot.
func ClockTimeOf(t time.Time) ClockTime {
	m := t.Hour()*60 + t.Minute()
	return ClockTime{minutes: m - m%15}
}

func (ct ClockTime) Minutes() int { return ct.minutes }

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.minutes/60, ct.minutes%60)
}

// =============================================================================
// WINDOW MATCHING
// =============================================================================

// Matches reports whether the schedule is active on the given business
// date at the given time of day.
func (s *Schedule) Matches(businessDate time.Time, timeOfDay ClockTime) bool {
	return s.matchesDay(businessDate.Weekday()) && s.matchesTime(timeOfDay)
}

// MatchesDate is Matches for callers that evaluate whole business days,
// such as the nightly settlement run. Only the day window applies; a
// schedule scoped to a time window is considered active for the day if
// it has any day overlap.
func (s *Schedule) MatchesDate(businessDate time.Time) bool {
	return s.matchesDay(businessDate.Weekday())
}

func (s *Schedule) matchesDay(d time.Weekday) bool {
	switch {
	case s.StartDay == nil && s.EndDay == nil:
		return true
	case s.StartDay != nil && s.EndDay == nil:
		return weekdayOnOrAfter(d, *s.StartDay)
	case s.StartDay == nil && s.EndDay != nil:
		return weekdayOnOrAfter(*s.EndDay, d)
	default:
		return inWrappingRange(int(d), int(*s.StartDay), int(*s.EndDay))
	}
}

func (s *Schedule) matchesTime(t ClockTime) bool {
	switch {
	case s.StartTime == nil && s.EndTime == nil:
		return true
	case s.StartTime != nil && s.EndTime == nil:
		return t.minutes >= s.StartTime.minutes
	case s.StartTime == nil && s.EndTime != nil:
		return t.minutes <= s.EndTime.minutes
	default:
		return inWrappingRange(t.minutes, s.StartTime.minutes, s.EndTime.minutes)
	}
}

// inWrappingRange reports whether v lies in the inclusive circular range
// [start, end]. When start > end the range wraps (Fri..Mon, or
// 22:00..02:00).
func inWrappingRange(v, start, end int) bool {
	if start <= end {
		return v >= start && v <= end
	}
	return v >= start || v <= end
}

// weekdayOnOrAfter treats the week as starting Sunday (time.Weekday's
// ordering) for one-sided day bounds.
func weekdayOnOrAfter(d, bound time.Weekday) bool {
	return int(d) >= int(bound)
}
