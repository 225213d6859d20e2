/*
schedule.go - Payout schedule definition

PURPOSE:
  Defines the persisted shape of a payout schedule: when it is active
  (day-of-week and time-of-day window), what fraction of the day's tips
  and gratuity it governs (trigger), who participates (contributor and
  receiver job titles), which deductions come off the top, and which
  rule variant splits the remainder.

KEY CONCEPTS:
  - Schedule: The complete named rule set
  - Trigger: Percent-of-gratuity / percent-of-tips subject to the schedule
  - Participant: A (job title, role) pair; role is an explicit two-value
    enum, never a nullable numeric flag
  - PrePayoutEntry: An ordered fixed or percentage deduction
  - CustomConfig: Individual/group contribution weights for RuleCustom

LIFECYCLE:
  Schedules are created and edited through the management API, gated by
  validate.go. Settlement runs snapshot the schedule they computed with,
  so deleting a schedule never rewrites a historical payout.

SEE ALSO:
  - trigger.go: Active-window matching
  - validate.go: The pre-save gate
  - rules.go: Rule variant semantics
*/
package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE VARIANTS
// =============================================================================

// RuleType selects how the distributable pool is split.
type RuleType string

const (
	// RuleCustom splits by per-title percentages blended with the
	// individual/group contribution weights in CustomConfig.
	RuleCustom RuleType = "custom"

	// RuleEqual splits the pool evenly across all eligible employees.
	RuleEqual RuleType = "equal"

	// RuleHourBased splits proportionally to hours worked.
	RuleHourBased RuleType = "hour_based"

	// RuleJobWeighted splits per-title pools by percentage, then evenly
	// within each title.
	RuleJobWeighted RuleType = "job_weighted"
)

// Valid reports whether rt is one of the four known variants.
func (rt RuleType) Valid() bool {
	switch rt {
	case RuleCustom, RuleEqual, RuleHourBased, RuleJobWeighted:
		return true
	}
	return false
}

// RequiresPercentages reports whether the variant needs a user-supplied
// percentage map that must reconcile to 100%.
func (rt RuleType) RequiresPercentages() bool {
	return rt == RuleCustom || rt == RuleJobWeighted
}

// =============================================================================
// PARTICIPANTS - Contributor / receiver job titles
// =============================================================================

// Role distinguishes where a job title sits in the money flow.
// The source system encoded this as 0/1/null; null ambiguously meant
// receiver. Here the role is always explicit.
type Role string

const (
	RoleContributor Role = "contributor" // source of the pool (e.g. sales)
	RoleReceiver    Role = "receiver"    // destination of the payout
)

func (r Role) Valid() bool { return r == RoleContributor || r == RoleReceiver }

// Participant binds a job title to a role within one schedule.
// A title may appear in at most one role per schedule.
type Participant struct {
	JobTitle string
	Role     Role
}

// =============================================================================
// TRIGGER - Fraction of gross amounts subject to the schedule
// =============================================================================

// Trigger holds the percent-of-gratuity and percent-of-tips this schedule
// governs. A nil percentage means that source feeds nothing into the pool.
type Trigger struct {
	GratuityPercent *Percent
	TipsPercent     *Percent
}

// Pool computes the gross pool a schedule governs for one day's totals,
// rounding each component half-up to the cent before summing.
func (t Trigger) Pool(totals DailyTotals) Money {
	pool := ZeroMoney()
	if t.GratuityPercent != nil {
		pool = pool.Add(totals.GrossGratuity.Percent(*t.GratuityPercent))
	}
	if t.TipsPercent != nil {
		pool = pool.Add(totals.GrossTips.Percent(*t.TipsPercent))
	}
	return pool
}

// =============================================================================
// PRE-PAYOUT - Ordered deductions taken before the split
// =============================================================================

// PrePayoutEntry is one ordered deduction against the running pool.
// Percentage entries carry a 0-100 value; fixed entries carry a currency
// amount. Account is a job title or a free-form custom account name.
type PrePayoutEntry struct {
	Kind    DeductionKind
	Value   decimal.Decimal
	Account string
}

// =============================================================================
// CUSTOM CONFIG - Secondary weighting for RuleCustom
// =============================================================================

// CustomConfig carries the two blend weights for the custom rule.
// Both default to zero; when both are zero the custom rule degrades to
// plain job-weighted behavior. See rules.go for the blend formula.
type CustomConfig struct {
	IndividualContribution Percent
	GroupContribution      Percent
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule is a named, time/day-scoped rule set governing how a
// tip/gratuity pool is split.
//
// Day and time bounds are each optional. When both bounds of a range are
// set the range is inclusive and wraps (Fri..Mon covers the weekend
// rollover; 22:00..02:00 crosses midnight). A single bound leaves the
// other side open. No bounds at all means always active.
type Schedule struct {
	ID   ScheduleID
	Name string

	StartDay *time.Weekday
	EndDay   *time.Weekday

	StartTime *ClockTime
	EndTime   *ClockTime

	Rule    RuleType
	Trigger Trigger

	Participants []Participant

	// Percentages maps participant job titles to their share of the pool.
	// Required (and validated to total 100) for RuleCustom and
	// RuleJobWeighted; unused for RuleEqual and RuleHourBased.
	Percentages map[string]Percent

	PrePayout []PrePayoutEntry

	// Custom is only consulted when Rule == RuleCustom.
	Custom *CustomConfig

	Version int
}

// ParticipantTitles returns the set of job titles named in either role.
func (s *Schedule) ParticipantTitles() map[string]bool {
	if len(s.Participants) == 0 {
		return nil
	}
	titles := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		titles[p.JobTitle] = true
	}
	return titles
}

// EligibleRoster filters a day's roster down to the employees this
// schedule can pay: active employees whose job title is named as a
// contributor or receiver, or every active employee when the schedule
// names no participants.
func (s *Schedule) EligibleRoster(roster []RosterEntry) []RosterEntry {
	titles := s.ParticipantTitles()
	var eligible []RosterEntry
	for _, e := range roster {
		if !e.Active {
			continue
		}
		if titles != nil && !titles[e.JobTitle] {
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible
}
