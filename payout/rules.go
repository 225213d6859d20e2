/*
rules.go - The payout rule engine

PURPOSE:
  Turns a distributable pool plus a roster of eligible employees into
  per-employee payout line items. Four variants, one pure switch; the
  rule is fixed per schedule and there are no transitions.

RECONCILIATION INVARIANT:
  Whenever line items are produced, their amounts sum to the pool
  exactly, to the minor currency unit. Shares are floored to the cent
  and the leftover cents are handed out one at a time:
  - RuleEqual: to the first employees in ascending-ID order
  - everything else: to the largest fractional remainders first
    (ties broken by ascending employee ID)

DEGENERATE INPUTS:
  Zero or negative pool, or an empty eligible roster, yield an empty
  line-item list and no error. An employee whose job title is missing
  from the percentage map under RuleJobWeighted/RuleCustom is skipped
  and reported as a configuration gap; the run continues.

CUSTOM BLEND FORMULA:
  The custom rule blends the per-title percentages with the schedule's
  individual/group contribution weights. For an employee e with title t
  staffed by n(t) eligible employees:

      w(e) = pct[t] * (individual/100)  +  pct[t] * (group/100) / n(t)

  The individual component weighs each person separately (headcount
  amplifies the title's share); the group component is a per-title pool
  split evenly within the title (headcount does not amplify it). When
  both contributions are zero the rule degrades to RuleJobWeighted.
  Shares are pool * w(e) / sum(w).

SEE ALSO:
  - deduction.go: Shrinks the pool before Compute runs
  - validate.go: Guarantees percentage maps reconcile before save
*/
package payout

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE CONTRACT
// =============================================================================

// ComputeInput carries everything one rule dispatch needs. Roster should
// already be scoped to the schedule's participants (Schedule.EligibleRoster);
// inactive entries are dropped here regardless.
type ComputeInput struct {
	Rule        RuleType
	Pool        Money
	Roster      []RosterEntry
	Percentages map[string]Percent
	Custom      *CustomConfig
}

// ConfigGap reports an employee the rule could not place: present on the
// roster but absent from the percentage map. Gaps are logged by the
// caller, never raised as errors.
type ConfigGap struct {
	EmployeeID EmployeeID
	JobTitle   string
	Reason     string
}

// ComputeResult is the engine's output for one schedule run.
type ComputeResult struct {
	LineItems []PayoutLineItem
	Gaps      []ConfigGap
}

// Total sums the line-item amounts. Equals the input pool whenever
// LineItems is non-empty.
func (r ComputeResult) Total() Money {
	total := ZeroMoney()
	for _, li := range r.LineItems {
		total = total.Add(li.Amount)
	}
	return total
}

// RuleEngine dispatches over the rule variants. Stateless and safe for
// concurrent use.
type RuleEngine struct{}

// ComputeSchedule applies the schedule's eligibility filter and then
// dispatches its rule against the day's roster.
func (re RuleEngine) ComputeSchedule(s *Schedule, pool Money, roster []RosterEntry) ComputeResult {
	return re.Compute(ComputeInput{
		Rule:        s.Rule,
		Pool:        pool,
		Roster:      s.EligibleRoster(roster),
		Percentages: s.Percentages,
		Custom:      s.Custom,
	})
}

// Compute splits the pool according to the rule variant.
func (re RuleEngine) Compute(in ComputeInput) ComputeResult {
	if !in.Pool.IsPositive() {
		return ComputeResult{}
	}

	eligible := activeSortedRoster(in.Roster)
	if len(eligible) == 0 {
		return ComputeResult{}
	}

	switch in.Rule {
	case RuleEqual:
		return computeEqual(in.Pool, eligible)
	case RuleHourBased:
		return computeHourBased(in.Pool, eligible)
	case RuleJobWeighted:
		return computeWeighted(in.Pool, eligible, in.Percentages, nil)
	case RuleCustom:
		return computeWeighted(in.Pool, eligible, in.Percentages, in.Custom)
	default:
		return ComputeResult{}
	}
}

// activeSortedRoster drops inactive entries and fixes the deterministic
// order every variant relies on: ascending employee ID.
func activeSortedRoster(roster []RosterEntry) []RosterEntry {
	eligible := make([]RosterEntry, 0, len(roster))
	for _, e := range roster {
		if e.Active {
			eligible = append(eligible, e)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].EmployeeID < eligible[j].EmployeeID
	})
	return eligible
}

// =============================================================================
// EQUAL - pool / N with cent remainder to the first employees
// =============================================================================

func computeEqual(pool Money, eligible []RosterEntry) ComputeResult {
	n := int64(len(eligible))
	totalCents := pool.Cents()
	base := totalCents / n
	remainder := totalCents % n

	items := make([]PayoutLineItem, len(eligible))
	for i, e := range eligible {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		items[i] = PayoutLineItem{EmployeeID: e.EmployeeID, JobTitle: e.JobTitle, Amount: MoneyFromCents(cents)}
	}
	return ComputeResult{LineItems: items}
}

// =============================================================================
// HOUR-BASED - pool * hours / sum(hours), largest-remainder reconciliation
// =============================================================================

func computeHourBased(pool Money, eligible []RosterEntry) ComputeResult {
	weights := make([]decimal.Decimal, len(eligible))
	sum := decimal.Zero
	for i, e := range eligible {
		w := e.HoursWorked
		if w.IsNegative() {
			w = decimal.Zero
		}
		weights[i] = w
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		// Nobody worked any hours; there is no basis to split on.
		return ComputeResult{}
	}

	cents := allocateByWeight(pool, weights)
	items := make([]PayoutLineItem, len(eligible))
	for i, e := range eligible {
		items[i] = PayoutLineItem{EmployeeID: e.EmployeeID, JobTitle: e.JobTitle, Amount: MoneyFromCents(cents[i])}
	}
	return ComputeResult{LineItems: items}
}

// =============================================================================
// JOB-WEIGHTED / CUSTOM - per-title percentages, split within title
// =============================================================================

// computeWeighted handles both percentage-driven variants. A title's
// percentage buys a per-title pool that is split evenly among the
// employees holding that title; with a CustomConfig the per-employee
// weight is blended per the formula in the file header.
func computeWeighted(pool Money, eligible []RosterEntry, percentages map[string]Percent, custom *CustomConfig) ComputeResult {
	var gaps []ConfigGap
	var placed []RosterEntry
	titleCount := make(map[string]int64)

	for _, e := range eligible {
		if _, ok := percentages[e.JobTitle]; !ok {
			gaps = append(gaps, ConfigGap{
				EmployeeID: e.EmployeeID,
				JobTitle:   e.JobTitle,
				Reason:     "job title has no percentage allocation",
			})
			continue
		}
		placed = append(placed, e)
		titleCount[e.JobTitle]++
	}
	if len(placed) == 0 {
		return ComputeResult{Gaps: gaps}
	}

	blendIndividual := decimal.Zero
	blendGroup := hundred
	if custom != nil && !(custom.IndividualContribution.IsZero() && custom.GroupContribution.IsZero()) {
		blendIndividual = custom.IndividualContribution.Value
		blendGroup = custom.GroupContribution.Value
	}

	weights := make([]decimal.Decimal, len(placed))
	sum := decimal.Zero
	for i, e := range placed {
		pct := percentages[e.JobTitle].Value
		n := decimal.NewFromInt(titleCount[e.JobTitle])
		// Individual component counts each person; group component is a
		// per-title pool divided across its headcount. With the default
		// blend (individual=0, group=100) this collapses to pct/n, which
		// is exactly the job-weighted split.
		w := pct.Mul(blendIndividual).Div(hundred).
			Add(pct.Mul(blendGroup).Div(hundred).Div(n))
		weights[i] = w
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		return ComputeResult{Gaps: gaps}
	}

	cents := allocateByWeight(pool, weights)
	items := make([]PayoutLineItem, len(placed))
	for i, e := range placed {
		items[i] = PayoutLineItem{EmployeeID: e.EmployeeID, JobTitle: e.JobTitle, Amount: MoneyFromCents(cents[i])}
	}
	return ComputeResult{LineItems: items, Gaps: gaps}
}

// =============================================================================
// LARGEST-REMAINDER ALLOCATION
// =============================================================================

// allocateByWeight distributes pool across entries proportionally to
// weights, in integer cents. Each share is floored to the cent; leftover
// cents go to the largest fractional remainders first, ties broken by
// slice order (callers pass rosters sorted by employee ID). The returned
// cents always sum to the pool exactly.
func allocateByWeight(pool Money, weights []decimal.Decimal) []int64 {
	totalCents := pool.Cents()
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}

	cents := make([]int64, len(weights))
	fracs := make([]decimal.Decimal, len(weights))
	assigned := int64(0)
	for i, w := range weights {
		exact := pool.Value.Mul(w).Div(sum)
		floor := exact.RoundDown(2)
		cents[i] = floor.Mul(hundred).IntPart()
		fracs[i] = exact.Sub(floor)
		assigned += cents[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fracs[order[a]].GreaterThan(fracs[order[b]])
	})

	// Hand out the missing cents largest-remainder first. The reverse
	// direction covers division-precision overshoot, which can assign a
	// cent too many in rare weight distributions.
	for k := 0; assigned < totalCents; k = (k + 1) % len(order) {
		cents[order[k]]++
		assigned++
	}
	for k := len(order) - 1; assigned > totalCents; k = (k - 1 + len(order)) % len(order) {
		if cents[order[k]] > 0 {
			cents[order[k]]--
			assigned--
		}
	}

	return cents
}
