/*
validate.go - Pre-save validation gate for schedules

PURPOSE:
  Everything that blocks a schedule from being created or edited lives
  here. Validation runs synchronously at save time, before any
  computation; the rule engine itself never raises validation errors.

THE PERCENTAGE GATE:
  For RuleCustom and RuleJobWeighted the percentages across all
  contributor and receiver titles combined must total 100 (within
  ±0.01). A schedule that totals 97.50 is rejected with that number in
  the message, never silently clamped. RuleEqual and RuleHourBased skip
  the gate: their splits are not user-supplied.

SEE ALSO:
  - errors.go: ValidationError / ValidationErrors
  - factory/schedule.go: Parses raw JSON and calls this gate
*/
package payout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// allocationTolerance is how far from 100 a percentage total may drift
// before the schedule is rejected.
var allocationTolerance = decimal.RequireFromString("0.01")

// =============================================================================
// PERCENTAGE ALLOCATION VALIDATOR
// =============================================================================

// AllocationResult is the outcome of reconciling a percentage map.
type AllocationResult struct {
	OK    bool
	Total decimal.Decimal
	Err   *ValidationError
}

// ValidateAllocations sums the percentage map and checks it reconciles to
// 100 within tolerance. Missing or zero entries count as 0.
func ValidateAllocations(targets map[string]Percent) AllocationResult {
	total := decimal.Zero
	for _, p := range targets {
		total = total.Add(p.Value)
	}

	if total.Sub(hundred).Abs().GreaterThan(allocationTolerance) {
		return AllocationResult{
			Total: total,
			Err: &ValidationError{
				Field:      "percentages",
				Constraint: fmt.Sprintf("percentages total %s%%, expected 100%%", total.StringFixed(2)),
			},
		}
	}
	return AllocationResult{OK: true, Total: total}
}

// =============================================================================
// FULL SCHEDULE VALIDATION
// =============================================================================

// Validate checks every pre-save constraint on the schedule. It returns
// nil when the schedule may be saved, otherwise a ValidationErrors
// carrying each violated constraint.
func (s *Schedule) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Constraint: "must not be blank"})
	}

	if !s.Rule.Valid() {
		errs = append(errs, &ValidationError{
			Field:      "rule",
			Constraint: fmt.Sprintf("unknown payout rule %q", string(s.Rule)),
		})
	}

	errs = append(errs, s.validateTrigger()...)
	errs = append(errs, s.validateParticipants()...)
	errs = append(errs, s.validatePrePayout()...)

	// The percentage gate only applies when the rule needs explicit
	// percentages and at least one participant is selected.
	if s.Rule.RequiresPercentages() && len(s.Participants) > 0 {
		if r := ValidateAllocations(s.Percentages); !r.OK {
			errs = append(errs, r.Err)
		}
	}

	if s.Custom != nil {
		if !s.Custom.IndividualContribution.InRange() {
			errs = append(errs, &ValidationError{Field: "custom.individual_contribution", Constraint: "must be between 0 and 100"})
		}
		if !s.Custom.GroupContribution.InRange() {
			errs = append(errs, &ValidationError{Field: "custom.group_contribution", Constraint: "must be between 0 and 100"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Schedule) validateTrigger() ValidationErrors {
	var errs ValidationErrors
	if p := s.Trigger.GratuityPercent; p != nil && !p.InRange() {
		errs = append(errs, &ValidationError{Field: "trigger.gratuity_percent", Constraint: "must be between 0 and 100"})
	}
	if p := s.Trigger.TipsPercent; p != nil && !p.InRange() {
		errs = append(errs, &ValidationError{Field: "trigger.tips_percent", Constraint: "must be between 0 and 100"})
	}
	return errs
}

func (s *Schedule) validateParticipants() ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]Role, len(s.Participants))
	for _, p := range s.Participants {
		if strings.TrimSpace(p.JobTitle) == "" {
			errs = append(errs, &ValidationError{Field: "participants", Constraint: "job title must not be blank"})
			continue
		}
		if !p.Role.Valid() {
			errs = append(errs, &ValidationError{
				Field:      "participants",
				Constraint: fmt.Sprintf("%q: role must be contributor or receiver", p.JobTitle),
			})
			continue
		}
		if prev, ok := seen[p.JobTitle]; ok {
			constraint := fmt.Sprintf("%q appears more than once", p.JobTitle)
			if prev != p.Role {
				constraint = fmt.Sprintf("%q cannot be both contributor and receiver", p.JobTitle)
			}
			errs = append(errs, &ValidationError{Field: "participants", Constraint: constraint})
			continue
		}
		seen[p.JobTitle] = p.Role
	}
	return errs
}

func (s *Schedule) validatePrePayout() ValidationErrors {
	var errs ValidationErrors
	for i, e := range s.PrePayout {
		field := fmt.Sprintf("pre_payout[%d]", i)
		if strings.TrimSpace(e.Account) == "" {
			errs = append(errs, &ValidationError{Field: field, Constraint: "account must not be blank"})
		}
		if e.Value.IsNegative() {
			errs = append(errs, &ValidationError{Field: field, Constraint: "value must not be negative"})
		}
		switch e.Kind {
		case DeductionPercentage:
			if e.Value.GreaterThan(hundred) {
				errs = append(errs, &ValidationError{Field: field, Constraint: "percentage must not exceed 100"})
			}
		case DeductionFixedAmount:
			if e.Value.Exponent() < -2 {
				errs = append(errs, &ValidationError{Field: field, Constraint: "amount must have at most 2 decimal places"})
			}
		default:
			errs = append(errs, &ValidationError{
				Field:      field,
				Constraint: fmt.Sprintf("unknown deduction kind %q", string(e.Kind)),
			})
		}
	}
	return errs
}
