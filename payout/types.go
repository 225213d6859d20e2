/*
Package payout provides the core tip/gratuity distribution engine.

PURPOSE:
  This package contains the domain types and algorithms that decide,
  given a payout schedule and one business day's totals, how much each
  eligible employee receives. Everything here is pure computation:
  no I/O, no clocks, no persistence.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A fixed-point currency amount (2 decimal places, never float)
  - Percent: A 0-100 decimal percentage
  - RosterEntry: One employee eligible for a business day
  - PayoutLineItem / DeductionLineItem: The engine's outputs

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all monetary and percentage math
  2. Determinism: The same inputs always yield the same line items
  3. Exactness: Distributed line items always sum to the distributed pool
  4. Purity: Degenerate inputs resolve by policy, never by panic

USAGE:
  pool := payout.MustMoney("200.00")
  engine := payout.RuleEngine{}
  result := engine.Compute(payout.ComputeInput{
      Rule:        payout.RuleEqual,
      Pool:        pool,
      Roster:      roster,
  })

SEE ALSO:
  - schedule.go: Schedule, trigger, and pre-payout definitions
  - rules.go: The four rule variants and remainder reconciliation
  - deduction.go: Pre-payout deduction calculator
  - validate.go: Pre-save validation gate
*/
package payout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount (2 decimal places)
// =============================================================================

// Money is a currency amount with 2-decimal precision. Arithmetic that can
// produce sub-cent values must go through RoundCents or the allocation
// helpers in rules.go; Money itself is always cent-aligned.
type Money struct {
	Value decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NewMoney parses a decimal string like "12.50". Inputs with more than two
// decimal places are rejected rather than silently rounded.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("invalid money amount %q: more than 2 decimal places", s)
	}
	return Money{Value: d}, nil
}

// MustMoney is NewMoney for test fixtures and constants.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromCents builds a Money from integer minor units.
func MoneyFromCents(cents int64) Money {
	return Money{Value: decimal.New(cents, -2)}
}

// RoundCents rounds an arbitrary decimal to a cent-aligned Money using
// round-half-up (half away from zero; identical for non-negative amounts).
func RoundCents(d decimal.Decimal) Money {
	return Money{Value: d.Round(2)}
}

// ZeroMoney is the additive identity.
func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money       { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money       { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money              { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool            { return m.Value.IsZero() }
func (m Money) IsNegative() bool        { return m.Value.IsNegative() }
func (m Money) IsPositive() bool        { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool      { return m.Value.Equal(o.Value) }
func (m Money) LessThan(o Money) bool   { return m.Value.LessThan(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }

// Min returns the smaller of the two amounts.
func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

// Percent applies p (0-100) to the amount and rounds half-up to the cent.
func (m Money) Percent(p Percent) Money {
	return RoundCents(m.Value.Mul(p.Value).Div(hundred))
}

// Cents returns the amount in integer minor units.
// Money values are cent-aligned so this is exact.
func (m Money) Cents() int64 {
	return m.Value.Mul(hundred).IntPart()
}

// String formats with exactly two decimal places, e.g. "3.40".
func (m Money) String() string { return m.Value.StringFixed(2) }

// =============================================================================
// PERCENT - 0-100 decimal percentage (never a 0-1 fraction)
// =============================================================================

type Percent struct {
	Value decimal.Decimal
}

// NewPercent parses a percentage string like "12.5". Non-numeric input is an
// error: the engine never coerces bad input to zero.
func NewPercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return Percent{Value: d}, nil
}

// MustPercent is NewPercent for fixtures.
func MustPercent(s string) Percent {
	p, err := NewPercent(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PercentFromInt builds a Percent from a whole number like 70.
func PercentFromInt(v int) Percent {
	return Percent{Value: decimal.NewFromInt(int64(v))}
}

func (p Percent) IsZero() bool     { return p.Value.IsZero() }
func (p Percent) IsNegative() bool { return p.Value.IsNegative() }

// InRange reports whether the percentage lies in [0, 100].
func (p Percent) InRange() bool {
	return !p.Value.IsNegative() && !p.Value.GreaterThan(hundred)
}

func (p Percent) String() string { return p.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ScheduleID int64
type EmployeeID string
type RestaurantID string

// =============================================================================
// ROSTER - Engine input (read-only, supplied by the repository adapter)
// =============================================================================

// RosterEntry is one employee as the engine sees them for a business day.
type RosterEntry struct {
	EmployeeID  EmployeeID
	JobTitle    string
	HoursWorked decimal.Decimal
	Active      bool
}

// DailyTotals are one business day's aggregated gross amounts.
type DailyTotals struct {
	GrossTips     Money
	GrossGratuity Money
}

// =============================================================================
// LINE ITEMS - Engine output
// =============================================================================

// PayoutLineItem is one employee's computed payout for a schedule run.
type PayoutLineItem struct {
	EmployeeID EmployeeID
	JobTitle   string
	Amount     Money
}

// DeductionKind distinguishes the two pre-payout deduction variants.
type DeductionKind string

const (
	DeductionPercentage  DeductionKind = "percentage"
	DeductionFixedAmount DeductionKind = "fixed_amount"
)

// DeductionLineItem records one applied pre-payout deduction.
// PartiallySatisfied marks a fixed deduction that exceeded the remaining
// pool and was clamped; it is informational, not an error.
type DeductionLineItem struct {
	Account            string
	KindApplied        DeductionKind
	AmountDeducted     Money
	PartiallySatisfied bool
}
