/*
deduction.go - Pre-payout deduction calculator

PURPOSE:
  Applies a schedule's ordered deductions against a gross pool before
  the main split. Each deduction shrinks the base for the next one:
  a 10% deduction followed by a fixed $20 is not the same as the fixed
  $20 followed by the 10%.

CLAMPING:
  A fixed deduction can never drive the pool negative. When the entry's
  value exceeds what remains, only the remainder is deducted and the
  line item carries PartiallySatisfied=true. This is a recorded outcome,
  not an error: a short pool must not abort the whole payout run.

SEE ALSO:
  - schedule.go: PrePayoutEntry definition
  - validate.go: Rejects blank accounts and negative values at save time
*/
package payout

// ApplyDeductions consumes entries in stored order against pool and
// returns the remaining distributable amount together with one line item
// per entry. Percentage entries are computed against the running
// remainder and rounded half-up to the cent.
func ApplyDeductions(pool Money, entries []PrePayoutEntry) (Money, []DeductionLineItem) {
	remaining := pool
	if remaining.IsNegative() {
		remaining = ZeroMoney()
	}

	items := make([]DeductionLineItem, 0, len(entries))
	for _, e := range entries {
		item := DeductionLineItem{
			Account:     e.Account,
			KindApplied: e.Kind,
		}

		switch e.Kind {
		case DeductionPercentage:
			item.AmountDeducted = remaining.Percent(Percent{Value: e.Value})
		case DeductionFixedAmount:
			requested := Money{Value: e.Value}
			item.AmountDeducted = requested.Min(remaining)
			item.PartiallySatisfied = requested.GreaterThan(remaining)
		default:
			// Unknown kinds are filtered out at validation time; if one
			// slips through a stored record, deduct nothing.
			item.AmountDeducted = ZeroMoney()
		}

		remaining = remaining.Sub(item.AmountDeducted)
		items = append(items, item)
	}

	return remaining, items
}
