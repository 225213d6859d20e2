package payout_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/gratuity-engine/payout"
)

func pctEntry(account, value string) payout.PrePayoutEntry {
	return payout.PrePayoutEntry{
		Kind:    payout.DeductionPercentage,
		Value:   decimal.RequireFromString(value),
		Account: account,
	}
}

func fixedEntry(account, value string) payout.PrePayoutEntry {
	return payout.PrePayoutEntry{
		Kind:    payout.DeductionFixedAmount,
		Value:   decimal.RequireFromString(value),
		Account: account,
	}
}

func TestApplyDeductions_OrderDependence(t *testing.T) {
	// GIVEN: pool=100, a 10% deduction and a fixed $20 deduction
	// WHEN:  applied percentage-first vs fixed-first
	// THEN:  the remaining pools differ, proving each deduction shrinks
	//        the base for the next

	pool := payout.MustMoney("100.00")
	pctFirst := []payout.PrePayoutEntry{pctEntry("Kitchen", "10"), fixedEntry("House", "20")}
	fixedFirst := []payout.PrePayoutEntry{fixedEntry("House", "20"), pctEntry("Kitchen", "10")}

	remaining, items := payout.ApplyDeductions(pool, pctFirst)
	require.Len(t, items, 2)
	assert.Equal(t, "10.00", items[0].AmountDeducted.String())
	assert.Equal(t, "20.00", items[1].AmountDeducted.String())
	assert.Equal(t, "70.00", remaining.String())

	remainingRev, itemsRev := payout.ApplyDeductions(pool, fixedFirst)
	require.Len(t, itemsRev, 2)
	assert.Equal(t, "20.00", itemsRev[0].AmountDeducted.String())
	assert.Equal(t, "8.00", itemsRev[1].AmountDeducted.String(), "10 percent of the remaining 80, not of the original 100")
	assert.Equal(t, "72.00", remainingRev.String())

	assert.False(t, remaining.Equal(remainingRev))
}

func TestApplyDeductions_PercentageRoundsHalfUp(t *testing.T) {
	// 12.5% of 10.01 = 1.25125 -> 1.25; 15% of 0.10 = 0.015 -> 0.02
	remaining, items := payout.ApplyDeductions(payout.MustMoney("10.01"), []payout.PrePayoutEntry{pctEntry("House", "12.5")})
	assert.Equal(t, "1.25", items[0].AmountDeducted.String())
	assert.Equal(t, "8.76", remaining.String())

	_, items = payout.ApplyDeductions(payout.MustMoney("0.10"), []payout.PrePayoutEntry{pctEntry("House", "15")})
	assert.Equal(t, "0.02", items[0].AmountDeducted.String())
}

func TestApplyDeductions_FixedClampedToRemaining(t *testing.T) {
	// GIVEN: pool=30, fixed deduction of 50
	// THEN:  only 30 is deducted, line item is flagged, pool never negative

	remaining, items := payout.ApplyDeductions(payout.MustMoney("30.00"), []payout.PrePayoutEntry{fixedEntry("Manager", "50.00")})
	require.Len(t, items, 1)
	assert.Equal(t, "30.00", items[0].AmountDeducted.String())
	assert.True(t, items[0].PartiallySatisfied)
	assert.True(t, remaining.IsZero())
}

func TestApplyDeductions_ExhaustedPoolStillRecordsEntries(t *testing.T) {
	entries := []payout.PrePayoutEntry{
		fixedEntry("House", "100.00"),
		fixedEntry("Kitchen", "10.00"),
		pctEntry("Bar", "50"),
	}

	remaining, items := payout.ApplyDeductions(payout.MustMoney("100.00"), entries)
	require.Len(t, items, 3)
	assert.Equal(t, "100.00", items[0].AmountDeducted.String())
	assert.False(t, items[0].PartiallySatisfied)
	assert.Equal(t, "0.00", items[1].AmountDeducted.String())
	assert.True(t, items[1].PartiallySatisfied, "nothing left for the fixed kitchen cut")
	assert.Equal(t, "0.00", items[2].AmountDeducted.String())
	assert.False(t, items[2].PartiallySatisfied, "a percentage of zero is satisfied in full")
	assert.True(t, remaining.IsZero())
}

func TestApplyDeductions_NoEntries(t *testing.T) {
	remaining, items := payout.ApplyDeductions(payout.MustMoney("42.00"), nil)
	assert.Equal(t, "42.00", remaining.String())
	assert.Empty(t, items)
}
