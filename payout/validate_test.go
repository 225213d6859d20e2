package payout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/gratuity-engine/payout"
)

func pct(s string) payout.Percent { return payout.MustPercent(s) }

func validWeightedSchedule() *payout.Schedule {
	return &payout.Schedule{
		Name: "Dinner tip pool",
		Rule: payout.RuleJobWeighted,
		Participants: []payout.Participant{
			{JobTitle: "Server", Role: payout.RoleContributor},
			{JobTitle: "Host", Role: payout.RoleReceiver},
		},
		Percentages: map[string]payout.Percent{
			"Server": pct("70"),
			"Host":   pct("30"),
		},
	}
}

// =============================================================================
// PERCENTAGE ALLOCATION VALIDATOR
// =============================================================================

func TestValidateAllocations_RoundTrip(t *testing.T) {
	ok := payout.ValidateAllocations(map[string]payout.Percent{"A": pct("60"), "B": pct("40")})
	assert.True(t, ok.OK)
	assert.Equal(t, "100", ok.Total.String())

	bad := payout.ValidateAllocations(map[string]payout.Percent{"A": pct("60"), "B": pct("30")})
	assert.False(t, bad.OK)
	assert.Equal(t, "90", bad.Total.String())
	require.NotNil(t, bad.Err)
	assert.Equal(t, "percentages: percentages total 90.00%, expected 100%", bad.Err.Error())
}

func TestValidateAllocations_Tolerance(t *testing.T) {
	// Within ±0.01 passes; beyond it fails.
	within := payout.ValidateAllocations(map[string]payout.Percent{"A": pct("33.33"), "B": pct("33.33"), "C": pct("33.34")})
	assert.True(t, within.OK)

	edge := payout.ValidateAllocations(map[string]payout.Percent{"A": pct("99.99")})
	assert.True(t, edge.OK)

	over := payout.ValidateAllocations(map[string]payout.Percent{"A": pct("99.98")})
	assert.False(t, over.OK)
}

// =============================================================================
// FULL SCHEDULE GATE
// =============================================================================

func TestValidate_AcceptsWellFormedSchedule(t *testing.T) {
	assert.NoError(t, validWeightedSchedule().Validate())
}

func TestValidate_BlankName(t *testing.T) {
	s := validWeightedSchedule()
	s.Name = "   "

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, payout.IsValidation(err))
	assert.Contains(t, err.Error(), "name")
}

func TestValidate_PercentagesMustReconcile(t *testing.T) {
	s := validWeightedSchedule()
	s.Percentages["Host"] = pct("27.5")

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "percentages total 97.50%, expected 100%")
}

func TestValidate_EqualAndHourBasedSkipPercentageGate(t *testing.T) {
	// Percentages are not user-supplied for these variants, so a missing
	// or non-reconciling map must not block the save.
	for _, rule := range []payout.RuleType{payout.RuleEqual, payout.RuleHourBased} {
		s := validWeightedSchedule()
		s.Rule = rule
		s.Percentages = nil
		assert.NoError(t, s.Validate(), "rule %s", rule)
	}
}

func TestValidate_GateOnlyWithParticipants(t *testing.T) {
	s := validWeightedSchedule()
	s.Participants = nil
	s.Percentages = nil
	assert.NoError(t, s.Validate(), "no participants selected, nothing to reconcile")
}

func TestValidate_TitleInBothRolesRejected(t *testing.T) {
	s := validWeightedSchedule()
	s.Participants = append(s.Participants, payout.Participant{JobTitle: "Server", Role: payout.RoleReceiver})

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Server" cannot be both contributor and receiver`)
}

func TestValidate_PrePayoutEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry payout.PrePayoutEntry
		want  string
	}{
		{"blank account", pctEntry("  ", "10"), "account must not be blank"},
		{"negative value", fixedEntry("House", "-5"), "value must not be negative"},
		{"percentage over 100", pctEntry("House", "120"), "percentage must not exceed 100"},
		{"sub-cent fixed amount", fixedEntry("House", "10.005"), "at most 2 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validWeightedSchedule()
			s.PrePayout = []payout.PrePayoutEntry{tt.entry}

			err := s.Validate()
			require.Error(t, err)
			assert.True(t, payout.IsValidation(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_TriggerPercentRange(t *testing.T) {
	s := validWeightedSchedule()
	over := pct("150")
	s.Trigger.TipsPercent = &over

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger.tips_percent")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	s := validWeightedSchedule()
	s.Name = ""
	s.Percentages["Host"] = pct("10")
	s.PrePayout = []payout.PrePayoutEntry{pctEntry("", "10")}

	err := s.Validate()
	require.Error(t, err)
	var errs payout.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
}

func TestNewPercent_RejectsNonNumericInput(t *testing.T) {
	_, err := payout.NewPercent("abc")
	assert.Error(t, err, "non-numeric input is rejected, never coerced to 0")

	_, err = payout.NewPercent("")
	assert.Error(t, err)
}

func TestNewMoney_RejectsSubCentPrecision(t *testing.T) {
	_, err := payout.NewMoney("10.005")
	assert.Error(t, err)

	m, err := payout.NewMoney("10.50")
	require.NoError(t, err)
	assert.Equal(t, "10.50", m.String())
}
