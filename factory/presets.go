/*
presets.go - Pre-built schedule configurations

PURPOSE:
  Ready-to-use schedule JSON for common restaurant arrangements. The
  management UI offers these as starting points; the demo scenarios
  seed from them.

AVAILABLE PRESETS:
  EvenTipPool:
    - Everyone active splits tips evenly
    - No window (always active)

  HourWeightedTipPool:
    - Split in proportion to hours worked
    - Typical for multi-shift counters

  FrontOfHousePool:
    - Job-weighted split between serving titles
    - Percentages must total 100

  WeekendDinnerPool:
    - Fri..Mon dinner window with kitchen pre-payout
    - Shows day wraparound plus ordered deductions
*/
package factory

// EvenTipPool splits the given percentage of tips evenly across every
// active employee.
func EvenTipPool(name, tipsPercent string) ScheduleJSON {
	return ScheduleJSON{
		Name:    name,
		Rule:    "equal",
		Trigger: TriggerJSON{TipsPercent: tipsPercent},
	}
}

// HourWeightedTipPool splits tips and gratuity proportionally to hours.
func HourWeightedTipPool(name, tipsPercent, gratuityPercent string) ScheduleJSON {
	return ScheduleJSON{
		Name: name,
		Rule: "hour_based",
		Trigger: TriggerJSON{
			TipsPercent:     tipsPercent,
			GratuityPercent: gratuityPercent,
		},
	}
}

// FrontOfHousePool is a job-weighted split across front-of-house titles.
// percentages maps job title to share and must total 100.
func FrontOfHousePool(name string, contributors []string, receivers []string, percentages map[string]string) ScheduleJSON {
	sj := ScheduleJSON{
		Name:        name,
		Rule:        "job_weighted",
		Trigger:     TriggerJSON{TipsPercent: "100", GratuityPercent: "100"},
		Percentages: percentages,
	}
	for _, title := range contributors {
		sj.Participants = append(sj.Participants, ParticipantJSON{JobTitle: title, Role: "contributor"})
	}
	for _, title := range receivers {
		sj.Participants = append(sj.Participants, ParticipantJSON{JobTitle: title, Role: "receiver"})
	}
	return sj
}

// WeekendDinnerPool covers Friday through Monday dinner service with a
// kitchen percentage taken off the top before the split.
func WeekendDinnerPool(name string, percentages map[string]string, kitchenPercent string) ScheduleJSON {
	sj := FrontOfHousePool(name, nil, nil, percentages)
	for title := range percentages {
		sj.Participants = append(sj.Participants, ParticipantJSON{JobTitle: title, Role: "receiver"})
	}
	sj.StartDay = "friday"
	sj.EndDay = "monday"
	sj.StartTime = "17:00"
	sj.EndTime = "23:45"
	sj.PrePayout = []PrePayoutJSON{
		{Kind: "percentage", Value: kitchenPercent, Account: "Kitchen"},
	}
	return sj
}
