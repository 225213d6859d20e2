/*
Package factory provides JSON to Go schedule conversion.

PURPOSE:
  Converts JSON schedule definitions into payout.Schedule values. This
  is how schedules travel: the management API accepts them as JSON, the
  SQLite store persists them as JSON, and settlement runs snapshot them
  as JSON. The factory is the single place that parsing, defaulting,
  and strictness live.

STRICTNESS:
  The source system kept percentages as untyped strings and coerced
  anything non-numeric to zero. The factory does the opposite: every
  numeric field is parsed as a decimal string and rejected with a
  validation error when it doesn't parse. Roles are the literal strings
  "contributor" and "receiver"; numeric or missing role flags are
  rejected rather than guessed at.

JSON SCHEMA:
  {
    "name": "Dinner tip pool",
    "start_day": "friday",
    "end_day": "monday",
    "start_time": "17:00",
    "end_time": "23:45",
    "rule": "job_weighted",
    "trigger": {"gratuity_percent": "100", "tips_percent": "50"},
    "participants": [
      {"job_title": "Server", "role": "contributor"},
      {"job_title": "Host", "role": "receiver"}
    ],
    "percentages": {"Server": "70", "Host": "30"},
    "pre_payout": [
      {"kind": "percentage", "value": "3", "account": "Kitchen"},
      {"kind": "fixed_amount", "value": "25.00", "account": "House"}
    ],
    "custom": {"individual_contribution": "40", "group_contribution": "60"}
  }

USAGE:
  f := factory.NewScheduleFactory()
  schedule, err := f.Parse(jsonBytes)   // parsed AND gated by Validate

SEE ALSO:
  - payout/validate.go: The gate Parse applies after decoding
  - store/sqlite: Persists ScheduleJSON via this factory
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tably/gratuity-engine/payout"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the wire and storage representation of a schedule.
// All numeric fields are decimal strings; see the package comment.
type ScheduleJSON struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`

	StartDay string `json:"start_day,omitempty"`
	EndDay   string `json:"end_day,omitempty"`

	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	Rule    string      `json:"rule"`
	Trigger TriggerJSON `json:"trigger"`

	Participants []ParticipantJSON `json:"participants,omitempty"`
	Percentages  map[string]string `json:"percentages,omitempty"`
	PrePayout    []PrePayoutJSON   `json:"pre_payout,omitempty"`
	Custom       *CustomJSON       `json:"custom,omitempty"`

	Version int `json:"version,omitempty"`
}

type TriggerJSON struct {
	GratuityPercent string `json:"gratuity_percent,omitempty"`
	TipsPercent     string `json:"tips_percent,omitempty"`
}

type ParticipantJSON struct {
	JobTitle string `json:"job_title"`
	Role     string `json:"role"`
}

type PrePayoutJSON struct {
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Account string `json:"account"`
}

type CustomJSON struct {
	IndividualContribution string `json:"individual_contribution,omitempty"`
	GroupContribution      string `json:"group_contribution,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts between ScheduleJSON and payout.Schedule.
type ScheduleFactory struct{}

func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// Parse decodes a JSON schedule definition and runs the full pre-save
// validation gate. The returned schedule is safe to store.
func (f *ScheduleFactory) Parse(data []byte) (*payout.Schedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts a decoded ScheduleJSON. Structural problems (bad
// numbers, unknown roles, malformed times) surface as validation errors
// so the API reports them the same way as semantic ones.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (*payout.Schedule, error) {
	var errs payout.ValidationErrors

	s := &payout.Schedule{
		ID:      payout.ScheduleID(sj.ID),
		Name:    sj.Name,
		Rule:    payout.RuleType(sj.Rule),
		Version: sj.Version,
	}

	s.StartDay = parseWeekday(sj.StartDay, "start_day", &errs)
	s.EndDay = parseWeekday(sj.EndDay, "end_day", &errs)
	s.StartTime = parseClock(sj.StartTime, "start_time", &errs)
	s.EndTime = parseClock(sj.EndTime, "end_time", &errs)

	s.Trigger.GratuityPercent = parsePercent(sj.Trigger.GratuityPercent, "trigger.gratuity_percent", &errs)
	s.Trigger.TipsPercent = parsePercent(sj.Trigger.TipsPercent, "trigger.tips_percent", &errs)

	for _, pj := range sj.Participants {
		s.Participants = append(s.Participants, payout.Participant{
			JobTitle: pj.JobTitle,
			Role:     payout.Role(strings.ToLower(strings.TrimSpace(pj.Role))),
		})
	}

	if len(sj.Percentages) > 0 {
		s.Percentages = make(map[string]payout.Percent, len(sj.Percentages))
		for title, raw := range sj.Percentages {
			p, err := payout.NewPercent(raw)
			if err != nil {
				errs = append(errs, &payout.ValidationError{
					Field:      "percentages",
					Constraint: fmt.Sprintf("%q: %q is not a number", title, raw),
				})
				continue
			}
			s.Percentages[title] = p
		}
	}

	for i, ej := range sj.PrePayout {
		value, err := payout.NewPercent(ej.Value) // decimal parse; range checked by Validate
		if err != nil {
			errs = append(errs, &payout.ValidationError{
				Field:      fmt.Sprintf("pre_payout[%d]", i),
				Constraint: fmt.Sprintf("%q is not a number", ej.Value),
			})
			continue
		}
		s.PrePayout = append(s.PrePayout, payout.PrePayoutEntry{
			Kind:    payout.DeductionKind(ej.Kind),
			Value:   value.Value,
			Account: ej.Account,
		})
	}

	if sj.Custom != nil {
		cfg := &payout.CustomConfig{}
		if p := parsePercent(sj.Custom.IndividualContribution, "custom.individual_contribution", &errs); p != nil {
			cfg.IndividualContribution = *p
		}
		if p := parsePercent(sj.Custom.GroupContribution, "custom.group_contribution", &errs); p != nil {
			cfg.GroupContribution = *p
		}
		s.Custom = cfg
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON converts a schedule back to its wire representation.
func (f *ScheduleFactory) ToJSON(s *payout.Schedule) ScheduleJSON {
	sj := ScheduleJSON{
		ID:      int64(s.ID),
		Name:    s.Name,
		Rule:    string(s.Rule),
		Version: s.Version,
	}

	if s.StartDay != nil {
		sj.StartDay = strings.ToLower(s.StartDay.String())
	}
	if s.EndDay != nil {
		sj.EndDay = strings.ToLower(s.EndDay.String())
	}
	if s.StartTime != nil {
		sj.StartTime = s.StartTime.String()
	}
	if s.EndTime != nil {
		sj.EndTime = s.EndTime.String()
	}

	if s.Trigger.GratuityPercent != nil {
		sj.Trigger.GratuityPercent = s.Trigger.GratuityPercent.String()
	}
	if s.Trigger.TipsPercent != nil {
		sj.Trigger.TipsPercent = s.Trigger.TipsPercent.String()
	}

	for _, p := range s.Participants {
		sj.Participants = append(sj.Participants, ParticipantJSON{JobTitle: p.JobTitle, Role: string(p.Role)})
	}

	if len(s.Percentages) > 0 {
		sj.Percentages = make(map[string]string, len(s.Percentages))
		for title, p := range s.Percentages {
			sj.Percentages[title] = p.String()
		}
	}

	for _, e := range s.PrePayout {
		sj.PrePayout = append(sj.PrePayout, PrePayoutJSON{
			Kind:    string(e.Kind),
			Value:   e.Value.String(),
			Account: e.Account,
		})
	}

	if s.Custom != nil {
		sj.Custom = &CustomJSON{
			IndividualContribution: s.Custom.IndividualContribution.String(),
			GroupContribution:      s.Custom.GroupContribution.String(),
		}
	}

	return sj
}

// Marshal serializes a schedule for storage or snapshotting.
func (f *ScheduleFactory) Marshal(s *payout.Schedule) ([]byte, error) {
	return json.Marshal(f.ToJSON(s))
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(raw, field string, errs *payout.ValidationErrors) *time.Weekday {
	if raw == "" {
		return nil
	}
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		*errs = append(*errs, &payout.ValidationError{
			Field:      field,
			Constraint: fmt.Sprintf("%q is not a day of week", raw),
		})
		return nil
	}
	return &d
}

func parseClock(raw, field string, errs *payout.ValidationErrors) *payout.ClockTime {
	if raw == "" {
		return nil
	}
	ct, err := payout.ParseClockTime(raw)
	if err != nil {
		*errs = append(*errs, &payout.ValidationError{Field: field, Constraint: err.Error()})
		return nil
	}
	return &ct
}

func parsePercent(raw, field string, errs *payout.ValidationErrors) *payout.Percent {
	if raw == "" {
		return nil
	}
	p, err := payout.NewPercent(raw)
	if err != nil {
		*errs = append(*errs, &payout.ValidationError{
			Field:      field,
			Constraint: fmt.Sprintf("%q is not a number", raw),
		})
		return nil
	}
	return &p
}
