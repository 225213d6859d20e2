/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Schedules:
    Schedule payloads reuse factory.ScheduleJSON directly - the stored
    configuration format IS the API contract, so there is nothing to
    translate.

  Employees:
    EmployeeDTO, CreateEmployeeRequest, SetHoursRequest

  Totals:
    DailyTotalsRequest, DailyTotalsDTO

  Settlements:
    SettlementRunDTO, LineItemDTO, DeductionDTO, RunDayRequest

VALIDATION:
  Request types carry go-playground/validator tags; handlers run the
  shared validator before touching domain logic. Domain-level checks
  (percentage totals, trigger ranges) stay in the payout package.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON definition
*/
package api

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO is the employee representation returned to clients.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
	Active   bool   `json:"active"`
}

// CreateEmployeeRequest creates or updates an employee record.
type CreateEmployeeRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	JobTitle string `json:"job_title" validate:"required"`
	Active   *bool  `json:"active"`
}

// SetHoursRequest records hours worked on a business date.
type SetHoursRequest struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Hours string `json:"hours" validate:"required"`
}

// =============================================================================
// DAILY TOTALS
// =============================================================================

// DailyTotalsRequest records a day's aggregated gross amounts.
// Amounts are decimal strings; floats are rejected at parse time.
type DailyTotalsRequest struct {
	GrossTips     string `json:"gross_tips" validate:"required"`
	GrossGratuity string `json:"gross_gratuity" validate:"required"`
}

// DailyTotalsDTO is a day's totals as stored.
type DailyTotalsDTO struct {
	Date          string `json:"date"`
	GrossTips     string `json:"gross_tips"`
	GrossGratuity string `json:"gross_gratuity"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO is a named custom deduction account.
type AccountDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateAccountRequest registers a deduction account name.
type CreateAccountRequest struct {
	Name string `json:"name" validate:"required"`
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

// RunDayRequest triggers settlement for a business date.
type RunDayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// LineItemDTO is one employee's share of a settled pool.
type LineItemDTO struct {
	EmployeeID string `json:"employee_id"`
	JobTitle   string `json:"job_title"`
	Amount     string `json:"amount"`
}

// DeductionDTO is one applied pre-payout deduction.
type DeductionDTO struct {
	Account            string `json:"account"`
	Kind               string `json:"kind"`
	Amount             string `json:"amount"`
	PartiallySatisfied bool   `json:"partially_satisfied,omitempty"`
}

// ConfigGapDTO reports an employee skipped by the distribution.
type ConfigGapDTO struct {
	EmployeeID string `json:"employee_id"`
	JobTitle   string `json:"job_title"`
	Reason     string `json:"reason"`
}

// SettlementRunDTO is one schedule's settled payout for one day.
type SettlementRunDTO struct {
	ID           string         `json:"id,omitempty"`
	ScheduleID   int64          `json:"schedule_id"`
	ScheduleName string         `json:"schedule_name"`
	BusinessDate string         `json:"business_date"`
	Rule         string         `json:"rule"`
	GrossPool    string         `json:"gross_pool"`
	Distributed  string         `json:"distributed"`
	Deductions   []DeductionDTO `json:"deductions"`
	LineItems    []LineItemDTO  `json:"line_items"`
	Gaps         []ConfigGapDTO `json:"gaps,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// RunDayResponse summarizes one settlement run over a restaurant's day.
type RunDayResponse struct {
	Date     string             `json:"date"`
	Settled  int                `json:"settled"`
	Failed   int                `json:"failed"`
	Outcomes []RunDayOutcomeDTO `json:"outcomes"`
}

// RunDayOutcomeDTO is the per-schedule result of a day run.
type RunDayOutcomeDTO struct {
	ScheduleID   int64             `json:"schedule_id"`
	ScheduleName string            `json:"schedule_name"`
	Skipped      bool              `json:"skipped,omitempty"`
	SkipReason   string            `json:"skip_reason,omitempty"`
	Error        string            `json:"error,omitempty"`
	Run          *SettlementRunDTO `json:"run,omitempty"`
}

// ValidateResponse reports the schedule validation gate's verdict.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
