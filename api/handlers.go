/*
handlers.go - HTTP API handlers for the gratuity payout system

PURPOSE:
  Exposes the payout engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Schedules:
    GET    /api/restaurants/{rid}/schedules          List live schedules
    POST   /api/restaurants/{rid}/schedules          Create schedule
    GET    /api/restaurants/{rid}/schedules/{id}     Get schedule
    PUT    /api/restaurants/{rid}/schedules/{id}     Update schedule
    DELETE /api/restaurants/{rid}/schedules/{id}     Soft-delete schedule
    GET    /api/restaurants/{rid}/schedules/{id}/preview?date=YYYY-MM-DD
    POST   /api/schedules/validate                   Stateless validation gate

  Employees:
    GET    /api/restaurants/{rid}/employees          List employees
    POST   /api/restaurants/{rid}/employees          Create/update employee
    PUT    /api/restaurants/{rid}/employees/{id}/hours  Record hours

  Totals:
    GET    /api/restaurants/{rid}/totals/{date}      Day's gross totals
    PUT    /api/restaurants/{rid}/totals/{date}      Record gross totals

  Accounts:
    GET    /api/restaurants/{rid}/accounts           List deduction accounts
    POST   /api/restaurants/{rid}/accounts           Register account

  Settlements:
    GET    /api/restaurants/{rid}/settlements/{date} Runs for a day
    POST   /api/restaurants/{rid}/settlements/run    Settle a day now

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Factory: JSON to Schedule conversion
  - Runner: Settlement pipeline
  - validate: Shared request validator

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (day already settled)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - settlement/runner.go: The pipeline behind the settlement endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tably/gratuity-engine/factory"
	"github.com/tably/gratuity-engine/payout"
	"github.com/tably/gratuity-engine/settlement"
	"github.com/tably/gratuity-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.ScheduleFactory
	Runner  *settlement.Runner
	Log     zerolog.Logger

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, runner *settlement.Runner, log zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Factory:  factory.NewScheduleFactory(),
		Runner:   runner,
		Log:      log.With().Str("component", "api").Logger(),
		validate: validator.New(),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return false
	}
	return true
}

func restaurantID(r *http.Request) payout.RestaurantID {
	return payout.RestaurantID(chi.URLParam(r, "restaurantID"))
}

func scheduleID(r *http.Request) (payout.ScheduleID, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return payout.ScheduleID(id), err
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns all live schedules for a restaurant.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Store.ListSchedules(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	dtos := make([]factory.ScheduleJSON, len(schedules))
	for i, s := range schedules {
		dtos[i] = h.Factory.ToJSON(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSchedule returns a single schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := scheduleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id", err)
		return
	}

	sched, err := h.Store.GetSchedule(r.Context(), restaurantID(r), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(sched))
}

// CreateSchedule creates a schedule after it passes the validation gate.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sj.ID = 0 // assigned by the store

	sched, err := h.Factory.FromJSON(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}

	if _, err := h.Store.SaveSchedule(r.Context(), restaurantID(r), sched); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
		return
	}
	h.Log.Info().Int64("schedule_id", int64(sched.ID)).Str("name", sched.Name).Msg("schedule created")
	writeJSON(w, http.StatusCreated, h.Factory.ToJSON(sched))
}

// UpdateSchedule replaces a schedule definition. Settlement history is
// untouched: runs snapshot the configuration they were computed with.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := scheduleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id", err)
		return
	}

	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sj.ID = int64(id)

	sched, err := h.Factory.FromJSON(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}

	if _, err := h.Store.SaveSchedule(r.Context(), restaurantID(r), sched); err != nil {
		h.writeDomainError(w, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(sched))
}

// DeleteSchedule removes a schedule from future runs.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := scheduleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id", err)
		return
	}

	if err := h.Store.DeleteSchedule(r.Context(), restaurantID(r), id); err != nil {
		h.writeDomainError(w, "Failed to delete schedule", err)
		return
	}
	h.Log.Info().Int64("schedule_id", int64(id)).Msg("schedule deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ValidateSchedule runs the validation gate without persisting anything.
// Lets the schedule editor surface percentage-total errors as the
// manager types.
func (h *Handler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Factory.FromJSON(sj); err != nil {
		var verrs payout.ValidationErrors
		resp := ValidateResponse{Valid: false}
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				resp.Errors = append(resp.Errors, ve.Error())
			}
		} else {
			resp.Errors = append(resp.Errors, err.Error())
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{ID: e.ID, Name: e.Name, JobTitle: e.JobTitle, Active: e.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	emp := sqlite.Employee{
		ID:           req.ID,
		RestaurantID: string(restaurantID(r)),
		Name:         req.Name,
		JobTitle:     req.JobTitle,
		Active:       active,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, EmployeeDTO{ID: emp.ID, Name: emp.Name, JobTitle: emp.JobTitle, Active: emp.Active})
}

// SetHours records hours worked for an employee on a business date.
func (h *Handler) SetHours(w http.ResponseWriter, r *http.Request) {
	var req SetHoursRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, _ := parseDate(req.Date) // format checked by the validator
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}

	if err := h.Store.SetHours(r.Context(), chi.URLParam(r, "id"), date, hours); err != nil {
		h.writeDomainError(w, "Failed to record hours", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DAILY TOTAL HANDLERS
// =============================================================================

// GetTotals returns the day's recorded gross amounts (zero if none).
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	totals, err := h.Store.LoadDailyTotals(r.Context(), restaurantID(r), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load totals", err)
		return
	}
	writeJSON(w, http.StatusOK, DailyTotalsDTO{
		Date:          date.Format("2006-01-02"),
		GrossTips:     totals.GrossTips.String(),
		GrossGratuity: totals.GrossGratuity.String(),
	})
}

// PutTotals records the day's gross tips and gratuity.
func (h *Handler) PutTotals(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var req DailyTotalsRequest
	if !h.decode(w, r, &req) {
		return
	}

	tips, err := payout.NewMoney(req.GrossTips)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross_tips", err)
		return
	}
	gratuity, err := payout.NewMoney(req.GrossGratuity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross_gratuity", err)
		return
	}

	totals := payout.DailyTotals{GrossTips: tips, GrossGratuity: gratuity}
	if err := h.Store.SaveDailyTotals(r.Context(), restaurantID(r), date, totals); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save totals", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns the registered deduction accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = AccountDTO{ID: a.ID, Name: a.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount registers a deduction account name.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	acct := sqlite.Account{
		ID:           uuid.NewString(),
		RestaurantID: string(restaurantID(r)),
		Name:         req.Name,
	}
	if err := h.Store.SaveAccount(r.Context(), acct); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save account", err)
		return
	}
	writeJSON(w, http.StatusCreated, AccountDTO{ID: acct.ID, Name: acct.Name})
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// ListSettlements returns a day's recorded runs.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	runs, err := h.Store.ListRuns(r.Context(), restaurantID(r), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementRunDTO, len(runs))
	for i := range runs {
		dtos[i] = toRunDTO(&runs[i], nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RunSettlements settles a business date immediately, outside the
// nightly cadence. Already-settled schedules are skipped, so reposting
// the same date is harmless.
func (h *Handler) RunSettlements(w http.ResponseWriter, r *http.Request) {
	var req RunDayRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, _ := parseDate(req.Date)

	summary, err := h.Runner.RunDay(r.Context(), restaurantID(r), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Settlement run failed", err)
		return
	}

	resp := RunDayResponse{
		Date:    date.Format("2006-01-02"),
		Settled: summary.Settled(),
		Failed:  summary.Failed(),
	}
	for _, o := range summary.Outcomes {
		dto := RunDayOutcomeDTO{
			ScheduleID:   int64(o.ScheduleID),
			ScheduleName: o.ScheduleName,
			Skipped:      o.Skipped,
			SkipReason:   o.SkipReason,
		}
		if o.Err != nil {
			dto.Error = o.Err.Error()
		}
		if o.Run != nil {
			run := toRunDTO(o.Run, o.Gaps)
			dto.Run = &run
		}
		resp.Outcomes = append(resp.Outcomes, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PreviewSettlement computes one schedule's payout for a date without
// persisting. GET /api/restaurants/{rid}/schedules/{id}/preview?date=...
func (h *Handler) PreviewSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := scheduleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id", err)
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing date parameter", err)
		return
	}

	run, gaps, err := h.Runner.Preview(r.Context(), restaurantID(r), id, date)
	if err != nil {
		h.writeDomainError(w, "Preview failed", err)
		return
	}

	dto := toRunDTO(run, gaps)
	dto.ID = "" // previews are not persisted runs
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func toRunDTO(run *payout.SettlementRun, gaps []payout.ConfigGap) SettlementRunDTO {
	dto := SettlementRunDTO{
		ID:           run.ID,
		ScheduleID:   int64(run.ScheduleID),
		ScheduleName: run.ScheduleName,
		BusinessDate: run.BusinessDate.Format("2006-01-02"),
		Rule:         string(run.Rule),
		GrossPool:    run.GrossPool.String(),
		Distributed:  run.Distributed.String(),
		Deductions:   []DeductionDTO{},
		LineItems:    []LineItemDTO{},
	}
	if !run.CreatedAt.IsZero() {
		dto.CreatedAt = run.CreatedAt.Format(time.RFC3339)
	}
	for _, d := range run.Deductions {
		dto.Deductions = append(dto.Deductions, DeductionDTO{
			Account:            d.Account,
			Kind:               string(d.KindApplied),
			Amount:             d.AmountDeducted.String(),
			PartiallySatisfied: d.PartiallySatisfied,
		})
	}
	for _, li := range run.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			EmployeeID: string(li.EmployeeID),
			JobTitle:   li.JobTitle,
			Amount:     li.Amount.String(),
		})
	}
	for _, g := range gaps {
		dto.Gaps = append(dto.Gaps, ConfigGapDTO{
			EmployeeID: string(g.EmployeeID),
			JobTitle:   g.JobTitle,
			Reason:     g.Reason,
		})
	}
	return dto
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payout.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case payout.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, payout.ErrRunExists):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
