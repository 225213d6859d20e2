/*
errors.go - Centralized error types for the payout engine

PURPOSE:
  All engine error types in one place. The taxonomy mirrors how errors
  surface to callers:

  1. Validation errors - reject a schedule at save time, user-facing
  2. Not-found errors  - a referenced schedule or run does not exist
  3. Conflict errors   - a settlement run already exists for the day

  Computation degeneracies (zero pool, empty roster, over-sized fixed
  deduction) are NOT errors: the engine resolves them by documented
  policy so one anomalous schedule never blocks the day's other runs.

USAGE:
  if payout.IsValidation(err) {
      // 400 to the client, message carries the violated constraint
  }

SEE ALSO:
  - validate.go: Produces ValidationError values
*/
package payout

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSchedule is the sentinel wrapped by every ValidationError.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrScheduleNotFound is returned when a referenced schedule doesn't exist.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrRunExists is returned when a settlement run for the same
	// (schedule, business date) has already been persisted. Re-running a
	// day is expected behavior for retries; the stored run wins.
	ErrRunExists = errors.New("settlement run already exists")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports the specific constraint a schedule violates.
// Field names the offending part of the schedule; Constraint is a
// human-readable statement like "percentages total 97.50%, expected 100%".
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Constraint
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSchedule }

// ValidationErrors aggregates every violated constraint so the caller can
// report them all at once instead of one per round trip.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors (first: %s)", len(e), e[0].Error())
}

func (e ValidationErrors) Unwrap() error { return ErrInvalidSchedule }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a schedule validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidSchedule)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound) || errors.Is(err, ErrEmployeeNotFound)
}
