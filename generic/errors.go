/*
errors.go - Centralized error types for the stipend service

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (possibly wrapped with fmt.Errorf("...: %w")).

ERROR CATEGORIES:
  1. Validation errors - malformed input, missing custom description/amount
  2. Eligibility errors - holiday-only activity chosen on a work day
  3. Workflow errors - locked month, invalid status transition
  4. Store errors - missing rows

  The pure rule engine (package allowance) reports ineligibility as a value,
  not an error. Only the recording service turns it into IneligibleError.

SEE ALSO:
  - stipend/service.go: Returns these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed or incomplete input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIneligibleActivity is returned when an activity cannot be recorded
	// on the requested day.
	ErrIneligibleActivity = errors.New("activity not selectable on this day")

	// ErrMonthLocked is returned when a month can no longer be edited.
	ErrMonthLocked = errors.New("month is locked")

	// ErrInvalidTransition is returned for a disallowed application status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoRecords is returned when submitting a month without any records.
	ErrNoRecords = errors.New("no stipend records for month")

	// ErrForbidden is returned when the caller may not act on another
	// staff member's data.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IneligibleError carries the eligibility message for the rejected day.
type IneligibleError struct {
	Date     TimePoint
	Activity string
	Message  string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s on %s: %s", e.Activity, e.Date, e.Message)
}

func (e *IneligibleError) Unwrap() error { return ErrIneligibleActivity }

// LockedError explains why a month is read-only.
type LockedError struct {
	StaffID StaffID
	Month   YearMonth
	Reason  string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("stipends for %s are locked for %s: %s", e.Month, e.StaffID, e.Reason)
}

func (e *LockedError) Unwrap() error { return ErrMonthLocked }

// TransitionError describes a rejected application status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrIneligibleActivity) ||
		errors.Is(err, ErrNoRecords)
}

// IsConflict returns true if the request conflicts with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrMonthLocked) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsForbidden returns true if the caller lacks permission.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
