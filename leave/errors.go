/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is/errors.As; the structured variants carry
  enough context to build a useful rejection message.

ERROR CATEGORIES:
  1. Validation errors - bad input on submit (range, balance, overlap)
  2. State machine errors - decisions against missing or settled requests
  3. Ledger errors - pending underflow on release

SEE ALSO:
  - engine.go: Returns these from Submit/Process
  - ledger.go: Returns ErrInvalidState
*/
package leave

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a request's start date is not
	// strictly before its end date.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInsufficientBalance is returned when the remaining balance cannot
	// cover the requested business days.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOverlappingRequest is returned when the requested range intersects
	// an existing pending or approved request for the same employee.
	ErrOverlappingRequest = errors.New("overlapping request")

	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrTypeNotFound is returned for an unknown leave type id.
	ErrTypeNotFound = errors.New("leave type not found")

	// ErrBalanceNotFound is returned by balance stores when no record exists
	// for the requested key. The ledger turns this into lazy initialization.
	ErrBalanceNotFound = errors.New("leave balance not found")

	// ErrAlreadyProcessed is returned when a decision targets a request that
	// is no longer pending.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrInvalidDecision is returned for decisions other than approved or
	// rejected. There is no transition into the cancelled state.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidState is returned when a ledger operation would drive the
	// pending counter negative.
	ErrInvalidState = errors.New("invalid ledger state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports a balance shortage at submission time.
type InsufficientBalanceError struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
	Requested   decimal.Decimal
	Remaining   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s/%s/%d: remaining %s, requested %s",
		e.EmployeeID, e.LeaveTypeID, e.Year, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// OverlapError reports the existing request that blocked a submission.
type OverlapError struct {
	ExistingID    string
	ExistingStart time.Time
	ExistingEnd   time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping request %s (%s to %s)",
		e.ExistingID, e.ExistingStart.Format("2006-01-02"), e.ExistingEnd.Format("2006-01-02"))
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingRequest }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
// These are never retried automatically; the caller corrects and resubmits.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrOverlappingRequest) ||
		errors.Is(err, ErrInvalidDecision)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrTypeNotFound) ||
		errors.Is(err, ErrBalanceNotFound)
}
