// Package leave implements the leave lifecycle and balance management engine:
// request validation, per-employee/per-type/per-year balance ledgers, and the
// pending -> approved/rejected approval state machine.
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPE - Catalog configuration, immutable at runtime
// =============================================================================

// LeaveType is a category of absence and its policy parameters.
// Seeded once at startup; never mutated by normal operation.
type LeaveType struct {
	ID   string
	Name string

	// MaxDaysPerYear is the annual allocation. nil means no pre-set
	// allocation: balances for this type initialize to zero and every
	// submission fails the balance check until the catalog is changed.
	// That is a configuration responsibility, not an engine bug.
	MaxDaysPerYear *decimal.Decimal

	RequiresApproval  bool
	AdvanceNoticeDays int
	IsPaid            bool
	CarryOverAllowed  bool
	Active            bool

	CreatedAt time.Time
}

// =============================================================================
// LEAVE BALANCE - Per-employee, per-type, per-year ledger record
// =============================================================================

// LeaveBalance is keyed by (EmployeeID, LeaveTypeID, Year).
//
// Remaining is derived: allocated - used - pending. It is recomputed on every
// mutation and never trusted as independently stored truth.
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	Allocated decimal.Decimal
	Used      decimal.Decimal
	Pending   decimal.Decimal
	Remaining decimal.Decimal

	UpdatedAt time.Time
}

// Recompute refreshes the derived Remaining field.
func (b *LeaveBalance) Recompute() {
	b.Remaining = b.Allocated.Sub(b.Used).Sub(b.Pending)
}

// =============================================================================
// LEAVE REQUEST - The unit of the approval state machine
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"

	// StatusCancelled is a modeled terminal state. No transition into it is
	// defined; see Engine.Process.
	StatusCancelled RequestStatus = "cancelled"
)

// Decision is the approver's verdict on a pending request.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// LeaveRequest is created in StatusPending and mutated exactly once by a
// decision transition. Requests are never deleted.
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time

	// TotalDays is computed at submission: business days in [start, end],
	// holidays excluded.
	TotalDays decimal.Decimal

	Status RequestStatus
	Reason string

	RequestedAt     time.Time
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether the request's date range intersects [start, end].
func (r *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// =============================================================================
// HOLIDAY - A configured non-working date
// =============================================================================

type Holiday struct {
	ID   string
	Date time.Time
	Name string
}

// DateOnly truncates t to midnight UTC. All request and holiday dates are
// normalized through this before comparison.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
