/*
store.go - Persistence interfaces for the leave engine

PURPOSE:
  Defines the boundary between domain logic and storage. Everything is
  keyed get/list/put; no component reaches into another's records.

OWNERSHIP:
  BalanceLedger is the only writer of LeaveBalance records.
  Engine is the only writer of LeaveRequest records.
  Catalog is the only writer of LeaveType records (at seed time).

IMPLEMENTATIONS:
  - store/memory: in-memory maps for tests and dev
  - store/sqlite: SQLite-backed production store

SEE ALSO:
  - ledger.go, engine.go, catalog.go: consumers of these interfaces
*/
package leave

import "context"

// RequestStore persists leave requests. Records are never deleted.
type RequestStore interface {
	// GetRequest returns the request or ErrRequestNotFound.
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)

	// PutRequest inserts or replaces a request by id.
	PutRequest(ctx context.Context, req *LeaveRequest) error

	// RequestsByEmployee returns all requests for an employee, any status.
	RequestsByEmployee(ctx context.Context, employeeID string) ([]*LeaveRequest, error)

	// RequestsByStatus returns all requests currently in the given status.
	RequestsByStatus(ctx context.Context, status RequestStatus) ([]*LeaveRequest, error)
}

// BalanceStore persists balance records. Records are never deleted; they
// persist for the calendar year they cover.
type BalanceStore interface {
	// GetBalance returns the record for the key or ErrBalanceNotFound.
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)

	// PutBalance inserts or replaces a balance record.
	PutBalance(ctx context.Context, bal *LeaveBalance) error

	// BalancesByEmployee returns all of an employee's balances for a year.
	BalancesByEmployee(ctx context.Context, employeeID string, year int) ([]*LeaveBalance, error)
}

// TypeStore persists the leave type catalog.
type TypeStore interface {
	// GetType returns the type or ErrTypeNotFound.
	GetType(ctx context.Context, id string) (*LeaveType, error)

	ListTypes(ctx context.Context) ([]*LeaveType, error)

	PutType(ctx context.Context, lt *LeaveType) error
}

// HolidayStore persists the configured holiday set.
type HolidayStore interface {
	ListHolidays(ctx context.Context) ([]*Holiday, error)
	PutHoliday(ctx context.Context, h *Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

// RecordStore is the full persistence surface a deployment provides.
type RecordStore interface {
	RequestStore
	BalanceStore
	TypeStore
	HolidayStore
}
