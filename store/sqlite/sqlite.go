/*
Package sqlite provides a SQLite-backed implementation of the leave
engine's storage interfaces.

PURPOSE:
  Implements leave.RecordStore (requests, balances, types, holidays) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  leave_types:    catalog configuration, written at seed time
  leave_balances: one row per (employee, type, year); never deleted
  leave_requests: one row per request; never deleted
  holidays:       configured non-working dates

AMOUNTS AND DATES:
  Day amounts are stored as decimal TEXT to avoid floating-point drift.
  Dates are stored as ISO TEXT: "2006-01-02" for day-granularity fields,
  RFC 3339 for timestamps.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): multiple readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - leave/store.go: interface definitions
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

// Store implements leave.RecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.RecordStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		max_days_per_year TEXT,
		requires_approval INTEGER NOT NULL DEFAULT 1,
		advance_notice_days INTEGER NOT NULL DEFAULT 0,
		is_paid INTEGER NOT NULL DEFAULT 1,
		carry_over_allowed INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		allocated TEXT NOT NULL,
		used TEXT NOT NULL,
		pending TEXT NOT NULL,
		remaining TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, leave_type_id, year)
	);

	CREATE INDEX IF NOT EXISTS idx_balances_employee_year
		ON leave_balances(employee_id, year);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_days TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		requested_at TEXT NOT NULL,
		approved_by TEXT,
		approved_at TEXT,
		rejection_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339Nano
)

// =============================================================================
// REQUESTS
// =============================================================================

const requestColumns = `id, employee_id, leave_type_id, start_date, end_date, total_days,
	status, reason, requested_at, approved_by, approved_at, rejection_reason, created_at, updated_at`

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	return req, err
}

func (s *Store) PutRequest(ctx context.Context, req *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var approvedAt any
	if req.ApprovedAt != nil {
		approvedAt = req.ApprovedAt.UTC().Format(timeFormat)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			rejection_reason = excluded.rejection_reason,
			updated_at = excluded.updated_at`,
		req.ID, req.EmployeeID, req.LeaveTypeID,
		req.StartDate.Format(dateFormat), req.EndDate.Format(dateFormat),
		req.TotalDays.String(), string(req.Status), req.Reason,
		req.RequestedAt.UTC().Format(timeFormat),
		req.ApprovedBy, approvedAt, req.RejectionReason,
		req.CreatedAt.UTC().Format(timeFormat), req.UpdatedAt.UTC().Format(timeFormat))
	return err
}

func (s *Store) RequestsByEmployee(ctx context.Context, employeeID string) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE employee_id = ? ORDER BY start_date`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) RequestsByStatus(ctx context.Context, status leave.RequestStatus) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE status = ? ORDER BY start_date`,
		string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	var startDate, endDate, totalDays, status, requestedAt, createdAt, updatedAt string
	var reason, approvedBy, approvedAt, rejectionReason sql.NullString

	if err := row.Scan(&req.ID, &req.EmployeeID, &req.LeaveTypeID,
		&startDate, &endDate, &totalDays, &status, &reason,
		&requestedAt, &approvedBy, &approvedAt, &rejectionReason,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if req.StartDate, err = time.ParseInLocation(dateFormat, startDate, time.UTC); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	if req.EndDate, err = time.ParseInLocation(dateFormat, endDate, time.UTC); err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", endDate, err)
	}
	if req.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return nil, fmt.Errorf("bad total_days %q: %w", totalDays, err)
	}
	req.Status = leave.RequestStatus(status)
	req.Reason = reason.String
	req.ApprovedBy = approvedBy.String
	req.RejectionReason = rejectionReason.String
	if req.RequestedAt, err = time.Parse(timeFormat, requestedAt); err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		t, err := time.Parse(timeFormat, approvedAt.String)
		if err != nil {
			return nil, err
		}
		req.ApprovedAt = &t
	}
	if req.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, err
	}
	if req.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]*leave.LeaveRequest, error) {
	var out []*leave.LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// =============================================================================
// BALANCES
// =============================================================================

const balanceColumns = `id, employee_id, leave_type_id, year, allocated, used, pending, remaining, updated_at`

func (s *Store) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM leave_balances
		 WHERE employee_id = ? AND leave_type_id = ? AND year = ?`,
		employeeID, leaveTypeID, year)
	bal, err := scanBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrBalanceNotFound
	}
	return bal, err
}

func (s *Store) PutBalance(ctx context.Context, bal *leave.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (`+balanceColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(employee_id, leave_type_id, year) DO UPDATE SET
			allocated = excluded.allocated,
			used = excluded.used,
			pending = excluded.pending,
			remaining = excluded.remaining,
			updated_at = excluded.updated_at`,
		bal.ID, bal.EmployeeID, bal.LeaveTypeID, bal.Year,
		bal.Allocated.String(), bal.Used.String(), bal.Pending.String(), bal.Remaining.String(),
		bal.UpdatedAt.UTC().Format(timeFormat))
	return err
}

func (s *Store) BalancesByEmployee(ctx context.Context, employeeID string, year int) ([]*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM leave_balances
		 WHERE employee_id = ? AND year = ? ORDER BY leave_type_id`,
		employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*leave.LeaveBalance
	for rows.Next() {
		bal, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bal)
	}
	return out, rows.Err()
}

func scanBalance(row rowScanner) (*leave.LeaveBalance, error) {
	var bal leave.LeaveBalance
	var allocated, used, pending, remaining, updatedAt string

	if err := row.Scan(&bal.ID, &bal.EmployeeID, &bal.LeaveTypeID, &bal.Year,
		&allocated, &used, &pending, &remaining, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if bal.Allocated, err = decimal.NewFromString(allocated); err != nil {
		return nil, fmt.Errorf("bad allocated %q: %w", allocated, err)
	}
	if bal.Used, err = decimal.NewFromString(used); err != nil {
		return nil, fmt.Errorf("bad used %q: %w", used, err)
	}
	if bal.Pending, err = decimal.NewFromString(pending); err != nil {
		return nil, fmt.Errorf("bad pending %q: %w", pending, err)
	}
	if bal.Remaining, err = decimal.NewFromString(remaining); err != nil {
		return nil, fmt.Errorf("bad remaining %q: %w", remaining, err)
	}
	if bal.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, err
	}
	return &bal, nil
}

// =============================================================================
// TYPES
// =============================================================================

const typeColumns = `id, name, max_days_per_year, requires_approval, advance_notice_days,
	is_paid, carry_over_allowed, active, created_at`

func (s *Store) GetType(ctx context.Context, id string) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+typeColumns+` FROM leave_types WHERE id = ?`, id)
	lt, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrTypeNotFound
	}
	return lt, err
}

func (s *Store) ListTypes(ctx context.Context) ([]*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+typeColumns+` FROM leave_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*leave.LeaveType
	for rows.Next() {
		lt, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (s *Store) PutType(ctx context.Context, lt *leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxDays any
	if lt.MaxDaysPerYear != nil {
		maxDays = lt.MaxDaysPerYear.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_types (`+typeColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			max_days_per_year = excluded.max_days_per_year,
			requires_approval = excluded.requires_approval,
			advance_notice_days = excluded.advance_notice_days,
			is_paid = excluded.is_paid,
			carry_over_allowed = excluded.carry_over_allowed,
			active = excluded.active`,
		lt.ID, lt.Name, maxDays, lt.RequiresApproval, lt.AdvanceNoticeDays,
		lt.IsPaid, lt.CarryOverAllowed, lt.Active,
		lt.CreatedAt.UTC().Format(timeFormat))
	return err
}

func scanType(row rowScanner) (*leave.LeaveType, error) {
	var lt leave.LeaveType
	var maxDays sql.NullString
	var createdAt string

	if err := row.Scan(&lt.ID, &lt.Name, &maxDays, &lt.RequiresApproval,
		&lt.AdvanceNoticeDays, &lt.IsPaid, &lt.CarryOverAllowed, &lt.Active,
		&createdAt); err != nil {
		return nil, err
	}

	if maxDays.Valid {
		d, err := decimal.NewFromString(maxDays.String)
		if err != nil {
			return nil, fmt.Errorf("bad max_days_per_year %q: %w", maxDays.String, err)
		}
		lt.MaxDaysPerYear = &d
	}
	var err error
	if lt.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, err
	}
	return &lt, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) ListHolidays(ctx context.Context) ([]*leave.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*leave.Holiday
	for rows.Next() {
		var h leave.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = time.ParseInLocation(dateFormat, date, time.UTC); err != nil {
			return nil, fmt.Errorf("bad holiday date %q: %w", date, err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

func (s *Store) PutHoliday(ctx context.Context, h *leave.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name)
		VALUES (?,?,?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name`,
		h.ID, h.Date.Format(dateFormat), h.Name)
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}
