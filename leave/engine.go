/*
engine.go - Leave request submission and the approval state machine

PURPOSE:
  The entry point for the leave lifecycle. Submit validates a request
  against date, balance, and overlap rules, reserves pending days, and
  persists the request. Process settles a pending request exactly once,
  reconciling the reservation into used days or releasing it.

STATE MACHINE:
  pending -> approved
  pending -> rejected
  cancelled is a declared terminal status with no transition into it;
  Process refuses any decision other than approved/rejected.

CONCURRENCY:
  Submit and Process serialize per employee. That makes the
  check-balance -> check-overlap -> reserve sequence atomic with respect to
  other submissions for the same employee, so two concurrent requests can
  neither jointly over-commit an allocation nor both pass the overlap scan.

SIDE EFFECTS:
  Notification and audit hooks fire after persistence succeeds, from a
  separate goroutine. Their failures are logged and swallowed; they never
  fail or roll back the triggering operation.

SEE ALSO:
  - ledger.go: Reserve/Release/Commit semantics
  - calendar.go: business-day counting
  - errors.go: the error taxonomy Submit/Process return
*/
package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Engine struct {
	requests RequestStore
	ledger   *BalanceLedger
	calendar *BusinessCalendar
	notifier Notifier
	audit    AuditLog
	logger   *slog.Logger

	// locks serializes all lifecycle operations per employee.
	locks *keyLock
	now   func() time.Time
}

func NewEngine(requests RequestStore, ledger *BalanceLedger, calendar *BusinessCalendar, notifier Notifier, audit AuditLog, logger *slog.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if audit == nil {
		audit = NopAuditLog{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		requests: requests,
		ledger:   ledger,
		calendar: calendar,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
		locks:    newKeyLock(),
		now:      time.Now,
	}
}

// =============================================================================
// SUBMIT
// =============================================================================

type SubmitInput struct {
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
}

// Submit validates and creates a leave request in the pending state,
// reserving its business days against the employee's balance.
func (e *Engine) Submit(ctx context.Context, in SubmitInput) (*LeaveRequest, error) {
	start, end := DateOnly(in.StartDate), DateOnly(in.EndDate)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s must be before end %s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	e.locks.Lock(in.EmployeeID)
	defer e.locks.Unlock(in.EmployeeID)

	total := e.calendar.CountBusinessDays(start, end, true)
	days := decimal.NewFromInt(int64(total))

	bal, err := e.ledger.GetOrInit(ctx, in.EmployeeID, in.LeaveTypeID, start.Year())
	if err != nil {
		return nil, err
	}
	if bal.Remaining.LessThan(days) {
		return nil, &InsufficientBalanceError{
			EmployeeID:  in.EmployeeID,
			LeaveTypeID: in.LeaveTypeID,
			Year:        start.Year(),
			Requested:   days,
			Remaining:   bal.Remaining,
		}
	}

	existing, err := e.requests.RequestsByEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Status != StatusPending && r.Status != StatusApproved {
			continue
		}
		if r.Overlaps(start, end) {
			return nil, &OverlapError{
				ExistingID:    r.ID,
				ExistingStart: r.StartDate,
				ExistingEnd:   r.EndDate,
			}
		}
	}

	now := e.now().UTC()
	req := &LeaveRequest{
		ID:          uuid.NewString(),
		EmployeeID:  in.EmployeeID,
		LeaveTypeID: in.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   days,
		Status:      StatusPending,
		Reason:      in.Reason,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.ledger.Reserve(ctx, bal, days); err != nil {
		return nil, err
	}
	if err := e.requests.PutRequest(ctx, req); err != nil {
		// Undo the reservation so the ledger does not carry a hold for a
		// request that was never persisted.
		if rerr := e.ledger.Release(ctx, bal, days); rerr != nil {
			e.logger.Error("failed to release reservation after persist failure",
				slog.String("employee", in.EmployeeID), slog.Any("error", rerr))
		}
		return nil, err
	}

	e.dispatch(AudienceApprovers, EventRequestSubmitted, req, AuditEntry{
		Entity:   "leave_request",
		EntityID: req.ID,
		Action:   "submit",
		After:    requestSnapshot(req),
		Actor:    in.EmployeeID,
		At:       now,
	})
	return req, nil
}

// =============================================================================
// PROCESS
// =============================================================================

type ProcessInput struct {
	RequestID  string
	ApproverID string
	Decision   Decision
	Reason     string
}

// Process applies an approver decision to a pending request. A request is
// settled exactly once; a second call always fails with ErrAlreadyProcessed.
func (e *Engine) Process(ctx context.Context, in ProcessInput) (*LeaveRequest, error) {
	if in.Decision != DecisionApproved && in.Decision != DecisionRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, in.Decision)
	}

	// First read resolves the employee so we can take the right lock;
	// the state guard runs on a fresh read under the lock.
	req, err := e.requests.GetRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	e.locks.Lock(req.EmployeeID)
	defer e.locks.Unlock(req.EmployeeID)

	req, err = e.requests.GetRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrAlreadyProcessed, req.ID, req.Status)
	}

	before := requestSnapshot(req)
	now := e.now().UTC()

	req.Status = RequestStatus(in.Decision)
	req.ApprovedBy = in.ApproverID
	req.ApprovedAt = &now
	if in.Decision == DecisionRejected {
		req.RejectionReason = in.Reason
	}
	req.UpdatedAt = now

	bal, err := e.ledger.GetOrInit(ctx, req.EmployeeID, req.LeaveTypeID, req.StartDate.Year())
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Release(ctx, bal, req.TotalDays); err != nil {
		return nil, err
	}
	if in.Decision == DecisionApproved {
		if err := e.ledger.Commit(ctx, bal, req.TotalDays); err != nil {
			return nil, err
		}
	}

	if err := e.requests.PutRequest(ctx, req); err != nil {
		return nil, err
	}

	event := EventRequestApproved
	if in.Decision == DecisionRejected {
		event = EventRequestRejected
	}
	e.dispatch(req.EmployeeID, event, req, AuditEntry{
		Entity:   "leave_request",
		EntityID: req.ID,
		Action:   "process",
		Before:   before,
		After:    requestSnapshot(req),
		Actor:    in.ApproverID,
		At:       now,
	})
	return req, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Balances returns the employee's balance records for a year.
func (e *Engine) Balances(ctx context.Context, employeeID string, year int) ([]*LeaveBalance, error) {
	return e.ledger.BalancesFor(ctx, employeeID, year)
}

// PendingRequests returns every request awaiting a decision.
func (e *Engine) PendingRequests(ctx context.Context) ([]*LeaveRequest, error) {
	return e.requests.RequestsByStatus(ctx, StatusPending)
}

// EmployeeRequests returns all of an employee's requests, any status.
func (e *Engine) EmployeeRequests(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	return e.requests.RequestsByEmployee(ctx, employeeID)
}

// Request returns a single request by id.
func (e *Engine) Request(ctx context.Context, id string) (*LeaveRequest, error) {
	return e.requests.GetRequest(ctx, id)
}

// =============================================================================
// HOOK DISPATCH
// =============================================================================

// dispatch fires the notification and audit hooks off the request path.
// The operation has already committed; hook failures are logged only.
func (e *Engine) dispatch(recipientID, eventType string, req *LeaveRequest, entry AuditEntry) {
	payload := map[string]any{
		"request_id":    req.ID,
		"employee_id":   req.EmployeeID,
		"leave_type_id": req.LeaveTypeID,
		"start_date":    req.StartDate.Format("2006-01-02"),
		"end_date":      req.EndDate.Format("2006-01-02"),
		"total_days":    req.TotalDays.String(),
		"status":        string(req.Status),
	}
	go func() {
		ctx := context.Background()
		if err := e.notifier.Notify(ctx, recipientID, eventType, payload); err != nil {
			e.logger.Warn("notification delivery failed",
				slog.String("recipient", recipientID),
				slog.String("event", eventType),
				slog.Any("error", err))
		}
		if err := e.audit.Record(ctx, entry); err != nil {
			e.logger.Warn("audit record failed",
				slog.String("entity_id", entry.EntityID),
				slog.String("action", entry.Action),
				slog.Any("error", err))
		}
	}()
}

func requestSnapshot(req *LeaveRequest) map[string]any {
	snap := map[string]any{
		"id":            req.ID,
		"employee_id":   req.EmployeeID,
		"leave_type_id": req.LeaveTypeID,
		"start_date":    req.StartDate.Format("2006-01-02"),
		"end_date":      req.EndDate.Format("2006-01-02"),
		"total_days":    req.TotalDays.String(),
		"status":        string(req.Status),
		"approved_by":   req.ApprovedBy,
	}
	if req.RejectionReason != "" {
		snap["rejection_reason"] = req.RejectionReason
	}
	return snap
}
