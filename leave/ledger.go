/*
ledger.go - Balance ledger with lazy initialization and atomic mutations

PURPOSE:
  Owns every LeaveBalance record. All reads and writes of balances go
  through this type; the engine never touches the BalanceStore directly.

INVARIANT:
  Remaining = Allocated - Used - Pending, recomputed on every mutation.
  The ledger itself never rejects a mutation on the sign of Remaining; only
  the engine's submission-time check gates new reservations. Release is the
  one guarded operation: pending can never go negative.

CONCURRENCY:
  Each mutation is serialized per (employee, type, year) key so concurrent
  callers cannot interleave a read-modify-write on the same record. The
  engine layers its own per-employee lock on top for the
  check-then-reserve composition.

SEE ALSO:
  - engine.go: submission-time balance check
  - store.go: BalanceStore interface
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceLedger struct {
	balances BalanceStore
	types    TypeStore
	locks    *keyLock
	now      func() time.Time
}

func NewBalanceLedger(balances BalanceStore, types TypeStore) *BalanceLedger {
	return &BalanceLedger{
		balances: balances,
		types:    types,
		locks:    newKeyLock(),
		now:      time.Now,
	}
}

func balanceKey(employeeID, leaveTypeID string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveTypeID, year)
}

// GetOrInit returns the balance record for the key, creating it lazily on
// first access. A new record allocates the type's MaxDaysPerYear, or zero
// when the type has no pre-set allocation.
func (l *BalanceLedger) GetOrInit(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	key := balanceKey(employeeID, leaveTypeID, year)
	l.locks.Lock(key)
	defer l.locks.Unlock(key)

	bal, err := l.balances.GetBalance(ctx, employeeID, leaveTypeID, year)
	if err == nil {
		return bal, nil
	}
	if !errors.Is(err, ErrBalanceNotFound) {
		return nil, err
	}

	lt, err := l.types.GetType(ctx, leaveTypeID)
	if err != nil {
		return nil, err
	}
	allocated := decimal.Zero
	if lt.MaxDaysPerYear != nil {
		allocated = *lt.MaxDaysPerYear
	}

	bal = &LeaveBalance{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
		Allocated:   allocated,
		Used:        decimal.Zero,
		Pending:     decimal.Zero,
		UpdatedAt:   l.now().UTC(),
	}
	bal.Recompute()

	if err := l.balances.PutBalance(ctx, bal); err != nil {
		return nil, err
	}
	return bal, nil
}

// Reserve places a pending-day hold on the balance.
func (l *BalanceLedger) Reserve(ctx context.Context, bal *LeaveBalance, days decimal.Decimal) error {
	return l.mutate(ctx, bal, func(b *LeaveBalance) error {
		b.Pending = b.Pending.Add(days)
		return nil
	})
}

// Release removes a pending-day hold. Fails with ErrInvalidState if the hold
// would drive pending negative.
func (l *BalanceLedger) Release(ctx context.Context, bal *LeaveBalance, days decimal.Decimal) error {
	return l.mutate(ctx, bal, func(b *LeaveBalance) error {
		next := b.Pending.Sub(days)
		if next.IsNegative() {
			return fmt.Errorf("%w: releasing %s would leave pending at %s", ErrInvalidState, days, next)
		}
		b.Pending = next
		return nil
	})
}

// Commit moves days into the used counter. Paired with Release on approval.
func (l *BalanceLedger) Commit(ctx context.Context, bal *LeaveBalance, days decimal.Decimal) error {
	return l.mutate(ctx, bal, func(b *LeaveBalance) error {
		b.Used = b.Used.Add(days)
		return nil
	})
}

// BalancesFor returns all of an employee's balance records for a year.
func (l *BalanceLedger) BalancesFor(ctx context.Context, employeeID string, year int) ([]*LeaveBalance, error) {
	return l.balances.BalancesByEmployee(ctx, employeeID, year)
}

// mutate applies fn under the record's key lock. It re-reads the stored
// record first so a caller holding a stale copy cannot clobber a concurrent
// update; the result is copied back into the caller's handle.
func (l *BalanceLedger) mutate(ctx context.Context, bal *LeaveBalance, fn func(*LeaveBalance) error) error {
	key := balanceKey(bal.EmployeeID, bal.LeaveTypeID, bal.Year)
	l.locks.Lock(key)
	defer l.locks.Unlock(key)

	current, err := l.balances.GetBalance(ctx, bal.EmployeeID, bal.LeaveTypeID, bal.Year)
	if err != nil {
		if !errors.Is(err, ErrBalanceNotFound) {
			return err
		}
		current = bal
	}

	if err := fn(current); err != nil {
		return err
	}
	current.Recompute()
	current.UpdatedAt = l.now().UTC()
	if err := l.balances.PutBalance(ctx, current); err != nil {
		return err
	}
	*bal = *current
	return nil
}
