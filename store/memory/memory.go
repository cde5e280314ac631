// Package memory provides an in-memory RecordStore implementation
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// Store implements leave.RecordStore with RWMutex-guarded maps.
// Reads return copies so callers cannot mutate stored records in place.
type Store struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
	balances map[balanceKey]leave.LeaveBalance
	types    map[string]leave.LeaveType
	holidays map[string]leave.Holiday
}

type balanceKey struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

func New() *Store {
	return &Store{
		requests: make(map[string]leave.LeaveRequest),
		balances: make(map[balanceKey]leave.LeaveBalance),
		types:    make(map[string]leave.LeaveType),
		holidays: make(map[string]leave.Holiday),
	}
}

var _ leave.RecordStore = (*Store)(nil)

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &req, nil
}

func (s *Store) PutRequest(_ context.Context, req *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) RequestsByEmployee(_ context.Context, employeeID string) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.LeaveRequest
	for _, req := range s.requests {
		if req.EmployeeID == employeeID {
			r := req
			out = append(out, &r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *Store) RequestsByStatus(_ context.Context, status leave.RequestStatus) ([]*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.LeaveRequest
	for _, req := range s.requests {
		if req.Status == status {
			r := req
			out = append(out, &r)
		}
	}
	sortRequests(out)
	return out, nil
}

func sortRequests(reqs []*leave.LeaveRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].StartDate.Equal(reqs[j].StartDate) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].StartDate.Before(reqs[j].StartDate)
	})
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) GetBalance(_ context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bal, ok := s.balances[balanceKey{employeeID, leaveTypeID, year}]
	if !ok {
		return nil, leave.ErrBalanceNotFound
	}
	return &bal, nil
}

func (s *Store) PutBalance(_ context.Context, bal *leave.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{bal.EmployeeID, bal.LeaveTypeID, bal.Year}] = *bal
	return nil
}

func (s *Store) BalancesByEmployee(_ context.Context, employeeID string, year int) ([]*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.LeaveBalance
	for k, bal := range s.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			b := bal
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveTypeID < out[j].LeaveTypeID })
	return out, nil
}

// =============================================================================
// TYPES
// =============================================================================

func (s *Store) GetType(_ context.Context, id string) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lt, ok := s.types[id]
	if !ok {
		return nil, leave.ErrTypeNotFound
	}
	return &lt, nil
}

func (s *Store) ListTypes(_ context.Context) ([]*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.LeaveType
	for _, lt := range s.types {
		t := lt
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PutType(_ context.Context, lt *leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[lt.ID] = *lt
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) ListHolidays(_ context.Context) ([]*leave.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*leave.Holiday
	for _, h := range s.holidays {
		hh := h
		out = append(out, &hh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) PutHoliday(_ context.Context, h *leave.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[h.ID] = *h
	return nil
}

func (s *Store) DeleteHoliday(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holidays, id)
	return nil
}
