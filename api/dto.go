/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES AND AMOUNTS:
  Dates travel as ISO strings ("2006-01-02"). Day amounts travel as decimal
  strings so clients never see float artifacts.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SubmitRequest is the request body for creating a leave request.
type SubmitRequest struct {
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason,omitempty"`
}

// DecisionRequest is the request body for approving or rejecting.
type DecisionRequest struct {
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	LeaveTypeID     string `json:"leave_type_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TotalDays       string `json:"total_days"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	RequestedAt     string `json:"requested_at"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	ApprovedAt      string `json:"approved_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// BalanceDTO represents a balance record in API responses.
type BalanceDTO struct {
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	Year        int    `json:"year"`
	Allocated   string `json:"allocated_days"`
	Used        string `json:"used_days"`
	Pending     string `json:"pending_days"`
	Remaining   string `json:"remaining_days"`
}

// LeaveTypeDTO represents a catalog entry in API responses.
type LeaveTypeDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	MaxDaysPerYear    *string `json:"max_days_per_year,omitempty"`
	RequiresApproval  bool    `json:"requires_approval"`
	AdvanceNoticeDays int     `json:"advance_notice_days"`
	IsPaid            bool    `json:"is_paid"`
	CarryOverAllowed  bool    `json:"carry_over_allowed"`
}

// HolidayDTO represents a configured holiday.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateHolidayRequest is the request body for adding a holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

const dateFormat = "2006-01-02"

func toRequestDTO(req *leave.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		LeaveTypeID:     req.LeaveTypeID,
		StartDate:       req.StartDate.Format(dateFormat),
		EndDate:         req.EndDate.Format(dateFormat),
		TotalDays:       req.TotalDays.String(),
		Status:          string(req.Status),
		Reason:          req.Reason,
		RequestedAt:     req.RequestedAt.Format(time.RFC3339),
		ApprovedBy:      req.ApprovedBy,
		RejectionReason: req.RejectionReason,
	}
	if req.ApprovedAt != nil {
		dto.ApprovedAt = req.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func toBalanceDTO(bal *leave.LeaveBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:  bal.EmployeeID,
		LeaveTypeID: bal.LeaveTypeID,
		Year:        bal.Year,
		Allocated:   bal.Allocated.String(),
		Used:        bal.Used.String(),
		Pending:     bal.Pending.String(),
		Remaining:   bal.Remaining.String(),
	}
}

func toTypeDTO(lt *leave.LeaveType) LeaveTypeDTO {
	dto := LeaveTypeDTO{
		ID:                lt.ID,
		Name:              lt.Name,
		RequiresApproval:  lt.RequiresApproval,
		AdvanceNoticeDays: lt.AdvanceNoticeDays,
		IsPaid:            lt.IsPaid,
		CarryOverAllowed:  lt.CarryOverAllowed,
	}
	if lt.MaxDaysPerYear != nil {
		s := lt.MaxDaysPerYear.String()
		dto.MaxDaysPerYear = &s
	}
	return dto
}

func toHolidayDTO(h *leave.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:   h.ID,
		Date: h.Date.Format(dateFormat),
		Name: h.Name,
	}
}
