/*
handlers.go - HTTP handlers for the leave engine

PURPOSE:
  Translates HTTP requests into engine calls and engine errors into HTTP
  status codes. No business logic lives here.

ERROR MAPPING:
  not found            -> 404
  already processed    -> 409
  client input errors  -> 400
  everything else      -> 500

SEE ALSO:
  - server.go: route definitions
  - leave/errors.go: the error taxonomy mapped here
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/leave-engine/leave"
)

// Handler carries the engine and its collaborators.
type Handler struct {
	Engine   *leave.Engine
	Catalog  *leave.Catalog
	Holidays *leave.HolidaySet
	Store    leave.HolidayStore
}

func NewHandler(engine *leave.Engine, catalog *leave.Catalog, holidays *leave.HolidaySet, store leave.HolidayStore) *Handler {
	return &Handler{Engine: engine, Catalog: catalog, Holidays: holidays, Store: store}
}

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

// SubmitRequest handles POST /api/requests.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.EmployeeID == "" || body.LeaveTypeID == "" {
		writeJSONError(w, http.StatusBadRequest, "employee_id and leave_type_id are required")
		return
	}
	start, err := time.ParseInLocation(dateFormat, body.StartDate, time.UTC)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.ParseInLocation(dateFormat, body.EndDate, time.UTC)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	req, err := h.Engine.Submit(r.Context(), leave.SubmitInput{
		EmployeeID:  body.EmployeeID,
		LeaveTypeID: body.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      body.Reason,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// GetRequest handles GET /api/requests/{id}.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Engine.Request(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ListPendingRequests handles GET /api/requests/pending.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Engine.PendingRequests(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ApproveRequest handles POST /api/requests/{id}/approve.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionApproved)
}

// RejectRequest handles POST /api/requests/{id}/reject.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision leave.Decision) {
	var body DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ApproverID == "" {
		writeJSONError(w, http.StatusBadRequest, "approver_id is required")
		return
	}

	req, err := h.Engine.Process(r.Context(), leave.ProcessInput{
		RequestID:  chi.URLParam(r, "id"),
		ApproverID: body.ApproverID,
		Decision:   decision,
		Reason:     body.Reason,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// =============================================================================
// EMPLOYEE QUERIES
// =============================================================================

// ListEmployeeRequests handles GET /api/employees/{id}/requests.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Engine.EmployeeRequests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// GetBalances handles GET /api/employees/{id}/balances?year=2024.
// Year defaults to the current year.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		year = parsed
	}

	bals, err := h.Engine.Balances(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	dtos := make([]BalanceDTO, 0, len(bals))
	for _, b := range bals {
		dtos = append(dtos, toBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CATALOG AND HOLIDAYS
// =============================================================================

// ListTypes handles GET /api/types.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.ActiveTypes(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	dtos := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		dtos = append(dtos, toTypeDTO(lt))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListHolidays handles GET /api/holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday handles POST /api/holidays. The new date takes effect for
// business-day counts immediately.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var body CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := time.ParseInLocation(dateFormat, body.Date, time.UTC)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	holiday := &leave.Holiday{ID: uuid.NewString(), Date: date, Name: body.Name}
	if err := h.Store.PutHoliday(r.Context(), holiday); err != nil {
		writeEngineError(w, err)
		return
	}
	h.Holidays.Add(date)
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday handles DELETE /api/holidays/{id}.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	for _, hol := range holidays {
		if hol.ID == id {
			if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
				writeEngineError(w, err)
				return
			}
			h.Holidays.Remove(hol.Date)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "holiday not found")
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func toRequestDTOs(reqs []*leave.LeaveRequest) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, 0, len(reqs))
	for _, req := range reqs {
		dtos = append(dtos, toRequestDTO(req))
	}
	return dtos
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, leave.ErrAlreadyProcessed):
		writeJSONError(w, http.StatusConflict, err.Error())
	case leave.IsClientError(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
