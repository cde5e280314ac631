package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	catalog := leave.NewCatalog(store)
	require.NoError(t, catalog.Seed(context.Background(), nil))

	holidays := leave.NewHolidaySet()
	ledger := leave.NewBalanceLedger(store, store)
	calendar := leave.NewBusinessCalendar(holidays)
	engine := leave.NewEngine(store, ledger, calendar, nil, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	handler := NewHandler(engine, catalog, holidays, store)
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func submitRequest(t *testing.T, server *httptest.Server, employee, typeID, start, end string) LeaveRequestDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/requests", SubmitRequest{
		EmployeeID:  employee,
		LeaveTypeID: typeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "test",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[LeaveRequestDTO](t, resp)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitRequest_Created(t *testing.T) {
	server, _ := newTestServer(t)

	dto := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "5", dto.TotalDays)
	assert.Equal(t, "2024-06-03", dto.StartDate)
	assert.Equal(t, "2024-06-07", dto.EndDate)
}

func TestSubmitRequest_BadInput(t *testing.T) {
	server, _ := newTestServer(t)

	cases := []struct {
		name string
		body SubmitRequest
	}{
		{"missing employee", SubmitRequest{LeaveTypeID: "annual", StartDate: "2024-06-03", EndDate: "2024-06-07"}},
		{"missing type", SubmitRequest{EmployeeID: "emp-1", StartDate: "2024-06-03", EndDate: "2024-06-07"}},
		{"bad start date", SubmitRequest{EmployeeID: "emp-1", LeaveTypeID: "annual", StartDate: "June 3", EndDate: "2024-06-07"}},
		{"bad end date", SubmitRequest{EmployeeID: "emp-1", LeaveTypeID: "annual", StartDate: "2024-06-03", EndDate: "soon"}},
		{"inverted range", SubmitRequest{EmployeeID: "emp-1", LeaveTypeID: "annual", StartDate: "2024-06-07", EndDate: "2024-06-03"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, server.URL+"/api/requests", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitRequest_MalformedJSON(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/requests", "application/json",
		bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRequest_DomainErrorsMapToStatus(t *testing.T) {
	server, _ := newTestServer(t)

	// Unknown leave type -> 404.
	resp := doJSON(t, http.MethodPost, server.URL+"/api/requests", SubmitRequest{
		EmployeeID: "emp-1", LeaveTypeID: "sabbatical",
		StartDate: "2024-06-03", EndDate: "2024-06-07",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Overlap -> 400.
	submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")
	resp = doJSON(t, http.MethodPost, server.URL+"/api/requests", SubmitRequest{
		EmployeeID: "emp-1", LeaveTypeID: "annual",
		StartDate: "2024-06-05", EndDate: "2024-06-12",
	})
	body := decode[errorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error, "overlap")

	// Insufficient balance -> 400.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/requests", SubmitRequest{
		EmployeeID: "emp-1", LeaveTypeID: "annual",
		StartDate: "2024-07-01", EndDate: "2024-07-26",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DECISIONS
// =============================================================================

func TestApproveRequest(t *testing.T) {
	server, _ := newTestServer(t)
	submitted := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", server.URL, submitted.ID),
		DecisionRequest{ApproverID: "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[LeaveRequestDTO](t, resp)
	assert.Equal(t, "approved", dto.Status)
	assert.Equal(t, "mgr-1", dto.ApprovedBy)
	assert.NotEmpty(t, dto.ApprovedAt)
}

func TestRejectRequest(t *testing.T) {
	server, _ := newTestServer(t)
	submitted := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/reject", server.URL, submitted.ID),
		DecisionRequest{ApproverID: "mgr-1", Reason: "coverage gap"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[LeaveRequestDTO](t, resp)
	assert.Equal(t, "rejected", dto.Status)
	assert.Equal(t, "coverage gap", dto.RejectionReason)
}

func TestDecide_ErrorStatuses(t *testing.T) {
	server, _ := newTestServer(t)
	submitted := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	// Missing approver -> 400.
	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", server.URL, submitted.ID),
		DecisionRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown request -> 404.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/requests/missing/approve",
		DecisionRequest{ApproverID: "mgr-1"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Double decision -> 409.
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", server.URL, submitted.ID),
		DecisionRequest{ApproverID: "mgr-1"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/reject", server.URL, submitted.ID),
		DecisionRequest{ApproverID: "mgr-2"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestGetRequest(t *testing.T) {
	server, _ := newTestServer(t)
	submitted := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	resp, err := http.Get(server.URL + "/api/requests/" + submitted.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decode[LeaveRequestDTO](t, resp)
	assert.Equal(t, submitted.ID, dto.ID)

	resp, err = http.Get(server.URL + "/api/requests/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPendingRequests(t *testing.T) {
	server, _ := newTestServer(t)
	a := submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")
	b := submitRequest(t, server, "emp-2", "sick", "2024-06-10", "2024-06-11")

	resp := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", server.URL, a.ID),
		DecisionRequest{ApproverID: "mgr-1"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listResp, err := http.Get(server.URL + "/api/requests/pending")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	pending := decode[[]LeaveRequestDTO](t, listResp)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}

func TestListEmployeeRequests(t *testing.T) {
	server, _ := newTestServer(t)
	submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")
	submitRequest(t, server, "emp-1", "sick", "2024-07-01", "2024-07-02")
	submitRequest(t, server, "emp-2", "annual", "2024-06-03", "2024-06-07")

	resp, err := http.Get(server.URL + "/api/employees/emp-1/requests")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reqs := decode[[]LeaveRequestDTO](t, resp)
	assert.Len(t, reqs, 2)
}

func TestGetBalances(t *testing.T) {
	server, _ := newTestServer(t)
	submitRequest(t, server, "emp-1", "annual", "2024-06-03", "2024-06-07")

	resp, err := http.Get(server.URL + "/api/employees/emp-1/balances?year=2024")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	balances := decode[[]BalanceDTO](t, resp)
	require.Len(t, balances, 1)
	assert.Equal(t, "annual", balances[0].LeaveTypeID)
	assert.Equal(t, "21", balances[0].Allocated)
	assert.Equal(t, "5", balances[0].Pending)
	assert.Equal(t, "16", balances[0].Remaining)

	// A year with no activity returns an empty list, not an error.
	resp, err = http.Get(server.URL + "/api/employees/emp-1/balances?year=1999")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]BalanceDTO](t, resp))

	// Bad year -> 400.
	resp, err = http.Get(server.URL + "/api/employees/emp-1/balances?year=soon")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTypes(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/types")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	types := decode[[]LeaveTypeDTO](t, resp)
	assert.Len(t, types, 4)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_CreateListDelete(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2024-07-04", Name: "Independence Day"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[HolidayDTO](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2024-07-04", created.Date)

	listResp, err := http.Get(server.URL + "/api/holidays")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	holidays := decode[[]HolidayDTO](t, listResp)
	require.Len(t, holidays, 1)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/holidays/"+created.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	listResp, err = http.Get(server.URL + "/api/holidays")
	require.NoError(t, err)
	assert.Empty(t, decode[[]HolidayDTO](t, listResp))
}

func TestHolidays_DeleteUnknown(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/holidays/missing", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHolidays_AffectBusinessDayCount(t *testing.T) {
	// GIVEN: July 4 2024 registered through the API
	// WHEN: a request spans Jul 1 - Jul 5
	// THEN: the computed total excludes the holiday

	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2024-07-04", Name: "Independence Day"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := submitRequest(t, server, "emp-1", "annual", "2024-07-01", "2024-07-05")
	assert.Equal(t, "4", dto.TotalDays)
}

func TestHolidays_BadDate(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/holidays",
		CreateHolidayRequest{Date: "July 4th", Name: "nope"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
