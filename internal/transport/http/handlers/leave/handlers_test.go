package leavehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/leave"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
)

type fakeService struct {
	submitFn   func(in leave.SubmitInput) (leave.LeaveRequest, error)
	decideFn   func(in leave.DecisionInput) (leave.DecisionResult, error)
	getFn      func(id int64) (leave.LeaveRequest, error)
	listFilter leave.RequestFilter
	calYear    int
	calMonth   int
}

func (f *fakeService) Submit(ctx context.Context, actor auth.Actor, in leave.SubmitInput) (leave.LeaveRequest, error) {
	return f.submitFn(in)
}

func (f *fakeService) Decide(ctx context.Context, actor auth.Actor, in leave.DecisionInput) (leave.DecisionResult, error) {
	return f.decideFn(in)
}

func (f *fakeService) Balances(ctx context.Context, actor auth.Actor, userID int64, year int) ([]leave.LeaveBalance, error) {
	return []leave.LeaveBalance{{UserID: actor.UserID, LeaveTypeID: 1, Year: year, TotalAllocation: 20, RemainingDays: 20}}, nil
}

func (f *fakeService) ListTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return []leave.LeaveType{{ID: 1, Name: "Annual Leave", Status: leave.TypeStatusActive}}, nil
}

func (f *fakeService) CreateType(ctx context.Context, actor auth.Actor, payload leave.LeaveType) (leave.LeaveType, error) {
	payload.ID = 9
	return payload, nil
}

func (f *fakeService) ListHolidays(ctx context.Context, year int) ([]leave.Holiday, error) {
	return nil, nil
}

func (f *fakeService) CreateHoliday(ctx context.Context, actor auth.Actor, payload leave.Holiday) (leave.Holiday, error) {
	payload.ID = 4
	return payload, nil
}

func (f *fakeService) GetRequest(ctx context.Context, actor auth.Actor, id int64) (leave.LeaveRequest, error) {
	return f.getFn(id)
}

func (f *fakeService) ListRequests(ctx context.Context, actor auth.Actor, filter leave.RequestFilter) (leave.RequestList, error) {
	f.listFilter = filter
	return leave.RequestList{}, nil
}

func (f *fakeService) Summary(ctx context.Context, actor auth.Actor, year int) (leave.Summary, error) {
	return leave.Summary{Year: year}, nil
}

func (f *fakeService) Calendar(ctx context.Context, actor auth.Actor, year, month int) (leave.Calendar, error) {
	f.calYear, f.calMonth = year, month
	return leave.Calendar{Year: year, Month: month}, nil
}

var (
	employee = auth.Actor{UserID: 7, Name: "Ava", Role: auth.RoleEmployee}
	admin    = auth.Actor{UserID: 1, Name: "Root", Role: auth.RoleAdmin}
)

func serve(svc *fakeService, actor auth.Actor, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	NewHandler(svc, nil).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSubmitPassesDatesThrough(t *testing.T) {
	var got leave.SubmitInput
	svc := &fakeService{submitFn: func(in leave.SubmitInput) (leave.LeaveRequest, error) {
		got = in
		return leave.LeaveRequest{ID: 11, Status: leave.StatusPending}, nil
	}}

	rec := serve(svc, employee, http.MethodPost, "/leave/requests",
		`{"leaveTypeId":1,"startDate":"2025-03-10","endDate":"2025-03-14","reason":"Family trip"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(1), got.LeaveTypeID)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), got.EndDate)
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "malformed date",
			body:   `{"leaveTypeId":1,"startDate":"10/03/2025","endDate":"2025-03-14","reason":"x"}`,
			status: http.StatusBadRequest,
			code:   "validation_error",
		},
		{
			name:    "service validation is shown verbatim",
			body:    `{"leaveTypeId":1,"startDate":"2025-03-10","endDate":"2025-03-14","reason":"x"}`,
			err:     &leave.ValidationError{Code: leave.CodeInsufficientBalance, Message: "Insufficient leave balance. You have 2 days remaining for Annual Leave."},
			status:  http.StatusBadRequest,
			code:    leave.CodeInsufficientBalance,
			message: "Insufficient leave balance. You have 2 days remaining for Annual Leave.",
		},
		{
			name:   "store failure",
			body:   `{"leaveTypeId":1,"startDate":"2025-03-10","endDate":"2025-03-14","reason":"x"}`,
			err:    errors.New("insert failed"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
		{
			name:   "not json",
			body:   `leave please`,
			status: http.StatusBadRequest,
			code:   "invalid_payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{submitFn: func(in leave.SubmitInput) (leave.LeaveRequest, error) {
				return leave.LeaveRequest{}, tc.err
			}}
			rec := serve(svc, employee, http.MethodPost, "/leave/requests", tc.body)

			require.Equal(t, tc.status, rec.Code)
			env := envelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, env.Error.Message)
			}
		})
	}
}

func TestSubmitBlankDatesReachService(t *testing.T) {
	called := false
	svc := &fakeService{submitFn: func(in leave.SubmitInput) (leave.LeaveRequest, error) {
		called = true
		assert.True(t, in.StartDate.IsZero())
		return leave.LeaveRequest{}, &leave.ValidationError{Code: leave.CodeRequiredFields, Message: "Please fill in all required fields."}
	}}
	rec := serve(svc, employee, http.MethodPost, "/leave/requests", `{"leaveTypeId":1,"startDate":"","endDate":"","reason":""}`)

	assert.True(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all required fields.", envelope(t, rec).Error.Message)
}

func TestDecideStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		actor  auth.Actor
		err    error
		status int
	}{
		{name: "approved", actor: admin, status: http.StatusOK},
		{name: "employee cannot decide", actor: employee, status: http.StatusForbidden},
		{name: "already decided", actor: admin, err: leave.ErrConflict, status: http.StatusConflict},
		{name: "unknown request", actor: admin, err: leave.ErrNotFound, status: http.StatusNotFound},
		{name: "bad decision", actor: admin, err: leave.ErrInvalidDecision, status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var got leave.DecisionInput
			svc := &fakeService{decideFn: func(in leave.DecisionInput) (leave.DecisionResult, error) {
				got = in
				if tc.err != nil {
					return leave.DecisionResult{}, tc.err
				}
				return leave.DecisionResult{Request: leave.LeaveRequest{ID: in.RequestID, Status: leave.StatusApproved}, BalanceAdjusted: true}, nil
			}}
			rec := serve(svc, tc.actor, http.MethodPost, "/leave/requests/42/decision", `{"decision":"approve","comment":"ok"}`)

			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusForbidden {
				assert.Equal(t, int64(42), got.RequestID)
				assert.Equal(t, "approve", got.Decision)
			}
		})
	}
}

func TestGetRequestForbiddenAndBadID(t *testing.T) {
	svc := &fakeService{getFn: func(id int64) (leave.LeaveRequest, error) {
		return leave.LeaveRequest{}, leave.ErrForbidden
	}}

	rec := serve(svc, employee, http.MethodGet, "/leave/requests/5", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(svc, employee, http.MethodGet, "/leave/requests/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", envelope(t, rec).Error.Code)
}

func TestListRequestsFilters(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, admin, http.MethodGet, "/leave/requests?status=Pending&departmentId=3&userId=all&limit=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leave.StatusPending, svc.listFilter.Status)
	assert.Equal(t, int64(3), svc.listFilter.DepartmentID)
	assert.Zero(t, svc.listFilter.UserID)
	assert.Equal(t, 200, svc.listFilter.Limit)

	rec = serve(svc, admin, http.MethodGet, "/leave/requests?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogRoutesRequireAdmin(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, employee, http.MethodPost, "/leave/types", `{"name":"Study Leave","defaultAllocation":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(svc, admin, http.MethodPost, "/leave/types", `{"name":"Study Leave","defaultAllocation":3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(svc, admin, http.MethodPost, "/leave/holidays", `{"name":"Founders Day","date":"2025-09-01","type":"Company"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	data, ok := envelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, leave.HolidayCompany, data["type"])
}

func TestCalendarReadsMonth(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, employee, http.MethodGet, "/leave/calendar?year=2025&month=4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, svc.calYear)
	assert.Equal(t, 4, svc.calMonth)
}
