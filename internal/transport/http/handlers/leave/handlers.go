package leavehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/leave"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
	"leavetracker/internal/transport/http/shared"
)

type LeaveService interface {
	Submit(ctx context.Context, actor auth.Actor, in leave.SubmitInput) (leave.LeaveRequest, error)
	Decide(ctx context.Context, actor auth.Actor, in leave.DecisionInput) (leave.DecisionResult, error)
	Balances(ctx context.Context, actor auth.Actor, userID int64, year int) ([]leave.LeaveBalance, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error)
	CreateType(ctx context.Context, actor auth.Actor, payload leave.LeaveType) (leave.LeaveType, error)
	ListHolidays(ctx context.Context, year int) ([]leave.Holiday, error)
	CreateHoliday(ctx context.Context, actor auth.Actor, payload leave.Holiday) (leave.Holiday, error)
	GetRequest(ctx context.Context, actor auth.Actor, id int64) (leave.LeaveRequest, error)
	ListRequests(ctx context.Context, actor auth.Actor, filter leave.RequestFilter) (leave.RequestList, error)
	Summary(ctx context.Context, actor auth.Actor, year int) (leave.Summary, error)
	Calendar(ctx context.Context, actor auth.Actor, year, month int) (leave.Calendar, error)
}

type Handler struct {
	Service LeaveService
	log     *zap.Logger
}

func NewHandler(service LeaveService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{Service: service, log: log.Named("leave.handler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/types", h.handleCreateType)
		r.Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/holidays", h.handleCreateHoliday)
		r.Get("/balances", h.handleBalances)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleSubmit)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/requests/{requestID}/decision", h.handleDecide)
		r.Get("/summary", h.handleSummary)
		r.Get("/calendar", h.handleCalendar)
	})
}

type submitRequest struct {
	LeaveTypeID int64  `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason"`
	ContactInfo string `json:"contactInfo"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type leaveTypeRequest struct {
	Name                  string `json:"name"`
	DefaultAllocation     int    `json:"defaultAllocation"`
	CarryForwardLimit     int    `json:"carryForwardLimit"`
	MinNoticeDays         int    `json:"minNoticeDays"`
	RequiresDocumentation bool   `json:"requiresDocumentation"`
	Status                string `json:"status"`
}

type holidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	AppliesTo   string `json:"appliesTo"`
	Description string `json:"description"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload submitRequest
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	start, end := optionalDate(v, "startDate", payload.StartDate), optionalDate(v, "endDate", payload.EndDate)
	if v.Reject(w, reqID) {
		return
	}

	req, err := h.Service.Submit(r.Context(), actor, leave.SubmitInput{
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      payload.Reason,
		ContactInfo: payload.ContactInfo,
	})
	if err != nil {
		h.fail(w, r, err, "failed to submit leave request")
		return
	}
	api.Created(w, req, reqID)
}

// optionalDate leaves blank values zero so the service reports them as
// missing required fields.
func optionalDate(v *shared.Validator, field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	parsed, _ := v.Date(field, raw)
	return parsed
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	id, err := shared.URLID(r, "requestID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid request id", reqID)
		return
	}
	var payload decisionRequest
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	result, err := h.Service.Decide(r.Context(), actor, leave.DecisionInput{RequestID: id, Decision: payload.Decision, Comment: payload.Comment})
	if err != nil {
		h.fail(w, r, err, "failed to update leave request")
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	id, err := shared.URLID(r, "requestID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid request id", reqID)
		return
	}
	req, err := h.Service.GetRequest(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err, "failed to load leave request")
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	v := shared.NewValidator()
	v.Enum("status", status, []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected}, "must be pending, approved or rejected")
	if v.Reject(w, reqID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.ListRequests(r.Context(), actor, leave.RequestFilter{
		UserID:       shared.QueryInt64(r, "userId"),
		DepartmentID: shared.QueryInt64(r, "departmentId"),
		LeaveTypeID:  shared.QueryInt64(r, "leaveTypeId"),
		Status:       status,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		h.fail(w, r, err, "failed to list leave requests")
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	balances, err := h.Service.Balances(r.Context(), actor, shared.QueryInt64(r, "userId"), shared.QueryInt(r, "year", 0))
	if err != nil {
		h.fail(w, r, err, "failed to load balances")
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	summary, err := h.Service.Summary(r.Context(), actor, shared.QueryInt(r, "year", 0))
	if err != nil {
		h.fail(w, r, err, "failed to load summary")
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	cal, err := h.Service.Calendar(r.Context(), actor, shared.QueryInt(r, "year", 0), shared.QueryInt(r, "month", 0))
	if err != nil {
		h.fail(w, r, err, "failed to load calendar")
		return
	}
	api.Success(w, cal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("status") == leave.TypeStatusActive
	types, err := h.Service.ListTypes(r.Context(), activeOnly)
	if err != nil {
		h.fail(w, r, err, "failed to list leave types")
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload leaveTypeRequest
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	created, err := h.Service.CreateType(r.Context(), actor, leave.LeaveType{
		Name:                  payload.Name,
		DefaultAllocation:     payload.DefaultAllocation,
		CarryForwardLimit:     payload.CarryForwardLimit,
		MinNoticeDays:         payload.MinNoticeDays,
		RequiresDocumentation: payload.RequiresDocumentation,
		Status:                payload.Status,
	})
	if err != nil {
		h.fail(w, r, err, "failed to create leave type")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.ListHolidays(r.Context(), shared.QueryInt(r, "year", 0))
	if err != nil {
		h.fail(w, r, err, "failed to list holidays")
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload holidayRequest
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	date := optionalDate(v, "date", payload.Date)
	if v.Reject(w, reqID) {
		return
	}

	created, err := h.Service.CreateHoliday(r.Context(), actor, leave.Holiday{
		Name:        payload.Name,
		Date:        date,
		Type:        strings.ToLower(strings.TrimSpace(payload.Type)),
		AppliesTo:   payload.AppliesTo,
		Description: payload.Description,
	})
	if err != nil {
		h.fail(w, r, err, "failed to create holiday")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	reqID := middleware.GetRequestID(r.Context())
	var verr *leave.ValidationError
	switch {
	case errors.As(err, &verr):
		api.Fail(w, http.StatusBadRequest, verr.Code, verr.Message, reqID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
	case errors.Is(err, leave.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
	case errors.Is(err, leave.ErrConflict):
		api.Fail(w, http.StatusConflict, "not_pending", "leave request has already been decided", reqID)
	case errors.Is(err, leave.ErrInvalidDecision):
		api.Fail(w, http.StatusBadRequest, "invalid_decision", err.Error(), reqID)
	default:
		h.log.Error(message, zap.String("request_id", reqID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", message, reqID)
	}
}
