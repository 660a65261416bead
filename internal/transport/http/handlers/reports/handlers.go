package reportshandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/reports"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
	"leavetracker/internal/transport/http/shared"
)

type ReportService interface {
	Dashboard(ctx context.Context, actor auth.Actor) (reports.Dashboard, error)
	Build(ctx context.Context, actor auth.Actor, reportType string, filter reports.Filter) (reports.Report, error)
}

type Handler struct {
	Service ReportService
	log     *zap.Logger
}

func NewHandler(service ReportService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{Service: service, log: log.Named("reports.handler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/reports/{reportType}", h.handleReport)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	dash, err := h.Service.Dashboard(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err, "failed to load dashboard")
		return
	}
	api.Success(w, dash, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = reports.FormatJSON
	}

	v := shared.NewValidator()
	v.Enum("format", format, []string{reports.FormatJSON, reports.FormatCSV, reports.FormatXLSX, reports.FormatPDF}, "must be json, csv, xlsx or pdf")
	filter := reports.Filter{
		DepartmentID: shared.QueryInt64(r, "departmentId"),
		LeaveTypeID:  shared.QueryInt64(r, "leaveTypeId"),
		Year:         shared.QueryInt(r, "year", 0),
	}
	if raw := q.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := q.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	v.DateOrder("from", filter.From, "to", filter.To)
	if v.Reject(w, reqID) {
		return
	}

	report, err := h.Service.Build(r.Context(), actor, chi.URLParam(r, "reportType"), filter)
	if err != nil {
		h.fail(w, r, err, "failed to build report")
		return
	}
	if format == reports.FormatJSON {
		api.Success(w, report, reqID)
		return
	}

	file, err := reports.Export(report, format)
	if err != nil {
		h.fail(w, r, err, "failed to export report")
		return
	}
	api.Download(w, file.Name, file.ContentType, file.Body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, reports.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
	case errors.Is(err, reports.ErrUnknownReport):
		api.Fail(w, http.StatusNotFound, "unknown_report", "report type not found", reqID)
	case errors.Is(err, reports.ErrUnknownFormat):
		api.Fail(w, http.StatusBadRequest, "unknown_format", "export format not supported", reqID)
	case errors.Is(err, reports.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must not be before start date", reqID)
	default:
		h.log.Error(message, zap.String("request_id", reqID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", message, reqID)
	}
}
