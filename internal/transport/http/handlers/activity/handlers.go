package activityhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leavetracker/internal/domain/activity"
	"leavetracker/internal/domain/auth"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
	"leavetracker/internal/transport/http/shared"
)

type ActivityLog interface {
	Count(ctx context.Context, filter activity.Filter) (int, error)
	List(ctx context.Context, filter activity.Filter, limit, offset int) ([]activity.Entry, error)
}

type Handler struct {
	Log ActivityLog
	log *zap.Logger
}

func NewHandler(logs ActivityLog, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{Log: logs, log: log.Named("activity.handler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/activity", h.handleList)
}

type listResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	filter := activity.Filter{
		UserID: shared.QueryInt64(r, "userId"),
		Action: strings.TrimSpace(q.Get("action")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	v := shared.NewValidator()
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
	// "to" names a whole day; the query bound is exclusive.
	if !filter.To.IsZero() {
		filter.To = filter.To.AddDate(0, 0, 1)
	}

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Log.Count(r.Context(), filter)
	if err != nil {
		h.log.Error("count activity failed", zap.String("request_id", reqID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list activity", reqID)
		return
	}
	entries, err := h.Log.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		h.log.Error("list activity failed", zap.String("request_id", reqID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list activity", reqID)
		return
	}
	api.Success(w, listResponse{Entries: entries, Total: total, Limit: page.Limit, Offset: page.Offset}, reqID)
}
