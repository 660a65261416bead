package directoryhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/directory"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
	"leavetracker/internal/transport/http/shared"
)

type DirectoryService interface {
	CreateUser(ctx context.Context, actor auth.Actor, in directory.CreateUserInput) (directory.CreatedUser, error)
	ListUsers(ctx context.Context, actor auth.Actor, filter directory.UserFilter) (directory.UserList, error)
	GetUser(ctx context.Context, actor auth.Actor, id int64) (directory.User, error)
	SetActive(ctx context.Context, actor auth.Actor, id int64, active bool) error
	ResetPassword(ctx context.Context, actor auth.Actor, id int64) (string, error)
	Profile(ctx context.Context, actor auth.Actor) (directory.User, error)
	UpdateProfile(ctx context.Context, actor auth.Actor, in directory.ProfileUpdate) (directory.User, error)
	ChangePassword(ctx context.Context, actor auth.Actor, in directory.PasswordChange) error
	ListDepartments(ctx context.Context) ([]directory.Department, error)
	CreateDepartment(ctx context.Context, actor auth.Actor, in directory.DepartmentInput) (directory.Department, error)
}

// BalanceProvisioner creates the current year's leave balances for a user.
type BalanceProvisioner interface {
	ProvisionBalances(ctx context.Context, userID int64) (int, error)
}

type Handler struct {
	Service     DirectoryService
	Provisioner BalanceProvisioner
	log         *zap.Logger
}

func NewHandler(service DirectoryService, provisioner BalanceProvisioner, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{Service: service, Provisioner: provisioner, log: log.Named("directory.handler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/", h.handleListUsers)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreateUser)
		r.Get("/{userID}", h.handleGetUser)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/{userID}/activate", h.handleSetActive(true))
			r.Post("/{userID}/deactivate", h.handleSetActive(false))
			r.Post("/{userID}/reset-password", h.handleResetPassword)
			r.Post("/{userID}/balances/provision", h.handleProvision)
		})
	})
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.handleProfile)
		r.Put("/", h.handleUpdateProfile)
		r.Post("/password", h.handleChangePassword)
	})
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreateDepartment)
	})
}

type createUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	EmployeeCode string `json:"employeeId"`
	Phone        string `json:"phone"`
	DepartmentID *int64 `json:"departmentId"`
	ManagerID    *int64 `json:"managerId"`
	Role         string `json:"role"`
	JoinDate     string `json:"joinDate"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload createUserRequest
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	in := directory.CreateUserInput{
		Name:         payload.Name,
		Email:        payload.Email,
		EmployeeCode: payload.EmployeeCode,
		Phone:        payload.Phone,
		DepartmentID: payload.DepartmentID,
		ManagerID:    payload.ManagerID,
		Role:         strings.ToLower(strings.TrimSpace(payload.Role)),
	}
	if strings.TrimSpace(payload.JoinDate) != "" {
		v := shared.NewValidator()
		joined, ok := v.Date("joinDate", payload.JoinDate)
		if v.Reject(w, reqID) {
			return
		}
		if ok {
			in.JoinDate = &joined
		}
	}

	created, err := h.Service.CreateUser(r.Context(), actor, in)
	if err != nil {
		h.fail(w, r, err, "failed to create user")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.ListUsers(r.Context(), actor, directory.UserFilter{
		Status:       strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Role:         strings.ToLower(strings.TrimSpace(q.Get("role"))),
		DepartmentID: shared.QueryInt64(r, "departmentId"),
		Search:       strings.TrimSpace(q.Get("search")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		h.fail(w, r, err, "failed to list users")
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	user, err := h.Service.GetUser(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err, "failed to load user")
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.GetActor(r.Context())
		id, ok := h.userID(w, r)
		if !ok {
			return
		}
		if err := h.Service.SetActive(r.Context(), actor, id, active); err != nil {
			h.fail(w, r, err, "failed to update user status")
			return
		}
		status := directory.StatusActive
		if !active {
			status = directory.StatusInactive
		}
		api.Success(w, map[string]any{"id": id, "status": status}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	password, err := h.Service.ResetPassword(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err, "failed to reset password")
		return
	}
	api.Success(w, map[string]any{"id": id, "temporaryPassword": password}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if _, err := h.Service.GetUser(r.Context(), actor, id); err != nil {
		h.fail(w, r, err, "failed to load user")
		return
	}
	n, err := h.Provisioner.ProvisionBalances(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "failed to provision balances")
		return
	}
	api.Success(w, map[string]any{"userId": id, "created": n}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	user, err := h.Service.Profile(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err, "failed to load profile")
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload directory.ProfileUpdate
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	user, err := h.Service.UpdateProfile(r.Context(), actor, payload)
	if err != nil {
		h.fail(w, r, err, "failed to update profile")
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload directory.PasswordChange
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if err := h.Service.ChangePassword(r.Context(), actor, payload); err != nil {
		h.fail(w, r, err, "failed to change password")
		return
	}
	api.Success(w, map[string]string{"status": "password_updated"}, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to list departments")
		return
	}
	api.Success(w, deps, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload directory.DepartmentInput
	if err := shared.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	dep, err := h.Service.CreateDepartment(r.Context(), actor, payload)
	if err != nil {
		h.fail(w, r, err, "failed to create department")
		return
	}
	api.Created(w, dep, reqID)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := shared.URLID(r, "userID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid user id", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	reqID := middleware.GetRequestID(r.Context())
	var verr *directory.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			api.FailWithDetails(w, http.StatusBadRequest, verr.Code, verr.Message, map[string]any{"fields": verr.Fields}, reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, verr.Code, verr.Message, reqID)
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	case errors.Is(err, directory.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
	case errors.Is(err, directory.ErrConflict):
		api.Fail(w, http.StatusConflict, "duplicate_user", "Email or employee ID already exists.", reqID)
	case errors.Is(err, directory.ErrDepartmentExists):
		api.Fail(w, http.StatusConflict, "duplicate_department", "Department already exists.", reqID)
	default:
		h.log.Error(message, zap.String("request_id", reqID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", message, reqID)
	}
}
