package directoryhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/domain/directory"
	"leavetracker/internal/transport/http/api"
	"leavetracker/internal/transport/http/middleware"
)

type fakeService struct {
	created    directory.CreateUserInput
	createErr  error
	setActive  map[int64]bool
	setErr     error
	users      map[int64]directory.User
	passwordIn directory.PasswordChange
	pwErr      error
	deptErr    error
}

func newFakeService() *fakeService {
	return &fakeService{
		setActive: map[int64]bool{},
		users:     map[int64]directory.User{7: {ID: 7, Name: "Ava", Role: auth.RoleEmployee}},
	}
}

func (f *fakeService) CreateUser(ctx context.Context, actor auth.Actor, in directory.CreateUserInput) (directory.CreatedUser, error) {
	f.created = in
	if f.createErr != nil {
		return directory.CreatedUser{}, f.createErr
	}
	return directory.CreatedUser{User: directory.User{ID: 20, Name: in.Name}, TemporaryPassword: "tmp-pass", BalancesProvisioned: 5}, nil
}

func (f *fakeService) ListUsers(ctx context.Context, actor auth.Actor, filter directory.UserFilter) (directory.UserList, error) {
	return directory.UserList{}, nil
}

func (f *fakeService) GetUser(ctx context.Context, actor auth.Actor, id int64) (directory.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return directory.User{}, directory.ErrForbidden
	}
	user, ok := f.users[id]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return user, nil
}

func (f *fakeService) SetActive(ctx context.Context, actor auth.Actor, id int64, active bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setActive[id] = active
	return nil
}

func (f *fakeService) ResetPassword(ctx context.Context, actor auth.Actor, id int64) (string, error) {
	return "fresh-pass", nil
}

func (f *fakeService) Profile(ctx context.Context, actor auth.Actor) (directory.User, error) {
	return f.users[actor.UserID], nil
}

func (f *fakeService) UpdateProfile(ctx context.Context, actor auth.Actor, in directory.ProfileUpdate) (directory.User, error) {
	user := f.users[actor.UserID]
	user.Phone = in.Phone
	return user, nil
}

func (f *fakeService) ChangePassword(ctx context.Context, actor auth.Actor, in directory.PasswordChange) error {
	f.passwordIn = in
	return f.pwErr
}

func (f *fakeService) ListDepartments(ctx context.Context) ([]directory.Department, error) {
	return []directory.Department{{ID: 1, Name: "General", Employees: 3}}, nil
}

func (f *fakeService) CreateDepartment(ctx context.Context, actor auth.Actor, in directory.DepartmentInput) (directory.Department, error) {
	if f.deptErr != nil {
		return directory.Department{}, f.deptErr
	}
	return directory.Department{ID: 2, Name: in.Name}, nil
}

type fakeProvisioner struct {
	calls []int64
}

func (f *fakeProvisioner) ProvisionBalances(ctx context.Context, userID int64) (int, error) {
	f.calls = append(f.calls, userID)
	return 5, nil
}

var (
	employee = auth.Actor{UserID: 7, Name: "Ava", Role: auth.RoleEmployee}
	admin    = auth.Actor{UserID: 1, Name: "Root", Role: auth.RoleAdmin}
)

func serve(h *Handler, actor auth.Actor, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	h.RegisterRoutes(r)
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

func TestCreateUser(t *testing.T) {
	svc := newFakeService()
	h := NewHandler(svc, &fakeProvisioner{}, nil)

	rec := serve(h, admin, http.MethodPost, "/users",
		`{"name":"Noah","email":"noah@example.com","employeeId":"EMP020","role":"Manager","joinDate":"2025-01-06"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, auth.RoleManager, svc.created.Role)
	require.NotNil(t, svc.created.JoinDate)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), *svc.created.JoinDate)

	data, ok := envelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tmp-pass", data["temporaryPassword"])
}

func TestCreateUserErrors(t *testing.T) {
	tests := []struct {
		name   string
		actor  auth.Actor
		body   string
		err    error
		status int
		code   string
	}{
		{name: "employee", actor: employee, body: `{}`, status: http.StatusForbidden, code: "forbidden"},
		{name: "bad join date", actor: admin, body: `{"name":"N","email":"n@example.com","employeeId":"E1","joinDate":"yesterday"}`, status: http.StatusBadRequest, code: "validation_error"},
		{
			name:   "invalid email",
			actor:  admin,
			body:   `{"name":"N","email":"nope","employeeId":"E1"}`,
			err:    &directory.ValidationError{Code: directory.CodeInvalidField, Message: "Invalid email format.", Fields: map[string]string{"email": "email"}},
			status: http.StatusBadRequest,
			code:   directory.CodeInvalidField,
		},
		{name: "duplicate", actor: admin, body: `{"name":"N","email":"n@example.com","employeeId":"E1"}`, err: directory.ErrConflict, status: http.StatusConflict, code: "duplicate_user"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeService()
			svc.createErr = tc.err
			rec := serve(NewHandler(svc, &fakeProvisioner{}, nil), tc.actor, http.MethodPost, "/users", tc.body)

			require.Equal(t, tc.status, rec.Code)
			env := envelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestValidationFieldsAreReturned(t *testing.T) {
	svc := newFakeService()
	svc.createErr = &directory.ValidationError{Code: directory.CodeInvalidField, Message: "Invalid email format.", Fields: map[string]string{"email": "email"}}
	rec := serve(NewHandler(svc, nil, nil), admin, http.MethodPost, "/users", `{"name":"N","email":"nope","employeeId":"E1"}`)

	env := envelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid email format.", env.Error.Message)
	details, ok := env.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"email": "email"}, details["fields"])
}

func TestSetActive(t *testing.T) {
	svc := newFakeService()
	h := NewHandler(svc, nil, nil)

	rec := serve(h, admin, http.MethodPost, "/users/7/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.setActive[7])

	rec = serve(h, admin, http.MethodPost, "/users/7/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.setActive[7])

	svc.setErr = &directory.ValidationError{Code: directory.CodeSelfDeactivation, Message: "You cannot deactivate your own account."}
	rec = serve(h, admin, http.MethodPost, "/users/1/deactivate", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot deactivate your own account.", envelope(t, rec).Error.Message)
}

func TestProvisionChecksUserFirst(t *testing.T) {
	svc := newFakeService()
	prov := &fakeProvisioner{}
	h := NewHandler(svc, prov, nil)

	rec := serve(h, admin, http.MethodPost, "/users/99/balances/provision", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, prov.calls)

	rec = serve(h, admin, http.MethodPost, "/users/7/balances/provision", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, prov.calls)

	rec = serve(h, employee, http.MethodPost, "/users/7/balances/provision", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUserOwnRecordOnly(t *testing.T) {
	h := NewHandler(newFakeService(), nil, nil)

	assert.Equal(t, http.StatusOK, serve(h, employee, http.MethodGet, "/users/7", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, employee, http.MethodGet, "/users/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, employee, http.MethodGet, "/users/x", "").Code)
}

func TestChangePasswordMessage(t *testing.T) {
	svc := newFakeService()
	svc.pwErr = &directory.ValidationError{Code: directory.CodePasswordMismatch, Message: "New passwords do not match."}
	rec := serve(NewHandler(svc, nil, nil), employee, http.MethodPost, "/profile/password",
		`{"currentPassword":"old-pass-1","newPassword":"new-pass-1","confirmPassword":"new-pass-2"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "New passwords do not match.", envelope(t, rec).Error.Message)
	assert.Equal(t, "new-pass-2", svc.passwordIn.ConfirmPassword)
}

func TestUpdateProfile(t *testing.T) {
	rec := serve(NewHandler(newFakeService(), nil, nil), employee, http.MethodPut, "/profile", `{"phone":"+1 555 0100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := envelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+1 555 0100", data["phone"])
}

func TestDepartments(t *testing.T) {
	svc := newFakeService()
	h := NewHandler(svc, nil, nil)

	assert.Equal(t, http.StatusOK, serve(h, employee, http.MethodGet, "/departments", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, employee, http.MethodPost, "/departments", `{"name":"Ops"}`).Code)
	assert.Equal(t, http.StatusCreated, serve(h, admin, http.MethodPost, "/departments", `{"name":"Ops"}`).Code)

	svc.deptErr = directory.ErrDepartmentExists
	assert.Equal(t, http.StatusConflict, serve(h, admin, http.MethodPost, "/departments", `{"name":"Ops"}`).Code)
}
