package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
)

const minPasswordLength = 8

type StoreAPI interface {
	CreateUser(ctx context.Context, u User, passwordHash string) (int64, error)
	EmailOrCodeTaken(ctx context.Context, email, code string) (bool, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) (UserList, error)
	SetStatus(ctx context.Context, id int64, status string) error
	PasswordHash(ctx context.Context, id int64) (string, error)
	SetPassword(ctx context.Context, id int64, hash string) error
	RevokeSessions(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) error
	ListDepartments(ctx context.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, in DepartmentInput) (Department, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, description string) error
}

// Provisioner seeds leave balances for a newly created user.
type Provisioner interface {
	ProvisionBalances(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	Store       StoreAPI
	Activity    ActivityRecorder
	Provisioner Provisioner
	Now         func() time.Time
	// NewPassword generates temporary passwords.
	NewPassword func() (string, error)
	log         *zap.Logger
}

func NewService(store StoreAPI, activity ActivityRecorder, provisioner Provisioner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	return &Service{
		Store:       store,
		Activity:    activity,
		Provisioner: provisioner,
		Now:         time.Now,
		NewPassword: func() (string, error) { return auth.GenerateSecret(9) },
		log:         log.Named("directory.service"),
	}
}

func (s *Service) CreateUser(ctx context.Context, actor auth.Actor, in CreateUserInput) (CreatedUser, error) {
	if !actor.IsAdmin() {
		return CreatedUser{}, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.EmployeeCode = strings.TrimSpace(in.EmployeeCode)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in, "Name, email, and employee ID are required."); err != nil {
		return CreatedUser{}, err
	}
	if in.Role == "" {
		in.Role = auth.RoleEmployee
	}
	if in.DepartmentID != nil {
		ok, err := s.Store.DepartmentExists(ctx, *in.DepartmentID)
		if err != nil {
			return CreatedUser{}, fmt.Errorf("check department: %w", err)
		}
		if !ok {
			return CreatedUser{}, &ValidationError{Code: CodeInvalidField, Message: "Selected department does not exist.", Fields: map[string]string{"departmentId": "exists"}}
		}
	}
	if in.ManagerID != nil {
		if _, err := s.Store.GetUser(ctx, *in.ManagerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return CreatedUser{}, &ValidationError{Code: CodeInvalidField, Message: "Selected manager does not exist.", Fields: map[string]string{"managerId": "exists"}}
			}
			return CreatedUser{}, fmt.Errorf("check manager: %w", err)
		}
	}

	taken, err := s.Store.EmailOrCodeTaken(ctx, in.Email, in.EmployeeCode)
	if err != nil {
		return CreatedUser{}, fmt.Errorf("check duplicates: %w", err)
	}
	if taken {
		return CreatedUser{}, ErrConflict
	}

	password, err := s.NewPassword()
	if err != nil {
		return CreatedUser{}, fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return CreatedUser{}, fmt.Errorf("hash password: %w", err)
	}

	joinDate := s.Now().UTC()
	if in.JoinDate != nil {
		joinDate = *in.JoinDate
	}
	user := User{
		Name:         in.Name,
		Email:        in.Email,
		EmployeeCode: in.EmployeeCode,
		Phone:        in.Phone,
		DepartmentID: in.DepartmentID,
		ManagerID:    in.ManagerID,
		Role:         in.Role,
		JoinDate:     time.Date(joinDate.Year(), joinDate.Month(), joinDate.Day(), 0, 0, 0, 0, time.UTC),
		Status:       StatusActive,
	}
	id, err := s.Store.CreateUser(ctx, user, hash)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return CreatedUser{}, err
		}
		return CreatedUser{}, fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	user.CreatedAt = s.Now()
	s.record(ctx, actor.UserID, "User Management", fmt.Sprintf("Created new user: %s (%s)", user.Name, user.Email))

	out := CreatedUser{User: user, TemporaryPassword: password}
	if s.Provisioner != nil {
		n, err := s.Provisioner.ProvisionBalances(ctx, id)
		if err != nil {
			s.log.Warn("balance provisioning failed", zap.Int64("user_id", id), zap.Error(err))
		}
		out.BalancesProvisioned = n
	}
	return out, nil
}

func (s *Service) ListUsers(ctx context.Context, actor auth.Actor, filter UserFilter) (UserList, error) {
	if !actor.IsAdmin() {
		return UserList{}, ErrForbidden
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Store.ListUsers(ctx, filter)
}

func (s *Service) GetUser(ctx context.Context, actor auth.Actor, id int64) (User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return User{}, ErrForbidden
	}
	return s.Store.GetUser(ctx, id)
}

// SetActive activates or deactivates a user. Admins cannot deactivate their
// own account.
func (s *Service) SetActive(ctx context.Context, actor auth.Actor, id int64, active bool) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	status, action := StatusActive, "Activated"
	if !active {
		if id == actor.UserID {
			return invalid(CodeSelfDeactivation, "You cannot deactivate your own account.")
		}
		status, action = StatusInactive, "Deactivated"
	}
	if err := s.Store.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("set user status: %w", err)
	}
	if !active {
		if err := s.Store.RevokeSessions(ctx, id); err != nil {
			s.log.Warn("revoke sessions failed", zap.Int64("user_id", id), zap.Error(err))
		}
	}
	s.record(ctx, actor.UserID, "User Management", fmt.Sprintf("%s user ID: %d", action, id))
	return nil
}

// ResetPassword replaces the user's password with a new temporary one and
// returns it.
func (s *Service) ResetPassword(ctx context.Context, actor auth.Actor, id int64) (string, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}
	password, err := s.NewPassword()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.SetPassword(ctx, id, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("set password: %w", err)
	}
	if err := s.Store.RevokeSessions(ctx, id); err != nil {
		s.log.Warn("revoke sessions failed", zap.Int64("user_id", id), zap.Error(err))
	}
	s.record(ctx, actor.UserID, "Password Reset", fmt.Sprintf("Reset password for user ID: %d", id))
	return password, nil
}

func (s *Service) Profile(ctx context.Context, actor auth.Actor) (User, error) {
	return s.Store.GetUser(ctx, actor.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, in ProfileUpdate) (User, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	in.EmergencyContact = strings.TrimSpace(in.EmergencyContact)
	in.EmergencyPhone = strings.TrimSpace(in.EmergencyPhone)
	if err := check(in, "Please fill in all required fields."); err != nil {
		return User{}, err
	}
	if err := s.Store.UpdateProfile(ctx, actor.UserID, in); err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	s.record(ctx, actor.UserID, "Profile Update", "User updated contact information")
	return s.Store.GetUser(ctx, actor.UserID)
}

func (s *Service) ChangePassword(ctx context.Context, actor auth.Actor, in PasswordChange) error {
	if in.CurrentPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return invalid(CodeRequiredFields, "All password fields are required.")
	}
	if in.NewPassword != in.ConfirmPassword {
		return invalid(CodePasswordMismatch, "New passwords do not match.")
	}
	if len(in.NewPassword) < minPasswordLength {
		return invalid(CodePasswordTooShort, fmt.Sprintf("Password must be at least %d characters long.", minPasswordLength))
	}

	current, err := s.Store.PasswordHash(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("load password: %w", err)
	}
	if err := auth.CheckPassword(current, in.CurrentPassword); err != nil {
		return invalid(CodeWrongPassword, "Current password is incorrect.")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.SetPassword(ctx, actor.UserID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	s.record(ctx, actor.UserID, "Password Update", "User updated their password")
	return nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.Store.ListDepartments(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, actor auth.Actor, in DepartmentInput) (Department, error) {
	if !actor.IsAdmin() {
		return Department{}, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := check(in, "Department name is required."); err != nil {
		return Department{}, err
	}
	dep, err := s.Store.CreateDepartment(ctx, in)
	if err != nil {
		if errors.Is(err, ErrDepartmentExists) {
			return Department{}, err
		}
		return Department{}, fmt.Errorf("create department: %w", err)
	}
	s.record(ctx, actor.UserID, "Department Management", "Created department: "+dep.Name)
	return dep, nil
}

func (s *Service) record(ctx context.Context, userID int64, action, description string) {
	if s.Activity == nil {
		return
	}
	if err := s.Activity.Record(ctx, userID, action, description); err != nil {
		s.log.Warn("activity record failed", zap.String("action", action), zap.Error(err))
	}
}
