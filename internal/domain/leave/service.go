package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
)

const dateLayout = "2006-01-02"

type Service struct {
	Store    StoreAPI
	Activity ActivityRecorder
	Now      func() time.Time
	Location *time.Location
	log      *zap.Logger
}

func NewService(store StoreAPI, activity ActivityRecorder, loc *time.Location, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Activity: activity, Now: time.Now, Location: loc, log: log.Named("leave.service")}
}

// Today is the current civil date in the configured timezone.
func (s *Service) Today() time.Time {
	return CivilDate(s.Now().In(s.Location))
}

func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (LeaveRequest, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.LeaveTypeID <= 0 || in.StartDate.IsZero() || in.EndDate.IsZero() || reason == "" {
		return LeaveRequest{}, invalid(CodeRequiredFields, "Please fill in all required fields.")
	}

	today := s.Today()
	start := CivilDate(in.StartDate)
	end := CivilDate(in.EndDate)
	if start.Before(today) {
		return LeaveRequest{}, invalid(CodeStartInPast, "Start date cannot be in the past.")
	}
	totalDays, err := TotalDays(start, end)
	if err != nil {
		return LeaveRequest{}, invalid(CodeEndBeforeStart, "End date cannot be before start date.")
	}
	workingDays, _ := WorkingDays(start, end)

	leaveType, err := s.Store.GetType(ctx, in.LeaveTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LeaveRequest{}, invalid(CodeUnknownLeaveType, "Selected leave type does not exist.")
		}
		return LeaveRequest{}, fmt.Errorf("load leave type: %w", err)
	}
	if !leaveType.Active() {
		return LeaveRequest{}, invalid(CodeUnknownLeaveType, "Selected leave type is not available.")
	}

	if !leaveType.IsUnpaid() {
		balance, err := s.balance(ctx, actor.UserID, leaveType, today.Year())
		if err != nil {
			return LeaveRequest{}, err
		}
		if balance.RemainingDays < workingDays {
			return LeaveRequest{}, invalid(CodeInsufficientBalance,
				fmt.Sprintf("Insufficient leave balance. You have %d days remaining for %s.", balance.RemainingDays, leaveType.Name))
		}
	}

	if NoticeDays(today, start) < leaveType.MinNoticeDays {
		return LeaveRequest{}, invalid(CodeInsufficientNotice,
			fmt.Sprintf("Minimum notice period of %d days required for %s.", leaveType.MinNoticeDays, leaveType.Name))
	}

	req, err := s.Store.CreateRequest(ctx, LeaveRequest{
		UserID:        actor.UserID,
		UserName:      actor.Name,
		LeaveTypeID:   leaveType.ID,
		LeaveTypeName: leaveType.Name,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     totalDays,
		WorkingDays:   workingDays,
		Reason:        reason,
		ContactInfo:   strings.TrimSpace(in.ContactInfo),
		Status:        StatusPending,
		SubmittedAt:   s.Now(),
	})
	if err != nil {
		return LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}

	s.record(ctx, actor.UserID, "Leave Request", fmt.Sprintf("Submitted new leave request (%s, %s to %s)",
		leaveType.Name, start.Format(dateLayout), end.Format(dateLayout)))
	return req, nil
}

// Balance returns the stored balance or, when none was provisioned, the
// leave type's default allocation.
func (s *Service) Balance(ctx context.Context, userID, leaveTypeID int64, year int) (LeaveBalance, error) {
	leaveType, err := s.Store.GetType(ctx, leaveTypeID)
	if err != nil {
		return LeaveBalance{}, err
	}
	return s.balance(ctx, userID, leaveType, year)
}

func (s *Service) balance(ctx context.Context, userID int64, leaveType LeaveType, year int) (LeaveBalance, error) {
	b, err := s.Store.GetBalance(ctx, userID, leaveType.ID, year)
	if errors.Is(err, ErrBalanceNotProvisioned) {
		return DefaultBalance(userID, leaveType, year), nil
	}
	if err != nil {
		return LeaveBalance{}, fmt.Errorf("load balance: %w", err)
	}
	return b, nil
}

// Balances lists one balance per active leave type for the user and year.
func (s *Service) Balances(ctx context.Context, actor auth.Actor, userID int64, year int) ([]LeaveBalance, error) {
	if userID == 0 {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.CanReview() {
		return nil, ErrForbidden
	}
	if year == 0 {
		year = s.Today().Year()
	}

	types, err := s.Store.ListTypes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	stored, err := s.Store.ListBalances(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	byType := make(map[int64]LeaveBalance, len(stored))
	for _, b := range stored {
		byType[b.LeaveTypeID] = b
	}

	out := make([]LeaveBalance, 0, len(types))
	for _, t := range types {
		if b, ok := byType[t.ID]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, DefaultBalance(userID, t, year))
	}
	return out, nil
}

func (s *Service) ListTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error) {
	return s.Store.ListTypes(ctx, activeOnly)
}

func (s *Service) CreateType(ctx context.Context, actor auth.Actor, payload LeaveType) (LeaveType, error) {
	if !actor.IsAdmin() {
		return LeaveType{}, ErrForbidden
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return LeaveType{}, invalid(CodeRequiredFields, "Please fill in all required fields.")
	}
	if payload.DefaultAllocation < 0 || payload.CarryForwardLimit < 0 || payload.MinNoticeDays < 0 {
		return LeaveType{}, invalid(CodeInvalidInput, "Day values cannot be negative.")
	}
	switch payload.Status {
	case "":
		payload.Status = TypeStatusActive
	case TypeStatusActive, TypeStatusInactive:
	default:
		return LeaveType{}, invalid(CodeInvalidInput, "Status must be active or inactive.")
	}

	id, err := s.Store.CreateType(ctx, payload)
	if err != nil {
		return LeaveType{}, fmt.Errorf("create leave type: %w", err)
	}
	payload.ID = id
	payload.CreatedAt = s.Now()
	s.record(ctx, actor.UserID, "Leave Type Management", "Created leave type: "+payload.Name)
	return payload, nil
}

func (s *Service) ListHolidays(ctx context.Context, year int) ([]Holiday, error) {
	if year == 0 {
		year = s.Today().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return s.Store.ListHolidays(ctx, from, to)
}

func (s *Service) CreateHoliday(ctx context.Context, actor auth.Actor, payload Holiday) (Holiday, error) {
	if !actor.IsAdmin() {
		return Holiday{}, ErrForbidden
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || payload.Date.IsZero() {
		return Holiday{}, invalid(CodeRequiredFields, "Please fill in all required fields.")
	}
	switch payload.Type {
	case "":
		payload.Type = HolidayPublic
	case HolidayPublic, HolidayCompany:
	default:
		return Holiday{}, invalid(CodeInvalidInput, "Holiday type must be public or company.")
	}
	if strings.TrimSpace(payload.AppliesTo) == "" {
		payload.AppliesTo = "all"
	}
	payload.Date = CivilDate(payload.Date)

	id, err := s.Store.CreateHoliday(ctx, payload)
	if err != nil {
		return Holiday{}, fmt.Errorf("create holiday: %w", err)
	}
	payload.ID = id
	s.record(ctx, actor.UserID, "Holiday Management", "Created holiday: "+payload.Name)
	return payload, nil
}

// GetRequest returns a request visible to the actor: their own, any request
// for admins, and requests from the manager's department.
func (s *Service) GetRequest(ctx context.Context, actor auth.Actor, id int64) (LeaveRequest, error) {
	req, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.UserID == actor.UserID || actor.IsAdmin() {
		return req, nil
	}
	if actor.Role == auth.RoleManager {
		same, err := s.sameDepartment(ctx, actor.UserID, req.UserID)
		if err != nil {
			return LeaveRequest{}, err
		}
		if same {
			return req, nil
		}
	}
	return LeaveRequest{}, ErrForbidden
}

func (s *Service) sameDepartment(ctx context.Context, a, b int64) (bool, error) {
	deptA, err := s.Store.UserDepartment(ctx, a)
	if err != nil {
		return false, fmt.Errorf("load department: %w", err)
	}
	if deptA == 0 {
		return false, nil
	}
	deptB, err := s.Store.UserDepartment(ctx, b)
	if err != nil {
		return false, fmt.Errorf("load department: %w", err)
	}
	return deptA == deptB, nil
}

// ListRequests narrows the filter to what the actor may see.
func (s *Service) ListRequests(ctx context.Context, actor auth.Actor, filter RequestFilter) (RequestList, error) {
	switch actor.Role {
	case auth.RoleAdmin:
	case auth.RoleManager:
		dept, err := s.Store.UserDepartment(ctx, actor.UserID)
		if err != nil {
			return RequestList{}, fmt.Errorf("load department: %w", err)
		}
		if dept == 0 {
			filter.UserID = actor.UserID
		} else {
			filter.DepartmentID = dept
		}
	default:
		filter.UserID = actor.UserID
		filter.DepartmentID = 0
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Store.ListRequests(ctx, filter)
}

func (s *Service) Summary(ctx context.Context, actor auth.Actor, year int) (Summary, error) {
	if year == 0 {
		year = s.Today().Year()
	}
	return s.Store.RequestSummary(ctx, actor.UserID, year)
}

func (s *Service) record(ctx context.Context, userID int64, action, description string) {
	if s.Activity == nil {
		return
	}
	if err := s.Activity.Record(ctx, userID, action, description); err != nil {
		s.log.Warn("activity record failed", zap.String("action", action), zap.Error(err))
	}
}
