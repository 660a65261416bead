package reports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leavetracker/internal/domain/activity"
	"leavetracker/internal/domain/auth"
)

const (
	recentActivityLimit = 10
	recentPendingLimit  = 5
)

type StoreAPI interface {
	Stats(ctx context.Context, today time.Time) (Stats, error)
	LeaveUsage(ctx context.Context, filter Filter) ([]UsageRow, error)
	DeptAbsence(ctx context.Context, filter Filter) ([]DeptAbsenceRow, error)
	PendingLeaves(ctx context.Context, filter Filter, today time.Time, limit int) ([]PendingRow, error)
	LeaveBalances(ctx context.Context, filter Filter) ([]BalanceRow, error)
}

type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]activity.Entry, error)
}

type Service struct {
	Store    StoreAPI
	Activity ActivityReader
	Now      func() time.Time
	Location *time.Location
	log      *zap.Logger
}

func NewService(store StoreAPI, reader ActivityReader, loc *time.Location, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Activity: reader, Now: time.Now, Location: loc, log: log.Named("reports.service")}
}

func (s *Service) today() time.Time {
	y, m, d := s.Now().In(s.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) Dashboard(ctx context.Context, actor auth.Actor) (Dashboard, error) {
	if !actor.IsAdmin() {
		return Dashboard{}, ErrForbidden
	}
	today := s.today()

	stats, err := s.Store.Stats(ctx, today)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard stats: %w", err)
	}
	pending, err := s.Store.PendingLeaves(ctx, Filter{}, today, recentPendingLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard pending: %w", err)
	}
	out := Dashboard{Stats: stats, PendingRecent: pending, RecentActivity: []activity.Entry{}}
	if s.Activity != nil {
		recent, err := s.Activity.Recent(ctx, recentActivityLimit)
		if err != nil {
			s.log.Warn("recent activity unavailable", zap.Error(err))
		} else {
			out.RecentActivity = recent
		}
	}
	return out, nil
}

// Build runs one report. Zero dates default to the current calendar year.
func (s *Service) Build(ctx context.Context, actor auth.Actor, reportType string, filter Filter) (Report, error) {
	if !actor.IsAdmin() {
		return Report{}, ErrForbidden
	}
	today := s.today()
	if filter.From.IsZero() {
		filter.From = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if filter.To.IsZero() {
		filter.To = time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	if filter.To.Before(filter.From) {
		return Report{}, ErrInvalidRange
	}
	if filter.Year == 0 {
		filter.Year = today.Year()
	}

	report := Report{Type: reportType, Filter: filter, GeneratedAt: s.Now()}
	switch reportType {
	case TypeLeaveUsage:
		rows, err := s.Store.LeaveUsage(ctx, filter)
		if err != nil {
			return Report{}, fmt.Errorf("leave usage report: %w", err)
		}
		report.Title = "Leave Usage Summary"
		report.Columns = []string{"Department", "Employee", "Employee ID", "Leave Type", "Requests", "Total Days", "Avg Days"}
		report.Rows = rows
		for _, r := range rows {
			report.Cells = append(report.Cells, []any{r.DepartmentName, r.UserName, r.EmployeeCode, r.LeaveTypeName, r.TotalRequests, r.TotalDays, r.AvgDays})
		}
	case TypeDeptAbsence:
		rows, err := s.Store.DeptAbsence(ctx, filter)
		if err != nil {
			return Report{}, fmt.Errorf("department absence report: %w", err)
		}
		report.Title = "Department Absence Analysis"
		report.Columns = []string{"Department", "Employees", "Requests", "Total Days", "Avg Days/Request", "Avg Days/Employee"}
		report.Rows = rows
		for _, r := range rows {
			report.Cells = append(report.Cells, []any{r.DepartmentName, r.TotalEmployees, r.TotalRequests, r.TotalDays, r.AvgDaysPerRequest, r.AvgDaysPerEmployee})
		}
	case TypePendingLeaves:
		rows, err := s.Store.PendingLeaves(ctx, filter, today, 0)
		if err != nil {
			return Report{}, fmt.Errorf("pending leaves report: %w", err)
		}
		report.Title = "Pending Leave Applications"
		report.Columns = []string{"Request", "Employee", "Employee ID", "Department", "Leave Type", "Start", "End", "Working Days", "Submitted", "Days Until Start"}
		report.Rows = rows
		for _, r := range rows {
			report.Cells = append(report.Cells, []any{
				fmt.Sprintf("L%d", r.ID), r.UserName, r.EmployeeCode, r.DepartmentName, r.LeaveTypeName,
				r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout), r.WorkingDays,
				r.SubmittedAt.In(s.Location).Format("2006-01-02 15:04"), r.DaysUntilStart,
			})
		}
	case TypeLeaveBalance:
		rows, err := s.Store.LeaveBalances(ctx, filter)
		if err != nil {
			return Report{}, fmt.Errorf("leave balance report: %w", err)
		}
		report.Title = "Employee Leave Balance"
		report.Columns = []string{"Employee", "Employee ID", "Department", "Leave Type", "Allocated", "Used", "Remaining", "Usage %"}
		report.Rows = rows
		for _, r := range rows {
			report.Cells = append(report.Cells, []any{r.UserName, r.EmployeeCode, r.DepartmentName, r.LeaveTypeName, r.TotalAllocation, r.UsedDays, r.RemainingDays, r.UsagePercentage})
		}
	default:
		return Report{}, ErrUnknownReport
	}
	return report, nil
}
