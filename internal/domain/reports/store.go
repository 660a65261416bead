package reports

import (
	"context"
	"fmt"
	"time"

	"leavetracker/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Stats(ctx context.Context, today time.Time) (Stats, error) {
	var out Stats
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM users WHERE status = 'active'),
      (SELECT COUNT(1) FROM leave_requests WHERE status = 'pending'),
      (SELECT COUNT(DISTINCT user_id) FROM leave_requests
         WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1),
      (SELECT COALESCE(SUM(working_days), 0) FROM leave_requests
         WHERE status = 'approved' AND EXTRACT(YEAR FROM start_date) = $2)
  `, today, today.Year()).Scan(&out.ActiveUsers, &out.PendingRequests, &out.OnLeaveToday, &out.ApprovedDaysYear)
	return out, err
}

func (s *Store) LeaveUsage(ctx context.Context, filter Filter) ([]UsageRow, error) {
	args := []any{filter.From, filter.To}
	where := " WHERE r.status = 'approved' AND r.start_date BETWEEN $1 AND $2"
	if filter.DepartmentID > 0 {
		where += fmt.Sprintf(" AND u.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.LeaveTypeID > 0 {
		where += fmt.Sprintf(" AND r.leave_type_id = $%d", len(args)+1)
		args = append(args, filter.LeaveTypeID)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(d.name, ''), u.name, u.employee_code, lt.name,
           COUNT(r.id), COALESCE(SUM(r.working_days), 0), COALESCE(ROUND(AVG(r.working_days), 2), 0)::float8
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    JOIN leave_types lt ON lt.id = r.leave_type_id
    LEFT JOIN departments d ON d.id = u.department_id
  `+where+`
    GROUP BY d.name, u.id, lt.id
    ORDER BY d.name, u.name, lt.name
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UsageRow{}
	for rows.Next() {
		var r UsageRow
		if err := rows.Scan(&r.DepartmentName, &r.UserName, &r.EmployeeCode, &r.LeaveTypeName, &r.TotalRequests, &r.TotalDays, &r.AvgDays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeptAbsence(ctx context.Context, filter Filter) ([]DeptAbsenceRow, error) {
	args := []any{filter.From, filter.To}
	where := ""
	if filter.DepartmentID > 0 {
		where = fmt.Sprintf(" WHERE d.id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT d.name,
           COUNT(DISTINCT u.id),
           COUNT(r.id),
           COALESCE(SUM(r.working_days), 0),
           COALESCE(ROUND(AVG(r.working_days), 2), 0)::float8,
           COALESCE(ROUND(SUM(r.working_days)::numeric / NULLIF(COUNT(DISTINCT u.id), 0), 2), 0)::float8
    FROM departments d
    LEFT JOIN users u ON u.department_id = d.id AND u.status = 'active'
    LEFT JOIN leave_requests r ON r.user_id = u.id AND r.status = 'approved' AND r.start_date BETWEEN $1 AND $2
  `+where+`
    GROUP BY d.id
    ORDER BY 4 DESC, d.name
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DeptAbsenceRow{}
	for rows.Next() {
		var r DeptAbsenceRow
		if err := rows.Scan(&r.DepartmentName, &r.TotalEmployees, &r.TotalRequests, &r.TotalDays, &r.AvgDaysPerRequest, &r.AvgDaysPerEmployee); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PendingLeaves lists pending requests oldest first. limit <= 0 means all.
func (s *Store) PendingLeaves(ctx context.Context, filter Filter, today time.Time, limit int) ([]PendingRow, error) {
	args := []any{today}
	where := " WHERE r.status = 'pending'"
	if filter.DepartmentID > 0 {
		where += fmt.Sprintf(" AND u.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	query := `
    SELECT r.id, u.name, u.employee_code, COALESCE(d.name, ''), lt.name,
           r.start_date, r.end_date, r.working_days, r.submitted_at, (r.start_date - $1::date)
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    JOIN leave_types lt ON lt.id = r.leave_type_id
    LEFT JOIN departments d ON d.id = u.department_id
  ` + where + " ORDER BY r.submitted_at ASC, r.id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PendingRow{}
	for rows.Next() {
		var r PendingRow
		if err := rows.Scan(&r.ID, &r.UserName, &r.EmployeeCode, &r.DepartmentName, &r.LeaveTypeName,
			&r.StartDate, &r.EndDate, &r.WorkingDays, &r.SubmittedAt, &r.DaysUntilStart); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) LeaveBalances(ctx context.Context, filter Filter) ([]BalanceRow, error) {
	args := []any{filter.Year}
	where := " WHERE b.year = $1 AND u.status = 'active'"
	if filter.DepartmentID > 0 {
		where += fmt.Sprintf(" AND u.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.LeaveTypeID > 0 {
		where += fmt.Sprintf(" AND b.leave_type_id = $%d", len(args)+1)
		args = append(args, filter.LeaveTypeID)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT u.name, u.employee_code, COALESCE(d.name, ''), lt.name,
           b.total_allocation, b.used_days, b.remaining_days,
           COALESCE(ROUND(b.used_days::numeric * 100 / NULLIF(b.total_allocation, 0), 1), 0)::float8
    FROM leave_balances b
    JOIN users u ON u.id = b.user_id
    JOIN leave_types lt ON lt.id = b.leave_type_id
    LEFT JOIN departments d ON d.id = u.department_id
  `+where+`
    ORDER BY d.name, u.name, lt.name
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BalanceRow{}
	for rows.Next() {
		var r BalanceRow
		if err := rows.Scan(&r.UserName, &r.EmployeeCode, &r.DepartmentName, &r.LeaveTypeName,
			&r.TotalAllocation, &r.UsedDays, &r.RemainingDays, &r.UsagePercentage); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
