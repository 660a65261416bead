package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error) {
	query := `
    SELECT id, name, default_allocation, carry_forward_limit, min_notice_days, requires_documentation, status, created_at
    FROM leave_types
  `
	if activeOnly {
		query += " WHERE status = 'active'"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []LeaveType{}
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) GetType(ctx context.Context, id int64) (LeaveType, error) {
	t, err := scanType(s.DB.QueryRow(ctx, `
    SELECT id, name, default_allocation, carry_forward_limit, min_notice_days, requires_documentation, status, created_at
    FROM leave_types
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, ErrNotFound
	}
	return t, err
}

func scanType(row rowScanner) (LeaveType, error) {
	var t LeaveType
	err := row.Scan(&t.ID, &t.Name, &t.DefaultAllocation, &t.CarryForwardLimit, &t.MinNoticeDays, &t.RequiresDocumentation, &t.Status, &t.CreatedAt)
	return t, err
}

func (s *Store) CreateType(ctx context.Context, payload LeaveType) (int64, error) {
	var id int64
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, default_allocation, carry_forward_limit, min_notice_days, requires_documentation, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, payload.Name, payload.DefaultAllocation, payload.CarryForwardLimit, payload.MinNoticeDays, payload.RequiresDocumentation, payload.Status).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

const balanceColumns = `b.id, b.user_id, b.leave_type_id, lt.name, b.year, b.total_allocation, b.used_days, b.remaining_days, b.updated_at`

func scanBalance(row rowScanner) (LeaveBalance, error) {
	var b LeaveBalance
	err := row.Scan(&b.ID, &b.UserID, &b.LeaveTypeID, &b.LeaveTypeName, &b.Year, &b.TotalAllocation, &b.UsedDays, &b.RemainingDays, &b.UpdatedAt)
	b.Provisioned = err == nil
	return b, err
}

func (s *Store) GetBalance(ctx context.Context, userID, leaveTypeID int64, year int) (LeaveBalance, error) {
	b, err := scanBalance(s.DB.QueryRow(ctx, `
    SELECT `+balanceColumns+`
    FROM leave_balances b
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE b.user_id = $1 AND b.leave_type_id = $2 AND b.year = $3
  `, userID, leaveTypeID, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveBalance{}, ErrBalanceNotProvisioned
	}
	return b, err
}

func (s *Store) ListBalances(ctx context.Context, userID int64, year int) ([]LeaveBalance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+balanceColumns+`
    FROM leave_balances b
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE b.user_id = $1 AND b.year = $2
    ORDER BY lt.name
  `, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []LeaveBalance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// InsertBalances seeds one row per type and returns how many were new. Rows
// that already exist for the key are left as they are.
func (s *Store) InsertBalances(ctx context.Context, userID int64, year int, types []LeaveType) (int, error) {
	inserted := 0
	for _, t := range types {
		tag, err := s.DB.Exec(ctx, `
      INSERT INTO leave_balances (user_id, leave_type_id, year, total_allocation, used_days, remaining_days)
      VALUES ($1,$2,$3,$4,0,$4)
      ON CONFLICT (user_id, leave_type_id, year) DO NOTHING
    `, userID, t.ID, year, t.DefaultAllocation)
		if err != nil {
			return inserted, fmt.Errorf("insert balance for leave type %d: %w", t.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

const requestColumns = `
    r.id, r.user_id, u.name, u.employee_code, COALESCE(d.name, ''), r.leave_type_id, lt.name,
    r.start_date, r.end_date, r.total_days, r.working_days, r.reason, r.contact_info, r.status,
    r.submitted_at, r.decided_by, COALESCE(du.name, ''), r.decided_at, r.decider_comment`

const requestFrom = `
    FROM leave_requests r
    JOIN users u ON u.id = r.user_id
    JOIN leave_types lt ON lt.id = r.leave_type_id
    LEFT JOIN departments d ON d.id = u.department_id
    LEFT JOIN users du ON du.id = r.decided_by`

func scanRequest(row rowScanner) (LeaveRequest, error) {
	var r LeaveRequest
	err := row.Scan(
		&r.ID, &r.UserID, &r.UserName, &r.EmployeeCode, &r.DepartmentName, &r.LeaveTypeID, &r.LeaveTypeName,
		&r.StartDate, &r.EndDate, &r.TotalDays, &r.WorkingDays, &r.Reason, &r.ContactInfo, &r.Status,
		&r.SubmittedAt, &r.DecidedBy, &r.DecidedByName, &r.DecidedAt, &r.DeciderComment,
	)
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, req LeaveRequest) (LeaveRequest, error) {
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, leave_type_id, start_date, end_date, total_days, working_days, reason, contact_info, status, submitted_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, req.UserID, req.LeaveTypeID, req.StartDate, req.EndDate, req.TotalDays, req.WorkingDays, req.Reason, req.ContactInfo, req.Status, req.SubmittedAt).Scan(&req.ID); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (LeaveRequest, error) {
	r, err := scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+requestFrom+" WHERE r.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrNotFound
	}
	return r, err
}

func buildRequestWhere(filter RequestFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.UserID > 0 {
		where += fmt.Sprintf(" AND r.user_id = $%d", len(args)+1)
		args = append(args, filter.UserID)
	}
	if filter.DepartmentID > 0 {
		where += fmt.Sprintf(" AND u.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.LeaveTypeID > 0 {
		where += fmt.Sprintf(" AND r.leave_type_id = $%d", len(args)+1)
		args = append(args, filter.LeaveTypeID)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	return where, args
}

func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) (RequestList, error) {
	where, args := buildRequestWhere(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+requestFrom+where, args...).Scan(&total); err != nil {
		return RequestList{}, err
	}

	query := "SELECT " + requestColumns + requestFrom + where
	query += fmt.Sprintf(" ORDER BY r.submitted_at DESC, r.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return RequestList{}, err
	}
	defer rows.Close()

	out := RequestList{Requests: []LeaveRequest{}, Total: total}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return RequestList{}, err
		}
		out.Requests = append(out.Requests, r)
	}
	return out, rows.Err()
}

func (s *Store) RequestSummary(ctx context.Context, userID int64, year int) (Summary, error) {
	out := Summary{Year: year}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'pending'),
           COUNT(1) FILTER (WHERE status = 'approved'),
           COUNT(1) FILTER (WHERE status = 'rejected'),
           COALESCE(SUM(working_days) FILTER (WHERE status = 'approved' AND EXTRACT(YEAR FROM start_date) = $2), 0)
    FROM leave_requests
    WHERE user_id = $1
  `, userID, year).Scan(&out.TotalRequests, &out.Pending, &out.Approved, &out.Rejected, &out.DaysUsed)
	return out, err
}

func (s *Store) ListHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, date, type, applies_to, description
    FROM holidays
    WHERE date BETWEEN $1 AND $2
    ORDER BY date, name
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []Holiday{}
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.Type, &h.AppliesTo, &h.Description); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, payload Holiday) (int64, error) {
	var id int64
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, date, type, applies_to, description)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, payload.Name, payload.Date, payload.Type, payload.AppliesTo, payload.Description).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UserDepartment(ctx context.Context, userID int64) (int64, error) {
	var departmentID int64
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(department_id, 0) FROM users WHERE id = $1", userID).Scan(&departmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return departmentID, err
}

// TeamMembers lists the user followed by active colleagues in the same
// department.
func (s *Store) TeamMembers(ctx context.Context, userID int64) ([]TeamMember, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.employee_code, u.id = $1
    FROM users u
    WHERE u.id = $1
       OR (u.status = 'active'
           AND u.department_id IS NOT NULL
           AND u.department_id = (SELECT department_id FROM users WHERE id = $1))
    ORDER BY (u.id = $1) DESC, u.name
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []TeamMember{}
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.EmployeeCode, &m.Self); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) ApprovedLeavesBetween(ctx context.Context, userIDs []int64, from, to time.Time) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+requestColumns+requestFrom+`
    WHERE r.user_id = ANY($1) AND r.status = 'approved' AND r.start_date <= $3 AND r.end_date >= $2
    ORDER BY r.start_date, u.name
  `, userIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaveRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
