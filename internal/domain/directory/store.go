package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"leavetracker/internal/platform/querier"
)

const uniqueViolation = "23505"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const userColumns = `
    u.id, u.name, u.email, u.employee_code, u.phone, u.emergency_contact, u.emergency_phone,
    u.department_id, COALESCE(d.name, ''), u.manager_id, COALESCE(m.name, ''),
    u.role, u.join_date, u.status, u.last_login, u.created_at`

const userFrom = `
    FROM users u
    LEFT JOIN departments d ON d.id = u.department_id
    LEFT JOIN users m ON m.id = u.manager_id`

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.EmployeeCode, &u.Phone, &u.EmergencyContact, &u.EmergencyPhone,
		&u.DepartmentID, &u.DepartmentName, &u.ManagerID, &u.ManagerName,
		&u.Role, &u.JoinDate, &u.Status, &u.LastLogin, &u.CreatedAt,
	)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u User, passwordHash string) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, employee_code, phone, password_hash, department_id, manager_id, role, join_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, u.Name, u.Email, u.EmployeeCode, u.Phone, passwordHash, u.DepartmentID, u.ManagerID, u.Role, u.JoinDate, u.Status).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrConflict
	}
	return id, err
}

// EmailOrCodeTaken reports whether another user already uses the email or
// employee code.
func (s *Store) EmailOrCodeTaken(ctx context.Context, email, code string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM users
    WHERE lower(email) = lower($1) OR employee_code = $2
  `, email, code).Scan(&count)
	return count > 0, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+userFrom+" WHERE u.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func buildUserWhere(filter UserFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.Status != "" {
		where += fmt.Sprintf(" AND u.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Role != "" {
		where += fmt.Sprintf(" AND u.role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}
	if filter.DepartmentID > 0 {
		where += fmt.Sprintf(" AND u.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		n := len(args) + 1
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.email ILIKE $%d OR u.employee_code ILIKE $%d)", n, n, n)
		args = append(args, "%"+search+"%")
	}
	return where, args
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter) (UserList, error) {
	where, args := buildUserWhere(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+userFrom+where, args...).Scan(&total); err != nil {
		return UserList{}, err
	}

	query := "SELECT " + userColumns + userFrom + where
	query += fmt.Sprintf(" ORDER BY u.name, u.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return UserList{}, err
	}
	defer rows.Close()

	out := UserList{Users: []User{}, Total: total}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return UserList{}, err
		}
		out.Users = append(out.Users, u)
	}
	return out, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

func (s *Store) SetPassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeSessions ends every open session of the user.
func (s *Store) RevokeSessions(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL", id)
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET phone = $1, emergency_contact = $2, emergency_phone = $3
    WHERE id = $4
  `, in.Phone, in.EmergencyContact, in.EmergencyPhone, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, d.description, COUNT(u.id), d.created_at
    FROM departments d
    LEFT JOIN users u ON u.department_id = d.id AND u.status = 'active'
    GROUP BY d.id
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Employees, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, in DepartmentInput) (Department, error) {
	d := Department{Name: in.Name, Description: in.Description}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description)
    VALUES ($1,$2)
    RETURNING id, created_at
  `, in.Name, in.Description).Scan(&d.ID, &d.CreatedAt)
	if isUniqueViolation(err) {
		return Department{}, ErrDepartmentExists
	}
	return d, err
}

func (s *Store) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE id = $1", id).Scan(&count)
	return count > 0, err
}
