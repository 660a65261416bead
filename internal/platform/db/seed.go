package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/platform/config"
	"leavetracker/internal/platform/querier"
)

const (
	defaultAdminEmail = "admin@example.com"
	defaultDepartment = "General"
)

type seedLeaveType struct {
	name          string
	allocation    int
	carryForward  int
	minNotice     int
	documentation bool
}

var defaultLeaveTypes = []seedLeaveType{
	{name: "Annual Leave", allocation: 20, carryForward: 5, minNotice: 7},
	{name: "Sick Leave", allocation: 10, documentation: true},
	{name: "Personal Leave", allocation: 5, minNotice: 2},
	{name: "Maternity Leave", allocation: 90, minNotice: 30, documentation: true},
	{name: "Unpaid Leave", minNotice: 3},
}

// Provisioner creates the current-year balances for a user.
type Provisioner interface {
	ProvisionBalances(ctx context.Context, userID int64) (int, error)
}

// Seed inserts the reference data and the first administrator. Existing rows
// are left alone so it can run on every start.
func Seed(ctx context.Context, db querier.Querier, cfg config.Config, provisioner Provisioner, log *zap.Logger) error {
	departmentID, err := ensureDepartment(ctx, db, defaultDepartment)
	if err != nil {
		return fmt.Errorf("seed department: %w", err)
	}
	if err := ensureLeaveTypes(ctx, db); err != nil {
		return fmt.Errorf("seed leave types: %w", err)
	}

	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" {
		email = defaultAdminEmail
	}
	password := cfg.SeedAdminPassword
	generated := false
	if password == "" {
		if password, err = auth.GenerateSecret(12); err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		generated = true
	}

	adminID, created, err := ensureAdminUser(ctx, db, cfg.SeedAdminName, email, password, departmentID)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if !created {
		return nil
	}
	if generated {
		log.Warn("seeded admin with generated password; change it after first login",
			zap.String("email", email), zap.String("password", password))
	} else {
		log.Info("seeded admin user", zap.String("email", email))
	}

	if provisioner != nil {
		if _, err := provisioner.ProvisionBalances(ctx, adminID); err != nil {
			return fmt.Errorf("seed admin balances: %w", err)
		}
	}
	return nil
}

func ensureDepartment(ctx context.Context, db querier.Querier, name string) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
    INSERT INTO departments (name, description)
    VALUES ($1, 'Default department')
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, name).Scan(&id)
	return id, err
}

func ensureLeaveTypes(ctx context.Context, db querier.Querier) error {
	for _, lt := range defaultLeaveTypes {
		_, err := db.Exec(ctx, `
      INSERT INTO leave_types (name, default_allocation, carry_forward_limit, min_notice_days, requires_documentation)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (name) DO NOTHING
    `, lt.name, lt.allocation, lt.carryForward, lt.minNotice, lt.documentation)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, db querier.Querier, name, email, password string, departmentID int64) (int64, bool, error) {
	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count); err != nil {
		return 0, false, err
	}
	if count > 0 {
		return 0, false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	var id int64
	err = db.QueryRow(ctx, `
    INSERT INTO users (name, email, employee_code, password_hash, department_id, role, status)
    VALUES ($1,$2,'ADM001',$3,$4,$5,'active')
    ON CONFLICT DO NOTHING
    RETURNING id
  `, name, email, hash, departmentID, auth.RoleAdmin).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
