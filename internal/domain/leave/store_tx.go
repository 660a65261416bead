package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// DecidePending moves a request out of pending. It reports false when the
// request does not exist or was already decided.
func (s *Store) DecidePending(ctx context.Context, id int64, status string, deciderID int64, comment string, at time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, decided_by = $2, decided_at = $3, decider_comment = NULLIF($4, '')
    WHERE id = $5 AND status = 'pending'
  `, status, deciderID, at, comment, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) LockBalance(ctx context.Context, userID, leaveTypeID int64, year int) (LeaveBalance, error) {
	b, err := scanBalance(s.DB.QueryRow(ctx, `
    SELECT `+balanceColumns+`
    FROM leave_balances b
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE b.user_id = $1 AND b.leave_type_id = $2 AND b.year = $3
    FOR UPDATE OF b
  `, userID, leaveTypeID, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveBalance{}, ErrBalanceNotProvisioned
	}
	return b, err
}

func (s *Store) UpdateBalanceUsage(ctx context.Context, balanceID int64, used, remaining int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_balances
    SET used_days = $1, remaining_days = $2, updated_at = now()
    WHERE id = $3
  `, used, remaining, balanceID)
	return err
}
