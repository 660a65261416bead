package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
)

// Decide applies an approve or reject decision to a pending request. The
// status change and the balance charge commit together; a request that is no
// longer pending yields ErrConflict and nothing is written.
func (s *Service) Decide(ctx context.Context, actor auth.Actor, in DecisionInput) (DecisionResult, error) {
	if !actor.IsAdmin() {
		return DecisionResult{}, ErrForbidden
	}

	var status string
	switch strings.ToLower(strings.TrimSpace(in.Decision)) {
	case DecisionApprove:
		status = StatusApproved
	case DecisionReject:
		status = StatusRejected
	default:
		return DecisionResult{}, ErrInvalidDecision
	}

	var result DecisionResult
	now := s.Now()
	err := s.Store.InTx(ctx, func(tx TxStore) error {
		updated, err := tx.DecidePending(ctx, in.RequestID, status, actor.UserID, strings.TrimSpace(in.Comment), now)
		if err != nil {
			return fmt.Errorf("update leave request: %w", err)
		}
		if !updated {
			if _, err := tx.GetRequest(ctx, in.RequestID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("load leave request: %w", err)
			}
			return ErrConflict
		}

		req, err := tx.GetRequest(ctx, in.RequestID)
		if err != nil {
			return fmt.Errorf("reload leave request: %w", err)
		}
		result.Request = req
		if status != StatusApproved {
			return nil
		}

		year := BalanceYear(req.StartDate)
		balance, err := tx.LockBalance(ctx, req.UserID, req.LeaveTypeID, year)
		if errors.Is(err, ErrBalanceNotProvisioned) {
			s.log.Warn("approved leave has no balance row",
				zap.Int64("request_id", req.ID),
				zap.Int64("user_id", req.UserID),
				zap.Int64("leave_type_id", req.LeaveTypeID),
				zap.Int("year", year),
			)
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		balance = ApplyApproval(balance, req.WorkingDays)
		if err := tx.UpdateBalanceUsage(ctx, balance.ID, balance.UsedDays, balance.RemainingDays); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		result.BalanceAdjusted = true
		result.Balance = &balance
		return nil
	})
	if err != nil {
		return DecisionResult{}, err
	}

	verb := "rejected"
	action := "Leave Reject"
	if status == StatusApproved {
		verb = "approved"
		action = "Leave Approve"
	}
	s.record(ctx, actor.UserID, action, fmt.Sprintf("Leave request #L%d %s", in.RequestID, verb))
	return result, nil
}
