package leave

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ProvisionBalances creates the current-year balance rows for every active
// leave type. Rows that already exist are kept, so it is safe to call again.
func (s *Service) ProvisionBalances(ctx context.Context, userID int64) (int, error) {
	types, err := s.Store.ListTypes(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list leave types: %w", err)
	}
	year := s.Today().Year()
	inserted, err := s.Store.InsertBalances(ctx, userID, year, types)
	if err != nil {
		return inserted, fmt.Errorf("provision balances: %w", err)
	}
	s.log.Info("balances provisioned", zap.Int64("user_id", userID), zap.Int("year", year), zap.Int("inserted", inserted))
	return inserted, nil
}
