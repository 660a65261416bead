package leave

import (
	"context"
	"fmt"
	"time"

	"leavetracker/internal/domain/auth"
)

// Calendar shows the actor's team with their approved leave and the holidays
// for one month.
func (s *Service) Calendar(ctx context.Context, actor auth.Actor, year, month int) (Calendar, error) {
	today := s.Today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	if month < 1 || month > 12 || year < 1 {
		return Calendar{}, invalid(CodeInvalidInput, "Month must be between 1 and 12.")
	}

	from, to := MonthRange(year, time.Month(month))
	team, err := s.Store.TeamMembers(ctx, actor.UserID)
	if err != nil {
		return Calendar{}, fmt.Errorf("list team: %w", err)
	}
	ids := make([]int64, 0, len(team))
	for _, m := range team {
		ids = append(ids, m.ID)
	}

	leaves := []LeaveRequest{}
	if len(ids) > 0 {
		leaves, err = s.Store.ApprovedLeavesBetween(ctx, ids, from, to)
		if err != nil {
			return Calendar{}, fmt.Errorf("list approved leave: %w", err)
		}
	}
	holidays, err := s.Store.ListHolidays(ctx, from, to)
	if err != nil {
		return Calendar{}, fmt.Errorf("list holidays: %w", err)
	}

	return Calendar{
		Year:     year,
		Month:    month,
		From:     from,
		To:       to,
		Team:     team,
		Leaves:   leaves,
		Holidays: holidays,
	}, nil
}
