package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTotalDays(t *testing.T) {
	days, err := TotalDays(date(2025, 1, 10), date(2025, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	days, err = TotalDays(date(2025, 1, 10), date(2025, 1, 12))
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = TotalDays(date(2024, 12, 30), date(2025, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 4, days)
}

func TestTotalDaysInvalid(t *testing.T) {
	_, err := TotalDays(date(2025, 2, 10), date(2025, 2, 9))
	assert.Error(t, err)
}

func TestTotalDaysIgnoresClock(t *testing.T) {
	start := time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 4, 0, 15, 0, 0, time.UTC)
	days, err := TotalDays(start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestWorkingDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		// 2025-03-03 is a Monday.
		{name: "single weekday", start: date(2025, 3, 3), end: date(2025, 3, 3), want: 1},
		{name: "full week", start: date(2025, 3, 3), end: date(2025, 3, 9), want: 5},
		{name: "weekend only", start: date(2025, 3, 8), end: date(2025, 3, 9), want: 0},
		{name: "friday to monday", start: date(2025, 3, 7), end: date(2025, 3, 10), want: 2},
		{name: "two weeks", start: date(2025, 3, 3), end: date(2025, 3, 14), want: 10},
		{name: "across year end", start: date(2025, 12, 29), end: date(2026, 1, 4), want: 5},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := WorkingDays(tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWorkingDaysNeverExceedTotal(t *testing.T) {
	start := date(2025, 1, 1)
	for offset := 0; offset < 60; offset++ {
		for length := 0; length < 21; length++ {
			s := start.AddDate(0, 0, offset)
			e := s.AddDate(0, 0, length)
			total, err := TotalDays(s, e)
			require.NoError(t, err)
			working, err := WorkingDays(s, e)
			require.NoError(t, err)
			assert.LessOrEqual(t, working, total)

			hasWeekend := false
			for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
				if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
					hasWeekend = true
					break
				}
			}
			assert.Equal(t, !hasWeekend, working == total, "range %s..%s", s.Format("2006-01-02"), e.Format("2006-01-02"))
		}
	}
}

func TestNoticeDays(t *testing.T) {
	today := date(2025, 5, 1)
	assert.Equal(t, 0, NoticeDays(today, today))
	assert.Equal(t, 7, NoticeDays(today, date(2025, 5, 8)))
	assert.Equal(t, -1, NoticeDays(today, date(2025, 4, 30)))
}

func TestApplyApproval(t *testing.T) {
	balance := LeaveBalance{TotalAllocation: 20, UsedDays: 5, RemainingDays: 15}

	got := ApplyApproval(balance, 3)
	assert.Equal(t, 8, got.UsedDays)
	assert.Equal(t, 12, got.RemainingDays)

	got = ApplyApproval(LeaveBalance{TotalAllocation: 5, UsedDays: 3, RemainingDays: 2}, 5)
	assert.Equal(t, 8, got.UsedDays)
	assert.Equal(t, 0, got.RemainingDays)
}

func TestDefaultBalance(t *testing.T) {
	lt := LeaveType{ID: 4, Name: "Annual Leave", DefaultAllocation: 21}
	got := DefaultBalance(9, lt, 2026)
	assert.Equal(t, LeaveBalance{UserID: 9, LeaveTypeID: 4, LeaveTypeName: "Annual Leave", Year: 2026, TotalAllocation: 21, RemainingDays: 21}, got)
}

func TestIsUnpaid(t *testing.T) {
	assert.True(t, LeaveType{Name: "Unpaid Leave"}.IsUnpaid())
	assert.True(t, LeaveType{Name: " unpaid leave "}.IsUnpaid())
	assert.False(t, LeaveType{Name: "Annual Leave"}.IsUnpaid())
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2024, time.February)
	assert.Equal(t, date(2024, 2, 1), from)
	assert.Equal(t, date(2024, 2, 29), to)
}
