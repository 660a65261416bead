package leave

import (
	"errors"
	"time"
)

var errEndBeforeStart = errors.New("end date before start date")

// CivilDate drops the clock part of t, keeping the calendar day as seen in t's
// location, and returns it as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(CivilDate(to).Sub(CivilDate(from)).Hours() / 24)
}

// TotalDays returns the inclusive calendar day count between start and end.
func TotalDays(start, end time.Time) (int, error) {
	n := daysBetween(start, end)
	if n < 0 {
		return 0, errEndBeforeStart
	}
	return n + 1, nil
}

// WorkingDays counts the days in [start, end] that fall on Monday to Friday.
func WorkingDays(start, end time.Time) (int, error) {
	total, err := TotalDays(start, end)
	if err != nil {
		return 0, err
	}
	day := CivilDate(start)
	count := 0
	for i := 0; i < total; i++ {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count, nil
}

// NoticeDays is the number of days from today until start; negative when start
// has passed.
func NoticeDays(today, start time.Time) int {
	return daysBetween(today, start)
}

// BalanceYear selects the ledger year a request is charged against.
func BalanceYear(start time.Time) int {
	return start.Year()
}

// ApplyApproval charges days against b. Remaining never drops below zero while
// used is not capped.
func ApplyApproval(b LeaveBalance, days int) LeaveBalance {
	b.UsedDays += days
	b.RemainingDays -= days
	if b.RemainingDays < 0 {
		b.RemainingDays = 0
	}
	return b
}

// DefaultBalance is the balance shown for a leave type with no ledger row.
func DefaultBalance(userID int64, t LeaveType, year int) LeaveBalance {
	return LeaveBalance{
		UserID:          userID,
		LeaveTypeID:     t.ID,
		LeaveTypeName:   t.Name,
		Year:            year,
		TotalAllocation: t.DefaultAllocation,
		UsedDays:        0,
		RemainingDays:   t.DefaultAllocation,
		Provisioned:     false,
	}
}

// MonthRange returns the first and last day of the month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
