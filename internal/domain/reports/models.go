package reports

import (
	"errors"
	"time"

	"leavetracker/internal/domain/activity"
)

const (
	TypeLeaveUsage    = "leave-usage"
	TypeDeptAbsence   = "dept-absence"
	TypePendingLeaves = "pending-leaves"
	TypeLeaveBalance  = "leave-balance"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrUnknownReport = errors.New("unknown report type")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrInvalidRange  = errors.New("date range is invalid")
)

type Filter struct {
	DepartmentID int64     `json:"departmentId,omitempty"`
	LeaveTypeID  int64     `json:"leaveTypeId,omitempty"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Year         int       `json:"year"`
}

type UsageRow struct {
	DepartmentName string  `json:"departmentName"`
	UserName       string  `json:"userName"`
	EmployeeCode   string  `json:"employeeId"`
	LeaveTypeName  string  `json:"leaveTypeName"`
	TotalRequests  int     `json:"totalRequests"`
	TotalDays      int     `json:"totalDays"`
	AvgDays        float64 `json:"avgDays"`
}

type DeptAbsenceRow struct {
	DepartmentName     string  `json:"departmentName"`
	TotalEmployees     int     `json:"totalEmployees"`
	TotalRequests      int     `json:"totalRequests"`
	TotalDays          int     `json:"totalDays"`
	AvgDaysPerRequest  float64 `json:"avgDaysPerRequest"`
	AvgDaysPerEmployee float64 `json:"avgDaysPerEmployee"`
}

type PendingRow struct {
	ID             int64     `json:"id"`
	UserName       string    `json:"userName"`
	EmployeeCode   string    `json:"employeeId"`
	DepartmentName string    `json:"departmentName"`
	LeaveTypeName  string    `json:"leaveTypeName"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	WorkingDays    int       `json:"workingDays"`
	SubmittedAt    time.Time `json:"submittedAt"`
	DaysUntilStart int       `json:"daysUntilStart"`
}

type BalanceRow struct {
	UserName        string  `json:"userName"`
	EmployeeCode    string  `json:"employeeId"`
	DepartmentName  string  `json:"departmentName"`
	LeaveTypeName   string  `json:"leaveTypeName"`
	TotalAllocation int     `json:"totalAllocation"`
	UsedDays        int     `json:"usedDays"`
	RemainingDays   int     `json:"remainingDays"`
	UsagePercentage float64 `json:"usagePercentage"`
}

// Report is a rendered table. Rows holds the typed records for JSON callers
// and Cells the same data flattened for file exports.
type Report struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Filter      Filter    `json:"filter"`
	GeneratedAt time.Time `json:"generatedAt"`
	Columns     []string  `json:"columns"`
	Rows        any       `json:"rows"`
	Cells       [][]any   `json:"-"`
}

type Stats struct {
	ActiveUsers      int `json:"activeUsers"`
	PendingRequests  int `json:"pendingRequests"`
	OnLeaveToday     int `json:"onLeaveToday"`
	ApprovedDaysYear int `json:"approvedDaysYear"`
}

type Dashboard struct {
	Stats          Stats            `json:"stats"`
	PendingRecent  []PendingRow     `json:"pendingRecent"`
	RecentActivity []activity.Entry `json:"recentActivity"`
}
