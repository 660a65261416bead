package leave

import (
	"strings"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

const (
	TypeStatusActive   = "active"
	TypeStatusInactive = "inactive"
)

const (
	HolidayPublic  = "public"
	HolidayCompany = "company"
)

// UnpaidTypeName names the leave type that is exempt from balance checks.
const UnpaidTypeName = "Unpaid Leave"

type LeaveType struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	DefaultAllocation     int       `json:"defaultAllocation"`
	CarryForwardLimit     int       `json:"carryForwardLimit"`
	MinNoticeDays         int       `json:"minNoticeDays"`
	RequiresDocumentation bool      `json:"requiresDocumentation"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
}

func (t LeaveType) IsUnpaid() bool {
	return strings.EqualFold(strings.TrimSpace(t.Name), UnpaidTypeName)
}

func (t LeaveType) Active() bool {
	return t.Status == TypeStatusActive
}

type LeaveBalance struct {
	ID              int64     `json:"id,omitempty"`
	UserID          int64     `json:"userId"`
	LeaveTypeID     int64     `json:"leaveTypeId"`
	LeaveTypeName   string    `json:"leaveTypeName,omitempty"`
	Year            int       `json:"year"`
	TotalAllocation int       `json:"totalAllocation"`
	UsedDays        int       `json:"usedDays"`
	RemainingDays   int       `json:"remainingDays"`
	Provisioned     bool      `json:"provisioned"`
	UpdatedAt       time.Time `json:"updatedAt,omitempty"`
}

type LeaveRequest struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	UserName       string     `json:"userName,omitempty"`
	EmployeeCode   string     `json:"employeeId,omitempty"`
	DepartmentName string     `json:"departmentName,omitempty"`
	LeaveTypeID    int64      `json:"leaveTypeId"`
	LeaveTypeName  string     `json:"leaveTypeName,omitempty"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	TotalDays      int        `json:"totalDays"`
	WorkingDays    int        `json:"workingDays"`
	Reason         string     `json:"reason"`
	ContactInfo    string     `json:"contactInfo,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	DecidedBy      *int64     `json:"decidedBy,omitempty"`
	DecidedByName  string     `json:"decidedByName,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	DeciderComment *string    `json:"deciderComment,omitempty"`
}

type Holiday struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	AppliesTo   string    `json:"appliesTo"`
	Description string    `json:"description"`
}

type SubmitInput struct {
	LeaveTypeID int64
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	ContactInfo string
}

type DecisionInput struct {
	RequestID int64
	Decision  string
	Comment   string
}

type DecisionResult struct {
	Request         LeaveRequest  `json:"request"`
	BalanceAdjusted bool          `json:"balanceAdjusted"`
	Balance         *LeaveBalance `json:"balance,omitempty"`
}

type RequestFilter struct {
	UserID       int64
	DepartmentID int64
	LeaveTypeID  int64
	Status       string
	Limit        int
	Offset       int
}

type RequestList struct {
	Requests []LeaveRequest `json:"requests"`
	Total    int            `json:"total"`
}

type Summary struct {
	Year          int `json:"year"`
	TotalRequests int `json:"totalRequests"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	DaysUsed      int `json:"daysUsed"`
}

type TeamMember struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EmployeeCode string `json:"employeeId"`
	Self         bool   `json:"self"`
}

type Calendar struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Team     []TeamMember   `json:"team"`
	Leaves   []LeaveRequest `json:"leaves"`
	Holidays []Holiday      `json:"holidays"`
}
