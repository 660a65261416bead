package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	GetType(ctx context.Context, id int64) (LeaveType, error)
	CreateType(ctx context.Context, payload LeaveType) (int64, error)

	GetBalance(ctx context.Context, userID, leaveTypeID int64, year int) (LeaveBalance, error)
	ListBalances(ctx context.Context, userID int64, year int) ([]LeaveBalance, error)
	InsertBalances(ctx context.Context, userID int64, year int, types []LeaveType) (int, error)

	CreateRequest(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetRequest(ctx context.Context, id int64) (LeaveRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) (RequestList, error)
	RequestSummary(ctx context.Context, userID int64, year int) (Summary, error)

	ListHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error)
	CreateHoliday(ctx context.Context, payload Holiday) (int64, error)

	UserDepartment(ctx context.Context, userID int64) (int64, error)
	TeamMembers(ctx context.Context, userID int64) ([]TeamMember, error)
	ApprovedLeavesBetween(ctx context.Context, userIDs []int64, from, to time.Time) ([]LeaveRequest, error)

	// InTx runs fn inside one database transaction, committing when fn
	// returns nil.
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore holds the statements that must share the decision transaction.
type TxStore interface {
	DecidePending(ctx context.Context, id int64, status string, deciderID int64, comment string, at time.Time) (bool, error)
	GetRequest(ctx context.Context, id int64) (LeaveRequest, error)
	LockBalance(ctx context.Context, userID, leaveTypeID int64, year int) (LeaveBalance, error)
	UpdateBalanceUsage(ctx context.Context, balanceID int64, used, remaining int) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, description string) error
}
