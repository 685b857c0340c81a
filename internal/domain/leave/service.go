package leave

import (
	"context"
	"iter"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
)

type LeaveService interface {
	// Request lifecycle
	CreateRequest(ctx context.Context, actor user.Actor, req CreateLeaveRequestRequest) (LeaveRequest, error)
	GetRequest(ctx context.Context, actor user.Actor, requestID string) (LeaveRequest, error)
	ListRequests(ctx context.Context, actor user.Actor, filter LeaveRequestFilter) (iter.Seq2[LeaveRequest, error], error)
	Transition(ctx context.Context, actor user.Actor, requestID string, status LeaveRequestStatus) (LeaveRequest, error)
	CancelRequest(ctx context.Context, actor user.Actor, requestID string) error
	History(ctx context.Context, actor user.Actor, requestID string) ([]LeaveEvent, error)

	// Approved leave
	GrantLeave(ctx context.Context, actor user.Actor, req GrantLeaveRequest) (ApprovedLeave, error)
	DeleteApprovedLeave(ctx context.Context, actor user.Actor, approvedLeaveID string) error
	ListApprovedLeaves(ctx context.Context, actor user.Actor, employeeID *string) ([]ApprovedLeave, error)

	// Balance
	ActiveLeaves(ctx context.Context, actor user.Actor, employeeID string, asOf time.Time) ([]ApprovedLeave, error)
	RemainingDays(ctx context.Context, actor user.Actor, employeeID string, asOf time.Time) (int, error)
	CountByStatus(ctx context.Context, actor user.Actor, employeeID *string, status LeaveRequestStatus) (int64, error)
	Summary(ctx context.Context, actor user.Actor, employeeID *string, asOf time.Time) (LeaveSummary, error)
}
