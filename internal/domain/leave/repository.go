package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Insert(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	FindByID(ctx context.Context, id string) (LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	// FindAll returns one page ordered by created_at DESC, id DESC, starting after filter.After.
	FindAll(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id string, status LeaveRequestStatus) (LeaveRequest, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, employeeID *string, status LeaveRequestStatus) (int64, error)
}

// ApprovedLeaveRepository - interface for approved_leaves table
type ApprovedLeaveRepository interface {
	Insert(ctx context.Context, leave ApprovedLeave) (ApprovedLeave, error)
	FindByID(ctx context.Context, id string) (ApprovedLeave, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]ApprovedLeave, error)
	FindAll(ctx context.Context) ([]ApprovedLeave, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, employeeID *string) (int64, error)
}

// EventRepository - interface for the append-only leave_events table.
// approved_leaves is a projection kept alongside this log: every workflow
// write to it appends its event in the same transaction, so the table can be
// rebuilt from leave.granted, request.approved and leave.revoked events.
type EventRepository interface {
	Append(ctx context.Context, event LeaveEvent) (LeaveEvent, error)
	FindByRequest(ctx context.Context, requestID string) ([]LeaveEvent, error)
}

// Transactor runs fn so that the repository calls made with the context it
// receives commit or roll back together. Atomic reports whether the store
// really guarantees that; when it does not, callers undo partial writes
// themselves.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}
