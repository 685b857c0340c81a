package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
)

// BalanceCalculator derives absence figures from approved leave. It keeps no
// state; every call reads the stores again.
type BalanceCalculator struct {
	leave.LeaveRequestRepository
	leave.ApprovedLeaveRepository
}

func NewBalanceCalculator(leaveRequestRepository leave.LeaveRequestRepository, approvedLeaveRepository leave.ApprovedLeaveRepository) *BalanceCalculator {
	return &BalanceCalculator{
		LeaveRequestRepository:  leaveRequestRepository,
		ApprovedLeaveRepository: approvedLeaveRepository,
	}
}

// ActiveLeaves returns the employee's approved leave ending on or after asOf.
func (b *BalanceCalculator) ActiveLeaves(ctx context.Context, employeeID string, asOf time.Time) ([]leave.ApprovedLeave, error) {
	leaves, err := b.ApprovedLeaveRepository.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, leave.Persistence("find approved leaves by employee", err)
	}
	return filterActive(leaves, employeeID, asOf), nil
}

// RemainingDays sums the days still ahead of asOf over the employee's active leave.
func (b *BalanceCalculator) RemainingDays(ctx context.Context, employeeID string, asOf time.Time) (int, error) {
	active, err := b.ActiveLeaves(ctx, employeeID, asOf)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, l := range active {
		total += leave.DaysLeft(asOf, l.EndDate)
	}
	return total, nil
}

// CountByStatus counts pending and rejected requests from the request store
// and approved leave from the approved store, so direct grants are included.
func (b *BalanceCalculator) CountByStatus(ctx context.Context, employeeID *string, status leave.LeaveRequestStatus) (int64, error) {
	switch status {
	case leave.LeaveRequestStatusApproved:
		n, err := b.ApprovedLeaveRepository.Count(ctx, employeeID)
		if err != nil {
			return 0, leave.Persistence("count approved leaves", err)
		}
		return n, nil
	case leave.LeaveRequestStatusPending, leave.LeaveRequestStatusRejected:
		n, err := b.LeaveRequestRepository.CountByStatus(ctx, employeeID, status)
		if err != nil {
			return 0, leave.Persistence("count leave requests", err)
		}
		return n, nil
	default:
		return 0, leave.ErrInvalidStatus
	}
}

// ActiveCount counts active leave across every employee.
func (b *BalanceCalculator) ActiveCount(ctx context.Context, asOf time.Time) (int, error) {
	leaves, err := b.ApprovedLeaveRepository.FindAll(ctx)
	if err != nil {
		return 0, leave.Persistence("find approved leaves", err)
	}
	return len(filterActive(leaves, "", asOf)), nil
}

func filterActive(leaves []leave.ApprovedLeave, employeeID string, asOf time.Time) []leave.ApprovedLeave {
	asOf = leave.NormalizeDate(asOf)
	active := make([]leave.ApprovedLeave, 0, len(leaves))
	for _, l := range leaves {
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		if leave.NormalizeDate(l.EndDate).Before(asOf) {
			continue
		}
		active = append(active, l)
	}
	return active
}
