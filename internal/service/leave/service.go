package leave

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type LeaveServiceImpl struct {
	tx        leave.Transactor
	requests  leave.LeaveRequestRepository
	approved  leave.ApprovedLeaveRepository
	events    leave.EventRepository
	directory employee.Directory
	balance   *BalanceCalculator

	now   func() time.Time
	newID func() string
}

func NewLeaveService(
	tx leave.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	approvedLeaveRepository leave.ApprovedLeaveRepository,
	eventRepository leave.EventRepository,
	directory employee.Directory,
	balance *BalanceCalculator,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:        tx,
		requests:  leaveRequestRepository,
		approved:  approvedLeaveRepository,
		events:    eventRepository,
		directory: directory,
		balance:   balance,
		now:       time.Now,
		newID:     func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

func (l *LeaveServiceImpl) compensator() *compensator {
	return &compensator{enabled: !l.tx.Atomic()}
}

func (l *LeaveServiceImpl) appendEvent(ctx context.Context, actor user.Actor, eventType leave.EventType, employeeID string, requestID, approvedLeaveID *string) error {
	_, err := l.events.Append(ctx, leave.LeaveEvent{
		ID:              l.newID(),
		Type:            eventType,
		RequestID:       requestID,
		ApprovedLeaveID: approvedLeaveID,
		EmployeeID:      employeeID,
		ActorID:         actor.UserID,
		ActorRole:       string(actor.Role),
		OccurredAt:      l.now().UTC(),
	})
	if err != nil {
		return leave.Persistence("append leave event", err)
	}
	return nil
}

func (l *LeaveServiceImpl) ensureEmployee(ctx context.Context, employeeID string) error {
	exists, err := l.directory.Exists(ctx, employeeID)
	if err != nil {
		return leave.Persistence("resolve employee", err)
	}
	if !exists {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

func (l *LeaveServiceImpl) checkOverlap(ctx context.Context, employeeID string, start, end time.Time) error {
	existing, err := l.approved.FindByEmployee(ctx, employeeID)
	if err != nil {
		return leave.Persistence("find approved leaves by employee", err)
	}
	return ValidateRange(employeeID, start, end, existing)
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := authorize(actor, user.PermissionLeaveCreate); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, leave.Invalid(err)
	}
	if err := authorizeEmployee(actor, req.EmployeeID); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := l.ensureEmployee(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequest{}, err
	}

	startDate, endDate := req.Range()
	if err := l.checkOverlap(ctx, req.EmployeeID, startDate, endDate); err != nil {
		return leave.LeaveRequest{}, err
	}

	now := l.now().UTC()
	request := leave.LeaveRequest{
		ID:            l.newID(),
		EmployeeID:    req.EmployeeID,
		StartDate:     startDate,
		EndDate:       endDate,
		RequestedDays: leave.InclusiveDays(startDate, endDate),
		LeaveType:     leave.LeaveType(req.LeaveType),
		Status:        leave.LeaveRequestStatusPending,
		Reason:        req.Reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		undo := l.compensator()

		inserted, err := l.requests.Insert(ctx, request)
		if err != nil {
			return leave.Persistence("insert leave request", err)
		}
		undo.add("delete leave request", func(ctx context.Context) error {
			return l.requests.Delete(ctx, inserted.ID)
		})

		if err := l.appendEvent(ctx, actor, leave.EventRequestCreated, inserted.EmployeeID, &inserted.ID, nil); err != nil {
			undo.rollback(ctx)
			return err
		}

		created = inserted
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.InfoContext(ctx, "leave request created",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"requested_days", created.RequestedDays,
	)
	return created, nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequest, error) {
	if err := authorize(actor, user.PermissionLeaveViewOwn); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := checkID(requestID, leave.ErrLeaveRequestNotFound); err != nil {
		return leave.LeaveRequest{}, err
	}

	request, err := l.requests.FindByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, leave.Persistence("find leave request", err)
	}

	if err := authorizeEmployee(actor, request.EmployeeID); err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

// ListRequests implements leave.LeaveService. The returned sequence fetches
// pages lazily and starts from the first page on every range.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, actor user.Actor, filter leave.LeaveRequestFilter) (iter.Seq2[leave.LeaveRequest, error], error) {
	if err := filter.Validate(); err != nil {
		return nil, leave.Invalid(err)
	}

	employeeID, err := scopeEmployee(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID
	if filter.PageSize == 0 {
		filter.PageSize = leave.DefaultPageSize
	}

	return func(yield func(leave.LeaveRequest, error) bool) {
		page := filter
		for {
			batch, err := l.requests.FindAll(ctx, page)
			if err != nil {
				yield(leave.LeaveRequest{}, leave.Persistence("list leave requests", err))
				return
			}

			for _, request := range batch {
				if !yield(request, nil) {
					return
				}
			}

			if len(batch) < page.PageSize {
				return
			}
			last := batch[len(batch)-1]
			page.After = &leave.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}, nil
}

// Transition implements leave.LeaveService.
func (l *LeaveServiceImpl) Transition(ctx context.Context, actor user.Actor, requestID string, status leave.LeaveRequestStatus) (leave.LeaveRequest, error) {
	if err := authorize(actor, user.PermissionLeaveApprove); err != nil {
		return leave.LeaveRequest{}, err
	}

	var eventType leave.EventType
	switch status {
	case leave.LeaveRequestStatusApproved:
		eventType = leave.EventRequestApproved
	case leave.LeaveRequestStatusRejected:
		eventType = leave.EventRequestRejected
	default:
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}
	if err := checkID(requestID, leave.ErrLeaveRequestNotFound); err != nil {
		return leave.LeaveRequest{}, err
	}

	var decided leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := l.requests.FindByID(ctx, requestID)
		if err != nil {
			return leave.Persistence("find leave request", err)
		}

		if request.Status.IsTerminal() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		undo := l.compensator()

		var approvedLeaveID *string
		if status == leave.LeaveRequestStatusApproved {
			if err := l.checkOverlap(ctx, request.EmployeeID, request.StartDate, request.EndDate); err != nil {
				return err
			}

			sourceRequestID := request.ID
			granted, err := l.approved.Insert(ctx, leave.ApprovedLeave{
				ID:              l.newID(),
				EmployeeID:      request.EmployeeID,
				StartDate:       request.StartDate,
				EndDate:         request.EndDate,
				Days:            request.RequestedDays,
				LeaveType:       request.LeaveType,
				SourceRequestID: &sourceRequestID,
				CreatedAt:       l.now().UTC(),
			})
			if err != nil {
				return leave.Persistence("insert approved leave", err)
			}
			undo.add("delete approved leave", func(ctx context.Context) error {
				return l.approved.Delete(ctx, granted.ID)
			})
			approvedLeaveID = &granted.ID
		}

		updated, err := l.requests.UpdateStatus(ctx, request.ID, status)
		if err != nil {
			undo.rollback(ctx)
			return leave.Persistence("update leave request status", err)
		}
		undo.add("restore pending status", func(ctx context.Context) error {
			_, err := l.requests.UpdateStatus(ctx, request.ID, leave.LeaveRequestStatusPending)
			return err
		})

		if err := l.appendEvent(ctx, actor, eventType, request.EmployeeID, &request.ID, approvedLeaveID); err != nil {
			undo.rollback(ctx)
			return err
		}

		decided = updated
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	slog.InfoContext(ctx, "leave request decided",
		"request_id", decided.ID,
		"status", decided.Status,
		"actor_id", actor.UserID,
	)
	return decided, nil
}

// CancelRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CancelRequest(ctx context.Context, actor user.Actor, requestID string) error {
	if err := authorize(actor, user.PermissionLeaveCancelOwn); err != nil {
		return err
	}
	if err := checkID(requestID, leave.ErrLeaveRequestNotFound); err != nil {
		return err
	}

	return l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := l.requests.FindByID(ctx, requestID)
		if err != nil {
			return leave.Persistence("find leave request", err)
		}

		if !user.HasPermission(actor.Role, user.PermissionLeaveCancelAny) {
			if err := authorizeEmployee(actor, request.EmployeeID); err != nil {
				return err
			}
		}

		if request.Status.IsTerminal() {
			return leave.ErrLeaveRequestNotPending
		}

		undo := l.compensator()

		if err := l.requests.Delete(ctx, request.ID); err != nil {
			return leave.Persistence("delete leave request", err)
		}
		undo.add("reinsert leave request", func(ctx context.Context) error {
			_, err := l.requests.Insert(ctx, request)
			return err
		})

		if err := l.appendEvent(ctx, actor, leave.EventRequestCancelled, request.EmployeeID, &request.ID, nil); err != nil {
			undo.rollback(ctx)
			return err
		}

		return nil
	})
}

// History implements leave.LeaveService. Events outlive a cancelled request,
// so access is checked against the employee recorded on the log.
func (l *LeaveServiceImpl) History(ctx context.Context, actor user.Actor, requestID string) ([]leave.LeaveEvent, error) {
	if err := authorize(actor, user.PermissionLeaveViewOwn); err != nil {
		return nil, err
	}
	if err := checkID(requestID, leave.ErrLeaveRequestNotFound); err != nil {
		return nil, err
	}

	events, err := l.events.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, leave.Persistence("find leave events", err)
	}
	if len(events) == 0 {
		return nil, leave.ErrLeaveRequestNotFound
	}

	if err := authorizeEmployee(actor, events[0].EmployeeID); err != nil {
		return nil, err
	}

	return events, nil
}

// GrantLeave implements leave.LeaveService. It is the only way to create an
// approved leave without a request.
func (l *LeaveServiceImpl) GrantLeave(ctx context.Context, actor user.Actor, req leave.GrantLeaveRequest) (leave.ApprovedLeave, error) {
	if err := authorize(actor, user.PermissionLeaveGrant); err != nil {
		return leave.ApprovedLeave{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApprovedLeave{}, leave.Invalid(err)
	}
	if err := l.ensureEmployee(ctx, req.EmployeeID); err != nil {
		return leave.ApprovedLeave{}, err
	}

	startDate, endDate := req.Range()

	var granted leave.ApprovedLeave
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.checkOverlap(ctx, req.EmployeeID, startDate, endDate); err != nil {
			return err
		}

		undo := l.compensator()

		inserted, err := l.approved.Insert(ctx, leave.ApprovedLeave{
			ID:         l.newID(),
			EmployeeID: req.EmployeeID,
			StartDate:  startDate,
			EndDate:    endDate,
			Days:       leave.InclusiveDays(startDate, endDate),
			LeaveType:  leave.LeaveType(req.LeaveType),
			CreatedAt:  l.now().UTC(),
		})
		if err != nil {
			return leave.Persistence("insert approved leave", err)
		}
		undo.add("delete approved leave", func(ctx context.Context) error {
			return l.approved.Delete(ctx, inserted.ID)
		})

		if err := l.appendEvent(ctx, actor, leave.EventLeaveGranted, inserted.EmployeeID, nil, &inserted.ID); err != nil {
			undo.rollback(ctx)
			return err
		}

		granted = inserted
		return nil
	})
	if err != nil {
		return leave.ApprovedLeave{}, err
	}

	return granted, nil
}

// DeleteApprovedLeave implements leave.LeaveService. The originating request
// keeps its approved status.
func (l *LeaveServiceImpl) DeleteApprovedLeave(ctx context.Context, actor user.Actor, approvedLeaveID string) error {
	if err := authorize(actor, user.PermissionLeaveDeleteGranted); err != nil {
		return err
	}
	if err := checkID(approvedLeaveID, leave.ErrApprovedLeaveNotFound); err != nil {
		return err
	}

	return l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.approved.FindByID(ctx, approvedLeaveID)
		if err != nil {
			return leave.Persistence("find approved leave", err)
		}

		undo := l.compensator()

		if err := l.approved.Delete(ctx, existing.ID); err != nil {
			return leave.Persistence("delete approved leave", err)
		}
		undo.add("reinsert approved leave", func(ctx context.Context) error {
			_, err := l.approved.Insert(ctx, existing)
			return err
		})

		if err := l.appendEvent(ctx, actor, leave.EventLeaveRevoked, existing.EmployeeID, existing.SourceRequestID, &existing.ID); err != nil {
			undo.rollback(ctx)
			return err
		}

		return nil
	})
}

// ListApprovedLeaves implements leave.LeaveService.
func (l *LeaveServiceImpl) ListApprovedLeaves(ctx context.Context, actor user.Actor, employeeID *string) ([]leave.ApprovedLeave, error) {
	scoped, err := scopeEmployee(actor, employeeID)
	if err != nil {
		return nil, err
	}

	var leaves []leave.ApprovedLeave
	if scoped == nil {
		leaves, err = l.approved.FindAll(ctx)
	} else {
		leaves, err = l.approved.FindByEmployee(ctx, *scoped)
	}
	if err != nil {
		return nil, leave.Persistence("list approved leaves", err)
	}

	return leaves, nil
}

// ActiveLeaves implements leave.LeaveService.
func (l *LeaveServiceImpl) ActiveLeaves(ctx context.Context, actor user.Actor, employeeID string, asOf time.Time) ([]leave.ApprovedLeave, error) {
	if err := checkEmployeeID(employeeID); err != nil {
		return nil, err
	}
	if err := authorizeEmployee(actor, employeeID); err != nil {
		return nil, err
	}
	return l.balance.ActiveLeaves(ctx, employeeID, asOf)
}

// RemainingDays implements leave.LeaveService.
func (l *LeaveServiceImpl) RemainingDays(ctx context.Context, actor user.Actor, employeeID string, asOf time.Time) (int, error) {
	if err := checkEmployeeID(employeeID); err != nil {
		return 0, err
	}
	if err := authorizeEmployee(actor, employeeID); err != nil {
		return 0, err
	}
	return l.balance.RemainingDays(ctx, employeeID, asOf)
}

// CountByStatus implements leave.LeaveService.
func (l *LeaveServiceImpl) CountByStatus(ctx context.Context, actor user.Actor, employeeID *string, status leave.LeaveRequestStatus) (int64, error) {
	scoped, err := scopeEmployee(actor, employeeID)
	if err != nil {
		return 0, err
	}
	return l.balance.CountByStatus(ctx, scoped, status)
}

// Summary implements leave.LeaveService.
func (l *LeaveServiceImpl) Summary(ctx context.Context, actor user.Actor, employeeID *string, asOf time.Time) (leave.LeaveSummary, error) {
	scoped, err := scopeEmployee(actor, employeeID)
	if err != nil {
		return leave.LeaveSummary{}, err
	}

	summary := leave.LeaveSummary{
		EmployeeID: scoped,
		AsOf:       leave.NormalizeDate(asOf).Format(leave.DateLayout),
	}

	counters := []struct {
		status leave.LeaveRequestStatus
		dst    *int64
	}{
		{leave.LeaveRequestStatusPending, &summary.Pending},
		{leave.LeaveRequestStatusApproved, &summary.Approved},
		{leave.LeaveRequestStatusRejected, &summary.Rejected},
	}
	for _, c := range counters {
		n, err := l.balance.CountByStatus(ctx, scoped, c.status)
		if err != nil {
			return leave.LeaveSummary{}, err
		}
		*c.dst = n
	}

	if scoped == nil {
		active, err := l.balance.ActiveCount(ctx, asOf)
		if err != nil {
			return leave.LeaveSummary{}, err
		}
		summary.ActiveLeaves = active
		return summary, nil
	}

	active, err := l.balance.ActiveLeaves(ctx, *scoped, asOf)
	if err != nil {
		return leave.LeaveSummary{}, err
	}
	remaining := 0
	for _, a := range active {
		remaining += leave.DaysLeft(asOf, a.EndDate)
	}
	summary.ActiveLeaves = len(active)
	summary.RemainingDays = &remaining

	return summary, nil
}
