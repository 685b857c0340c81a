package leave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
)

var errStoreDown = errors.New("store unavailable")

// memoryStore backs the fake repositories. It offers no multi-record
// atomicity, which makes the service run its compensating steps.
type memoryStore struct {
	mu        sync.Mutex
	requests  map[string]leave.LeaveRequest
	approved  map[string]leave.ApprovedLeave
	events    []leave.LeaveEvent
	employees map[string]bool
	now       func() time.Time

	failUpdateStatus   error
	failAppend         error
	failApprovedInsert error
	failFindAll        error
	findAllCalls       int
}

func newMemoryStore(now func() time.Time, employeeIDs ...string) *memoryStore {
	s := &memoryStore{
		requests:  make(map[string]leave.LeaveRequest),
		approved:  make(map[string]leave.ApprovedLeave),
		employees: make(map[string]bool),
		now:       now,
	}
	for _, id := range employeeIDs {
		s.employees[id] = true
	}
	return s
}

type memoryTransactor struct{}

func (memoryTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (memoryTransactor) Atomic() bool { return false }

type memoryDirectory struct{ s *memoryStore }

func (d memoryDirectory) Exists(ctx context.Context, id string) (bool, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.employees[id], nil
}

type memoryRequestRepo struct{ s *memoryStore }

func (r memoryRequestRepo) Insert(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.requests[request.ID]; exists {
		return leave.LeaveRequest{}, fmt.Errorf("duplicate leave request %s", request.ID)
	}
	r.s.requests[request.ID] = request
	return request, nil
}

func (r memoryRequestRepo) FindByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

func (r memoryRequestRepo) FindByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.FindAll(ctx, leave.LeaveRequestFilter{EmployeeID: &employeeID, PageSize: 1 << 20})
}

func (r memoryRequestRepo) FindAll(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.findAllCalls++
	if r.s.failFindAll != nil {
		return nil, r.s.failFindAll
	}

	var out []leave.LeaveRequest
	for _, request := range r.s.requests {
		if filter.EmployeeID != nil && request.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		out = append(out, request)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if filter.After != nil {
		start := len(out)
		for i, request := range out {
			if request.CreatedAt.Before(filter.After.CreatedAt) ||
				(request.CreatedAt.Equal(filter.After.CreatedAt) && request.ID < filter.After.ID) {
				start = i
				break
			}
		}
		out = out[start:]
	}

	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, nil
}

func (r memoryRequestRepo) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUpdateStatus != nil && status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequest{}, r.s.failUpdateStatus
	}
	request, ok := r.s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	request.Status = status
	request.UpdatedAt = r.s.now()
	r.s.requests[id] = request
	return request, nil
}

func (r memoryRequestRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.s.requests, id)
	return nil
}

func (r memoryRequestRepo) CountByStatus(ctx context.Context, employeeID *string, status leave.LeaveRequestStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, request := range r.s.requests {
		if employeeID != nil && request.EmployeeID != *employeeID {
			continue
		}
		if request.Status == status {
			n++
		}
	}
	return n, nil
}

type memoryApprovedRepo struct{ s *memoryStore }

func (r memoryApprovedRepo) Insert(ctx context.Context, l leave.ApprovedLeave) (leave.ApprovedLeave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failApprovedInsert != nil {
		return leave.ApprovedLeave{}, r.s.failApprovedInsert
	}
	r.s.approved[l.ID] = l
	return l, nil
}

func (r memoryApprovedRepo) FindByID(ctx context.Context, id string) (leave.ApprovedLeave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.approved[id]
	if !ok {
		return leave.ApprovedLeave{}, leave.ErrApprovedLeaveNotFound
	}
	return l, nil
}

func (r memoryApprovedRepo) FindByEmployee(ctx context.Context, employeeID string) ([]leave.ApprovedLeave, error) {
	all, _ := r.FindAll(ctx)
	var out []leave.ApprovedLeave
	for _, l := range all {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memoryApprovedRepo) FindAll(ctx context.Context) ([]leave.ApprovedLeave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]leave.ApprovedLeave, 0, len(r.s.approved))
	for _, l := range r.s.approved {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r memoryApprovedRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.approved[id]; !ok {
		return leave.ErrApprovedLeaveNotFound
	}
	delete(r.s.approved, id)
	return nil
}

func (r memoryApprovedRepo) Count(ctx context.Context, employeeID *string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.approved {
		if employeeID == nil || l.EmployeeID == *employeeID {
			n++
		}
	}
	return n, nil
}

type memoryEventRepo struct{ s *memoryStore }

func (r memoryEventRepo) Append(ctx context.Context, event leave.LeaveEvent) (leave.LeaveEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAppend != nil {
		return leave.LeaveEvent{}, r.s.failAppend
	}
	r.s.events = append(r.s.events, event)
	return event, nil
}

func (r memoryEventRepo) FindByRequest(ctx context.Context, requestID string) ([]leave.LeaveEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []leave.LeaveEvent
	for _, e := range r.s.events {
		if e.RequestID != nil && *e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) eventTypes() []leave.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leave.EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}
