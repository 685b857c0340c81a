package leave

import "time"

type LeaveType string

const (
	LeaveTypeAnnual      LeaveType = "annual"
	LeaveTypeSick        LeaveType = "sick"
	LeaveTypeMaternity   LeaveType = "maternity"
	LeaveTypeExceptional LeaveType = "exceptional"
)

var LeaveTypes = []LeaveType{
	LeaveTypeAnnual,
	LeaveTypeSick,
	LeaveTypeMaternity,
	LeaveTypeExceptional,
}

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeMaternity, LeaveTypeExceptional:
		return true
	}
	return false
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) Valid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string

	StartDate     time.Time
	EndDate       time.Time
	RequestedDays int
	LeaveType     LeaveType

	Status LeaveRequestStatus
	Reason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// ApprovedLeave is the authoritative record of a granted absence. It is
// produced by approving a request, or by a direct grant when SourceRequestID is nil.
type ApprovedLeave struct {
	ID         string
	EmployeeID string

	StartDate time.Time
	EndDate   time.Time
	Days      int
	LeaveType LeaveType

	SourceRequestID *string

	CreatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

type EventType string

const (
	EventRequestCreated   EventType = "request.created"
	EventRequestApproved  EventType = "request.approved"
	EventRequestRejected  EventType = "request.rejected"
	EventRequestCancelled EventType = "request.cancelled"
	EventLeaveGranted     EventType = "leave.granted"
	EventLeaveRevoked     EventType = "leave.revoked"
)

// LeaveEvent is one entry of the append-only lifecycle log. Every write to the
// request or approved-leave tables is recorded by exactly one event in the
// same transaction.
type LeaveEvent struct {
	ID              string
	Type            EventType
	RequestID       *string
	ApprovedLeaveID *string
	EmployeeID      string
	ActorID         string
	ActorRole       string
	OccurredAt      time.Time
}
