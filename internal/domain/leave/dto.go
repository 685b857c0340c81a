package leave

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxReasonLength = 1000
)

func leaveTypeNames() []string {
	names := make([]string, 0, len(LeaveTypes))
	for _, t := range LeaveTypes {
		names = append(names, string(t))
	}
	return names
}

// validateSpan checks employee id, dates and leave type shared by requests and grants.
func validateSpan(employeeID, startDate, endDate, leaveType string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	start, startOK := validator.IsValidDate(startDate)
	if validator.IsEmpty(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(endDate)
	if validator.IsEmpty(endDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be on or after start_date",
		})
	}

	if validator.IsEmpty(leaveType) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	} else if !LeaveType(leaveType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: " + strings.Join(leaveTypeNames(), ", "),
		})
	}

	return errs
}

type CreateLeaveRequestRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	LeaveType  string  `json:"leave_type"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	errs := validateSpan(r.EmployeeID, r.StartDate, r.EndDate, r.LeaveType)

	if r.Reason != nil && utf8.RuneCountInString(*r.Reason) > MaxReasonLength {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: fmt.Sprintf("reason must not exceed %d characters", MaxReasonLength),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range returns the parsed dates. Call only after Validate succeeded.
func (r *CreateLeaveRequestRequest) Range() (time.Time, time.Time) {
	start, _ := ParseDate(r.StartDate)
	end, _ := ParseDate(r.EndDate)
	return start, end
}

// GrantLeaveRequest creates an approved leave directly, without a request.
type GrantLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	LeaveType  string `json:"leave_type"`
}

func (r *GrantLeaveRequest) Validate() error {
	if errs := validateSpan(r.EmployeeID, r.StartDate, r.EndDate, r.LeaveType); len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the parsed dates. Call only after Validate succeeded.
func (r *GrantLeaveRequest) Range() (time.Time, time.Time) {
	start, _ := ParseDate(r.StartDate)
	end, _ := ParseDate(r.EndDate)
	return start, end
}

// Cursor is a keyset position in the created_at DESC, id DESC ordering.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	createdAt, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return Cursor{}, fmt.Errorf("decode cursor: malformed value")
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	return Cursor{CreatedAt: t, ID: id}, nil
}

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *LeaveRequestStatus
	After      *Cursor
	PageSize   int
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if f.Status != nil && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}

	if f.PageSize < 0 || f.PageSize > MaxPageSize {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be between 1 and %d", MaxPageSize),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Responses

type LeaveRequestResponse struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  *string   `json:"employee_name,omitempty"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	RequestedDays int       `json:"requested_days"`
	LeaveType     string    `json:"leave_type"`
	Status        string    `json:"status"`
	Reason        *string   `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		StartDate:     r.StartDate.Format(DateLayout),
		EndDate:       r.EndDate.Format(DateLayout),
		RequestedDays: r.RequestedDays,
		LeaveType:     string(r.LeaveType),
		Status:        string(r.Status),
		Reason:        r.Reason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type ListLeaveRequestResponse struct {
	Requests   []LeaveRequestResponse `json:"requests"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

type ApprovedLeaveResponse struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	EmployeeName    *string   `json:"employee_name,omitempty"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Days            int       `json:"days"`
	LeaveType       string    `json:"leave_type"`
	SourceRequestID *string   `json:"source_request_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewApprovedLeaveResponse(a ApprovedLeave) ApprovedLeaveResponse {
	return ApprovedLeaveResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		StartDate:       a.StartDate.Format(DateLayout),
		EndDate:         a.EndDate.Format(DateLayout),
		Days:            a.Days,
		LeaveType:       string(a.LeaveType),
		SourceRequestID: a.SourceRequestID,
		CreatedAt:       a.CreatedAt,
	}
}

func NewApprovedLeaveResponses(leaves []ApprovedLeave) []ApprovedLeaveResponse {
	out := make([]ApprovedLeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, NewApprovedLeaveResponse(l))
	}
	return out
}

type LeaveEventResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	RequestID       *string   `json:"request_id,omitempty"`
	ApprovedLeaveID *string   `json:"approved_leave_id,omitempty"`
	EmployeeID      string    `json:"employee_id"`
	ActorID         string    `json:"actor_id"`
	ActorRole       string    `json:"actor_role"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewLeaveEventResponses(events []LeaveEvent) []LeaveEventResponse {
	out := make([]LeaveEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, LeaveEventResponse{
			ID:              e.ID,
			Type:            string(e.Type),
			RequestID:       e.RequestID,
			ApprovedLeaveID: e.ApprovedLeaveID,
			EmployeeID:      e.EmployeeID,
			ActorID:         e.ActorID,
			ActorRole:       e.ActorRole,
			OccurredAt:      e.OccurredAt,
		})
	}
	return out
}

type RemainingDaysResponse struct {
	EmployeeID    string `json:"employee_id"`
	AsOf          string `json:"as_of"`
	RemainingDays int    `json:"remaining_days"`
}

// LeaveSummary feeds the dashboard counters.
type LeaveSummary struct {
	EmployeeID    *string `json:"employee_id,omitempty"`
	AsOf          string  `json:"as_of"`
	Pending       int64   `json:"pending"`
	Approved      int64   `json:"approved"`
	Rejected      int64   `json:"rejected"`
	ActiveLeaves  int     `json:"active_leaves"`
	RemainingDays *int    `json:"remaining_days,omitempty"`
}
