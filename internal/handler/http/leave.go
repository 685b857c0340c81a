package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	ListApproved(w http.ResponseWriter, r *http.Request)
	GrantLeave(w http.ResponseWriter, r *http.Request)
	DeleteApproved(w http.ResponseWriter, r *http.Request)

	ActiveLeaves(w http.ResponseWriter, r *http.Request)
	RemainingDays(w http.ResponseWriter, r *http.Request)
}

// Publisher delivers live workflow events to connected staff clients.
type Publisher interface {
	Publish(topic string, name string, data interface{}) int
}

// Notifier queues inbox notifications for the employee a change concerns.
type Notifier interface {
	QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	publisher    Publisher
	notifier     Notifier
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService, publisher Publisher, notifier Notifier) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		publisher:    publisher,
		notifier:     notifier,
		now:          time.Now,
	}
}

// notify queues an inbox entry. The leave change is already committed, so a
// failure here is logged and not reported to the caller.
func (l *LeaveHandlerImpl) notify(ctx context.Context, actor user.Actor, req notification.CreateNotificationRequest) {
	sender := actor.UserID
	req.SenderID = &sender
	if err := l.notifier.QueueNotification(ctx, req); err != nil {
		slog.Warn("Failed to queue leave notification", "employee_id", req.EmployeeID, "type", req.Type, "error", err)
	}
}

func leaveData(id, startDate, endDate, leaveType string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"start_date": startDate,
		"end_date":   endDate,
		"leave_type": leaveType,
	}
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return actor, ok
}

func invalidParam(field, message string) error {
	return leave.Invalid(validator.ValidationErrors{{Field: field, Message: message}})
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// asOfParam reads the as_of query parameter, defaulting to today in UTC.
func asOfParam(r *http.Request, now time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return leave.NormalizeDate(now.UTC()), nil
	}
	asOf, err := leave.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalidParam("as_of", "as_of must be in YYYY-MM-DD format")
	}
	return asOf, nil
}

// employeeParam resolves the employee a balance query is about. Employees
// default to themselves.
func employeeParam(r *http.Request, actor user.Actor) (string, error) {
	if v := r.URL.Query().Get("employee_id"); v != "" {
		return v, nil
	}
	if actor.EmployeeID != "" {
		return actor.EmployeeID, nil
	}
	return "", invalidParam("employee_id", "employee_id is required")
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Employees file for themselves unless they name someone explicitly.
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}

	created, err := l.leaveService.CreateRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := leave.NewLeaveRequestResponse(created)
	l.publisher.Publish(sse.StaffTopic, "leave.requested", resp)
	response.Created(w, "Leave request created successfully", resp)
}

// ListRequests implements LeaveHandler. It returns one page and a cursor for
// the next one.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := leave.LeaveRequestFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		PageSize:   leave.DefaultPageSize,
	}

	if s := query.Get("status"); s != "" {
		status := leave.LeaveRequestStatus(s)
		filter.Status = &status
	}

	if s := query.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			response.HandleError(w, invalidParam("limit", "limit must be a positive integer"))
			return
		}
		filter.PageSize = limit
	}

	if s := query.Get("cursor"); s != "" {
		cursor, err := leave.DecodeCursor(s)
		if err != nil {
			response.HandleError(w, invalidParam("cursor", "cursor is malformed"))
			return
		}
		filter.After = &cursor
	}

	seq, err := l.leaveService.ListRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	page := newListPage(filter.PageSize)
	for request, err := range seq {
		if err != nil {
			if page.full() {
				// Only the look-ahead failed; the page itself is complete.
				slog.WarnContext(r.Context(), "Leave request look-ahead failed", "error", err)
				page.more = true
				break
			}
			response.HandleError(w, err)
			return
		}
		if !page.add(request) {
			break
		}
	}

	response.Success(w, page.response())
}

// listPage collects one page of requests out of a listing sequence. It reads
// one item past the page so a cursor is only handed out when more rows exist.
type listPage struct {
	size     int
	requests []leave.LeaveRequest
	more     bool
}

func newListPage(size int) *listPage {
	return &listPage{size: size, requests: make([]leave.LeaveRequest, 0, size)}
}

func (p *listPage) full() bool {
	return len(p.requests) >= p.size
}

// add takes the next request and reports whether more should be read.
func (p *listPage) add(request leave.LeaveRequest) bool {
	if p.full() {
		p.more = true
		return false
	}
	p.requests = append(p.requests, request)
	return true
}

func (p *listPage) response() leave.ListLeaveRequestResponse {
	resp := leave.ListLeaveRequestResponse{
		Requests: make([]leave.LeaveRequestResponse, 0, len(p.requests)),
	}
	for _, request := range p.requests {
		resp.Requests = append(resp.Requests, leave.NewLeaveRequestResponse(request))
	}
	if p.more && len(p.requests) > 0 {
		last := p.requests[len(p.requests)-1]
		next := leave.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		resp.NextCursor = &next
	}
	return resp
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	request, err := l.leaveService.GetRequest(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveRequestResponse(request))
}

// History implements LeaveHandler.
func (l *LeaveHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	events, err := l.leaveService.History(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveEventResponses(events))
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	l.transition(w, r, leave.LeaveRequestStatusApproved, "Leave request approved successfully")
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	l.transition(w, r, leave.LeaveRequestStatusRejected, "Leave request rejected successfully")
}

func (l *LeaveHandlerImpl) transition(w http.ResponseWriter, r *http.Request, status leave.LeaveRequestStatus, message string) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	decided, err := l.leaveService.Transition(r.Context(), actor, chi.URLParam(r, "id"), status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := leave.NewLeaveRequestResponse(decided)
	l.publisher.Publish(sse.StaffTopic, "leave.decided", resp)

	notifType, title := notification.TypeLeaveApproved, "Leave request approved"
	if decided.Status == leave.LeaveRequestStatusRejected {
		notifType, title = notification.TypeLeaveRejected, "Leave request rejected"
	}
	l.notify(r.Context(), actor, notification.CreateNotificationRequest{
		EmployeeID: decided.EmployeeID,
		Type:       notifType,
		Title:      title,
		Message:    fmt.Sprintf("Your %s leave from %s to %s was %s", resp.LeaveType, resp.StartDate, resp.EndDate, resp.Status),
		Data:       leaveData(resp.ID, resp.StartDate, resp.EndDate, resp.LeaveType),
	})

	response.SuccessWithMessage(w, message, resp)
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	requestID := chi.URLParam(r, "id")
	if err := l.leaveService.CancelRequest(r.Context(), actor, requestID); err != nil {
		response.HandleError(w, err)
		return
	}

	l.publisher.Publish(sse.StaffTopic, "leave.cancelled", map[string]string{"id": requestID})
	response.SuccessWithMessage(w, "Leave request cancelled successfully", nil)
}

// ListApproved implements LeaveHandler.
func (l *LeaveHandlerImpl) ListApproved(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	leaves, err := l.leaveService.ListApprovedLeaves(r.Context(), actor, optionalQuery(r, "employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewApprovedLeaveResponses(leaves))
}

// GrantLeave implements LeaveHandler.
func (l *LeaveHandlerImpl) GrantLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req leave.GrantLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("GrantLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	granted, err := l.leaveService.GrantLeave(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := leave.NewApprovedLeaveResponse(granted)
	l.publisher.Publish(sse.StaffTopic, "leave.granted", resp)
	l.notify(r.Context(), actor, notification.CreateNotificationRequest{
		EmployeeID: granted.EmployeeID,
		Type:       notification.TypeLeaveGranted,
		Title:      "Leave granted",
		Message:    fmt.Sprintf("%s leave from %s to %s was recorded for you", resp.LeaveType, resp.StartDate, resp.EndDate),
		Data:       leaveData(resp.ID, resp.StartDate, resp.EndDate, resp.LeaveType),
	})

	response.Created(w, "Leave granted successfully", resp)
}

// DeleteApproved implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteApproved(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := l.leaveService.DeleteApprovedLeave(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approved leave deleted successfully", nil)
}

// ActiveLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) ActiveLeaves(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	employeeID, err := employeeParam(r, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	asOf, err := asOfParam(r, l.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	active, err := l.leaveService.ActiveLeaves(r.Context(), actor, employeeID, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewApprovedLeaveResponses(active))
}

// RemainingDays implements LeaveHandler.
func (l *LeaveHandlerImpl) RemainingDays(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	employeeID, err := employeeParam(r, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	asOf, err := asOfParam(r, l.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	remaining, err := l.leaveService.RemainingDays(r.Context(), actor, employeeID, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.RemainingDaysResponse{
		EmployeeID:    employeeID,
		AsOf:          asOf.Format(leave.DateLayout),
		RemainingDays: remaining,
	})
}
