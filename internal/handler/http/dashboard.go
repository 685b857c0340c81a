package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetLeaveSummary returns status counters and active leave as of a date
	GetLeaveSummary(w http.ResponseWriter, r *http.Request)
	// GetStatusCount returns the number of leave records in one status
	GetStatusCount(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewDashboardHandler(leaveService leave.LeaveService) DashboardHandler {
	return &dashboardHandlerImpl{leaveService: leaveService, now: time.Now}
}

type statusCountResponse struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     string  `json:"status"`
	Count      int64   `json:"count"`
}

// GetLeaveSummary handles GET /dashboard/leave-summary
func (h *dashboardHandlerImpl) GetLeaveSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	asOf, err := asOfParam(r, h.now()) // format: YYYY-MM-DD, default: today
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.Summary(r.Context(), actor, optionalQuery(r, "employee_id"), asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStatusCount handles GET /dashboard/leave-count
func (h *dashboardHandlerImpl) GetStatusCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	status := leave.LeaveRequestStatus(r.URL.Query().Get("status"))
	employeeID := optionalQuery(r, "employee_id")

	count, err := h.leaveService.CountByStatus(r.Context(), actor, employeeID, status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, statusCountResponse{
		EmployeeID: employeeID,
		Status:     string(status),
		Count:      count,
	})
}
