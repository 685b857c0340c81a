package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	hasDetails := errors.As(err, &validationErrs)

	switch {
	// Conflicts with stored state
	case errors.Is(err, leave.ErrOverlappingLeave):
		var details map[string]string
		if hasDetails {
			details = validationErrs.ToMap()
		}
		Conflict(w, leave.ErrOverlappingLeave.Error(), details)
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, leave.ErrLeaveRequestNotPending):
		Conflict(w, err.Error(), nil)

	// Field level validation
	case hasDetails:
		ValidationError(w, validationErrs.ToMap())
	case errors.Is(err, leave.ErrValidation):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, leave.ErrNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())

	case errors.Is(err, leave.ErrForbidden),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, notification.ErrNoEmployeeRecord):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUnknownRole):
		Unauthorized(w, "Token carries an unknown role")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
