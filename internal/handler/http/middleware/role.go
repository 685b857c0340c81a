package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !user.HasPermission(actor.Role, permission) {
				response.HandleError(w, fmt.Errorf("%w: required '%s', but user role is '%s'", user.ErrInsufficientPermissions, permission, actor.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
