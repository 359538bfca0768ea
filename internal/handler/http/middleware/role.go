package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
)

// RequireLevel lets through active callers at or above level.
func RequireLevel(level employee.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := employee.ActorFromContext(r.Context())
			if !ok {
				response.HandleError(w, employee.ErrActorMissing)
				return
			}

			if !actor.Active || actor.Level < level {
				response.Forbidden(w, fmt.Sprintf("Insufficient access level: required %d, but employee has %d", level, actor.Level))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePrivileged is RequireLevel at the level allowed to act on other
// employees.
func RequirePrivileged(next http.Handler) http.Handler {
	return RequireLevel(employee.PrivilegedLevel)(next)
}
