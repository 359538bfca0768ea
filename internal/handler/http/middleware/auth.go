package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a valid access token and stores the
// caller as an employee.Actor in the request context. It expects
// jwtauth.Verifier to run first.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, jwt.ErrInvalidClaims)
				return
			}

			actor, err := jwtService.ActorFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if !actor.Active {
				response.HandleError(w, employee.ErrEmployeeInactive)
				return
			}

			next.ServeHTTP(w, r.WithContext(employee.WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
