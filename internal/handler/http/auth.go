package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewAuthHandler(employeeService employee.EmployeeService) AuthHandler {
	return &authHandlerImpl{
		employeeService: employeeService,
	}
}

// Login implements AuthHandler.
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req employee.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.employeeService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", resp)
}

// Me implements AuthHandler.
func (h *authHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	profile, err := h.employeeService.Get(r.Context(), actor, actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, profile)
}

// actorFrom reads the caller stored by the auth middleware, answering 401
// when it is missing.
func actorFrom(w http.ResponseWriter, r *http.Request) (employee.Actor, bool) {
	actor, ok := employee.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, employee.ErrActorMissing)
		return employee.Actor{}, false
	}
	return actor, true
}

// pathID reads a UUID route parameter. Malformed ids cannot name a stored row,
// so they answer with the resource's not-found error.
func pathID(w http.ResponseWriter, r *http.Request, key string, notFound error) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, notFound)
		return "", false
	}
	return id, true
}
