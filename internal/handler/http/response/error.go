package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity
	case errors.Is(err, employee.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, jwt.ErrInvalidClaims), errors.Is(err, employee.ErrActorMissing):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")
	case errors.Is(err, employee.ErrPermissionDenied):
		Forbidden(w, "Permission denied")
	case errors.Is(err, employee.ErrInsufficientAccessLevel):
		Forbidden(w, "Insufficient access level")

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUsernameExists):
		Conflict(w, "Username already registered")
	case errors.Is(err, employee.ErrAffiliationNumberExists):
		Conflict(w, "Affiliation number already assigned")

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrDuplicateRequest):
		ValidationError(w, map[string]string{"date": err.Error()})
	case errors.Is(err, leave.ErrInvalidState):
		Conflict(w, "Leave request is no longer pending")
	case errors.Is(err, leave.ErrInvalidDecision):
		BadRequest(w, err.Error(), nil)

	// Import
	case errors.Is(err, importer.ErrAffiliationMissing):
		NotFound(w, "Affiliation number not found in file")
	case errors.Is(err, importer.ErrEmployeeNotMatched):
		NotFound(w, err.Error())
	case errors.Is(err, importer.ErrCorruptInput),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrEmptyFile):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
