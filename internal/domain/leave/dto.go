package leave

import (
	"errors"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

type SubmitLeaveRequest struct {
	Date   string `json:"date"`
	Hours  string `json:"hours"` // HH:MM
	Reason string `json:"reason"`

	RequestedDate     time.Time     `json:"-"`
	RequestedDuration time.Duration `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if d, ok := validator.IsValidDate(r.Date); ok {
		r.RequestedDate = d
	} else {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	d, err := clock.ParseHours(r.Hours)
	switch {
	case errors.Is(err, clock.ErrInvalidHours):
		errs.Add("hours", "hours must be in HH:MM format with minutes below 60")
	case d <= 0:
		errs.Add("hours", "hours must be greater than zero")
	default:
		r.RequestedDuration = d
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	Date           string  `json:"date"`
	Hours          string  `json:"hours"`
	HoursSeconds   int64   `json:"hours_seconds"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	DecidedBy      *string `json:"decided_by,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	Balance        *string `json:"balance,omitempty"`
	BalanceSeconds *int64  `json:"balance_seconds,omitempty"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Date:         r.RequestedDate.Format("2006-01-02"),
		Hours:        clock.FormatSigned(r.RequestedDuration),
		HoursSeconds: int64(r.RequestedDuration / time.Second),
		Reason:       r.Reason,
		Status:       string(r.Status),
		DecidedBy:    r.DecidedBy,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

// WithBalance attaches the requester's current balance.
func (r LeaveRequestResponse) WithBalance(balance time.Duration) LeaveRequestResponse {
	s := clock.FormatSigned(balance)
	secs := int64(balance / time.Second)
	r.Balance = &s
	r.BalanceSeconds = &secs
	return r
}

type SubmitLeaveResponse struct {
	Request LeaveRequestResponse `json:"request"`
	Balance string               `json:"balance"`
	// Warning is set when the balance is already negative. It never blocks.
	Warning *string `json:"warning,omitempty"`
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && *f.Status != "" {
		if !LeaveRequestStatus(*f.Status).Valid() {
			errs.Add("status", "status must be one of: pending, approved, rejected, cancelled")
		}
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}
