package report

import (
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

type ExportFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

// Validate defaults an empty range to the current month.
func (f *ExportFilter) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if len(errs) > 0 {
		return errs
	}

	if f.StartDate == "" && f.EndDate == "" {
		f.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		f.To = f.From.AddDate(0, 1, -1)
		return nil
	}
	from, to, ok := validator.IsValidDateRange(f.StartDate, f.EndDate)
	if !ok {
		errs.Add("start_date", "start_date and end_date must be YYYY-MM-DD with start_date not after end_date")
		return errs
	}
	if to.Sub(from) > 366*24*time.Hour {
		errs.Add("end_date", "range must not exceed one year")
		return errs
	}
	f.From, f.To = from, to
	return nil
}

type CalendarType string

const (
	CalendarHours    CalendarType = "hours"
	CalendarRequests CalendarType = "requests"
)

type CalendarFilter struct {
	Type       CalendarType `json:"type"`
	EmployeeID *string      `json:"employee_id,omitempty"`
	Start      string       `json:"start"`
	End        string       `json:"end"`

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (f *CalendarFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Type == "" {
		f.Type = CalendarHours
	}
	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	if f.Type != CalendarHours && f.Type != CalendarRequests {
		errs.Add("type", "type must be one of: hours, requests")
	}
	from, to, ok := validator.IsValidDateRange(f.Start, f.End)
	if !ok {
		errs.Add("start", "start and end must be YYYY-MM-DD with start not after end")
	}
	f.From, f.To = from, to

	return errs.Err()
}

type CalendarEvent struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Start      string  `json:"start"`
	AllDay     bool    `json:"all_day"`
	Kind       string  `json:"kind"`
	EmployeeID string  `json:"employee_id"`
	Entry      *string `json:"entry,omitempty"`
	Exit       *string `json:"exit,omitempty"`
	Overtime   *string `json:"overtime,omitempty"`
	Hours      *string `json:"hours,omitempty"`
	Status     *string `json:"status,omitempty"`
	Incomplete bool    `json:"incomplete"`
}
