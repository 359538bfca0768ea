package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// CalculateHoursRequest feeds the hours calculator.
type CalculateHoursRequest struct {
	Date  string `json:"date"`
	Entry string `json:"entry"`
	Exit  string `json:"exit"`

	WorkDate  time.Time       `json:"-"`
	EntryTime clock.TimeOfDay `json:"-"`
	ExitTime  clock.TimeOfDay `json:"-"`
}

func (r *CalculateHoursRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		r.WorkDate = time.Now().UTC().Truncate(24 * time.Hour)
	} else if d, ok := validator.IsValidDate(r.Date); ok {
		r.WorkDate = d
	} else {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	if t, err := clock.Parse(r.Entry); err != nil {
		errs.Add("entry", "entry must be in HH:MM format")
	} else {
		r.EntryTime = t
	}
	if t, err := clock.Parse(r.Exit); err != nil {
		errs.Add("exit", "exit must be in HH:MM format")
	} else {
		r.ExitTime = t
	}

	return errs.Err()
}

type CalculateHoursResponse struct {
	Date            string `json:"date"`
	Entry           string `json:"entry"`
	Exit            string `json:"exit"`
	EffectiveEntry  string `json:"effective_entry"`
	Gross           string `json:"gross"`
	Net             string `json:"net"`
	Overtime        string `json:"overtime"`
	StandardShift   string `json:"standard_shift"`
	NetSeconds      int64  `json:"net_seconds"`
	OvertimeSeconds int64  `json:"overtime_seconds"`
	LunchDeducted   bool   `json:"lunch_deducted"`
	Overnight       bool   `json:"overnight"`
	ZeroLength      bool   `json:"zero_length"`
}

func NewCalculateHoursResponse(req CalculateHoursRequest, h DayHours, p Policy) CalculateHoursResponse {
	return CalculateHoursResponse{
		Date:            req.WorkDate.Format(dateLayout),
		Entry:           req.EntryTime.String(),
		Exit:            req.ExitTime.String(),
		EffectiveEntry:  h.EffectiveEntry.String(),
		Gross:           clock.FormatSigned(h.Gross),
		Net:             clock.FormatSigned(h.Net),
		Overtime:        clock.FormatSigned(h.OvertimeDelta),
		StandardShift:   clock.FormatSigned(p.StandardShift),
		NetSeconds:      int64(h.Net / time.Second),
		OvertimeSeconds: int64(h.OvertimeDelta / time.Second),
		LunchDeducted:   h.LunchDeducted,
		Overnight:       h.Overnight,
		ZeroLength:      h.ZeroLength,
	}
}

// RecordDayRequest is the manual entry of one day. Exit may be omitted, in
// which case the day is stored incomplete.
type RecordDayRequest struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Date       string  `json:"date"`
	Entry      string  `json:"entry"`
	Exit       *string `json:"exit,omitempty"`

	WorkDate  time.Time        `json:"-"`
	EntryTime clock.TimeOfDay  `json:"-"`
	ExitTime  *clock.TimeOfDay `json:"-"`
}

func (r *RecordDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if d, ok := validator.IsValidDate(r.Date); ok {
		r.WorkDate = d
	} else {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	if t, err := clock.Parse(r.Entry); err != nil {
		errs.Add("entry", "entry must be in HH:MM format")
	} else {
		r.EntryTime = t
	}

	if r.Exit != nil && !validator.IsEmpty(*r.Exit) {
		if t, err := clock.Parse(*r.Exit); err != nil {
			errs.Add("exit", "exit must be in HH:MM format")
		} else {
			r.ExitTime = &t
		}
	}

	return errs.Err()
}

// EditAttendanceRequest replaces both punches of a record. A missing or empty
// value leaves the day incomplete.
type EditAttendanceRequest struct {
	Entry *string `json:"entry"`
	Exit  *string `json:"exit"`

	EntryTime *clock.TimeOfDay `json:"-"`
	ExitTime  *clock.TimeOfDay `json:"-"`
}

func (r *EditAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Entry != nil && !validator.IsEmpty(*r.Entry) {
		if t, err := clock.Parse(*r.Entry); err != nil {
			errs.Add("entry", "entry must be in HH:MM format")
		} else {
			r.EntryTime = &t
		}
	}
	if r.Exit != nil && !validator.IsEmpty(*r.Exit) {
		if t, err := clock.Parse(*r.Exit); err != nil {
			errs.Add("exit", "exit must be in HH:MM format")
		} else {
			r.ExitTime = &t
		}
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	Entry           *string `json:"entry,omitempty"`
	Exit            *string `json:"exit,omitempty"`
	Net             *string `json:"net,omitempty"`
	NetSeconds      *int64  `json:"net_seconds,omitempty"`
	Overtime        string  `json:"overtime"`
	OvertimeSeconds int64   `json:"overtime_seconds"`
	ForcedExit      bool    `json:"forced_exit"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		Date:            a.Date.Format(dateLayout),
		Overtime:        clock.FormatSigned(a.OvertimeDelta),
		OvertimeSeconds: int64(a.OvertimeDelta / time.Second),
		ForcedExit:      a.ForcedExit,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Entry != nil {
		s := a.Entry.String()
		resp.Entry = &s
	}
	if a.Exit != nil {
		s := a.Exit.String()
		resp.Exit = &s
	}
	if a.NetDuration != nil {
		s := clock.FormatSigned(*a.NetDuration)
		secs := int64(*a.NetDuration / time.Second)
		resp.Net = &s
		resp.NetSeconds = &secs
	}
	return resp
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Incomplete *bool   `json:"incomplete,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc on date
}

func (f *AttendanceFilter) Validate() error {
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
	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc"
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
