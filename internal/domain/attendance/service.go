package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

type AttendanceService interface {
	// UpsertComplete computes the day and stores it as complete.
	UpsertComplete(ctx context.Context, employeeID string, date time.Time, entry, exit clock.TimeOfDay) (Attendance, error)
	// UpsertIncomplete stores the day with the fallback exit and no figures.
	UpsertIncomplete(ctx context.Context, employeeID string, date time.Time, entry clock.TimeOfDay) (Attendance, error)
	// UpsertDays stores a batch of days for one employee under a single
	// profile lock and refreshes the cached balance once at the end.
	UpsertDays(ctx context.Context, employeeID string, days []DayInput) ([]Attendance, error)

	RecordDay(ctx context.Context, actor employee.Actor, req RecordDayRequest) (AttendanceResponse, error)
	Edit(ctx context.Context, actor employee.Actor, id string, req EditAttendanceRequest) (AttendanceResponse, error)
	Get(ctx context.Context, actor employee.Actor, id string) (AttendanceResponse, error)
	List(ctx context.Context, actor employee.Actor, filter AttendanceFilter) (ListAttendanceResponse, error)

	Calculate(req CalculateHoursRequest) CalculateHoursResponse
	Policy() Policy
}

// DayInput is one day handed to UpsertDays. A nil Exit stores the day as
// incomplete.
type DayInput struct {
	Date  time.Time
	Entry clock.TimeOfDay
	Exit  *clock.TimeOfDay
}
