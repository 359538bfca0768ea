package attendance

import (
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Entry      *clock.TimeOfDay
	Exit       *clock.TimeOfDay

	// NetDuration is nil while the day is incomplete.
	NetDuration   *time.Duration
	OvertimeDelta time.Duration

	// ForcedExit flags a day stored with the fallback exit time. Such a day
	// carries no net duration and a zero delta until someone corrects it.
	ForcedExit bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

func (a Attendance) Incomplete() bool {
	return a.ForcedExit || a.NetDuration == nil
}

// Complete builds the record of a fully punched day.
func Complete(employeeID string, date time.Time, entry, exit clock.TimeOfDay, hours DayHours) Attendance {
	net := hours.Net
	return Attendance{
		EmployeeID:    employeeID,
		Date:          date,
		Entry:         &entry,
		Exit:          &exit,
		NetDuration:   &net,
		OvertimeDelta: hours.OvertimeDelta,
	}
}

// IncompleteDay builds the record of a day missing one of its punches. A nil
// exit is replaced by the policy's fallback time.
func IncompleteDay(employeeID string, date time.Time, entry, exit *clock.TimeOfDay, policy Policy) Attendance {
	if exit == nil {
		fallback := policy.ForcedExitTime
		exit = &fallback
	}
	return Attendance{
		EmployeeID: employeeID,
		Date:       date,
		Entry:      entry,
		Exit:       exit,
		ForcedExit: true,
	}
}
