package balance

import (
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

type Amount struct {
	Display string `json:"display"`
	Seconds int64  `json:"seconds"`
}

func NewAmount(d time.Duration) Amount {
	return Amount{Display: clock.FormatSigned(d), Seconds: int64(d / time.Second)}
}

type SummaryResponse struct {
	EmployeeID    string                          `json:"employee_id"`
	EmployeeName  string                          `json:"employee_name"`
	Current       Amount                          `json:"current"`
	CurrentMonth  Amount                          `json:"current_month"`
	Cached        Amount                          `json:"cached"`
	Year          int                             `json:"year"`
	Month         int                             `json:"month"`
	Negative      bool                            `json:"negative"`
	RecentRecords []attendance.AttendanceResponse `json:"recent_records"`
}

type MonthlyResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Accrued    Amount `json:"accrued"`
}
