package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Upsert writes the record keyed by (employee_id, date), replacing any
	// previous figures for that day, and returns the stored row.
	Upsert(ctx context.Context, a Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListRange returns records with from <= date <= to ordered by date. A
	// nil employeeID spans every employee.
	ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]Attendance, error)

	// Recent returns the latest records of an employee, newest first.
	Recent(ctx context.Context, employeeID string, limit int) ([]Attendance, error)

	// SumOvertime adds overtime deltas with from <= date < to. Nil bounds
	// are open.
	SumOvertime(ctx context.Context, employeeID string, from, to *time.Time) (time.Duration, error)
}
