package report

import (
	"context"
	"io"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
)

type ReportService interface {
	// ExportAttendanceCSV writes one line per record in the range.
	ExportAttendanceCSV(ctx context.Context, actor employee.Actor, filter ExportFilter, w io.Writer) error
	Calendar(ctx context.Context, actor employee.Actor, filter CalendarFilter) ([]CalendarEvent, error)
}
