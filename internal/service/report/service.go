package report

import (
	"cmp"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

var exportHeader = []string{"record_id", "employee", "date", "entry", "exit", "net", "overtime"}

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	now            func() time.Time
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, leaveRepo leave.LeaveRequestRepository) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		now:            time.Now,
	}
}

// scope narrows a requested employee filter to what the actor may see. Nil
// means every employee.
func scope(actor employee.Actor, requested *string) (*string, error) {
	if requested != nil && *requested == "" {
		requested = nil
	}
	if actor.Privileged() {
		return requested, nil
	}
	if !actor.Active {
		return nil, employee.ErrPermissionDenied
	}
	if requested != nil && *requested != actor.EmployeeID {
		return nil, employee.ErrPermissionDenied
	}
	self := actor.EmployeeID
	return &self, nil
}

// ExportAttendanceCSV implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendanceCSV(ctx context.Context, actor employee.Actor, filter report.ExportFilter, w io.Writer) error {
	if err := filter.Validate(s.now()); err != nil {
		return err
	}
	employeeID, err := scope(actor, filter.EmployeeID)
	if err != nil {
		return err
	}

	records, err := s.attendanceRepo.ListRange(ctx, employeeID, filter.From, filter.To)
	if err != nil {
		return fmt.Errorf("failed to list attendance for export: %w", err)
	}
	slices.SortStableFunc(records, func(a, b attendance.Attendance) int {
		return cmp.Or(
			cmp.Compare(name(a.EmployeeName), name(b.EmployeeName)),
			a.Date.Compare(b.Date),
		)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, a := range records {
		row := []string{
			a.ID,
			name(a.EmployeeName),
			a.Date.Format(time.DateOnly),
			timeCell(a.Entry),
			timeCell(a.Exit),
			"",
			clock.FormatHMS(a.OvertimeDelta),
		}
		if a.NetDuration != nil {
			row[5] = clock.FormatHMS(*a.NetDuration)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Calendar implements report.ReportService.
func (s *ReportServiceImpl) Calendar(ctx context.Context, actor employee.Actor, filter report.CalendarFilter) ([]report.CalendarEvent, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	employeeID, err := scope(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}

	if filter.Type == report.CalendarRequests {
		requests, err := s.leaveRepo.ListRange(ctx, employeeID, filter.From, filter.To)
		if err != nil {
			return nil, fmt.Errorf("failed to list leave requests for calendar: %w", err)
		}
		events := make([]report.CalendarEvent, 0, len(requests))
		for _, r := range requests {
			events = append(events, requestEvent(r))
		}
		return events, nil
	}

	records, err := s.attendanceRepo.ListRange(ctx, employeeID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for calendar: %w", err)
	}
	events := make([]report.CalendarEvent, 0, len(records))
	for _, a := range records {
		events = append(events, attendanceEvent(a))
	}
	return events, nil
}

func attendanceEvent(a attendance.Attendance) report.CalendarEvent {
	ev := report.CalendarEvent{
		ID:         a.ID,
		Start:      a.Date.Format(time.DateOnly),
		AllDay:     true,
		EmployeeID: a.EmployeeID,
	}
	if a.Entry != nil {
		s := a.Entry.String()
		ev.Entry = &s
	}
	if a.Exit != nil {
		s := a.Exit.String()
		ev.Exit = &s
	}

	if a.Incomplete() {
		ev.Kind = "incomplete"
		ev.Incomplete = true
		ev.Title = "Incomplete: entry " + timeLabel(a.Entry)
		return ev
	}

	net := clock.FormatSigned(*a.NetDuration)
	overtime := clock.FormatSigned(a.OvertimeDelta)
	ev.Kind = "complete"
	ev.Hours = &net
	ev.Overtime = &overtime
	ev.Title = net
	if a.OvertimeDelta > 0 {
		ev.Title = fmt.Sprintf("%s (+%s overtime)", net, overtime)
	}
	return ev
}

func requestEvent(r leave.LeaveRequest) report.CalendarEvent {
	hours := clock.FormatSigned(r.RequestedDuration)
	status := string(r.Status)
	return report.CalendarEvent{
		ID:         "req-" + r.ID,
		Title:      fmt.Sprintf("%s (%s)", name(r.EmployeeName), status),
		Start:      r.RequestedDate.Format(time.DateOnly),
		AllDay:     true,
		Kind:       "leave",
		EmployeeID: r.EmployeeID,
		Hours:      &hours,
		Status:     &status,
	}
}

func name(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}

func timeCell(t *clock.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return clock.FormatHMS(t.Duration())
}

func timeLabel(t *clock.TimeOfDay) string {
	if t == nil {
		return "N/A"
	}
	return t.String()
}
