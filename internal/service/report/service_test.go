package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	anaID   = "0190a8f2-0000-7000-8000-000000000001"
	brunoID = "0190a8f2-0000-7000-8000-000000000002"
)

// rangeRepo serves fixed rows so exports are byte-stable.
type rangeRepo struct {
	attendance.AttendanceRepository
	records []attendance.Attendance

	gotEmployee *string
}

func (r *rangeRepo) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]attendance.Attendance, error) {
	r.gotEmployee = employeeID
	var out []attendance.Attendance
	for _, a := range r.records {
		if employeeID == nil || a.EmployeeID == *employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

type leaveRangeRepo struct {
	leave.LeaveRequestRepository
	requests []leave.LeaveRequest
}

func (r *leaveRangeRepo) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]leave.LeaveRequest, error) {
	return r.requests, nil
}

func ptr[T any](v T) *T { return &v }

func date(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func fixtureRecords() []attendance.Attendance {
	p := attendance.DefaultPolicy()
	complete := func(id, employeeID, name string, d int, entry, exit clock.TimeOfDay) attendance.Attendance {
		a := attendance.Complete(employeeID, date(d), entry, exit, p.ComputeDayHours(date(d), entry, exit))
		a.ID = id
		a.EmployeeName = ptr(name)
		return a
	}
	forced := attendance.IncompleteDay(brunoID, date(2), ptr(clock.New(9, 0)), nil, p)
	forced.ID = "rec-3"
	forced.EmployeeName = ptr("Bruno Díaz")

	return []attendance.Attendance{
		complete("rec-1", anaID, "Ana Ruiz", 1, clock.New(8, 0), clock.New(18, 0)),
		forced,
		complete("rec-2", anaID, "Ana Ruiz", 4, clock.New(6, 30), clock.New(16, 0)),
	}
}

var (
	admin  = employee.Actor{EmployeeID: "admin", Level: employee.LevelSuperadmin, Active: true}
	worker = employee.Actor{EmployeeID: anaID, Level: employee.LevelEmployee, Active: true}
)

func TestExportAttendanceCSV(t *testing.T) {
	svc := NewReportService(&rangeRepo{records: fixtureRecords()}, nil)

	var buf bytes.Buffer
	err := svc.ExportAttendanceCSV(context.Background(), admin, report.ExportFilter{
		StartDate: "2024-03-01",
		EndDate:   "2024-03-31",
	}, &buf)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "attendance_export", buf.Bytes())
}

func TestExportAttendanceCSV_ScopesNonPrivilegedActors(t *testing.T) {
	repo := &rangeRepo{records: fixtureRecords()}
	svc := NewReportService(repo, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	err := svc.ExportAttendanceCSV(ctx, worker, report.ExportFilter{StartDate: "2024-03-01", EndDate: "2024-03-31"}, &buf)
	require.NoError(t, err)
	require.NotNil(t, repo.gotEmployee)
	assert.Equal(t, anaID, *repo.gotEmployee)
	assert.NotContains(t, buf.String(), "Bruno")

	err = svc.ExportAttendanceCSV(ctx, worker, report.ExportFilter{
		EmployeeID: ptr(brunoID),
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-31",
	}, &buf)
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)
}

func TestExportAttendanceCSV_DefaultsToCurrentMonth(t *testing.T) {
	svc := &ReportServiceImpl{
		attendanceRepo: &rangeRepo{},
		now:            func() time.Time { return time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC) },
	}

	filter := report.ExportFilter{}
	require.NoError(t, filter.Validate(svc.now()))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), filter.To)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportAttendanceCSV(context.Background(), admin, report.ExportFilter{}, &buf))
	assert.Equal(t, "record_id,employee,date,entry,exit,net,overtime\n", buf.String())
}

func TestCalendar_Hours(t *testing.T) {
	svc := NewReportService(&rangeRepo{records: fixtureRecords()}, nil)

	events, err := svc.Calendar(context.Background(), admin, report.CalendarFilter{
		Type:  report.CalendarHours,
		Start: "2024-03-01",
		End:   "2024-03-31",
	})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "complete", events[0].Kind)
	assert.Equal(t, "9:30", events[0].Title)
	assert.Equal(t, "2024-03-01", events[0].Start)

	assert.Equal(t, "incomplete", events[1].Kind)
	assert.True(t, events[1].Incomplete)
	assert.Equal(t, "Incomplete: entry 09:00", events[1].Title)
	assert.Nil(t, events[1].Hours)

	assert.Equal(t, "-1:00", *events[2].Overtime)
}

func TestCalendar_Requests(t *testing.T) {
	leaves := &leaveRangeRepo{requests: []leave.LeaveRequest{{
		ID:                "lr-1",
		EmployeeID:        anaID,
		RequestedDate:     date(15),
		RequestedDuration: 8 * time.Hour,
		Status:            leave.LeaveRequestStatusApproved,
		EmployeeName:      ptr("Ana Ruiz"),
	}}}
	svc := NewReportService(&rangeRepo{}, leaves)

	events, err := svc.Calendar(context.Background(), worker, report.CalendarFilter{
		Type:  report.CalendarRequests,
		Start: "2024-03-01",
		End:   "2024-03-31",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "req-lr-1", events[0].ID)
	assert.Equal(t, "leave", events[0].Kind)
	assert.Equal(t, "8:00", *events[0].Hours)
	assert.Equal(t, "approved", *events[0].Status)
}

func TestCalendar_InvalidFilter(t *testing.T) {
	svc := NewReportService(&rangeRepo{}, nil)

	_, err := svc.Calendar(context.Background(), admin, report.CalendarFilter{Type: "payroll", Start: "2024-03-31", End: "2024-03-01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
	assert.Contains(t, err.Error(), "start")
}
