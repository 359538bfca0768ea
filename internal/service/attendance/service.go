package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	policy         attendance.Policy
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	balances       balance.Refresher
}

func NewAttendanceService(
	tx database.Transactor,
	policy attendance.Policy,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	balances balance.Refresher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		policy:         policy,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		balances:       balances,
	}
}

// Policy implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Policy() attendance.Policy {
	return s.policy
}

// Calculate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Calculate(req attendance.CalculateHoursRequest) attendance.CalculateHoursResponse {
	hours := s.policy.ComputeDayHours(req.WorkDate, req.EntryTime, req.ExitTime)
	return attendance.NewCalculateHoursResponse(req, hours, s.policy)
}

// UpsertComplete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpsertComplete(ctx context.Context, employeeID string, date time.Time, entry, exit clock.TimeOfDay) (attendance.Attendance, error) {
	return s.writeOne(ctx, s.complete(employeeID, date, entry, exit))
}

func (s *AttendanceServiceImpl) complete(employeeID string, date time.Time, entry, exit clock.TimeOfDay) attendance.Attendance {
	hours := s.policy.ComputeDayHours(date, entry, exit)
	if hours.ZeroLength {
		slog.Warn("zero-length day charged as a missed shift",
			"employee_id", employeeID,
			"date", date.Format(time.DateOnly),
			"entry", entry.String(),
			"exit", exit.String(),
		)
	}
	return attendance.Complete(employeeID, date, entry, exit, hours)
}

// UpsertIncomplete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpsertIncomplete(ctx context.Context, employeeID string, date time.Time, entry clock.TimeOfDay) (attendance.Attendance, error) {
	return s.writeOne(ctx, attendance.IncompleteDay(employeeID, date, &entry, nil, s.policy))
}

// UpsertDays implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpsertDays(ctx context.Context, employeeID string, days []attendance.DayInput) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0, len(days))
	for _, d := range days {
		if d.Exit != nil {
			records = append(records, s.complete(employeeID, d.Date, d.Entry, *d.Exit))
			continue
		}
		entry := d.Entry
		records = append(records, attendance.IncompleteDay(employeeID, d.Date, &entry, nil, s.policy))
	}
	return s.write(ctx, employeeID, records)
}

func (s *AttendanceServiceImpl) writeOne(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	stored, err := s.write(ctx, record.EmployeeID, []attendance.Attendance{record})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return stored[0], nil
}

// write stores the days while holding the owner's profile lock, then brings
// the cached balance in line with the ledger once.
func (s *AttendanceServiceImpl) write(ctx context.Context, employeeID string, records []attendance.Attendance) ([]attendance.Attendance, error) {
	stored := make([]attendance.Attendance, 0, len(records))
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.employeeRepo.GetByIDForUpdate(txCtx, employeeID); err != nil {
			return err
		}

		for _, record := range records {
			a, err := s.attendanceRepo.Upsert(txCtx, record)
			if err != nil {
				return fmt.Errorf("%s: %w", record.Date.Format(time.DateOnly), err)
			}
			stored = append(stored, a)
		}

		if _, err := s.balances.Refresh(txCtx, employeeID); err != nil {
			return fmt.Errorf("failed to refresh balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// RecordDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordDay(ctx context.Context, actor employee.Actor, req attendance.RecordDayRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if err := actor.Authorize(employeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var (
		stored attendance.Attendance
		err    error
	)
	if req.ExitTime != nil {
		stored, err = s.UpsertComplete(ctx, employeeID, req.WorkDate, req.EntryTime, *req.ExitTime)
	} else {
		stored, err = s.UpsertIncomplete(ctx, employeeID, req.WorkDate, req.EntryTime)
	}
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance day recorded",
		"employee_id", employeeID,
		"recorded_by", actor.EmployeeID,
		"date", stored.Date.Format(time.DateOnly),
		"forced_exit", stored.ForcedExit,
	)
	return attendance.NewAttendanceResponse(stored), nil
}

// Edit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Edit(ctx context.Context, actor employee.Actor, id string, req attendance.EditAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	current, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := actor.Authorize(current.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Attendance
	if req.EntryTime != nil && req.ExitTime != nil {
		record = s.complete(current.EmployeeID, current.Date, *req.EntryTime, *req.ExitTime)
	} else {
		record = attendance.IncompleteDay(current.EmployeeID, current.Date, req.EntryTime, req.ExitTime, s.policy)
	}

	stored, err := s.writeOne(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance record edited",
		"attendance_id", stored.ID,
		"employee_id", stored.EmployeeID,
		"edited_by", actor.EmployeeID,
		"forced_exit", stored.ForcedExit,
	)
	return attendance.NewAttendanceResponse(stored), nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, actor employee.Actor, id string) (attendance.AttendanceResponse, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := actor.Authorize(record.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(record), nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, actor employee.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !actor.Privileged() {
		if filter.EmployeeID != nil && *filter.EmployeeID != actor.EmployeeID {
			return attendance.ListAttendanceResponse{}, employee.ErrPermissionDenied
		}
		self := actor.EmployeeID
		filter.EmployeeID = &self
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	items := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, attendance.NewAttendanceResponse(r))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: items,
	}, nil
}
