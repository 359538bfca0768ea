package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
)

type ImportServiceImpl struct {
	tx                database.Transactor
	employeeRepo      employee.EmployeeRepository
	attendanceService attendance.AttendanceService
	ledger            balance.Ledger
	files             file.FileService
	now               func() time.Time
}

func NewImportService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	attendanceService attendance.AttendanceService,
	ledger balance.Ledger,
	files file.FileService,
) importer.ImportService {
	return &ImportServiceImpl{
		tx:                tx,
		employeeRepo:      employeeRepo,
		attendanceService: attendanceService,
		ledger:            ledger,
		files:             files,
		now:               time.Now,
	}
}

// RunImport implements importer.ImportService.
func (s *ImportServiceImpl) RunImport(ctx context.Context, actor employee.Actor, req importer.ImportRequest) (importer.Report, error) {
	if !actor.Privileged() {
		return importer.Report{}, employee.ErrPermissionDenied
	}
	if err := req.Validate(); err != nil {
		return importer.Report{}, err
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return importer.Report{}, fmt.Errorf("%w: %v", importer.ErrCorruptInput, err)
	}

	wb, err := ReadWorkbook(data, req.Format)
	if err != nil {
		return importer.Report{}, err
	}

	profile, err := s.employeeRepo.GetByAffiliationNumber(ctx, wb.AffiliationNumber)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return importer.Report{}, fmt.Errorf("%w: %s", importer.ErrEmployeeNotMatched, wb.AffiliationNumber)
		}
		return importer.Report{}, fmt.Errorf("failed to find employee by affiliation number: %w", err)
	}

	report := importer.Report{
		EmployeeID:        profile.ID,
		EmployeeName:      profile.FullName,
		AffiliationNumber: wb.AffiliationNumber,
		SoftErrors:        []importer.SoftError{},
	}

	archived := false
	switch {
	case req.ArchivedAs != "":
		report.StoredFile = req.ArchivedAs
	case s.files != nil:
		stored, err := s.files.ArchiveImport(ctx, bytes.NewReader(data), req.Filename, s.now())
		if err != nil {
			slog.Warn("failed to archive import file", "filename", req.Filename, "error", err)
		} else {
			report.StoredFile = stored
			archived = true
		}
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.apply(txCtx, profile.ID, wb.Rows, &report)
	})
	if err != nil {
		if archived {
			if delErr := s.files.DeleteFile(ctx, report.StoredFile); delErr != nil {
				slog.Warn("failed to remove archived import", "path", report.StoredFile, "error", delErr)
			}
		}
		return importer.Report{}, fmt.Errorf("failed to import attendance: %w", err)
	}

	report.Balance, err = s.ledger.CurrentBalance(ctx, profile.ID)
	if err != nil {
		return importer.Report{}, fmt.Errorf("failed to read balance: %w", err)
	}

	slog.Info("attendance import finished",
		"employee_id", profile.ID,
		"affiliation_number", wb.AffiliationNumber,
		"completed", report.Completed,
		"incomplete", report.Incomplete,
		"soft_errors", len(report.SoftErrors),
		"actor_id", actor.EmployeeID,
	)

	return report, nil
}

// apply stores every scanned day in one batch so the balance is refreshed
// once. Soft errors only land in the report; a failed write aborts the
// whole import.
func (s *ImportServiceImpl) apply(ctx context.Context, employeeID string, rows [][]string, report *importer.Report) error {
	var days []attendance.DayInput
	for o := range Scan(rows) {
		switch o.Kind {
		case importer.OutcomeComplete:
			exit := o.Exit
			days = append(days, attendance.DayInput{Date: o.Date, Entry: o.Entry, Exit: &exit})
			report.Completed++
		case importer.OutcomeIncomplete:
			days = append(days, attendance.DayInput{Date: o.Date, Entry: o.Entry})
			report.Incomplete++
			report.SoftErrors = append(report.SoftErrors, softError(o))
		case importer.OutcomeSoftError:
			report.SoftErrors = append(report.SoftErrors, softError(o))
		}
	}
	if len(days) == 0 {
		return nil
	}

	if _, err := s.attendanceService.UpsertDays(ctx, employeeID, days); err != nil {
		return err
	}
	return nil
}

func softError(o importer.Outcome) importer.SoftError {
	se := importer.SoftError{Row: o.Row, Reason: o.Reason}
	if !o.Date.IsZero() {
		d := o.Date
		se.Date = &d
	}
	return se
}
