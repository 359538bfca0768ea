package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const recentRecords = 5

type LedgerImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	employeeRepo   employee.EmployeeRepository
	now            func() time.Time
}

func NewLedger(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
) *LedgerImpl {
	return &LedgerImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		employeeRepo:   employeeRepo,
		now:            time.Now,
	}
}

// CurrentBalance implements balance.Ledger.
func (l *LedgerImpl) CurrentBalance(ctx context.Context, employeeID string) (time.Duration, error) {
	accrued, err := l.attendanceRepo.SumOvertime(ctx, employeeID, nil, nil)
	if err != nil {
		return 0, err
	}
	consumed, err := l.leaveRepo.SumApproved(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return accrued - consumed, nil
}

// MonthlyBalance implements balance.Ledger.
func (l *LedgerImpl) MonthlyBalance(ctx context.Context, employeeID string, year int, month time.Month) (time.Duration, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return l.attendanceRepo.SumOvertime(ctx, employeeID, &from, &to)
}

// Refresh implements balance.Refresher.
func (l *LedgerImpl) Refresh(ctx context.Context, employeeID string) (time.Duration, error) {
	current, err := l.CurrentBalance(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to derive balance: %w", err)
	}
	if err := l.employeeRepo.UpdateCachedBalance(ctx, employeeID, current); err != nil {
		return 0, err
	}
	return current, nil
}

// Summary implements balance.Ledger.
func (l *LedgerImpl) Summary(ctx context.Context, actor employee.Actor, employeeID string) (balance.SummaryResponse, error) {
	if err := actor.Authorize(employeeID); err != nil {
		return balance.SummaryResponse{}, err
	}
	if !validator.IsValidUUID(employeeID) {
		return balance.SummaryResponse{}, employee.ErrEmployeeNotFound
	}

	now := l.now().UTC()
	var (
		profile employee.Profile
		current time.Duration
		monthly time.Duration
		recent  []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := l.employeeRepo.GetByID(gCtx, employeeID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		c, err := l.CurrentBalance(gCtx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to derive balance: %w", err)
		}
		current = c
		return nil
	})

	g.Go(func() error {
		m, err := l.MonthlyBalance(gCtx, employeeID, now.Year(), now.Month())
		if err != nil {
			return fmt.Errorf("failed to derive monthly balance: %w", err)
		}
		monthly = m
		return nil
	})

	g.Go(func() error {
		r, err := l.attendanceRepo.Recent(gCtx, employeeID, recentRecords)
		if err != nil {
			return err
		}
		recent = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return balance.SummaryResponse{}, err
	}

	records := make([]attendance.AttendanceResponse, 0, len(recent))
	for _, a := range recent {
		records = append(records, attendance.NewAttendanceResponse(a))
	}

	return balance.SummaryResponse{
		EmployeeID:    profile.ID,
		EmployeeName:  profile.FullName,
		Current:       balance.NewAmount(current),
		CurrentMonth:  balance.NewAmount(monthly),
		Cached:        balance.NewAmount(profile.CachedBalance),
		Year:          now.Year(),
		Month:         int(now.Month()),
		Negative:      current < 0,
		RecentRecords: records,
	}, nil
}

// Monthly implements balance.Ledger.
func (l *LedgerImpl) Monthly(ctx context.Context, actor employee.Actor, employeeID string, year int, month time.Month) (balance.MonthlyResponse, error) {
	if err := actor.Authorize(employeeID); err != nil {
		return balance.MonthlyResponse{}, err
	}
	if _, err := l.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return balance.MonthlyResponse{}, err
	}

	accrued, err := l.MonthlyBalance(ctx, employeeID, year, month)
	if err != nil {
		return balance.MonthlyResponse{}, fmt.Errorf("failed to derive monthly balance: %w", err)
	}
	return balance.MonthlyResponse{
		EmployeeID: employeeID,
		Year:       year,
		Month:      int(month),
		Accrued:    balance.NewAmount(accrued),
	}, nil
}

// ReconcileAll implements balance.Ledger.
func (l *LedgerImpl) ReconcileAll(ctx context.Context) (int, error) {
	profiles, err := l.employeeRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, p := range profiles {
		err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			locked, err := l.employeeRepo.GetByIDForUpdate(txCtx, p.ID)
			if err != nil {
				return err
			}
			current, err := l.Refresh(txCtx, p.ID)
			if err != nil {
				return err
			}
			if current != locked.CachedBalance {
				drifted++
				slog.Warn("cached balance drifted from ledger",
					"employee_id", p.ID,
					"cached", locked.CachedBalance.String(),
					"ledger", current.String(),
				)
			}
			return nil
		})
		if err != nil {
			return drifted, fmt.Errorf("failed to reconcile employee %s: %w", p.ID, err)
		}
	}
	return drifted, nil
}

var _ balance.Ledger = (*LedgerImpl)(nil)
