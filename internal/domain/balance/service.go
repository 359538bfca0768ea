package balance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
)

// Refresher re-derives an employee's balance and stores it in the profile
// cache. Writers call it inside their own transaction.
type Refresher interface {
	Refresh(ctx context.Context, employeeID string) (time.Duration, error)
}

// Ledger is the read model over attendance deltas and approved leave.
type Ledger interface {
	Refresher

	// CurrentBalance is every overtime delta minus every approved leave.
	CurrentBalance(ctx context.Context, employeeID string) (time.Duration, error)
	// MonthlyBalance is the overtime accrued in one month, leave excluded.
	MonthlyBalance(ctx context.Context, employeeID string, year int, month time.Month) (time.Duration, error)

	Summary(ctx context.Context, actor employee.Actor, employeeID string) (SummaryResponse, error)
	Monthly(ctx context.Context, actor employee.Actor, employeeID string, year int, month time.Month) (MonthlyResponse, error)

	// ReconcileAll refreshes the cache of every active employee and returns
	// how many cached values had drifted.
	ReconcileAll(ctx context.Context) (int, error)
}
