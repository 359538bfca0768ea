package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
)

// BalanceJobs keeps the cached balance on each profile in line with the
// ledger.
type BalanceJobs struct {
	ledger   balance.Ledger
	interval time.Duration
}

func NewBalanceJobs(ledger balance.Ledger, interval time.Duration) *BalanceJobs {
	return &BalanceJobs{ledger: ledger, interval: interval}
}

func (j *BalanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reconcile_balances", j.interval, j.ReconcileBalances)
}

func (j *BalanceJobs) ReconcileBalances(ctx context.Context) error {
	drifted, err := j.ledger.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile balances: %w", err)
	}
	if drifted > 0 {
		slog.Warn("cached balances corrected", "count", drifted)
	}
	return nil
}
