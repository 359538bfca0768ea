package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	// Create fails with ErrDuplicateRequest when the employee already has a
	// request for the date.
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)

	ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error)
	UpdateStatus(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]LeaveRequest, error)

	// SumApproved adds the requested durations of approved requests.
	SumApproved(ctx context.Context, employeeID string) (time.Duration, error)
}
