package leave

import (
	"context"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
)

type LeaveService interface {
	Submit(ctx context.Context, actor employee.Actor, req SubmitLeaveRequest) (SubmitLeaveResponse, error)
	Decide(ctx context.Context, actor employee.Actor, requestID string, decision Decision) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, actor employee.Actor, requestID string) (LeaveRequestResponse, error)
	Get(ctx context.Context, actor employee.Actor, requestID string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, actor employee.Actor, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	// List is the approver's view; each row carries the requester's balance.
	List(ctx context.Context, actor employee.Actor, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
}
