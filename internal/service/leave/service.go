package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx           database.Transactor
	leaveRepo    leave.LeaveRequestRepository
	employeeRepo employee.EmployeeRepository
	ledger       balance.Ledger
	now          func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	ledger balance.Ledger,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:           tx,
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		ledger:       ledger,
		now:          time.Now,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, actor employee.Actor, req leave.SubmitLeaveRequest) (leave.SubmitLeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	profile, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}
	if err := actor.Authorize(profile.ID); err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	exists, err := s.leaveRepo.ExistsForDate(ctx, profile.ID, req.RequestedDate)
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}
	if exists {
		return leave.SubmitLeaveResponse{}, leave.ErrDuplicateRequest
	}

	created, err := s.leaveRepo.Create(ctx, leave.LeaveRequest{
		EmployeeID:        profile.ID,
		RequestedDate:     req.RequestedDate,
		RequestedDuration: req.RequestedDuration,
		Reason:            req.Reason,
		Status:            leave.LeaveRequestStatusPending,
	})
	if err != nil {
		return leave.SubmitLeaveResponse{}, err
	}

	current, err := s.ledger.CurrentBalance(ctx, profile.ID)
	if err != nil {
		return leave.SubmitLeaveResponse{}, fmt.Errorf("failed to derive balance: %w", err)
	}

	resp := leave.SubmitLeaveResponse{
		Request: leave.NewLeaveRequestResponse(created),
		Balance: clock.FormatSigned(current),
	}
	if current < 0 {
		warning := fmt.Sprintf("Your compensatory balance is negative (%s). The request was submitted for special approval.", clock.FormatSigned(current))
		resp.Warning = &warning
	}

	slog.Info("leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", profile.ID,
		"date", created.RequestedDate.Format(time.DateOnly),
		"hours", clock.FormatSigned(created.RequestedDuration),
		"negative_balance", current < 0,
	)
	return resp, nil
}

// Decide implements leave.LeaveService.
func (s *LeaveServiceImpl) Decide(ctx context.Context, actor employee.Actor, requestID string, decision leave.Decision) (leave.LeaveRequestResponse, error) {
	if !actor.Privileged() {
		return leave.LeaveRequestResponse{}, employee.ErrPermissionDenied
	}
	next, ok := decision.Status()
	if !ok {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidDecision
	}

	var decided leave.LeaveRequest
	var balanceAfter time.Duration
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != leave.LeaveRequestStatusPending {
			return leave.ErrInvalidState
		}

		if _, err := s.employeeRepo.GetByIDForUpdate(txCtx, req.EmployeeID); err != nil {
			return err
		}

		if err := req.Transition(next, actor.EmployeeID, s.now().UTC()); err != nil {
			return err
		}
		if err := s.leaveRepo.UpdateStatus(txCtx, req); err != nil {
			return err
		}

		if next == leave.LeaveRequestStatusApproved {
			balanceAfter, err = s.ledger.Refresh(txCtx, req.EmployeeID)
			if err != nil {
				return fmt.Errorf("failed to refresh balance: %w", err)
			}
		}
		decided = req
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request decided",
		"leave_request_id", decided.ID,
		"employee_id", decided.EmployeeID,
		"status", string(decided.Status),
		"decided_by", actor.EmployeeID,
	)

	resp := leave.NewLeaveRequestResponse(decided)
	if decided.Status == leave.LeaveRequestStatusApproved {
		resp = resp.WithBalance(balanceAfter)
	}
	return resp, nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, actor employee.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	var cancelled leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.leaveRepo.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.EmployeeID != actor.EmployeeID || !actor.Active {
			return employee.ErrPermissionDenied
		}
		if err := req.Transition(leave.LeaveRequestStatusCancelled, actor.EmployeeID, s.now().UTC()); err != nil {
			return err
		}
		if err := s.leaveRepo.UpdateStatus(txCtx, req); err != nil {
			return err
		}
		cancelled = req
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(cancelled), nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, actor employee.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := actor.Authorize(req.EmployeeID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(req), nil
}

// ListMine implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, actor employee.Actor, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	self := actor.EmployeeID
	filter.EmployeeID = &self
	return s.list(ctx, filter, false)
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, actor employee.Actor, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if !actor.Privileged() {
		return leave.ListLeaveRequestResponse{}, employee.ErrPermissionDenied
	}
	return s.list(ctx, filter, true)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveRequestFilter, withBalance bool) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	balances := make(map[string]time.Duration)
	items := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		item := leave.NewLeaveRequestResponse(r)
		if withBalance {
			b, ok := balances[r.EmployeeID]
			if !ok {
				b, err = s.ledger.CurrentBalance(ctx, r.EmployeeID)
				if err != nil {
					return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to derive balance: %w", err)
				}
				balances[r.EmployeeID] = b
			}
			item = item.WithBalance(b)
		}
		items = append(items, item)
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		LeaveRequests: items,
	}, nil
}
