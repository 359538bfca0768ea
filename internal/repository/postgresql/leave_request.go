package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.requested_date, lr.requested_seconds, lr.reason, lr.status,
	lr.decided_by, lr.decided_at, lr.created_at, lr.updated_at, e.full_name`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	var requested int64
	var status string
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.RequestedDate,
		&requested,
		&lr.Reason,
		&status,
		&lr.DecidedBy,
		&lr.DecidedAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	lr.RequestedDuration = time.Duration(requested) * time.Second
	lr.Status = leave.LeaveRequestStatus(status)
	return lr, nil
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}

	created, err := scanLeaveRequest(q.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO leave_requests (id, employee_id, requested_date, requested_seconds, reason, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT `+leaveRequestColumns+`
		FROM inserted lr
		JOIN employee_profiles e ON e.id = lr.employee_id
	`,
		request.ID,
		request.EmployeeID,
		request.RequestedDate,
		seconds(request.RequestedDuration),
		request.Reason,
		string(request.Status),
	))
	if err != nil {
		if isUniqueViolation(err, "leave_requests_employee_date_key") {
			return leave.LeaveRequest{}, leave.ErrDuplicateRequest
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanLeaveRequest(q.QueryRow(ctx, `
		SELECT `+leaveRequestColumns+`
		FROM leave_requests lr
		JOIN employee_profiles e ON e.id = lr.employee_id
		WHERE lr.id = $1
	`, id))
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanLeaveRequest(q.QueryRow(ctx, `
		SELECT `+leaveRequestColumns+`
		FROM leave_requests lr
		JOIN employee_profiles e ON e.id = lr.employee_id
		WHERE lr.id = $1
		FOR UPDATE OF lr
	`, id))
}

// ExistsForDate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leave_requests WHERE employee_id = $1 AND requested_date = $2)
	`, employeeID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check leave request: %w", err)
	}
	return exists, nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decided_at = $4, updated_at = now()
		WHERE id = $1
	`, request.ID, string(request.Status), request.DecidedBy, request.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND lr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND lr.requested_date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND lr.requested_date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests lr WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employee_profiles e ON e.id = lr.employee_id
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan leave requests: %w", err)
	}
	return requests, total, nil
}

// ListRange implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+leaveRequestColumns+`
		FROM leave_requests lr
		JOIN employee_profiles e ON e.id = lr.employee_id
		WHERE lr.requested_date BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR lr.employee_id = $3::uuid)
		ORDER BY lr.requested_date
	`, from, to, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave request range: %w", err)
	}
	return collectLeaveRequests(rows)
}

// SumApproved implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumApproved(ctx context.Context, employeeID string) (time.Duration, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(requested_seconds), 0)::bigint
		FROM leave_requests
		WHERE employee_id = $1 AND status = $2
	`, employeeID, string(leave.LeaveRequestStatusApproved)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	return time.Duration(total) * time.Second, nil
}
