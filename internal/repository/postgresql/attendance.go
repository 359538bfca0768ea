package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const attendanceColumns = `
	a.id, a.employee_id, a.work_date, a.entry_time, a.exit_time,
	a.net_seconds, a.overtime_seconds, a.forced_exit, a.created_at, a.updated_at,
	e.full_name`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	var entry, exit pgtype.Time
	var net *int64
	var overtime int64
	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.Date,
		&entry,
		&exit,
		&net,
		&overtime,
		&a.ForcedExit,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}
	a.Entry = timeValue(entry)
	a.Exit = timeValue(exit)
	a.NetDuration = durationValue(net)
	a.OvertimeDelta = time.Duration(overtime) * time.Second
	return a, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH upserted AS (
			INSERT INTO attendance_records (
				id, employee_id, work_date, entry_time, exit_time, net_seconds, overtime_seconds, forced_exit
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (employee_id, work_date) DO UPDATE SET
				entry_time       = EXCLUDED.entry_time,
				exit_time        = EXCLUDED.exit_time,
				net_seconds      = EXCLUDED.net_seconds,
				overtime_seconds = EXCLUDED.overtime_seconds,
				forced_exit      = EXCLUDED.forced_exit,
				updated_at       = now()
			RETURNING *
		)
		SELECT ` + attendanceColumns + `
		FROM upserted a
		JOIN employee_profiles e ON e.id = a.employee_id
	`

	stored, err := scanAttendance(q.QueryRow(ctx, query,
		newID(),
		a.EmployeeID,
		a.Date,
		timeParam(a.Entry),
		timeParam(a.Exit),
		secondsParam(a.NetDuration),
		seconds(a.OvertimeDelta),
		a.ForcedExit,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return stored, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if !validator.IsValidUUID(id) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanAttendance(q.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		JOIN employee_profiles e ON e.id = a.employee_id
		WHERE a.id = $1
	`, id))
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	return scanAttendance(q.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		JOIN employee_profiles e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.work_date = $2
	`, employeeID, date))
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Incomplete != nil {
		baseWhere += fmt.Sprintf(" AND a.forced_exit = $%d", argIdx)
		args = append(args, *filter.Incomplete)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendance_records a WHERE ` + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
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
		FROM attendance_records a
		JOIN employee_profiles e ON e.id = a.employee_id
		WHERE %s
		ORDER BY a.work_date %s, e.full_name
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	records, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan attendance records: %w", err)
	}
	return records, total, nil
}

// ListRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		JOIN employee_profiles e ON e.id = a.employee_id
		WHERE a.work_date BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR a.employee_id = $3::uuid)
		ORDER BY a.work_date, e.full_name
	`, from, to, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	return collectAttendances(rows)
}

// Recent implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Recent(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records a
		JOIN employee_profiles e ON e.id = a.employee_id
		WHERE a.employee_id = $1
		ORDER BY a.work_date DESC
		LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent attendance: %w", err)
	}
	return collectAttendances(rows)
}

// SumOvertime implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SumOvertime(ctx context.Context, employeeID string, from, to *time.Time) (time.Duration, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(overtime_seconds), 0)::bigint
		FROM attendance_records
		WHERE employee_id = $1
		  AND ($2::date IS NULL OR work_date >= $2::date)
		  AND ($3::date IS NULL OR work_date < $3::date)
	`, employeeID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum overtime: %w", err)
	}
	return time.Duration(total) * time.Second, nil
}
